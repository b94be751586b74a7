package snowflake

import (
	"context"
	"fmt"
	"strings"

	"frostline/pkg/errors"
)

// Parameter is one row of SHOW PARAMETERS
type Parameter struct {
	Key         string
	Value       string
	Default     string
	Level       string
	Description string
}

// SetAccountTimeouts configures statement timeouts account-wide. Requires
// the ACCOUNTADMIN role. A zero value leaves that parameter untouched.
func (s *Service) SetAccountTimeouts(ctx context.Context, statementSecs, queuedSecs int) error {
	if statementSecs <= 0 && queuedSecs <= 0 {
		return errors.ValidationError("timeouts", 0, "at least one timeout must be positive")
	}

	var props []string
	if statementSecs > 0 {
		props = append(props, fmt.Sprintf("STATEMENT_TIMEOUT_IN_SECONDS = %d", statementSecs))
	}
	if queuedSecs > 0 {
		props = append(props, fmt.Sprintf("STATEMENT_QUEUED_TIMEOUT_IN_SECONDS = %d", queuedSecs))
	}

	stmt := "ALTER ACCOUNT SET " + strings.Join(props, " ")
	return s.exec(ctx, stmt)
}

// UnsetAccountTimeouts restores the account statement timeouts to the
// platform defaults. This is the revert step of a governance walkthrough.
func (s *Service) UnsetAccountTimeouts(ctx context.Context) error {
	stmt := "ALTER ACCOUNT UNSET STATEMENT_TIMEOUT_IN_SECONDS, STATEMENT_QUEUED_TIMEOUT_IN_SECONDS"
	return s.exec(ctx, stmt)
}

// ShowAccountParameters runs SHOW PARAMETERS [LIKE ...] IN ACCOUNT
func (s *Service) ShowAccountParameters(ctx context.Context, like string) ([]Parameter, error) {
	stmt := "SHOW PARAMETERS"
	if like != "" {
		stmt += fmt.Sprintf(" LIKE '%s'", escapeStringLiteral(like))
	}
	stmt += " IN ACCOUNT"

	return s.showParameters(ctx, stmt)
}

// ShowWarehouseParameters runs SHOW PARAMETERS [LIKE ...] IN WAREHOUSE
func (s *Service) ShowWarehouseParameters(ctx context.Context, warehouse, like string) ([]Parameter, error) {
	if err := ValidateIdentifier(warehouse); err != nil {
		return nil, err
	}

	stmt := "SHOW PARAMETERS"
	if like != "" {
		stmt += fmt.Sprintf(" LIKE '%s'", escapeStringLiteral(like))
	}
	stmt += fmt.Sprintf(" IN WAREHOUSE %s", warehouse)

	return s.showParameters(ctx, stmt)
}

func (s *Service) showParameters(ctx context.Context, stmt string) ([]Parameter, error) {
	rows, err := s.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	named, err := scanNamedRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	params := make([]Parameter, 0, len(named))
	for _, row := range named {
		params = append(params, Parameter{
			Key:         row["key"],
			Value:       row["value"],
			Default:     row["default"],
			Level:       row["level"],
			Description: row["description"],
		})
	}

	return params, nil
}
