package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"frostline/pkg/errors"
	_ "github.com/snowflakedb/gosnowflake"
)

// Service provides Snowflake administrative operations over a single
// session. Warehouse, resource monitor and account operations hang off
// this type in their own files.
type Service struct {
	db             *sql.DB
	config         Config
	connected      bool
	errorHandler   *errors.ErrorHandler
	circuitBreaker *errors.CircuitBreaker
}

// Config holds Snowflake connection configuration
type Config struct {
	Account   string
	Username  string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string
	Timeout   time.Duration
}

// NewService creates a new Snowflake service
func NewService(config Config) *Service {
	return &Service{
		config:         config,
		errorHandler:   errors.GetGlobalErrorHandler(),
		circuitBreaker: errors.NewCircuitBreaker("snowflake", 5, 30*time.Second),
	}
}

// Connect establishes a connection to Snowflake
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	return s.circuitBreaker.Execute(context.Background(), func() error {
		return errors.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
			dsn := fmt.Sprintf("%s:%s@%s/%s/%s?warehouse=%s&role=%s",
				s.config.Username,
				s.config.Password,
				s.config.Account,
				s.config.Database,
				s.config.Schema,
				s.config.Warehouse,
				s.config.Role,
			)

			db, err := sql.Open("snowflake", dsn)
			if err != nil {
				return errors.ConnectionError("Failed to open Snowflake connection", err).
					WithContext("account", s.config.Account).
					WithContext("role", s.config.Role)
			}

			db.SetMaxOpenConns(5)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(10 * time.Minute)

			connCtx, cancel := s.getContext()
			defer cancel()

			if err := db.PingContext(connCtx); err != nil {
				db.Close()

				if strings.Contains(err.Error(), "authentication") {
					return errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
						WithContext("user", s.config.Username).
						WithSuggestions(
							"Verify your username and password",
							"Check if your account is locked",
							"Ensure MFA is properly configured if required",
						)
				}

				return errors.ConnectionError("Failed to connect to Snowflake", err).
					WithContext("account", s.config.Account).
					AsRecoverable()
			}

			s.db = db
			s.connected = true
			return nil
		})
	})
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// TestConnection verifies the session is usable
func (s *Service) TestConnection() error {
	if !s.connected {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	ctx, cancel := s.getContext()
	defer cancel()

	return s.db.PingContext(ctx)
}

// ExecuteFile executes the statements of a SQL file sequentially. DDL in
// Snowflake autocommits per statement, so no transaction wraps the file.
func (s *Service) ExecuteFile(path string) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}

	// Note: path is already validated by the caller
	content, err := os.ReadFile(path) // #nosec G304 - path should be validated by caller
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return s.ExecuteScript(context.Background(), string(content))
}

// ExecuteScript splits a SQL script on statement boundaries and executes
// each statement in order, stopping at the first failure
func (s *Service) ExecuteScript(ctx context.Context, script string) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}

	statements := splitStatements(script)

	for i, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if err := s.exec(ctx, stmt); err != nil {
			return errors.Wrap(err, errors.GetErrorCode(err),
				fmt.Sprintf("Failed to execute statement %d", i+1)).
				WithContext("statement_index", i+1).
				WithContext("total_statements", len(statements))
		}
	}

	return nil
}

// UseWarehouse activates a warehouse for the session
func (s *Service) UseWarehouse(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	return s.exec(ctx, fmt.Sprintf("USE WAREHOUSE %s", name))
}

// UseDatabaseSchema switches the session's database and schema context.
// The schema is optional; when empty the database's default schema applies.
func (s *Service) UseDatabaseSchema(ctx context.Context, database, schema string) error {
	if err := ValidateIdentifier(database); err != nil {
		return err
	}
	if err := s.exec(ctx, fmt.Sprintf("USE DATABASE %s", database)); err != nil {
		return err
	}
	if schema == "" {
		return nil
	}
	if err := ValidateIdentifier(schema); err != nil {
		return err
	}
	return s.exec(ctx, fmt.Sprintf("USE SCHEMA %s", schema))
}

// Helper methods

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	timeout := s.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// exec runs a single statement and classifies any failure
func (s *Service) exec(ctx context.Context, statement string) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database")
	}

	execCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		execCtx, cancel = s.getContext()
		defer cancel()
	}

	if _, err := s.db.ExecContext(execCtx, statement); err != nil {
		appErr := errors.SQLError("Statement failed", statement, err)
		s.errorHandler.Handle(appErr)
		return appErr
	}
	return nil
}

// queryRows runs a statement that returns rows (SHOW, SELECT)
func (s *Service) queryRows(ctx context.Context, statement string) (*sql.Rows, error) {
	if !s.connected {
		return nil, errors.New(errors.ErrCodeConnectionFailed, "Not connected to database")
	}

	queryCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		queryCtx, cancel = s.getContext()
		defer cancel()
	}

	rows, err := s.db.QueryContext(queryCtx, statement)
	if err != nil {
		appErr := errors.SQLError("Query failed", statement, err)
		s.errorHandler.Handle(appErr)
		return nil, appErr
	}
	return rows, nil
}

// scanNamedRows reads every row into a column-name keyed map. SHOW output
// column order differs across Snowflake releases, so positional scanning
// is avoided.
func scanNamedRows(rows *sql.Rows) ([]map[string]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]string
	for rows.Next() {
		values := make([]interface{}, len(cols))
		valuePtrs := make([]interface{}, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]string, len(cols))
		for i, col := range cols {
			row[strings.ToLower(col)] = stringifyValue(values[i])
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func stringifyValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// splitStatements splits a script on semicolons not within strings
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := rune(0)

	for i, char := range script {
		if !inString {
			if char == '\'' || char == '"' {
				inString = true
				stringChar = char
			} else if char == ';' {
				if i == 0 || script[i-1] != '\\' {
					statements = append(statements, current.String())
					current.Reset()
					continue
				}
			}
		} else {
			if char == stringChar && (i == 0 || script[i-1] != '\\') {
				inString = false
			}
		}
		current.WriteRune(char)
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}

// ValidateConfig validates the Snowflake connection configuration. No
// warehouse is required: this tool exists to create them.
func ValidateConfig(config Config) error {
	if config.Account == "" {
		return fmt.Errorf("account is required")
	}
	if config.Username == "" {
		return fmt.Errorf("username is required")
	}
	if config.Password == "" {
		return fmt.Errorf("password is required")
	}
	if config.Role == "" {
		return fmt.Errorf("role is required")
	}
	return nil
}
