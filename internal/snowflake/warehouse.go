package snowflake

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"frostline/pkg/errors"
)

// WarehouseSpec describes a CREATE WAREHOUSE statement. Zero values are
// omitted from the generated DDL so the platform defaults apply.
type WarehouseSpec struct {
	Name                 string
	Type                 string // STANDARD or SNOWPARK-OPTIMIZED
	Size                 string
	MinClusterCount      int
	MaxClusterCount      int
	ScalingPolicy        string // STANDARD or ECONOMY
	AutoSuspendSeconds   int
	AutoResume           bool
	InitiallySuspended   bool
	StatementTimeoutSecs int
	QueuedTimeoutSecs    int
	Comment              string
	OrReplace            bool
}

// WarehouseInfo is one row of SHOW WAREHOUSES
type WarehouseInfo struct {
	Name            string
	State           string
	Type            string
	Size            string
	MinClusterCount int
	MaxClusterCount int
	ScalingPolicy   string
	Running         int
	Queued          int
	AutoSuspend     int
	AutoResume      bool
	ResourceMonitor string
	Comment         string
	CreatedOn       string
}

// Validate checks the spec before any SQL is built
func (w WarehouseSpec) Validate() error {
	if err := ValidateIdentifier(w.Name); err != nil {
		return err
	}

	if w.Type != "" {
		t := strings.ToUpper(w.Type)
		if t != "STANDARD" && t != "SNOWPARK-OPTIMIZED" {
			return errors.ValidationError("type", w.Type, "must be STANDARD or SNOWPARK-OPTIMIZED")
		}
	}

	if w.Size != "" {
		if _, err := NormalizeWarehouseSize(w.Size); err != nil {
			return err
		}
	}

	if w.MinClusterCount < 0 || w.MaxClusterCount < 0 {
		return errors.ValidationError("cluster_count", w.MinClusterCount, "cluster counts cannot be negative")
	}
	if w.MaxClusterCount > 0 && w.MinClusterCount > w.MaxClusterCount {
		return errors.ValidationError("min_cluster_count", w.MinClusterCount,
			"MIN_CLUSTER_COUNT cannot exceed MAX_CLUSTER_COUNT")
	}

	if w.ScalingPolicy != "" {
		p := strings.ToUpper(w.ScalingPolicy)
		if p != "STANDARD" && p != "ECONOMY" {
			return errors.ValidationError("scaling_policy", w.ScalingPolicy, "must be STANDARD or ECONOMY")
		}
	}

	if w.AutoSuspendSeconds < 0 {
		return errors.ValidationError("auto_suspend", w.AutoSuspendSeconds, "cannot be negative")
	}

	return nil
}

// SQL renders the CREATE WAREHOUSE statement
func (w WarehouseSpec) SQL() (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if w.OrReplace {
		b.WriteString("OR REPLACE ")
	}
	b.WriteString("WAREHOUSE ")
	b.WriteString(w.Name)

	if w.Type != "" {
		fmt.Fprintf(&b, "\n    WAREHOUSE_TYPE = '%s'", strings.ToUpper(w.Type))
	}
	if w.Size != "" {
		size, _ := NormalizeWarehouseSize(w.Size)
		fmt.Fprintf(&b, "\n    WAREHOUSE_SIZE = '%s'", size)
	}
	if w.MinClusterCount > 0 {
		fmt.Fprintf(&b, "\n    MIN_CLUSTER_COUNT = %d", w.MinClusterCount)
	}
	if w.MaxClusterCount > 0 {
		fmt.Fprintf(&b, "\n    MAX_CLUSTER_COUNT = %d", w.MaxClusterCount)
	}
	if w.ScalingPolicy != "" {
		fmt.Fprintf(&b, "\n    SCALING_POLICY = '%s'", strings.ToUpper(w.ScalingPolicy))
	}
	if w.AutoSuspendSeconds > 0 {
		fmt.Fprintf(&b, "\n    AUTO_SUSPEND = %d", w.AutoSuspendSeconds)
	}
	fmt.Fprintf(&b, "\n    AUTO_RESUME = %t", w.AutoResume)
	fmt.Fprintf(&b, "\n    INITIALLY_SUSPENDED = %t", w.InitiallySuspended)
	if w.StatementTimeoutSecs > 0 {
		fmt.Fprintf(&b, "\n    STATEMENT_TIMEOUT_IN_SECONDS = %d", w.StatementTimeoutSecs)
	}
	if w.QueuedTimeoutSecs > 0 {
		fmt.Fprintf(&b, "\n    STATEMENT_QUEUED_TIMEOUT_IN_SECONDS = %d", w.QueuedTimeoutSecs)
	}
	if w.Comment != "" {
		fmt.Fprintf(&b, "\n    COMMENT = '%s'", escapeStringLiteral(w.Comment))
	}

	return b.String(), nil
}

// CreateWarehouse issues CREATE WAREHOUSE
func (s *Service) CreateWarehouse(ctx context.Context, spec WarehouseSpec) error {
	stmt, err := spec.SQL()
	if err != nil {
		return err
	}
	return s.exec(ctx, stmt)
}

// ResizeWarehouse issues ALTER WAREHOUSE ... SET WAREHOUSE_SIZE
func (s *Service) ResizeWarehouse(ctx context.Context, name, size string, wait bool) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	normalized, err := NormalizeWarehouseSize(size)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf("ALTER WAREHOUSE %s SET WAREHOUSE_SIZE = '%s'", name, normalized)
	if wait {
		stmt += " WAIT_FOR_COMPLETION = TRUE"
	}
	return s.exec(ctx, stmt)
}

// SuspendWarehouse issues ALTER WAREHOUSE ... SUSPEND. Suspending an
// already-suspended warehouse fails with an invalid-state error; callers
// decide whether that matters.
func (s *Service) SuspendWarehouse(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	return s.exec(ctx, fmt.Sprintf("ALTER WAREHOUSE %s SUSPEND", name))
}

// ResumeWarehouse issues ALTER WAREHOUSE ... RESUME. With ifSuspended the
// platform skips the invalid-state error for a running warehouse.
func (s *Service) ResumeWarehouse(ctx context.Context, name string, ifSuspended bool) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	stmt := fmt.Sprintf("ALTER WAREHOUSE %s RESUME", name)
	if ifSuspended {
		stmt += " IF SUSPENDED"
	}
	return s.exec(ctx, stmt)
}

// SetWarehouseTimeouts configures statement timeouts at warehouse scope
func (s *Service) SetWarehouseTimeouts(ctx context.Context, name string, statementSecs, queuedSecs int) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
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

	stmt := fmt.Sprintf("ALTER WAREHOUSE %s SET %s", name, strings.Join(props, " "))
	return s.exec(ctx, stmt)
}

// UnsetWarehouseTimeouts reverts statement timeouts to the inherited values
func (s *Service) UnsetWarehouseTimeouts(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	stmt := fmt.Sprintf(
		"ALTER WAREHOUSE %s UNSET STATEMENT_TIMEOUT_IN_SECONDS, STATEMENT_QUEUED_TIMEOUT_IN_SECONDS", name)
	return s.exec(ctx, stmt)
}

// AttachResourceMonitor binds a resource monitor to a warehouse
func (s *Service) AttachResourceMonitor(ctx context.Context, warehouse, monitor string) error {
	if err := ValidateIdentifier(warehouse); err != nil {
		return err
	}
	if err := ValidateIdentifier(monitor); err != nil {
		return err
	}
	stmt := fmt.Sprintf("ALTER WAREHOUSE %s SET RESOURCE_MONITOR = %s", warehouse, monitor)
	return s.exec(ctx, stmt)
}

// DetachResourceMonitor removes the monitor binding from a warehouse
func (s *Service) DetachResourceMonitor(ctx context.Context, warehouse string) error {
	if err := ValidateIdentifier(warehouse); err != nil {
		return err
	}
	return s.exec(ctx, fmt.Sprintf("ALTER WAREHOUSE %s UNSET RESOURCE_MONITOR", warehouse))
}

// DropWarehouse issues DROP WAREHOUSE
func (s *Service) DropWarehouse(ctx context.Context, name string, ifExists bool) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	stmt := "DROP WAREHOUSE "
	if ifExists {
		stmt += "IF EXISTS "
	}
	return s.exec(ctx, stmt+name)
}

// ListWarehouses runs SHOW WAREHOUSES and parses the result
func (s *Service) ListWarehouses(ctx context.Context, like string) ([]WarehouseInfo, error) {
	stmt := "SHOW WAREHOUSES"
	if like != "" {
		stmt += fmt.Sprintf(" LIKE '%s'", escapeStringLiteral(like))
	}

	rows, err := s.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	named, err := scanNamedRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read warehouse list: %w", err)
	}

	warehouses := make([]WarehouseInfo, 0, len(named))
	for _, row := range named {
		warehouses = append(warehouses, WarehouseInfo{
			Name:            row["name"],
			State:           row["state"],
			Type:            row["type"],
			Size:            row["size"],
			MinClusterCount: atoiOrZero(row["min_cluster_count"]),
			MaxClusterCount: atoiOrZero(row["max_cluster_count"]),
			ScalingPolicy:   row["scaling_policy"],
			Running:         atoiOrZero(row["running"]),
			Queued:          atoiOrZero(row["queued"]),
			AutoSuspend:     atoiOrZero(row["auto_suspend"]),
			AutoResume:      parseBool(row["auto_resume"]),
			ResourceMonitor: row["resource_monitor"],
			Comment:         row["comment"],
			CreatedOn:       row["created_on"],
		})
	}

	return warehouses, nil
}

// GetWarehouse returns a single warehouse by exact name
func (s *Service) GetWarehouse(ctx context.Context, name string) (*WarehouseInfo, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}

	warehouses, err := s.ListWarehouses(ctx, name)
	if err != nil {
		return nil, err
	}

	for i := range warehouses {
		if strings.EqualFold(warehouses[i].Name, name) {
			return &warehouses[i], nil
		}
	}

	return nil, errors.New(errors.ErrCodeSQLObjectNotFound,
		fmt.Sprintf("Warehouse %s does not exist", name)).
		WithSuggestions("Run 'frostline warehouse list' to see available warehouses")
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
