package models

type Config struct {
	Snowflake   Snowflake   `yaml:"snowflake"`
	Warehouse   Warehouse   `yaml:"warehouse"`
	Monitor     Monitor     `yaml:"monitor"`
	Walkthrough Walkthrough `yaml:"walkthrough"`
}

// Snowflake holds the connection block for the target account
type Snowflake struct {
	Account   string `yaml:"account"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Timeout   string `yaml:"timeout"` // Connection/statement context timeout, e.g. "30s"
}

// Warehouse carries the defaults applied when `warehouse create` flags are
// left unset. Every field maps onto a property of CREATE WAREHOUSE.
type Warehouse struct {
	Type                  string `yaml:"type"`                     // "STANDARD" or "SNOWPARK-OPTIMIZED"
	Size                  string `yaml:"size"`                     // e.g. "XSMALL"
	MinClusterCount       int    `yaml:"min_cluster_count"`
	MaxClusterCount       int    `yaml:"max_cluster_count"`
	ScalingPolicy         string `yaml:"scaling_policy"`           // "STANDARD" or "ECONOMY"
	AutoSuspendSeconds    int    `yaml:"auto_suspend_seconds"`
	AutoResume            bool   `yaml:"auto_resume"`
	InitiallySuspended    bool   `yaml:"initially_suspended"`
	StatementTimeoutSecs  int    `yaml:"statement_timeout_seconds"`
	QueuedTimeoutSecs     int    `yaml:"statement_queued_timeout_seconds"`
	Comment               string `yaml:"comment"`
}

// Monitor carries the defaults for `monitor create`
type Monitor struct {
	CreditQuota int    `yaml:"credit_quota"`
	Frequency   string `yaml:"frequency"` // MONTHLY, DAILY, WEEKLY, YEARLY, NEVER
	// Threshold percentages for the three trigger actions; zero disables
	NotifyPercent           int `yaml:"notify_percent"`
	SuspendPercent          int `yaml:"suspend_percent"`
	SuspendImmediatePercent int `yaml:"suspend_immediate_percent"`
}

// Walkthrough configures the guided end-to-end demonstration
type Walkthrough struct {
	Prefix       string `yaml:"prefix"`        // Object name prefix, e.g. "FROSTLINE_DEMO"
	Database     string `yaml:"database"`      // Database holding the sample analytic views
	Schema       string `yaml:"schema"`        // Schema holding the sample analytic views
	CreditQuota  int    `yaml:"credit_quota"`  // Quota for the demo resource monitor
	ScaleUpSize  string `yaml:"scale_up_size"` // Size used for the scale-up step
	KeepObjects  bool   `yaml:"keep_objects"`  // Skip teardown when true
	QueryRowCap  int    `yaml:"query_row_cap"` // Max rows rendered per sample query
}
