package walkthrough

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frostline/internal/snowflake"
	"frostline/pkg/errors"
	"frostline/pkg/models"
)

// Admin is the slice of the Snowflake service the walkthrough drives.
// *snowflake.Service satisfies it; tests substitute a fake.
type Admin interface {
	CreateWarehouse(ctx context.Context, spec snowflake.WarehouseSpec) error
	ListWarehouses(ctx context.Context, like string) ([]snowflake.WarehouseInfo, error)
	ResizeWarehouse(ctx context.Context, name, size string, wait bool) error
	SuspendWarehouse(ctx context.Context, name string) error
	SetWarehouseTimeouts(ctx context.Context, name string, statementSecs, queuedSecs int) error
	ShowWarehouseParameters(ctx context.Context, warehouse, like string) ([]snowflake.Parameter, error)
	DropWarehouse(ctx context.Context, name string, ifExists bool) error

	CreateResourceMonitor(ctx context.Context, spec snowflake.MonitorSpec) error
	AttachResourceMonitor(ctx context.Context, warehouse, monitor string) error
	DropResourceMonitor(ctx context.Context, name string, ifExists bool) error

	SetAccountTimeouts(ctx context.Context, statementSecs, queuedSecs int) error
	UnsetAccountTimeouts(ctx context.Context) error
	ShowAccountParameters(ctx context.Context, like string) ([]snowflake.Parameter, error)

	UseWarehouse(ctx context.Context, name string) error
	UseDatabaseSchema(ctx context.Context, database, schema string) error
	RunQuery(ctx context.Context, query string, rowCap int) (*snowflake.ResultSet, error)
}

// StepStatus classifies the outcome of one walkthrough step
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusWarning StepStatus = "warning"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepResult records one executed step
type StepResult struct {
	Name     string
	Status   StepStatus
	Detail   string
	Err      error
	Duration time.Duration
	Result   *snowflake.ResultSet
	Params   []snowflake.Parameter
}

// Options configures a walkthrough run
type Options struct {
	Prefix        string
	Database      string
	Schema        string
	CreditQuota   int
	BaseSize      string
	ScaleUpSize   string
	StatementSecs int
	QueuedSecs    int
	RowCap        int
	KeepObjects   bool

	NotifyPercent           int
	SuspendPercent          int
	SuspendImmediatePercent int

	MinClusterCount int
	MaxClusterCount int
	ScalingPolicy   string
	AutoSuspendSecs int
}

// OptionsFromConfig builds walkthrough options from the loaded config,
// filling anything unset with the reference defaults.
func OptionsFromConfig(cfg *models.Config) Options {
	opts := Options{
		Prefix:        cfg.Walkthrough.Prefix,
		Database:      cfg.Walkthrough.Database,
		Schema:        cfg.Walkthrough.Schema,
		CreditQuota:   cfg.Walkthrough.CreditQuota,
		BaseSize:      cfg.Warehouse.Size,
		ScaleUpSize:   cfg.Walkthrough.ScaleUpSize,
		StatementSecs: cfg.Warehouse.StatementTimeoutSecs,
		QueuedSecs:    cfg.Warehouse.QueuedTimeoutSecs,
		RowCap:        cfg.Walkthrough.QueryRowCap,
		KeepObjects:   cfg.Walkthrough.KeepObjects,

		NotifyPercent:           cfg.Monitor.NotifyPercent,
		SuspendPercent:          cfg.Monitor.SuspendPercent,
		SuspendImmediatePercent: cfg.Monitor.SuspendImmediatePercent,

		MinClusterCount: cfg.Warehouse.MinClusterCount,
		MaxClusterCount: cfg.Warehouse.MaxClusterCount,
		ScalingPolicy:   cfg.Warehouse.ScalingPolicy,
		AutoSuspendSecs: cfg.Warehouse.AutoSuspendSeconds,
	}

	if opts.Prefix == "" {
		opts.Prefix = "FROSTLINE_DEMO"
	}
	if opts.BaseSize == "" {
		opts.BaseSize = "XSMALL"
	}
	if opts.ScaleUpSize == "" {
		opts.ScaleUpSize = "XLARGE"
	}
	if opts.CreditQuota <= 0 {
		opts.CreditQuota = 20
	}
	if opts.StatementSecs <= 0 {
		opts.StatementSecs = 1800
	}
	if opts.QueuedSecs <= 0 {
		opts.QueuedSecs = 600
	}
	if opts.RowCap <= 0 {
		opts.RowCap = 10
	}
	if opts.AutoSuspendSecs <= 0 {
		opts.AutoSuspendSecs = 60
	}

	return opts
}

// WarehouseName returns the name of the demo warehouse
func (o Options) WarehouseName() string {
	return strings.ToUpper(o.Prefix) + "_WH"
}

// MonitorName returns the name of the demo resource monitor
func (o Options) MonitorName() string {
	return strings.ToUpper(o.Prefix) + "_RM"
}

// Reporter receives each step result as it completes
type Reporter func(StepResult)

// Runner executes the guided warehouse and cost-governance walkthrough:
// provision a warehouse, attach a resource monitor, scope statement
// timeouts at warehouse and account level, exercise the warehouse with
// analytic queries at two sizes, then revert and tear everything down.
type Runner struct {
	admin  Admin
	opts   Options
	report Reporter
}

// NewRunner builds a walkthrough runner. The reporter may be nil.
func NewRunner(admin Admin, opts Options, report Reporter) *Runner {
	if report == nil {
		report = func(StepResult) {}
	}
	return &Runner{admin: admin, opts: opts, report: report}
}

// Run executes the walkthrough. Teardown runs even when an earlier step
// failed, unless KeepObjects is set. The returned results cover every
// step; the error is the first hard failure, if any.
func (r *Runner) Run(ctx context.Context) ([]StepResult, error) {
	var results []StepResult
	var firstErr error

	run := func(name string, fn func(*StepResult) error) bool {
		res := StepResult{Name: name, Status: StatusOK}
		start := time.Now()
		err := fn(&res)
		res.Duration = time.Since(start)

		if err != nil {
			if errors.IsExpectedPlatformState(err) {
				res.Status = StatusWarning
				res.Err = err
				if res.Detail == "" {
					res.Detail = err.Error()
				}
			} else {
				res.Status = StatusFailed
				res.Err = err
				if firstErr == nil {
					firstErr = err
				}
			}
		}

		results = append(results, res)
		r.report(res)
		return res.Status != StatusFailed
	}

	skip := func(name, detail string) {
		res := StepResult{Name: name, Status: StatusSkipped, Detail: detail}
		results = append(results, res)
		r.report(res)
	}

	wh := r.opts.WarehouseName()
	rm := r.opts.MonitorName()
	setupOK := true

	steps := []struct {
		name string
		fn   func(*StepResult) error
	}{
		{"create warehouse " + wh, func(res *StepResult) error {
			return r.createWarehouse(ctx, res)
		}},
		{"show warehouses", func(res *StepResult) error {
			return r.showWarehouses(ctx, res)
		}},
		{"create resource monitor " + rm, func(res *StepResult) error {
			return r.createMonitor(ctx, res)
		}},
		{"attach monitor to warehouse", func(res *StepResult) error {
			return r.admin.AttachResourceMonitor(ctx, wh, rm)
		}},
		{"set warehouse statement timeouts", func(res *StepResult) error {
			res.Detail = fmt.Sprintf("STATEMENT_TIMEOUT_IN_SECONDS=%d STATEMENT_QUEUED_TIMEOUT_IN_SECONDS=%d",
				r.opts.StatementSecs, r.opts.QueuedSecs)
			return r.admin.SetWarehouseTimeouts(ctx, wh, r.opts.StatementSecs, r.opts.QueuedSecs)
		}},
		{"show warehouse parameters", func(res *StepResult) error {
			params, err := r.admin.ShowWarehouseParameters(ctx, wh, "STATEMENT%")
			res.Params = params
			return err
		}},
		{"set account statement timeouts", func(res *StepResult) error {
			return r.admin.SetAccountTimeouts(ctx, r.opts.StatementSecs, r.opts.QueuedSecs)
		}},
		{"show account parameters", func(res *StepResult) error {
			params, err := r.admin.ShowAccountParameters(ctx, "STATEMENT%")
			res.Params = params
			return err
		}},
		{"use warehouse and demo schema", func(res *StepResult) error {
			if err := r.admin.UseWarehouse(ctx, wh); err != nil {
				return err
			}
			if r.opts.Database == "" {
				res.Detail = "no demo database configured, keeping session context"
				return nil
			}
			return r.admin.UseDatabaseSchema(ctx, r.opts.Database, r.opts.Schema)
		}},
	}

	for _, step := range steps {
		if !run(step.name, step.fn) {
			setupOK = false
			break
		}
	}

	if setupOK {
		for _, q := range snowflake.SampleQueries() {
			query := q
			run("query "+query.Name, func(res *StepResult) error {
				result, err := r.admin.RunQuery(ctx, query.SQL, r.opts.RowCap)
				res.Result = result
				res.Detail = query.Description
				return err
			})
		}

		run("scale up to "+r.opts.ScaleUpSize, func(res *StepResult) error {
			return r.admin.ResizeWarehouse(ctx, wh, r.opts.ScaleUpSize, true)
		})

		rerun := snowflake.SampleQueries()[0]
		run("query "+rerun.Name+" scaled up", func(res *StepResult) error {
			result, err := r.admin.RunQuery(ctx, rerun.SQL, r.opts.RowCap)
			res.Result = result
			res.Detail = rerun.Description + " on the larger warehouse"
			return err
		})

		run("scale back to "+r.opts.BaseSize, func(res *StepResult) error {
			return r.admin.ResizeWarehouse(ctx, wh, r.opts.BaseSize, false)
		})

		run("suspend warehouse", func(res *StepResult) error {
			return r.admin.SuspendWarehouse(ctx, wh)
		})
	}

	if r.opts.KeepObjects {
		skip("revert account statement timeouts", "keeping objects")
		skip("drop warehouse "+wh, "keeping objects")
		skip("drop resource monitor "+rm, "keeping objects")
		return results, firstErr
	}

	run("revert account statement timeouts", func(res *StepResult) error {
		return r.admin.UnsetAccountTimeouts(ctx)
	})
	run("drop warehouse "+wh, func(res *StepResult) error {
		return r.admin.DropWarehouse(ctx, wh, true)
	})
	run("drop resource monitor "+rm, func(res *StepResult) error {
		return r.admin.DropResourceMonitor(ctx, rm, true)
	})

	return results, firstErr
}

// createWarehouse provisions the demo warehouse. Multi-cluster settings
// are edition gated; on Standard edition the create is retried as a
// single-cluster warehouse and the step downgrades to a warning.
func (r *Runner) createWarehouse(ctx context.Context, res *StepResult) error {
	spec := snowflake.WarehouseSpec{
		Name:               r.opts.WarehouseName(),
		Type:               "STANDARD",
		Size:               r.opts.BaseSize,
		MinClusterCount:    r.opts.MinClusterCount,
		MaxClusterCount:    r.opts.MaxClusterCount,
		ScalingPolicy:      r.opts.ScalingPolicy,
		AutoSuspendSeconds: r.opts.AutoSuspendSecs,
		AutoResume:         true,
		InitiallySuspended: true,
		Comment:            "cost governance demo warehouse",
	}

	err := r.admin.CreateWarehouse(ctx, spec)
	if err == nil {
		return nil
	}

	if spec.MaxClusterCount > 1 && errors.IsExpectedPlatformState(err) {
		res.Detail = "multi-cluster not available on this edition, created single-cluster instead"
		spec.MinClusterCount = 0
		spec.MaxClusterCount = 0
		spec.ScalingPolicy = ""
		if retryErr := r.admin.CreateWarehouse(ctx, spec); retryErr != nil {
			return retryErr
		}
		return err
	}

	return err
}

func (r *Runner) showWarehouses(ctx context.Context, res *StepResult) error {
	warehouses, err := r.admin.ListWarehouses(ctx, r.opts.WarehouseName())
	if err != nil {
		return err
	}
	if len(warehouses) == 0 {
		return errors.New(errors.ErrCodeSQLObjectNotFound,
			fmt.Sprintf("Warehouse %s missing after create", r.opts.WarehouseName()))
	}
	res.Detail = fmt.Sprintf("state=%s size=%s", warehouses[0].State, warehouses[0].Size)
	return nil
}

// createMonitor builds the demo resource monitor spec from the configured
// thresholds. Zero thresholds disable their trigger.
func (r *Runner) createMonitor(ctx context.Context, res *StepResult) error {
	spec := snowflake.MonitorSpec{
		Name:        r.opts.MonitorName(),
		CreditQuota: r.opts.CreditQuota,
		Frequency:   "MONTHLY",
	}

	if r.opts.NotifyPercent > 0 {
		spec.Triggers = append(spec.Triggers, snowflake.MonitorTrigger{
			Percent: r.opts.NotifyPercent, Action: snowflake.ActionNotify,
		})
	}
	if r.opts.SuspendPercent > 0 {
		spec.Triggers = append(spec.Triggers, snowflake.MonitorTrigger{
			Percent: r.opts.SuspendPercent, Action: snowflake.ActionSuspend,
		})
	}
	if r.opts.SuspendImmediatePercent > 0 {
		spec.Triggers = append(spec.Triggers, snowflake.MonitorTrigger{
			Percent: r.opts.SuspendImmediatePercent, Action: snowflake.ActionSuspendImmediate,
		})
	}

	res.Detail = fmt.Sprintf("credit_quota=%d triggers=%d", spec.CreditQuota, len(spec.Triggers))
	return r.admin.CreateResourceMonitor(ctx, spec)
}
