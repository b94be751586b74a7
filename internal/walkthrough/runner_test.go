package walkthrough

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frostline/internal/snowflake"
	"frostline/pkg/models"
)

// fakeAdmin records every call and fails the operations listed in failOn.
type fakeAdmin struct {
	calls  []string
	failOn map[string]error
	// failOnce errors are consumed on first use so retries succeed
	failOnce map[string]error

	warehouses []snowflake.WarehouseInfo
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		failOn:   map[string]error{},
		failOnce: map[string]error{},
		warehouses: []snowflake.WarehouseInfo{
			{Name: "FROSTLINE_DEMO_WH", State: "SUSPENDED", Size: "X-Small"},
		},
	}
}

func (f *fakeAdmin) record(op string) error {
	f.calls = append(f.calls, op)
	if err, ok := f.failOnce[op]; ok {
		delete(f.failOnce, op)
		return err
	}
	if err, ok := f.failOn[op]; ok {
		return err
	}
	return nil
}

func (f *fakeAdmin) called(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeAdmin) CreateWarehouse(ctx context.Context, spec snowflake.WarehouseSpec) error {
	return f.record("CreateWarehouse")
}

func (f *fakeAdmin) ListWarehouses(ctx context.Context, like string) ([]snowflake.WarehouseInfo, error) {
	if err := f.record("ListWarehouses"); err != nil {
		return nil, err
	}
	return f.warehouses, nil
}

func (f *fakeAdmin) ResizeWarehouse(ctx context.Context, name, size string, wait bool) error {
	return f.record("ResizeWarehouse " + size)
}

func (f *fakeAdmin) SuspendWarehouse(ctx context.Context, name string) error {
	return f.record("SuspendWarehouse")
}

func (f *fakeAdmin) SetWarehouseTimeouts(ctx context.Context, name string, statementSecs, queuedSecs int) error {
	return f.record("SetWarehouseTimeouts")
}

func (f *fakeAdmin) ShowWarehouseParameters(ctx context.Context, warehouse, like string) ([]snowflake.Parameter, error) {
	if err := f.record("ShowWarehouseParameters"); err != nil {
		return nil, err
	}
	return []snowflake.Parameter{{Key: "STATEMENT_TIMEOUT_IN_SECONDS", Value: "1800", Level: "WAREHOUSE"}}, nil
}

func (f *fakeAdmin) DropWarehouse(ctx context.Context, name string, ifExists bool) error {
	return f.record("DropWarehouse")
}

func (f *fakeAdmin) CreateResourceMonitor(ctx context.Context, spec snowflake.MonitorSpec) error {
	return f.record("CreateResourceMonitor")
}

func (f *fakeAdmin) AttachResourceMonitor(ctx context.Context, warehouse, monitor string) error {
	return f.record("AttachResourceMonitor")
}

func (f *fakeAdmin) DropResourceMonitor(ctx context.Context, name string, ifExists bool) error {
	return f.record("DropResourceMonitor")
}

func (f *fakeAdmin) SetAccountTimeouts(ctx context.Context, statementSecs, queuedSecs int) error {
	return f.record("SetAccountTimeouts")
}

func (f *fakeAdmin) UnsetAccountTimeouts(ctx context.Context) error {
	return f.record("UnsetAccountTimeouts")
}

func (f *fakeAdmin) ShowAccountParameters(ctx context.Context, like string) ([]snowflake.Parameter, error) {
	if err := f.record("ShowAccountParameters"); err != nil {
		return nil, err
	}
	return []snowflake.Parameter{{Key: "STATEMENT_TIMEOUT_IN_SECONDS", Value: "1800", Level: "ACCOUNT"}}, nil
}

func (f *fakeAdmin) UseWarehouse(ctx context.Context, name string) error {
	return f.record("UseWarehouse")
}

func (f *fakeAdmin) UseDatabaseSchema(ctx context.Context, database, schema string) error {
	return f.record("UseDatabaseSchema")
}

func (f *fakeAdmin) RunQuery(ctx context.Context, query string, rowCap int) (*snowflake.ResultSet, error) {
	if err := f.record("RunQuery"); err != nil {
		return nil, err
	}
	return &snowflake.ResultSet{Columns: []string{"C"}, Rows: [][]string{{"1"}}}, nil
}

func testOptions() Options {
	cfg := models.Config{
		Walkthrough: models.Walkthrough{
			Prefix:   "FROSTLINE_DEMO",
			Database: "TASTY_BYTES",
			Schema:   "ANALYTICS",
		},
	}
	return OptionsFromConfig(&cfg)
}

func TestOptionsFromConfigDefaults(t *testing.T) {
	opts := OptionsFromConfig(&models.Config{})

	assert.Equal(t, "FROSTLINE_DEMO_WH", opts.WarehouseName())
	assert.Equal(t, "FROSTLINE_DEMO_RM", opts.MonitorName())
	assert.Equal(t, "XSMALL", opts.BaseSize)
	assert.Equal(t, "XLARGE", opts.ScaleUpSize)
	assert.Equal(t, 20, opts.CreditQuota)
	assert.Equal(t, 1800, opts.StatementSecs)
	assert.Equal(t, 600, opts.QueuedSecs)
	assert.Equal(t, 10, opts.RowCap)
}

func TestRunHappyPath(t *testing.T) {
	admin := newFakeAdmin()
	var reported []StepResult
	runner := NewRunner(admin, testOptions(), func(res StepResult) {
		reported = append(reported, res)
	})

	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(results), len(reported))

	for _, res := range results {
		assert.Equal(t, StatusOK, res.Status, res.Name)
	}

	// three samples plus the scaled-up rerun
	assert.Equal(t, 4, admin.called("RunQuery"))
	assert.Equal(t, 1, admin.called("ResizeWarehouse XLARGE"))
	assert.Equal(t, 1, admin.called("ResizeWarehouse XSMALL"))
	assert.Equal(t, 1, admin.called("SuspendWarehouse"))
	assert.Equal(t, 1, admin.called("UnsetAccountTimeouts"))
	assert.Equal(t, 1, admin.called("DropWarehouse"))
	assert.Equal(t, 1, admin.called("DropResourceMonitor"))
}

func TestRunKeepObjectsSkipsTeardown(t *testing.T) {
	admin := newFakeAdmin()
	opts := testOptions()
	opts.KeepObjects = true

	results, err := runner(admin, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, admin.called("UnsetAccountTimeouts"))
	assert.Zero(t, admin.called("DropWarehouse"))
	assert.Zero(t, admin.called("DropResourceMonitor"))

	skipped := 0
	for _, res := range results {
		if res.Status == StatusSkipped {
			skipped++
		}
	}
	assert.Equal(t, 3, skipped)
}

func TestRunSetupFailureStillTearsDown(t *testing.T) {
	admin := newFakeAdmin()
	admin.failOn["SetAccountTimeouts"] = fmt.Errorf("003001 (42501): Insufficient privileges to operate on account")

	results, err := runner(admin, testOptions()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient privileges")

	// queries never ran, teardown still did
	assert.Zero(t, admin.called("RunQuery"))
	assert.Equal(t, 1, admin.called("DropWarehouse"))
	assert.Equal(t, 1, admin.called("DropResourceMonitor"))

	failed := 0
	for _, res := range results {
		if res.Status == StatusFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestRunAlreadySuspendedIsWarning(t *testing.T) {
	admin := newFakeAdmin()
	admin.failOn["SuspendWarehouse"] = fmt.Errorf(
		"000605 (57014): Invalid state. Warehouse 'FROSTLINE_DEMO_WH' cannot be suspended.")

	results, err := runner(admin, testOptions()).Run(context.Background())
	require.NoError(t, err)

	var suspend *StepResult
	for i := range results {
		if results[i].Name == "suspend warehouse" {
			suspend = &results[i]
		}
	}
	require.NotNil(t, suspend)
	assert.Equal(t, StatusWarning, suspend.Status)

	// the run continued into teardown
	assert.Equal(t, 1, admin.called("DropWarehouse"))
}

func TestRunMultiClusterFallback(t *testing.T) {
	admin := newFakeAdmin()
	admin.failOnce["CreateWarehouse"] = fmt.Errorf(
		"000002 (0A000): Unsupported feature 'MULTIPLE CLUSTERS'.")

	opts := testOptions()
	opts.MinClusterCount = 1
	opts.MaxClusterCount = 3
	opts.ScalingPolicy = "STANDARD"

	results, err := runner(admin, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, admin.called("CreateWarehouse"))
	assert.Equal(t, StatusWarning, results[0].Status)
	assert.Contains(t, results[0].Detail, "single-cluster")
}

func runner(admin Admin, opts Options) *Runner {
	return NewRunner(admin, opts, nil)
}
