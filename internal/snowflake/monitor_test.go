package snowflake

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoMonitorSpec() MonitorSpec {
	return MonitorSpec{
		Name:        "DEMO_RM",
		CreditQuota: 100,
		Frequency:   "MONTHLY",
		Triggers: []MonitorTrigger{
			{Percent: 75, Action: ActionNotify},
			{Percent: 100, Action: ActionSuspend},
			{Percent: 110, Action: ActionSuspendImmediate},
		},
	}
}

func TestMonitorSpecValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*MonitorSpec)
		wantError bool
		errorMsg  string
	}{
		{
			name:   "valid spec",
			mutate: func(m *MonitorSpec) {},
		},
		{
			name:      "missing name",
			mutate:    func(m *MonitorSpec) { m.Name = "" },
			wantError: true,
			errorMsg:  "identifier is required",
		},
		{
			name:      "zero quota",
			mutate:    func(m *MonitorSpec) { m.CreditQuota = 0 },
			wantError: true,
			errorMsg:  "positive number of credits",
		},
		{
			name:      "bad frequency",
			mutate:    func(m *MonitorSpec) { m.Frequency = "HOURLY" },
			wantError: true,
			errorMsg:  "MONTHLY, DAILY, WEEKLY, YEARLY, NEVER",
		},
		{
			name: "zero percent trigger",
			mutate: func(m *MonitorSpec) {
				m.Triggers = []MonitorTrigger{{Percent: 0, Action: ActionNotify}}
			},
			wantError: true,
			errorMsg:  "threshold percent must be positive",
		},
		{
			name: "unknown action",
			mutate: func(m *MonitorSpec) {
				m.Triggers = []MonitorTrigger{{Percent: 50, Action: "HIBERNATE"}}
			},
			wantError: true,
			errorMsg:  "NOTIFY, SUSPEND or SUSPEND_IMMEDIATE",
		},
		{
			name: "duplicate suspend triggers",
			mutate: func(m *MonitorSpec) {
				m.Triggers = []MonitorTrigger{
					{Percent: 90, Action: ActionSuspend},
					{Percent: 100, Action: ActionSuspend},
				}
			},
			wantError: true,
			errorMsg:  "at most one SUSPEND trigger",
		},
		{
			name: "duplicate suspend immediate triggers",
			mutate: func(m *MonitorSpec) {
				m.Triggers = []MonitorTrigger{
					{Percent: 100, Action: ActionSuspendImmediate},
					{Percent: 110, Action: ActionSuspendImmediate},
				}
			},
			wantError: true,
			errorMsg:  "at most one SUSPEND_IMMEDIATE trigger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := demoMonitorSpec()
			tt.mutate(&spec)

			err := spec.Validate()
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMonitorSpecSQL(t *testing.T) {
	spec := demoMonitorSpec()
	spec.OrReplace = true

	stmt, err := spec.SQL()
	require.NoError(t, err)

	assert.Contains(t, stmt, "CREATE OR REPLACE RESOURCE MONITOR DEMO_RM")
	assert.Contains(t, stmt, "CREDIT_QUOTA = 100")
	assert.Contains(t, stmt, "FREQUENCY = MONTHLY")
	assert.Contains(t, stmt, "START_TIMESTAMP = IMMEDIATELY")
	assert.Contains(t, stmt, "ON 75 PERCENT DO NOTIFY")
	assert.Contains(t, stmt, "ON 100 PERCENT DO SUSPEND")
	assert.Contains(t, stmt, "ON 110 PERCENT DO SUSPEND_IMMEDIATE")
}

func TestMonitorSpecSQLWithStartTimestamp(t *testing.T) {
	spec := demoMonitorSpec()
	spec.StartTimestamp = "2026-09-01 00:00"

	stmt, err := spec.SQL()
	require.NoError(t, err)

	assert.Contains(t, stmt, "START_TIMESTAMP = '2026-09-01 00:00'")
	assert.NotContains(t, stmt, "IMMEDIATELY")
}

func TestCreateResourceMonitor(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectExec("CREATE RESOURCE MONITOR DEMO_RM").WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.CreateResourceMonitor(context.Background(), demoMonitorSpec())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlterResourceMonitorQuota(t *testing.T) {
	service, mock := newMockService(t)

	t.Run("valid quota", func(t *testing.T) {
		mock.ExpectExec("ALTER RESOURCE MONITOR DEMO_RM SET CREDIT_QUOTA = 50").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.AlterResourceMonitorQuota(context.Background(), "DEMO_RM", 50)
		assert.NoError(t, err)
	})

	t.Run("invalid quota", func(t *testing.T) {
		err := service.AlterResourceMonitorQuota(context.Background(), "DEMO_RM", -1)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "positive number of credits")
	})
}

func TestDropResourceMonitor(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectExec("DROP RESOURCE MONITOR IF EXISTS DEMO_RM").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.DropResourceMonitor(context.Background(), "DEMO_RM", true)
	assert.NoError(t, err)
}

func TestListResourceMonitors(t *testing.T) {
	service, mock := newMockService(t)

	rows := sqlmock.NewRows([]string{
		"name", "credit_quota", "used_credits", "remaining_credits",
		"level", "frequency", "start_time", "end_time", "created_on",
	}).AddRow("DEMO_RM", "100", "12.5", "87.5", "WAREHOUSE", "MONTHLY",
		"2026-08-01 00:00:00", "", "2026-08-01 00:00:00")
	mock.ExpectQuery("SHOW RESOURCE MONITORS").WillReturnRows(rows)

	monitors, err := service.ListResourceMonitors(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, monitors, 1)

	assert.Equal(t, "DEMO_RM", monitors[0].Name)
	assert.Equal(t, "100", monitors[0].CreditQuota)
	assert.Equal(t, "12.5", monitors[0].UsedCredits)
	assert.Equal(t, "MONTHLY", monitors[0].Frequency)
}
