package snowflake

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parameterColumns() []string {
	return []string{"key", "value", "default", "level", "description"}
}

func TestSetAccountTimeouts(t *testing.T) {
	service, mock := newMockService(t)

	tests := []struct {
		name          string
		statementSecs int
		queuedSecs    int
		setupMock     func()
		wantError     bool
	}{
		{
			name:          "both timeouts",
			statementSecs: 1800,
			queuedSecs:    600,
			setupMock: func() {
				mock.ExpectExec("ALTER ACCOUNT SET STATEMENT_TIMEOUT_IN_SECONDS = 1800 STATEMENT_QUEUED_TIMEOUT_IN_SECONDS = 600").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name:          "statement timeout only",
			statementSecs: 3600,
			setupMock: func() {
				mock.ExpectExec("ALTER ACCOUNT SET STATEMENT_TIMEOUT_IN_SECONDS = 3600").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name:      "no timeouts given",
			setupMock: func() {},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := service.SetAccountTimeouts(context.Background(), tt.statementSecs, tt.queuedSecs)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsetAccountTimeouts(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectExec("ALTER ACCOUNT UNSET STATEMENT_TIMEOUT_IN_SECONDS, STATEMENT_QUEUED_TIMEOUT_IN_SECONDS").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.UnsetAccountTimeouts(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowAccountParameters(t *testing.T) {
	service, mock := newMockService(t)

	rows := sqlmock.NewRows(parameterColumns()).
		AddRow("STATEMENT_TIMEOUT_IN_SECONDS", "1800", "172800", "ACCOUNT",
			"Timeout in seconds for statements").
		AddRow("STATEMENT_QUEUED_TIMEOUT_IN_SECONDS", "600", "0", "ACCOUNT",
			"Timeout in seconds for queued statements")
	mock.ExpectQuery("SHOW PARAMETERS LIKE 'STATEMENT%' IN ACCOUNT").WillReturnRows(rows)

	params, err := service.ShowAccountParameters(context.Background(), "STATEMENT%")
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "STATEMENT_TIMEOUT_IN_SECONDS", params[0].Key)
	assert.Equal(t, "1800", params[0].Value)
	assert.Equal(t, "172800", params[0].Default)
	assert.Equal(t, "ACCOUNT", params[0].Level)
}

func TestShowWarehouseParameters(t *testing.T) {
	service, mock := newMockService(t)

	t.Run("valid warehouse", func(t *testing.T) {
		rows := sqlmock.NewRows(parameterColumns()).
			AddRow("STATEMENT_TIMEOUT_IN_SECONDS", "1800", "172800", "WAREHOUSE",
				"Timeout in seconds for statements")
		mock.ExpectQuery("SHOW PARAMETERS LIKE 'STATEMENT%' IN WAREHOUSE DEMO_WH").
			WillReturnRows(rows)

		params, err := service.ShowWarehouseParameters(context.Background(), "DEMO_WH", "STATEMENT%")
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.Equal(t, "WAREHOUSE", params[0].Level)
	})

	t.Run("invalid warehouse name", func(t *testing.T) {
		_, err := service.ShowWarehouseParameters(context.Background(), "bad name", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid identifier")
	})
}
