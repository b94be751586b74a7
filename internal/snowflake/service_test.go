package snowflake

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	service := NewService(Config{Timeout: 5 * time.Second})
	service.db = db
	service.connected = true
	return service, mock
}

func TestNewService(t *testing.T) {
	config := Config{
		Account:  "test123.us-east-1",
		Username: "testuser",
		Password: "testpass",
		Role:     "ACCOUNTADMIN",
		Timeout:  30 * time.Second,
	}

	service := NewService(config)

	assert.NotNil(t, service)
	assert.Equal(t, config, service.config)
	assert.False(t, service.connected)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Account:  "test123.us-east-1",
				Username: "testuser",
				Password: "testpass",
				Role:     "ACCOUNTADMIN",
			},
			wantError: false,
		},
		{
			name: "valid config without warehouse",
			config: Config{
				Account:  "test123.us-east-1",
				Username: "testuser",
				Password: "testpass",
				Role:     "SYSADMIN",
			},
			wantError: false,
		},
		{
			name: "missing account",
			config: Config{
				Username: "testuser",
				Password: "testpass",
				Role:     "ACCOUNTADMIN",
			},
			wantError: true,
			errorMsg:  "account is required",
		},
		{
			name: "missing username",
			config: Config{
				Account:  "test123.us-east-1",
				Password: "testpass",
				Role:     "ACCOUNTADMIN",
			},
			wantError: true,
			errorMsg:  "username is required",
		},
		{
			name: "missing password",
			config: Config{
				Account:  "test123.us-east-1",
				Username: "testuser",
				Role:     "ACCOUNTADMIN",
			},
			wantError: true,
			errorMsg:  "password is required",
		},
		{
			name: "missing role",
			config: Config{
				Account:  "test123.us-east-1",
				Username: "testuser",
				Password: "testpass",
			},
			wantError: true,
			errorMsg:  "role is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.config)
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name: "single statement",
			sql:  "SHOW WAREHOUSES",
			expected: []string{
				"SHOW WAREHOUSES",
			},
		},
		{
			name: "multiple statements",
			sql:  "CREATE WAREHOUSE demo_wh; ALTER WAREHOUSE demo_wh SUSPEND;",
			expected: []string{
				"CREATE WAREHOUSE demo_wh",
				" ALTER WAREHOUSE demo_wh SUSPEND",
			},
		},
		{
			name: "statements with strings",
			sql:  "ALTER WAREHOUSE demo_wh SET COMMENT = 'demo;object'; SHOW WAREHOUSES;",
			expected: []string{
				"ALTER WAREHOUSE demo_wh SET COMMENT = 'demo;object'",
				" SHOW WAREHOUSES",
			},
		},
		{
			name: "statements with double quotes",
			sql:  `SELECT * FROM "odd;view"; SHOW WAREHOUSES;`,
			expected: []string{
				`SELECT * FROM "odd;view"`,
				` SHOW WAREHOUSES`,
			},
		},
		{
			name: "statement without trailing semicolon",
			sql:  "SELECT 1",
			expected: []string{
				"SELECT 1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitStatements(tt.sql)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExecuteScript(t *testing.T) {
	service, mock := newMockService(t)

	tests := []struct {
		name      string
		script    string
		setupMock func()
		wantError bool
		errorMsg  string
	}{
		{
			name:   "successful execution",
			script: "CREATE WAREHOUSE demo_wh; ALTER WAREHOUSE demo_wh SUSPEND;",
			setupMock: func() {
				mock.ExpectExec("CREATE WAREHOUSE demo_wh").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("ALTER WAREHOUSE demo_wh SUSPEND").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantError: false,
		},
		{
			name:   "not connected",
			script: "SELECT 1",
			setupMock: func() {
				service.connected = false
			},
			wantError: true,
			errorMsg:  "Not connected to database",
		},
		{
			name:   "statement failure stops execution",
			script: "CREATE WAREHOUSE demo_wh; SHOW WAREHOUSES;",
			setupMock: func() {
				service.connected = true
				mock.ExpectExec("CREATE WAREHOUSE demo_wh").
					WillReturnError(fmt.Errorf("Object 'DEMO_WH' already exists."))
			},
			wantError: true,
			errorMsg:  "Failed to execute statement 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := service.ExecuteScript(context.Background(), tt.script)

			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
				assert.NoError(t, mock.ExpectationsWereMet())
			}

			service.connected = true
		})
	}
}

func TestUseWarehouse(t *testing.T) {
	service, mock := newMockService(t)

	t.Run("valid warehouse", func(t *testing.T) {
		mock.ExpectExec("USE WAREHOUSE DEMO_WH").WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.UseWarehouse(context.Background(), "DEMO_WH")
		assert.NoError(t, err)
	})

	t.Run("invalid identifier rejected before execution", func(t *testing.T) {
		err := service.UseWarehouse(context.Background(), "demo wh; DROP TABLE x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid identifier")
	})
}

func TestUseDatabaseSchema(t *testing.T) {
	service, mock := newMockService(t)

	t.Run("database and schema", func(t *testing.T) {
		mock.ExpectExec("USE DATABASE TASTY_BYTES").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("USE SCHEMA ANALYTICS").WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.UseDatabaseSchema(context.Background(), "TASTY_BYTES", "ANALYTICS")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty schema keeps database default", func(t *testing.T) {
		mock.ExpectExec("USE DATABASE TASTY_BYTES").WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.UseDatabaseSchema(context.Background(), "TASTY_BYTES", "")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid database rejected before execution", func(t *testing.T) {
		err := service.UseDatabaseSchema(context.Background(), "tasty bytes", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid identifier")
	})
}

func TestClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	service := NewService(Config{Timeout: 5 * time.Second})
	service.db = db
	service.connected = true

	t.Run("successful close", func(t *testing.T) {
		mock.ExpectClose()

		err := service.Close()

		assert.NoError(t, err)
		assert.False(t, service.connected)
	})

	t.Run("already closed", func(t *testing.T) {
		service.connected = false

		err := service.Close()

		assert.NoError(t, err)
	})
}

// BenchmarkSplitStatements benchmarks the statement splitting function
func BenchmarkSplitStatements(b *testing.B) {
	script := `
		CREATE WAREHOUSE demo_wh WAREHOUSE_SIZE = 'XSMALL';
		ALTER WAREHOUSE demo_wh SET COMMENT = 'demo; with semicolon';
		ALTER WAREHOUSE demo_wh SUSPEND;
		DROP WAREHOUSE demo_wh;
	`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = splitStatements(script)
	}
}
