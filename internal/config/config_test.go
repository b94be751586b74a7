package config

import (
	"os"
	"path/filepath"
	"testing"

	"frostline/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGetConfigPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".frostline")
	assert.Equal(t, expected, GetConfigPath())
}

func TestGetConfigFile(t *testing.T) {
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".frostline", "config.yaml")
	assert.Equal(t, expected, GetConfigFile())
}

func TestGetConfigFileEnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	override := filepath.Join(tempDir, "alt.yaml")
	t.Setenv("FROSTLINE_CONFIG", override)

	assert.Equal(t, override, GetConfigFile())
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	testConfig := Default()
	testConfig.Snowflake = models.Snowflake{
		Account:   "test123.us-east-1",
		Username:  "testuser",
		Password:  "testpass",
		Role:      "ACCOUNTADMIN",
		Warehouse: "TEST_WH",
		Database:  "TASTY_BYTES",
		Schema:    "ANALYTICS",
	}

	err := Save(testConfig)
	assert.NoError(t, err)
	assert.True(t, Exists())

	// Password must not be stored in the clear
	data, err := os.ReadFile(GetConfigFile())
	require.NoError(t, err)

	var onDisk models.Config
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.True(t, IsEncrypted(onDisk.Snowflake.Password))
	assert.NotContains(t, string(data), "testpass")

	loaded, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test123.us-east-1", loaded.Snowflake.Account)
	assert.Equal(t, "testpass", loaded.Snowflake.Password)
	assert.Equal(t, "ACCOUNTADMIN", loaded.Snowflake.Role)
	assert.Equal(t, "XSMALL", loaded.Warehouse.Size)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "STANDARD", cfg.Warehouse.Type)
	assert.Equal(t, 60, cfg.Warehouse.AutoSuspendSeconds)
	assert.Equal(t, "MONTHLY", cfg.Monitor.Frequency)
	assert.Equal(t, 75, cfg.Monitor.NotifyPercent)
	assert.Equal(t, 110, cfg.Monitor.SuspendImmediatePercent)
}

func TestEncryptDecryptPassword(t *testing.T) {
	encrypted, err := EncryptPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, IsEncrypted(encrypted))

	// Encrypting twice is a no-op
	again, err := EncryptPassword(encrypted)
	require.NoError(t, err)
	assert.Equal(t, encrypted, again)

	decrypted, err := DecryptPassword(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", decrypted)
}

func TestDecryptPlaintextPassthrough(t *testing.T) {
	out, err := DecryptPassword("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}
