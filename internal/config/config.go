package config

import (
	"fmt"
	"os"
	"path/filepath"

	"frostline/internal/common"
	"frostline/pkg/models"
	"gopkg.in/yaml.v3"
)

func GetConfigPath() string {
	// Check for environment variable first
	if configPath := os.Getenv("FROSTLINE_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".frostline")
}

func GetConfigFile() string {
	// Check for environment variable first
	if configFile := os.Getenv("FROSTLINE_CONFIG"); configFile != "" {
		// Validate the path to prevent directory traversal
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			// Fall back to default if invalid
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

func Load() (*models.Config, error) {
	configFile := GetConfigFile()

	cleanedPath, err := common.CleanPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := DecryptConfigPasswords(config); err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	return config, nil
}

func Save(config *models.Config) error {
	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := EncryptConfigPasswords(config); err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	configFile := GetConfigFile()

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, common.FilePermissionSecure); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}

// Default returns a config pre-populated with the walkthrough's reference
// values: an extra-small standard warehouse with 60s auto-suspend and a
// monthly resource monitor notifying at 75% and suspending at 100%/110%.
func Default() *models.Config {
	return &models.Config{
		Warehouse: models.Warehouse{
			Type:                 "STANDARD",
			Size:                 "XSMALL",
			MinClusterCount:      1,
			MaxClusterCount:      1,
			ScalingPolicy:        "STANDARD",
			AutoSuspendSeconds:   60,
			AutoResume:           true,
			InitiallySuspended:   true,
			StatementTimeoutSecs: 1800,
			QueuedTimeoutSecs:    600,
		},
		Monitor: models.Monitor{
			CreditQuota:             100,
			Frequency:               "MONTHLY",
			NotifyPercent:           75,
			SuspendPercent:          100,
			SuspendImmediatePercent: 110,
		},
		Walkthrough: models.Walkthrough{
			Prefix:      "FROSTLINE_DEMO",
			Database:    "TASTY_BYTES",
			Schema:      "ANALYTICS",
			CreditQuota: 20,
			ScaleUpSize: "XLARGE",
			QueryRowCap: 10,
		},
	}
}
