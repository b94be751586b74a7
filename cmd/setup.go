package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"frostline/internal/config"
	"frostline/internal/security"
	"frostline/internal/ui"
	"frostline/pkg/models"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Initial configuration setup",
	Run:   runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

const (
	storageKeyring = "System keyring"
	storageConfig  = "Config file (encrypted)"
)

func runSetup(cmd *cobra.Command, args []string) {
	fmt.Println("Setting up Frostline...")

	if config.Exists() {
		overwrite, err := ui.ConfirmPrompt("Configuration already exists. Do you want to overwrite it?", false)
		if err != nil || !overwrite {
			fmt.Println("Setup cancelled.")
			return
		}
	}

	cfg := config.Default()

	ui.PrintSection("Snowflake Connection")

	cfg.Snowflake.Account = askRequired("Snowflake Account (e.g., xy12345.us-east-1):", "", "")
	cfg.Snowflake.Username = askRequired("Username:", "", "")
	cfg.Snowflake.Password = askPassword("Password:")
	cfg.Snowflake.Role = askRequired("Role:", "ACCOUNTADMIN",
		"Warehouse and account governance operations usually need ACCOUNTADMIN")

	database, err := ui.Input("Database with the demo views (optional):", cfg.Walkthrough.Database, "")
	if err != nil {
		exitWithError(err)
	}
	cfg.Snowflake.Database = database

	schema, err := ui.Input("Schema with the demo views (optional):", cfg.Walkthrough.Schema, "")
	if err != nil {
		exitWithError(err)
	}
	cfg.Snowflake.Schema = schema

	ui.PrintSection("Credential Storage")

	storage, err := ui.Select("Where should the password be stored?",
		[]string{storageKeyring, storageConfig})
	if err != nil {
		exitWithError(err)
	}
	if storage == storageKeyring {
		if err := storePasswordInKeyring(cfg); err != nil {
			fmt.Printf("Keyring unavailable (%v), keeping password in the config file.\n", err)
		}
	}

	ui.PrintSection("Walkthrough Defaults")

	cfg.Walkthrough.Prefix = askRequired("Object name prefix for demo objects:", cfg.Walkthrough.Prefix, "")

	quotaValue, err := ui.Input("Monthly credit quota for the demo resource monitor:",
		strconv.Itoa(cfg.Walkthrough.CreditQuota), "")
	if err != nil {
		exitWithError(err)
	}
	if quota, convErr := strconv.Atoi(quotaValue); convErr == nil && quota > 0 {
		cfg.Walkthrough.CreditQuota = quota
	}

	if err := config.Save(cfg); err != nil {
		fmt.Printf("Error saving configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", config.GetConfigFile())

	testNow, err := ui.ConfirmPrompt("Test the connection now?", true)
	if err == nil && testNow {
		service, _, err := connectService()
		if err != nil {
			fmt.Printf("Connection failed: %v\n", err)
			os.Exit(1)
		}
		defer service.Close()

		if err := service.TestConnection(); err != nil {
			fmt.Printf("Connection test failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Connection verified.")
	}

	fmt.Println("Run 'frostline walkthrough' for a guided tour.")
}

// askRequired prompts until the answer is non-empty
func askRequired(message, defaultValue, help string) string {
	for {
		value, err := ui.Input(message, defaultValue, help)
		if err != nil {
			exitWithError(err)
		}
		if value != "" {
			return value
		}
		ui.PrintWarning("A value is required")
	}
}

// askPassword prompts until a non-empty password is entered
func askPassword(message string) string {
	for {
		value, err := ui.Password(message, "")
		if err != nil {
			exitWithError(err)
		}
		if value != "" {
			return value
		}
		ui.PrintWarning("A value is required")
	}
}

// storePasswordInKeyring moves the password out of the config into the
// credential store
func storePasswordInKeyring(cfg *models.Config) error {
	cm, err := security.NewCredentialManager()
	if err != nil {
		return err
	}

	metadata := map[string]string{
		"account":  cfg.Snowflake.Account,
		"username": cfg.Snowflake.Username,
	}
	if err := cm.StoreCredential(passwordKeyringName, "password", cfg.Snowflake.Password, metadata); err != nil {
		return err
	}

	cfg.Snowflake.Password = ""
	fmt.Println("Password stored in the system keyring.")
	return nil
}
