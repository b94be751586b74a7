package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"frostline/internal/config"
	"frostline/internal/security"
	"frostline/internal/snowflake"
	"frostline/internal/ui"
	"frostline/pkg/errors"
	"frostline/pkg/models"
)

var (
	verbose bool
	quiet   bool

	rootCmd = &cobra.Command{
		Use:   "frostline",
		Short: "Administer Snowflake warehouses and cost governance",
		Long: "Frostline - A CLI tool for provisioning Snowflake virtual warehouses, " +
			"resource monitors and statement timeout policies",
	}
)

func Execute() {
	defer errors.GetGlobalErrorHandler().Close()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().SetNormalizeFunc(normalizeFlag)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
}

// normalizeFlag accepts underscore spellings for hyphenated flags
func normalizeFlag(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home + "/.frostline")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is okay for now
	}
}

func newUI() *ui.UI {
	return ui.NewUI(verbose, quiet)
}

// passwordKeyringName is the credential store entry used when the config
// file carries no password
const passwordKeyringName = "snowflake-password"

// connectService loads the config, resolves the password and opens a
// Snowflake session. The caller owns the returned service.
func connectService() (*snowflake.Service, *models.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	password := cfg.Snowflake.Password
	if password == "" {
		if cm, cmErr := security.NewCredentialManager(); cmErr == nil {
			if cred, credErr := cm.GetCredential(passwordKeyringName); credErr == nil {
				password = cred.Value
			}
		}
	}

	timeout := 30 * time.Second
	if cfg.Snowflake.Timeout != "" {
		if d, parseErr := time.ParseDuration(cfg.Snowflake.Timeout); parseErr == nil {
			timeout = d
		}
	}

	sc := snowflake.Config{
		Account:   cfg.Snowflake.Account,
		Username:  cfg.Snowflake.Username,
		Password:  password,
		Database:  cfg.Snowflake.Database,
		Schema:    cfg.Snowflake.Schema,
		Warehouse: cfg.Snowflake.Warehouse,
		Role:      cfg.Snowflake.Role,
		Timeout:   timeout,
	}

	if err := snowflake.ValidateConfig(sc); err != nil {
		return nil, nil, err
	}

	service := snowflake.NewService(sc)
	if err := service.Connect(); err != nil {
		return nil, nil, err
	}

	return service, cfg, nil
}

// exitWithError renders the error and terminates the command
func exitWithError(err error) {
	ui.PrintError(err)
	os.Exit(1)
}
