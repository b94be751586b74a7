package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"frostline/internal/common"
	"frostline/internal/snowflake"
	"frostline/internal/ui"
	"frostline/pkg/models"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run analytic queries",
}

// Each subcommand binds its own flag variables; sharing one variable
// across commands would let the last registration win the default.
var (
	queryRunFile      string
	queryRunWarehouse string
	queryRunRows      int
	queryRunScript    bool

	querySampleWarehouse string
	querySampleRows      int
)

var queryRunCmd = &cobra.Command{
	Use:   "run [sql]",
	Short: "Run a query from an argument or a file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var sql, path string
		switch {
		case queryRunFile != "":
			cleaned, err := common.CleanPath(queryRunFile)
			if err != nil {
				exitWithError(err)
			}
			path = cleaned
			data, err := os.ReadFile(path)
			if err != nil {
				exitWithError(err)
			}
			sql = string(data)
		case len(args) == 1:
			sql = args[0]
		default:
			exitWithError(fmt.Errorf("provide a SQL argument or --file"))
		}

		service, cfg, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		ctx := context.Background()
		if err := prepareSession(ctx, service, cfg, queryRunWarehouse); err != nil {
			exitWithError(err)
		}

		u := newUI()
		u.VerbosePrintf("SQL: %s\n", sql)

		// Multi-statement scripts run sequentially without fetching rows
		if queryRunScript {
			if path != "" {
				err = service.ExecuteFile(path)
			} else {
				err = service.ExecuteScript(ctx, sql)
			}
			if err != nil {
				exitWithError(err)
			}
			ui.PrintSuccess("Script executed")
			return
		}

		result, err := service.RunQuery(ctx, sql, queryRunRows)
		if err != nil {
			exitWithError(err)
		}
		fmt.Print(ui.NewReporter(true).RenderResultSet(result))
	},
}

var querySampleCmd = &cobra.Command{
	Use:   "sample [name]",
	Short: "Run one of the built-in demo queries",
	Long:  "Run a named demo query against the Tasty Bytes analytic views, or list the available ones.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			table := ui.NewTable()
			table.AddHeader("Name", "Description")
			for _, q := range snowflake.SampleQueries() {
				table.AddRow(q.Name, q.Description)
			}
			table.Render()
			return
		}

		sample, err := snowflake.SampleQueryByName(args[0])
		if err != nil {
			exitWithError(err)
		}

		service, cfg, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		ctx := context.Background()
		if err := prepareSession(ctx, service, cfg, querySampleWarehouse); err != nil {
			exitWithError(err)
		}

		u := newUI()
		u.VerbosePrintf("SQL: %s\n", sample.SQL)

		ui.PrintInfo(sample.Description)
		result, err := service.RunQuery(ctx, sample.SQL, querySampleRows)
		if err != nil {
			exitWithError(err)
		}
		fmt.Print(ui.NewReporter(true).RenderResultSet(result))
	},
}

// prepareSession points the session at the requested warehouse and the
// demo database and schema when they are configured
func prepareSession(ctx context.Context, service *snowflake.Service, cfg *models.Config, warehouse string) error {
	if warehouse == "" {
		warehouse = cfg.Snowflake.Warehouse
	}
	if warehouse != "" {
		if err := service.UseWarehouse(ctx, warehouse); err != nil {
			return err
		}
	}

	database := cfg.Snowflake.Database
	schema := cfg.Snowflake.Schema
	if database == "" {
		database = cfg.Walkthrough.Database
		schema = cfg.Walkthrough.Schema
	}
	if database != "" {
		return service.UseDatabaseSchema(ctx, database, schema)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryRunCmd.Flags().StringVar(&queryRunFile, "file", "", "Read the SQL from a file")
	queryRunCmd.Flags().StringVar(&queryRunWarehouse, "warehouse", "", "Run on this warehouse")
	queryRunCmd.Flags().IntVar(&queryRunRows, "rows", 100, "Maximum rows to display, 0 for all")
	queryRunCmd.Flags().BoolVar(&queryRunScript, "script", false, "Run as a multi-statement script instead of a single query")
	queryCmd.AddCommand(queryRunCmd)

	querySampleCmd.Flags().StringVar(&querySampleWarehouse, "warehouse", "", "Run on this warehouse")
	querySampleCmd.Flags().IntVar(&querySampleRows, "rows", 10, "Maximum rows to display, 0 for all")
	queryCmd.AddCommand(querySampleCmd)
}
