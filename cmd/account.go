package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"frostline/internal/ui"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage account-level statement timeout parameters",
}

var (
	acctStatementSecs int
	acctQueuedSecs    int
	acctParamsLike    string
)

var accountSetTimeoutsCmd = &cobra.Command{
	Use:   "set-timeouts",
	Short: "Set statement timeouts account-wide",
	Long: "Set STATEMENT_TIMEOUT_IN_SECONDS and STATEMENT_QUEUED_TIMEOUT_IN_SECONDS " +
		"for the whole account. Requires the ACCOUNTADMIN role.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		statementSecs := acctStatementSecs
		queuedSecs := acctQueuedSecs
		if statementSecs == 0 && queuedSecs == 0 {
			statementSecs = cfg.Warehouse.StatementTimeoutSecs
			queuedSecs = cfg.Warehouse.QueuedTimeoutSecs
		}

		if err := service.SetAccountTimeouts(context.Background(), statementSecs, queuedSecs); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess("Account statement timeouts set")
		ui.PrintWarning("Account-wide parameters affect every user; remember to revert with 'frostline account unset-timeouts'")
	},
}

var accountUnsetTimeoutsCmd = &cobra.Command{
	Use:   "unset-timeouts",
	Short: "Revert account statement timeouts to platform defaults",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.UnsetAccountTimeouts(context.Background()); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess("Account statement timeouts reverted")
	},
}

var accountParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show account-level parameters",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		params, err := service.ShowAccountParameters(context.Background(), acctParamsLike)
		if err != nil {
			exitWithError(err)
		}

		if len(params) == 0 {
			ui.PrintInfo("No parameters matched")
			return
		}
		fmt.Print(ui.NewReporter(true).RenderParameters(params))
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)

	accountSetTimeoutsCmd.Flags().IntVar(&acctStatementSecs, "statement-timeout", 0, "Statement timeout in seconds")
	accountSetTimeoutsCmd.Flags().IntVar(&acctQueuedSecs, "queued-timeout", 0, "Queued statement timeout in seconds")
	accountCmd.AddCommand(accountSetTimeoutsCmd)

	accountCmd.AddCommand(accountUnsetTimeoutsCmd)

	accountParamsCmd.Flags().StringVar(&acctParamsLike, "like", "STATEMENT%", "Filter parameter names with a SQL LIKE pattern")
	accountCmd.AddCommand(accountParamsCmd)
}
