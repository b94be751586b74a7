package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"frostline/internal/ui"
	"frostline/internal/walkthrough"
)

var (
	walkKeep   bool
	walkPrefix string
	walkQuota  int
)

var walkthroughCmd = &cobra.Command{
	Use:   "walkthrough",
	Short: "Run the guided warehouse and cost-governance tour",
	Long: "Provision a demo warehouse with a resource monitor and statement timeouts, " +
		"exercise it with analytic queries at two sizes, then revert the account " +
		"settings and drop the demo objects.",
	Run: runWalkthrough,
}

func init() {
	rootCmd.AddCommand(walkthroughCmd)

	walkthroughCmd.Flags().BoolVar(&walkKeep, "keep", false, "Keep the demo objects and account settings")
	walkthroughCmd.Flags().StringVar(&walkPrefix, "prefix", "", "Override the configured object name prefix")
	walkthroughCmd.Flags().IntVar(&walkQuota, "quota", 0, "Override the configured credit quota")
}

func runWalkthrough(cmd *cobra.Command, args []string) {
	service, cfg, err := connectService()
	if err != nil {
		exitWithError(err)
	}
	defer service.Close()

	opts := walkthrough.OptionsFromConfig(cfg)
	if walkPrefix != "" {
		opts.Prefix = walkPrefix
	}
	if walkQuota > 0 {
		opts.CreditQuota = walkQuota
	}
	if walkKeep {
		opts.KeepObjects = true
	}

	ui.ShowHeader("Frostline Walkthrough")
	ui.PrintKeyValue("Warehouse", opts.WarehouseName())
	ui.PrintKeyValue("Monitor", opts.MonitorName())
	ui.PrintKeyValue("Credit quota", fmt.Sprintf("%d credits", opts.CreditQuota))
	fmt.Println()

	reporter := ui.NewReporter(true)
	u := newUI()

	results, err := walkthrough.NewRunner(service, opts, func(res walkthrough.StepResult) {
		u.Println(reporter.RenderStep(res))

		if u.IsVerbose() {
			if res.Result != nil {
				fmt.Print(reporter.RenderResultSet(res.Result))
			}
			if len(res.Params) > 0 {
				fmt.Print(reporter.RenderParameters(res.Params))
			}
		}
	}).Run(cmd.Context())

	counter := ui.NewStepCounter(len(results))
	for _, res := range results {
		counter.Advance(res.Status != walkthrough.StatusFailed, res.Status == walkthrough.StatusWarning)
	}
	counter.Finish()

	if opts.KeepObjects {
		ui.PrintWarning(fmt.Sprintf("Demo objects kept; clean up later with "+
			"'frostline warehouse drop %s' and 'frostline monitor drop %s', "+
			"and revert with 'frostline account unset-timeouts'",
			opts.WarehouseName(), opts.MonitorName()))
	}

	if err != nil {
		exitWithError(err)
	}
}
