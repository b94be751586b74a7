package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"frostline/internal/snowflake"
	"frostline/internal/ui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Manage resource monitors",
}

var (
	monQuota            int
	monFrequency        string
	monStartTimestamp   string
	monNotifyPercent    int
	monSuspendPercent   int
	monImmediatePercent int
	monOrReplace        bool
	monAttachTo         string

	monDropExists bool
	monDropYes    bool
	monListLike   string
)

var monitorCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a resource monitor",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		quota := monQuota
		if quota == 0 {
			quota = cfg.Monitor.CreditQuota
		}
		frequency := monFrequency
		if frequency == "" {
			frequency = cfg.Monitor.Frequency
		}

		spec := snowflake.MonitorSpec{
			Name:           args[0],
			CreditQuota:    quota,
			Frequency:      frequency,
			StartTimestamp: monStartTimestamp,
			OrReplace:      monOrReplace,
		}

		notify := monNotifyPercent
		suspend := monSuspendPercent
		immediate := monImmediatePercent
		if notify == 0 && suspend == 0 && immediate == 0 {
			notify = cfg.Monitor.NotifyPercent
			suspend = cfg.Monitor.SuspendPercent
			immediate = cfg.Monitor.SuspendImmediatePercent
		}

		if notify > 0 {
			spec.Triggers = append(spec.Triggers, snowflake.MonitorTrigger{
				Percent: notify, Action: snowflake.ActionNotify,
			})
		}
		if suspend > 0 {
			spec.Triggers = append(spec.Triggers, snowflake.MonitorTrigger{
				Percent: suspend, Action: snowflake.ActionSuspend,
			})
		}
		if immediate > 0 {
			spec.Triggers = append(spec.Triggers, snowflake.MonitorTrigger{
				Percent: immediate, Action: snowflake.ActionSuspendImmediate,
			})
		}

		ctx := context.Background()
		if err := service.CreateResourceMonitor(ctx, spec); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Resource monitor %s created", args[0]))

		if monAttachTo != "" {
			if err := service.AttachResourceMonitor(ctx, monAttachTo, args[0]); err != nil {
				exitWithError(err)
			}
			ui.PrintSuccess(fmt.Sprintf("Monitor %s attached to %s", args[0], monAttachTo))
		}
	},
}

var monitorSetQuotaCmd = &cobra.Command{
	Use:   "set-quota <name> <credits>",
	Short: "Change the credit quota of a monitor",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var credits int
		if _, err := fmt.Sscanf(args[1], "%d", &credits); err != nil {
			exitWithError(fmt.Errorf("invalid credit quota %q", args[1]))
		}

		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.AlterResourceMonitorQuota(context.Background(), args[0], credits); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Credit quota of %s set to %d", args[0], credits))
	},
}

var monitorDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a resource monitor",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !monDropYes {
			ok, err := ui.Confirm(fmt.Sprintf("Drop resource monitor %s?", args[0]), false)
			if err != nil || !ok {
				ui.PrintInfo("Drop cancelled")
				return
			}
		}

		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.DropResourceMonitor(context.Background(), args[0], monDropExists); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Resource monitor %s dropped", args[0]))
	},
}

var monitorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resource monitors",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		monitors, err := service.ListResourceMonitors(context.Background(), monListLike)
		if err != nil {
			exitWithError(err)
		}

		if len(monitors) == 0 {
			ui.PrintInfo("No resource monitors found")
			return
		}
		fmt.Print(ui.NewReporter(true).RenderMonitors(monitors))
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCreateCmd.Flags().IntVar(&monQuota, "quota", 0, "Credit quota per frequency interval")
	monitorCreateCmd.Flags().StringVar(&monFrequency, "frequency", "", "Reset frequency (MONTHLY, DAILY, WEEKLY, YEARLY, NEVER)")
	monitorCreateCmd.Flags().StringVar(&monStartTimestamp, "start", "", "Start timestamp, defaults to IMMEDIATELY")
	monitorCreateCmd.Flags().IntVar(&monNotifyPercent, "notify-at", 0, "Notify at this percent of quota")
	monitorCreateCmd.Flags().IntVar(&monSuspendPercent, "suspend-at", 0, "Suspend at this percent of quota")
	monitorCreateCmd.Flags().IntVar(&monImmediatePercent, "suspend-immediate-at", 0, "Cancel running queries at this percent of quota")
	monitorCreateCmd.Flags().BoolVar(&monOrReplace, "or-replace", false, "Replace the monitor if it exists")
	monitorCreateCmd.Flags().StringVar(&monAttachTo, "attach-to", "", "Attach the new monitor to this warehouse")
	monitorCmd.AddCommand(monitorCreateCmd)

	monitorCmd.AddCommand(monitorSetQuotaCmd)

	monitorDropCmd.Flags().BoolVar(&monDropExists, "if-exists", true, "Do not fail when the monitor is missing")
	monitorDropCmd.Flags().BoolVarP(&monDropYes, "yes", "y", false, "Skip the confirmation prompt")
	monitorCmd.AddCommand(monitorDropCmd)

	monitorListCmd.Flags().StringVar(&monListLike, "like", "", "Filter names with a SQL LIKE pattern")
	monitorCmd.AddCommand(monitorListCmd)
}
