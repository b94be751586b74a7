package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"frostline/internal/snowflake"
	"frostline/internal/ui"
)

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Manage virtual warehouses",
}

var (
	whType          string
	whSize          string
	whMinClusters   int
	whMaxClusters   int
	whScalingPolicy string
	whAutoSuspend   int
	whNoAutoResume  bool
	whStartRunning  bool
	whStatementSecs int
	whQueuedSecs    int
	whComment       string
	whOrReplace     bool

	whResizeWait bool
	whDropExists bool
	whDropYes    bool
	whListLike   string
	whParamsLike string
)

var warehouseCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a virtual warehouse",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		spec := snowflake.WarehouseSpec{
			Name:                 args[0],
			Type:                 whType,
			Size:                 whSize,
			MinClusterCount:      whMinClusters,
			MaxClusterCount:      whMaxClusters,
			ScalingPolicy:        whScalingPolicy,
			AutoSuspendSeconds:   whAutoSuspend,
			AutoResume:           !whNoAutoResume,
			InitiallySuspended:   !whStartRunning,
			StatementTimeoutSecs: whStatementSecs,
			QueuedTimeoutSecs:    whQueuedSecs,
			Comment:              whComment,
			OrReplace:            whOrReplace,
		}

		// Unset flags fall back to the configured defaults
		if spec.Size == "" {
			spec.Size = cfg.Warehouse.Size
		}
		if spec.AutoSuspendSeconds == 0 {
			spec.AutoSuspendSeconds = cfg.Warehouse.AutoSuspendSeconds
		}

		if err := service.CreateWarehouse(context.Background(), spec); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Warehouse %s created", args[0]))
	},
}

var warehouseResizeCmd = &cobra.Command{
	Use:   "resize <name> <size>",
	Short: "Change the warehouse size",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		u := newUI()
		u.StartProgress(fmt.Sprintf("Resizing %s to %s", args[0], args[1]))
		err = service.ResizeWarehouse(context.Background(), args[0], args[1], whResizeWait)
		u.StopProgress()
		if err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Warehouse %s resized to %s", args[0], args[1]))
	},
}

var warehouseSuspendCmd = &cobra.Command{
	Use:   "suspend <name>",
	Short: "Suspend a warehouse",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.SuspendWarehouse(context.Background(), args[0]); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Warehouse %s suspended", args[0]))
	},
}

var warehouseResumeCmd = &cobra.Command{
	Use:   "resume <name>",
	Short: "Resume a suspended warehouse",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.ResumeWarehouse(context.Background(), args[0], true); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Warehouse %s resumed", args[0]))
	},
}

var warehouseDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a warehouse",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !whDropYes {
			ok, err := ui.Confirm(fmt.Sprintf("Drop warehouse %s?", args[0]), false)
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

		if err := service.DropWarehouse(context.Background(), args[0], whDropExists); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Warehouse %s dropped", args[0]))
	},
}

var warehouseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List warehouses",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		warehouses, err := service.ListWarehouses(context.Background(), whListLike)
		if err != nil {
			exitWithError(err)
		}

		if len(warehouses) == 0 {
			ui.PrintInfo("No warehouses found")
			return
		}
		fmt.Print(ui.NewReporter(true).RenderWarehouses(warehouses))
	},
}

var warehouseParamsCmd = &cobra.Command{
	Use:   "params <name>",
	Short: "Show warehouse-level parameters",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		params, err := service.ShowWarehouseParameters(context.Background(), args[0], whParamsLike)
		if err != nil {
			exitWithError(err)
		}
		fmt.Print(ui.NewReporter(true).RenderParameters(params))
	},
}

var warehouseSetTimeoutsCmd = &cobra.Command{
	Use:   "set-timeouts <name>",
	Short: "Set statement timeouts on a warehouse",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		statementSecs := whStatementSecs
		queuedSecs := whQueuedSecs
		if statementSecs == 0 && queuedSecs == 0 {
			statementSecs = cfg.Warehouse.StatementTimeoutSecs
			queuedSecs = cfg.Warehouse.QueuedTimeoutSecs
		}

		if err := service.SetWarehouseTimeouts(context.Background(), args[0], statementSecs, queuedSecs); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Statement timeouts set on %s", args[0]))
	},
}

var warehouseUnsetTimeoutsCmd = &cobra.Command{
	Use:   "unset-timeouts <name>",
	Short: "Revert statement timeouts on a warehouse to inherited values",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.UnsetWarehouseTimeouts(context.Background(), args[0]); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Statement timeouts reverted on %s", args[0]))
	},
}

var warehouseAttachMonitorCmd = &cobra.Command{
	Use:   "attach-monitor <warehouse> <monitor>",
	Short: "Attach a resource monitor to a warehouse",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.AttachResourceMonitor(context.Background(), args[0], args[1]); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Monitor %s attached to %s", args[1], args[0]))
	},
}

var warehouseDetachMonitorCmd = &cobra.Command{
	Use:   "detach-monitor <warehouse>",
	Short: "Remove the resource monitor from a warehouse",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, _, err := connectService()
		if err != nil {
			exitWithError(err)
		}
		defer service.Close()

		if err := service.DetachResourceMonitor(context.Background(), args[0]); err != nil {
			exitWithError(err)
		}
		ui.PrintSuccess(fmt.Sprintf("Monitor detached from %s", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(warehouseCmd)

	warehouseCreateCmd.Flags().StringVar(&whType, "type", "", "Warehouse type (STANDARD or SNOWPARK-OPTIMIZED)")
	warehouseCreateCmd.Flags().StringVar(&whSize, "size", "", "Warehouse size (XSMALL through X6LARGE)")
	warehouseCreateCmd.Flags().IntVar(&whMinClusters, "min-clusters", 0, "Minimum cluster count")
	warehouseCreateCmd.Flags().IntVar(&whMaxClusters, "max-clusters", 0, "Maximum cluster count")
	warehouseCreateCmd.Flags().StringVar(&whScalingPolicy, "scaling-policy", "", "Scaling policy (STANDARD or ECONOMY)")
	warehouseCreateCmd.Flags().IntVar(&whAutoSuspend, "auto-suspend", 0, "Auto suspend after this many idle seconds")
	warehouseCreateCmd.Flags().BoolVar(&whNoAutoResume, "no-auto-resume", false, "Disable automatic resume on query")
	warehouseCreateCmd.Flags().BoolVar(&whStartRunning, "start-running", false, "Start the warehouse immediately instead of suspended")
	warehouseCreateCmd.Flags().IntVar(&whStatementSecs, "statement-timeout", 0, "Statement timeout in seconds")
	warehouseCreateCmd.Flags().IntVar(&whQueuedSecs, "queued-timeout", 0, "Queued statement timeout in seconds")
	warehouseCreateCmd.Flags().StringVar(&whComment, "comment", "", "Warehouse comment")
	warehouseCreateCmd.Flags().BoolVar(&whOrReplace, "or-replace", false, "Replace the warehouse if it exists")
	warehouseCmd.AddCommand(warehouseCreateCmd)

	warehouseResizeCmd.Flags().BoolVar(&whResizeWait, "wait", false, "Wait until the resize completes")
	warehouseCmd.AddCommand(warehouseResizeCmd)

	warehouseCmd.AddCommand(warehouseSuspendCmd)
	warehouseCmd.AddCommand(warehouseResumeCmd)

	warehouseDropCmd.Flags().BoolVar(&whDropExists, "if-exists", true, "Do not fail when the warehouse is missing")
	warehouseDropCmd.Flags().BoolVarP(&whDropYes, "yes", "y", false, "Skip the confirmation prompt")
	warehouseCmd.AddCommand(warehouseDropCmd)

	warehouseListCmd.Flags().StringVar(&whListLike, "like", "", "Filter names with a SQL LIKE pattern")
	warehouseCmd.AddCommand(warehouseListCmd)

	warehouseParamsCmd.Flags().StringVar(&whParamsLike, "like", "STATEMENT%", "Filter parameter names with a SQL LIKE pattern")
	warehouseCmd.AddCommand(warehouseParamsCmd)

	warehouseSetTimeoutsCmd.Flags().IntVar(&whStatementSecs, "statement-timeout", 0, "Statement timeout in seconds")
	warehouseSetTimeoutsCmd.Flags().IntVar(&whQueuedSecs, "queued-timeout", 0, "Queued statement timeout in seconds")
	warehouseCmd.AddCommand(warehouseSetTimeoutsCmd)

	warehouseCmd.AddCommand(warehouseUnsetTimeoutsCmd)
	warehouseCmd.AddCommand(warehouseAttachMonitorCmd)
	warehouseCmd.AddCommand(warehouseDetachMonitorCmd)
}
