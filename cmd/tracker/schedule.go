package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ersonp/diagnostics-tracker/internal/application/handlers"
)

type scheduleFlags struct {
	interval time.Duration
	wait     bool
	days     int
}

func newScheduleCmd() *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run refresh periodically until interrupted",
		Long: `Runs a refresh immediately and then on every interval until the
process receives SIGINT or SIGTERM. A tick that arrives while a run is
still active is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "Time between runs (default from config)")
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "Wait one interval before the first run")
	cmd.Flags().IntVar(&flags.days, "days", 0, "Lookback window in days (default from config)")

	return cmd
}

func runSchedule(cmd *cobra.Command, flags scheduleFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		interval := d.Config.Refresh.Interval
		if flags.interval > 0 {
			interval = flags.interval
		}

		handler, err := d.RefreshHandler(ctx, RefreshOverrides{LookbackDays: flags.days})
		if err != nil {
			return err
		}

		scheduler := handlers.NewScheduler(ctx, handler.Handle, handlers.SchedulerConfig{
			Interval:       interval,
			RunImmediately: !flags.wait,
		}, d.Logger.Named("schedule"))

		pterm.Info.Printfln("Refreshing every %s (Ctrl+C to stop)", interval)
		scheduler.Start()

		select {
		case <-ctx.Done():
		case <-scheduler.Done():
		}
		scheduler.Stop()

		pterm.Info.Printfln("Stopped after %s (%d skipped)", plural(scheduler.Runs(), "run"), scheduler.Skipped())
		return nil
	})
}
