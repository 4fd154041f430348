package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard totals across tracked startups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				stats, err := d.StartupHandler.Stats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, stats)
				}
				return renderTable(out, []string{"Metric", "Value"}, [][]string{
					{"Startups", strconv.Itoa(stats.TotalStartups)},
					{"Total funding", formatValue(entities.FieldTotalFunding, entities.NumberValue(stats.TotalFunding))},
					{"Total users", formatValue(entities.FieldEstimatedUsers, entities.NumberValue(stats.TotalUsers))},
					{"Average valuation", formatValue(entities.FieldValuation, entities.NumberValue(stats.AverageValuation))},
					{"Acquired", strconv.Itoa(stats.Acquired)},
					{"Pending reviews", strconv.Itoa(stats.PendingReviews)},
				})
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}
