package main

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
)

type refreshFlags struct {
	days    int
	fixture string
	asJSON  bool
}

func newRefreshCmd() *cobra.Command {
	var flags refreshFlags

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Search news for every startup and queue candidate updates",
		Long: `Runs one discovery pass over every tracked startup.

Each startup's recent news is searched, metric changes are extracted and
filtered, and surviving candidates are added to the review queue.
Nothing is applied to the registry until a reviewer approves it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, flags)
		},
	}

	cmd.Flags().IntVar(&flags.days, "days", 0, "Lookback window in days (default from config)")
	cmd.Flags().StringVar(&flags.fixture, "fixture", "", "Read news from a JSON fixture instead of the news API")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Output JSON")

	return cmd
}

func runRefresh(cmd *cobra.Command, flags refreshFlags) error {
	if flags.days < 0 {
		return fmt.Errorf("--days must not be negative")
	}
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		handler, err := d.RefreshHandler(ctx, RefreshOverrides{
			LookbackDays: flags.days,
			FixturePath:  flags.fixture,
		})
		if err != nil {
			return err
		}

		result, err := handler.Handle(ctx)
		if result == nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flags.asJSON {
			if jerr := writeJSON(out, result); jerr != nil {
				return jerr
			}
			return err
		}
		if perr := printRefreshResult(out, result); perr != nil {
			return perr
		}
		return err
	})
}

func printRefreshResult(w io.Writer, result *services.RefreshResult) error {
	fmt.Fprint(w, pterm.Success.Sprintfln("Checked %s, found %s",
		plural(result.StartupsChecked, "startup"), plural(result.UpdatesFound, "update")))

	if len(result.Updates) > 0 {
		if err := renderTable(w, reviewHeader, reviewRows(result.Updates)); err != nil {
			return err
		}
	}

	for _, f := range result.Failures {
		fmt.Fprint(w, pterm.Warning.Sprintfln("%s (%s): %s", f.StartupID, f.Stage, f.Error))
	}
	return nil
}
