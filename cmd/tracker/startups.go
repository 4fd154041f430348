package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ersonp/diagnostics-tracker/internal/application/handlers"
	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

func newStartupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "startups",
		Aliases: []string{"startup"},
		Short:   "List, inspect and import tracked startups",
	}

	cmd.AddCommand(
		newStartupsListCmd(),
		newStartupsShowCmd(),
		newStartupsImportCmd(),
	)

	return cmd
}

func newStartupsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked startups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				startups, err := d.StartupHandler.List(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, startups)
				}
				if len(startups) == 0 {
					fmt.Fprintln(out, "No startups tracked. Import some with: tracker startups import <file>")
					return nil
				}
				rows := make([][]string, 0, len(startups))
				for i := range startups {
					s := &startups[i]
					rows = append(rows, []string{
						s.ID,
						s.Name,
						formatOptional(entities.FieldTotalFunding, s.Metrics.TotalFunding),
						formatOptional(entities.FieldValuation, s.Metrics.Valuation),
						formatOptional(entities.FieldEstimatedUsers, s.Metrics.EstimatedUsers),
						formatTime(s.LastUpdated),
					})
				}
				return renderTable(out, []string{"ID", "Name", "Funding", "Valuation", "Users", "Updated"}, rows)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func newStartupsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <startup-id>",
		Short: "Show one startup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				s, err := d.StartupHandler.Show(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, s)
				}

				rows := [][]string{
					{"Name", s.Name},
					{"Website", s.Website},
					{"Description", s.Description},
					{"Founded", foundedString(s.Founded)},
					{"Headquarters", s.Headquarters},
					{"Founders", strings.Join(s.Founders, ", ")},
				}
				for _, f := range entities.AllFields {
					rows = append(rows, []string{string(f), formatValue(f, s.CurrentValue(f))})
				}
				rows = append(rows, []string{"Last updated", formatTime(s.LastUpdated)})
				return renderTable(out, []string{"Field", s.ID}, rows)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func foundedString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

type importFlags struct {
	format    string
	dryRun    bool
	overwrite bool
}

func newStartupsImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import startups from a JSON, YAML or CSV file",
		Long: `Import startups from a file.

Existing startups are skipped unless --overwrite is set.
Required fields are id and name; metrics are optional.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, yaml, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Replace startups that already exist")

	return cmd
}

func runImport(cmd *cobra.Command, path string, flags importFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		result, err := d.StartupHandler.Import(ctx, path, handlers.ImportOptions{
			Format:    flags.format,
			DryRun:    flags.dryRun,
			Overwrite: flags.overwrite,
		})
		if err != nil {
			return err
		}

		verb := "Imported"
		if flags.dryRun {
			verb = "Would import"
		}
		pterm.Success.Printf("%s %s", verb, plural(result.Imported, "startup"))
		if result.Skipped > 0 {
			fmt.Printf(", skipped %d existing", result.Skipped)
		}
		fmt.Println()

		for _, e := range result.Errors {
			pterm.Warning.Println(e.Error())
		}
		return nil
	})
}
