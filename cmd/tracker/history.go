package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <startup-id>",
		Short: "Show approved metric changes applied to a startup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				versions, err := d.StartupHandler.History(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, versions)
				}
				if len(versions) == 0 {
					fmt.Fprintf(out, "No approved changes for %s\n", args[0])
					return nil
				}
				rows := make([][]string, 0, len(versions))
				for _, v := range versions {
					rows = append(rows, []string{
						string(v.Field),
						strconv.Itoa(v.Version),
						formatValue(v.Field, v.OldValue),
						formatValue(v.Field, v.NewValue),
						v.ReviewID,
						formatTime(v.CreatedAt),
					})
				}
				return renderTable(out, []string{"Field", "Version", "Old", "New", "Review", "Applied"}, rows)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}
