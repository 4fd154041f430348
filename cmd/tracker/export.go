package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/diagnostics-tracker/internal/application/handlers"
	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

type exportFlags struct {
	format    string
	output    string
	status    string
	startupID string
	limit     int
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export review records to file",
		Long:  "Exports review records to JSON, CSV, or markdown format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.status, "status", "s", "", "Filter by status (pending, approved, rejected)")
	cmd.Flags().StringVar(&flags.startupID, "startup", "", "Filter by startup ID")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultExportLimit, "Maximum number of records to export")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return entities.Validationf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		records, err := d.ReviewHandler.List(ctx, handlers.ListOptions{
			Status:    flags.status,
			StartupID: flags.startupID,
			Limit:     flags.limit,
		})
		if err != nil {
			return fmt.Errorf("listing review records: %w", err)
		}
		if len(records) == 0 {
			return entities.NotFoundf("no review records found to export")
		}

		return exportRecords(cmd.OutOrStdout(), flags.format, flags.output, records)
	})
}

func exportRecords(stdout io.Writer, format, output string, records []entities.ReviewRecord) (err error) {
	w := stdout
	if output != "" {
		var f *os.File
		f, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := formatRecords(w, format, records); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Fprintf(stdout, "Exported %s to %s\n", plural(len(records), "record"), output)
	}
	return nil
}

func formatRecords(w io.Writer, format string, records []entities.ReviewRecord) error {
	switch format {
	case "json":
		return formatJSON(w, records)
	case "csv":
		return formatCSV(w, records)
	case "markdown":
		return formatMarkdown(w, records)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func formatJSON(w io.Writer, records []entities.ReviewRecord) error {
	if records == nil {
		records = []entities.ReviewRecord{}
	}
	return writeJSON(w, records)
}

func formatCSV(w io.Writer, records []entities.ReviewRecord) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "startup_id", "field", "old_value", "new_value", "confidence", "source", "status", "created_at", "reviewed_by", "notes"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		row := []string{
			r.ID,
			r.StartupID,
			string(r.Field),
			r.OldValue.String(),
			r.NewValue.String(),
			string(r.Confidence),
			r.SourceURL,
			string(r.Status),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.ReviewedBy,
			r.Notes,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, records []entities.ReviewRecord) error {
	if _, err := fmt.Fprintf(w, "# Review Records\n\nTotal: %d records\n\n", len(records)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Startup | Field | Old | New | Confidence | Status | Source |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|---------|-------|-----|-----|------------|--------|--------|\n"); err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			escapeMarkdown(r.StartupID),
			r.Field,
			escapeMarkdown(formatValue(r.Field, r.OldValue)),
			escapeMarkdown(formatValue(r.Field, r.NewValue)),
			r.Confidence,
			r.Status,
			escapeMarkdown(r.SourceURL),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
