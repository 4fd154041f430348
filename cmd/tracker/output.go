package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// renderTable prints rows with a header using pterm.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func reviewRows(records []entities.ReviewRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			r.ID,
			r.StartupID,
			string(r.Field),
			formatValue(r.Field, r.OldValue),
			formatValue(r.Field, r.NewValue),
			string(r.Confidence),
			string(r.Status),
			truncate(r.SourceURL, 48),
		})
	}
	return rows
}

var reviewHeader = []string{"ID", "Startup", "Field", "Old", "New", "Confidence", "Status", "Source"}

// formatValue renders money fields in short dollar form.
func formatValue(f entities.Field, v entities.Value) string {
	n, ok := v.Number()
	if !ok {
		return v.String()
	}
	if f.IsMonetary() {
		return "$" + shortNumber(n)
	}
	return shortNumber(n)
}

func formatOptional(f entities.Field, n *float64) string {
	if n == nil {
		return "-"
	}
	return formatValue(f, entities.NumberValue(*n))
}

func shortNumber(n float64) string {
	switch {
	case n >= 1e9:
		return strconv.FormatFloat(n/1e9, 'f', -1, 64) + "B"
	case n >= 1e6:
		return strconv.FormatFloat(n/1e6, 'f', -1, 64) + "M"
	case n >= 1e3:
		return strconv.FormatFloat(n/1e3, 'f', -1, 64) + "K"
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
