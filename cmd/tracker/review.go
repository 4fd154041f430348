package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ersonp/diagnostics-tracker/internal/application/handlers"
	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "review",
		Aliases: []string{"reviews"},
		Short:   "Inspect and decide queued metric updates",
	}

	cmd.AddCommand(
		newReviewListCmd(),
		newReviewSummaryCmd(),
		newReviewShowCmd(),
		newReviewApproveCmd(),
		newReviewRejectCmd(),
		newReviewWalkCmd(),
	)

	return cmd
}

func newReviewListCmd() *cobra.Command {
	var (
		opts   handlers.ListOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				records, err := d.ReviewHandler.List(ctx, opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No review records found.")
					return nil
				}
				return renderTable(out, reviewHeader, reviewRows(records))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Status, "status", "s", "pending", "Filter by status (pending, approved, rejected); empty for all")
	cmd.Flags().StringVar(&opts.StartupID, "startup", "", "Filter by startup ID")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", DefaultListLimit, "Maximum number of records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func newReviewSummaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count review records by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				summary, err := d.ReviewHandler.Summary(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, summary)
				}

				rows := [][]string{
					{"pending", strconv.Itoa(summary.Pending)},
					{"approved", strconv.Itoa(summary.Approved)},
					{"rejected", strconv.Itoa(summary.Rejected)},
				}
				if err := renderTable(out, []string{"Status", "Count"}, rows); err != nil {
					return err
				}
				if len(summary.PendingByStartup) == 0 {
					return nil
				}

				ids := make([]string, 0, len(summary.PendingByStartup))
				for id := range summary.PendingByStartup {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				byStartup := make([][]string, 0, len(ids))
				for _, id := range ids {
					byStartup = append(byStartup, []string{id, strconv.Itoa(summary.PendingByStartup[id])})
				}
				fmt.Fprintln(out)
				return renderTable(out, []string{"Startup", "Pending"}, byStartup)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func newReviewShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <review-id>",
		Short: "Show a review record and its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				record, trail, err := d.ReviewHandler.Show(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, map[string]any{"record": record, "audit": trail})
				}
				return printReviewDetail(out, record, trail)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func printReviewDetail(w io.Writer, r *entities.ReviewRecord, trail []entities.AuditEntry) error {
	rows := [][]string{
		{"Startup", r.StartupID},
		{"Field", string(r.Field)},
		{"Old", formatValue(r.Field, r.OldValue)},
		{"New", formatValue(r.Field, r.NewValue)},
		{"Confidence", string(r.Confidence)},
		{"Source", r.SourceURL},
		{"Observed", formatTime(r.ObservedAt)},
		{"Status", string(r.Status)},
		{"Created", formatTime(r.CreatedAt)},
	}
	if r.ReviewedAt != nil {
		rows = append(rows,
			[]string{"Reviewed", formatTime(*r.ReviewedAt)},
			[]string{"Reviewed by", r.ReviewedBy},
		)
	}
	if r.Notes != "" {
		rows = append(rows, []string{"Notes", r.Notes})
	}
	if err := renderTable(w, []string{"Review", r.ID}, rows); err != nil {
		return err
	}

	if len(trail) == 0 {
		return nil
	}
	auditRows := make([][]string, 0, len(trail))
	for _, e := range trail {
		auditRows = append(auditRows, []string{formatTime(e.CreatedAt), string(e.Action), formatDetails(e.Details)})
	}
	fmt.Fprintln(w)
	return renderTable(w, []string{"When", "Action", "Details"}, auditRows)
}

func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}

func newReviewApproveCmd() *cobra.Command {
	var reviewer string

	cmd := &cobra.Command{
		Use:   "approve <review-id>",
		Short: "Approve a pending record and apply its change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				record, err := d.ReviewHandler.Approve(ctx, args[0], reviewer)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Approved %s: %s %s -> %s",
					record.ID, record.StartupID, record.Field, formatValue(record.Field, record.NewValue))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "by", "", "Reviewer name (default: $TRACKER_REVIEWER)")

	return cmd
}

func newReviewRejectCmd() *cobra.Command {
	var reviewer, notes string

	cmd := &cobra.Command{
		Use:   "reject <review-id>",
		Short: "Reject a pending record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				record, err := d.ReviewHandler.Reject(ctx, args[0], reviewer, notes)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Rejected %s: %s %s", record.ID, record.StartupID, record.Field)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "by", "", "Reviewer name (default: $TRACKER_REVIEWER)")
	cmd.Flags().StringVar(&notes, "notes", "", "Reason for rejecting")

	return cmd
}

func newReviewWalkCmd() *cobra.Command {
	var reviewer string

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Step through pending records interactively",
		Long: `Shows each pending record in turn and prompts for a decision:

  a, approve  apply the change
  r, reject   reject (prompts for notes)
  s, skip     leave pending
  q, quit     stop walking`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				w := &reviewWalker{
					handler:  d.ReviewHandler,
					reviewer: d.ReviewHandler.Reviewer(reviewer),
					in:       bufio.NewScanner(os.Stdin),
					out:      cmd.OutOrStdout(),
				}
				return w.run(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "by", "", "Reviewer name (default: $TRACKER_REVIEWER)")

	return cmd
}

type walkStats struct {
	approved int
	rejected int
	skipped  int
}

type reviewWalker struct {
	handler  *handlers.ReviewHandler
	reviewer string
	in       *bufio.Scanner
	out      io.Writer
	stats    walkStats
}

func (w *reviewWalker) run(ctx context.Context) error {
	if w.reviewer == "" {
		return entities.Validationf("reviewer is required (use --by or set TRACKER_REVIEWER)")
	}

	pending, err := w.handler.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(w.out, "No pending reviews.")
		return nil
	}

	fmt.Fprintf(w.out, "%s pending. Commands: a(pprove), r(eject), s(kip), q(uit)\n\n", plural(len(pending), "record"))

	for i := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := w.decide(ctx, &pending[i], i+1, len(pending))
		if err != nil {
			return err
		}
		if quit {
			break
		}
	}

	fmt.Fprintf(w.out, "\nApproved %d, rejected %d, skipped %d\n", w.stats.approved, w.stats.rejected, w.stats.skipped)
	return w.in.Err()
}

// decide prompts until the record gets a decision. It returns true when the
// user quits or input ends.
func (w *reviewWalker) decide(ctx context.Context, r *entities.ReviewRecord, n, total int) (bool, error) {
	fmt.Fprintf(w.out, "[%d/%d] %s  %s: %s -> %s (%s)\n        %s\n",
		n, total, r.StartupID, r.Field,
		formatValue(r.Field, r.OldValue), formatValue(r.Field, r.NewValue),
		r.Confidence, r.SourceURL)

	for {
		fmt.Fprint(w.out, "> ")
		if !w.in.Scan() {
			return true, nil
		}

		switch strings.ToLower(strings.TrimSpace(w.in.Text())) {
		case "a", "approve":
			return false, w.apply(ctx, r.ID, "", true)
		case "r", "reject":
			fmt.Fprint(w.out, "notes: ")
			notes := ""
			if w.in.Scan() {
				notes = strings.TrimSpace(w.in.Text())
			}
			return false, w.apply(ctx, r.ID, notes, false)
		case "s", "skip", "":
			w.stats.skipped++
			return false, nil
		case "q", "quit", "exit":
			return true, nil
		default:
			fmt.Fprintln(w.out, "Unknown command. Use a, r, s or q.")
		}
	}
}

// apply records a decision. A record decided elsewhere in the meantime is
// reported and skipped.
func (w *reviewWalker) apply(ctx context.Context, id, notes string, approve bool) error {
	var err error
	if approve {
		_, err = w.handler.Approve(ctx, id, w.reviewer)
	} else {
		_, err = w.handler.Reject(ctx, id, w.reviewer, notes)
	}

	switch {
	case err == nil && approve:
		w.stats.approved++
	case err == nil:
		w.stats.rejected++
	case entities.IsConflict(err):
		fmt.Fprintf(w.out, "Already decided, skipping: %v\n", err)
		w.stats.skipped++
	default:
		return err
	}
	return nil
}
