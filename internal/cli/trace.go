package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/recon/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	Kind    string // optional - filter to one event kind
}

// TraceResult holds the trace output.
type TraceResult struct {
	WorkflowID string     `json:"workflow_id"`
	Events     []ir.Event `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [workflow-id]",
		Short: "Show the journal of one workflow",
		Long: `Print the journaled events of a workflow in order: file selections,
label changes, rejected submits, and each attempt's start and outcome.

Without a workflow id the most recently journaled workflow is shown.

Examples:
  recon trace --journal ./recon.db
  recon trace 0192f3c4-... --journal ./recon.db --kind submission_failed`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runTrace(cmd.Context(), opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal path (default from config)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only events of this kind")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, workflowID string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	st, _, err := openJournal(opts.RootOptions, opts.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	if workflowID == "" {
		workflowID, err = st.LatestWorkflowID(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find latest workflow", err)
		}
		if workflowID == "" {
			return out.Success(TraceResult{Events: []ir.Event{}}, func(w io.Writer) {
				fmt.Fprintln(w, "Journal is empty.")
			})
		}
	}

	events, err := st.ReadEvents(ctx, workflowID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	if opts.Kind != "" {
		filtered := events[:0]
		for _, ev := range events {
			if string(ev.Kind) == opts.Kind {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	result := TraceResult{WorkflowID: workflowID, Events: events}
	return out.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "Trace for workflow: %s\n", workflowID)
		if len(events) == 0 {
			fmt.Fprintln(w, "  (no events)")
			return
		}
		for _, ev := range events {
			formatEvent(w, ev, opts.Verbose)
		}
	})
}

// formatEvent prints one journal line. Digests are shortened unless verbose.
func formatEvent(w io.Writer, ev ir.Event, verbose bool) {
	fmt.Fprintf(w, "  [%d] %-20s %-10s", ev.Seq, ev.Kind, ev.State)
	if ev.AttemptID != "" {
		fmt.Fprintf(w, " attempt=%s", truncateID(ev.AttemptID))
	}
	fmt.Fprintf(w, " %s\n", formatAttrs(ev.Attrs, verbose))
	if verbose {
		fmt.Fprintf(w, "       ID: %s\n", ev.ID)
	}
}

// formatAttrs renders attrs with sorted keys for deterministic output.
func formatAttrs(attrs map[string]string, verbose bool) string {
	if len(attrs) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := attrs[k]
		if !verbose && strings.HasSuffix(k, "digest") {
			v = truncateID(v)
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
