package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal  string
	Label    string
	Workflow string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled submission attempts",
		Long: `List submission attempts recorded in the journal, newest first.

Labels match after Unicode normalization, so "Février" finds attempts
whichever way the accent was typed.

Examples:
  recon history --journal ./recon.db
  recon history --journal ./recon.db --label "JAN 2026" --limit 5
  recon history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal path (default from config)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "only attempts with this label")
	cmd.Flags().StringVar(&opts.Workflow, "workflow", "", "only attempts of this workflow")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of attempts (0 for all)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid limit %d", opts.Limit))
	}

	st, _, err := openJournal(opts.RootOptions, opts.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	attempts, err := st.ReadAttempts(ctx, store.AttemptFilter{
		WorkflowID: opts.Workflow,
		Label:      opts.Label,
		Limit:      opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read attempts", err)
	}

	return opts.formatter(cmd).Success(attempts, func(w io.Writer) {
		if len(attempts) == 0 {
			fmt.Fprintln(w, "No attempts found.")
			return
		}
		for _, a := range attempts {
			formatAttempt(w, a, opts.Verbose)
		}
	})
}

func formatAttempt(w io.Writer, a store.Attempt, verbose bool) {
	fmt.Fprintf(w, "%s  %-9s  %q  %s + %s\n", truncateID(a.ID), a.Outcome, a.Label, a.CurrentName, a.PreviousName)
	switch {
	case a.ErrorCode != "" && a.StatusCode != 0:
		fmt.Fprintf(w, "    %s (status %d)\n", a.ErrorCode, a.StatusCode)
	case a.ErrorCode != "":
		fmt.Fprintf(w, "    %s\n", a.ErrorCode)
	}
	if len(a.Tokens) > 0 {
		for _, role := range ir.Roles {
			fmt.Fprintf(w, "    %-9s %s\n", role, a.Tokens[role])
		}
	}
	if verbose {
		fmt.Fprintf(w, "    workflow %s, seq %d..%d\n", a.WorkflowID, a.StartedSeq, a.ResolvedSeq)
	}
}

// truncateID shortens a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
