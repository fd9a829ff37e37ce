package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/recon/internal/artifact"
	"github.com/roach88/recon/internal/input"
	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/store"
	"github.com/roach88/recon/internal/transport"
	"github.com/roach88/recon/internal/workflow"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Current     string
	Previous    string
	Label       string
	Interactive bool
	Download    bool
	OutDir      string
	Journal     string
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	WorkflowID string              `json:"workflow_id"`
	AttemptID  string              `json:"attempt_id"`
	Label      string              `json:"label"`
	Status     string              `json:"status"`
	Artifacts  []artifact.Artifact `json:"artifacts"`
	Downloads  []DownloadResult    `json:"downloads,omitempty"`
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit both period files for processing",
		Long: `Send the current-period and previous-period spreadsheets, with a
label, to the processing service and print the three download references.

Only .xlsx files are accepted. Both files are required.

Exit codes:
  0 - Processing succeeded
  1 - The service failed or answered with an unusable response
  2 - Command error (missing or rejected input, bad configuration)

Examples:
  recon submit --current jan.xlsx --previous dec.xlsx --label "JAN 2026"
  recon submit --current jan.xlsx --previous dec.xlsx --download --out ./reports
  recon submit --interactive`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Current, "current", "", "current-period spreadsheet (.xlsx)")
	cmd.Flags().StringVar(&opts.Previous, "previous", "", "previous-period spreadsheet (.xlsx)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "submission label (default from config)")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "prompt for missing values")
	cmd.Flags().BoolVar(&opts.Download, "download", false, "download the generated files")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory for downloaded files (default from config)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal path (default from config)")

	return cmd
}

func runSubmit(ctx context.Context, opts *SubmitOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	out := opts.formatter(cmd)

	label := cfg.DefaultLabel
	if cmd.Flags().Changed("label") {
		label = opts.Label
	}
	if opts.Interactive {
		if err := opts.promptMissing(&label); err != nil {
			return WrapExitError(ExitCommandError, "interactive input failed", err)
		}
	}

	wopts := []workflow.Option{
		workflow.WithLabel(label),
		workflow.WithLogger(opts.Logger),
	}

	journal := opts.Journal
	if journal == "" {
		journal = cfg.Journal
	}
	if journal != "" {
		st, err := store.Open(journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()
		wopts = append(wopts, workflow.WithRecorder(st))
		out.VerboseLog("journaling to %s", journal)
	}
	if !out.JSON() {
		wopts = append(wopts, workflow.WithObserver(statusPrinter(out.Writer)))
	}

	client := transport.New(cfg.BaseURL,
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithLogger(opts.Logger),
	)
	w := workflow.New(client, wopts...)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(runCtx)
	}()
	defer func() {
		stop()
		<-done
	}()

	inputs := []struct {
		slot ir.SlotID
		path string
	}{
		{ir.SlotCurrent, opts.Current},
		{ir.SlotPrevious, opts.Previous},
	}
	for _, in := range inputs {
		if in.path == "" {
			continue
		}
		f, err := input.Admit(in.path)
		if err != nil {
			if errors.Is(err, input.ErrNotAccepted) {
				_ = out.Error(CodeNotAccepted, err.Error(), nil)
				return WrapExitError(ExitCommandError, "file not accepted", err)
			}
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}
		out.VerboseLog("admitted %s as %s (%d bytes)", f.Name, in.slot, len(f.Data))
		if _, err := w.SetFile(ctx, in.slot, f); err != nil {
			return WrapExitError(ExitCommandError, "failed to set file", err)
		}
	}

	snap, err := w.Submit(ctx)
	if err != nil {
		var werr *workflow.Error
		if errors.As(err, &werr) && werr.Code == workflow.CodeMissingInput {
			_ = out.Error(string(werr.Code), snap.Warning, slotNames(werr.Missing))
			return WrapExitError(ExitCommandError, "missing input", err)
		}
		return WrapExitError(ExitCommandError, "submit failed", err)
	}

	snap, err = w.Wait(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "waiting for submission", err)
	}

	if werr := snap.Err(); werr != nil {
		var details any
		if werr.Err != nil {
			details = werr.Err.Error()
		}
		_ = out.Error(string(werr.Code), werr.Message, details)
		return WrapExitError(ExitFailure, "submission failed", werr)
	}
	rs, ok := snap.Results()
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("submission ended in phase %s", snap.Phase()))
	}

	result := SubmitResult{
		WorkflowID: snap.WorkflowID,
		AttemptID:  snap.AttemptID(),
		Label:      snap.Label,
		Status:     snap.Status,
		Artifacts:  rs.Artifacts(cfg.BaseURL),
	}

	if opts.Download {
		dir := opts.OutDir
		if dir == "" {
			dir = cfg.OutputDir
		}
		tokens := make([]string, 0, len(result.Artifacts))
		for _, a := range result.Artifacts {
			tokens = append(tokens, a.Token)
		}
		saved, err := downloadAll(ctx, client, tokens, dir)
		result.Downloads = saved
		if err != nil {
			_ = out.Error(CodeFetchFailed, err.Error(), nil)
			return WrapExitError(ExitFailure, "download failed", err)
		}
	}

	return out.Success(result, func(w io.Writer) {
		for _, a := range result.Artifacts {
			fmt.Fprintf(w, "  %-9s %s\n", a.Role, a.URL)
		}
		for _, d := range result.Downloads {
			fmt.Fprintf(w, "saved %s (%d bytes)\n", d.Path, d.Bytes)
		}
	})
}

// statusPrinter prints the status line whenever the phase changes.
// It runs on the workflow loop goroutine.
func statusPrinter(w io.Writer) workflow.Observer {
	last := workflow.PhaseIdle
	return func(s workflow.Snapshot) {
		if p := s.Phase(); p != last {
			last = p
			fmt.Fprintln(w, s.Status)
		}
	}
}

// promptMissing asks for any file path or label not given as a flag.
func (o *SubmitOptions) promptMissing(label *string) error {
	p := o.prompter
	if p == nil {
		p = surveyPrompter{}
	}

	var err error
	if o.Current == "" {
		if o.Current, err = p.Input("Current period file (.xlsx):", "", validateCandidate); err != nil {
			return err
		}
	}
	if o.Previous == "" {
		if o.Previous, err = p.Input("Previous period file (.xlsx):", "", validateCandidate); err != nil {
			return err
		}
	}
	*label, err = p.Input("Label:", *label, nil)
	return err
}

// validateCandidate accepts an empty answer so the missing-input guard
// still reports it.
func validateCandidate(path string) error {
	if path == "" {
		return nil
	}
	if _, err := input.DeclaredType(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return nil
}

func slotNames(slots []ir.SlotID) []string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	return names
}
