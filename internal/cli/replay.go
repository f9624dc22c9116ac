package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatawa12/sai/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ErrCodeReplayChanged reports a replay whose outcomes differ from the journal.
const ErrCodeReplayChanged = "E_REPLAY_CHANGED"

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <specs-dir>",
		Short: "Re-resolve the journal against current declarations",
		Long: `Re-resolve every journalled call shape against the declarations in
specs-dir and report shapes whose outcome changed.

A shape changes when its outcome kind, arity mode, selected signature or
tied candidates differ. A shape fails when its group or one of its
argument types no longer exists. The journal is read, never written.

Exit codes:
  0 - Every shape resolves as journalled
  1 - At least one shape changed or failed
  2 - Command error (database not found, etc.)

Examples:
  sai replay ./specs --db ./journal.db
  sai replay ./specs --db ./journal.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	// The linker must not journal: replaying would otherwise extend the
	// journal it is checking.
	s, err := openLinkSession(ctx, opts.RootOptions, formatter, specsDir, "")
	if err != nil {
		return err
	}
	defer s.Close()

	// Open database
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	report, err := st.Replay(ctx, s.replayFunc())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay journal", err)
	}

	formatter.VerboseLog("Replayed %d shape(s): %d unchanged", report.Total, report.Unchanged)

	// Output results
	if opts.Format == "json" {
		return outputReplayJSON(cmd.OutOrStdout(), report)
	}

	return outputReplayText(cmd.OutOrStdout(), report, opts.Verbose)
}

// replayFunc re-resolves a journalled shape with the session linker.
func (s *linkSession) replayFunc() store.ReplayFunc {
	return func(ctx context.Context, rec store.ResolutionRecord) (store.ResolutionRecord, error) {
		args, err := s.lookupTypes(rec.Args)
		if err != nil {
			return store.ResolutionRecord{}, err
		}
		o, err := s.linker.Resolve(ctx, rec.Group, args)
		if err != nil {
			return store.ResolutionRecord{}, err
		}
		got, err := store.NewResolutionRecord(rec.Group, args, o)
		if err != nil {
			return store.ResolutionRecord{}, err
		}
		got.Session = rec.Session
		got.Seq = rec.Seq
		return got, nil
	}
}

// outputReplayJSON outputs the replay report as JSON.
func outputReplayJSON(w io.Writer, report store.ReplayReport) error {
	response := CLIResponse{
		Status: "ok",
		Data:   report,
	}

	if !report.Identical() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeReplayChanged,
			Message: replayFailureMessage(report),
		}
	}

	if err := writeResponse(w, response); err != nil {
		return err
	}

	if !report.Identical() {
		// Changed outcomes = exit code 1
		return NewExitError(ExitFailure, replayFailureMessage(report))
	}
	return nil
}

// outputReplayText outputs the replay report as text.
func outputReplayText(w io.Writer, report store.ReplayReport, verbose bool) error {
	fmt.Fprintf(w, "Replay Summary: %d shape(s), %d unchanged\n", report.Total, report.Unchanged)
	fmt.Fprintln(w)

	for _, d := range report.Changed {
		fmt.Fprintf(w, "✗ %s(%s)\n", d.Recorded.Group, strings.Join(d.Recorded.Args, ", "))
		fmt.Fprintf(w, "  Journalled: %s\n", describeRecord(d.Recorded))
		fmt.Fprintf(w, "  Now:        %s\n", describeRecord(d.Replayed))
		if verbose {
			fmt.Fprintf(w, "  Seq: %d  Session: %s\n", d.Recorded.Seq, truncateID(d.Recorded.Session))
		}
		fmt.Fprintln(w)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(w, "✗ %s(%s)\n", f.Recorded.Group, strings.Join(f.Recorded.Args, ", "))
		fmt.Fprintf(w, "  Error: %s\n", f.Error)
		fmt.Fprintln(w)
	}

	if report.Identical() {
		fmt.Fprintln(w, "✓ All shapes resolve as journalled")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay changed")
	// Changed outcomes = exit code 1
	return NewExitError(ExitFailure, replayFailureMessage(report))
}

// describeRecord summarises the outcome part of a record.
func describeRecord(r store.ResolutionRecord) string {
	switch {
	case r.Selected != "":
		return fmt.Sprintf("%s [%s] %s", r.Outcome, r.Mode, r.Selected)
	case len(r.Candidates) > 0:
		return fmt.Sprintf("%s [%s] %s", r.Outcome, r.Mode, strings.Join(r.Candidates, " | "))
	default:
		return r.Outcome
	}
}

func replayFailureMessage(report store.ReplayReport) string {
	return fmt.Sprintf("%d shape(s) changed, %d failed", len(report.Changed), len(report.Failed))
}
