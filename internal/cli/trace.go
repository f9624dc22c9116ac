package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatawa12/sai/internal/overload"
	"github.com/anatawa12/sai/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Group    string // optional - filter to one overload group
	Session  string // optional - filter to one linker session
}

// Timeline event types.
const (
	EventResolution = "resolution"
	EventConversion = "conversion"
)

// TraceEvent represents a single journal entry in the trace timeline.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Type    string `json:"type"` // "resolution" or "conversion"
	ID      string `json:"id"`
	Session string `json:"session"`

	// Resolution fields
	Group      string   `json:"group,omitempty"`
	Args       []string `json:"args,omitempty"`
	Outcome    string   `json:"outcome,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	Selected   string   `json:"selected,omitempty"`
	Candidates []string `json:"candidates,omitempty"`

	// Conversion fields
	Source      string   `json:"source,omitempty"`
	Target      string   `json:"target,omitempty"`
	Convertible bool     `json:"convertible,omitempty"`
	Steps       []string `json:"steps,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents   int `json:"total_events"`
	Resolutions   int `json:"resolutions"`
	Conversions   int `json:"conversions"`
	Unique        int `json:"unique"`
	Ambiguous     int `json:"ambiguous"`
	NoMatch       int `json:"no_match"`
	Inconvertible int `json:"inconvertible"`
	Groups        int `json:"groups"`
	Sessions      int `json:"sessions"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the resolution journal",
		Long: `Show the journalled resolutions and conversion lookups.

The output includes:
- Timeline: every journal entry in seq order
- Stats: outcome counts per kind and the groups and sessions involved

With --group only resolutions of that group are shown.

Examples:
  sai trace --db ./journal.db
  sai trace --db ./journal.db --group area
  sai trace --db ./journal.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Group, "group", "", "filter to one overload group")
	cmd.Flags().StringVar(&opts.Session, "session", "", "filter to one linker session")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	// Open database
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	resolutions, err := st.ListResolutions(ctx, opts.Group)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list resolutions", err)
	}

	var conversions []store.ConversionRecord
	if opts.Group == "" {
		conversions, err = st.ListConversions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list conversions", err)
		}
	}

	result := TraceResult{
		Timeline: buildTimeline(resolutions, conversions, opts.Session),
	}
	result.Stats = traceStats(result.Timeline)

	// Output results
	if opts.Format == "json" {
		return writeResponse(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

// buildTimeline merges both journals into one seq-ordered timeline.
// Entries of other sessions are dropped when session is set.
func buildTimeline(resolutions []store.ResolutionRecord, conversions []store.ConversionRecord, session string) []TraceEvent {
	timeline := make([]TraceEvent, 0, len(resolutions)+len(conversions))

	for _, r := range resolutions {
		if session != "" && r.Session != session {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:        r.Seq,
			Type:       EventResolution,
			ID:         r.ID,
			Session:    r.Session,
			Group:      r.Group,
			Args:       r.Args,
			Outcome:    r.Outcome,
			Mode:       r.Mode,
			Selected:   r.Selected,
			Candidates: r.Candidates,
		})
	}
	for _, c := range conversions {
		if session != "" && c.Session != session {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:         c.Seq,
			Type:        EventConversion,
			ID:          c.ID,
			Session:     c.Session,
			Source:      c.Source,
			Target:      c.Target,
			Convertible: c.Convertible,
			Steps:       c.Steps,
		})
	}

	// Seq is unique across both journals; ID breaks ties in hand-edited
	// databases.
	sort.SliceStable(timeline, func(i, j int) bool {
		if timeline[i].Seq != timeline[j].Seq {
			return timeline[i].Seq < timeline[j].Seq
		}
		return timeline[i].ID < timeline[j].ID
	})
	return timeline
}

func traceStats(timeline []TraceEvent) TraceStats {
	stats := TraceStats{TotalEvents: len(timeline)}
	groups := make(map[string]bool)
	sessions := make(map[string]bool)

	for _, e := range timeline {
		sessions[e.Session] = true
		switch e.Type {
		case EventResolution:
			stats.Resolutions++
			groups[e.Group] = true
			switch e.Outcome {
			case overload.Unique.String():
				stats.Unique++
			case overload.Ambiguous.String():
				stats.Ambiguous++
			default:
				stats.NoMatch++
			}
		case EventConversion:
			stats.Conversions++
			if !e.Convertible {
				stats.Inconvertible++
			}
		}
	}
	stats.Groups = len(groups)
	stats.Sessions = len(sessions)
	return stats
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	// Timeline section
	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	} else {
		for _, event := range result.Timeline {
			formatTimelineEvent(w, event, verbose)
		}
	}
	fmt.Fprintln(w)

	// Stats section
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events:  %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Resolutions:   %d (%d unique, %d ambiguous, %d no match)\n",
		result.Stats.Resolutions, result.Stats.Unique, result.Stats.Ambiguous, result.Stats.NoMatch)
	fmt.Fprintf(w, "  Conversions:   %d (%d not convertible)\n", result.Stats.Conversions, result.Stats.Inconvertible)
	fmt.Fprintf(w, "  Groups:        %d\n", result.Stats.Groups)
	fmt.Fprintf(w, "  Sessions:      %d\n", result.Stats.Sessions)

	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	switch event.Type {
	case EventResolution:
		fmt.Fprintf(w, "  [%d] RES %s(%s) %s", event.Seq, event.Group, strings.Join(event.Args, ", "), event.Outcome)
		if event.Selected != "" {
			fmt.Fprintf(w, " -> %s", event.Selected)
		}
		fmt.Fprintln(w)
		if verbose && event.Outcome == overload.Ambiguous.String() {
			for _, c := range event.Candidates {
				fmt.Fprintf(w, "       Candidate: %s\n", c)
			}
		}

	case EventConversion:
		status := "convertible"
		if !event.Convertible {
			status = "not convertible"
		}
		fmt.Fprintf(w, "  [%d] CONV %s -> %s %s\n", event.Seq, event.Source, event.Target, status)
		if verbose && len(event.Steps) > 0 {
			fmt.Fprintf(w, "       Steps: %s\n", strings.Join(event.Steps, ", "))
		}
	}

	if verbose {
		fmt.Fprintf(w, "       ID: %s  Session: %s\n", truncateID(event.ID), truncateID(event.Session))
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
