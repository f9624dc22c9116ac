package store

import (
	"context"
	"fmt"
	"slices"
)

// ReplayFunc re-resolves a journalled shape under the current declarations.
// It returns the fresh outcome as a record with the same ID, group and args.
type ReplayFunc func(ctx context.Context, rec ResolutionRecord) (ResolutionRecord, error)

// ReplayDiff is a shape whose outcome changed since it was journalled.
type ReplayDiff struct {
	Recorded ResolutionRecord `json:"recorded"`
	Replayed ResolutionRecord `json:"replayed"`
}

// ReplayFailure is a shape that could not be re-resolved at all, e.g.
// because its group or an argument type no longer exists.
type ReplayFailure struct {
	Recorded ResolutionRecord `json:"recorded"`
	Error    string           `json:"error"`
}

// ReplayReport summarises a replay of the whole journal.
type ReplayReport struct {
	Total     int             `json:"total"`
	Unchanged int             `json:"unchanged"`
	Changed   []ReplayDiff    `json:"changed"`
	Failed    []ReplayFailure `json:"failed"`
}

// Identical reports whether every journalled shape resolved the same way.
func (r ReplayReport) Identical() bool {
	return len(r.Changed) == 0 && len(r.Failed) == 0
}

// Replay re-resolves every journalled shape in seq order and compares the
// outcome kind, the selected signature and the candidate list. Session and
// seq are not compared.
func (s *Store) Replay(ctx context.Context, fn ReplayFunc) (ReplayReport, error) {
	records, err := s.ListResolutions(ctx, "")
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}

	report := ReplayReport{Changed: []ReplayDiff{}, Failed: []ReplayFailure{}}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Total++

		got, err := fn(ctx, rec)
		if err != nil {
			report.Failed = append(report.Failed, ReplayFailure{Recorded: rec, Error: err.Error()})
			continue
		}
		if sameOutcome(rec, got) {
			report.Unchanged++
			continue
		}
		report.Changed = append(report.Changed, ReplayDiff{Recorded: rec, Replayed: got})
	}
	return report, nil
}

func sameOutcome(a, b ResolutionRecord) bool {
	return a.Outcome == b.Outcome &&
		a.Mode == b.Mode &&
		a.Selected == b.Selected &&
		slices.Equal(a.Candidates, b.Candidates)
}
