package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/anatawa12/sai/internal/types"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Session      string       `json:"session,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because types.MarshalCanonical only handles primitives, lists and maps.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		switch event.Type {
		case EventResolve:
			eventMap["group"] = event.Group
			eventMap["args"] = stringList(event.Args)
			eventMap["outcome"] = event.Outcome
			eventMap["mode"] = event.Mode
			eventMap["candidates"] = stringList(event.Candidates)
			if event.Selected != "" {
				eventMap["selected"] = event.Selected
			}
		case EventConvert:
			eventMap["source"] = event.Source
			eventMap["target"] = event.Target
			eventMap["convertible"] = event.Convertible
			if event.Value != "" {
				eventMap["value"] = event.Value
			}
			if event.Result != "" {
				eventMap["result"] = event.Result
			}
			if event.Failure != "" {
				eventMap["failure"] = event.Failure
			}
		case EventCompare:
			eventMap["source"] = event.Source
			eventMap["first"] = event.First
			eventMap["second"] = event.Second
			eventMap["comparison"] = event.Comparison
		}
		traceList[i] = eventMap
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
	if s.Session != "" {
		result["session"] = s.Session
	}
	return result
}

// stringList returns names, or an empty list when nil.
func stringList(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// Snapshot renders result's trace as canonical JSON.
func Snapshot(scenarioName, session string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Session:      session,
		Trace:        result.Trace,
	}
	return types.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := RunContext(t.Context(), scenario)
	if err != nil {
		return err
	}

	traceJSON, err := Snapshot(scenario.Name, scenario.Session, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, "", result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
