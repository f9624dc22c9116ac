package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/anatawa12/sai/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, describeEvent(event))
		}
	}

	return buf.String()
}

// describeEvent renders a trace event on one line.
func describeEvent(e TraceEvent) string {
	switch e.Type {
	case EventResolve:
		return fmt.Sprintf("resolve %s(%s) -> %s", e.Group, strings.Join(e.Args, ", "), e.Outcome)
	case EventConvert:
		return fmt.Sprintf("convert %s -> %s (convertible=%t)", e.Source, e.Target, e.Convertible)
	default:
		return fmt.Sprintf("compare %s: %s vs %s -> %s", e.Source, e.First, e.Second, e.Comparison)
	}
}

// assertTraceContains checks if the trace contains a resolve of the group
// with exactly the given args (any args when none are given), or a convert
// of source to target.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if assertion.Group != "" {
			if event.Type == EventResolve && event.Group == assertion.Group &&
				(assertion.Args == nil || slices.Equal(event.Args, assertion.Args)) {
				return nil
			}
			continue
		}
		if event.Type == EventConvert && event.Source == assertion.Source && event.Target == assertion.Target {
			return nil
		}
	}

	expected := fmt.Sprintf("convert %s -> %s", assertion.Source, assertion.Target)
	if assertion.Group != "" {
		expected = fmt.Sprintf("resolve %s with args %v", assertion.Group, assertion.Args)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if groups are first resolved in the specified
// order. Resolves need not be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// Step 1: Find first position of each expected group
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Type == EventResolve && positions[event.Group] == 0 {
			positions[event.Group] = i + 1 // 1-indexed for readability
		}
	}

	// Step 2: Verify all groups found
	for _, group := range assertion.Groups {
		if positions[group] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all groups present: %v", assertion.Groups),
				Actual:   fmt.Sprintf("missing group: %s", group),
				Trace:    trace,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Groups); i++ {
		prev := assertion.Groups[i-1]
		curr := assertion.Groups[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("groups in order: %v", assertion.Groups),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the group is resolved exactly the specified
// number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventResolve && event.Group == assertion.Group {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d resolves of %s", assertion.Count, assertion.Group),
			Actual:   fmt.Sprintf("%d resolves", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertJournalCount checks the number of journalled rows. Repeated shapes
// are journalled once, so this can be lower than the trace count.
func assertJournalCount(ctx context.Context, st *store.Store, assertion Assertion) error {
	var count int
	switch assertion.Table {
	case TableResolutions:
		n, err := st.CountResolutions(ctx)
		if err != nil {
			return fmt.Errorf("count resolutions: %w", err)
		}
		count = n
	case TableConversions:
		recs, err := st.ListConversions(ctx)
		if err != nil {
			return fmt.Errorf("list conversions: %w", err)
		}
		count = len(recs)
	default:
		return fmt.Errorf("journal_count: unknown table %q", assertion.Table)
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d rows in %s", assertion.Count, assertion.Table),
			Actual:   fmt.Sprintf("%d rows", count),
		}
	}
	return nil
}

// assertJournalContains checks the journal holds the group's call shape,
// with the given outcome when one is specified.
func assertJournalContains(ctx context.Context, st *store.Store, assertion Assertion) error {
	recs, err := st.ListResolutions(ctx, assertion.Group)
	if err != nil {
		return fmt.Errorf("list resolutions: %w", err)
	}

	for _, rec := range recs {
		if assertion.Args != nil && !slices.Equal(rec.Args, assertion.Args) {
			continue
		}
		if assertion.Outcome != "" && rec.Outcome != assertion.Outcome {
			return &AssertionError{
				Type:     AssertJournalContains,
				Expected: fmt.Sprintf("%s%v journalled as %s", assertion.Group, rec.Args, assertion.Outcome),
				Actual:   fmt.Sprintf("journalled as %s", rec.Outcome),
			}
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertJournalContains,
		Expected: fmt.Sprintf("journal entry for %s with args %v", assertion.Group, assertion.Args),
		Actual:   fmt.Sprintf("not found among %d entries", len(recs)),
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for journal assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertJournalCount, AssertJournalContains:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: %s requires database context", i, assertion.Type)
			} else if assertion.Type == AssertJournalCount {
				err = assertJournalCount(actx.Ctx, actx.Store, assertion)
			} else {
				err = assertJournalContains(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
