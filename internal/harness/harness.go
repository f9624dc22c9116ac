package harness

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/anatawa12/sai/internal/compiler"
	"github.com/anatawa12/sai/internal/linker"
	"github.com/anatawa12/sai/internal/store"
	"github.com/anatawa12/sai/internal/testutil"
	"github.com/anatawa12/sai/internal/types"
)

// Harness is the test execution engine.
// It runs scenarios against a real linker with a deterministic clock and
// session, journalling into a fresh in-memory store.
type Harness struct {
	store  *store.Store
	linker *linker.Linker
	u      *types.Universe
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database and type universe for
// isolation. Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load and compile the scenario's CUE declarations
// 3. Execute resolve, convert and compare steps with expect validation
// 4. Evaluate assertions
// 5. Return result with pass/fail, trace, and errors
//
// A non-nil error means the scenario could not be executed; expectation
// mismatches are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with an explicit context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	specs := make([]string, len(scenario.Specs))
	for i, p := range scenario.Specs {
		if specs[i], err = filepath.Abs(p); err != nil {
			return nil, fmt.Errorf("failed to resolve spec path %s: %w", p, err)
		}
	}
	v, err := compiler.Load("", specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}
	u := types.NewUniverse()
	cat, err := compiler.Compile(u, v)
	if err != nil {
		return nil, fmt.Errorf("failed to compile specs: %w", err)
	}

	logger := testutil.QuietLogger()
	clock := testutil.NewDeterministicClock()
	l := linker.New(
		linker.WithRegistry(cat.Registry()),
		linker.WithHarvester(cat),
		linker.WithRecorder(st),
		linker.WithLogger(logger),
		linker.WithClock(clock),
		linker.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
	)

	h := &Harness{
		store:  st,
		linker: l,
		u:      u,
		clock:  clock,
		logger: logger,
	}

	result := NewResult()
	if err := h.executeResolve(ctx, scenario.Resolve, result); err != nil {
		return nil, fmt.Errorf("failed to execute resolve steps: %w", err)
	}
	if err := h.executeConvert(ctx, scenario.Convert, result); err != nil {
		return nil, fmt.Errorf("failed to execute convert steps: %w", err)
	}
	if err := h.executeCompare(scenario.Compare, result); err != nil {
		return nil, fmt.Errorf("failed to execute compare steps: %w", err)
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// lookup resolves a scenario type name.
func (h *Harness) lookup(name string) (*types.Type, error) {
	t, ok := h.u.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

// executeResolve runs all resolve steps and validates expect clauses.
//
// The linker journals each resolution and advances the clock once, so the
// trace seq matches the journal seq of the first observation of a shape.
func (h *Harness) executeResolve(ctx context.Context, steps []ResolveStep, result *Result) error {
	for i, step := range steps {
		args := make(types.ArgTypes, len(step.Args))
		for j, name := range step.Args {
			t, err := h.lookup(name)
			if err != nil {
				return fmt.Errorf("resolve[%d]: arg %d: %w", i, j, err)
			}
			args[j] = t
		}

		o, err := h.linker.Resolve(ctx, step.Group, args)
		if err != nil {
			return fmt.Errorf("resolve[%d]: %w", i, err)
		}

		rec, err := store.NewResolutionRecord(step.Group, args, o)
		if err != nil {
			return fmt.Errorf("resolve[%d]: %w", i, err)
		}
		result.addTrace(TraceEvent{
			Type:       EventResolve,
			Seq:        h.clock.Current(),
			Group:      rec.Group,
			Args:       rec.Args,
			Outcome:    rec.Outcome,
			Mode:       rec.Mode,
			Selected:   rec.Selected,
			Candidates: rec.Candidates,
		})

		h.logger.Debug("resolve step completed",
			"step", i,
			"group", step.Group,
			"args", args.String(),
			"outcome", rec.Outcome,
		)

		if step.Expect == nil {
			continue
		}
		prefix := fmt.Sprintf("resolve[%d] %s%s", i, step.Group, args.String())
		if step.Expect.Outcome != rec.Outcome {
			result.AddError(fmt.Sprintf("%s: expected outcome %s, got %s", prefix, step.Expect.Outcome, rec.Outcome))
		}
		if step.Expect.Mode != "" && step.Expect.Mode != rec.Mode {
			result.AddError(fmt.Sprintf("%s: expected mode %s, got %s", prefix, step.Expect.Mode, rec.Mode))
		}
		if step.Expect.Signature != "" && step.Expect.Signature != rec.Selected {
			result.AddError(fmt.Sprintf("%s: expected signature %q, got %q", prefix, step.Expect.Signature, rec.Selected))
		}
		if step.Expect.Candidates != nil && !slices.Equal(step.Expect.Candidates, rec.Candidates) {
			result.AddError(fmt.Sprintf("%s: expected candidates %q, got %q", prefix, step.Expect.Candidates, rec.Candidates))
		}
	}
	return nil
}

// executeConvert runs all convert steps and validates expect clauses.
func (h *Harness) executeConvert(ctx context.Context, steps []ConvertStep, result *Result) error {
	for i, step := range steps {
		source, err := h.lookup(step.Source)
		if err != nil {
			return fmt.Errorf("convert[%d]: source: %w", i, err)
		}
		target, err := h.lookup(step.Target)
		if err != nil {
			return fmt.Errorf("convert[%d]: target: %w", i, err)
		}

		chain, lookupErr := h.linker.Convert(ctx, source, target)
		event := TraceEvent{
			Type:        EventConvert,
			Seq:         h.clock.Current(),
			Source:      source.Name(),
			Target:      target.Name(),
			Convertible: lookupErr == nil,
		}

		var convErr error
		if step.Value != nil {
			event.Value = renderValue(step.Value)
			if chain != nil {
				var out any
				out, convErr = chain.Convert(step.Value)
				if convErr != nil {
					event.Failure = convErr.Error()
				} else {
					event.Result = renderValue(out)
				}
			}
		}
		result.addTrace(event)

		h.logger.Debug("convert step completed",
			"step", i,
			"source", source.Name(),
			"target", target.Name(),
			"convertible", event.Convertible,
		)

		if step.Expect == nil {
			continue
		}
		prefix := fmt.Sprintf("convert[%d] %s -> %s", i, source.Name(), target.Name())
		if step.Expect.Convertible != event.Convertible {
			result.AddError(fmt.Sprintf("%s: expected convertible=%t, got %t", prefix, step.Expect.Convertible, event.Convertible))
			continue
		}
		if chain == nil {
			continue
		}
		switch {
		case step.Expect.Fails && convErr == nil:
			result.AddError(fmt.Sprintf("%s: expected converting %s to fail, got %s", prefix, event.Value, event.Result))
		case !step.Expect.Fails && convErr != nil:
			result.AddError(fmt.Sprintf("%s: converting %s failed: %v", prefix, event.Value, convErr))
		case step.Expect.Result != nil && convErr == nil && renderValue(step.Expect.Result) != event.Result:
			result.AddError(fmt.Sprintf("%s: expected result %s, got %s", prefix, renderValue(step.Expect.Result), event.Result))
		}
	}
	return nil
}

// executeCompare runs all compare steps and validates expect clauses.
// Comparisons are not journalled, so each step takes its own seq.
func (h *Harness) executeCompare(steps []CompareStep, result *Result) error {
	for i, step := range steps {
		var ts [3]*types.Type
		for j, name := range []string{step.Source, step.First, step.Second} {
			t, err := h.lookup(name)
			if err != nil {
				return fmt.Errorf("compare[%d]: %w", i, err)
			}
			ts[j] = t
		}

		cmp := h.linker.CompareConversion(ts[0], ts[1], ts[2])
		result.addTrace(TraceEvent{
			Type:       EventCompare,
			Seq:        h.clock.Next(),
			Source:     ts[0].Name(),
			First:      ts[1].Name(),
			Second:     ts[2].Name(),
			Comparison: cmp.String(),
		})

		if step.Expect != "" && step.Expect != cmp.String() {
			result.AddError(fmt.Sprintf("compare[%d] %s: %s vs %s: expected %s, got %s",
				i, ts[0].Name(), ts[1].Name(), ts[2].Name(), step.Expect, cmp))
		}
	}
	return nil
}

// hostTyped is implemented by adapter values handed to the host.
type hostTyped interface {
	HostType() *types.Type
}

// renderValue formats a value for the trace. Adapter values render as
// their host type so traces stay free of pointers.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case hostTyped:
		return "<" + val.HostType().Name() + ">"
	case string:
		return fmt.Sprintf("%q", val)
	case uint16:
		return fmt.Sprintf("%q", string(rune(val)))
	default:
		return fmt.Sprint(val)
	}
}
