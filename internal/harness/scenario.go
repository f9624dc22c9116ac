package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/anatawa12/sai/internal/convert"
	"github.com/anatawa12/sai/internal/overload"
)

// Scenario defines a conformance test scenario.
// Scenarios compile a set of CUE declarations, run resolutions, conversions
// and comparisons against them, and assert on the resulting trace and
// journal.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists paths to CUE files declaring types and groups.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// Resolve contains overload resolutions to run, in order.
	Resolve []ResolveStep `yaml:"resolve,omitempty"`

	// Convert contains conversion lookups to run after Resolve.
	Convert []ConvertStep `yaml:"convert,omitempty"`

	// Compare contains conversion rankings to run after Convert.
	Compare []CompareStep `yaml:"compare,omitempty"`

	// Assertions validate the final trace and journal.
	// Supported types: trace_contains, trace_order, trace_count,
	// journal_count, journal_contains
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Session is an optional fixed session ID stamped on journal entries.
	// If empty, defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`
}

// ResolveStep resolves a call shape against a group.
type ResolveStep struct {
	// Group is the overload group name.
	Group string `yaml:"group"`

	// Args are the argument type names, e.g. ["int", "String[]", "null"].
	Args []string `yaml:"args"`

	// Expect specifies the expected outcome.
	// If nil, no validation is performed.
	Expect *ResolveExpect `yaml:"expect,omitempty"`
}

// ResolveExpect specifies expected resolution behavior.
type ResolveExpect struct {
	// Outcome is "unique", "ambiguous" or "no_match".
	Outcome string `yaml:"outcome"`

	// Mode is "fixed" or "variable". Unchecked when empty.
	Mode string `yaml:"mode,omitempty"`

	// Signature is the display form of the selected signature,
	// e.g. "static double area(int, int...)". Unchecked when empty.
	Signature string `yaml:"signature,omitempty"`

	// Candidates lists the display forms of the maximal candidates in
	// declaration order. Unchecked when nil.
	Candidates []string `yaml:"candidates,omitempty"`
}

// ConvertStep looks up the conversion from Source to Target and optionally
// runs it on a value.
type ConvertStep struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`

	// Value is converted when set. YAML scalars decode as string, int,
	// float64 or bool.
	Value any `yaml:"value,omitempty"`

	Expect *ConvertExpect `yaml:"expect,omitempty"`
}

// ConvertExpect specifies expected conversion behavior.
type ConvertExpect struct {
	// Convertible is whether a conversion exists.
	Convertible bool `yaml:"convertible"`

	// Result is the expected converted value, compared in rendered form.
	// Unchecked when nil.
	Result any `yaml:"result,omitempty"`

	// Fails expects converting Value to fail.
	Fails bool `yaml:"fails,omitempty"`
}

// CompareStep ranks two conversion targets for a source type.
type CompareStep struct {
	Source string `yaml:"source"`
	First  string `yaml:"first"`
	Second string `yaml:"second"`

	// Expect is "first", "second" or "indeterminate". Unchecked when empty.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the trace or the journal.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a resolve of Group with Args, or a convert of
	//   Source to Target, appears in the trace
	// - "trace_order": resolves of Groups appear in order
	// - "trace_count": Group is resolved exactly Count times
	// - "journal_count": Table holds exactly Count rows
	// - "journal_contains": the journal holds Group with Args, optionally
	//   with Outcome
	Type string `yaml:"type"`

	// Group is the overload group (trace_contains, trace_count,
	// journal_contains).
	Group string `yaml:"group,omitempty"`

	// Args are argument type names (trace_contains, journal_contains).
	Args []string `yaml:"args,omitempty"`

	// Source and Target name a conversion (trace_contains).
	Source string `yaml:"source,omitempty"`
	Target string `yaml:"target,omitempty"`

	// Outcome is the expected journalled outcome (journal_contains).
	Outcome string `yaml:"outcome,omitempty"`

	// Groups is the expected resolve order (trace_order).
	Groups []string `yaml:"groups,omitempty"`

	// Table is "resolutions" or "conversions" (journal_count).
	Table string `yaml:"table,omitempty"`

	// Count is the expected number of occurrences (trace_count,
	// journal_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains   = "trace_contains"
	AssertTraceOrder      = "trace_order"
	AssertTraceCount      = "trace_count"
	AssertJournalCount    = "journal_count"
	AssertJournalContains = "journal_contains"
)

// Journal tables.
const (
	TableResolutions = "resolutions"
	TableConversions = "conversions"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Spec paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve spec paths relative to base path BEFORE validation
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML with strict field validation.
// Spec paths are neither resolved nor checked.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Resolve)+len(s.Convert)+len(s.Compare) == 0 {
		return fmt.Errorf("at least one resolve, convert or compare step is required")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Resolve {
		if step.Group == "" {
			return fmt.Errorf("resolve[%d]: group is required", i)
		}
		if step.Args == nil {
			return fmt.Errorf("resolve[%d]: args is required (use an empty list if no args)", i)
		}
		if step.Expect != nil {
			if _, ok := overload.ParseKind(step.Expect.Outcome); !ok {
				return fmt.Errorf("resolve[%d].expect: outcome must be unique, ambiguous or no_match, got %q", i, step.Expect.Outcome)
			}
			if m := step.Expect.Mode; m != "" && m != "fixed" && m != "variable" {
				return fmt.Errorf("resolve[%d].expect: mode must be fixed or variable, got %q", i, m)
			}
		}
	}

	for i, step := range s.Convert {
		if step.Source == "" || step.Target == "" {
			return fmt.Errorf("convert[%d]: source and target are required", i)
		}
		if step.Expect != nil && step.Value == nil && (step.Expect.Result != nil || step.Expect.Fails) {
			return fmt.Errorf("convert[%d].expect: result and fails need a value", i)
		}
	}

	for i, step := range s.Compare {
		if step.Source == "" || step.First == "" || step.Second == "" {
			return fmt.Errorf("compare[%d]: source, first and second are required", i)
		}
		if step.Expect != "" && parseComparison(step.Expect) < 0 {
			return fmt.Errorf("compare[%d]: expect must be first, second or indeterminate, got %q", i, step.Expect)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Group == "" && (a.Source == "" || a.Target == "") {
			return fmt.Errorf("assertions[%d]: group, or source and target, is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Groups) == 0 {
			return fmt.Errorf("assertions[%d]: groups list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Group == "" {
			return fmt.Errorf("assertions[%d]: group is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertJournalCount:
		if a.Table != TableResolutions && a.Table != TableConversions {
			return fmt.Errorf("assertions[%d]: table must be %s or %s for journal_count", index, TableResolutions, TableConversions)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for journal_count", index)
		}
	case AssertJournalContains:
		if a.Group == "" {
			return fmt.Errorf("assertions[%d]: group is required for journal_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// parseComparison maps a scenario comparison name to a convert.Comparison,
// or -1 if the name is unknown.
func parseComparison(s string) convert.Comparison {
	for _, c := range []convert.Comparison{convert.First, convert.Second, convert.Indeterminate} {
		if c.String() == s {
			return c
		}
	}
	return -1
}
