package harness

// Trace event types.
const (
	EventResolve = "resolve"
	EventConvert = "convert"
	EventCompare = "compare"
)

// TraceEvent records one executed scenario step.
// Only the fields relevant to Type are set.
type TraceEvent struct {
	Type string `json:"type"` // "resolve", "convert" or "compare"
	Seq  int64  `json:"seq"`

	// resolve
	Group      string   `json:"group,omitempty"`
	Args       []string `json:"args,omitempty"`
	Outcome    string   `json:"outcome,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	Selected   string   `json:"selected,omitempty"`
	Candidates []string `json:"candidates,omitempty"`

	// convert and compare
	Source string `json:"source,omitempty"`

	// convert
	Target      string `json:"target,omitempty"`
	Convertible bool   `json:"convertible,omitempty"`
	Value       string `json:"value,omitempty"`
	Result      string `json:"result,omitempty"`
	Failure     string `json:"failure,omitempty"`

	// compare
	First      string `json:"first,omitempty"`
	Second     string `json:"second,omitempty"`
	Comparison string `json:"comparison,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends e to the trace.
func (r *Result) addTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
