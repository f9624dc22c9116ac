package overload

import (
	"strings"

	"github.com/anatawa12/sai/internal/types"
)

// Kind tags an Outcome.
type Kind int8

const (
	// NoMatch means no signature is applicable in either phase.
	NoMatch Kind = iota

	// Unique means exactly one maximally specific signature.
	Unique

	// Ambiguous means several mutually incomparable signatures.
	Ambiguous
)

// String implements fmt.Stringer. The names are used in journal entries and
// scenario files.
func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "no_match"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "unique":
		return Unique, true
	case "ambiguous":
		return Ambiguous, true
	case "no_match":
		return NoMatch, true
	}
	return NoMatch, false
}

// Outcome is the cached result of resolving one argument type vector.
// Outcomes are immutable.
type Outcome struct {
	kind  Kind
	mode  Mode
	cands []*types.Signature
}

// noMatch is shared by every group.
var noMatch = &Outcome{kind: NoMatch}

func newOutcome(cands []*types.Signature, mode Mode) *Outcome {
	switch len(cands) {
	case 0:
		return noMatch
	case 1:
		return &Outcome{kind: Unique, mode: mode, cands: cands}
	default:
		return &Outcome{kind: Ambiguous, mode: mode, cands: cands}
	}
}

// Kind returns the outcome tag.
func (o *Outcome) Kind() Kind { return o.kind }

// Mode returns the phase that produced the candidates. Meaningless for
// NoMatch.
func (o *Outcome) Mode() Mode { return o.mode }

// Signature returns the selected signature of a Unique outcome, else nil.
func (o *Outcome) Signature() *types.Signature {
	if o.kind != Unique {
		return nil
	}
	return o.cands[0]
}

// Candidates returns the maximally specific signatures: one for Unique,
// the tied set for Ambiguous, none for NoMatch.
func (o *Outcome) Candidates() []*types.Signature {
	return append([]*types.Signature(nil), o.cands...)
}

// String renders the outcome, e.g. "unique (String)" or
// "ambiguous [(Runnable), (Callable)]".
func (o *Outcome) String() string {
	switch o.kind {
	case Unique:
		return "unique " + o.cands[0].String()
	case Ambiguous:
		return "ambiguous " + signatureList(o.cands)
	default:
		return "no_match"
	}
}

// signatureList renders signatures as "[(A), (B, C...)]".
func signatureList(sigs []*types.Signature) string {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
