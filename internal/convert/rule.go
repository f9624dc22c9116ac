package convert

import (
	"github.com/anatawa12/sai/internal/types"
)

// Func converts one value. Converters never see a Wrapper: values are
// unwrapped before conversion.
type Func func(v any) (any, error)

// Converter is a conversion function together with its declared parameter
// and return types. The declared types are checked against the rule that
// registers the converter.
type Converter struct {
	In  *types.Type
	Out *types.Type
	Fn  Func
}

// Rule declares that values of any of its source types can be converted to
// its target type by its converter.
//
// Rules are immutable once constructed with NewRule.
type Rule struct {
	target       *types.Type
	sources      []*types.Type
	conv         Converter
	anyPrimitive bool
}

// NewRule validates and returns a rule.
//
// Errors (all MalformedRuleError):
//   - nil converter function or declared types
//   - converter returning void
//   - converter return type not convertible without loss to target
//   - no source types, or a Null or void source
//   - a source type not convertible without loss to the converter input
func NewRule(target *types.Type, conv Converter, sources ...*types.Type) (*Rule, error) {
	if target == nil {
		return nil, malformed(nil, "rule has no target type")
	}
	if conv.Fn == nil || conv.In == nil || conv.Out == nil {
		return nil, malformed(target, "converter must declare a function, an input and an output type")
	}
	if conv.Out == types.Void {
		return nil, malformed(target, "converter cannot return void")
	}
	if !types.IsConvertibleWithoutLoss(conv.Out, target) {
		return nil, malformed(target, "converter returns %s which is not convertible without loss to %s", conv.Out, target)
	}
	if len(sources) == 0 {
		return nil, malformed(target, "rule must declare at least one source type")
	}

	r := &Rule{target: target, conv: conv}
	for _, s := range sources {
		if s == nil || s == types.Null || s == types.Void {
			return nil, malformed(target, "invalid source type %v", s)
		}
		if !types.IsConvertibleWithoutLoss(s, conv.In) {
			return nil, malformed(target, "source %s is not convertible without loss to converter input %s", s, conv.In)
		}
		if s.IsPrimitive() {
			r.anyPrimitive = true
		}
		r.sources = append(r.sources, s)
	}
	return r, nil
}

// MustRule is like NewRule but panics on error. Used for builtin rules.
func MustRule(target *types.Type, conv Converter, sources ...*types.Type) *Rule {
	r, err := NewRule(target, conv, sources...)
	if err != nil {
		panic(err)
	}
	return r
}

// Target returns the rule's target type.
func (r *Rule) Target() *types.Type { return r.target }

// Sources returns a copy of the declared source types.
func (r *Rule) Sources() []*types.Type {
	return append([]*types.Type(nil), r.sources...)
}

// Converter returns the rule's converter.
func (r *Rule) Converter() Converter { return r.conv }

// StaticGuard reports whether every value of source is known, from the type
// alone, to be acceptable: source is assignable to some declared source.
func (r *Rule) StaticGuard(source *types.Type) bool {
	for _, s := range r.sources {
		if types.IsAssignable(s, source) {
			return true
		}
	}
	return false
}

// Applies reports whether the rule is compatible with source: source is
// assignable to a declared source, or a declared source is assignable to
// source (so a value of static type source may be one at runtime).
// Primitive sources only match through the primitive table.
func (r *Rule) Applies(source *types.Type) bool {
	if source.IsPrimitive() {
		return false
	}
	for _, s := range r.sources {
		if s.IsPrimitive() {
			continue
		}
		if types.IsAssignable(s, source) || types.IsAssignable(source, s) {
			return true
		}
	}
	return false
}

// DynamicGuard reports whether the runtime value v is an instance of some
// declared source.
func (r *Rule) DynamicGuard(u *types.Universe, v any) bool {
	for _, s := range r.sources {
		if !s.IsPrimitive() && u.IsInstance(s, v) {
			return true
		}
	}
	return false
}
