package convert

import (
	"github.com/anatawa12/sai/internal/types"
)

// Guard tests a runtime value before a guarded converter runs.
type Guard func(v any) bool

// step is one guarded converter in a chain.
type step struct {
	name    string
	guard   Guard
	convert Func
}

// Chain is a composed conversion from Source to Target: an ordered list of
// guarded converters tried in turn, ending in a fallback that always
// applies. Chains are immutable and safe for concurrent use.
type Chain struct {
	source   *types.Type
	target   *types.Type
	steps    []step
	fallback Func
	direct   bool
	identity bool
}

// Source returns the static source type the chain was built for.
func (c *Chain) Source() *types.Type { return c.source }

// Target returns the target type.
func (c *Chain) Target() *types.Type { return c.target }

// Len returns the number of guarded steps, not counting the fallback.
func (c *Chain) Len() int { return len(c.steps) }

// IsDirect reports whether the chain is a single unguarded converter.
func (c *Chain) IsDirect() bool { return c.direct }

// IsIdentity reports whether the chain performs no rule conversion at all.
func (c *Chain) IsIdentity() bool { return c.identity }

// Steps returns the names of the guarded steps in the order they are tried.
func (c *Chain) Steps() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.name
	}
	return names
}

// Convert runs the chain on v: the first step whose guard accepts v
// converts it; otherwise the fallback does.
func (c *Chain) Convert(v any) (any, error) {
	if w, ok := v.(types.Wrapper); ok {
		v = w.Unwrap()
	}
	for _, s := range c.steps {
		if s.guard(v) {
			return s.convert(v)
		}
	}
	return c.fallback(v)
}

// identityChain returns the chain used when no rule applies to a method
// invocation convertible pair.
func identityChain(u *types.Universe, source, target *types.Type) *Chain {
	return &Chain{
		source:   source,
		target:   target,
		fallback: identityFunc(u, target),
		identity: true,
	}
}

func identityFunc(u *types.Universe, target *types.Type) Func {
	return func(v any) (any, error) {
		return coerce(u, v, target)
	}
}

// asTarget wraps a converter so its result is re-expressed in the host
// representation of target (e.g. an int converter feeding a long target).
func asTarget(u *types.Universe, conv Converter, target *types.Type) Func {
	if conv.Out == target {
		return conv.Fn
	}
	return func(v any) (any, error) {
		out, err := conv.Fn(v)
		if err != nil {
			return nil, err
		}
		return coerce(u, out, target)
	}
}
