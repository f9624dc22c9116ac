package overload

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/anatawa12/sai/internal/types"
)

// ErrEmptyGroup is returned by NewGroup for a group without signatures.
var ErrEmptyGroup = errors.New("overload group has no signatures")

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithLogger sets the logger for cache misses. Default: slog.Default().
func WithLogger(logger *slog.Logger) GroupOption {
	return func(g *Group) {
		g.logger = logger
	}
}

// Stats counts cache activity of a Group.
type Stats struct {
	Hits   int64
	Misses int64
}

// Group is the set of signatures sharing one name, with its resolution
// cache.
//
// The fixed arity bucket holds every signature; the variable arity bucket
// holds the variadic ones. Both are fixed at construction.
//
// Thread-safety: all methods are safe for concurrent use. Concurrent first
// resolutions of one argument vector may compute the outcome more than
// once; the first stored outcome is the one every caller sees.
type Group struct {
	name   string
	sigs   []*types.Signature
	fixed  []*types.Signature
	vararg []*types.Signature

	oracle Oracle
	ranker Ranker
	logger *slog.Logger

	cache  sync.Map // ArgTypes.Key() -> *Outcome
	hits   atomic.Int64
	misses atomic.Int64
}

// NewGroup creates a group named name over sigs, in declaration order.
// Every signature must carry the group's name.
func NewGroup(name string, sigs []*types.Signature, oracle Oracle, ranker Ranker, opts ...GroupOption) (*Group, error) {
	if len(sigs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyGroup, name)
	}
	g := &Group{
		name:   name,
		sigs:   make([]*types.Signature, 0, len(sigs)),
		oracle: oracle,
		ranker: ranker,
		logger: slog.Default(),
	}
	for i, s := range sigs {
		if s == nil {
			return nil, fmt.Errorf("overload group %s: signature %d is nil", name, i)
		}
		if s.Name() != name {
			return nil, fmt.Errorf("overload group %s: signature %d is named %q", name, i, s.Name())
		}
		g.sigs = append(g.sigs, s)
		g.fixed = append(g.fixed, s)
		if s.IsVariadic() {
			g.vararg = append(g.vararg, s)
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Signatures returns the signatures in declaration order.
func (g *Group) Signatures() []*types.Signature {
	return append([]*types.Signature(nil), g.sigs...)
}

// Variadic returns the variable arity bucket.
func (g *Group) Variadic() []*types.Signature {
	return append([]*types.Signature(nil), g.vararg...)
}

// Stats returns the cache counters.
func (g *Group) Stats() Stats {
	return Stats{Hits: g.hits.Load(), Misses: g.misses.Load()}
}

// Resolve returns the outcome for args, computing and caching it on first
// use.
func (g *Group) Resolve(args types.ArgTypes) *Outcome {
	key := args.Key()
	if o, ok := g.cache.Load(key); ok {
		g.hits.Add(1)
		return o.(*Outcome)
	}
	g.misses.Add(1)

	computed := g.compute(args)
	o, _ := g.cache.LoadOrStore(key, computed)
	outcome := o.(*Outcome)

	g.logger.Debug("overload resolved",
		"group", g.name,
		"args", args.String(),
		"outcome", outcome.String(),
	)
	return outcome
}

func (g *Group) compute(args types.ArgTypes) *Outcome {
	if cands := g.applicable(g.fixed, args, FixedArity); len(cands) > 0 {
		return newOutcome(ReduceToMaximal(cands, args, FixedArity, g.ranker), FixedArity)
	}
	if cands := g.applicable(g.vararg, args, VarArity); len(cands) > 0 {
		return newOutcome(ReduceToMaximal(cands, args, VarArity, g.ranker), VarArity)
	}
	return noMatch
}

func (g *Group) applicable(bucket []*types.Signature, args types.ArgTypes, mode Mode) []*types.Signature {
	var out []*types.Signature
	for _, s := range bucket {
		if IsApplicable(s, args, mode, g.oracle) {
			out = append(out, s)
		}
	}
	return out
}

// Select resolves args and returns the unique signature, or a NoMatchError
// or AmbiguousError. The returned Mode tells the caller how to bind
// arguments to the signature's parameters.
func (g *Group) Select(args types.ArgTypes) (*types.Signature, Mode, error) {
	o := g.Resolve(args)
	switch o.kind {
	case Unique:
		return o.cands[0], o.mode, nil
	case Ambiguous:
		return nil, o.mode, &AmbiguousError{
			Name:       g.name,
			Args:       args,
			Mode:       o.mode,
			Candidates: o.Candidates(),
		}
	default:
		return nil, FixedArity, g.noMatchError(args)
	}
}

// noMatchError lists the signatures whose arity admits len(args) in each
// phase.
func (g *Group) noMatchError(args types.ArgTypes) *NoMatchError {
	e := &NoMatchError{Name: g.name, Args: args}
	for _, s := range g.fixed {
		if s.ParamCount() == len(args) {
			e.Fixed = append(e.Fixed, s)
		}
	}
	for _, s := range g.vararg {
		if len(args) >= s.ParamCount()-1 {
			e.Variadic = append(e.Variadic, s)
		}
	}
	return e
}

// CallableByArity returns the signatures that could accept n arguments
// based on arity alone, in declaration order.
func (g *Group) CallableByArity(n int) []*types.Signature {
	var out []*types.Signature
	for _, s := range g.sigs {
		if s.IsVariadic() {
			if n >= s.ParamCount()-1 {
				out = append(out, s)
			}
		} else if n == s.ParamCount() {
			out = append(out, s)
		}
	}
	return out
}
