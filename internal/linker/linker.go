package linker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anatawa12/sai/internal/convert"
	"github.com/anatawa12/sai/internal/overload"
	"github.com/anatawa12/sai/internal/types"
)

// Linker is the resolution and conversion service: it resolves named
// overload groups against runtime argument types, hands out conversion
// chains, and performs complete calls through an Invoker.
//
// Thread-safety: all methods are safe for concurrent use. Groups are built
// lazily on first use of a name; concurrent first uses may harvest twice
// but every caller sees the same *overload.Group.
type Linker struct {
	u         *types.Universe
	reg       *convert.Registry
	cmp       convert.Comparators
	harvester Harvester
	invoker   Invoker
	recorder  Recorder
	logger    *slog.Logger
	clock     Sequencer
	session   string
	sessions  SessionGenerator

	groups sync.Map // string -> *overload.Group
}

// Option configures a Linker.
type Option func(*Linker)

// WithUniverse sets the type universe. Ignored when WithRegistry is given,
// since a registry carries its own universe.
func WithUniverse(u *types.Universe) Option {
	return func(l *Linker) {
		l.u = u
	}
}

// WithRegistry sets the conversion registry.
//
// Default: convert.NewDefaultRegistry over the linker's universe.
func WithRegistry(r *convert.Registry) Option {
	return func(l *Linker) {
		l.reg = r
	}
}

// WithComparators sets the conversion comparator chain.
//
// Default: convert.DefaultComparators().
func WithComparators(cs convert.Comparators) Option {
	return func(l *Linker) {
		l.cmp = cs
	}
}

// WithHarvester sets the source of candidate signatures.
func WithHarvester(h Harvester) Option {
	return func(l *Linker) {
		l.harvester = h
	}
}

// WithInvoker sets the collaborator that performs calls.
func WithInvoker(inv Invoker) Option {
	return func(l *Linker) {
		l.invoker = inv
	}
}

// WithRecorder journals every resolution and argument conversion.
func WithRecorder(r Recorder) Option {
	return func(l *Linker) {
		l.recorder = r
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linker) {
		l.logger = logger
	}
}

// WithClock sets the sequencer used to stamp journal entries.
//
// Default: NewClock().
func WithClock(c Sequencer) Option {
	return func(l *Linker) {
		l.clock = c
	}
}

// WithSessionGenerator sets how the session ID is generated.
//
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(l *Linker) {
		l.sessions = g
	}
}

// New creates a Linker. Without a harvester every group lookup fails with
// ErrUnknownGroup.
func New(opts ...Option) *Linker {
	l := &Linker{
		harvester: Signatures(nil),
		logger:    slog.Default(),
		clock:     NewClock(),
		sessions:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.reg != nil {
		l.u = l.reg.Universe()
	} else {
		if l.u == nil {
			l.u = types.NewUniverse()
		}
		l.reg = convert.NewDefaultRegistry(l.u, convert.WithRegistryLogger(l.logger))
	}
	if l.cmp == nil {
		l.cmp = convert.DefaultComparators()
	}
	l.session = l.sessions.Generate()
	return l
}

// Universe returns the type universe.
func (l *Linker) Universe() *types.Universe { return l.u }

// Registry returns the conversion registry.
func (l *Linker) Registry() *convert.Registry { return l.reg }

// Session returns the session ID stamped on journal entries.
func (l *Linker) Session() string { return l.session }

// Group returns the overload group for name, harvesting it on first use.
func (l *Linker) Group(name string) (*overload.Group, error) {
	if g, ok := l.groups.Load(name); ok {
		return g.(*overload.Group), nil
	}
	sigs, err := l.harvester.Signatures(name)
	if err != nil {
		return nil, err
	}
	g, err := overload.NewGroup(name, sigs, l.reg, l.cmp, overload.WithLogger(l.logger))
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", name, err)
	}
	actual, _ := l.groups.LoadOrStore(name, g)
	return actual.(*overload.Group), nil
}

// Resolve resolves args against the group named name. The outcome is
// journalled when a Recorder is configured; journal failures are logged,
// not returned.
func (l *Linker) Resolve(ctx context.Context, name string, args types.ArgTypes) (*overload.Outcome, error) {
	g, err := l.Group(name)
	if err != nil {
		return nil, err
	}
	o := g.Resolve(args)
	if l.recorder != nil {
		err := l.recorder.RecordResolution(ctx, Resolution{
			Session: l.session,
			Seq:     l.clock.Next(),
			Group:   name,
			Args:    args,
			Outcome: o,
		})
		if err != nil {
			l.logger.Warn("failed to journal resolution", "group", name, "error", err)
		}
	}
	return o, nil
}

// Select resolves args and returns the unique signature or the
// NoMatchError/AmbiguousError describing why there is none.
func (l *Linker) Select(ctx context.Context, name string, args types.ArgTypes) (*types.Signature, overload.Mode, error) {
	if _, err := l.Resolve(ctx, name, args); err != nil {
		return nil, overload.FixedArity, err
	}
	g, err := l.Group(name)
	if err != nil {
		return nil, overload.FixedArity, err
	}
	return g.Select(args)
}

// GetConversion returns the conversion chain from source to target.
func (l *Linker) GetConversion(source, target *types.Type) (*convert.Chain, error) {
	return l.reg.GetConversion(source, target)
}

// CanConvert reports whether source converts to target.
func (l *Linker) CanConvert(source, target *types.Type) bool {
	return l.reg.CanConvert(source, target)
}

// CompareConversion ranks two conversion targets for source.
func (l *Linker) CompareConversion(source, t1, t2 *types.Type) convert.Comparison {
	return l.cmp.CompareConversion(source, t1, t2)
}

// Convert looks up the chain for (source, target), journals the lookup and
// returns the chain.
func (l *Linker) Convert(ctx context.Context, source, target *types.Type) (*convert.Chain, error) {
	c, err := l.reg.GetConversion(source, target)
	if l.recorder != nil {
		rerr := l.recorder.RecordConversion(ctx, Conversion{
			Session:     l.session,
			Seq:         l.clock.Next(),
			Source:      source,
			Target:      target,
			Convertible: err == nil,
			Chain:       c,
		})
		if rerr != nil {
			l.logger.Warn("failed to journal conversion", "source", source.Name(), "target", target.Name(), "error", rerr)
		}
	}
	return c, err
}
