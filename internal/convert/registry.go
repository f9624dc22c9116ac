package convert

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/anatawa12/sai/internal/types"
)

// typePair keys per-(source, target) caches.
type typePair struct {
	source *types.Type
	target *types.Type
}

// chainEntry is the cached result of building a chain. chain is nil when
// the pair is not convertible.
type chainEntry struct {
	chain *Chain
}

// Adapter turns script callables into instances of abstract host types with
// a single abstract method.
type Adapter interface {
	// CanAdapt reports whether target can be implemented by a callable.
	CanAdapt(target *types.Type) bool

	// Adapt returns a converter from a callable to target.
	Adapt(target *types.Type) Func
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithAdapter installs the single-method adaptation hook.
func WithAdapter(a Adapter) RegistryOption {
	return func(r *Registry) {
		r.adapter = a
	}
}

// WithRegistryLogger sets the logger used for chain construction events.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry holds conversion rules and builds conversion chains on demand.
//
// Rules are registered in passes: within one pass a target may appear only
// once via Add. AddDirect bypasses that check and also fills the
// primitive-source table. The first lookup seals the registry; later
// registrations fail.
//
// Thread-safety: lookups are safe for concurrent use. Registration must
// complete before the first lookup.
type Registry struct {
	u       *types.Universe
	adapter Adapter
	logger  *slog.Logger

	byTarget  map[*types.Type][]*Rule
	primitive map[typePair][]*Rule
	pass      string
	passKeys  map[*types.Type]bool
	passes    []string
	sealed    atomic.Bool

	chains   sync.Map // typePair -> chainEntry
	canConv  sync.Map // typePair -> bool
	adapters sync.Map // *types.Type -> bool
}

// NewRegistry creates an empty registry over universe u.
func NewRegistry(u *types.Universe, opts ...RegistryOption) *Registry {
	r := &Registry{
		u:         u,
		logger:    slog.Default(),
		byTarget:  make(map[*types.Type][]*Rule),
		primitive: make(map[typePair][]*Rule),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Universe returns the universe used for dynamic guards.
func (r *Registry) Universe() *types.Universe { return r.u }

// StartPass begins a new registration pass. Targets registered with Add in
// earlier passes may be registered again.
func (r *Registry) StartPass(name string) error {
	if r.sealed.Load() {
		return malformed(nil, "registry is sealed; cannot start pass %q", name)
	}
	r.pass = name
	r.passKeys = make(map[*types.Type]bool)
	r.passes = append(r.passes, name)
	return nil
}

// Passes returns the names of the passes started so far.
func (r *Registry) Passes() []string {
	return append([]string(nil), r.passes...)
}

// Add registers rule in the current pass. A second rule for the same target
// in one pass is a MalformedRuleError.
func (r *Registry) Add(rule *Rule) error {
	if r.passKeys == nil {
		return malformed(rule.target, "no registration pass started")
	}
	if r.passKeys[rule.target] {
		return malformed(rule.target, "duplicate target type in pass %q", r.pass)
	}
	if err := r.AddDirect(rule); err != nil {
		return err
	}
	r.passKeys[rule.target] = true
	return nil
}

// AddDirect registers rule without the per-pass duplicate check. Rules with
// primitive sources are also indexed by (primitive source, target).
func (r *Registry) AddDirect(rule *Rule) error {
	if rule == nil {
		return malformed(nil, "nil rule")
	}
	if r.sealed.Load() {
		return malformed(rule.target, "registry is sealed")
	}
	if rule.anyPrimitive {
		for _, s := range rule.sources {
			if s.IsPrimitive() {
				k := typePair{s, rule.target}
				r.primitive[k] = append(r.primitive[k], rule)
			}
		}
	}
	r.byTarget[rule.target] = append(r.byTarget[rule.target], rule)
	return nil
}

// Seal freezes the registry. Called implicitly by the first lookup.
func (r *Registry) Seal() {
	r.sealed.Store(true)
}

// Sealed reports whether the registry is frozen.
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// RuleCount returns the number of registered rules.
func (r *Registry) RuleCount() int {
	n := 0
	for _, rules := range r.byTarget {
		n += len(rules)
	}
	return n
}

// applicableRules returns the rules for (source, target) in registration
// order, dropping every rule registered before the last one whose static
// guard holds for source.
func (r *Registry) applicableRules(source, target *types.Type) []*Rule {
	if source.IsPrimitive() {
		return r.primitive[typePair{source, target}]
	}
	var out []*Rule
	for _, rule := range r.byTarget[target] {
		if !rule.Applies(source) {
			continue
		}
		if rule.StaticGuard(source) {
			out = out[:0]
		}
		out = append(out, rule)
	}
	return out
}

// GetConversion returns the conversion chain from source to target, or a
// NoConversionError. Chains are built once per pair and cached; concurrent
// first lookups may build duplicates but all callers observe one chain.
func (r *Registry) GetConversion(source, target *types.Type) (*Chain, error) {
	r.Seal()
	k := typePair{source, target}
	if e, ok := r.chains.Load(k); ok {
		return e.(chainEntry).result(source, target)
	}

	e, _ := r.chains.LoadOrStore(k, chainEntry{chain: r.buildChain(source, target)})
	return e.(chainEntry).result(source, target)
}

func (e chainEntry) result(source, target *types.Type) (*Chain, error) {
	if e.chain == nil {
		return nil, &NoConversionError{Source: source, Target: target}
	}
	return e.chain, nil
}

// CanConvert reports whether GetConversion(source, target) would succeed,
// without building the chain.
func (r *Registry) CanConvert(source, target *types.Type) bool {
	r.Seal()
	if source == types.Null {
		return !target.IsPrimitive()
	}
	k := typePair{source, target}
	if v, ok := r.canConv.Load(k); ok {
		return v.(bool)
	}
	ok := types.IsMethodInvocationConvertible(source, target) ||
		r.useAdapter(source, target) ||
		(target.IsArray() && nativeArraySource.Applies(source)) ||
		len(r.applicableRules(source, target)) > 0
	r.canConv.Store(k, ok)
	return ok
}

// Convert classifies v and converts it to target.
func (r *Registry) Convert(v any, target *types.Type) (any, error) {
	c, err := r.GetConversion(r.u.TypeOf(v), target)
	if err != nil {
		return nil, err
	}
	return c.Convert(v)
}

// buildChain composes the chain for (source, target), or returns nil.
//
// Order of consideration: callable adaptation to abstract targets, script
// arrays to host arrays, registered rules, then identity for method
// invocation convertible pairs.
func (r *Registry) buildChain(source, target *types.Type) *Chain {
	if source == types.Null {
		if target.IsPrimitive() {
			return nil
		}
		return identityChain(r.u, source, target)
	}

	if r.useAdapter(source, target) {
		return r.guardedSpecial(source, target, callableSource, "adapt", r.adapter.Adapt(target))
	}
	if target.IsArray() && nativeArraySource.Applies(source) {
		return r.guardedSpecial(source, target, nativeArraySource, "array", r.nativeArrayToArray(target))
	}

	rules := r.applicableRules(source, target)
	if len(rules) == 0 {
		if types.IsMethodInvocationConvertible(source, target) {
			return identityChain(r.u, source, target)
		}
		r.logger.Debug("no conversion", "source", source.Name(), "target", target.Name())
		return nil
	}

	c := &Chain{source: source, target: target, fallback: identityFunc(r.u, target)}
	for _, rule := range rules {
		conv := asTarget(r.u, rule.conv, target)
		if rule.StaticGuard(source) {
			c.steps = c.steps[:0]
			c.fallback = conv
			continue
		}
		rule := rule
		c.steps = append(c.steps, step{
			name:    ruleName(rule),
			guard:   func(v any) bool { return rule.DynamicGuard(r.u, v) },
			convert: conv,
		})
	}
	// Most recently registered rules are tried first.
	for i, j := 0, len(c.steps)-1; i < j; i, j = i+1, j-1 {
		c.steps[i], c.steps[j] = c.steps[j], c.steps[i]
	}
	c.direct = len(c.steps) == 0 && rules[0].StaticGuard(source)

	r.logger.Debug("conversion chain built",
		"source", source.Name(),
		"target", target.Name(),
		"steps", len(c.steps),
		"direct", c.direct,
	)
	return c
}

// guardedSpecial builds a one-rule chain: direct when the static guard of
// the pseudo-rule holds, otherwise guarded with identity as fallback.
func (r *Registry) guardedSpecial(source, target *types.Type, pseudo *Rule, name string, fn Func) *Chain {
	if pseudo.StaticGuard(source) {
		return &Chain{source: source, target: target, fallback: fn, direct: true}
	}
	return &Chain{
		source: source,
		target: target,
		steps: []step{{
			name:    name,
			guard:   func(v any) bool { return pseudo.DynamicGuard(r.u, v) },
			convert: fn,
		}},
		fallback: identityFunc(r.u, target),
	}
}

// useAdapter reports whether callable adaptation applies to the pair.
func (r *Registry) useAdapter(source, target *types.Type) bool {
	if r.adapter == nil || !callableSource.Applies(source) || !target.IsAbstract() {
		return false
	}
	if v, ok := r.adapters.Load(target); ok {
		return v.(bool)
	}
	ok := r.adapter.CanAdapt(target)
	r.adapters.Store(target, ok)
	return ok
}

// nativeArrayToArray converts a script array element-wise into a host
// slice, converting each element to the target element type.
func (r *Registry) nativeArrayToArray(target *types.Type) Func {
	elem := target.Elem()
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		arr, ok := v.(interface {
			Len() int
			Index(int) any
		})
		if !ok {
			return nil, &ConversionError{Value: v, Target: target, Message: "not a script array"}
		}
		out := make([]any, arr.Len())
		for i := range out {
			e, err := r.Convert(arr.Index(i), elem)
			if err != nil {
				return nil, &ConversionError{Value: v, Target: target, Message: fmt.Sprintf("element %d: %v", i, err)}
			}
			out[i] = e
		}
		return out, nil
	}
}

func ruleName(rule *Rule) string {
	names := make([]string, len(rule.sources))
	for i, s := range rule.sources {
		names[i] = s.Name()
	}
	return fmt.Sprintf("%v->%s", names, rule.target.Name())
}

var (
	// nativeArraySource matches sources that may hold a script array.
	nativeArraySource = pseudoRule(types.NativeArray)

	// callableSource matches sources that may hold a script callable.
	callableSource = pseudoRule(types.Callable)
)

func pseudoRule(source *types.Type) *Rule {
	return MustRule(types.Object, Converter{
		In:  types.Object,
		Out: types.Object,
		Fn:  func(v any) (any, error) { return v, nil },
	}, source)
}
