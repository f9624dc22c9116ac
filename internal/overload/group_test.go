package overload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatawa12/sai/internal/types"
)

func TestGroupScenarioMoreSpecificWins(t *testing.T) {
	e := newTestEnv(t)
	fString := sig("f", types.String)
	fObject := sig("f", types.Object)
	g := e.group(t, "f", fObject, fString)

	o := g.Resolve(types.Of(types.String))
	assert.Equal(t, Unique, o.Kind())
	assert.Same(t, fString, o.Signature())
	assert.Equal(t, FixedArity, o.Mode())

	o = g.Resolve(types.Of(types.BoxedInt))
	assert.Same(t, fObject, o.Signature())
}

func TestGroupScenarioFixedArityBeforeVararg(t *testing.T) {
	e := newTestEnv(t)
	fIntInt := sig("f", types.Int, types.Int)
	fInts := e.vsig("f", types.Int)
	g := e.group(t, "f", fInts, fIntInt)

	s, mode, err := g.Select(types.Of(types.Int, types.Int))
	require.NoError(t, err)
	assert.Same(t, fIntInt, s)
	assert.Equal(t, FixedArity, mode)

	s, mode, err = g.Select(types.Of(types.Int, types.Int, types.Int))
	require.NoError(t, err)
	assert.Same(t, fInts, s)
	assert.Equal(t, VarArity, mode)
}

func TestGroupScenarioVarargFallback(t *testing.T) {
	e := newTestEnv(t)
	fCallable := sig("f", types.String, types.Callable)
	fStrings := e.vsig("f", types.String)
	g := e.group(t, "f", fCallable, fStrings)

	o := g.Resolve(types.Of(types.String, types.String, types.String))
	require.Equal(t, Unique, o.Kind())
	assert.Same(t, fStrings, o.Signature())
	assert.Equal(t, VarArity, o.Mode())

	o = g.Resolve(types.Of(types.String, types.String))
	assert.Same(t, fStrings, o.Signature(), "a String is not a Callable")

	o = g.Resolve(types.Of(types.String, types.ScriptFunction))
	assert.Same(t, fCallable, o.Signature())
}

func TestGroupVarargOnlyWhenFixedEmpty(t *testing.T) {
	e := newTestEnv(t)
	fObject := sig("f", types.Object)
	fStrings := e.vsig("f", types.String)
	g := e.group(t, "f", fObject, fStrings)

	o := g.Resolve(types.Of(types.String))
	assert.Same(t, fObject, o.Signature(), "the vararg signature is more specific but never consulted")
	assert.Equal(t, FixedArity, o.Mode())
}

func TestGroupScenarioNullToPrimitives(t *testing.T) {
	e := newTestEnv(t)
	g := e.group(t, "f", sig("f", types.Byte), sig("f", types.Short))

	o := g.Resolve(types.Of(types.Null))
	assert.Equal(t, NoMatch, o.Kind())
	assert.Nil(t, o.Signature())
	assert.Empty(t, o.Candidates())

	_, _, err := g.Select(types.Of(types.Null))
	require.Error(t, err)
	assert.True(t, IsNoMatch(err))
	assert.Equal(t, "None of the fixed arity signatures [(byte), (short)] of the method f match the argument types [null]", err.Error())
}

func TestGroupAmbiguous(t *testing.T) {
	e := newTestEnv(t)
	alpha := e.define(t, types.Decl{Name: "Alpha", Kind: types.KindInterface})
	beta := e.define(t, types.Decl{Name: "Beta", Kind: types.KindInterface})
	both := e.define(t, types.Decl{Name: "Both", Kind: types.KindClass, Interfaces: []*types.Type{alpha, beta}})
	gAlpha := sig("g", alpha)
	gBeta := sig("g", beta)
	g := e.group(t, "g", gAlpha, gBeta)

	o := g.Resolve(types.Of(both))
	assert.Equal(t, Ambiguous, o.Kind())
	assert.Equal(t, []*types.Signature{gAlpha, gBeta}, o.Candidates())
	assert.Equal(t, "ambiguous [(Alpha), (Beta)]", o.String())

	_, _, err := g.Select(types.Of(both))
	require.Error(t, err)
	assert.True(t, IsAmbiguous(err))
	assert.Equal(t, "Can't unambiguously select between fixed arity signatures [(Alpha), (Beta)] of the method g for argument types [Both]", err.Error())

	var ae *AmbiguousError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrCodeAmbiguousOverload, ae.Code())
}

func TestGroupNoMatchListsArityCandidates(t *testing.T) {
	e := newTestEnv(t)
	g := e.group(t, "h",
		sig("h", types.Int),
		sig("h", types.Int, types.Int),
		e.vsig("h", types.String, types.Int),
		e.vsig("h", types.String, types.String, types.Int),
	)

	_, _, err := g.Select(types.Of(types.Map, types.Map))
	require.Error(t, err)
	var ne *NoMatchError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, ErrCodeNoApplicableOverload, ne.Code())
	assert.Equal(t,
		"None of the fixed arity signatures [(int, int), (String, int...)] or the variable arity signatures "+
			"[(String, int...), (String, String, int...)] of the method h match the argument types [Map, Map]",
		err.Error())
}

func TestGroupCachesEveryOutcome(t *testing.T) {
	e := newTestEnv(t)
	g := e.group(t, "f", sig("f", types.Byte), sig("f", types.String))

	for _, args := range []types.ArgTypes{
		types.Of(types.String),
		types.Of(types.Null),
		types.Of(types.Map),
	} {
		first := g.Resolve(args)
		second := g.Resolve(types.Of(args...))
		assert.Same(t, first, second, "%s", args)
	}
	assert.Equal(t, Stats{Hits: 3, Misses: 3}, g.Stats())
}

func TestGroupResolveIsDeterministic(t *testing.T) {
	e := newTestEnv(t)
	build := func() *Group {
		return e.group(t, "f",
			sig("f", types.Object, types.String),
			sig("f", types.String, types.Object),
			sig("f", types.CharSequence, types.CharSequence),
		)
	}
	args := types.Of(types.String, types.String)
	want := build().Resolve(args)
	for i := 0; i < 5; i++ {
		got := build().Resolve(args)
		assert.Equal(t, want.Kind(), got.Kind())
		assert.Equal(t, want.Candidates(), got.Candidates())
	}
}

func TestGroupConcurrentResolve(t *testing.T) {
	e := newTestEnv(t)
	g := e.group(t, "f", sig("f", types.String), sig("f", types.Object), e.vsig("f", types.Int))

	const n = 32
	outcomes := make([]*Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = g.Resolve(types.Of(types.String))
		}(i)
	}
	wg.Wait()

	for _, o := range outcomes[1:] {
		assert.Same(t, outcomes[0], o)
	}
	stats := g.Stats()
	assert.Equal(t, int64(n), stats.Hits+stats.Misses)
}

func TestGroupCallableByArity(t *testing.T) {
	e := newTestEnv(t)
	f0 := sig("f")
	f1 := sig("f", types.Int)
	fv := e.vsig("f", types.String, types.Int)
	g := e.group(t, "f", f0, f1, fv)

	assert.Equal(t, []*types.Signature{f0}, g.CallableByArity(0))
	assert.Equal(t, []*types.Signature{f1, fv}, g.CallableByArity(1))
	assert.Equal(t, []*types.Signature{fv}, g.CallableByArity(4))
	assert.Equal(t, []*types.Signature{fv}, g.Variadic())
	assert.Len(t, g.Signatures(), 3)
}

func TestNewGroupErrors(t *testing.T) {
	e := newTestEnv(t)

	_, err := NewGroup("f", nil, e.reg, e.cmp)
	assert.ErrorIs(t, err, ErrEmptyGroup)

	_, err = NewGroup("f", []*types.Signature{sig("g", types.Int)}, e.reg, e.cmp)
	assert.Error(t, err)

	_, err = NewGroup("f", []*types.Signature{nil}, e.reg, e.cmp)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Unique, Ambiguous, NoMatch} {
		got, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("maybe")
	assert.False(t, ok)
}
