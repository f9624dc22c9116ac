package convert

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatawa12/sai/internal/types"
)

// hostValue is a host instance of a declared type.
type hostValue struct {
	t *types.Type
}

func (h hostValue) HostType() *types.Type { return h.t }

type chainFixture struct {
	u      *types.Universe
	alpha  *types.Type
	beta   *types.Type
	both   *types.Type
	onlyA  *types.Type
	target *types.Type
	r      *Registry
}

func define(t *testing.T, u *types.Universe, d types.Decl) *types.Type {
	t.Helper()
	typ, err := u.Define(d)
	require.NoError(t, err)
	return typ
}

func constant(target *types.Type, out string) Converter {
	return Converter{
		In:  types.Object,
		Out: target,
		Fn:  func(any) (any, error) { return out, nil },
	}
}

// newChainFixture registers Target <- Alpha in pass "one" and
// Target <- Beta in pass "two".
func newChainFixture(t *testing.T) *chainFixture {
	t.Helper()
	u := types.NewUniverse()
	f := &chainFixture{u: u}
	f.alpha = define(t, u, types.Decl{Name: "Alpha", Kind: types.KindInterface})
	f.beta = define(t, u, types.Decl{Name: "Beta", Kind: types.KindInterface})
	f.both = define(t, u, types.Decl{Name: "Both", Kind: types.KindClass, Interfaces: []*types.Type{f.alpha, f.beta}})
	f.onlyA = define(t, u, types.Decl{Name: "OnlyA", Kind: types.KindClass, Interfaces: []*types.Type{f.alpha}})
	f.target = define(t, u, types.Decl{Name: "Target", Kind: types.KindClass})

	f.r = NewRegistry(u)
	require.NoError(t, f.r.StartPass("one"))
	require.NoError(t, f.r.Add(MustRule(f.target, constant(f.target, "via-alpha"), f.alpha)))
	require.NoError(t, f.r.StartPass("two"))
	require.NoError(t, f.r.Add(MustRule(f.target, constant(f.target, "via-beta"), f.beta)))
	return f
}

func TestRegistryChainOrder(t *testing.T) {
	f := newChainFixture(t)

	c, err := f.r.GetConversion(types.Object, f.target)
	require.NoError(t, err)
	assert.False(t, c.IsDirect())
	assert.Equal(t, []string{"[Beta]->Target", "[Alpha]->Target"}, c.Steps(), "most recent rule is tried first")

	out, err := c.Convert(hostValue{f.both})
	require.NoError(t, err)
	assert.Equal(t, "via-beta", out)

	out, err = c.Convert(hostValue{f.onlyA})
	require.NoError(t, err)
	assert.Equal(t, "via-alpha", out)

	own := hostValue{f.target}
	out, err = c.Convert(own)
	require.NoError(t, err)
	assert.Equal(t, own, out, "fallback passes assignable values through")

	_, err = c.Convert("text")
	require.Error(t, err)
	assert.True(t, IsConversionFailed(err))
}

func TestRegistryStaticGuardCollapses(t *testing.T) {
	f := newChainFixture(t)

	tests := []struct {
		name   string
		source *types.Type
		want   string
	}{
		{"both interfaces", f.both, "via-beta"},
		{"alpha only", f.onlyA, "via-alpha"},
		{"alpha interface", f.alpha, "via-alpha"},
		{"beta interface", f.beta, "via-beta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.r.GetConversion(tt.source, f.target)
			require.NoError(t, err)
			assert.True(t, c.IsDirect())
			assert.Equal(t, 0, c.Len())

			out, err := c.Convert(hostValue{f.both})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRegistryNoConversion(t *testing.T) {
	f := newChainFixture(t)
	other := define(t, f.u, types.Decl{Name: "Other", Kind: types.KindClass})

	assert.False(t, f.r.CanConvert(other, f.target))
	_, err := f.r.GetConversion(other, f.target)
	require.Error(t, err)
	assert.True(t, IsNoConversion(err))

	assert.True(t, f.r.CanConvert(other, types.Object))
	c, err := f.r.GetConversion(other, types.Object)
	require.NoError(t, err)
	assert.True(t, c.IsIdentity())
}

func TestRegistryNull(t *testing.T) {
	f := newChainFixture(t)

	assert.True(t, f.r.CanConvert(types.Null, f.target))
	assert.True(t, f.r.CanConvert(types.Null, types.BoxedInt))
	assert.False(t, f.r.CanConvert(types.Null, types.Int))

	c, err := f.r.GetConversion(types.Null, f.target)
	require.NoError(t, err)
	out, err := c.Convert(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = f.r.GetConversion(types.Null, types.Int)
	assert.True(t, IsNoConversion(err))
}

func TestRegistryGetConversionIsCached(t *testing.T) {
	f := newChainFixture(t)

	c1, err := f.r.GetConversion(types.Object, f.target)
	require.NoError(t, err)
	c2, err := f.r.GetConversion(types.Object, f.target)
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestRegistryConcurrentGetConversion(t *testing.T) {
	f := newChainFixture(t)

	const n = 32
	chains := make([]*Chain, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := f.r.GetConversion(types.Object, f.target)
			if err == nil {
				chains[i] = c
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, chains[0])
	for _, c := range chains[1:] {
		assert.Same(t, chains[0], c)
	}
}

func TestRegistryPasses(t *testing.T) {
	u := types.NewUniverse()
	target := define(t, u, types.Decl{Name: "Target", Kind: types.KindClass})
	rule := func() *Rule { return MustRule(target, constant(target, "x"), types.Number) }

	r := NewRegistry(u)
	err := r.Add(rule())
	require.Error(t, err, "Add needs a pass")
	assert.True(t, IsMalformedRule(err))

	require.NoError(t, r.StartPass("first"))
	require.NoError(t, r.Add(rule()))
	err = r.Add(rule())
	require.Error(t, err)
	assert.True(t, IsMalformedRule(err))
	assert.Contains(t, err.Error(), `duplicate target type in pass "first"`)

	require.NoError(t, r.AddDirect(rule()), "AddDirect skips the duplicate check")

	require.NoError(t, r.StartPass("second"))
	require.NoError(t, r.Add(rule()), "a later pass may register the target again")

	assert.Equal(t, []string{"first", "second"}, r.Passes())
	assert.Equal(t, 3, r.RuleCount())
}

func TestRegistrySealedOnLookup(t *testing.T) {
	u := types.NewUniverse()
	target := define(t, u, types.Decl{Name: "Target", Kind: types.KindClass})

	r := NewRegistry(u)
	require.NoError(t, r.StartPass("only"))
	assert.False(t, r.Sealed())

	r.CanConvert(types.String, target)
	assert.True(t, r.Sealed())

	err := r.Add(MustRule(target, constant(target, "x"), types.Number))
	assert.True(t, IsMalformedRule(err))
	err = r.StartPass("late")
	assert.True(t, IsMalformedRule(err))
}

func TestRegistryPrimitiveSourcesUseTable(t *testing.T) {
	u := types.NewUniverse()
	r := NewRegistry(u)
	require.NoError(t, r.StartPass("p"))
	conv := Converter{In: types.Int, Out: types.String, Fn: func(v any) (any, error) { return "int", nil }}
	require.NoError(t, r.Add(MustRule(types.String, conv, types.Int, types.Byte)))

	assert.True(t, r.CanConvert(types.Int, types.String))
	assert.True(t, r.CanConvert(types.Byte, types.String))
	assert.False(t, r.CanConvert(types.Long, types.String))
	assert.False(t, r.CanConvert(types.Object, types.String), "primitive sources never guard reference values")

	c, err := r.GetConversion(types.Byte, types.String)
	require.NoError(t, err)
	assert.True(t, c.IsDirect())
	out, err := c.Convert(int8(1))
	require.NoError(t, err)
	assert.Equal(t, "int", out)
}
