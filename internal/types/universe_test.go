package types

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ t *Type }

func (p point) HostType() *Type { return p.t }

type wrapped struct{ v any }

func (w wrapped) Unwrap() any { return w.v }

func TestUniverseDefine(t *testing.T) {
	u := NewUniverse()

	shape, err := u.Define(Decl{Name: "Shape", Kind: KindInterface})
	require.NoError(t, err)
	base, err := u.Define(Decl{Name: "Base", Kind: KindClass, Abstract: true})
	require.NoError(t, err)
	p, err := u.Define(Decl{Name: "Point", Kind: KindClass, Super: base, Interfaces: []*Type{shape, Comparable}})
	require.NoError(t, err)

	assert.Equal(t, Object, base.Super())
	assert.True(t, base.IsAbstract())
	assert.True(t, shape.IsAbstract())
	assert.False(t, p.IsAbstract())
	assert.GreaterOrEqual(t, p.ID(), uint32(firstDeclaredID))
	assert.True(t, IsAssignable(shape, p))
	assert.True(t, IsAssignable(base, p))
	assert.True(t, IsAssignable(Comparable, p))
	assert.False(t, IsAssignable(p, base))

	got, ok := u.Lookup("Point")
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Equal(t, []*Type{shape, base, p}, u.Declared())
}

func TestUniverseDefineErrors(t *testing.T) {
	u := NewUniverse()
	iface, err := u.Define(Decl{Name: "I", Kind: KindInterface})
	require.NoError(t, err)

	tests := []struct {
		name string
		decl Decl
	}{
		{"empty name", Decl{Kind: KindClass}},
		{"array name", Decl{Name: "X[]", Kind: KindClass}},
		{"reserved null", Decl{Name: "null", Kind: KindClass}},
		{"class extends interface", Decl{Name: "C", Kind: KindClass, Super: iface}},
		{"class extends primitive", Decl{Name: "C", Kind: KindClass, Super: Int}},
		{"interface extends class", Decl{Name: "J", Kind: KindInterface, Super: Object}},
		{"implements class", Decl{Name: "C", Kind: KindClass, Interfaces: []*Type{String}}},
		{"bad kind", Decl{Name: "C", Kind: KindArray}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Define(tt.decl)
			assert.ErrorIs(t, err, ErrInvalidDecl)
		})
	}

	_, err = u.Define(Decl{Name: "String", Kind: KindClass})
	assert.ErrorIs(t, err, ErrDuplicateType)
	_, err = u.Define(Decl{Name: "I", Kind: KindInterface})
	assert.ErrorIs(t, err, ErrDuplicateType)
}

func TestUniverseLookup(t *testing.T) {
	u := NewUniverse()

	for _, b := range Builtins() {
		got, ok := u.Lookup(b.Name())
		require.True(t, ok, b.Name())
		assert.Same(t, b, got)
	}

	arr, ok := u.Lookup("int[][]")
	require.True(t, ok)
	assert.Equal(t, "int[][]", arr.Name())
	assert.Equal(t, 2, arr.Dims())
	assert.Same(t, Int, arr.Elem().Elem())
	assert.Same(t, arr, u.ArrayOf(u.ArrayOf(Int)))

	_, ok = u.Lookup("Missing")
	assert.False(t, ok)
	_, ok = u.Lookup("void[]")
	assert.False(t, ok)
	assert.Panics(t, func() { u.MustLookup("Missing") })
	assert.Panics(t, func() { u.ArrayOf(Null) })
}

func TestUniverseArrayOfConcurrent(t *testing.T) {
	u := NewUniverse()
	results := make([]*Type, 32)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = u.ArrayOf(String)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestUniverseTypeOf(t *testing.T) {
	u := NewUniverse()
	p, err := u.Define(Decl{Name: "Point", Kind: KindClass})
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
		want  *Type
	}{
		{"nil", nil, Null},
		{"bool", true, BoxedBoolean},
		{"int8", int8(1), BoxedByte},
		{"uint16", uint16('a'), BoxedChar},
		{"int16", int16(1), BoxedShort},
		{"int32", int32(1), BoxedInt},
		{"int64", int64(1), BoxedLong},
		{"int", 1, BoxedLong},
		{"float32", float32(1), BoxedFloat},
		{"float64", 1.5, BoxedDouble},
		{"string", "s", String},
		{"slice", []any{1}, u.ArrayOf(Object)},
		{"map", map[string]any{}, Map},
		{"typed", point{p}, p},
		{"wrapped", wrapped{"s"}, String},
		{"wrapped nil", wrapped{nil}, Null},
		{"unbound", struct{}{}, Object},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, u.TypeOf(tt.value))
		})
	}

	assert.Equal(t, ArgTypes{String, Null, p}, u.ArgTypesOf("x", nil, point{p}))
	assert.True(t, u.IsInstance(Object, point{p}))
	assert.True(t, u.IsInstance(CharSequence, "x"))
	assert.False(t, u.IsInstance(Object, nil))
}

func TestArgTypesKey(t *testing.T) {
	u := NewUniverse()
	a := Of(String, Int, Null)
	b := Of(String, Int, Null)
	c := Of(String, Null, Int)

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, Of(String).Key(), Of(String, String).Key())
	assert.Equal(t, "", Of().Key())
	assert.NotEqual(t, Of(u.ArrayOf(Int)).Key(), Of(Int).Key())

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "[String, int, null]", a.String())
}
