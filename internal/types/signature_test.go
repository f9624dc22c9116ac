package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignature(t *testing.T) {
	u := NewUniverse()
	intArr := u.ArrayOf(Int)

	sig, err := NewSignature(SignatureSpec{
		Name:     "sum",
		Params:   []*Type{String, intArr},
		Variadic: true,
		Static:   true,
		Return:   Long,
		Handle:   "sum#1",
	})
	require.NoError(t, err)

	assert.Equal(t, "sum", sig.Name())
	assert.Equal(t, 2, sig.ParamCount())
	assert.True(t, sig.IsVariadic())
	assert.True(t, sig.IsStatic())
	assert.Same(t, Long, sig.Return())
	assert.Equal(t, "sum#1", sig.Handle())
	assert.Same(t, Int, sig.VarargElem())
	assert.Equal(t, "(String, int...)", sig.String())
	assert.Equal(t, "static long sum(String, int...)", sig.Display())

	assert.Same(t, String, sig.ParamAt(0, true))
	assert.Same(t, Int, sig.ParamAt(1, true))
	assert.Same(t, Int, sig.ParamAt(5, true))
	assert.Same(t, intArr, sig.ParamAt(1, false))

	params := sig.Params()
	params[0] = Object
	assert.Same(t, String, sig.Param(0))
}

func TestNewSignatureDefaults(t *testing.T) {
	sig := MustSignature(SignatureSpec{Name: "run"})
	assert.Same(t, Void, sig.Return())
	assert.Equal(t, "()", sig.String())
	assert.Equal(t, "void run()", sig.Display())
	assert.Nil(t, sig.VarargElem())
}

func TestNewSignatureErrors(t *testing.T) {
	tests := []struct {
		name string
		spec SignatureSpec
	}{
		{"nil param", SignatureSpec{Name: "f", Params: []*Type{nil}}},
		{"null param", SignatureSpec{Name: "f", Params: []*Type{Null}}},
		{"void param", SignatureSpec{Name: "f", Params: []*Type{Void}}},
		{"variadic without params", SignatureSpec{Name: "f", Variadic: true}},
		{"variadic non-array", SignatureSpec{Name: "f", Params: []*Type{Int}, Variadic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSignature(tt.spec)
			assert.Error(t, err)
		})
	}
	assert.Panics(t, func() { MustSignature(SignatureSpec{Name: "f", Params: []*Type{Void}}) })
}
