package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "a<b>&c", `"a<b>&c"`},
		{"int", 42, `42`},
		{"int64", int64(-7), `-7`},
		{"bool", true, `true`},
		{"strings", []string{"x", "y"}, `["x","y"]`},
		{"sorted keys", map[string]any{"b": 1, "a": "x", "aa": false}, `{"a":"x","aa":false,"b":1}`},
		{"nested", map[string]any{"k": []any{1, "v", map[string]any{}}}, `{"k":[1,"v",{}]}`},
		{"line separator kept literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped backslash kept", `a\u2028`, `"a\\u2028"`},
		{"nfc", "e\u0301", "\"\u00e9\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalRejects(t *testing.T) {
	for _, v := range []any{nil, 1.5, float32(2), struct{}{}, []any{nil}} {
		_, err := MarshalCanonical(v)
		assert.Error(t, err, "%v", v)
	}
}

func TestShapeID(t *testing.T) {
	a, err := ShapeID("f", Of(String, Int))
	require.NoError(t, err)
	b, err := ShapeID("f", Of(String, Int))
	require.NoError(t, err)
	c, err := ShapeID("f", Of(Int, String))
	require.NoError(t, err)
	d, err := ShapeID("g", Of(String, Int))
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}

func TestConversionID(t *testing.T) {
	a, err := ConversionID(String, Int)
	require.NoError(t, err)
	b, err := ConversionID(Int, String)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
