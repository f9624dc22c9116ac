package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatawa12/sai/internal/store"
	"github.com/anatawa12/sai/internal/types"
)

// convertResponse mirrors the JSON envelope of the convert command.
type convertResponse struct {
	Status  string        `json:"status"`
	Data    ConvertResult `json:"data"`
	Session string        `json:"session"`
}

func TestConvertStringToInt(t *testing.T) {
	out, err := execute(t, "convert", shapesDir(t), "String", "int", "--value", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ String -> int")
	assert.Contains(t, out, `  "42" => 42 (int32)`)
}

func TestConvertJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "convert", shapesDir(t), "String", "int", "--value", "7")
	require.NoError(t, err)

	var resp convertResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Convertible)
	assert.Equal(t, `"7"`, resp.Data.Value)
	assert.Equal(t, "7 (int32)", resp.Data.Result)
	assert.Empty(t, resp.Data.Error)
	assert.NotNil(t, resp.Data.Steps)
}

func TestConvertNotConvertible(t *testing.T) {
	out, err := execute(t, "convert", shapesDir(t), "Map", "int")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Map -> int: not convertible")
}

func TestConvertValueFails(t *testing.T) {
	dir := shapesDir(t)

	out, err := execute(t, "convert", dir, "String", "char", "--value", "ab")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `"ab" => error:`)

	out, err = execute(t, "convert", dir, "String", "char", "--value", "a")
	require.NoError(t, err)
	assert.Contains(t, out, `"a" => "a"`)
}

func TestConvertSingleMethodTypes(t *testing.T) {
	dir := shapesDir(t)

	out, err := execute(t, "--format", "json", "convert", dir, "NativeFunction", "Listener")
	require.NoError(t, err)
	var resp convertResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Convertible)

	_, err = execute(t, "convert", dir, "NativeFunction", "Drawable")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestConvertUnknownType(t *testing.T) {
	_, err := execute(t, "convert", shapesDir(t), "String", "Paint")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `E008: unknown type "Paint"`)
}

func TestConvertJournalsToDatabase(t *testing.T) {
	dir := shapesDir(t)
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	_, err := execute(t, "convert", dir, "String", "int", "--db", dbPath)
	require.NoError(t, err)
	_, err = execute(t, "convert", dir, "Map", "int", "--db", dbPath)
	require.Error(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	recs, err := st.ListConversions(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Convertible)
	assert.Equal(t, "Map", recs[1].Source)
	assert.False(t, recs[1].Convertible)
}

func TestParseScriptValue(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		source *types.Type
		want   any
	}{
		{"string source keeps text", "42", types.String, "42"},
		{"integer", "42", types.Object, 42},
		{"float", "2.5", types.Object, 2.5},
		{"bool", "true", types.Object, true},
		{"null", "null", types.Object, nil},
		{"list", "[1, two]", types.Object, []any{1, "two"}},
		{"map", "{a: 1}", types.Object, map[string]any{"a": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScriptValue(tt.raw, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseScriptValue("[1, 2", types.Object)
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", formatValue(nil))
	assert.Equal(t, `"x"`, formatValue("x"))
	assert.Equal(t, `"A"`, formatValue(uint16('A')))
	assert.Equal(t, "42 (int32)", formatValue(int32(42)))
	assert.Equal(t, "2.5 (float64)", formatValue(2.5))
}
