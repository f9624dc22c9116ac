package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareFirstPreferred(t *testing.T) {
	out, err := execute(t, "compare", shapesDir(t), "Integer", "int", "long")
	require.NoError(t, err)
	assert.Equal(t, "Integer: int is preferred (first)\n", out)
}

func TestCompareSecondPreferred(t *testing.T) {
	out, err := execute(t, "compare", shapesDir(t), "Integer", "long", "int")
	require.NoError(t, err)
	assert.Equal(t, "Integer: int is preferred (second)\n", out)
}

func TestCompareJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "compare", shapesDir(t), "Integer", "int", "long")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompareResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, CompareResult{
		Source:     "Integer",
		First:      "int",
		Second:     "long",
		Comparison: "first",
		Preferred:  "int",
	}, resp.Data)
}

func TestCompareUnknownType(t *testing.T) {
	_, err := execute(t, "compare", shapesDir(t), "Integer", "int", "Decimal")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnknownType)
}

func TestCompareArgCount(t *testing.T) {
	_, err := execute(t, "compare", shapesDir(t), "Integer", "int")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 4 arg")
}
