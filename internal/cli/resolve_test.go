package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatawa12/sai/internal/store"
)

// resolveResponse mirrors the JSON envelope of the resolve command.
type resolveResponse struct {
	Status  string        `json:"status"`
	Data    ResolveResult `json:"data"`
	Error   *CLIError     `json:"error"`
	Session string        `json:"session"`
}

func TestResolveUnique(t *testing.T) {
	out, err := execute(t, "resolve", shapesDir(t), "area", "Square")
	require.NoError(t, err)
	assert.Equal(t, "✓ area(Square) -> double area(Shape) [fixed]\n", out)
}

func TestResolveVariableArity(t *testing.T) {
	out, err := execute(t, "--format", "json", "resolve", shapesDir(t), "area", "int", "int", "Integer")
	require.NoError(t, err)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "unique", resp.Data.Outcome)
	assert.Equal(t, "variable", resp.Data.Mode)
	assert.Equal(t, "static double area(int, int...)", resp.Data.Selected)
	assert.Equal(t, []string{"int", "int", "Integer"}, resp.Data.Args)
	assert.Empty(t, resp.Session, "no session without a journal")
}

func TestResolveAmbiguous(t *testing.T) {
	out, err := execute(t, "resolve", shapesDir(t), "pick", "Square", "Square")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "ambiguous")

	assert.Contains(t, out, "✗ pick(Square, Square) is ambiguous [fixed]")
	assert.Contains(t, out, "  void pick(Comparable, Object)\n")
	assert.Contains(t, out, "  void pick(Object, Comparable)\n")
}

func TestResolveNoMatchListsCallable(t *testing.T) {
	out, err := execute(t, "resolve", shapesDir(t), "draw", "int")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ draw(int): no applicable signature")
	assert.Contains(t, out, "Callable with 1 argument(s):")
	assert.Contains(t, out, "    void draw(Drawable)")
}

func TestResolveNoArguments(t *testing.T) {
	out, err := execute(t, "--format", "json", "resolve", shapesDir(t), "show")
	require.Error(t, err)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "no_match", resp.Data.Outcome)
	assert.Equal(t, []string{}, resp.Data.Args)
	assert.Equal(t, []string{}, resp.Data.Candidates)
	assert.Empty(t, resp.Data.Callable)
}

func TestResolveUnknownType(t *testing.T) {
	out, err := execute(t, "resolve", shapesDir(t), "area", "Triangle")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnknownType)
	assert.Contains(t, out, `unknown type "Triangle"`)
}

func TestResolveUnknownGroup(t *testing.T) {
	_, err := execute(t, "resolve", shapesDir(t), "perimeter", "Square")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnknownGroup)
	assert.Contains(t, err.Error(), "perimeter")
}

func TestResolveArrayAndNullArguments(t *testing.T) {
	out, err := execute(t, "resolve", shapesDir(t), "show", "String[]")
	require.NoError(t, err)
	assert.Contains(t, out, "-> void show(Object)")

	// null gives no signal between two reference parameters.
	out, err = execute(t, "resolve", shapesDir(t), "show", "null")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "show[null]: ambiguous")
	assert.Contains(t, out, "✗ show(null) is ambiguous [fixed]")
	assert.Contains(t, out, "  void show(Object)\n")
	assert.Contains(t, out, "  void show(String)\n")
}

func TestResolveJournalsToDatabase(t *testing.T) {
	dir := shapesDir(t)
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	out, err := execute(t, "--format", "json", "resolve", dir, "area", "Square", "--db", dbPath)
	require.NoError(t, err)
	var first resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.NotEmpty(t, first.Session)

	_, err = execute(t, "resolve", dir, "draw", "int", "--db", dbPath)
	require.Error(t, err, "no_match still journals")

	// The same shape again is journalled only once.
	_, err = execute(t, "resolve", dir, "area", "Square", "--db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	recs, err := st.ListResolutions(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "area", recs[0].Group)
	assert.Equal(t, first.Session, recs[0].Session)
	assert.Equal(t, int64(1), recs[0].Seq)
	assert.Equal(t, "draw", recs[1].Group)
	assert.Equal(t, "no_match", recs[1].Outcome)
	assert.Equal(t, int64(2), recs[1].Seq, "a new session continues after the last seq")
	assert.NotEqual(t, first.Session, recs[1].Session)
}

func TestResolveBadDatabase(t *testing.T) {
	_, err := execute(t, "resolve", shapesDir(t), "area", "Square", "--db", filepath.Join(t.TempDir(), "missing", "journal.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeDatabase)
}

func TestResolveMissingArgs(t *testing.T) {
	_, err := execute(t, "resolve", shapesDir(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")
}
