package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatawa12/sai/internal/store"
)

// journalShapes resolves each shape against shapesSpec into a fresh journal.
func journalShapes(t *testing.T, shapes ...[]string) string {
	t.Helper()
	dir := shapesDir(t)
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	for _, shape := range shapes {
		args := append([]string{"resolve", dir}, shape...)
		args = append(args, "--db", dbPath)
		_, _ = execute(t, args...)
	}
	return dbPath
}

// replayResponse mirrors the JSON envelope of the replay command.
type replayResponse struct {
	Status string             `json:"status"`
	Data   store.ReplayReport `json:"data"`
	Error  *CLIError          `json:"error"`
}

func TestReplayMissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewReplayCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{shapesDir(t)}) // Missing --db flag

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Create empty database
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	out, err := execute(t, "replay", shapesDir(t), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 0 shape(s), 0 unchanged")
	assert.Contains(t, out, "✓ All shapes resolve as journalled")
}

func TestReplayIdentical(t *testing.T) {
	dbPath := journalShapes(t,
		[]string{"area", "Square"},
		[]string{"area", "int", "int", "Integer"},
		[]string{"pick", "Square", "Square"},
		[]string{"draw", "int"},
	)

	out, err := execute(t, "replay", shapesDir(t), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 4 shape(s), 4 unchanged")
	assert.Contains(t, out, "✓ All shapes resolve as journalled")

	// Replay reads the journal without extending it.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.CountResolutions(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestReplayChangedOutcome(t *testing.T) {
	dbPath := journalShapes(t,
		[]string{"show", "Square"},
		[]string{"area", "Square"},
	)

	// A more specific overload now wins for show(Square).
	changed := strings.Replace(shapesSpec, "groups: show: [", "groups: show: [\n\t{ params: [\"Shape\"] },", 1)
	dir := writeSpecs(t, map[string]string{"shapes.cue": changed})

	out, err := execute(t, "replay", dir, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 shape(s) changed, 0 failed")

	assert.Contains(t, out, "Replay Summary: 2 shape(s), 1 unchanged")
	assert.Contains(t, out, "✗ show(Square)")
	assert.Contains(t, out, "Journalled: unique [fixed] void show(Object)")
	assert.Contains(t, out, "Now:        unique [fixed] void show(Shape)")
	assert.Contains(t, out, "✗ Replay changed")
}

func TestReplayRemovedGroupFails(t *testing.T) {
	dbPath := journalShapes(t, []string{"draw", "int"})

	removed := strings.Replace(shapesSpec, "groups: draw: [\n\t{ params: [\"Drawable\"] },\n]\n", "", 1)
	require.NotEqual(t, shapesSpec, removed)
	dir := writeSpecs(t, map[string]string{"shapes.cue": removed})

	out, err := execute(t, "replay", dir, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ draw(int)")
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "draw")
}

func TestReplayChangedJSON(t *testing.T) {
	dbPath := journalShapes(t, []string{"show", "Square"})

	changed := strings.Replace(shapesSpec, "groups: show: [", "groups: show: [\n\t{ params: [\"Shape\"] },", 1)
	dir := writeSpecs(t, map[string]string{"shapes.cue": changed})

	out, err := execute(t, "--format", "json", "replay", dir, "--db", dbPath)
	require.Error(t, err)

	var resp replayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeReplayChanged, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Changed, 1)
	assert.Equal(t, "void show(Object)", resp.Data.Changed[0].Recorded.Selected)
	assert.Equal(t, "void show(Shape)", resp.Data.Changed[0].Replayed.Selected)
	assert.Equal(t, resp.Data.Changed[0].Recorded.Seq, resp.Data.Changed[0].Replayed.Seq)
	assert.Empty(t, resp.Data.Failed)
}

func TestReplayInvalidSpecs(t *testing.T) {
	dbPath := journalShapes(t, []string{"area", "Square"})

	_, err := execute(t, "replay", t.TempDir(), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestDescribeRecord(t *testing.T) {
	assert.Equal(t, "unique [fixed] double area(Shape)", describeRecord(store.ResolutionRecord{
		Outcome: "unique", Mode: "fixed", Selected: "double area(Shape)",
	}))
	assert.Equal(t, "ambiguous [fixed] void pick(Comparable, Object) | void pick(Object, Comparable)", describeRecord(store.ResolutionRecord{
		Outcome:    "ambiguous",
		Mode:       "fixed",
		Candidates: []string{"void pick(Comparable, Object)", "void pick(Object, Comparable)"},
	}))
	assert.Equal(t, "no_match", describeRecord(store.ResolutionRecord{Outcome: "no_match", Mode: "fixed"}))
}
