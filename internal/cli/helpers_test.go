package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// shapesSpec declares a small hierarchy with one group per resolution
// outcome.
const shapesSpec = `package specs

types: Shape: { kind: "abstract" }
types: Square: { extends: "Shape", implements: ["Comparable"] }
types: Circle: { extends: "Shape" }
types: Drawable: { kind: "interface" }
types: Listener: { kind: "interface", extends: "Drawable", sam: true }

groups: area: [
	{ params: ["Shape"], returns: "double" },
	{ params: ["int", "int..."], returns: "double", static: true },
]
groups: draw: [
	{ params: ["Drawable"] },
]
groups: show: [
	{ params: ["Object"] },
	{ params: ["String"] },
]
groups: pick: [
	{ params: ["Comparable", "Object"] },
	{ params: ["Object", "Comparable"] },
]
`

// writeSpecs writes files (name -> CUE source) into a fresh directory.
func writeSpecs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
	}
	return dir
}

// shapesDir returns a directory holding shapesSpec.
func shapesDir(t *testing.T) string {
	t.Helper()
	return writeSpecs(t, map[string]string{"shapes.cue": shapesSpec})
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
