package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeHierarchyAcyclic(t *testing.T) {
	cycles := AnalyzeHierarchy([]TypeDecl{
		{Name: "A", Extends: "Object"},
		{Name: "B", Extends: "A", Implements: []string{"I"}},
		{Name: "I"},
	})
	assert.Empty(t, cycles)
}

func TestAnalyzeHierarchyCycles(t *testing.T) {
	cycles := AnalyzeHierarchy([]TypeDecl{
		{Name: "X", Extends: "X"},
		{Name: "A", Implements: []string{"C"}},
		{Name: "B", Implements: []string{"A"}},
		{Name: "C", Implements: []string{"B"}},
		{Name: "Free", Implements: []string{"A"}},
	})
	require.Len(t, cycles, 2)

	assert.Equal(t, []string{"X", "X"}, cycles[0].Path)
	assert.Equal(t, "type X is its own supertype", cycles[0].Message)

	assert.Equal(t, []string{"A", "C", "B", "A"}, cycles[1].Path)
	assert.Equal(t, "inheritance cycle: A -> C -> B -> A", cycles[1].Message)
}

func TestDefinitionOrder(t *testing.T) {
	ordered := definitionOrder([]TypeDecl{
		{Name: "Leaf", Extends: "Mid"},
		{Name: "Other"},
		{Name: "Mid", Extends: "Root", Implements: []string{"Iface"}},
		{Name: "Root"},
		{Name: "Iface"},
	})

	names := make([]string, len(ordered))
	for i, d := range ordered {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Root", "Iface", "Mid", "Leaf", "Other"}, names)
}
