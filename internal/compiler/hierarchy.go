package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// HierarchyCycle is a set of declared types whose extends/implements edges
// form a loop. Such types can never be defined.
type HierarchyCycle struct {
	Path    []string `json:"path"` // e.g. ["A", "B", "A"]
	Message string   `json:"message"`
}

// hierarchyGraph maps a declared type to the declared types it extends or
// implements. Edges to builtin types are left out.
type hierarchyGraph struct {
	order []string
	edges map[string][]string
}

func buildHierarchy(decls []TypeDecl) hierarchyGraph {
	g := hierarchyGraph{edges: make(map[string][]string, len(decls))}
	declared := make(map[string]bool, len(decls))
	for _, d := range decls {
		declared[d.Name] = true
	}
	for _, d := range decls {
		if _, seen := g.edges[d.Name]; seen {
			continue
		}
		g.order = append(g.order, d.Name)
		g.edges[d.Name] = []string{}
		for _, super := range d.supertypes() {
			if declared[super] {
				g.edges[d.Name] = append(g.edges[d.Name], super)
			}
		}
	}
	return g
}

func (d TypeDecl) supertypes() []string {
	var out []string
	if d.Extends != "" {
		out = append(out, d.Extends)
	}
	return append(out, d.Implements...)
}

// AnalyzeHierarchy reports every cycle among the declared supertypes.
//
// The algorithm:
//  1. Build declared type -> declared supertype graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// An acyclic hierarchy returns an empty list.
func AnalyzeHierarchy(decls []TypeDecl) []HierarchyCycle {
	g := buildHierarchy(decls)
	cycles := []HierarchyCycle{}
	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 || hasSelfLoop(scc[0], g) {
			cycles = append(cycles, sccToCycle(scc, g))
		}
	}
	return cycles
}

// definitionOrder sorts decls so that every declared supertype precedes its
// subtypes, keeping declaration order otherwise. The graph must be acyclic.
func definitionOrder(decls []TypeDecl) []TypeDecl {
	g := buildHierarchy(decls)
	byName := make(map[string]TypeDecl, len(decls))
	for _, d := range decls {
		if _, ok := byName[d.Name]; !ok {
			byName[d.Name] = d
		}
	}

	done := make(map[string]bool, len(decls))
	out := make([]TypeDecl, 0, len(decls))
	var visit func(string)
	visit = func(name string) {
		if done[name] {
			return
		}
		done[name] = true
		for _, super := range g.edges[name] {
			visit(super)
		}
		out = append(out, byName[name])
	}
	for _, name := range g.order {
		visit(name)
	}
	return out
}

func hasSelfLoop(node string, g hierarchyGraph) bool {
	for _, neighbor := range g.edges[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in declaration order so results are deterministic.
func tarjanSCC(g hierarchyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sccToCycle(scc []string, g hierarchyGraph) HierarchyCycle {
	if len(scc) == 1 {
		return HierarchyCycle{
			Path:    []string{scc[0], scc[0]},
			Message: fmt.Sprintf("type %s is its own supertype", scc[0]),
		}
	}
	path := reconstructCyclePath(scc, g)
	return HierarchyCycle{
		Path:    path,
		Message: "inheritance cycle: " + strings.Join(path, " -> "),
	}
}

// reconstructCyclePath starts at the first SCC member and follows edges
// within the SCC until it returns to the start.
func reconstructCyclePath(scc []string, g hierarchyGraph) []string {
	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true
		var next string
		for _, neighbor := range g.edges[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
