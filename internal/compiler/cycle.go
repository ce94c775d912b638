package compiler

import (
	"fmt"
	"slices"
	"strings"
)

// CycleWarning describes one cycle found in the dependency graph.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["event-a", "event-b", "event-a"]
	Message string   `json:"message"` // Human-readable description
}

// FanIn describes a node referenced more than once.
type FanIn struct {
	ID      string   `json:"id"`
	Parents []string `json:"parents"` // one entry per reference, sorted
}

// Diagnostics explains why a graph failed root resolution or structural
// validation. It never changes the error kind reported by those stages.
type Diagnostics struct {
	Roots  []string       `json:"roots"`
	Cycles []CycleWarning `json:"cycles,omitempty"`
	FanIn  []FanIn        `json:"fan_in,omitempty"`
}

// Empty reports whether no cycle or fan-in was found.
func (d Diagnostics) Empty() bool {
	return len(d.Cycles) == 0 && len(d.FanIn) == 0
}

// Diagnose inspects the whole graph for cycles and fan-in.
//
// Cycles are found with Tarjan's strongly connected components algorithm:
// every SCC with more than one node, and every self-loop, is one cycle.
// Results are sorted so output is stable across runs.
func Diagnose(g *Graph) Diagnostics {
	d := Diagnostics{Roots: []string{}}

	for id, deg := range g.InDegree() {
		if deg == 0 {
			d.Roots = append(d.Roots, id)
		}
	}
	slices.Sort(d.Roots)

	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 || hasSelfLoop(g, scc[0]) {
			d.Cycles = append(d.Cycles, sccToWarning(g, scc))
		}
	}
	slices.SortFunc(d.Cycles, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})

	parents := g.Parents()
	for _, id := range g.IDs() {
		if ps := parents[id]; len(ps) > 1 {
			d.FanIn = append(d.FanIn, FanIn{ID: id, Parents: ps})
		}
	}

	return d
}

// hasSelfLoop checks if a node lists itself as a child.
func hasSelfLoop(g *Graph, id string) bool {
	return slices.Contains(g.nodes[id].Children, id)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Each SCC is returned sorted; nodes are visited in lexical order.
func tarjanSCC(g *Graph) [][]string {
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

		for _, w := range g.nodes[v].Children {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of an SCC: pop it off the stack.
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
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, id := range g.IDs() {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}

	return sccs
}

// sccToWarning converts an SCC to a CycleWarning starting at its smallest id.
func sccToWarning(g *Graph, scc []string) CycleWarning {
	if len(scc) == 1 {
		id := scc[0]
		return CycleWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("Self-referencing event detected: %s → %s", id, id),
		}
	}

	path := cyclePath(g, scc)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Cycle detected: %s", strings.Join(path, " → ")),
	}
}

// cyclePath returns a path from scc[0] back to itself through SCC members,
// following children in declared order. Every member of an SCC reaches every
// other, so the search always succeeds.
func cyclePath(g *Graph, scc []string) []string {
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	start := scc[0]
	visited := make(map[string]bool)
	var path []string

	var walk func(string) bool
	walk = func(id string) bool {
		path = append(path, id)
		visited[id] = true
		for _, child := range g.nodes[id].Children {
			if child == start {
				path = append(path, start)
				return true
			}
			if members[child] && !visited[child] {
				if walk(child) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		return false
	}

	walk(start)
	return path
}
