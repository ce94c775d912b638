package compiler

import "slices"

// Node is one vertex of the dependency graph.
//
// Children holds child ids in declared order, duplicates included. A child
// shared by several parents is a single arena entry referenced by id from
// each of them.
type Node struct {
	ID       string
	Children []string

	// Declared is true when the id appears as a top-level key of the
	// declaration, false for ids that only appear as children.
	Declared bool
}

// Graph is an arena of nodes keyed by event id.
// A Graph is not safe for concurrent mutation; it is only mutated while
// Build runs.
type Graph struct {
	nodes map[string]*Node
}

func newGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// ensure returns the node for id, creating an empty one if needed.
func (g *Graph) ensure(id string) *Node {
	n, ok := g.nodes[id]
	if !ok {
		n = &Node{ID: id, Children: []string{}}
		g.nodes[id] = n
	}
	return n
}

// addEdge appends child to parent's children, creating either node if needed.
func (g *Graph) addEdge(parent, child string) {
	p := g.ensure(parent)
	g.ensure(child)
	p.Children = append(p.Children, child)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// Node returns the node for id.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// Children returns a copy of the children of id, or nil if id is unknown.
func (g *Graph) Children(id string) []string {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	return slices.Clone(n.Children)
}

// IDs returns every node id in lexical order.
func (g *Graph) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// DeclaredIDs returns the ids that were top-level declaration keys, sorted.
func (g *Graph) DeclaredIDs() []string {
	var ids []string
	for _, id := range g.IDs() {
		if g.nodes[id].Declared {
			ids = append(ids, id)
		}
	}
	return ids
}

// InDegree counts, for every node, how many child references point at it.
// A parent that lists the same child twice counts twice.
func (g *Graph) InDegree() map[string]int {
	deg := make(map[string]int, g.Len())
	for _, id := range g.IDs() {
		if _, ok := deg[id]; !ok {
			deg[id] = 0
		}
		for _, child := range g.nodes[id].Children {
			deg[child]++
		}
	}
	return deg
}

// Parents maps every node id to the ids of the nodes listing it as a child,
// sorted. A parent appears once per reference.
func (g *Graph) Parents() map[string][]string {
	parents := make(map[string][]string, g.Len())
	for _, id := range g.IDs() {
		for _, child := range g.nodes[id].Children {
			parents[child] = append(parents[child], id)
		}
	}
	return parents
}

// Levels returns the breadth-first waves reachable from root: the root alone,
// then its children in declared order, then theirs. On a validated tree every
// node appears exactly once. Ids already emitted are skipped so the walk
// terminates on any graph.
func (g *Graph) Levels(root string) [][]string {
	if !g.Has(root) {
		return nil
	}
	seen := map[string]bool{root: true}
	levels := [][]string{{root}}
	for frontier := levels[0]; ; {
		var next []string
		for _, id := range frontier {
			for _, child := range g.nodes[id].Children {
				if seen[child] {
					continue
				}
				seen[child] = true
				next = append(next, child)
			}
		}
		if len(next) == 0 {
			return levels
		}
		levels = append(levels, next)
		frontier = next
	}
}

// ChildMap returns the adjacency of the graph as id → children.
func (g *Graph) ChildMap() map[string][]string {
	out := make(map[string][]string, g.Len())
	for _, id := range g.IDs() {
		out[id] = slices.Clone(g.nodes[id].Children)
	}
	return out
}
