package compiler

import "github.com/roach88/eventgraph/internal/ir"

// Build turns a dependency declaration into a Graph.
//
// Every declared key becomes a node marked Declared. Every child id becomes a
// node too, even when it has no declaration of its own (a leaf). Children are
// appended in declared order without deduplication so later stages can see
// repeated references.
//
// Build never fails; structural problems are reported by FindRoot and
// ValidateStructure. Keys are visited in lexical order so the resulting arena
// does not depend on map iteration order.
func Build(decl ir.Declaration) *Graph {
	g := newGraph()
	for _, id := range decl.Keys() {
		g.ensure(id).Declared = true
		for _, child := range decl[id].Children {
			g.addEdge(id, child)
		}
	}
	return g
}
