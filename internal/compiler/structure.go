package compiler

import "slices"

// ValidateStructure walks the graph breadth-first from root and fails with
// ErrDuplicateOrCyclicEvent on the first id reached a second time.
//
// Children are enqueued without deduplication, so a single check rejects
// cycles (an id reachable from itself), fan-in (an id with two parents) and a
// parent listing the same child twice alike.
//
// Once the frontier is exhausted every node must have been visited. A node
// the walk never reached has a parent chain that never ends at the root, so
// it hangs off a cycle detached from the tree; that cycle is reported with
// the same error kind.
func ValidateStructure(root string, g *Graph) error {
	if !g.Has(root) {
		return unknownRootError(root)
	}

	visited := make(map[string]bool, g.Len())
	for level := []string{root}; len(level) > 0; {
		var next []string
		for _, id := range level {
			if visited[id] {
				return duplicateOrCyclicError(id, "")
			}
			visited[id] = true
			next = append(next, g.nodes[id].Children...)
		}
		level = next
	}

	if len(visited) == g.Len() {
		return nil
	}
	for _, id := range g.IDs() {
		if !visited[id] {
			member, onCycle := detachedCycleMember(g, id)
			if !onCycle {
				return duplicateOrCyclicError(member, "not reachable from root "+root)
			}
			return duplicateOrCyclicError(member, "cycle not reachable from root "+root)
		}
	}
	return nil
}

// detachedCycleMember follows parent links from an unreachable node until an
// id repeats and returns that id, which lies on a cycle. If the chain ends at
// a parentless node instead (root was not the graph's real root), that node
// is returned with onCycle false.
func detachedCycleMember(g *Graph, start string) (id string, onCycle bool) {
	parents := g.Parents()
	seen := make(map[string]bool)
	id = start
	for !seen[id] {
		seen[id] = true
		ps := parents[id]
		if len(ps) == 0 {
			return id, false
		}
		id = slices.Min(ps)
	}
	return id, true
}
