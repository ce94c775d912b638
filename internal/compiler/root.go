package compiler

import "slices"

// FindRoot returns the id of the single node with in-degree zero.
//
// Every node counts, including ids that only appear as children. No such
// node means the declaration is empty or cyclic at the top level
// (ErrNoRootFound); several mean it describes disconnected top-level events
// (ErrAmbiguousRoot, with the candidates listed in lexical order).
func FindRoot(g *Graph) (string, error) {
	var roots []string
	for id, deg := range g.InDegree() {
		if deg == 0 {
			roots = append(roots, id)
		}
	}

	switch len(roots) {
	case 0:
		return "", noRootError()
	case 1:
		return roots[0], nil
	default:
		slices.Sort(roots)
		return "", ambiguousRootError(roots)
	}
}
