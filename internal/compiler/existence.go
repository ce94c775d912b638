package compiler

import (
	"fmt"

	"github.com/roach88/eventgraph/internal/ir"
)

// ExistencePolicy selects which graph nodes must have a catalog record.
type ExistencePolicy int

const (
	// ExistenceStrict requires every node, including child-only leaves.
	ExistenceStrict ExistencePolicy = iota
	// ExistenceDeclaredOnly requires only the top-level declaration keys.
	ExistenceDeclaredOnly
)

// ValidExistencePolicies lists the accepted policy names.
var ValidExistencePolicies = []string{"strict", "declared"}

func (p ExistencePolicy) String() string {
	switch p {
	case ExistenceStrict:
		return "strict"
	case ExistenceDeclaredOnly:
		return "declared"
	default:
		return fmt.Sprintf("ExistencePolicy(%d)", int(p))
	}
}

// ParseExistencePolicy parses "strict" or "declared".
func ParseExistencePolicy(s string) (ExistencePolicy, error) {
	switch s {
	case "strict", "":
		return ExistenceStrict, nil
	case "declared":
		return ExistenceDeclaredOnly, nil
	default:
		return 0, fmt.Errorf("invalid existence policy %q: must be one of %v", s, ValidExistencePolicies)
	}
}

// ValidateExistence checks graph node ids against the catalog and fails with
// ErrUndeclaredEvent on the first id, in lexical order, that has no record.
func ValidateExistence(events []ir.EventRecord, g *Graph, policy ExistencePolicy) error {
	valid := make(map[string]bool, len(events))
	for _, e := range events {
		valid[e.ID] = true
	}

	ids := g.IDs()
	if policy == ExistenceDeclaredOnly {
		ids = g.DeclaredIDs()
	}

	for _, id := range ids {
		if !valid[id] {
			return undeclaredEventError(id)
		}
	}
	return nil
}
