package compiler

import (
	"fmt"

	"github.com/roach88/eventgraph/internal/ir"
)

// Plan is the validated output handed to a downstream runner: the root id,
// the dependency graph, and the event catalog.
type Plan struct {
	Root   string
	Graph  *Graph
	Events []ir.EventRecord

	byID map[string]int // index into Events; set by Compile
}

type options struct {
	existence ExistencePolicy
}

// Option configures Compile.
type Option func(*options)

// WithExistencePolicy selects which nodes must have a catalog record.
// The default is ExistenceStrict.
func WithExistencePolicy(p ExistencePolicy) Option {
	return func(o *options) {
		o.existence = p
	}
}

// Compile builds the graph from decl and validates it against events.
// It stops at the first failing stage; no partial plan is returned.
func Compile(decl ir.Declaration, events []ir.EventRecord, opts ...Option) (*Plan, error) {
	o := options{existence: ExistenceStrict}
	for _, opt := range opts {
		opt(&o)
	}

	g := Build(decl)

	root, err := FindRoot(g)
	if err != nil {
		return nil, err
	}

	if err := ValidateStructure(root, g); err != nil {
		return nil, err
	}

	if err := ValidateExistence(events, g, o.existence); err != nil {
		return nil, err
	}

	return &Plan{Root: root, Graph: g, Events: events, byID: indexEvents(events)}, nil
}

// Levels returns the execution waves of the plan, root first.
func (p *Plan) Levels() [][]string {
	return p.Graph.Levels(p.Root)
}

// indexEvents maps each id to its first record in events.
func indexEvents(events []ir.EventRecord) map[string]int {
	idx := make(map[string]int, len(events))
	for i, e := range events {
		if _, ok := idx[e.ID]; !ok {
			idx[e.ID] = i
		}
	}
	return idx
}

// Event returns the catalog record for id. Plans built by Compile answer
// from an index; hand-built plans fall back to a scan.
func (p *Plan) Event(id string) (ir.EventRecord, bool) {
	if p.byID != nil {
		i, ok := p.byID[id]
		if !ok {
			return ir.EventRecord{}, false
		}
		return p.Events[i], true
	}
	for _, e := range p.Events {
		if e.ID == id {
			return e, true
		}
	}
	return ir.EventRecord{}, false
}

// Canonical returns the plan as a canonical JSON object, without its hash.
func (p *Plan) Canonical() map[string]any {
	return map[string]any{
		"version": ir.PlanVersion,
		"root":    p.Root,
		"levels":  p.Levels(),
		"nodes":   p.Graph.ChildMap(),
		"events":  ir.CanonicalRecords(p.Events),
	}
}

// Hash returns the content hash of the plan.
func (p *Plan) Hash() (string, error) {
	h, err := ir.HashCanonical(ir.DomainPlan, p.Canonical())
	if err != nil {
		return "", fmt.Errorf("plan hash: %w", err)
	}
	return h, nil
}
