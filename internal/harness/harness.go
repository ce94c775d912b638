package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/roach88/eventgraph/internal/catalog"
	"github.com/roach88/eventgraph/internal/compiler"
	"github.com/roach88/eventgraph/internal/ir"
)

// Harness is the scenario execution engine.
type Harness struct {
	log logr.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used by the harness and the catalog loader.
func WithLogger(log logr.Logger) Option {
	return func(h *Harness) {
		h.log = log
	}
}

// New returns a Harness configured by opts.
func New(opts ...Option) *Harness {
	h := &Harness{log: logr.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load the declaration and catalog (inline or from events_dir)
// 2. Check record and declaration schema
// 3. Compile: build, resolve the root, validate structure and existence
// 4. Diagnose root and structural failures
// 5. Compare against the expectation and evaluate assertions
//
// Validation failures are part of the result. An error is returned only if
// the scenario cannot be executed at all.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	policy, err := compiler.ParseExistencePolicy(scenario.Existence)
	if err != nil {
		return nil, err
	}

	log := h.log.WithValues("scenario", scenario.Name)
	result := NewResult()

	h.evaluate(ctx, scenario, policy, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	checkExpectation(scenario.Expect, result)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	log.V(1).Info("scenario evaluated", "valid", result.Valid, "code", result.ErrorCode, "pass", result.Pass)
	return result, nil
}

// evaluate fills the outcome fields of result.
func (h *Harness) evaluate(ctx context.Context, scenario *Scenario, policy compiler.ExistencePolicy, result *Result) {
	decl, events, err := h.inputs(ctx, scenario)
	if err != nil {
		result.fail(catalog.ErrorCode(err), errorEvent(err), err.Error())
		return
	}

	g := compiler.Build(decl)
	result.Nodes = g.ChildMap()
	result.EventCount = g.Len()

	if issues := compiler.CheckSchema(decl, events); len(issues) > 0 {
		for _, issue := range issues {
			result.Issues = append(result.Issues, issue.Error())
		}
		result.fail(issues[0].Code, "", issues[0].Error())
		return
	}

	plan, err := compiler.Compile(decl, events, compiler.WithExistencePolicy(policy))
	if err != nil {
		code := compiler.Code(err)
		result.fail(code, errorEvent(err), err.Error())
		switch code {
		case compiler.CodeNoRootFound, compiler.CodeAmbiguousRoot, compiler.CodeDuplicateOrCyclicEvent:
			diag := compiler.Diagnose(g)
			result.Diagnostics = &diag
		}
		return
	}

	result.Valid = true
	result.Root = plan.Root
	result.Levels = plan.Levels()
}

// inputs returns the declaration and catalog the scenario describes.
func (h *Harness) inputs(ctx context.Context, scenario *Scenario) (ir.Declaration, []ir.EventRecord, error) {
	if scenario.EventsDir != "" {
		res, err := catalog.Load(ctx, scenario.EventsDir, catalog.WithLogger(h.log))
		if err != nil {
			return nil, nil, err
		}
		return res.Declaration, res.Events, nil
	}

	decl, err := catalog.DeclarationFromYAML(scenario.Path, &scenario.Dependencies)
	if err != nil {
		return nil, nil, err
	}

	events := slices.Clone(scenario.Events)
	for _, id := range scenario.Catalog {
		events = append(events, ir.EventRecord{
			ID:    id,
			Name:  id,
			Start: ir.HandlerRef{Module: "scenario", Function: id},
		})
	}
	return decl, events, nil
}

// checkExpectation compares the outcome with the scenario's expect block.
func checkExpectation(expect Expectation, result *Result) {
	if expect.Valid != result.Valid {
		if expect.Valid {
			result.AddError(fmt.Sprintf("expected a valid graph, got %s", result.ErrorMessage))
		} else {
			result.AddError(fmt.Sprintf("expected error %s, got a valid graph (root: %s)", expect.Error, result.Root))
		}
		return
	}

	if expect.Valid {
		if expect.Root != "" && expect.Root != result.Root {
			result.AddError(fmt.Sprintf("expected root %q, got %q", expect.Root, result.Root))
		}
		return
	}

	if expect.Error != result.ErrorCode {
		result.AddError(fmt.Sprintf("expected error %s, got %s", expect.Error, result.ErrorMessage))
	}
	if expect.Event != "" && expect.Event != result.ErrorEvent {
		result.AddError(fmt.Sprintf("expected offending event %q, got %q", expect.Event, result.ErrorEvent))
	}
}

func errorEvent(err error) string {
	var gErr *compiler.GraphError
	if errors.As(err, &gErr) {
		return gErr.EventID
	}
	return ""
}
