package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion against the result and returns
// the failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertLevels:
		return assertLevels(result, a)
	case AssertChildren:
		return assertChildren(result, a)
	case AssertEventCount:
		return assertEventCount(result, a)
	case AssertRoots:
		return assertRoots(result, a)
	case AssertCycle:
		return assertCycle(result, a)
	case AssertFanIn:
		return assertFanIn(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertLevels checks the execution waves of a valid graph.
func assertLevels(result *Result, a Assertion) error {
	if !result.Valid {
		return &AssertionError{
			Type:     AssertLevels,
			Expected: fmt.Sprintf("levels %v", a.Levels),
			Actual:   "graph is invalid: " + result.ErrorCode,
		}
	}
	if !slices.EqualFunc(a.Levels, result.Levels, func(x, y []string) bool {
		return slices.Equal(x, y)
	}) {
		return &AssertionError{
			Type:     AssertLevels,
			Expected: fmt.Sprintf("%v", a.Levels),
			Actual:   fmt.Sprintf("%v", result.Levels),
		}
	}
	return nil
}

// assertChildren checks one event's children in declared order.
func assertChildren(result *Result, a Assertion) error {
	children, ok := result.Nodes[a.Event]
	if !ok {
		return &AssertionError{
			Type:     AssertChildren,
			Expected: fmt.Sprintf("event %s with children %v", a.Event, a.Children),
			Actual:   "event not in graph",
		}
	}
	if !slices.Equal(a.Children, children) {
		return &AssertionError{
			Type:     AssertChildren,
			Expected: fmt.Sprintf("%s -> %v", a.Event, a.Children),
			Actual:   fmt.Sprintf("%s -> %v", a.Event, children),
		}
	}
	return nil
}

// assertEventCount checks the number of graph nodes.
func assertEventCount(result *Result, a Assertion) error {
	if result.EventCount != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d events", a.Count),
			Actual:   fmt.Sprintf("%d events", result.EventCount),
		}
	}
	return nil
}

// assertRoots checks the in-degree-zero nodes. A valid graph has exactly
// its root; failures use the diagnosed roots.
func assertRoots(result *Result, a Assertion) error {
	var roots []string
	switch {
	case result.Valid:
		roots = []string{result.Root}
	case result.Diagnostics != nil:
		roots = result.Diagnostics.Roots
	default:
		return &AssertionError{
			Type:     AssertRoots,
			Expected: fmt.Sprintf("roots %v", a.Roots),
			Actual:   "no root diagnostics for " + result.ErrorCode,
		}
	}
	if !slices.Equal(a.Roots, roots) {
		return &AssertionError{
			Type:     AssertRoots,
			Expected: fmt.Sprintf("%v", a.Roots),
			Actual:   fmt.Sprintf("%v", roots),
		}
	}
	return nil
}

// assertCycle checks that diagnostics report the given cycle path.
func assertCycle(result *Result, a Assertion) error {
	var found []string
	if result.Diagnostics != nil {
		for _, c := range result.Diagnostics.Cycles {
			if slices.Equal(c.Path, a.Path) {
				return nil
			}
			found = append(found, strings.Join(c.Path, " → "))
		}
	}
	return &AssertionError{
		Type:     AssertCycle,
		Expected: strings.Join(a.Path, " → "),
		Actual:   fmt.Sprintf("cycles %v", found),
	}
}

// assertFanIn checks that an event is reported as referenced by parents.
func assertFanIn(result *Result, a Assertion) error {
	if result.Diagnostics != nil {
		for _, f := range result.Diagnostics.FanIn {
			if f.ID != a.Event {
				continue
			}
			if slices.Equal(f.Parents, a.Parents) {
				return nil
			}
			return &AssertionError{
				Type:     AssertFanIn,
				Expected: fmt.Sprintf("%s <- %v", a.Event, a.Parents),
				Actual:   fmt.Sprintf("%s <- %v", f.ID, f.Parents),
			}
		}
	}
	return &AssertionError{
		Type:     AssertFanIn,
		Expected: fmt.Sprintf("%s <- %v", a.Event, a.Parents),
		Actual:   "no fan-in reported",
	}
}
