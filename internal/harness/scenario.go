package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eventgraph/internal/compiler"
	"github.com/roach88/eventgraph/internal/ir"
)

// Scenario defines a conformance test scenario: a dependency declaration,
// an event catalog and the expected validation outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// EventsDir points at an events directory to load instead of inline
	// dependencies and events.
	EventsDir string `yaml:"events_dir,omitempty"`

	// Dependencies is the inline dependency declaration. It is kept as a
	// node so duplicate keys are detected the same way as in files.
	Dependencies yaml.Node `yaml:"dependencies,omitempty"`

	// Events are full catalog records.
	Events []ir.EventRecord `yaml:"events,omitempty"`

	// Catalog lists ids to add to the catalog with generated records.
	Catalog []string `yaml:"catalog,omitempty"`

	// Existence selects the existence policy ("strict" or "declared").
	Existence string `yaml:"existence,omitempty"`

	// Expect is the expected outcome.
	Expect Expectation `yaml:"expect"`

	// Assertions are extra checks on the outcome.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Expectation is the expected validation outcome.
type Expectation struct {
	// Valid is true when the graph must pass every stage.
	Valid bool `yaml:"valid"`

	// Root is the expected root id (valid graphs only).
	Root string `yaml:"root,omitempty"`

	// Error is the expected E-code (invalid graphs only).
	Error string `yaml:"error,omitempty"`

	// Event is the offending event id carried by the error, if any.
	Event string `yaml:"event,omitempty"`
}

// Assertion checks one property of the outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event is the subject of children and fan_in.
	Event string `yaml:"event,omitempty"`

	// Children are the expected children (children).
	Children []string `yaml:"children,omitempty"`

	// Parents are the expected parents, sorted (fan_in).
	Parents []string `yaml:"parents,omitempty"`

	// Levels are the expected execution waves (levels).
	Levels [][]string `yaml:"levels,omitempty"`

	// Path is an expected cycle path, first node repeated at the end (cycle).
	Path []string `yaml:"path,omitempty"`

	// Roots are the expected in-degree-zero nodes, sorted (roots).
	Roots []string `yaml:"roots,omitempty"`

	// Count is the expected node count (event_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertLevels     = "levels"
	AssertChildren   = "children"
	AssertEventCount = "event_count"
	AssertRoots      = "roots"
	AssertCycle      = "cycle"
	AssertFanIn      = "fan_in"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// events_dir is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.Path = path

	if scenario.EventsDir != "" && !filepath.IsAbs(scenario.EventsDir) {
		scenario.EventsDir = filepath.Join(filepath.Dir(path), scenario.EventsDir)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	hasInline := s.Dependencies.Kind != 0 || len(s.Events) > 0 || len(s.Catalog) > 0
	switch {
	case s.EventsDir != "" && hasInline:
		return fmt.Errorf("events_dir cannot be combined with dependencies, events or catalog")
	case s.EventsDir != "":
		if _, err := os.Stat(s.EventsDir); os.IsNotExist(err) {
			return fmt.Errorf("events directory not found: %s", s.EventsDir)
		}
	case s.Dependencies.Kind == 0:
		return fmt.Errorf("dependencies or events_dir is required")
	}

	if _, err := compiler.ParseExistencePolicy(s.Existence); err != nil {
		return err
	}

	if s.Expect.Valid {
		if s.Expect.Error != "" {
			return fmt.Errorf("expect: error must be empty when valid is true")
		}
	} else {
		if s.Expect.Error == "" {
			return fmt.Errorf("expect: error is required when valid is false")
		}
		if s.Expect.Root != "" {
			return fmt.Errorf("expect: root is only checked when valid is true")
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLevels:
		if len(a.Levels) == 0 {
			return fmt.Errorf("assertions[%d]: levels is required for levels", index)
		}
	case AssertChildren:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for children", index)
		}
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertRoots:
		// An empty list asserts that no root exists.
	case AssertCycle:
		if len(a.Path) < 2 {
			return fmt.Errorf("assertions[%d]: path needs at least two entries for cycle", index)
		}
	case AssertFanIn:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for fan_in", index)
		}
		if len(a.Parents) < 2 {
			return fmt.Errorf("assertions[%d]: parents needs at least two entries for fan_in", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
