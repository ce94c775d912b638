package harness

import "github.com/roach88/eventgraph/internal/compiler"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success: the outcome matched the
	// expectation and every assertion held.
	Pass bool `json:"pass"`

	// Valid reports whether the graph passed every validation stage.
	Valid bool `json:"valid"`

	// Root and Levels are set for valid graphs.
	Root   string     `json:"root,omitempty"`
	Levels [][]string `json:"levels,omitempty"`

	// Nodes is the adjacency of the built graph, when a declaration was loaded.
	Nodes map[string][]string `json:"nodes,omitempty"`

	// EventCount is the number of nodes in the graph.
	EventCount int `json:"event_count"`

	// ErrorCode, ErrorEvent and ErrorMessage describe the first failure.
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorEvent   string `json:"error_event,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Issues lists every schema validation error.
	Issues []string `json:"issues,omitempty"`

	// Diagnostics explains root and structural failures.
	Diagnostics *compiler.Diagnostics `json:"diagnostics,omitempty"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// fail records the first pipeline failure.
func (r *Result) fail(code, event, message string) {
	r.Valid = false
	r.ErrorCode = code
	r.ErrorEvent = event
	r.ErrorMessage = message
}
