package ir

// Version constants for the plan format and the tool.
const (
	// PlanVersion is the schema version of compiled plans.
	PlanVersion = "1"

	// ToolVersion is the eventgraph release version.
	ToolVersion = "0.1.0"
)
