// Package harness runs conformance scenarios against the event graph
// compiler.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: fan_in_rejected
//	description: "A shared child is rejected"
//	dependencies:
//	  a: { children: [b, c] }
//	  b: { children: [d] }
//	  c: { children: [d] }
//	catalog: [a, b, c, d]
//	existence: strict
//	expect:
//	  valid: false
//	  error: E203
//	  event: d
//	assertions:
//	  - type: fan_in
//	    event: d
//	    parents: [b, c]
//
// Inputs come either inline (dependencies plus events and/or catalog) or
// from an events directory via events_dir, resolved relative to the
// scenario file. catalog is shorthand for records whose name equals the id.
//
// # Assertion Types
//
//   - levels: the execution waves of a valid graph
//   - children: the children of one event, in declared order
//   - event_count: the number of nodes in the graph
//   - roots: the in-degree-zero nodes
//   - cycle: a cycle path reported by diagnostics
//   - fan_in: the parents of an event referenced more than once
//
// # Golden Snapshots
//
// Snapshot renders a Result as canonical JSON so the outcome can be compared
// byte for byte against testdata/golden/<name>.golden with goldie.
package harness
