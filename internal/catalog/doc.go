// Package catalog discovers event definitions and the dependency declaration
// in an events directory.
//
// # Layout
//
//	<events-dir>/
//	  dependencies.{json,yaml,yml,cue,hcl}
//	  <folder>/definition.{json,yaml,yml,cue}
//
// Every sub-folder (dot-folders excluded) is one event and must hold exactly
// one definition file:
//
//	{ "name": "...", "id": "...", "start": { "module": "...", "function": "..." } }
//
// The dependencies file maps event ids to their children:
//
//	{ "event-1": { "children": ["event-2", "event-3"] } }
//
// A bare list ("event-1": ["event-2"]) is accepted as shorthand. The HCL form
// uses one labelled block per event:
//
//	event "event-1" {
//	  children = ["event-2", "event-3"]
//	}
//
// Declaring the same top-level id twice fails with
// compiler.ErrDuplicateDeclaration for JSON, YAML and HCL. CUE unifies
// repeated fields, so duplicates cannot be observed there.
//
// Definition files are decoded concurrently; the returned records are always
// in folder-name order.
package catalog
