package ir

import "slices"

// EventRecord is one declared event, decoded from an event folder's
// definition file. Records are immutable once loaded.
type EventRecord struct {
	ID    string     `json:"id" yaml:"id"`
	Name  string     `json:"name" yaml:"name"`
	Start HandlerRef `json:"start" yaml:"start"`

	// Source is the definition file the record was decoded from.
	// It is not part of the record's identity.
	Source string `json:"-" yaml:"-"`
}

// HandlerRef names the module and function a runner invokes for an event.
// eventgraph never dereferences it.
type HandlerRef struct {
	Module   string `json:"module" yaml:"module"`
	Function string `json:"function" yaml:"function"`
}

// DependencySpec lists the children declared for one event.
type DependencySpec struct {
	Children []string `json:"children" yaml:"children"`
}

// Declaration maps an event id to its declared children, as authored in the
// dependencies file.
type Declaration map[string]DependencySpec

// Keys returns the declared event ids in lexical order.
func (d Declaration) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IDs returns the ids of the given records in their original order.
func IDs(events []EventRecord) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

// canonical returns the record as a canonical JSON object.
func (r EventRecord) canonical() map[string]any {
	return map[string]any{
		"id":   r.ID,
		"name": r.Name,
		"start": map[string]any{
			"module":   r.Start.Module,
			"function": r.Start.Function,
		},
	}
}
