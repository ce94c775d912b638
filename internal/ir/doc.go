// Package ir provides the canonical data types for eventgraph.
//
// This package contains the event catalog and dependency declaration types
// shared by every other internal package. ir imports nothing internal, so it
// stays the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Handler references are inert data; nothing in this module resolves them
//   - All JSON tags use snake_case
//   - Content hashes use RFC 8785 canonical JSON with domain separation
package ir
