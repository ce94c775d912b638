// Package compiler turns a dependency declaration and an event catalog into a
// validated execution plan.
//
// The pipeline runs four stages, each failing fast on the first violation:
//
//  1. Build: declaration → Graph (arena of nodes keyed by event id)
//  2. FindRoot: exactly one node with in-degree zero
//  3. ValidateStructure: breadth-first walk from the root; any id reached
//     twice is rejected, which covers both cycles and fan-in
//  4. ValidateExistence: every node id has a record in the catalog
//
// Compile chains the stages and returns a Plan. Nothing here executes a
// handler or touches the filesystem; see package catalog for loading.
//
// Schema checks on individual records and declaration entries (Validate*)
// collect all problems instead of failing fast, and Diagnose explains a
// structural failure without changing its error kind.
package compiler
