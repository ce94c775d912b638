package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Graph error codes (E200-E299).
const (
	CodeUnknownRoot            = "E200" // root id is not a node of the graph
	CodeNoRootFound            = "E201" // no node with in-degree zero
	CodeAmbiguousRoot          = "E202" // more than one node with in-degree zero
	CodeDuplicateOrCyclicEvent = "E203" // id reached twice from the root
	CodeUndeclaredEvent        = "E204" // node id missing from the catalog
	CodeDuplicateDeclaration   = "E205" // same top-level key declared twice
)

// Sentinel kinds for graph validation failures. Match them with errors.Is;
// use errors.As with *GraphError for the offending ids.
var (
	ErrUnknownRoot            = errors.New("root event is not in the graph")
	ErrNoRootFound            = errors.New("no root event found")
	ErrAmbiguousRoot          = errors.New("more than one root event found")
	ErrDuplicateOrCyclicEvent = errors.New("event is reachable more than once")
	ErrUndeclaredEvent        = errors.New("event has no definition in the catalog")
	ErrDuplicateDeclaration   = errors.New("event is declared more than once")
)

// GraphError is a deterministic validation failure on the dependency graph.
type GraphError struct {
	Kind       error    // one of the Err* sentinels
	Code       string   // E2xx code for CLI output
	EventID    string   // offending event, when there is one
	Candidates []string // competing roots for ErrAmbiguousRoot
	Detail     string   // optional extra context
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Kind.Error())
	if e.EventID != "" {
		fmt.Fprintf(&b, ": %s", e.EventID)
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Candidates, ", "))
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

func (e *GraphError) Unwrap() error { return e.Kind }

// Code returns the E-code carried by err, or "" if err is not a *GraphError.
func Code(err error) string {
	var gErr *GraphError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return ""
}

func unknownRootError(id string) error {
	return &GraphError{Kind: ErrUnknownRoot, Code: CodeUnknownRoot, EventID: id}
}

func noRootError() error {
	return &GraphError{Kind: ErrNoRootFound, Code: CodeNoRootFound,
		Detail: "the declaration is empty or cyclic at the top level"}
}

func ambiguousRootError(roots []string) error {
	return &GraphError{Kind: ErrAmbiguousRoot, Code: CodeAmbiguousRoot, Candidates: roots}
}

func duplicateOrCyclicError(id, detail string) error {
	return &GraphError{Kind: ErrDuplicateOrCyclicEvent, Code: CodeDuplicateOrCyclicEvent,
		EventID: id, Detail: detail}
}

func undeclaredEventError(id string) error {
	return &GraphError{Kind: ErrUndeclaredEvent, Code: CodeUndeclaredEvent, EventID: id}
}

// DuplicateDeclarationError reports a top-level key declared twice in the
// dependencies file. where names the location of the second declaration.
func DuplicateDeclarationError(id, where string) error {
	return &GraphError{Kind: ErrDuplicateDeclaration, Code: CodeDuplicateDeclaration,
		EventID: id, Detail: where}
}
