package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/roach88/eventgraph/internal/ir"
)

// Schema validation error codes (E100-E199)
const (
	ErrRecordIDEmpty       = "E101" // event id is required
	ErrRecordNameEmpty     = "E102" // event name is required
	ErrRecordStartMissing  = "E103" // start.module and start.function are required
	ErrInvalidEventID      = "E104" // id has surrounding whitespace or control characters
	ErrDuplicateRecordID   = "E105" // two event folders declare the same id
	ErrDeclarationKeyEmpty = "E106" // empty top-level key in dependencies
	ErrChildIDEmpty        = "E107" // empty child id in dependencies
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Source  string `json:"source,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Source, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateRecord checks a single event record.
// Returns all errors found (does not fail-fast).
func ValidateRecord(rec ir.EventRecord) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Source:  rec.Source,
		})
	}

	if rec.ID == "" {
		add("id", ErrRecordIDEmpty, "id is required and must be non-empty")
	} else if !isValidEventID(rec.ID) {
		add("id", ErrInvalidEventID, "invalid event id %q", rec.ID)
	}

	if strings.TrimSpace(rec.Name) == "" {
		add("name", ErrRecordNameEmpty, "name is required for event %q", rec.ID)
	}

	if strings.TrimSpace(rec.Start.Module) == "" {
		add("start.module", ErrRecordStartMissing, "start.module is required for event %q", rec.ID)
	}
	if strings.TrimSpace(rec.Start.Function) == "" {
		add("start.function", ErrRecordStartMissing, "start.function is required for event %q", rec.ID)
	}

	return errs
}

// ValidateCatalog validates every record and rejects ids declared by more
// than one event folder.
func ValidateCatalog(events []ir.EventRecord) []ValidationError {
	var errs []ValidationError
	firstSource := make(map[string]string, len(events))

	for i, rec := range events {
		errs = append(errs, ValidateRecord(rec)...)

		if rec.ID == "" {
			continue
		}
		if prev, dup := firstSource[rec.ID]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("events[%d].id", i),
				Message: fmt.Sprintf("duplicate event id %q (first defined in %s)", rec.ID, prev),
				Code:    ErrDuplicateRecordID,
				Source:  rec.Source,
			})
			continue
		}
		firstSource[rec.ID] = rec.Source
	}

	return errs
}

// ValidateDeclaration checks the dependency declaration for empty ids.
// Keys are checked in lexical order so the result is deterministic.
func ValidateDeclaration(decl ir.Declaration) []ValidationError {
	var errs []ValidationError

	for _, key := range decl.Keys() {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, ValidationError{
				Field:   "dependencies",
				Message: "event id keys must be non-empty",
				Code:    ErrDeclarationKeyEmpty,
			})
		} else if !isValidEventID(key) {
			errs = append(errs, ValidationError{
				Field:   "dependencies",
				Message: fmt.Sprintf("invalid event id %q", key),
				Code:    ErrInvalidEventID,
			})
		}

		for i, child := range decl[key].Children {
			if strings.TrimSpace(child) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("dependencies.%s.children[%d]", key, i),
					Message: fmt.Sprintf("child id of %q must be non-empty", key),
					Code:    ErrChildIDEmpty,
				})
			} else if !isValidEventID(child) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("dependencies.%s.children[%d]", key, i),
					Message: fmt.Sprintf("invalid event id %q", child),
					Code:    ErrInvalidEventID,
				})
			}
		}
	}

	return errs
}

// isValidEventID rejects ids with surrounding whitespace or control characters.
func isValidEventID(id string) bool {
	if id != strings.TrimSpace(id) {
		return false
	}
	return strings.IndexFunc(id, unicode.IsControl) < 0
}

// CheckSchema runs ValidateDeclaration and ValidateCatalog, declaration
// errors first.
func CheckSchema(decl ir.Declaration, events []ir.EventRecord) []ValidationError {
	errs := ValidateDeclaration(decl)
	return append(errs, ValidateCatalog(events)...)
}
