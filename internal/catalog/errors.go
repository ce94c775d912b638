package catalog

import (
	"errors"
	"fmt"

	"github.com/roach88/eventgraph/internal/compiler"
)

// Error code constants, shared with the CLI.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeScanError         = "E002" // Directory scan error
	ErrCodeNoDependencies    = "E003" // No dependencies file found
	ErrCodeDecodeFailed      = "E004" // File could not be parsed
	ErrCodeNotFound          = "E005" // Path not found
	ErrCodeMissingDefinition = "E006" // Event folder has no definition file
	ErrCodeWriteFailed       = "E007" // File write error
	ErrCodeAmbiguousFile     = "E008" // More than one candidate file
)

// LoadError represents an error that occurred while loading an events directory.
type LoadError struct {
	Code    string
	Path    string
	Line    int
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if loc := e.Location(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Detail())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail())
}

// Location returns "path" or "path:line", or "" when no path is known.
func (e *LoadError) Location() string {
	if e.Path != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return e.Path
}

// Detail returns the message and wrapped error without location or code.
func (e *LoadError) Detail() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func decodeError(path string, err error) *LoadError {
	return &LoadError{Code: ErrCodeDecodeFailed, Path: path, Message: "decoding failed", Err: err}
}

// ErrorCode returns the E-code carried by err: a LoadError code first, then
// a compiler.GraphError or compiler.ValidationError code, else ErrCodeGeneric.
func ErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	if code := compiler.Code(err); code != "" {
		return code
	}
	var valErr compiler.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Code
	}
	return ErrCodeGeneric
}
