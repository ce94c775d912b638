package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/eventgraph/internal/catalog"
	"github.com/roach88/eventgraph/internal/compiler"
	"github.com/roach88/eventgraph/internal/ir"
)

// Error code constants shared by commands that do not come from a package.
const (
	ErrCodeGeneric     = catalog.ErrCodeGeneric     // Generic/unknown error
	ErrCodeWriteFailed = catalog.ErrCodeWriteFailed // File write error
	ErrCodeTestFailed  = "E_TEST_FAILED"            // One or more scenarios failed
)

// directoryErrorCodes mark load failures where the events directory itself is
// unusable. They exit with ExitCommandError; everything else is a validation
// failure.
var directoryErrorCodes = map[string]bool{
	catalog.ErrCodeNotFound:       true,
	catalog.ErrCodeScanError:      true,
	catalog.ErrCodeNoDependencies: true,
}

// checkResult is the outcome of loading and validating an events directory.
type checkResult struct {
	Load        *catalog.Result
	Issues      []compiler.ValidationError // load, schema and graph failures
	Plan        *compiler.Plan
	Diagnostics *compiler.Diagnostics
}

// Valid reports whether every stage passed.
func (r *checkResult) Valid() bool {
	return r.Plan != nil && len(r.Issues) == 0
}

// commandError returns the first issue when it means the directory could not
// be used at all.
func (r *checkResult) commandError() (compiler.ValidationError, bool) {
	if r.Load == nil && len(r.Issues) == 1 && directoryErrorCodes[r.Issues[0].Code] {
		return r.Issues[0], true
	}
	return compiler.ValidationError{}, false
}

// checkEventsDir loads dir, runs the schema checks and compiles the graph.
// Load errors are collected across all event folders. Root and structural
// failures carry diagnostics.
func checkEventsDir(cmd *cobra.Command, opts *RootOptions, formatter *OutputFormatter, dir string, policy compiler.ExistencePolicy) *checkResult {
	result := &checkResult{}

	res, err := catalog.Load(commandContext(cmd), dir,
		catalog.WithLogger(newLogger(opts, formatter.GetErrWriter())),
		catalog.WithMode(catalog.LoadModeCollectAll),
	)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			result.Issues = append(result.Issues, issueFromError(e))
		}
		return result
	}
	result.Load = res

	formatter.VerboseLog("Found %d event folder(s) in %s", res.FolderCount, dir)
	formatter.VerboseLog("Dependencies: %s (%d declared)", res.DependenciesFile, len(res.Declaration))
	if h, err := ir.DeclarationHash(res.Declaration); err == nil {
		formatter.VerboseLog("Declaration hash: %s", h)
	}
	if h, err := ir.CatalogHash(res.Events); err == nil {
		formatter.VerboseLog("Catalog hash: %s", h)
	}

	if issues := compiler.CheckSchema(res.Declaration, res.Events); len(issues) > 0 {
		result.Issues = issues
		return result
	}

	formatter.VerboseLog("Existence policy: %s", policy)
	plan, err := compiler.Compile(res.Declaration, res.Events, compiler.WithExistencePolicy(policy))
	if err != nil {
		result.Issues = []compiler.ValidationError{issueFromError(err)}
		switch compiler.Code(err) {
		case compiler.CodeNoRootFound, compiler.CodeAmbiguousRoot, compiler.CodeDuplicateOrCyclicEvent:
			diag := compiler.Diagnose(compiler.Build(res.Declaration))
			result.Diagnostics = &diag
		}
		return result
	}

	result.Plan = plan
	return result
}

// issueFromError converts a loader or compiler error into the issue format
// shared by validate and compile output.
func issueFromError(err error) compiler.ValidationError {
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		return compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Detail(),
			Code:    loadErr.Code,
			Source:  loadErr.Location(),
		}
	}

	var graphErr *compiler.GraphError
	if errors.As(err, &graphErr) {
		return compiler.ValidationError{
			Field:   "graph",
			Message: strings.TrimPrefix(err.Error(), "["+graphErr.Code+"] "),
			Code:    graphErr.Code,
		}
	}

	return compiler.ValidationError{
		Field:   "load",
		Message: err.Error(),
		Code:    ErrCodeGeneric,
	}
}

// commandContext returns the command's context, or Background for commands
// that were not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
