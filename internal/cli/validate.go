package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eventgraph/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Existence string // existence policy name
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Root        string                     `json:"root,omitempty"`
	Events      int                        `json:"events"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
	Diagnostics *compiler.Diagnostics      `json:"diagnostics,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <events-dir>",
		Short: "Validate an events directory",
		Long: `Load every event definition and the dependencies file, build the
dependency graph and check that it is a single rooted tree whose events
all have definitions.

Exit codes:
  0 - Graph is valid
  1 - Graph or definitions are invalid
  2 - Command error (directory missing, no dependencies file, bad flags)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	addExistenceFlag(cmd, &opts.Existence)

	return cmd
}

// addExistenceFlag registers --existence on commands that compile a graph.
func addExistenceFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "existence", "strict",
		fmt.Sprintf("which events need a definition (%s)", strings.Join(compiler.ValidExistencePolicies, "|")))
}

func runValidate(opts *ValidateOptions, eventsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	policy, err := compiler.ParseExistencePolicy(opts.Existence)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	result := checkEventsDir(cmd, opts.RootOptions, formatter, eventsDir, policy)

	if issue, ok := result.commandError(); ok {
		return outputValidateError(formatter, issue.Code, issue.Message, issue.Source)
	}
	if !result.Valid() {
		return outputIssues(formatter, "Validation", result)
	}

	return outputValidateSuccess(formatter, result.Plan)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, plan *compiler.Plan) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:  true,
			Root:   plan.Root,
			Events: plan.Graph.Len(),
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Event graph valid (root: %s, %d events)\n", plan.Root, plan.Graph.Len())
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message, source string) error {
	var details interface{}
	if source != "" {
		details = map[string]string{"path": source}
	}
	_ = formatter.Error(code, message, details)
	// Unusable input is a command-level error (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputIssues outputs every issue, plus diagnostics when known. stage names
// the step that failed ("Validation", "Compilation").
func outputIssues(formatter *OutputFormatter, stage string, result *checkResult) error {
	errs := result.Issues
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("%s failed with %d error(s)", strings.ToLower(stage), len(errs)))

	if formatter.Format == "json" {
		data := ValidationResult{
			Valid:       false,
			Errors:      errs,
			Diagnostics: result.Diagnostics,
		}
		if result.Load != nil {
			data.Events = len(result.Load.Events)
		}
		if err := formatter.Failure(errs[0].Code, errs[0].Message, data); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✗ %s failed\n", stage)
	fmt.Fprintln(w)

	for _, err := range errs {
		if err.Source != "" {
			fmt.Fprintln(w, err.Source)
		}
		fmt.Fprintf(w, "  %s: %s\n\n", err.Code, err.Message)
	}

	if formatter.Verbose && result.Diagnostics != nil {
		writeDiagnostics(w, result.Diagnostics)
	}

	return exitErr
}

// writeDiagnostics renders cycle, fan-in and root findings.
func writeDiagnostics(w io.Writer, d *compiler.Diagnostics) {
	fmt.Fprintln(w, "Diagnostics:")
	if len(d.Roots) == 0 {
		fmt.Fprintln(w, "  Roots: none")
	} else {
		fmt.Fprintf(w, "  Roots: %s\n", strings.Join(d.Roots, ", "))
	}
	for _, c := range d.Cycles {
		fmt.Fprintf(w, "  %s\n", c.Message)
	}
	for _, f := range d.FanIn {
		fmt.Fprintf(w, "  Fan-in: %s is a child of %s\n", f.ID, strings.Join(f.Parents, ", "))
	}
}
