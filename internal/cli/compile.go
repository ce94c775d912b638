package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/eventgraph/internal/compiler"
	"github.com/roach88/eventgraph/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output    string // output file path
	Existence string // existence policy name
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <events-dir>",
		Short: "Compile an events directory to a canonical plan",
		Long: `Validate an events directory and emit the resulting plan as canonical
JSON: root, content hash, execution levels, the dependency tree and the
event catalog.

Without --output the plan is written to stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	addExistenceFlag(cmd, &opts.Existence)

	return cmd
}

func runCompile(opts *CompileOptions, eventsDir string, cmd *cobra.Command) error {
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
		return outputIssues(formatter, "Compilation", result)
	}

	plan := result.Plan
	doc, hash, err := canonicalPlan(plan)
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), "")
	}
	formatter.VerboseLog("Plan hash: %s", hash)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, doc, 0644); err != nil {
			return outputValidateError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), opts.Output)
		}
	}

	return outputCompileSuccess(formatter, plan, doc, opts.Output)
}

// canonicalPlan renders the plan with its hash as canonical JSON.
func canonicalPlan(plan *compiler.Plan) ([]byte, string, error) {
	hash, err := plan.Hash()
	if err != nil {
		return nil, "", err
	}

	obj := plan.Canonical()
	obj["hash"] = hash

	doc, err := ir.MarshalCanonical(obj)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling plan: %w", err)
	}
	return doc, hash, nil
}

// outputCompileSuccess outputs the compiled plan or, when it was written to
// a file, a summary.
func outputCompileSuccess(formatter *OutputFormatter, plan *compiler.Plan, doc []byte, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(json.RawMessage(doc))
	}

	if outputFile == "" {
		fmt.Fprintln(formatter.Writer, string(doc))
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled event graph (root: %s, %d events, %d levels)\n",
		plan.Root, plan.Graph.Len(), len(plan.Levels()))
	fmt.Fprintf(formatter.Writer, "Wrote plan to %s\n", outputFile)
	return nil
}
