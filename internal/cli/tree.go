package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/eventgraph/internal/compiler"
)

// TreeOptions holds flags for the tree command.
type TreeOptions struct {
	*RootOptions
	Existence string // existence policy name
}

// TreeNode is one event in the JSON rendering of the tree.
type TreeNode struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TreeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tree <events-dir>",
		Short: "Print the validated event tree",
		Long: `Validate an events directory and print its dependency tree, root
first, children in declared order. Event names are shown next to ids when
they differ.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(opts, args[0], cmd)
		},
	}

	addExistenceFlag(cmd, &opts.Existence)

	return cmd
}

func runTree(opts *TreeOptions, eventsDir string, cmd *cobra.Command) error {
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

	if formatter.Format == "json" {
		return formatter.Success(buildTreeNode(result.Plan, result.Plan.Root))
	}

	writeTree(formatter.Writer, result.Plan)
	return nil
}

// buildTreeNode converts the subtree under id. The plan is a validated tree,
// so the recursion terminates.
func buildTreeNode(plan *compiler.Plan, id string) TreeNode {
	node := TreeNode{ID: id}
	if rec, ok := plan.Event(id); ok && rec.Name != id {
		node.Name = rec.Name
	}
	for _, child := range plan.Graph.Children(id) {
		node.Children = append(node.Children, buildTreeNode(plan, child))
	}
	return node
}

// writeTree renders the plan with box-drawing connectors.
func writeTree(w io.Writer, plan *compiler.Plan) {
	fmt.Fprintln(w, treeLabel(plan, plan.Root))
	writeSubtree(w, plan, plan.Root, "")
}

func writeSubtree(w io.Writer, plan *compiler.Plan, id, prefix string) {
	children := plan.Graph.Children(id)
	for i, child := range children {
		connector, indent := "├── ", "│   "
		if i == len(children)-1 {
			connector, indent = "└── ", "    "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, treeLabel(plan, child))
		writeSubtree(w, plan, child, prefix+indent)
	}
}

func treeLabel(plan *compiler.Plan, id string) string {
	if rec, ok := plan.Event(id); ok && rec.Name != "" && rec.Name != id {
		return fmt.Sprintf("%s (%s)", id, rec.Name)
	}
	return id
}
