package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mortar/pkg/treeviz"
	"github.com/matzehuels/mortar/pkg/visual"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	width  int  // layout width used for the state markers
	spaces bool // list spaces and array punctuation
}

// treeCommand creates the tree command, which prints the visual tree of a
// sketch with the paths --select and --window accept.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Print the visual tree of a sketch with node paths",
		Long: `Print the visual tree of a sketch, one node per line, prefixed with the
path that --select and --window accept. Arrays expanded at the given width
are marked "expanded" and atoms hidden by ellipsis are marked "…".`,
		Example: `  mortar tree doc.sketch
  mortar tree doc.sketch --width 40 --spaces`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSketches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "width in cells (default from config)")
	cmd.Flags().BoolVar(&opts.spaces, "spaces", false, "include spaces and array punctuation")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, w io.Writer, input string, opts treeOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	popts, err := c.inputOptions(input)
	if err != nil {
		return err
	}
	popts.Config = cfg
	popts.Width = opts.width

	r := c.newRunner(true)
	root, err := r.Parse(ctx, popts)
	if err != nil {
		return err
	}
	s, err := r.Layout(ctx, root, popts)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = io.WriteString(w, formatTree(root, opts.spaces))
	return err
}

// formatTree lists n and its descendants depth first, indented by level.
func formatTree(n visual.Node, spaces bool) string {
	var b strings.Builder
	var walk func(n visual.Node, path string, depth int)
	walk = func(n visual.Node, path string, depth int) {
		if !spaces && isFiller(n) {
			return
		}
		label := treeviz.Label(n)
		switch n := n.(type) {
		case *visual.Array:
			if n.Expanded() {
				label += " " + StyleHighlight.Render("expanded")
			}
		case *visual.Atom:
			if n.Ellipsized() {
				label += " " + StyleDim.Render("…")
			}
		}
		if path == "" {
			b.WriteString(StyleTitle.Render(label) + "\n")
		} else {
			fmt.Fprintf(&b, "%s%s %s\n", strings.Repeat("  ", depth), StyleDim.Render(path), label)
		}
		for i, kid := range n.Children() {
			walk(kid, join(path, i), depth+1)
		}
	}
	walk(n, "", 0)
	return b.String()
}

func join(path string, i int) string {
	if path == "" {
		return strconv.Itoa(i)
	}
	return path + "." + strconv.Itoa(i)
}

// isFiller reports whether n is layout plumbing: a space, or a prefix,
// separator or suffix text inserted by its array.
func isFiller(n visual.Node) bool {
	switch n := n.(type) {
	case *visual.Space:
		return true
	case *visual.Text:
		a, ok := n.Parent().(*visual.Array)
		if !ok {
			return false
		}
		for _, e := range a.Elements() {
			if e == visual.Node(n) {
				return false
			}
		}
		return true
	}
	return false
}
