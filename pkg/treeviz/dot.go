// Package treeviz draws visual trees as node-link diagrams.
//
// [ToDOT] produces Graphviz DOT source, one box per node, with the state a
// session holds about it: ellipsized atoms are dashed, expanded arrays are
// filled and the window root is outlined in bold. [RenderSVG] renders DOT
// in process with go-graphviz.
//
//	dot := treeviz.ToDOT(root, treeviz.Options{Session: s})
//	svg, err := treeviz.RenderSVG(ctx, dot)
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/visual"
	"github.com/matzehuels/mortar/pkg/wall"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds levels, depths and brick positions to the labels.
	Detailed bool
	// Session, when set, supplies ellipsis, expansion and window state.
	Session *visual.Session
}

// ToDOT converts the tree under root to DOT. Node IDs are child-index
// paths, so the same tree always yields the same source.
func ToDOT(root visual.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=14];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	var edges []string
	var walk func(n visual.Node, id string)
	walk = func(n visual.Node, id string) {
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, opts), ", "))
		for i, c := range n.Children() {
			cid := id + "." + strconv.Itoa(i)
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", id, cid))
			walk(c, cid)
		}
	}
	if root != nil {
		walk(root, "n")
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// Label names n by kind: quoted text with its alignment, the break mode of
// a space, "group", name[] for arrays and name() for atoms.
func Label(n visual.Node) string {
	var label string
	switch n := n.(type) {
	case *visual.Text:
		label = strconv.Quote(n.Text())
		if a := n.Alignment(); a != "" {
			label += " @" + a
		}
	case *visual.Space:
		label = fmt.Sprintf("space %v", n.Break())
	case *visual.Group:
		label = "group"
	case *visual.Array:
		label = n.Style().Name + "[]"
		if n.Style().Name == "" {
			label = "array"
		}
	case *visual.Atom:
		label = n.Name() + "()"
	}
	return label
}

func fmtLabel(n visual.Node, detailed bool) string {
	label := Label(n)
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("level: %d", n.Level())}
	if a, ok := n.(*visual.Atom); ok {
		parts = append(parts, fmt.Sprintf("depth: %d", a.Depth()))
	}
	if b := brickOf(n); b != nil && b.Course() != nil {
		parts = append(parts, fmt.Sprintf("at: %d:%d", b.Course().Index(), b.Index()))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n visual.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	switch n := n.(type) {
	case *visual.Atom:
		if n.Ellipsized() {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
	case *visual.Array:
		if n.Expanded() {
			attrs = append(attrs, "fillcolor=lightyellow")
		}
	case *visual.Space:
		attrs = append(attrs, "fontcolor=grey40")
	}
	if s := opts.Session; s != nil {
		if s.Window() == n {
			attrs = append(attrs, "penwidth=3")
		}
		if s.Selection() == n {
			attrs = append(attrs, "color=blue")
		}
	}
	return attrs
}

func brickOf(n visual.Node) *wall.Brick {
	if l, ok := n.(interface{ Brick() *wall.Brick }); ok {
		return l.Brick()
	}
	return nil
}

// RenderSVG renders DOT source to SVG with Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
