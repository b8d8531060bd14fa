package sketch

import (
	"github.com/matzehuels/mortar/pkg/config"
	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/visual"
)

// DocumentStyle is the style of the array holding a sketch's lines.
var DocumentStyle = visual.ArrayStyle{Name: "doc", AlwaysSplit: true}

// Build turns a parsed sketch into a visual tree styled by cfg. A nil cfg
// uses the defaults.
func Build(doc *Document, cfg *config.Config) (*visual.Array, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	b := builder{cfg: cfg}
	lines := make([]visual.Node, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		n, err := b.seq(l)
		if err != nil {
			return nil, err
		}
		lines = append(lines, n)
	}
	return visual.NewArray(DocumentStyle, lines...), nil
}

type builder struct {
	cfg *config.Config
}

func (b builder) seq(s *Seq) (visual.Node, error) {
	nodes := make([]visual.Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		v, err := b.node(n)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, v)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return visual.NewGroup(nodes...), nil
}

func (b builder) node(n *Node) (visual.Node, error) {
	switch {
	case n.Text != nil:
		return visual.NewText(string(*n.Text)), nil
	case n.Space:
		return visual.NewSpace(visual.BreakNever, b.cfg.Layout.SpaceWidth), nil
	case n.Break:
		return visual.NewSpace(visual.BreakAlways, 0), nil
	case n.Atom != nil:
		return b.atom(n.Atom)
	case n.Array != nil:
		return b.array(n.Array)
	}
	return nil, errors.New(errors.ErrCodeInvalidDocument, "empty node").At(n.Pos.String())
}

func (b builder) atom(c *Call) (visual.Node, error) {
	style, _ := b.cfg.Atom(c.Name)
	var children []visual.Node
	for i, arg := range c.Args {
		n, err := b.seq(arg)
		if err != nil {
			return nil, err
		}
		if i > 0 && style.Separator != "" {
			children = append(children, visual.NewText(style.Separator))
		}
		if i < len(style.Align) && style.Align[i] != "" {
			if t := firstText(n); t != nil {
				t.SetAlignment(style.Align[i])
			}
		}
		children = append(children, n)
	}
	var body visual.Node
	if len(children) == 1 {
		body = children[0]
	} else {
		body = visual.NewGroup(children...)
	}
	return visual.NewAtom(c.Name, config.Defs(style.Alignments), body), nil
}

func (b builder) array(l *List) (visual.Node, error) {
	name := l.Name
	if name == "" {
		name = "list"
	}
	style := b.cfg.Array(name)
	elements := make([]visual.Node, 0, len(l.Items))
	for _, item := range l.Items {
		n, err := b.seq(item)
		if err != nil {
			return nil, err
		}
		elements = append(elements, n)
	}
	arr := visual.NewArray(visual.ArrayStyle{
		Name:       name,
		Prefix:     style.Prefix,
		Separator:  style.Separator,
		Suffix:     style.Suffix,
		Precedence: style.Precedence,
		Splittable: !style.Fixed,
	}, elements...)
	return arr, nil
}

// firstText returns the first text leaf of n, where a positional
// alignment lands.
func firstText(n visual.Node) *visual.Text {
	if t, ok := n.(*visual.Text); ok {
		return t
	}
	for _, c := range n.Children() {
		if t := firstText(c); t != nil {
			return t
		}
	}
	return nil
}
