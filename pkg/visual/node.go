package visual

import (
	"fmt"
	"slices"

	"github.com/matzehuels/mortar/pkg/align"
	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/wall"
)

// Node is an element of the visual tree.
type Node interface {
	// Parent returns the enclosing node, or nil for a root.
	Parent() Node
	// Children returns the node's structural children. Ellipsis does not
	// affect the result.
	Children() []Node
	// Level returns the distance from the tree root.
	Level() int

	base() *nodeBase
}

type nodeBase struct {
	parent  Node
	session *Session
	level   int
	depth   int // atoms on the path from the root, inclusive
}

func (n *nodeBase) Parent() Node    { return n.parent }
func (n *nodeBase) Level() int      { return n.level }
func (n *nodeBase) base() *nodeBase { return n }

func adopt(parent, child Node) {
	if child.base().parent != nil || child.base().session != nil {
		errors.Violation("node %v already has a parent", child)
	}
	child.base().parent = parent
}

// leaf is a node rendered as at most one brick.
type leaf interface {
	Node
	ref() *brickRef
}

// brickRef links a leaf to its brick and forgets the brick when the wall
// destroys it.
type brickRef struct {
	brick *wall.Brick
}

func (r *brickRef) ref() *brickRef { return r }

// Brick returns the leaf's brick, or nil while it is not materialized.
func (r *brickRef) Brick() *wall.Brick { return r.brick }

// BrickChanged implements wall.Attachment.
func (r *brickRef) BrickChanged(ev wall.Event) {
	if ev.Kind == wall.EventDestroyed && ev.Brick == r.brick {
		r.brick = nil
	}
}

// =============================================================================
// Text
// =============================================================================

// Text is a label.
type Text struct {
	nodeBase
	brickRef
	text      string
	alignment string
}

// NewText returns a text leaf.
func NewText(text string) *Text {
	return &Text{text: text}
}

// Text returns the label.
func (t *Text) Text() string { return t.text }

// Alignment returns the name of the alignment the label sits on.
func (t *Text) Alignment() string { return t.alignment }

// Children implements Node.
func (t *Text) Children() []Node { return nil }

// SetText changes the label and resizes its brick.
func (t *Text) SetText(text string) {
	if t.text == text {
		return
	}
	t.text = text
	if b := t.brick; b != nil {
		b.SetLabel(text)
		b.SetSpan(t.session.measure.Measure(text))
	}
}

// SetAlignment places the label on the named alignment, looked up in the
// scopes of the enclosing atoms. An empty name removes the alignment.
func (t *Text) SetAlignment(name string) {
	t.alignment = name
	if b := t.brick; b != nil {
		b.SetAlignment(t.session.lookup(t, name))
	}
}

func (t *Text) String() string { return fmt.Sprintf("text %q", t.text) }

// =============================================================================
// Space
// =============================================================================

// Break says when a space starts a new course.
type Break int

const (
	// BreakNever keeps the space on the current course.
	BreakNever Break = iota
	// BreakAlways starts a course at the space.
	BreakAlways
	// BreakWhenExpanded starts a course while the nearest enclosing array
	// is expanded.
	BreakWhenExpanded
)

func (b Break) String() string {
	switch b {
	case BreakNever:
		return "never"
	case BreakAlways:
		return "always"
	case BreakWhenExpanded:
		return "expanded"
	}
	return fmt.Sprintf("Break(%d)", int(b))
}

// Space is an empty leaf of fixed converse width that may break a course.
type Space struct {
	nodeBase
	brickRef
	mode  Break
	width int
	array *Array // owning array of a split space
}

// NewSpace returns a space leaf.
func NewSpace(mode Break, width int) *Space {
	return &Space{mode: mode, width: width}
}

// Break returns the space's break mode.
func (s *Space) Break() Break { return s.mode }

// Width returns the converse width.
func (s *Space) Width() int { return s.width }

// Children implements Node.
func (s *Space) Children() []Node { return nil }

// controller returns the array whose state decides a BreakWhenExpanded
// space.
func (s *Space) controller() *Array {
	if s.array != nil {
		return s.array
	}
	for p := s.parent; p != nil; p = p.Parent() {
		if a, ok := p.(*Array); ok {
			return a
		}
	}
	return nil
}

func (s *Space) String() string { return fmt.Sprintf("space %v %d", s.mode, s.width) }

// =============================================================================
// Group
// =============================================================================

// Group is a fixed sequence of nodes.
type Group struct {
	nodeBase
	children []Node
}

// NewGroup returns a group of children.
func NewGroup(children ...Node) *Group {
	g := &Group{children: children}
	for _, c := range children {
		adopt(g, c)
	}
	return g
}

// Children implements Node.
func (g *Group) Children() []Node { return g.children }

func (g *Group) String() string { return fmt.Sprintf("group (%d)", len(g.children)) }

// =============================================================================
// Array
// =============================================================================

// ArrayStyle configures an array's punctuation and splitting.
type ArrayStyle struct {
	Name       string
	Prefix     string
	Separator  string
	Suffix     string
	Precedence int
	// Splittable arrays may move each element onto its own course when
	// their course overflows.
	Splittable bool
	// AlwaysSplit arrays start every element on its own course.
	AlwaysSplit bool
}

// Array is an editable sequence of elements. Every element is preceded by
// a split space owned by the array and, after the first, by a separator.
type Array struct {
	nodeBase
	style ArrayStyle

	prefix     *Text
	suffix     *Text
	elements   []Node
	separators []*Text // separators[i] precedes elements[i]; the first is nil
	spaces     []*Space
	expanded   bool
}

// NewArray returns an array holding elements.
func NewArray(style ArrayStyle, elements ...Node) *Array {
	a := &Array{style: style}
	if style.Prefix != "" {
		a.prefix = NewText(style.Prefix)
		adopt(a, a.prefix)
	}
	if style.Suffix != "" {
		a.suffix = NewText(style.Suffix)
		adopt(a, a.suffix)
	}
	for _, e := range elements {
		a.Insert(len(a.elements), e)
	}
	return a
}

// Style returns the array's style.
func (a *Array) Style() ArrayStyle { return a.style }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elements) }

// Element returns the i-th element.
func (a *Array) Element(i int) Node { return a.elements[i] }

// Elements returns a copy of the elements.
func (a *Array) Elements() []Node { return slices.Clone(a.elements) }

// Expanded reports whether the elements are on separate courses.
func (a *Array) Expanded() bool { return a.expanded }

// Children implements Node.
func (a *Array) Children() []Node {
	out := make([]Node, 0, 3*len(a.elements)+2)
	if a.prefix != nil {
		out = append(out, a.prefix)
	}
	for i, e := range a.elements {
		if sep := a.separators[i]; sep != nil {
			out = append(out, sep)
		}
		out = append(out, a.spaces[i], e)
	}
	if a.suffix != nil {
		out = append(out, a.suffix)
	}
	return out
}

func (a *Array) newSeparator() *Text {
	if a.style.Separator == "" {
		return nil
	}
	sep := NewText(a.style.Separator)
	sep.parent = a
	return sep
}

// Insert adds n as element i. If the array is part of a session, the new
// nodes are materialized right away when they border rendered bricks.
func (a *Array) Insert(i int, n Node) {
	if i < 0 || i > len(a.elements) {
		errors.Violation("array insert index %d out of range [0, %d]", i, len(a.elements))
	}
	adopt(a, n)
	mode := BreakWhenExpanded
	if a.style.AlwaysSplit {
		mode = BreakAlways
	}
	sp := &Space{mode: mode, array: a}
	sp.parent = a

	// The new nodes are always one contiguous run of children: a slot at
	// the front pushes the separator onto the old first element.
	var added []Node
	if i == 0 {
		var sep *Text
		if len(a.elements) > 0 {
			sep = a.newSeparator()
			a.separators[0] = sep
		}
		a.separators = slices.Insert(a.separators, 0, (*Text)(nil))
		added = append(added, sp, n)
		if sep != nil {
			added = append(added, sep)
		}
	} else {
		sep := a.newSeparator()
		a.separators = slices.Insert(a.separators, i, sep)
		if sep != nil {
			added = append(added, sep)
		}
		added = append(added, sp, n)
	}
	a.elements = slices.Insert(a.elements, i, n)
	a.spaces = slices.Insert(a.spaces, i, sp)

	if s := a.session; s != nil {
		s.inserted(added)
	}
}

// Remove takes element i out of the array and returns it. Its bricks are
// destroyed immediately.
func (a *Array) Remove(i int) Node {
	if i < 0 || i >= len(a.elements) {
		errors.Violation("array remove index %d out of range [0, %d)", i, len(a.elements))
	}
	n := a.elements[i]
	var removed []Node
	if i == 0 {
		removed = append(removed, a.spaces[0], n)
		if len(a.elements) > 1 && a.separators[1] != nil {
			removed = append(removed, a.separators[1])
			a.separators[1] = nil
		}
	} else {
		if sep := a.separators[i]; sep != nil {
			removed = append(removed, sep)
		}
		removed = append(removed, a.spaces[i], n)
	}

	s := a.session
	if s != nil {
		s.detachAll(removed)
	}
	a.elements = slices.Delete(a.elements, i, i+1)
	a.spaces = slices.Delete(a.spaces, i, i+1)
	a.separators = slices.Delete(a.separators, i, i+1)
	for _, r := range removed {
		r.base().parent = nil
	}
	if s != nil {
		s.afterEdit()
	}
	return n
}

func (a *Array) String() string {
	state := "compact"
	if a.expanded {
		state = "expanded"
	}
	return fmt.Sprintf("array %q (%d, %s)", a.style.Name, len(a.elements), state)
}

// =============================================================================
// Atom
// =============================================================================

// Atom is a named unit of the document. It opens an alignment scope for
// its body and is the unit of ellipsis and windowing.
type Atom struct {
	nodeBase
	name        string
	defs        []align.Def
	body        Node
	placeholder *Text
	scope       *align.Scope
}

// NewAtom returns an atom named name around body. defs declares the
// alignments visible to the body.
func NewAtom(name string, defs []align.Def, body Node) *Atom {
	if body == nil {
		body = NewGroup()
	}
	a := &Atom{name: name, defs: defs, body: body, placeholder: NewText("")}
	adopt(a, body)
	a.placeholder.parent = a
	return a
}

// Name returns the atom's type name.
func (a *Atom) Name() string { return a.name }

// Body returns the atom's content.
func (a *Atom) Body() Node { return a.body }

// Depth returns the number of atoms from the tree root to a, inclusive.
func (a *Atom) Depth() int { return a.depth }

// Scope returns the atom's alignment scope while it is in a session.
func (a *Atom) Scope() *align.Scope { return a.scope }

// Placeholder returns the leaf rendered in place of the body while the
// atom is ellipsized.
func (a *Atom) Placeholder() *Text { return a.placeholder }

// Ellipsized reports whether the atom is currently replaced by its
// placeholder.
func (a *Atom) Ellipsized() bool {
	return a.session != nil && a.session.ellipsized(a)
}

// Children implements Node.
func (a *Atom) Children() []Node { return []Node{a.body} }

func (a *Atom) String() string { return fmt.Sprintf("atom %q", a.name) }
