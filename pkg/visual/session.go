// Package visual maps a visual tree onto a wall of bricks and keeps the
// mapping current while the tree, the width and the window change.
//
// # Tree
//
// Documents are built from five node kinds: [Text] labels, [Space] breaks,
// fixed [Group] sequences, editable [Array] sequences and [Atom] units.
// Leaves (text and spaces) own at most one brick each; containers own
// none.
//
// # Materialization
//
// A [Session] materializes a contiguous run of leaves in document order.
// It anchors the wall at the first leaf (or the selection) and extends the
// run in both directions with idle fill tasks, a batch of bricks per step.
// Edits next to the run are materialized synchronously; edits elsewhere
// wait for the fill tasks.
//
// # Compaction
//
// Splittable arrays are compact until one of their courses overflows the
// width, then expanded one array per step in order of precedence and
// depth. Expanded arrays are compacted again by a lower-priority sweep once
// every merged course would fit.
//
// # Windowing
//
// Atoms nested more than the ellipsize threshold below the window root
// render as a placeholder. [Session.SetWindow] re-roots the view at an
// atom; [Session.PopWindow] restores the previous root.
package visual

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mortar/pkg/align"
	"github.com/matzehuels/mortar/pkg/config"
	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/geom"
	"github.com/matzehuels/mortar/pkg/idle"
	"github.com/matzehuels/mortar/pkg/measure"
	"github.com/matzehuels/mortar/pkg/wall"
)

// Options configures a session. Zero values select defaults.
type Options struct {
	Config   *config.Config
	Measurer measure.Measurer
	Logger   *log.Logger
	Queue    *idle.Queue
}

// Session is one editing view of a visual tree.
type Session struct {
	// ID identifies the session in logs.
	ID string

	cfg     *config.Config
	log     *log.Logger
	measure measure.Measurer
	queue   *idle.Queue
	wall    *wall.Wall
	scope   *align.Scope
	width   int

	root    Node
	windows []*Atom

	selection highlight
	hover     highlight

	expanded []*Array

	layBefore *layTask
	layAfter  *layTask
	expand    *expandTask
	compact   *compactTask
	closed    bool
}

// New returns a session rendering root. root may be nil and set later
// with SetRoot. New panics with a CONTRACT_VIOLATION error when
// opts.Config does not validate.
func New(root Node, opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		panic(errors.Wrap(errors.ErrCodeContract, err, "session config"))
	}
	m := opts.Measurer
	if m == nil {
		m = measure.NewCells(cfg.Layout.EastAsian)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	q := opts.Queue
	if q == nil {
		q = idle.NewQueue()
	}

	s := &Session{
		ID:      uuid.NewString(),
		cfg:     cfg,
		measure: m,
		queue:   q,
		width:   cfg.Layout.Width,
	}
	s.log = logger.With("session", s.ID[:8])
	s.scope = align.NewScope(nil, config.Defs(cfg.Alignments)...)
	s.wall = wall.New(q, filler{s})
	s.layBefore = &layTask{s: s}
	s.layAfter = &layTask{s: s, forward: true}
	s.expand = &expandTask{s: s}
	s.compact = &compactTask{s: s}
	s.wall.AddCourseListener(s.expand)
	s.selection.padding = cfg.Overlay.SelectionPadding

	if root != nil {
		s.SetRoot(root)
	}
	return s
}

func (s *Session) mustOpen() {
	if s.closed {
		errors.Destroyed("session")
	}
}

// =============================================================================
// Accessors
// =============================================================================

// Wall returns the session's wall.
func (s *Session) Wall() *wall.Wall { return s.wall }

// Queue returns the idle queue the session schedules on.
func (s *Session) Queue() *idle.Queue { return s.queue }

// Config returns the session's configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Root returns the tree root.
func (s *Session) Root() Node { return s.root }

// Width returns the converse budget.
func (s *Session) Width() int { return s.width }

// Selection returns the selected node, or nil.
func (s *Session) Selection() Node { return s.selection.node }

// SelectionRect returns the outline of the selection.
func (s *Session) SelectionRect() (geom.Rect, bool) { return s.selection.rect() }

// SelectionBricks returns the materialized first and last bricks of the
// selection. Either is nil while not built.
func (s *Session) SelectionBricks() (first, last *wall.Brick) { return s.selection.bricks() }

// Hovered returns the hovered node, or nil.
func (s *Session) Hovered() Node { return s.hover.node }

// HoverRect returns the outline of the hovered node.
func (s *Session) HoverRect() (geom.Rect, bool) { return s.hover.rect() }

// HoverBricks returns the materialized first and last bricks of the hover.
func (s *Session) HoverBricks() (first, last *wall.Brick) { return s.hover.bricks() }

// =============================================================================
// Tree
// =============================================================================

// SetRoot replaces the rendered tree. Windows, selection and hover are
// reset.
func (s *Session) SetRoot(root Node) {
	s.mustOpen()
	s.selection.clear()
	s.hover.clear()
	s.windows = nil
	s.wall.Clear()
	if s.root != nil {
		s.detach(s.root)
	}
	s.root = root
	if root == nil {
		return
	}
	if root.base().parent != nil {
		errors.Violation("root %v has a parent", root)
	}
	s.attach(root)
	s.anchor()
	s.queue.Schedule(s.compact)
}

// attach binds n and its subtree to the session.
func (s *Session) attach(n Node) {
	b := n.base()
	if b.session != nil {
		errors.Violation("node %v is already in a session", n)
	}
	b.session = s
	b.level, b.depth = 0, 0
	if p := b.parent; p != nil {
		b.level = p.Level() + 1
		b.depth = p.base().depth
	}
	if a, ok := n.(*Atom); ok {
		b.depth++
		a.scope = align.NewScope(s.scopeOf(a.parent), a.defs...)
		a.placeholder.text = s.cfg.Layout.Ellipsis
		s.attach(a.placeholder)
	}
	for _, c := range n.Children() {
		s.attach(c)
	}
}

// detach unbinds n and its subtree, destroying their bricks.
func (s *Session) detach(n Node) {
	for _, c := range n.Children() {
		s.detach(c)
	}
	switch n := n.(type) {
	case leaf:
		if b := n.ref().brick; b != nil {
			s.wall.Remove(b)
		}
	case *Atom:
		s.detach(n.placeholder)
		n.scope.Close()
		n.scope = nil
	case *Array:
		if n.expanded {
			n.expanded = false
			s.dropExpanded(n)
		}
	}
	n.base().session = nil
}

// detachAll prepares removed nodes for leaving the tree: windows,
// selection and hover inside them are dropped first.
func (s *Session) detachAll(nodes []Node) {
	for _, n := range nodes {
		for i, w := range s.windows {
			if inside(w, n) {
				s.popTo(i)
				break
			}
		}
		if s.selection.node != nil && inside(s.selection.node, n) {
			s.selection.clear()
		}
		if s.hover.node != nil && inside(s.hover.node, n) {
			s.hover.clear()
		}
	}
	for _, n := range nodes {
		s.detach(n)
	}
}

// inserted binds new nodes and materializes them when they border the
// rendered run.
func (s *Session) inserted(nodes []Node) {
	for _, n := range nodes {
		s.attach(n)
	}
	if len(nodes) > 0 && s.visible(nodes[0]) {
		for _, n := range nodes {
			s.realize(n)
		}
	}
	s.afterEdit()
}

// afterEdit restores the anchor and overlays and queues the follow-up
// work every structural change needs.
func (s *Session) afterEdit() {
	if s.wall.Cornerstone() == nil {
		s.reanchor()
	}
	s.selection.retrack(s)
	s.hover.retrack(s)
	s.fill()
	s.queue.Schedule(s.compact)
}

func (s *Session) scopeOf(n Node) *align.Scope {
	for ; n != nil; n = n.Parent() {
		if a, ok := n.(*Atom); ok && a.scope != nil {
			return a.scope
		}
	}
	return s.scope
}

func (s *Session) lookup(n Node, name string) *align.Alignment {
	if name == "" {
		return nil
	}
	a := s.scopeOf(n).Lookup(name)
	if a == nil {
		s.log.Warn("unknown alignment", "name", name)
	}
	return a
}

// =============================================================================
// Bricks
// =============================================================================

// build creates the brick for l. The brick is not placed.
func (s *Session) build(l leaf) *wall.Brick {
	var b *wall.Brick
	switch l := l.(type) {
	case *Text:
		b = wall.NewBrick(l, l.text, s.measure.Measure(l.text))
		if l.alignment != "" {
			b.SetAlignment(s.lookup(l, l.alignment))
		}
	case *Space:
		b = wall.NewBrick(l, "", geom.Span{Converse: l.width})
		s.wall.SetSplit(b, s.breaks(l))
	}
	r := l.ref()
	r.brick = b
	b.AddAttachment(r)
	s.selection.built(l, b)
	s.hover.built(l, b)
	return b
}

func (s *Session) breaks(sp *Space) bool {
	switch sp.mode {
	case BreakAlways:
		return true
	case BreakWhenExpanded:
		a := sp.controller()
		return a != nil && a.expanded
	}
	return false
}

// realize materializes the visible leaves of n next to an already
// materialized neighbor. Without one, n is left to the fill tasks.
func (s *Session) realize(n Node) {
	ls := s.leaves(n)
	if len(ls) == 0 || s.wall.FirstBrick() == nil {
		return
	}
	if prev := s.prevLeaf(ls[0]); prev != nil && prev.ref().brick != nil {
		at := prev.ref().brick
		for _, l := range ls {
			b := s.build(l)
			s.wall.InsertAfter(at, b)
			at = b
		}
		return
	}
	if next := s.nextLeaf(ls[len(ls)-1]); next != nil && next.ref().brick != nil {
		at := next.ref().brick
		for _, l := range ls {
			s.wall.InsertBefore(at, s.build(l))
		}
	}
}

// unrealize destroys the bricks of n's visible leaves.
func (s *Session) unrealize(n Node) {
	for _, l := range s.leaves(n) {
		if b := l.ref().brick; b != nil {
			s.wall.Remove(b)
		}
	}
}

// anchor clears the wall and anchors it at the selection, or at the first
// leaf of the window.
func (s *Session) anchor() {
	var target leaf
	if sel := s.selection.node; sel != nil && s.visible(sel) {
		target = s.firstLeaf(sel)
	}
	if target == nil {
		target = s.firstLeaf(s.window())
	}
	if target == nil {
		s.wall.Clear()
		return
	}
	b := target.ref().brick
	if b == nil {
		b = s.build(target)
	}
	s.wall.SetCornerstone(b)
}

// reanchor anchors an unanchored wall at a brick it still holds,
// preferring the selection.
func (s *Session) reanchor() {
	if sel := s.selection.node; sel != nil {
		if l := s.firstLeaf(sel); l != nil && l.ref().brick != nil {
			s.wall.SetCornerstone(l.ref().brick)
			return
		}
	}
	if b := s.wall.FirstBrick(); b != nil {
		s.wall.SetCornerstone(b)
		return
	}
	s.anchor()
}

// =============================================================================
// Width
// =============================================================================

// Resize changes the converse budget.
func (s *Session) Resize(width int) error {
	s.mustOpen()
	if err := errors.ValidateWidth(width); err != nil {
		return err
	}
	old := s.width
	if width == old {
		return nil
	}
	s.width = width
	// The settled layout depends only on the tree and the width.
	s.expand.reset()
	s.queue.Schedule(s.compact)
	s.log.Debug("resize", "from", old, "to", width)
	return nil
}

// =============================================================================
// Selection
// =============================================================================

// Select selects n and anchors the wall at it. A node hidden by ellipsis
// is windowed into when AutoWindow is configured, otherwise Select fails.
// A nil n clears the selection.
func (s *Session) Select(n Node) error {
	s.mustOpen()
	if n == nil {
		s.selection.clear()
		return nil
	}
	if n.base().session != s {
		return errors.New(errors.ErrCodeInvalidInput, "%v is not part of this session", n)
	}
	if !s.visible(n) {
		if !s.cfg.Layout.AutoWindow {
			return errors.New(errors.ErrCodeInvalidInput, "%v is hidden by the current window", n)
		}
		s.windowTo(n)
	}

	if s.selection.border == nil {
		s.selection.open(s)
	}
	s.selection.node = n
	s.selection.retrack(s)

	if l := s.firstLeaf(n); l != nil {
		if b := l.ref().brick; b != nil {
			s.wall.SetCornerstone(b)
		} else {
			s.anchor()
		}
	}
	return nil
}

// Hover outlines n without moving the anchor. Nodes that are not visible
// clear the hover.
func (s *Session) Hover(n Node) {
	s.mustOpen()
	if n == nil || n.base().session != s || !s.visible(n) {
		s.hover.clear()
		return
	}
	if s.hover.border == nil {
		s.hover.open(s)
	}
	s.hover.node = n
	s.hover.retrack(s)
}

// =============================================================================
// Scheduling
// =============================================================================

// Settle runs idle work until none remains, or fails with NOT_QUIESCENT
// after the configured step limit.
func (s *Session) Settle() error {
	s.mustOpen()
	steps, err := s.queue.RunUntilIdle(s.cfg.Scheduler.StepLimit)
	s.log.Debug("settle", "steps", steps, "courses", s.wall.CourseCount())
	return err
}

// Run performs idle work for at most budget, or the configured budget if
// budget is zero. It reports whether work remains.
func (s *Session) Run(ctx context.Context, budget time.Duration) (bool, error) {
	s.mustOpen()
	if budget <= 0 {
		budget = s.cfg.Scheduler.Budget.Duration
	}
	return s.queue.Run(ctx, budget)
}

// Close releases overlays and the wall. The session cannot be used
// afterwards.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.selection.clear()
	s.hover.clear()
	s.queue.Cancel(s.layBefore)
	s.queue.Cancel(s.layAfter)
	s.queue.Cancel(s.expand)
	s.queue.Cancel(s.compact)
	s.wall.Destroy()
	if s.root != nil {
		s.detach(s.root)
	}
	s.closed = true
}
