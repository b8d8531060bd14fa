package visual

import (
	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/observability"
)

// window returns the current window root.
func (s *Session) window() Node {
	if n := len(s.windows); n > 0 {
		return s.windows[n-1]
	}
	return s.root
}

// Window returns the current window root: the innermost atom passed to
// SetWindow, or the tree root.
func (s *Session) Window() Node { return s.window() }

// ellipsized reports whether a renders as its placeholder in the current
// window.
func (s *Session) ellipsized(a *Atom) bool {
	return s.ellipsizedUnder(a, s.window())
}

// ellipsizedUnder reports whether a would render as its placeholder with
// root as the window root: when it is nested more than the threshold below
// root. Depth is carried on the nodes, so the check does not walk.
func (s *Session) ellipsizedUnder(a *Atom, root Node) bool {
	threshold := s.cfg.Layout.EllipsizeThreshold
	if threshold <= 0 || root == nil || Node(a) == root {
		return false
	}
	return a.depth-root.base().depth > threshold
}

// flips returns the outermost atoms under n whose ellipsis differs between
// window roots from and to, in document order.
func (s *Session) flips(n, from, to Node) []*Atom {
	var out []*Atom
	var walk func(Node)
	walk = func(n Node) {
		if a, ok := n.(*Atom); ok {
			was, now := s.ellipsizedUnder(a, from), s.ellipsizedUnder(a, to)
			if was != now {
				out = append(out, a)
				return
			}
			if was {
				return
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(n)
	return out
}

// SetWindow makes a the window root. a must be inside the current window.
// Bricks outside a are uprooted and only atoms whose ellipsis changes are
// rebuilt; the rest of the wall is kept.
func (s *Session) SetWindow(a *Atom) error {
	s.mustOpen()
	if a == nil || a.session != s {
		return errors.New(errors.ErrCodeInvalidInput, "window root is not part of this session")
	}
	old := s.window()
	if Node(a) == old {
		return nil
	}
	if !inside(a, old) {
		return errors.New(errors.ErrCodeInvalidInput, "%v is outside the current window", a)
	}

	flipped := s.flips(a, old, a)
	s.uproot(a)
	for _, f := range flipped {
		s.unrealize(f)
	}
	s.windows = append(s.windows, a)
	for _, f := range flipped {
		s.realize(f)
	}
	s.afterEdit()

	observability.Layout().OnWindow(a.name, a.depth)
	s.log.Debug("window", "atom", a.name, "depth", a.depth, "rebuilt", len(flipped))
	return nil
}

// PopWindow restores the previous window root. It reports false when no
// window is set.
func (s *Session) PopWindow() bool {
	s.mustOpen()
	n := len(s.windows)
	if n == 0 {
		return false
	}
	old := s.windows[n-1]
	var parent Node = s.root
	if n > 1 {
		parent = s.windows[n-2]
	}

	flipped := s.flips(old, old, parent)
	for _, f := range flipped {
		s.unrealize(f)
	}
	s.windows = s.windows[:n-1]
	for _, f := range flipped {
		s.realize(f)
	}
	s.afterEdit()

	w := s.window()
	depth := w.base().depth
	name := ""
	if a, ok := w.(*Atom); ok {
		name = a.name
	}
	observability.Layout().OnWindow(name, depth)
	s.log.Debug("pop window", "depth", depth, "rebuilt", len(flipped))
	return true
}

// popTo drops window i and every window above it and rebuilds the wall
// from scratch. It is used when a window root leaves the tree.
func (s *Session) popTo(i int) {
	s.windows = s.windows[:i]
	s.wall.Clear()
}

// uproot destroys bricks outside root, from both ends of the run.
func (s *Session) uproot(root Node) {
	w := s.wall
	for b := w.FirstBrick(); b != nil && !inside(b.Owner.(Node), root); b = w.FirstBrick() {
		w.Remove(b)
	}
	for b := w.LastBrick(); b != nil && !inside(b.Owner.(Node), root); b = w.LastBrick() {
		w.Remove(b)
	}
}

// windowTo moves the window until n is visible: out of windows that do
// not contain n, then into the outermost atom hiding it, repeatedly.
func (s *Session) windowTo(n Node) {
	for !inside(n, s.window()) && s.PopWindow() {
	}
	for s.hidden(n) {
		var outer *Atom
		root := s.window()
		for p := n.Parent(); p != nil && p != root; p = p.Parent() {
			if a, ok := p.(*Atom); ok && s.ellipsized(a) {
				outer = a
			}
		}
		if outer == nil || s.SetWindow(outer) != nil {
			return
		}
	}
}
