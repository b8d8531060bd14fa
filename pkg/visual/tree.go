package visual

import "slices"

// visibleChildren returns the children that render: an ellipsized atom
// shows only its placeholder.
func (s *Session) visibleChildren(n Node) []Node {
	if a, ok := n.(*Atom); ok && s.ellipsized(a) {
		return []Node{a.placeholder}
	}
	return n.Children()
}

func (s *Session) firstLeaf(n Node) leaf {
	if l, ok := n.(leaf); ok {
		return l
	}
	for _, c := range s.visibleChildren(n) {
		if l := s.firstLeaf(c); l != nil {
			return l
		}
	}
	return nil
}

func (s *Session) lastLeaf(n Node) leaf {
	if l, ok := n.(leaf); ok {
		return l
	}
	kids := s.visibleChildren(n)
	for i := len(kids) - 1; i >= 0; i-- {
		if l := s.lastLeaf(kids[i]); l != nil {
			return l
		}
	}
	return nil
}

// nextLeaf returns the visible leaf after n in document order, staying
// inside the window.
func (s *Session) nextLeaf(n Node) leaf {
	root := s.window()
	for n != root {
		p := n.Parent()
		if p == nil {
			return nil
		}
		kids := s.visibleChildren(p)
		for _, k := range kids[slices.Index(kids, n)+1:] {
			if l := s.firstLeaf(k); l != nil {
				return l
			}
		}
		n = p
	}
	return nil
}

// prevLeaf returns the visible leaf before n in document order, staying
// inside the window.
func (s *Session) prevLeaf(n Node) leaf {
	root := s.window()
	for n != root {
		p := n.Parent()
		if p == nil {
			return nil
		}
		kids := s.visibleChildren(p)
		for i := slices.Index(kids, n) - 1; i >= 0; i-- {
			if l := s.lastLeaf(kids[i]); l != nil {
				return l
			}
		}
		n = p
	}
	return nil
}

// leaves returns the visible leaves of n in document order.
func (s *Session) leaves(n Node) []leaf {
	var out []leaf
	var walk func(Node)
	walk = func(n Node) {
		if l, ok := n.(leaf); ok {
			out = append(out, l)
			return
		}
		for _, c := range s.visibleChildren(n) {
			walk(c)
		}
	}
	walk(n)
	return out
}

// inside reports whether n is root or one of its descendants.
func inside(n, root Node) bool {
	for ; n != nil; n = n.Parent() {
		if n == root {
			return true
		}
	}
	return false
}

// hidden reports whether an ellipsized atom strictly above n, below the
// window root, hides it.
func (s *Session) hidden(n Node) bool {
	root := s.window()
	child := n
	for p := n.Parent(); p != nil && p != root; child, p = p, p.Parent() {
		a, ok := p.(*Atom)
		if !ok || !s.ellipsized(a) {
			continue
		}
		// The placeholder is what an ellipsized atom shows.
		if child != Node(a.placeholder) {
			return true
		}
	}
	return false
}

// visible reports whether n renders in the current window.
func (s *Session) visible(n Node) bool {
	return inside(n, s.window()) && !s.hidden(n)
}

// Path returns the child indexes leading from the root to n.
func Path(n Node) []int {
	var path []int
	for p := n.Parent(); p != nil; n, p = p, p.Parent() {
		path = append(path, slices.Index(p.Children(), n))
	}
	slices.Reverse(path)
	return path
}

// Find follows child indexes from n and returns the node reached, or nil.
func Find(n Node, path []int) Node {
	for _, i := range path {
		kids := n.Children()
		if i < 0 || i >= len(kids) {
			return nil
		}
		n = kids[i]
	}
	return n
}
