package visual

import (
	"github.com/matzehuels/mortar/pkg/geom"
	"github.com/matzehuels/mortar/pkg/overlay"
	"github.com/matzehuels/mortar/pkg/wall"
)

// highlight is an outlined node: the selection or the hover.
type highlight struct {
	node    Node
	padding int
	border  *overlay.Border

	// first and last visible leaves of node; their bricks may not exist
	// yet and are picked up by built when the fill tasks create them.
	first leaf
	last  leaf
}

func (h *highlight) open(s *Session) {
	h.border = overlay.NewBorder(s.wall, h.padding)
}

func (h *highlight) clear() {
	if h.border != nil {
		h.border.Close()
		h.border = nil
	}
	h.node = nil
	h.first, h.last = nil, nil
}

func (h *highlight) retrack(s *Session) {
	if h.border == nil {
		return
	}
	h.first, h.last = nil, nil
	if h.node != nil && s.visible(h.node) {
		h.first = s.firstLeaf(h.node)
		h.last = s.lastLeaf(h.node)
	}
	h.border.SetFirst(brickOf(h.first))
	h.border.SetLast(brickOf(h.last))
}

func (h *highlight) built(l leaf, b *wall.Brick) {
	if h.border == nil {
		return
	}
	if l == h.first {
		h.border.SetFirst(b)
	}
	if l == h.last {
		h.border.SetLast(b)
	}
}

func (h *highlight) rect() (geom.Rect, bool) {
	if h.border == nil {
		return geom.Rect{}, false
	}
	return h.border.Rect()
}

func (h *highlight) bricks() (first, last *wall.Brick) {
	if h.border == nil {
		return nil, nil
	}
	return h.border.First(), h.border.Last()
}

func brickOf(l leaf) *wall.Brick {
	if l == nil {
		return nil
	}
	return l.ref().brick
}
