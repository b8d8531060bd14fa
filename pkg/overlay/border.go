// Package overlay provides decorations that follow bricks around a wall.
//
// A [Border] outlines the range between a first and a last brick. It
// learns about movement through brick attachments, so it never polls the
// wall, and it can reserve bedding around the cornerstone's course so the
// outline has room to be drawn.
package overlay

import (
	"github.com/matzehuels/mortar/pkg/geom"
	"github.com/matzehuels/mortar/pkg/wall"
)

// Border tracks the rectangle covered by a run of bricks.
type Border struct {
	wall    *wall.Wall
	padding int
	bedding *wall.Bedding

	first *wall.Brick
	last  *wall.Brick

	// OnChange, if set, is called with the new rectangle whenever a
	// tracked brick moves, resizes or is destroyed.
	OnChange func(r geom.Rect, ok bool)
}

// NewBorder returns a border on w. A positive padding is reserved as
// bedding on both sides of the cornerstone's course until Close.
func NewBorder(w *wall.Wall, padding int) *Border {
	b := &Border{wall: w, padding: padding}
	if padding > 0 {
		b.bedding = &wall.Bedding{Before: padding, After: padding}
		w.AddBedding(b.bedding)
	}
	return b
}

// First returns the tracked first brick, or nil.
func (b *Border) First() *wall.Brick { return b.first }

// Last returns the tracked last brick, or nil.
func (b *Border) Last() *wall.Brick { return b.last }

// SetFirst starts tracking br as the first brick.
func (b *Border) SetFirst(br *wall.Brick) {
	if br == b.first {
		return
	}
	old := b.first
	b.first = br
	b.release(old)
	b.watch(br, b.last)
	b.changed()
}

// SetLast starts tracking br as the last brick.
func (b *Border) SetLast(br *wall.Brick) {
	if br == b.last {
		return
	}
	old := b.last
	b.last = br
	b.release(old)
	b.watch(br, b.first)
	b.changed()
}

// watch attaches to br unless other already holds the attachment.
func (b *Border) watch(br, other *wall.Brick) {
	if br == nil || br == other {
		return
	}
	br.AddAttachment(b)
}

// release detaches from br unless it is still tracked at either end.
func (b *Border) release(br *wall.Brick) {
	if br == nil || br == b.first || br == b.last {
		return
	}
	br.RemoveAttachment(b)
}

// BrickChanged implements wall.Attachment.
func (b *Border) BrickChanged(ev wall.Event) {
	if ev.Kind == wall.EventDestroyed {
		if ev.Brick == b.first {
			b.first = nil
		}
		if ev.Brick == b.last {
			b.last = nil
		}
	}
	b.changed()
}

func (b *Border) changed() {
	if b.OnChange != nil {
		b.OnChange(b.Rect())
	}
}

// Rect returns the outline and whether the border tracks any brick.
//
// A run inside one course spans from the first brick to the end of the
// last. A run across courses spans the full converse width of the courses
// it touches. Padding widens the outline transversely.
func (b *Border) Rect() (geom.Rect, bool) {
	first, last := b.first, b.last
	if first == nil {
		first = last
	}
	if last == nil {
		last = first
	}
	if first == nil || first.Course() == nil || last.Course() == nil {
		return geom.Rect{}, false
	}
	fc, lc := first.Course(), last.Course()
	r := geom.Rect{
		Start: geom.Point{Converse: first.Converse(), Transverse: fc.Transverse()},
		End:   geom.Point{Converse: last.Edge(), Transverse: lc.TransverseEdge()},
	}
	if fc != lc {
		r.Start.Converse = 0
		for i := fc.Index(); i <= lc.Index(); i++ {
			r.End.Converse = max(r.End.Converse, b.wall.Course(i).Edge())
		}
	}
	r.Start.Transverse -= b.padding
	r.End.Transverse += b.padding
	return r, true
}

// Close detaches from the tracked bricks and releases the bedding.
func (b *Border) Close() {
	first, last := b.first, b.last
	b.first, b.last = nil, nil
	for _, br := range []*wall.Brick{first, last} {
		if br != nil && !br.Destroyed() {
			br.RemoveAttachment(b)
		}
	}
	if b.bedding != nil {
		b.wall.RemoveBedding(b.bedding)
		b.bedding = nil
	}
}
