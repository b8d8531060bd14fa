package wall

import (
	"fmt"

	"github.com/matzehuels/mortar/pkg/align"
	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/geom"
)

// EventKind identifies which brick attribute changed.
type EventKind int

const (
	EventConverse EventKind = iota
	EventConverseSpan
	EventTransverse
	EventTransverseSpan
	EventDestroyed
)

func (k EventKind) String() string {
	switch k {
	case EventConverse:
		return "converse"
	case EventConverseSpan:
		return "converse-span"
	case EventTransverse:
		return "transverse"
	case EventTransverseSpan:
		return "transverse-span"
	case EventDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event describes a geometry change on a brick.
type Event struct {
	Kind  EventKind
	Brick *Brick
}

// Attachment receives geometry events from the bricks it is attached to.
// Borders and other decorations use attachments to follow bricks without
// the wall knowing what they draw.
type Attachment interface {
	BrickChanged(ev Event)
}

type alignState int

const (
	unaligned alignState = iota
	participating
	following
)

// Brick is the smallest positioned unit of the layout.
//
// A brick is created unattached, placed into a wall with [Wall.InsertAfter]
// or [Wall.InsertBefore], and destroyed by [Wall.Remove] or when its wall
// is cleared. Bricks never reference their wall directly; the owning
// course is a non-owning back reference that is nil while unattached.
type Brick struct {
	// Owner is an opaque reference to whatever created the brick.
	Owner any

	label      string
	converse   int
	transverse int
	span       geom.Span
	split      bool

	course      *Course
	alignment   *align.Alignment
	alignMode   alignState
	attachments []Attachment
	destroyed   bool
}

// NewBrick returns an unattached brick.
func NewBrick(owner any, label string, span geom.Span) *Brick {
	return &Brick{Owner: owner, label: label, span: span}
}

func (b *Brick) mustLive() {
	if b.destroyed {
		errors.Destroyed("brick")
	}
}

// Label returns the brick's display text.
func (b *Brick) Label() string { return b.label }

// SetLabel changes the display text. It does not change geometry; callers
// update the span separately.
func (b *Brick) SetLabel(label string) {
	b.mustLive()
	b.label = label
}

// Converse returns the converse position.
func (b *Brick) Converse() int { return b.converse }

// Transverse returns the transverse position, which is always the owning
// course's transverse start.
func (b *Brick) Transverse() int { return b.transverse }

// Span returns the brick's extent.
func (b *Brick) Span() geom.Span { return b.span }

// Edge returns the converse position just past the brick.
func (b *Brick) Edge() int { return b.span.Edge(b.converse) }

// Course returns the owning course, or nil while unattached.
func (b *Brick) Course() *Course { return b.course }

// Split reports whether the brick starts a new course.
func (b *Brick) Split() bool { return b.split }

// Alignment returns the brick's alignment, or nil.
func (b *Brick) Alignment() *align.Alignment { return b.alignment }

// Participating reports whether the brick currently counts toward its
// alignment's consensus.
func (b *Brick) Participating() bool { return b.alignMode == participating }

// Destroyed reports whether the brick has been destroyed.
func (b *Brick) Destroyed() bool { return b.destroyed }

// Index returns the brick's position in its course, or -1.
func (b *Brick) Index() int {
	if b.course == nil {
		return -1
	}
	for i, o := range b.course.bricks {
		if o == b {
			return i
		}
	}
	return -1
}

// Rect returns the area the brick covers, with the transverse extent of
// its course.
func (b *Brick) Rect() geom.Rect {
	height := b.span.Transverse()
	if b.course != nil {
		height = b.course.TransverseSpan()
	}
	return geom.Rect{
		Start: geom.Point{Converse: b.converse, Transverse: b.transverse},
		End:   geom.Point{Converse: b.Edge(), Transverse: b.transverse + height},
	}
}

// SetSpan changes the brick's extent and schedules the relayout it needs.
func (b *Brick) SetSpan(span geom.Span) {
	b.mustLive()
	old := b.span
	if old == span {
		return
	}
	b.span = span
	if old.Converse != span.Converse {
		b.fire(EventConverseSpan)
		if b.course != nil {
			b.course.wall.markDirty(b.course)
		}
	}
	if old.Ascent != span.Ascent || old.Descent != span.Descent {
		b.fire(EventTransverseSpan)
		if b.course != nil {
			b.course.recalcSpan()
		}
	}
}

// SetAlignment aligns the brick to a (nil clears it).
func (b *Brick) SetAlignment(a *align.Alignment) {
	b.mustLive()
	if b.alignment == a {
		return
	}
	b.unalign()
	b.alignment = a
	if b.course != nil {
		b.course.wall.markDirty(b.course)
	}
}

// Realign implements align.Participant.
func (b *Brick) Realign() {
	if b.destroyed || b.course == nil {
		return
	}
	b.course.wall.markDirty(b.course)
}

// AddAttachment subscribes a to geometry events. Adding the same
// attachment twice panics.
func (b *Brick) AddAttachment(a Attachment) {
	b.mustLive()
	for _, o := range b.attachments {
		if o == a {
			errors.Violation("attachment registered twice on brick %q", b.label)
		}
	}
	b.attachments = append(b.attachments, a)
}

// RemoveAttachment unsubscribes a. Unknown attachments are ignored so
// that decorations can detach from bricks that were already destroyed.
func (b *Brick) RemoveAttachment(a Attachment) {
	for i, o := range b.attachments {
		if o == a {
			b.attachments = append(b.attachments[:i], b.attachments[i+1:]...)
			return
		}
	}
}

func (b *Brick) fire(kind EventKind) {
	if len(b.attachments) == 0 {
		return
	}
	ev := Event{Kind: kind, Brick: b}
	for _, a := range append([]Attachment(nil), b.attachments...) {
		a.BrickChanged(ev)
	}
}

func (b *Brick) setConverse(x int) {
	if b.converse == x {
		return
	}
	b.converse = x
	b.fire(EventConverse)
}

func (b *Brick) setTransverse(t int) {
	if b.transverse == t {
		return
	}
	b.transverse = t
	b.fire(EventTransverse)
}

// participate registers the brick's minimum converse with its alignment.
func (b *Brick) participate(extent int) {
	switch b.alignMode {
	case participating:
		b.alignment.Update(b, extent)
		return
	case following:
		b.alignment.Unfollow(b)
	}
	b.alignMode = participating
	b.alignment.Register(b, extent)
}

func (b *Brick) follow() {
	switch b.alignMode {
	case following:
		return
	case participating:
		b.alignMode = following
		b.alignment.Follow(b)
		b.alignment.Unregister(b)
		return
	}
	b.alignMode = following
	b.alignment.Follow(b)
}

func (b *Brick) unalign() {
	switch b.alignMode {
	case participating:
		b.alignment.Unregister(b)
	case following:
		b.alignment.Unfollow(b)
	}
	b.alignMode = unaligned
}

func (b *Brick) destroy() {
	if b.destroyed {
		return
	}
	if b.alignment != nil {
		b.unalign()
	}
	b.course = nil
	b.destroyed = true
	b.fire(EventDestroyed)
	b.attachments = nil
}

func (b *Brick) String() string {
	return fmt.Sprintf("brick %q at %d %v", b.label, b.converse, b.span)
}
