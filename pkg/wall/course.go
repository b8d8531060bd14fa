package wall

import (
	"fmt"

	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/geom"
)

// Course is one line of bricks.
type Course struct {
	wall       *Wall
	index      int
	bricks     []*Brick
	transverse int
	ascent     int
	descent    int
	edge       int

	pending   bool
	queued    bool
	destroyed bool
}

func newCourse(w *Wall) *Course {
	return &Course{wall: w, pending: true}
}

func (c *Course) mustLive() {
	if c.destroyed {
		errors.Destroyed("course")
	}
}

// Index returns the course's position in its wall.
func (c *Course) Index() int { return c.index }

// Len returns the number of bricks.
func (c *Course) Len() int { return len(c.bricks) }

// Brick returns the i-th brick.
func (c *Course) Brick(i int) *Brick { return c.bricks[i] }

// Bricks returns the course's bricks in order. The slice must not be
// modified.
func (c *Course) Bricks() []*Brick { return c.bricks }

// First returns the first brick, or nil.
func (c *Course) First() *Brick {
	if len(c.bricks) == 0 {
		return nil
	}
	return c.bricks[0]
}

// Last returns the last brick, or nil.
func (c *Course) Last() *Brick {
	if len(c.bricks) == 0 {
		return nil
	}
	return c.bricks[len(c.bricks)-1]
}

// Transverse returns the course's transverse start.
func (c *Course) Transverse() int { return c.transverse }

// TransverseSpan returns the course's height: the largest ascent plus the
// largest descent of its bricks.
func (c *Course) TransverseSpan() int { return c.ascent + c.descent }

// TransverseEdge returns the transverse coordinate just past the course.
func (c *Course) TransverseEdge() int { return c.transverse + c.TransverseSpan() }

// Edge returns the converse position just past the last brick as of the
// most recent converse layout.
func (c *Course) Edge() int { return c.edge }

// Span returns the course's converse edge and transverse extents.
func (c *Course) Span() geom.Span {
	return geom.Span{Converse: c.edge, Ascent: c.ascent, Descent: c.descent}
}

// Pending reports whether the course's transverse position is known to be
// stale relative to its neighbor toward the cornerstone.
func (c *Course) Pending() bool { return c.pending }

// Destroyed reports whether the course has been removed from its wall.
func (c *Course) Destroyed() bool { return c.destroyed }

func (c *Course) insert(at int, bricks ...*Brick) {
	c.mustLive()
	for _, b := range bricks {
		b.mustLive()
		if b.course != nil {
			errors.Violation("brick %q is already placed", b.label)
		}
		b.course = c
		b.setTransverse(c.transverse)
	}
	c.bricks = append(c.bricks[:at], append(append([]*Brick(nil), bricks...), c.bricks[at:]...)...)
	c.recalcSpan()
	c.wall.markDirty(c)
}

func (c *Course) removeAt(at int) *Brick {
	b := c.bricks[at]
	c.bricks = append(c.bricks[:at], c.bricks[at+1:]...)
	b.course = nil
	c.recalcSpan()
	c.wall.markDirty(c)
	return b
}

// detachFrom removes and returns the bricks from at onward.
func (c *Course) detachFrom(at int) []*Brick {
	tail := append([]*Brick(nil), c.bricks[at:]...)
	c.bricks = c.bricks[:at]
	for _, b := range tail {
		b.course = nil
	}
	c.recalcSpan()
	c.wall.markDirty(c)
	return tail
}

func (c *Course) recalcSpan() {
	ascent, descent := 0, 0
	for _, b := range c.bricks {
		ascent = max(ascent, b.span.Ascent)
		descent = max(descent, b.span.Descent)
	}
	if ascent == c.ascent && descent == c.descent {
		return
	}
	c.ascent, c.descent = ascent, descent
	c.wall.spanChanged(c)
}

func (c *Course) setTransverse(t int) {
	c.pending = false
	if c.transverse == t {
		return
	}
	c.transverse = t
	for _, b := range c.bricks {
		b.setTransverse(t)
	}
}

func (c *Course) destroy() {
	for _, b := range c.bricks {
		b.destroy()
	}
	c.bricks = nil
	c.destroyed = true
}

func (c *Course) String() string {
	return fmt.Sprintf("course %d at %d (%d bricks, edge %d)", c.index, c.transverse, len(c.bricks), c.edge)
}
