package wall

import (
	"slices"

	"github.com/matzehuels/mortar/pkg/align"
)

// layoutTask recomputes converse positions, one dirty course per step.
//
// A brick sits at the previous brick's edge, or at its alignment's column
// when that is further along. The first brick of an alignment in a course
// participates in the alignment; later bricks of the same alignment in the
// same course only follow it, otherwise a line could push its own column
// outward without bound.
type layoutTask struct {
	wall  *Wall
	dirty []*Course
}

func (t *layoutTask) Priority() int { return PriorityLayout }

func (t *layoutTask) Step() bool {
	for len(t.dirty) > 0 {
		c := t.dirty[0]
		t.dirty[0] = nil
		t.dirty = t.dirty[1:]
		c.queued = false
		if c.destroyed {
			continue
		}
		t.wall.layoutCourse(c)
		break
	}
	return len(t.dirty) > 0
}

func (w *Wall) layoutCourse(c *Course) {
	previous := c.edge
	pos := 0
	var seen []*align.Alignment
	for _, b := range c.bricks {
		x := pos
		if a := b.alignment; a != nil {
			if !slices.Contains(seen, a) {
				seen = append(seen, a)
				b.participate(pos)
			} else {
				b.follow()
			}
			if a.Resolved() {
				x = max(pos, a.Value())
			}
		}
		b.setConverse(x)
		pos = b.Edge()
	}
	c.edge = pos
	for _, l := range append([]CourseListener(nil), w.courseListeners...) {
		l.CourseLaidOut(c, previous)
	}
}
