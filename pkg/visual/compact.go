package visual

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mortar/pkg/observability"
	"github.com/matzehuels/mortar/pkg/wall"
)

// expandTask splits arrays on overflowing courses, one array per step.
//
// It also listens to converse layout: a course that ends past the width
// is queued here, and a course that got shorter may let the compaction
// sweep merge something back.
type expandTask struct {
	s       *Session
	courses []*wall.Course
}

func (t *expandTask) Priority() int { return PriorityExpand }

// CourseLaidOut implements wall.CourseListener.
func (t *expandTask) CourseLaidOut(c *wall.Course, previous int) {
	if c.Edge() > t.s.width {
		t.push(c)
	}
	if c.Edge() < previous {
		t.s.queue.Schedule(t.s.compact)
	}
}

func (t *expandTask) push(c *wall.Course) {
	if slices.Contains(t.courses, c) {
		return
	}
	t.courses = append(t.courses, c)
	t.s.queue.Schedule(t)
}

// Step expands one array of the overflowing course nearest the start of
// the wall. Courses are taken in wall order, not queue order, so the
// arrays expanded from a given layout and width are always the same.
func (t *expandTask) Step() bool {
	for c := t.next(); c != nil; c = t.next() {
		if c.Edge() <= t.s.width {
			continue
		}
		if a := t.s.candidate(c); a != nil {
			t.s.setExpanded(a, true)
			break
		}
	}
	return len(t.courses) > 0
}

// next removes and returns the live queued course with the lowest index,
// or nil when none is left.
func (t *expandTask) next() *wall.Course {
	t.courses = slices.DeleteFunc(t.courses, (*wall.Course).Destroyed)
	if len(t.courses) == 0 {
		return nil
	}
	first := 0
	for i, c := range t.courses {
		if c.Index() < t.courses[first].Index() {
			first = i
		}
	}
	c := t.courses[first]
	t.courses = slices.Delete(t.courses, first, first+1)
	return c
}

// reset compacts every expanded array and queues the courses that then
// overflow, so that expansion starts over from the compact layout.
func (t *expandTask) reset() {
	s := t.s
	for _, a := range slices.Clone(s.expanded) {
		s.setExpanded(a, false)
	}
	for _, c := range s.wall.Courses() {
		if c.Edge() > s.width {
			t.push(c)
		}
	}
}

// candidate picks the array to expand for an overflowing course: among
// compact splittable arrays with a split space past the start of c, the
// one with the lowest precedence, outermost first.
func (s *Session) candidate(c *wall.Course) *Array {
	if c.Len() < 2 {
		return nil
	}
	var best *Array
	for _, b := range c.Bricks()[1:] {
		sp, ok := b.Owner.(*Space)
		if !ok || sp.mode != BreakWhenExpanded {
			continue
		}
		a := sp.controller()
		if a == nil || a.expanded || !a.style.Splittable {
			continue
		}
		if best == nil || expandOrder(a, best) < 0 {
			best = a
		}
	}
	return best
}

func expandOrder(a, b *Array) int {
	if c := cmp.Compare(a.style.Precedence, b.style.Precedence); c != 0 {
		return c
	}
	return cmp.Compare(a.level, b.level)
}

// compactTask merges expanded arrays back, one array per step.
type compactTask struct {
	s *Session
}

func (t *compactTask) Priority() int { return PriorityCompact }

func (t *compactTask) Step() bool {
	s := t.s
	order := slices.Clone(s.expanded)
	slices.SortStableFunc(order, func(a, b *Array) int { return expandOrder(b, a) })
	for _, a := range order {
		if s.blocked(a) || !s.fits(a) {
			continue
		}
		s.setExpanded(a, false)
		return true
	}
	return false
}

// blocked reports whether an expanded array of strictly higher precedence
// encloses a or is enclosed by it. Such an array has to compact first, or
// a would be merged against a layout that is about to change.
func (s *Session) blocked(a *Array) bool {
	for p := a.parent; p != nil; p = p.Parent() {
		if o, ok := p.(*Array); ok && o.expanded && o.style.Precedence > a.style.Precedence {
			return true
		}
	}
	for _, o := range s.expanded {
		if o != a && o.style.Precedence > a.style.Precedence && inside(o, a) {
			return true
		}
	}
	return false
}

// fits predicts whether compacting a keeps every course within the width.
// Each run of courses started by a's split spaces merges into the course
// before it, and the merged width is the sum of their edges. A run that
// exactly fills the width fits.
func (s *Session) fits(a *Array) bool {
	starts := map[int]bool{}
	for _, sp := range s.breaksOf(a) {
		b := sp.brick
		if b == nil || b.Course() == nil || b.Index() != 0 {
			continue
		}
		if i := b.Course().Index(); i > 0 {
			starts[i] = true
		}
	}
	for i := range starts {
		if starts[i-1] {
			continue
		}
		width := s.wall.Course(i - 1).Edge()
		for j := i; starts[j]; j++ {
			width += s.wall.Course(j).Edge()
		}
		if width > s.width {
			return false
		}
	}
	return true
}

// breaksOf returns the spaces a's state decides: its own split spaces and
// any BreakWhenExpanded space nested in its elements outside of an inner
// array.
func (s *Session) breaksOf(a *Array) []*Space {
	out := slices.Clone(a.spaces)
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Space:
			if n.mode == BreakWhenExpanded && n.array == nil {
				out = append(out, n)
			}
			return
		case *Array:
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, e := range a.elements {
		walk(e)
	}
	return out
}

func (s *Session) setExpanded(a *Array, expanded bool) {
	a.expanded = expanded
	if expanded {
		s.expanded = append(s.expanded, a)
		observability.Layout().OnExpand(a.style.Name, a.style.Precedence, a.level)
		s.log.Debug("expand", "array", a.style.Name, "precedence", a.style.Precedence, "level", a.level)
	} else {
		s.dropExpanded(a)
		observability.Layout().OnCompact(a.style.Name, a.style.Precedence, a.level)
		s.log.Debug("compact", "array", a.style.Name, "precedence", a.style.Precedence, "level", a.level)
	}
	for _, sp := range s.breaksOf(a) {
		if b := sp.brick; b != nil {
			s.wall.SetSplit(b, s.breaks(sp))
		}
	}
}

func (s *Session) dropExpanded(a *Array) {
	s.expanded = slices.DeleteFunc(s.expanded, func(o *Array) bool { return o == a })
}
