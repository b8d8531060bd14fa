// Package geom defines the two-axis coordinate types shared by the layout
// engine.
//
// Converse is the axis along a line (the direction text flows), transverse
// is the axis across lines. The engine never assumes an orientation, so a
// renderer may map converse to x (left-to-right scripts) or to y (vertical
// scripts) without any change to the layout code.
package geom

import "fmt"

// Span is the extent of a brick or course.
//
// Transverse extent is split around the baseline into Ascent (before) and
// Descent (after), so that bricks of different heights in one course share
// a baseline.
type Span struct {
	Converse int
	Ascent   int
	Descent  int
}

// Transverse returns the full transverse extent.
func (s Span) Transverse() int { return s.Ascent + s.Descent }

// Edge returns the converse coordinate just past a unit of this span that
// starts at start.
func (s Span) Edge(start int) int { return start + s.Converse }

// Merge returns a span covering the transverse extents of both spans. The
// converse extent is summed, as for two units placed end to end.
func (s Span) Merge(o Span) Span {
	return Span{
		Converse: s.Converse + o.Converse,
		Ascent:   max(s.Ascent, o.Ascent),
		Descent:  max(s.Descent, o.Descent),
	}
}

func (s Span) String() string {
	return fmt.Sprintf("%d×(%d+%d)", s.Converse, s.Ascent, s.Descent)
}

// Point is a position in converse/transverse space.
type Point struct {
	Converse   int
	Transverse int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Converse, p.Transverse)
}

// Rect is an axis-aligned region. End is exclusive on both axes.
type Rect struct {
	Start Point
	End   Point
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.End.Converse <= r.Start.Converse || r.End.Transverse <= r.Start.Transverse
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.Converse >= r.Start.Converse && p.Converse < r.End.Converse &&
		p.Transverse >= r.Start.Transverse && p.Transverse < r.End.Transverse
}
