// Package wall arranges bricks into courses and keeps their positions
// current with bounded, incremental work.
//
// # Model
//
// A [Wall] is an ordered list of [Course] values (lines); a course is an
// ordered list of [Brick] values. A brick is the first in its course iff it
// is the first brick of the wall or its split flag is set, and every
// structural call below preserves that rule before it returns.
//
// # Positions
//
// Converse positions (along a line) are computed per course by a layout
// task. Transverse positions (across lines) are derived outward from a
// single anchor, the cornerstone, by the adjust task: each step positions
// one course from its already-positioned neighbor toward the cornerstone.
// Courses strictly between the two adjust frontiers are exact; courses
// outside them are fixed up by later steps.
//
// Both tasks run on an [idle.Queue] supplied by the caller, so edits
// return immediately and positions catch up when the caller runs the
// queue.
//
// # Bedding
//
// Overlays such as a selection border may reserve extra transverse space
// immediately before and after the cornerstone's course. Contributions are
// summed; see [Wall.AddBedding].
package wall

import (
	"math"

	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/idle"
	"github.com/matzehuels/mortar/pkg/observability"
)

// Filler materializes bricks next to a new cornerstone.
type Filler interface {
	FillBefore(b *Brick)
	FillAfter(b *Brick)
}

// CornerstoneListener is notified when the cornerstone changes. A nil
// brick means the wall became unanchored.
type CornerstoneListener interface {
	CornerstoneChanged(b *Brick)
}

// BeddingListener is notified when the summed bedding changes.
type BeddingListener interface {
	BeddingChanged(before, after int)
}

// CourseListener is notified after a course's converse layout.
type CourseListener interface {
	CourseLaidOut(c *Course, previousEdge int)
}

// Bedding is one overlay's reservation of transverse space around the
// cornerstone's course.
type Bedding struct {
	Before int
	After  int
}

// State describes the wall's adjustment state.
type State int

const (
	// Unanchored walls have no cornerstone; no position can be trusted.
	Unanchored State = iota
	// Collapsed walls were just anchored: both frontiers sit next to the
	// cornerstone and no adjust step has run.
	Collapsed
	// Scanning walls have adjustment work in progress, including every
	// wall whose courses or bedding changed after anchoring.
	Scanning
	// Settled walls have every course positioned.
	Settled
)

func (s State) String() string {
	switch s {
	case Unanchored:
		return "unanchored"
	case Collapsed:
		return "collapsed"
	case Scanning:
		return "scanning"
	case Settled:
		return "settled"
	}
	return "unknown"
}

// Wall is the ordered sequence of courses for a rendered document.
type Wall struct {
	queue   *idle.Queue
	filler  Filler
	courses []*Course

	cornerstone       *Brick
	cornerstoneCourse *Course

	bedding       []*Bedding
	beddingBefore int
	beddingAfter  int

	cornerstoneListeners []CornerstoneListener
	beddingListeners     []BeddingListener
	courseListeners      []CourseListener

	adjust    *adjustTask
	layout    *layoutTask
	destroyed bool
}

// New returns an empty wall that schedules its work on q. filler may be
// nil.
func New(q *idle.Queue, filler Filler) *Wall {
	w := &Wall{queue: q, filler: filler}
	w.adjust = &adjustTask{wall: w, backward: math.MinInt, forward: math.MaxInt}
	w.layout = &layoutTask{wall: w}
	return w
}

func (w *Wall) mustLive() {
	if w.destroyed {
		errors.Destroyed("wall")
	}
}

// =============================================================================
// Queries
// =============================================================================

// CourseCount returns the number of courses.
func (w *Wall) CourseCount() int { return len(w.courses) }

// Course returns the i-th course.
func (w *Wall) Course(i int) *Course { return w.courses[i] }

// Courses returns a copy of the course list.
func (w *Wall) Courses() []*Course { return append([]*Course(nil), w.courses...) }

// Bricks returns every brick in order.
func (w *Wall) Bricks() []*Brick {
	var out []*Brick
	for _, c := range w.courses {
		out = append(out, c.bricks...)
	}
	return out
}

// FirstBrick returns the first brick of the wall, or nil.
func (w *Wall) FirstBrick() *Brick {
	if len(w.courses) == 0 {
		return nil
	}
	return w.courses[0].First()
}

// LastBrick returns the last brick of the wall, or nil.
func (w *Wall) LastBrick() *Brick {
	if len(w.courses) == 0 {
		return nil
	}
	return w.courses[len(w.courses)-1].Last()
}

// Cornerstone returns the anchor brick, or nil.
func (w *Wall) Cornerstone() *Brick { return w.cornerstone }

// CornerstoneCourse returns the anchor's course, or nil.
func (w *Wall) CornerstoneCourse() *Course { return w.cornerstoneCourse }

// Bedding returns the summed reservation before and after the
// cornerstone's course.
func (w *Wall) Bedding() (before, after int) { return w.beddingBefore, w.beddingAfter }

// Pending returns the number of courses flagged as stale.
func (w *Wall) Pending() int {
	n := 0
	for _, c := range w.courses {
		if c.pending {
			n++
		}
	}
	return n
}

// State returns the wall's adjustment state.
func (w *Wall) State() State {
	if w.cornerstone == nil || w.cornerstoneCourse == nil {
		return Unanchored
	}
	cs := w.cornerstoneCourse.index
	b, f := w.adjust.backward, w.adjust.forward
	if cs <= b || cs >= f {
		b, f = cs-1, cs+1
	}
	switch {
	case b < 0 && f >= len(w.courses):
		return Settled
	case w.adjust.fresh:
		return Collapsed
	}
	return Scanning
}

// =============================================================================
// Listeners
// =============================================================================

// AddCornerstoneListener subscribes l and immediately reports the current
// cornerstone if there is one. Adding the same listener twice panics.
func (w *Wall) AddCornerstoneListener(l CornerstoneListener) {
	for _, o := range w.cornerstoneListeners {
		if o == l {
			errors.Violation("cornerstone listener registered twice")
		}
	}
	w.cornerstoneListeners = append(w.cornerstoneListeners, l)
	if w.cornerstone != nil {
		l.CornerstoneChanged(w.cornerstone)
	}
}

// RemoveCornerstoneListener unsubscribes l.
func (w *Wall) RemoveCornerstoneListener(l CornerstoneListener) {
	w.cornerstoneListeners = removeItem(w.cornerstoneListeners, l)
}

// AddBeddingListener subscribes l and immediately reports the current
// bedding.
func (w *Wall) AddBeddingListener(l BeddingListener) {
	w.beddingListeners = append(w.beddingListeners, l)
	l.BeddingChanged(w.beddingBefore, w.beddingAfter)
}

// RemoveBeddingListener unsubscribes l.
func (w *Wall) RemoveBeddingListener(l BeddingListener) {
	w.beddingListeners = removeItem(w.beddingListeners, l)
}

// AddCourseListener subscribes l to converse layout results.
func (w *Wall) AddCourseListener(l CourseListener) {
	w.courseListeners = append(w.courseListeners, l)
}

// RemoveCourseListener unsubscribes l.
func (w *Wall) RemoveCourseListener(l CourseListener) {
	w.courseListeners = removeItem(w.courseListeners, l)
}

func removeItem[T comparable](items []T, item T) []T {
	for i, o := range items {
		if o == item {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// =============================================================================
// Cornerstone
// =============================================================================

// SetCornerstone anchors the wall at b. If b is not placed in a course the
// wall is cleared and b becomes the only brick of a fresh course. A nil b
// unanchors the wall.
//
// With non-zero bedding, courses strictly between the old and the new
// cornerstone are flagged pending: their offset from the anchor changes by
// the bedding and stays stale until the adjust task reaches them.
func (w *Wall) SetCornerstone(b *Brick) {
	w.mustLive()
	if b == nil {
		w.cornerstone = nil
		w.cornerstoneCourse = nil
		w.notifyCornerstone()
		return
	}
	b.mustLive()
	if b.course != nil && b.course.wall != w {
		errors.Violation("cornerstone %q belongs to another wall", b.label)
	}
	if b.course == nil {
		w.Clear()
		c := newCourse(w)
		w.addCourses(0, c)
		c.insert(0, b)
	}

	old := w.cornerstoneCourse
	w.cornerstone = b
	w.cornerstoneCourse = b.course
	w.cornerstoneCourse.pending = false

	switch {
	case old == nil || old.destroyed:
		// Nothing was trusted while unanchored; rescan everything.
		cs := w.cornerstoneCourse.index
		w.adjust.backward, w.adjust.forward = cs-1, cs+1
		w.adjust.fresh = true
		w.queue.Schedule(w.adjust)
	case w.beddingBefore > 0 || w.beddingAfter > 0:
		if old != w.cornerstoneCourse {
			lo, hi := old.index, w.cornerstoneCourse.index
			if lo > hi {
				lo, hi = hi, lo
			}
			for i := lo + 1; i < hi; i++ {
				w.courses[i].pending = true
			}
		}
		w.adjustAt(w.cornerstoneCourse.index)
	}

	observability.Layout().OnAnchor(w.cornerstoneCourse.index)
	w.notifyCornerstone()
	if w.filler != nil {
		w.filler.FillBefore(b)
		w.filler.FillAfter(b)
	}
}

func (w *Wall) notifyCornerstone() {
	for _, l := range append([]CornerstoneListener(nil), w.cornerstoneListeners...) {
		l.CornerstoneChanged(w.cornerstone)
	}
}

func (w *Wall) unanchor() {
	w.cornerstone = nil
	w.cornerstoneCourse = nil
	w.notifyCornerstone()
}

// =============================================================================
// Bedding
// =============================================================================

// AddBedding registers a reservation. Registering the same bedding twice
// panics.
func (w *Wall) AddBedding(b *Bedding) {
	w.mustLive()
	for _, o := range w.bedding {
		if o == b {
			errors.Violation("bedding registered twice")
		}
	}
	w.bedding = append(w.bedding, b)
	w.beddingChanged()
}

// RemoveBedding unregisters a reservation.
func (w *Wall) RemoveBedding(b *Bedding) {
	w.mustLive()
	w.bedding = removeItem(w.bedding, b)
	w.beddingChanged()
}

func (w *Wall) beddingChanged() {
	before, after := 0, 0
	for _, b := range w.bedding {
		before += b.Before
		after += b.After
	}
	changedBefore := before != w.beddingBefore
	changedAfter := after != w.beddingAfter
	w.beddingBefore, w.beddingAfter = before, after
	for _, l := range append([]BeddingListener(nil), w.beddingListeners...) {
		l.BeddingChanged(before, after)
	}
	if w.cornerstoneCourse == nil {
		return
	}
	cs := w.cornerstoneCourse.index
	if changedBefore && cs > 0 {
		w.courses[cs-1].pending = true
	}
	if changedAfter && cs+1 < len(w.courses) {
		w.courses[cs+1].pending = true
	}
	w.adjustAt(cs)
}

// =============================================================================
// Course structure
// =============================================================================

// InsertCourse inserts a new course holding bricks at index at and returns
// it. The first brick of the new course, and the first brick of a course
// displaced from index zero, are marked split so that every course still
// starts at a split or at the start of the wall.
func (w *Wall) InsertCourse(at int, bricks ...*Brick) *Course {
	w.mustLive()
	if at < 0 || at > len(w.courses) {
		errors.Violation("course index %d out of range [0, %d]", at, len(w.courses))
	}
	if at == 0 && len(w.courses) > 0 {
		w.courses[0].bricks[0].split = true
	}
	c := newCourse(w)
	w.addCourses(at, c)
	if len(bricks) > 0 {
		bricks[0].split = true
		c.insert(0, bricks...)
	}
	return c
}

// RemoveCourse destroys the course at index at together with its bricks.
// Removing the cornerstone's course unanchors the wall.
func (w *Wall) RemoveCourse(at int) {
	w.mustLive()
	if at < 0 || at >= len(w.courses) {
		errors.Violation("course index %d out of range [0, %d)", at, len(w.courses))
	}
	c := w.courses[at]
	anchored := c == w.cornerstoneCourse
	w.removeCourse(at)
	c.destroy()
	if anchored {
		w.unanchor()
	}
}

// Clear destroys every course and brick and unanchors the wall.
func (w *Wall) Clear() {
	for len(w.courses) > 0 {
		c := w.courses[len(w.courses)-1]
		w.removeCourse(len(w.courses) - 1)
		c.destroy()
	}
	w.adjust.backward, w.adjust.forward = math.MinInt, math.MaxInt
	w.adjust.fresh = false
	w.queue.Cancel(w.adjust)
	w.layout.dirty = nil
	w.queue.Cancel(w.layout)
	if w.cornerstone != nil {
		w.unanchor()
	}
}

// Destroy clears the wall and cancels its tasks. Any later use panics.
func (w *Wall) Destroy() {
	if w.destroyed {
		return
	}
	w.Clear()
	w.destroyed = true
}

func (w *Wall) renumber(from int) {
	for i := from; i < len(w.courses); i++ {
		w.courses[i].index = i
	}
}

func (w *Wall) addCourses(at int, courses ...*Course) {
	w.courses = append(w.courses[:at], append(courses, w.courses[at:]...)...)
	w.renumber(at)
	if len(w.courses) > 1 {
		n := len(courses)
		a := w.adjust
		if a.backward >= at {
			a.backward += n
		}
		if a.forward >= at && a.forward < math.MaxInt {
			a.forward += n
		}
		w.adjustAt(at)
	}
}

func (w *Wall) removeCourse(at int) {
	if w.cornerstoneCourse != nil && w.cornerstoneCourse.index == at {
		w.cornerstoneCourse = nil
	}
	w.courses = append(w.courses[:at], w.courses[at+1:]...)
	if at < len(w.courses) {
		w.renumber(at)
		a := w.adjust
		if at < a.backward {
			a.backward--
		}
		if at < a.forward && a.forward < math.MaxInt {
			a.forward--
		}
		w.adjustAt(at)
	}
}

// spanChanged reacts to a course's transverse span changing: the neighbor
// on the far side from the cornerstone (or the course itself, before the
// cornerstone) is now stale.
func (w *Wall) spanChanged(c *Course) {
	if w.cornerstoneCourse == nil || c.destroyed {
		return
	}
	cs := w.cornerstoneCourse.index
	switch {
	case c.index < cs:
		c.pending = true
	case c.index+1 < len(w.courses):
		w.courses[c.index+1].pending = true
	}
	w.adjustAt(c.index)
}

// =============================================================================
// Brick structure
// =============================================================================

// InsertAfter places the unattached brick b immediately after after. A nil
// after inserts at the start of the wall. If b is split it starts a new
// course that takes the rest of after's course with it.
func (w *Wall) InsertAfter(after, b *Brick) {
	w.mustLive()
	b.mustLive()
	if after == nil {
		if len(w.courses) == 0 {
			c := newCourse(w)
			w.addCourses(0, c)
			c.insert(0, b)
			return
		}
		c := w.courses[0]
		c.insert(0, b)
		if len(c.bricks) > 1 && c.bricks[1].split {
			w.splitCourse(c, 1)
		}
		return
	}
	after.mustLive()
	c := after.course
	if c == nil || c.wall != w {
		errors.Violation("anchor brick %q is not in this wall", after.label)
	}
	at := after.Index() + 1
	c.insert(at, b)
	if b.split {
		w.splitCourse(c, at)
	}
}

// InsertBefore places the unattached brick b immediately before before.
func (w *Wall) InsertBefore(before, b *Brick) {
	w.mustLive()
	before.mustLive()
	c := before.course
	if c == nil || c.wall != w {
		errors.Violation("anchor brick %q is not in this wall", before.label)
	}
	at := before.Index()
	switch {
	case at > 0:
		w.InsertAfter(c.bricks[at-1], b)
	case c.index > 0:
		w.InsertAfter(w.courses[c.index-1].Last(), b)
	default:
		w.InsertAfter(nil, b)
	}
}

// Remove takes b out of the wall and destroys it. If b started its course,
// the bricks that followed it rejoin the previous course unless the next
// one is split itself. Removing the cornerstone unanchors the wall.
func (w *Wall) Remove(b *Brick) {
	w.mustLive()
	b.mustLive()
	c := b.course
	if c == nil || c.wall != w {
		errors.Violation("brick %q is not in this wall", b.label)
	}
	at := b.Index()
	c.removeAt(at)
	wasCornerstone := b == w.cornerstone
	b.destroy()

	switch {
	case len(c.bricks) == 0:
		w.removeCourse(c.index)
		c.destroy()
	case at == 0 && c.index > 0 && !c.bricks[0].split:
		w.joinCourse(c)
	}
	if wasCornerstone {
		w.unanchor()
	}
}

// SetSplit changes whether b starts a course, splitting or joining courses
// as needed.
func (w *Wall) SetSplit(b *Brick, split bool) {
	b.mustLive()
	if b.split == split {
		return
	}
	b.split = split
	c := b.course
	if c == nil {
		return
	}
	at := b.Index()
	switch {
	case split && at > 0:
		w.splitCourse(c, at)
	case !split && at == 0 && c.index > 0:
		w.joinCourse(c)
	}
}

// splitCourse moves the bricks of c from at onward into a new course
// right after c.
func (w *Wall) splitCourse(c *Course, at int) {
	tail := c.detachFrom(at)
	anchored := w.cornerstone != nil && w.cornerstoneCourse == c && contains(tail, w.cornerstone)
	next := newCourse(w)
	if anchored {
		// The anchor keeps its transverse position; c moves above it.
		next.transverse = c.transverse
	} else {
		next.transverse = c.TransverseEdge()
	}
	w.addCourses(c.index+1, next)
	next.insert(0, tail...)
	if anchored {
		w.cornerstoneCourse = next
		next.pending = false
		w.adjustAt(next.index)
	}
}

func contains(bricks []*Brick, b *Brick) bool {
	for _, o := range bricks {
		if o == b {
			return true
		}
	}
	return false
}

// joinCourse appends the bricks of c to the previous course and removes c.
func (w *Wall) joinCourse(c *Course) {
	prev := w.courses[c.index-1]
	bricks := c.detachFrom(0)
	moved := w.cornerstone != nil && w.cornerstoneCourse == c
	if moved {
		// Keep the wall anchored across the removal below.
		w.cornerstoneCourse = prev
	}
	w.removeCourse(c.index)
	c.destroy()
	prev.insert(len(prev.bricks), bricks...)
	if moved {
		prev.pending = false
		w.adjustAt(prev.index)
	}
}

// markDirty queues c for converse layout.
func (w *Wall) markDirty(c *Course) {
	if c.queued || c.destroyed || w.destroyed {
		return
	}
	c.queued = true
	w.layout.dirty = append(w.layout.dirty, c)
	w.queue.Schedule(w.layout)
}

// adjustAt re-includes course index at in the outward scan.
func (w *Wall) adjustAt(at int) {
	w.adjust.at(at)
	if w.cornerstoneCourse != nil {
		w.queue.Schedule(w.adjust)
	}
}
