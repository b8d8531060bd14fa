package wall

import (
	"testing"

	"github.com/matzehuels/mortar/pkg/align"
	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/geom"
	"github.com/matzehuels/mortar/pkg/idle"
)

func brick(label string) *Brick {
	return NewBrick(nil, label, geom.Span{Converse: 10 * len(label), Ascent: 8, Descent: 2})
}

func splitBrick(label string) *Brick {
	b := brick(label)
	b.split = true
	return b
}

// build lays out lines as courses and anchors the wall at the first brick.
func build(t *testing.T, lines ...[]string) (*Wall, *idle.Queue) {
	t.Helper()
	q := idle.NewQueue()
	w := New(q, nil)
	var last *Brick
	for i, line := range lines {
		for j, label := range line {
			b := brick(label)
			b.split = i > 0 && j == 0
			if last == nil {
				w.SetCornerstone(b)
			} else {
				w.InsertAfter(last, b)
			}
			last = b
		}
	}
	settle(t, q)
	return w, q
}

func settle(t *testing.T, q *idle.Queue) {
	t.Helper()
	if _, err := q.RunUntilIdle(10_000); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}
}

func labels(c *Course) []string {
	var out []string
	for _, b := range c.Bricks() {
		out = append(out, b.Label())
	}
	return out
}

func checkCourses(t *testing.T, w *Wall, want ...[]string) {
	t.Helper()
	if w.CourseCount() != len(want) {
		t.Fatalf("CourseCount() = %d, want %d", w.CourseCount(), len(want))
	}
	for i, line := range want {
		got := labels(w.Course(i))
		if len(got) != len(line) {
			t.Fatalf("course %d = %v, want %v", i, got, line)
		}
		for j := range line {
			if got[j] != line[j] {
				t.Errorf("course %d = %v, want %v", i, got, line)
				break
			}
		}
		if w.Course(i).Index() != i {
			t.Errorf("course %d Index() = %d", i, w.Course(i).Index())
		}
	}
}

// checkContiguous verifies that every course starts where the previous one
// ends, plus bedding next to the cornerstone's course.
func checkContiguous(t *testing.T, w *Wall) {
	t.Helper()
	cs := w.CornerstoneCourse()
	before, after := w.Bedding()
	for i := 1; i < w.CourseCount(); i++ {
		prev, cur := w.Course(i-1), w.Course(i)
		want := prev.TransverseEdge()
		if prev == cs {
			want += after
		}
		if cur == cs {
			want += before
		}
		if cur.Transverse() != want {
			t.Errorf("course %d Transverse() = %d, want %d", i, cur.Transverse(), want)
		}
		if cur.Transverse() <= prev.Transverse() {
			t.Errorf("course %d not after course %d", i, i-1)
		}
		for _, b := range cur.Bricks() {
			if b.Transverse() != cur.Transverse() {
				t.Errorf("brick %q Transverse() = %d, want %d", b.Label(), b.Transverse(), cur.Transverse())
			}
		}
	}
}

func TestBuildCourses(t *testing.T) {
	w, _ := build(t, []string{"a", "bb"}, []string{"ccc"}, []string{"d", "e", "f"})

	checkCourses(t, w, []string{"a", "bb"}, []string{"ccc"}, []string{"d", "e", "f"})
	checkContiguous(t, w)

	if got := w.Course(0).Edge(); got != 30 {
		t.Errorf("Edge() = %d, want 30", got)
	}
	if got := w.Course(2).Brick(2).Converse(); got != 20 {
		t.Errorf("Converse() = %d, want 20", got)
	}
	if w.State() != Settled {
		t.Errorf("State() = %v, want %v", w.State(), Settled)
	}
}

func TestSplitAndJoin(t *testing.T) {
	w, q := build(t, []string{"a", "b", "c", "d"})

	c := w.Course(0).Brick(2)
	w.SetSplit(c, true)
	settle(t, q)
	checkCourses(t, w, []string{"a", "b"}, []string{"c", "d"})
	checkContiguous(t, w)

	w.SetSplit(c, false)
	settle(t, q)
	checkCourses(t, w, []string{"a", "b", "c", "d"})

	// Inserting a split brick breaks the course after it.
	w.InsertAfter(w.Course(0).Brick(0), splitBrick("x"))
	settle(t, q)
	checkCourses(t, w, []string{"a"}, []string{"x", "b", "c", "d"})

	// Removing the brick that started a course rejoins its followers.
	w.Remove(w.Course(1).Brick(0))
	settle(t, q)
	checkCourses(t, w, []string{"a", "b", "c", "d"})
}

func TestInsertBefore(t *testing.T) {
	w, q := build(t, []string{"b"}, []string{"d"})

	w.InsertBefore(w.Course(1).Brick(0), brick("c"))
	w.InsertBefore(w.Course(0).Brick(0), brick("a"))
	settle(t, q)
	checkCourses(t, w, []string{"a", "b", "c"}, []string{"d"})

	// A split brick inserted at the start keeps the old first brick in
	// its course, since that brick was never split.
	w.InsertAfter(nil, splitBrick("z"))
	settle(t, q)
	checkCourses(t, w, []string{"z", "a", "b", "c"}, []string{"d"})
}

func TestRemoveEmptiesCourse(t *testing.T) {
	w, q := build(t, []string{"a"}, []string{"b"}, []string{"c"})

	w.Remove(w.Course(1).Brick(0))
	settle(t, q)
	checkCourses(t, w, []string{"a"}, []string{"c"})
	checkContiguous(t, w)
}

func TestContiguousAfterEdits(t *testing.T) {
	w, q := build(t, []string{"a"}, []string{"b"}, []string{"c"}, []string{"d"}, []string{"e"})
	w.SetCornerstone(w.Course(2).Brick(0))
	settle(t, q)

	tall := NewBrick(nil, "T", geom.Span{Converse: 10, Ascent: 30, Descent: 5})
	w.InsertAfter(w.Course(0).Brick(0), tall)
	w.InsertCourse(4, brick("n"))
	w.Course(3).Brick(0).SetSpan(geom.Span{Converse: 10, Ascent: 1, Descent: 1})
	settle(t, q)

	checkContiguous(t, w)
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", w.Pending())
	}
}

func TestBeddingContiguous(t *testing.T) {
	w, q := build(t, []string{"a"}, []string{"b"}, []string{"c"}, []string{"d"})
	w.SetCornerstone(w.Course(1).Brick(0))
	settle(t, q)

	var rec beddingRecorder
	w.AddBeddingListener(&rec)
	bed := &Bedding{Before: 4, After: 6}
	w.AddBedding(bed)
	w.AddBedding(&Bedding{Before: 1})

	if rec.before != 5 || rec.after != 6 {
		t.Errorf("BeddingChanged = %d, %d, want 5, 6", rec.before, rec.after)
	}
	if w.State() != Scanning {
		t.Errorf("State() after bedding change = %v, want %v", w.State(), Scanning)
	}
	settle(t, q)
	checkContiguous(t, w)

	w.RemoveBedding(bed)
	settle(t, q)
	checkContiguous(t, w)
	if b, a := w.Bedding(); b != 1 || a != 0 {
		t.Errorf("Bedding() = %d, %d, want 1, 0", b, a)
	}
}

func TestReanchorPending(t *testing.T) {
	w, q := build(t, []string{"a"}, []string{"b"}, []string{"c"}, []string{"d"})
	w.AddBedding(&Bedding{Before: 3, After: 5})
	settle(t, q)
	if w.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", w.Pending())
	}

	// Two courses away: only the course strictly between is stale.
	w.SetCornerstone(w.Course(2).Brick(0))
	if got := w.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want 1", got)
	}
	if !w.Course(1).Pending() {
		t.Error("course 1 Pending() = false, want true")
	}

	settle(t, q)
	if w.Pending() != 0 {
		t.Errorf("Pending() after settle = %d, want 0", w.Pending())
	}
	checkContiguous(t, w)
	if w.State() != Settled {
		t.Errorf("State() = %v, want %v", w.State(), Settled)
	}
}

func TestReanchorWithoutBedding(t *testing.T) {
	w, q := build(t, []string{"a"}, []string{"b"}, []string{"c"})

	w.SetCornerstone(w.Course(2).Brick(0))
	if got := w.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}
	settle(t, q)
	checkContiguous(t, w)
}

func TestResumable(t *testing.T) {
	w, q := build(t, []string{"a"})
	for _, l := range []string{"b", "c", "d", "e", "f"} {
		w.InsertAfter(w.LastBrick(), splitBrick(l))
	}

	for i := 0; i < 3; i++ {
		q.Step()
	}
	if w.State() == Settled {
		t.Fatal("State() = settled after a partial batch")
	}
	pending := w.Pending()
	if pending == 0 {
		t.Fatal("Pending() = 0 after a partial batch")
	}

	settle(t, q)
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", w.Pending())
	}
	checkContiguous(t, w)
}

func TestStateMachine(t *testing.T) {
	q := idle.NewQueue()
	w := New(q, nil)
	if w.State() != Unanchored {
		t.Errorf("State() = %v, want %v", w.State(), Unanchored)
	}

	a := brick("a")
	w.SetCornerstone(a)
	if w.State() != Settled {
		t.Errorf("State() = %v, want %v", w.State(), Settled)
	}

	w.InsertAfter(a, splitBrick("b"))
	w.InsertAfter(w.LastBrick(), splitBrick("c"))
	if w.State() != Scanning {
		t.Errorf("State() after insert = %v, want %v", w.State(), Scanning)
	}
	settle(t, q)

	w.RemoveCourse(0)
	if w.State() != Unanchored {
		t.Errorf("State() after removing cornerstone course = %v, want %v", w.State(), Unanchored)
	}
	if w.Cornerstone() != nil {
		t.Error("Cornerstone() != nil after removing its course")
	}
	if !a.Destroyed() {
		t.Error("brick in removed course not destroyed")
	}
}

func TestStateCollapsedOnlyAfterAnchoring(t *testing.T) {
	w, q := build(t, []string{"a"}, []string{"b"}, []string{"c"}, []string{"d"})
	w.RemoveCourse(0)
	if w.State() != Unanchored {
		t.Fatalf("State() = %v, want %v", w.State(), Unanchored)
	}

	w.SetCornerstone(w.Course(1).Brick(0))
	if w.State() != Collapsed {
		t.Errorf("State() after anchoring = %v, want %v", w.State(), Collapsed)
	}
	for w.State() == Collapsed && q.Step() {
	}
	if w.State() != Scanning {
		t.Errorf("State() after the first adjust step = %v, want %v", w.State(), Scanning)
	}
	settle(t, q)
	if w.State() != Settled {
		t.Errorf("State() = %v, want %v", w.State(), Settled)
	}

	tests := []struct {
		name string
		edit func()
	}{
		{"insert course before", func() { w.InsertCourse(0, brick("x")) }},
		{"insert course after", func() { w.InsertCourse(w.CourseCount(), brick("y")) }},
		{"remove course", func() { w.RemoveCourse(0) }},
		{"bedding", func() { w.AddBedding(&Bedding{After: 2}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.edit()
			if w.State() != Scanning {
				t.Errorf("State() = %v, want %v", w.State(), Scanning)
			}
			settle(t, q)
			if w.State() != Settled {
				t.Errorf("State() after settle = %v, want %v", w.State(), Settled)
			}
			checkContiguous(t, w)
		})
	}
}

func TestFillerAndListeners(t *testing.T) {
	q := idle.NewQueue()
	var f fillRecorder
	w := New(q, &f)
	var cl cornerstoneRecorder
	w.AddCornerstoneListener(&cl)

	a := brick("a")
	w.SetCornerstone(a)
	if f.before != a || f.after != a {
		t.Error("Filler not asked to fill around the cornerstone")
	}
	if cl.last != a {
		t.Error("cornerstone listener not notified")
	}

	w.Remove(a)
	if cl.last != nil {
		t.Error("cornerstone listener not told about unanchoring")
	}
	if w.CourseCount() != 0 {
		t.Errorf("CourseCount() = %d, want 0", w.CourseCount())
	}
}

func TestSetCornerstoneClearsForUnplacedBrick(t *testing.T) {
	w, q := build(t, []string{"a"}, []string{"b"})
	old := w.FirstBrick()

	fresh := brick("z")
	w.SetCornerstone(fresh)
	settle(t, q)

	checkCourses(t, w, []string{"z"})
	if !old.Destroyed() {
		t.Error("old brick survived a synthesized cornerstone course")
	}
}

func TestAttachmentEvents(t *testing.T) {
	w, q := build(t, []string{"a", "b"})
	a, b := w.Course(0).Brick(0), w.Course(0).Brick(1)
	var rec eventRecorder
	b.AddAttachment(&rec)

	a.SetSpan(geom.Span{Converse: 50, Ascent: 8, Descent: 2})
	settle(t, q)
	if !rec.has(EventConverse) {
		t.Errorf("events = %v, want converse", rec.kinds)
	}

	b.SetSpan(geom.Span{Converse: 10, Ascent: 20, Descent: 2})
	if !rec.has(EventTransverseSpan) {
		t.Errorf("events = %v, want transverse-span", rec.kinds)
	}

	w.Remove(b)
	if !rec.has(EventDestroyed) {
		t.Errorf("events = %v, want destroyed", rec.kinds)
	}
}

func TestSameLineAlignment(t *testing.T) {
	q := idle.NewQueue()
	w := New(q, nil)
	c := align.NewConsensus("c")

	first := brick("a")
	w.SetCornerstone(first)
	seq := []*Brick{brick("b"), brick(""), brick("d")}
	seq[0].SetAlignment(c)
	seq[2].SetAlignment(c)
	prev := first
	for _, b := range seq {
		w.InsertAfter(prev, b)
		prev = b
	}
	settle(t, q)

	if got := seq[0].Converse(); got != 10 {
		t.Errorf("first aligned Converse() = %d, want 10", got)
	}
	if got := seq[2].Converse(); got != 20 {
		t.Errorf("second aligned Converse() = %d, want 20", got)
	}
	if seq[2].Participating() {
		t.Error("second aligned brick in a course participates")
	}
}

func TestConsensusAcrossCourses(t *testing.T) {
	q := idle.NewQueue()
	w := New(q, nil)
	c := align.NewConsensus("c")

	pairs := [][2]string{{"three", "lumbar"}, {"elephant", "minx"}, {"tag", "peanut"}}
	var seconds []*Brick
	var last *Brick
	for i, p := range pairs {
		first, second := brick(p[0]), brick(p[1])
		first.split = i > 0
		second.SetAlignment(c)
		if last == nil {
			w.SetCornerstone(first)
		} else {
			w.InsertAfter(last, first)
		}
		w.InsertAfter(first, second)
		seconds = append(seconds, second)
		last = second
	}
	settle(t, q)

	for i, b := range seconds {
		if b.Converse() != 80 {
			t.Errorf("course %d aligned Converse() = %d, want 80", i, b.Converse())
		}
	}

	// Shrinking the widest first brick pulls the column back in.
	w.Course(1).Brick(0).SetSpan(geom.Span{Converse: 10, Ascent: 8, Descent: 2})
	settle(t, q)
	for i, b := range seconds {
		if b.Converse() != 50 {
			t.Errorf("course %d aligned Converse() = %d, want 50", i, b.Converse())
		}
	}

	// Removing a participant unregisters it.
	w.Remove(seconds[0])
	settle(t, q)
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Value() != 30 {
		t.Errorf("Value() = %d, want 30", c.Value())
	}
}

func TestContractViolations(t *testing.T) {
	tests := []struct {
		name string
		code errors.Code
		fn   func(w *Wall)
	}{
		{
			name: "destroyed brick",
			code: errors.ErrCodeDestroyed,
			fn: func(w *Wall) {
				b := w.FirstBrick()
				w.Remove(b)
				b.SetSpan(geom.Span{Converse: 1})
			},
		},
		{
			name: "double bedding",
			code: errors.ErrCodeContract,
			fn: func(w *Wall) {
				bed := &Bedding{Before: 1}
				w.AddBedding(bed)
				w.AddBedding(bed)
			},
		},
		{
			name: "double cornerstone listener",
			code: errors.ErrCodeContract,
			fn: func(w *Wall) {
				var l cornerstoneRecorder
				w.AddCornerstoneListener(&l)
				w.AddCornerstoneListener(&l)
			},
		},
		{
			name: "brick placed twice",
			code: errors.ErrCodeContract,
			fn: func(w *Wall) {
				w.InsertAfter(w.FirstBrick(), w.LastBrick())
			},
		},
		{
			name: "foreign cornerstone",
			code: errors.ErrCodeContract,
			fn: func(w *Wall) {
				other, _ := build(t, []string{"x"})
				w.SetCornerstone(other.FirstBrick())
			},
		},
		{
			name: "destroyed wall",
			code: errors.ErrCodeDestroyed,
			fn: func(w *Wall) {
				w.Destroy()
				w.InsertAfter(nil, brick("z"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := build(t, []string{"a", "b"}, []string{"c"})
			var err error
			func() {
				defer errors.Recover(&err)
				tt.fn(w)
			}()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

type beddingRecorder struct{ before, after int }

func (r *beddingRecorder) BeddingChanged(before, after int) { r.before, r.after = before, after }

type cornerstoneRecorder struct{ last *Brick }

func (r *cornerstoneRecorder) CornerstoneChanged(b *Brick) { r.last = b }

type fillRecorder struct{ before, after *Brick }

func (r *fillRecorder) FillBefore(b *Brick) { r.before = b }
func (r *fillRecorder) FillAfter(b *Brick)  { r.after = b }

type eventRecorder struct{ kinds []EventKind }

func (r *eventRecorder) BrickChanged(ev Event) { r.kinds = append(r.kinds, ev.Kind) }

func (r *eventRecorder) has(k EventKind) bool {
	for _, o := range r.kinds {
		if o == k {
			return true
		}
	}
	return false
}
