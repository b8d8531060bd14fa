package wall

// Idle priorities of the wall's tasks. Converse layout runs first because
// course spans and compaction decisions depend on fresh converse edges.
const (
	PriorityLayout = 170
	PriorityAdjust = 160
)

// adjustTask positions courses outward from the cornerstone, one course
// per step.
//
// Courses with index in (backward, forward) are exact. backward scans
// toward index zero, forward toward the end of the wall. math.MinInt and
// math.MaxInt mean no work has been requested since the task was created
// or the wall was cleared. fresh is set when the wall is anchored from
// the unanchored state and cleared by the first step or structural edit.
type adjustTask struct {
	wall     *Wall
	backward int
	forward  int
	flip     bool
	fresh    bool
}

func (t *adjustTask) Priority() int { return PriorityAdjust }

func (t *adjustTask) Step() bool {
	w := t.wall
	if w.destroyed || w.cornerstoneCourse == nil {
		return false
	}
	t.fresh = false
	courses := w.courses
	cs := w.cornerstoneCourse.index
	if cs <= t.backward || cs >= t.forward {
		t.backward = cs - 1
		t.forward = cs + 1
	}

	canBackward := t.backward >= 0
	canForward := t.forward < len(courses)
	switch {
	case canBackward && canForward:
		t.flip = !t.flip
		if t.flip {
			t.stepBackward()
		} else {
			t.stepForward()
		}
	case canBackward:
		t.stepBackward()
	case canForward:
		t.stepForward()
	default:
		return false
	}
	return t.backward >= 0 || t.forward < len(courses)
}

func (t *adjustTask) stepBackward() {
	w := t.wall
	child := w.courses[t.backward]
	preceding := w.courses[t.backward+1]
	transverse := preceding.transverse - child.TransverseSpan()
	if preceding == w.cornerstoneCourse {
		transverse -= w.beddingBefore
	}
	child.setTransverse(transverse)
	t.backward--
}

func (t *adjustTask) stepForward() {
	w := t.wall
	prev := w.courses[t.forward-1]
	transverse := prev.TransverseEdge()
	if prev == w.cornerstoneCourse {
		transverse += w.beddingAfter
	}
	w.courses[t.forward].setTransverse(transverse)
	t.forward++
}

// at widens the frontiers so that course index at is positioned again.
func (t *adjustTask) at(at int) {
	w := t.wall
	t.fresh = false
	if w.cornerstoneCourse == nil {
		return
	}
	cs := w.cornerstoneCourse.index
	if at <= cs && at > t.backward {
		t.backward = min(cs-1, at)
	}
	if at >= cs && at < t.forward {
		t.forward = max(cs+1, at)
	}
}
