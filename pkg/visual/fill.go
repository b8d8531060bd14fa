package visual

import "github.com/matzehuels/mortar/pkg/wall"

// Idle priorities of the session's tasks. Filling runs below the wall's
// own tasks so that positions stay fresh while bricks stream in; the
// width policy runs last, on a fully laid out wall.
const (
	PriorityLayBricks = 150
	PriorityExpand    = 120
	PriorityCompact   = 110
)

// layTask extends the materialized run by one batch of bricks per step,
// toward the start of the window or toward its end.
type layTask struct {
	s       *Session
	forward bool
}

func (t *layTask) Priority() int { return PriorityLayBricks }

func (t *layTask) Step() bool {
	if t.s.closed {
		return false
	}
	for range t.s.cfg.Layout.LayBrickBatch {
		if !t.lay() {
			return false
		}
	}
	return true
}

func (t *layTask) lay() bool {
	s, w := t.s, t.s.wall
	if t.forward {
		end := w.LastBrick()
		if end == nil {
			return false
		}
		next := s.nextLeaf(end.Owner.(leaf))
		if next == nil {
			return false
		}
		w.InsertAfter(end, s.build(next))
		return true
	}
	end := w.FirstBrick()
	if end == nil {
		return false
	}
	prev := s.prevLeaf(end.Owner.(leaf))
	if prev == nil {
		return false
	}
	w.InsertBefore(end, s.build(prev))
	return true
}

// filler adapts the session to wall.Filler.
type filler struct {
	s *Session
}

func (f filler) FillBefore(*wall.Brick) { f.s.queue.Schedule(f.s.layBefore) }
func (f filler) FillAfter(*wall.Brick)  { f.s.queue.Schedule(f.s.layAfter) }

func (s *Session) fill() {
	if s.wall.FirstBrick() == nil {
		return
	}
	s.queue.Schedule(s.layBefore)
	s.queue.Schedule(s.layAfter)
}
