// Package idle implements the cooperative task queue that drives deferred
// layout work.
//
// Layout never does expensive geometry fixup inside an edit. Instead it
// schedules a [Task] and returns. An external runner (a test, the CLI, a UI
// event loop) later calls [Queue.Run] or [Queue.RunUntilIdle], which
// repeatedly invokes the highest-priority task's [Task.Step] until the
// queue drains or the caller's budget runs out.
//
// # Contract
//
// Each Step performs one bounded unit of work (position one course,
// evaluate one array) and reports whether more work remains. A task that
// returns false is dropped from the queue and may be scheduled again
// later. Tasks that reference layout objects destroyed before they run must
// detect that themselves and return false.
//
// Stopping a batch early is not an error: the queue keeps every pending
// task exactly as it was, and the next Run resumes where the last one
// stopped.
//
// A Queue is not safe for concurrent use. Layout state has exactly one
// mutator, and the queue belongs to it.
package idle

import (
	"container/heap"
	"context"
	"time"

	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/observability"
)

// Task is a resumable unit of deferred work.
type Task interface {
	// Priority orders tasks; higher runs first.
	Priority() int

	// Step performs one bounded unit of work and reports whether the task
	// has more to do.
	Step() bool
}

// DefaultStepLimit bounds RunUntilIdle when callers pass zero.
const DefaultStepLimit = 1_000_000

// Queue is a priority queue of scheduled tasks. Tasks of equal priority
// run in the order they were scheduled.
type Queue struct {
	entries taskHeap
	index   map[Task]*entry
	seq     uint64
}

type entry struct {
	task     Task
	priority int
	seq      uint64
	pos      int
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{index: make(map[Task]*entry)}
}

// Schedule adds t to the queue. Scheduling a task that is already queued
// is a no-op, so callers may schedule whenever they create work without
// tracking whether the task is pending.
func (q *Queue) Schedule(t Task) {
	if _, ok := q.index[t]; ok {
		return
	}
	q.seq++
	e := &entry{task: t, priority: t.Priority(), seq: q.seq}
	q.index[t] = e
	heap.Push(&q.entries, e)
}

// Cancel removes t from the queue if it is scheduled.
func (q *Queue) Cancel(t Task) {
	e, ok := q.index[t]
	if !ok {
		return
	}
	heap.Remove(&q.entries, e.pos)
	delete(q.index, t)
}

// Scheduled reports whether t is waiting in the queue.
func (q *Queue) Scheduled(t Task) bool {
	_, ok := q.index[t]
	return ok
}

// Len returns the number of scheduled tasks.
func (q *Queue) Len() int { return len(q.entries) }

// Step runs one step of the highest-priority task. It returns false when
// the queue is empty.
func (q *Queue) Step() bool {
	if len(q.entries) == 0 {
		return false
	}
	e := q.entries[0]
	more := e.task.Step()
	// The step may have cancelled or rescheduled tasks, so look the entry
	// up again instead of trusting its old heap position.
	if cur, ok := q.index[e.task]; ok && cur == e && !more {
		heap.Remove(&q.entries, e.pos)
		delete(q.index, e.task)
	}
	return true
}

// Run executes steps until the queue is empty, budget elapses or ctx is
// done. A zero budget means no time limit. It reports whether work
// remains. The returned error is ctx.Err() when the context stopped the
// batch.
func (q *Queue) Run(ctx context.Context, budget time.Duration) (bool, error) {
	start := time.Now()
	hooks := observability.Scheduler()
	hooks.OnRunStart(ctx, q.Len())

	steps := 0
	var err error
	for q.Len() > 0 {
		if err = ctx.Err(); err != nil {
			break
		}
		if budget > 0 && time.Since(start) >= budget {
			break
		}
		q.Step()
		steps++
	}

	hooks.OnRunComplete(ctx, steps, q.Len(), time.Since(start), err)
	return q.Len() > 0, err
}

// RunUntilIdle executes steps until the queue is empty. It fails with
// NOT_QUIESCENT after limit steps, which signals a layout cycle rather
// than slow progress. A limit of zero uses DefaultStepLimit.
func (q *Queue) RunUntilIdle(limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	steps := 0
	for q.Len() > 0 {
		if steps >= limit {
			return steps, errors.New(errors.ErrCodeNotQuiescent,
				"idle queue still has %d tasks after %d steps", q.Len(), steps)
		}
		q.Step()
		steps++
	}
	return steps, nil
}

// =============================================================================
// Heap
// =============================================================================

type taskHeap []*entry

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pos = i
	h[j].pos = j
}

func (h *taskHeap) Push(x any) {
	e := x.(*entry)
	e.pos = len(*h)
	*h = append(*h, e)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.pos = -1
	return e
}
