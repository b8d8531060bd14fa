// Package observability provides hooks for metrics, tracing, and logging.
//
// The layout engine is single-threaded and has no opinion about metrics
// backends. Consumers register hooks at startup to receive events about
// pipeline stages, artifact cache lookups, idle scheduler batches and
// compaction decisions.
//
// Every category has an interface, a no-op implementation that embeds
// cleanly into partial implementations, and a setter:
//
//	observability.SetSchedulerHooks(&batchCounter{})
//	defer observability.Reset()
//
// The engine emits events through the getters:
//
//	observability.Scheduler().OnRunStart(ctx, queued)
//	// ... run idle tasks ...
//	observability.Scheduler().OnRunComplete(ctx, steps, remaining, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the parse → layout → render pipeline.
type PipelineHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, source string)
	OnParseComplete(ctx context.Context, source string, nodeCount int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, width int)
	OnLayoutComplete(ctx context.Context, courses int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives artifact cache events, keyed by output format.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, format string)
	OnCacheMiss(ctx context.Context, format string)
	OnCacheSet(ctx context.Context, format string, size int)
}

// =============================================================================
// Scheduler Hooks
// =============================================================================

// SchedulerHooks receives events from idle task batches.
type SchedulerHooks interface {
	// OnRunStart records the start of a batch with the given queue length.
	OnRunStart(ctx context.Context, queued int)

	// OnRunComplete records the end of a batch. remaining is the queue
	// length left for the next batch.
	OnRunComplete(ctx context.Context, steps, remaining int, duration time.Duration, err error)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives compaction and anchoring decisions. Events carry no
// context because they fire from inside idle task steps.
type LayoutHooks interface {
	// OnExpand records an array switching to one element per course.
	OnExpand(kind string, precedence, level int)

	// OnCompact records an array rejoining its elements onto shared courses.
	OnCompact(kind string, precedence, level int)

	// OnAnchor records a new cornerstone at the given course index.
	OnAnchor(course int)

	// OnWindow records the window root changing to the given atom depth.
	OnWindow(kind string, depth int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSchedulerHooks is a no-op implementation of SchedulerHooks.
type NoopSchedulerHooks struct{}

func (NoopSchedulerHooks) OnRunStart(context.Context, int)                                {}
func (NoopSchedulerHooks) OnRunComplete(context.Context, int, int, time.Duration, error) {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnExpand(string, int, int)  {}
func (NoopLayoutHooks) OnCompact(string, int, int) {}
func (NoopLayoutHooks) OnAnchor(int)               {}
func (NoopLayoutHooks) OnWindow(string, int)       {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds the registered hooks of one category.
type slot[H any] struct {
	mu    sync.RWMutex
	hooks H
	noop  H
}

func newSlot[H any](noop H) *slot[H] {
	return &slot[H]{hooks: noop, noop: noop}
}

// set installs h. A nil h is ignored.
func (s *slot[H]) set(h H) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.hooks = h
	s.mu.Unlock()
}

func (s *slot[H]) get() H {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hooks
}

func (s *slot[H]) reset() { s.set(s.noop) }

var (
	pipelineSlot  = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot     = newSlot[CacheHooks](NoopCacheHooks{})
	schedulerSlot = newSlot[SchedulerHooks](NoopSchedulerHooks{})
	layoutSlot    = newSlot[LayoutHooks](NoopLayoutHooks{})
)

// SetPipelineHooks registers pipeline hooks, typically once at startup.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }

// SetCacheHooks registers artifact cache hooks.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetSchedulerHooks registers idle scheduler hooks.
func SetSchedulerHooks(h SchedulerHooks) { schedulerSlot.set(h) }

// SetLayoutHooks registers layout hooks. They run inside idle tasks and
// must not block.
func SetLayoutHooks(h LayoutHooks) { layoutSlot.set(h) }

func Pipeline() PipelineHooks   { return pipelineSlot.get() }
func Cache() CacheHooks         { return cacheSlot.get() }
func Scheduler() SchedulerHooks { return schedulerSlot.get() }
func Layout() LayoutHooks       { return layoutSlot.get() }

// Reset restores the no-op hooks of every category.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	schedulerSlot.reset()
	layoutSlot.reset()
}
