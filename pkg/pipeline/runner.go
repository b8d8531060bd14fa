package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mortar/pkg/cache"
	"github.com/matzehuels/mortar/pkg/observability"
	"github.com/matzehuels/mortar/pkg/visual"
)

// Runner executes pipeline stages with a shared logger and reports each
// stage to the registered observability hooks.
//
// The Runner holds no pipeline results. Sessions are single-threaded, so
// concurrent runs each need their own session, which Execute provides.
type Runner struct {
	Logger *log.Logger

	// Cache stores rendered artifacts across runs. Nil disables caching.
	Cache cache.Cache
}

// NewRunner creates a runner without a cache. A nil logger uses the
// default logger.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Execute runs the complete parse → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	keys := opts.artifactKeys()
	if artifacts, ok := r.cached(ctx, keys); ok {
		r.Logger.Info("using cached outputs", "source", opts.source(), "formats", opts.Formats)
		return &Result{Artifacts: artifacts, Cached: true}, nil
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	root, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = countNodes(root)

	r.Logger.Info("parsed sketch",
		"source", opts.source(),
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	s, err := r.Layout(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	defer s.Close()
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.CourseCount = s.Wall().CourseCount()
	result.Stats.BrickCount = len(s.Wall().Bricks())

	r.Logger.Info("computed layout",
		"width", opts.Width,
		"courses", result.Stats.CourseCount,
		"bricks", result.Stats.BrickCount,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	r.store(ctx, keys, artifacts)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse builds the visual tree for opts.
func (r *Runner) Parse(ctx context.Context, opts Options) (*visual.Array, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.source())

	start := time.Now()
	root, err := Parse(ctx, opts)
	nodes := 0
	if root != nil {
		nodes = countNodes(root)
	}
	hooks.OnParseComplete(ctx, opts.source(), nodes, time.Since(start), err)
	return root, err
}

// Layout opens and settles a session on root. The caller closes it.
func (r *Runner) Layout(ctx context.Context, root visual.Node, opts Options) (*visual.Session, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Width)

	start := time.Now()
	s, err := Layout(ctx, root, opts)
	courses := 0
	if s != nil {
		courses = s.Wall().CourseCount()
	}
	hooks.OnLayoutComplete(ctx, courses, time.Since(start), err)
	return s, err
}

// Render produces the artifacts for opts from a settled session.
func (r *Runner) Render(ctx context.Context, s *visual.Session, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)

	start := time.Now()
	artifacts, err := Render(ctx, s, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
