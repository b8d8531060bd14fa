// Package pkg provides the core libraries for mortar's incremental text layout.
//
// # Overview
//
// Mortar lays out structured documents as a wall: leaf text becomes bricks,
// bricks stack into courses (lines), and arrays decide where courses break.
// Layout is incremental. Every edit or resize enqueues small tasks on an
// idle queue, and the wall converges as those tasks run.
//
// # Architecture
//
// The data flow through mortar:
//
//	Sketch source
//	     ↓
//	[sketch] package (parse and build a visual tree)
//	     ↓
//	[visual] package (session: lay bricks, expand, compact, ellipsize)
//	     ↓
//	[wall] package (courses, bricks, positions)
//	     ↓
//	[preview] / [treeviz] (text, JSON, DOT, SVG)
//
// # Quick Start
//
//	cfg := config.Default()
//	root, _ := sketch.Load("doc.sketch", cfg)
//
//	s := visual.New(root, visual.Options{Config: cfg})
//	defer s.Close()
//	_ = s.Settle()
//
//	fmt.Println(preview.RenderText(s.Wall(), preview.SessionOptions(s)))
//
// # Main Packages
//
// ## Layout
//
// [wall] - Courses and bricks with converse (along a line) and transverse
// (across lines) positions, kept current as bricks move.
//
// [visual] - Visual trees of text, spaces, groups, arrays and atoms, and the
// session that maintains their wall: laying bricks, splitting overflowing
// arrays, rejoining arrays that fit again, and windowing into atoms.
//
// [align] - Named alignment slots shared by bricks across courses.
//
// [idle] - The cooperative priority queue that runs deferred layout work.
//
// [measure] - Cell widths of brick labels, East Asian widths included.
//
// [overlay] - Borders that follow the bricks of a selection.
//
// [geom] - Two-axis points, sizes and rectangles.
//
// ## Input and Output
//
// [sketch] - The sketch notation for writing visual trees.
//
// [preview] - Plain and styled text, plus JSON geometry.
//
// [treeviz] - DOT and SVG diagrams of visual trees.
//
// [pipeline] - Parse → layout → render, shared by every CLI command.
//
// [cache] - Rendered outputs kept between runs.
//
// ## Ambient
//
// [config] - TOML configuration with defaults.
//
// [errors] - Coded errors and invariant violations.
//
// [observability] - Hooks around pipeline stages and scheduler runs.
//
// [buildinfo] - Version information.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/visual/...     # Specific package
//	go test -run Example ./...   # Examples only
package pkg
