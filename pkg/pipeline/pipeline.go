// Package pipeline provides the parse → layout → render pipeline behind
// the mortar command.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a sketch and build its visual tree
//  2. Layout: Open a session at the requested width and settle it
//  3. Render: Produce text, JSON, DOT or SVG from the settled session
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "doc.sketch",
//	    Width:   60,
//	    Formats: []string{"text"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(result.Artifacts["text"]))
//
// Run individual stages when the session outlives the run, as in the
// interactive viewer:
//
//	root, err := runner.Parse(ctx, opts)
//	s, err := runner.Layout(ctx, root, opts)
//	defer s.Close()
package pipeline

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mortar/pkg/config"
	"github.com/matzehuels/mortar/pkg/errors"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats lists the supported output formats in help order.
var ValidFormats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG}

// DefaultSourceName names sketches read from Options.Source in errors.
const DefaultSourceName = "<input>"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Parse options. Exactly one of Path and Source is set.
	Path   string `json:"path,omitempty"`
	Source string `json:"source,omitempty"`
	Name   string `json:"name,omitempty"` // name for Source in error positions

	// Layout options
	Width  int    `json:"width,omitempty"`  // 0 keeps the configured width
	Select string `json:"select,omitempty"` // child-index path such as "0.2.1"
	Window string `json:"window,omitempty"` // path of the atom to re-root at

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Color    bool     `json:"color,omitempty"`
	Margin   bool     `json:"margin,omitempty"` // mark the width on text output
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Config *config.Config `json:"-"`
	Logger *log.Logger    `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// Cached reports that every artifact came from the cache. Stats are
	// zero in that case since nothing was laid out.
	Cached bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	CourseCount int
	BrickCount  int
	ParseTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	return nil
}

// ParsePath converts a dotted child-index path to indexes. The empty
// string is the root.
func ParsePath(path string) ([]int, error) {
	if path == "" {
		return nil, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	parts := strings.Split(path, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "path %q", path)
		}
		out[i] = n
	}
	return out, nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the input fields.
func (o *Options) ValidateForParse() error {
	if o.Path == "" && o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "path or source is required")
	}
	if o.Path != "" && o.Source != "" {
		return errors.New(errors.ErrCodeInvalidInput, "path and source are mutually exclusive")
	}
	if o.Name == "" {
		o.Name = DefaultSourceName
	}
	o.setCommonDefaults()
	return nil
}

// ValidateForLayout checks the width, the configuration and paths and
// fills the width from the configuration.
func (o *Options) ValidateForLayout() error {
	o.setCommonDefaults()
	if o.Width == 0 {
		o.Width = o.Config.Layout.Width
	}
	if err := errors.ValidateWidth(o.Width); err != nil {
		return err
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	for _, p := range []string{o.Select, o.Window} {
		if _, err := ParsePath(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForRender checks the formats, defaulting to text.
func (o *Options) ValidateForRender() error {
	o.setCommonDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(f)
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setCommonDefaults() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
