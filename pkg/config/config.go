// Package config loads mortar's TOML configuration.
//
// A configuration has three parts: engine settings (layout, scheduler,
// overlay, preview), the alignments defined at the document root, and the
// styles that the sketch language applies to named arrays and atoms.
//
// # Usage
//
//	cfg, err := config.Load("mortar.toml")
//	if err != nil {
//	    return err
//	}
//	session := visual.New(root, visual.Options{Config: cfg})
//
// Missing keys keep their values from [Default]; unknown keys are rejected
// so that typos do not silently fall back to defaults.
package config

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mortar/pkg/align"
	"github.com/matzehuels/mortar/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the converse budget in cells.
	DefaultWidth = 80

	// DefaultEllipsizeThreshold is how many atom levels below the window
	// root are rendered before a placeholder replaces the rest.
	DefaultEllipsizeThreshold = 4

	// DefaultLayBrickBatch is the number of bricks a fill step creates.
	DefaultLayBrickBatch = 32

	// DefaultEllipsis is the placeholder label for hidden atoms.
	DefaultEllipsis = "…"

	// DefaultStepLimit bounds Settle before it reports a non-quiescent
	// layout.
	DefaultStepLimit = 1_000_000

	// DefaultBudget is the time budget of one interactive idle batch.
	DefaultBudget = 8 * time.Millisecond

	// DefaultSelectionPadding is the bedding reserved around the selected
	// course.
	DefaultSelectionPadding = 0
)

// =============================================================================
// Configuration
// =============================================================================

// Config is the complete configuration.
type Config struct {
	Layout     Layout           `toml:"layout"`
	Scheduler  Scheduler        `toml:"scheduler"`
	Overlay    Overlay          `toml:"overlay"`
	Preview    Preview          `toml:"preview"`
	Alignments []Alignment      `toml:"alignments"`
	Arrays     map[string]Array `toml:"arrays"`
	Atoms      map[string]Atom  `toml:"atoms"`
}

// Layout holds the engine's layout settings.
type Layout struct {
	Width              int    `toml:"width"`
	EllipsizeThreshold int    `toml:"ellipsize_threshold"` // 0 disables ellipsis
	LayBrickBatch      int    `toml:"lay_brick_batch"`
	SpaceWidth         int    `toml:"space_width"`
	Ellipsis           string `toml:"ellipsis"`
	AutoWindow         bool   `toml:"auto_window"`
	EastAsian          bool   `toml:"east_asian"`
}

// Scheduler holds idle-queue settings.
type Scheduler struct {
	StepLimit int      `toml:"step_limit"`
	Budget    Duration `toml:"budget"`
}

// Overlay holds decoration settings.
type Overlay struct {
	SelectionPadding int `toml:"selection_padding"`
}

// Preview holds text rendering settings.
type Preview struct {
	Color         bool `toml:"color"`
	ShowSelection bool `toml:"show_selection"`
}

// Alignment declares a named alignment. Kind is "absolute", "relative" or
// "consensus"; Column is the column of an absolute alignment and the
// offset of a relative one.
type Alignment struct {
	Name   string `toml:"name"`
	Kind   string `toml:"kind"`
	Column int    `toml:"column"`
}

// Array is the style of a named array.
type Array struct {
	Prefix     string `toml:"prefix"`
	Separator  string `toml:"separator"`
	Suffix     string `toml:"suffix"`
	Precedence int    `toml:"precedence"`
	Fixed      bool   `toml:"fixed"` // never split across courses
}

// Atom is the style of a named atom: the alignments it opens for its
// body and the alignment each positional child is placed on.
type Atom struct {
	Alignments []Alignment `toml:"alignments"`
	Align      []string    `toml:"align"`
	Separator  string      `toml:"separator"`
}

// Duration is a time.Duration that decodes from strings like "8ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
//
// The default styles mirror the sketch language's built-in names:
// "list" is the anonymous bracket array, "low", "mid" and "high" are bare
// arrays that split in precedence order, and "pair" and "triple" are
// atoms whose later children sit on document-wide consensus columns.
// "block" indents its first child one step further than its parent.
func Default() *Config {
	return &Config{
		Layout: Layout{
			Width:              DefaultWidth,
			EllipsizeThreshold: DefaultEllipsizeThreshold,
			LayBrickBatch:      DefaultLayBrickBatch,
			SpaceWidth:         1,
			Ellipsis:           DefaultEllipsis,
			AutoWindow:         true,
		},
		Scheduler: Scheduler{
			StepLimit: DefaultStepLimit,
			Budget:    Duration{DefaultBudget},
		},
		Overlay: Overlay{SelectionPadding: DefaultSelectionPadding},
		Preview: Preview{Color: true, ShowSelection: true},
		Alignments: []Alignment{
			{Name: "indent", Kind: "relative", Column: 2},
			{Name: "value", Kind: "consensus"},
			{Name: "second", Kind: "consensus"},
			{Name: "third", Kind: "consensus"},
		},
		Arrays: map[string]Array{
			"list": {Prefix: "[", Separator: ", ", Suffix: "]"},
			"low":  {Separator: " ", Precedence: 0},
			"mid":  {Separator: " ", Precedence: 50},
			"high": {Separator: " ", Precedence: 100},
			"line": {Separator: " ", Fixed: true},
		},
		Atoms: map[string]Atom{
			"pair": {
				Align:     []string{"", "value"},
				Separator: " ",
			},
			"triple": {
				Align:     []string{"", "second", "third"},
				Separator: " ",
			},
			"block": {
				Alignments: []Alignment{{Name: "indent", Kind: "relative", Column: 2}},
				Align:      []string{"indent"},
			},
		},
	}
}

// Load reads and parses a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML on top of [Default] and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	// Array tables decode into the existing backing array, so start from an
	// empty list and restore the defaults only when the file has none.
	defaults := cfg.Alignments
	cfg.Alignments = nil
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
	}
	if !md.IsDefined("alignments") {
		cfg.Alignments = defaults
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and alignment declarations.
func (c *Config) Validate() error {
	if err := errors.ValidateWidth(c.Layout.Width); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.width")
	}
	if c.Layout.EllipsizeThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.ellipsize_threshold must not be negative, got %d", c.Layout.EllipsizeThreshold)
	}
	if c.Layout.LayBrickBatch <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.lay_brick_batch must be positive, got %d", c.Layout.LayBrickBatch)
	}
	if c.Layout.SpaceWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.space_width must not be negative, got %d", c.Layout.SpaceWidth)
	}
	if c.Scheduler.StepLimit <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scheduler.step_limit must be positive, got %d", c.Scheduler.StepLimit)
	}
	if c.Scheduler.Budget.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scheduler.budget must be positive, got %s", c.Scheduler.Budget)
	}
	if c.Overlay.SelectionPadding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "overlay.selection_padding must not be negative, got %d", c.Overlay.SelectionPadding)
	}
	if err := validateAlignments("alignments", c.Alignments); err != nil {
		return err
	}
	for name, atom := range c.Atoms {
		if err := validateAlignments("atoms."+name+".alignments", atom.Alignments); err != nil {
			return err
		}
	}
	return nil
}

func validateAlignments(where string, defs []Alignment) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: alignment without a name", where)
		}
		if seen[d.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: alignment %q defined twice", where, d.Name)
		}
		seen[d.Name] = true
		if _, err := ParseKind(d.Kind); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s.%s", where, d.Name)
		}
	}
	return nil
}

// ParseKind maps a configuration kind name to an alignment kind. An empty
// name means consensus.
func ParseKind(name string) (align.Kind, error) {
	switch strings.ToLower(name) {
	case "absolute":
		return align.Absolute, nil
	case "relative":
		return align.Relative, nil
	case "consensus", "":
		return align.Consensus, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown alignment kind %q", name)
}

// Defs converts alignment declarations to scope definitions. The
// declarations must have passed Validate.
func Defs(decls []Alignment) []align.Def {
	defs := make([]align.Def, 0, len(decls))
	for _, d := range decls {
		kind, _ := ParseKind(d.Kind)
		defs = append(defs, align.Def{Name: d.Name, Kind: kind, Column: d.Column})
	}
	return defs
}

// Array returns the style named name, falling back to an unstyled
// splittable array.
func (c *Config) Array(name string) Array {
	if a, ok := c.Arrays[name]; ok {
		return a
	}
	return Array{}
}

// Atom returns the style named name and whether it exists.
func (c *Config) Atom(name string) (Atom, bool) {
	a, ok := c.Atoms[name]
	return a, ok
}
