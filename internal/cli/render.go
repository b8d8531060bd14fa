package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mortar/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  []string // output formats: "text", "json", "dot", "svg"
	width    int      // converse budget in cells, 0 for the configured width
	selected string   // path of the node to select
	window   string   // path of the atom to re-root at
	detailed bool     // levels, depths and positions in tree diagrams
	margin   bool     // mark the width on text output
	color    bool     // style text output written to a terminal
	noCache  bool     // skip the artifact cache
}

// renderCommand creates the render command for laying out sketches.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{color: true}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Lay out a sketch and write text, JSON, DOT or SVG",
		Long: `Lay out a sketch at a width and write the result.

Text output prints one line per course. JSON exports course and brick
geometry. DOT and SVG draw the visual tree with its layout state. Use "-"
to read the sketch from stdin.`,
		Example: `  # Fit a document to 60 columns
  mortar render doc.sketch --width 60

  # Select a node and write the geometry
  mortar render doc.sketch --select 1.2 -f json -o doc.json

  # Draw the visual tree
  mortar render doc.sketch -f svg -o doc.svg`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSketches,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), json, dot, svg (comma-separated)")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "width in cells (default from config)")
	cmd.Flags().StringVar(&opts.selected, "select", "", "path of the node to select, e.g. 1.2")
	cmd.Flags().StringVar(&opts.window, "window", "", "path of the atom to window into")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show levels and positions in tree diagrams")
	cmd.Flags().BoolVar(&opts.margin, "margin", false, "mark the width on text output")
	cmd.Flags().BoolVar(&opts.color, "color", opts.color, "style text output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always lay out, ignoring cached outputs")

	return cmd
}

// runRender lays out input and writes each requested format. A single
// format without --output goes to w; otherwise every format is written to
// a file next to the base path.
func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, opts *renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	popts, err := c.inputOptions(input)
	if err != nil {
		return err
	}
	toStdout := opts.output == "" && len(opts.formats) == 1

	popts.Config = cfg
	popts.Width = opts.width
	popts.Select = opts.selected
	popts.Window = opts.window
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed
	popts.Margin = opts.margin
	popts.Color = opts.color && toStdout

	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, os.Stderr, "Laying out "+input+"...")
		defer trackStages(spinner, input)()
		spinner.Start()
	}
	r := c.newRunner(opts.noCache)
	defer r.Close()
	result, err := r.Execute(ctx, popts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if toStdout {
		_, err := w.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	prog := newProgress(c.Logger)
	base := basePath(opts.output, input)
	var written []string
	for _, format := range opts.formats {
		path := base + "." + extension(format)
		if len(opts.formats) == 1 {
			path = opts.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		written = append(written, path)
	}
	prog.done("wrote outputs", "files", len(written))

	width := popts.Width
	if width == 0 {
		width = cfg.Layout.Width
	}
	out := report{w}
	out.success("Laid out %s at width %d", input, width)
	for _, path := range written {
		out.file(path)
	}
	if result.Cached {
		out.note("from cache")
	} else {
		out.stats(result.Stats)
	}
	if opts.window != "" {
		out.field("window", opts.window)
	}
	if opts.selected != "" {
		out.field("selection", opts.selected)
	}
	if input != stdinName {
		out.hint("Explore", appName+" view "+input)
	}
	return nil
}

// extension maps a format to its file extension.
func extension(format string) string {
	if format == pipeline.FormatText {
		return "txt"
	}
	return format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.txt, .svg, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == stdinName {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if ext == "txt" || slices.Contains(pipeline.ValidFormats, ext) {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}
