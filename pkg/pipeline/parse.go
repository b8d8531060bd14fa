package pipeline

import (
	"context"

	"github.com/matzehuels/mortar/pkg/sketch"
	"github.com/matzehuels/mortar/pkg/visual"
)

// Parse reads the sketch named by opts and builds its visual tree.
func Parse(ctx context.Context, opts Options) (*visual.Array, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Path != "" {
		opts.Logger.Debug("loading sketch", "path", opts.Path)
		return sketch.Load(opts.Path, opts.Config)
	}
	doc, err := sketch.ParseString(opts.Name, opts.Source)
	if err != nil {
		return nil, err
	}
	return sketch.Build(doc, opts.Config)
}

// source names the parse input for hooks and logs.
func (o *Options) source() string {
	if o.Path != "" {
		return o.Path
	}
	return o.Name
}

// countNodes returns the size of the tree under n.
func countNodes(n visual.Node) int {
	total := 1
	for _, c := range n.Children() {
		total += countNodes(c)
	}
	return total
}
