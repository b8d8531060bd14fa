package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/preview"
	"github.com/matzehuels/mortar/pkg/treeviz"
	"github.com/matzehuels/mortar/pkg/visual"
)

// Render generates output artifacts in the requested formats from a
// settled session.
func Render(ctx context.Context, s *visual.Session, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatText:
			data = []byte(RenderText(s, opts) + "\n")
		case FormatJSON:
			data, err = preview.RenderJSON(s.Wall(), preview.WithJSONSession(s))
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = treeviz.ToDOT(s.Root(), treeviz.Options{Session: s, Detailed: opts.Detailed})
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = treeviz.RenderSVG(ctx, dot)
			}
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderText draws the session's wall with the highlight and color
// settings of opts.
func RenderText(s *visual.Session, opts Options) string {
	textOpts := preview.SessionOptions(s)
	textOpts.Color = opts.Color && textOpts.Color
	if opts.Margin {
		textOpts.Margin = s.Width()
	}
	return preview.RenderText(s.Wall(), textOpts)
}
