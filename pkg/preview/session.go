package preview

import "github.com/matzehuels/mortar/pkg/visual"

// SessionOptions returns text options for s as its configuration asks:
// color, highlights and the placeholder to dim.
func SessionOptions(s *visual.Session) TextOptions {
	cfg := s.Config()
	opts := TextOptions{
		Color:    cfg.Preview.Color,
		Ellipsis: cfg.Layout.Ellipsis,
	}
	if cfg.Preview.ShowSelection {
		opts.Selection.First, opts.Selection.Last = s.SelectionBricks()
		opts.Hover.First, opts.Hover.Last = s.HoverBricks()
	}
	return opts
}
