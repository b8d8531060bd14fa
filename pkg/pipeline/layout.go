package pipeline

import (
	"context"

	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/visual"
)

// Layout opens a session on root, applies the window and selection from
// opts and settles it. The caller closes the session.
func Layout(ctx context.Context, root visual.Node, opts Options) (*visual.Session, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	// The session reads its width from the configuration.
	cfg := *opts.Config
	cfg.Layout.Width = opts.Width
	s := visual.New(root, visual.Options{Config: &cfg, Logger: opts.Logger})

	if err := place(s, root, opts); err != nil {
		s.Close()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Settle(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func place(s *visual.Session, root visual.Node, opts Options) error {
	if opts.Window != "" {
		n, err := find(root, opts.Window)
		if err != nil {
			return err
		}
		a, ok := n.(*visual.Atom)
		if !ok {
			return errors.New(errors.ErrCodeInvalidPath, "window %s is not an atom", opts.Window)
		}
		if err := s.SetWindow(a); err != nil {
			return err
		}
	}
	if opts.Select != "" {
		n, err := find(root, opts.Select)
		if err != nil {
			return err
		}
		if err := s.Select(n); err != nil {
			return err
		}
	}
	return nil
}

func find(root visual.Node, path string) (visual.Node, error) {
	idx, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	n := visual.Find(root, idx)
	if n == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no node at path %s", path)
	}
	return n, nil
}
