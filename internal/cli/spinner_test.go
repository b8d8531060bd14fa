package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mortar/pkg/observability"
)

func TestSpinnerDraws(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Laying out")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.SetMessage("Rendering text")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	for _, want := range []string{"Laying out", "Rendering text"} {
		if !strings.Contains(out, want) {
			t.Errorf("spinner output missing %q: %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should clear its line on stop: %q", out)
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop, want false")
	}
}

func TestSpinnerCancel(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, io.Discard, "Waiting")
			s.Start()
			time.Sleep(100 * time.Millisecond)

			if !s.Cancelled() {
				t.Error("Cancelled() = false, want true once the context ends")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStop(t *testing.T) {
	// Stop before Start must not block.
	newSpinner(io.Discard, "idle").Stop()

	s := newSpinner(io.Discard, "twice")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestTrackStages(t *testing.T) {
	defer observability.Reset()
	ctx := context.Background()
	s := newSpinner(io.Discard, "")

	restore := trackStages(s, "doc.sketch")
	hooks := observability.Pipeline()

	hooks.OnParseStart(ctx, "doc.sketch")
	if got := s.Message(); got != "Parsing doc.sketch..." {
		t.Errorf("Message() = %q, want the parse stage", got)
	}
	hooks.OnLayoutStart(ctx, 12)
	if got := s.Message(); got != "Laying out at width 12..." {
		t.Errorf("Message() = %q, want the layout stage", got)
	}
	hooks.OnRenderStart(ctx, []string{"text", "svg"})
	if got := s.Message(); got != "Rendering text, svg..." {
		t.Errorf("Message() = %q, want the render stage", got)
	}

	restore()
	if _, ok := observability.Pipeline().(stageHooks); ok {
		t.Error("restore should reinstate the previous hooks")
	}
}
