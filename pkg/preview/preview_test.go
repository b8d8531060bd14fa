package preview

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mortar/pkg/config"
	"github.com/matzehuels/mortar/pkg/visual"
)

func pair(key, value string) *visual.Atom {
	v := visual.NewText(value)
	v.SetAlignment("value")
	return visual.NewAtom("pair", nil, visual.NewGroup(visual.NewText(key), visual.NewText(" "), v))
}

func session(t *testing.T, root visual.Node) *visual.Session {
	t.Helper()
	cfg := config.Default()
	cfg.Preview.Color = false
	s := visual.New(root, visual.Options{Config: cfg, Logger: log.New(io.Discard)})
	t.Cleanup(s.Close)
	if err := s.Settle(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRenderText(t *testing.T) {
	tests := []struct {
		name   string
		margin int
		want   string
	}{
		{"plain", 0, "a   b\nccc d"},
		{"margin", 8, "a   b   │\nccc d   │"},
		{"narrow margin", 3, "a   b│\nccc d│"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := visual.NewArray(visual.ArrayStyle{AlwaysSplit: true}, pair("a", "b"), pair("ccc", "d"))
			s := session(t, doc)
			if got := RenderText(s.Wall(), TextOptions{Margin: tt.margin}); got != tt.want {
				t.Errorf("RenderText() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	first, second := pair("a", "b"), pair("c", "d")
	doc := visual.NewArray(visual.ArrayStyle{AlwaysSplit: true}, first, second)
	s := session(t, doc)
	if err := s.Select(second); err != nil {
		t.Fatal(err)
	}
	if err := s.Settle(); err != nil {
		t.Fatal(err)
	}

	opts := SessionOptions(s)
	if opts.Color {
		t.Error("SessionOptions().Color = true, want the configured false")
	}
	var selected []string
	for _, b := range s.Wall().Bricks() {
		if opts.Selection.Contains(b) {
			selected = append(selected, b.Label())
		}
	}
	if len(selected) != 3 || selected[0] != "c" || selected[2] != "d" {
		t.Errorf("selected labels = %q, want [c, space, d]", selected)
	}
	if (Range{}).Contains(s.Wall().FirstBrick()) {
		t.Error("empty Range should contain nothing")
	}
}

func TestRenderJSON(t *testing.T) {
	doc := visual.NewArray(visual.ArrayStyle{AlwaysSplit: true}, pair("a", "b"), pair("ccc", "d"))
	s := session(t, doc)

	data, err := RenderJSON(s.Wall(), WithJSONSession(s))
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	var got jsonOutput
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	if got.Session != s.ID || got.Width != config.DefaultWidth {
		t.Errorf("session, width = %q, %d, want %q, %d", got.Session, got.Width, s.ID, config.DefaultWidth)
	}
	if got.State != "settled" {
		t.Errorf("State = %q, want settled", got.State)
	}
	if len(got.Courses) != 2 {
		t.Fatalf("len(Courses) = %d, want 2", len(got.Courses))
	}
	if got.Cornerstone == nil || got.Cornerstone.Course != 0 {
		t.Errorf("Cornerstone = %+v, want course 0", got.Cornerstone)
	}
	second := got.Courses[1]
	if second.Transverse != 1 || second.Bricks[0].Split != true {
		t.Errorf("second course = %+v, want transverse 1 starting at a split", second)
	}
	last := second.Bricks[len(second.Bricks)-1]
	if last.Label != "d" || last.Converse != 4 || last.Alignment != "value" {
		t.Errorf("last brick = %+v, want d at 4 on value", last)
	}
}
