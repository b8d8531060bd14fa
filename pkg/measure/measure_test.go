package measure

import (
	"testing"

	"github.com/matzehuels/mortar/pkg/geom"
)

func TestCells(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "lumbar", 6},
		{"wide", "日本", 4},
		{"combining", "é", 1},
	}

	m := NewCells(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Measure(tt.text)
			if got.Converse != tt.want {
				t.Errorf("Measure(%q).Converse = %d, want %d", tt.text, got.Converse, tt.want)
			}
			if got.Transverse() != 1 {
				t.Errorf("Measure(%q).Transverse() = %d, want 1", tt.text, got.Transverse())
			}
		})
	}
}

func TestCellsTruncate(t *testing.T) {
	m := NewCells(false)
	if got := m.Truncate("elephant", 5, "…"); got != "elep…" {
		t.Errorf("Truncate() = %q, want %q", got, "elep…")
	}
}

func TestFixed(t *testing.T) {
	m := Fixed{Unit: 10, Ascent: 8, Descent: 2}
	want := geom.Span{Converse: 30, Ascent: 8, Descent: 2}
	if got := m.Measure("one"); got != want {
		t.Errorf("Measure() = %v, want %v", got, want)
	}
	if got := m.Measure("日本"); got.Converse != 20 {
		t.Errorf("Measure(wide).Converse = %d, want 20", got.Converse)
	}
}
