// Package measure turns brick labels into converse and transverse extents.
package measure

import (
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/mortar/pkg/geom"
)

// Measurer computes the span of a text label.
type Measurer interface {
	Measure(text string) geom.Span
}

// Cells measures text in terminal cells: wide East Asian runes count as
// two columns, combining marks as zero, and every label is one row tall.
type Cells struct {
	cond *runewidth.Condition
}

// NewCells returns a terminal cell measurer. eastAsian selects the
// ambiguous-width interpretation used by CJK locales.
func NewCells(eastAsian bool) *Cells {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = eastAsian
	return &Cells{cond: cond}
}

// Measure implements Measurer.
func (c *Cells) Measure(text string) geom.Span {
	return geom.Span{Converse: c.cond.StringWidth(text), Ascent: 1}
}

// Truncate shortens text to fit width cells, appending tail when it cuts.
func (c *Cells) Truncate(text string, width int, tail string) string {
	return c.cond.Truncate(text, width, tail)
}

// Fixed measures every rune as Unit wide, ignoring display width. Tests
// use it to get round numbers.
type Fixed struct {
	Unit    int
	Ascent  int
	Descent int
}

// Measure implements Measurer.
func (f Fixed) Measure(text string) geom.Span {
	return geom.Span{
		Converse: f.Unit * len([]rune(text)),
		Ascent:   f.Ascent,
		Descent:  f.Descent,
	}
}
