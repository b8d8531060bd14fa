// Package preview draws a laid-out wall for terminals and tools.
//
// [RenderText] writes one line per course, placing each label at its
// brick's converse position, so a wall measured in terminal cells prints
// exactly as it was laid out. [RenderJSON] exports brick and course
// geometry for inspection and golden tests.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mortar/pkg/wall"
)

var (
	colorCyan = lipgloss.Color("36")
	colorBlue = lipgloss.Color("75")
	colorDim  = lipgloss.Color("240")
)

var (
	styleSelected = lipgloss.NewStyle().Foreground(colorCyan).Reverse(true)
	styleHovered  = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleEllipsis = lipgloss.NewStyle().Foreground(colorDim)
	styleMargin   = lipgloss.NewStyle().Foreground(colorDim)
)

// TextOptions configures [RenderText].
type TextOptions struct {
	// Color enables lipgloss styling. Without it the output is plain text.
	Color bool
	// Selection and Hover mark runs of bricks.
	Selection Range
	Hover     Range
	// Ellipsis is the placeholder label to dim.
	Ellipsis string
	// Margin draws a marker at this column on every line when positive.
	Margin int
}

// RenderText draws w as text.
func RenderText(w *wall.Wall, opts TextOptions) string {
	var out strings.Builder
	for i, c := range w.Courses() {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(renderCourse(c, opts))
	}
	return out.String()
}

func renderCourse(c *wall.Course, opts TextOptions) string {
	var line strings.Builder
	col := 0
	for _, b := range c.Bricks() {
		if b.Converse() > col {
			line.WriteString(strings.Repeat(" ", b.Converse()-col))
			col = b.Converse()
		}
		line.WriteString(style(b, opts))
		if e := b.Edge(); e > col {
			col = e
		}
	}
	if opts.Margin > 0 {
		if col < opts.Margin {
			line.WriteString(strings.Repeat(" ", opts.Margin-col))
		}
		marker := "│"
		if opts.Color {
			marker = styleMargin.Render(marker)
		}
		line.WriteString(marker)
	}
	return strings.TrimRight(line.String(), " ")
}

func style(b *wall.Brick, opts TextOptions) string {
	label := b.Label()
	if !opts.Color || label == "" {
		return label
	}
	switch {
	case opts.Selection.Contains(b):
		return styleSelected.Render(label)
	case opts.Hover.Contains(b):
		return styleHovered.Render(label)
	case opts.Ellipsis != "" && label == opts.Ellipsis:
		return styleEllipsis.Render(label)
	}
	return label
}

// Range is a run of bricks in wall order, First and Last included.
type Range struct {
	First, Last *wall.Brick
}

// Contains reports whether b lies in the run. A range missing either end
// contains nothing.
func (r Range) Contains(b *wall.Brick) bool {
	if r.First == nil || r.Last == nil || r.First.Course() == nil || r.Last.Course() == nil || b.Course() == nil {
		return false
	}
	at := position(b)
	return !less(at, position(r.First)) && !less(position(r.Last), at)
}

func position(b *wall.Brick) [2]int { return [2]int{b.Course().Index(), b.Index()} }

func less(a, b [2]int) bool {
	return a[0] < b[0] || (a[0] == b[0] && a[1] < b[1])
}
