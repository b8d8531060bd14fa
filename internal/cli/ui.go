package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mortar/pkg/pipeline"
)

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

// Styles shared by the command summaries and the view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconArrow   = "→"
	separator   = " · "
)

// report writes the human-readable summary of a command to w.
type report struct {
	w io.Writer
}

func (r report) success(format string, args ...any) {
	fmt.Fprintln(r.w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (r report) file(path string) {
	fmt.Fprintln(r.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// note prints an indented line of muted text.
func (r report) note(text string) {
	fmt.Fprintln(r.w, "  "+StyleDim.Render(text))
}

func (r report) field(key, value string) {
	fmt.Fprintln(r.w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// stats prints the layout counters on one line.
func (r report) stats(st pipeline.Stats) {
	r.note(strings.Join([]string{
		fmt.Sprintf("%d nodes", st.NodeCount),
		fmt.Sprintf("%d courses", st.CourseCount),
		fmt.Sprintf("%d bricks", st.BrickCount),
	}, separator))
}

// hint suggests the command to run next.
func (r report) hint(description, cmd string) {
	fmt.Fprintln(r.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
