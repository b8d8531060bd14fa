package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/preview"
	"github.com/matzehuels/mortar/pkg/treeviz"
	"github.com/matzehuels/mortar/pkg/visual"
)

// frameInterval paces idle batches while layout work remains.
const frameInterval = 16 * time.Millisecond

// viewCommand creates the view command for exploring a layout interactively.
func (c *CLI) viewCommand() *cobra.Command {
	var width int
	var selected string

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Explore a sketch's layout interactively",
		Long: `Open a sketch in a full-screen viewer. The layout is built incrementally
and follows the selection.

Keys:
  ←/→ or h/l   shrink or grow the width
  ↑/↓ or k/j   select the previous or next node
  f            fit the width to the terminal
  enter        window into the selected atom
  esc          leave the current window
  q            quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSketches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], width, selected)
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 0, "initial width in cells (default from config)")
	cmd.Flags().StringVar(&selected, "select", "", "path of the node to select first")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, width int, selected string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	popts, err := c.inputOptions(input)
	if err != nil {
		return err
	}
	popts.Config = cfg
	popts.Width = width
	popts.Select = selected

	r := c.newRunner(true)
	root, err := r.Parse(ctx, popts)
	if err != nil {
		return err
	}
	s, err := r.Layout(ctx, root, popts)
	if err != nil {
		return err
	}
	defer s.Close()

	m := newViewModel(ctx, input, s)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// viewModel - Interactive layout viewer
// =============================================================================

// idleMsg asks the model to run a batch of idle layout work.
type idleMsg struct{}

// viewModel is the bubbletea model of the layout viewer.
type viewModel struct {
	ctx     context.Context
	title   string
	session *visual.Session
	height  int
	cols    int
	status  string
	busy    bool // an idle tick is in flight
}

// newViewModel returns a model whose first tick is started by Init.
func newViewModel(ctx context.Context, title string, s *visual.Session) viewModel {
	return viewModel{ctx: ctx, title: title, session: s, height: 24, cols: 80, busy: true}
}

func (m viewModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return idleMsg{} })
}

// work starts an idle tick unless one is already in flight.
func (m *viewModel) work() tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	return tick()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case idleMsg:
		more, err := m.session.Run(m.ctx, 0)
		m.busy = false
		if err != nil {
			m.status = errors.UserMessage(err)
			return m, nil
		}
		if more {
			cmd := m.work()
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.cols = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.resize(m.session.Width() - 1)
		case "right", "l":
			m.resize(m.session.Width() + 1)
		case "f":
			m.resize(m.cols - 2)
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			m.enter()
		case "esc":
			if !m.session.PopWindow() {
				m.status = "no window to leave"
			}
		default:
			return m, nil
		}
		cmd := m.work()
		return m, cmd
	}
	return m, nil
}

func (m *viewModel) resize(width int) {
	if err := m.session.Resize(width); err != nil {
		m.status = errors.UserMessage(err)
	}
}

// move selects the node step places away in document order.
func (m *viewModel) move(step int) {
	nodes := navigable(m.session)
	if len(nodes) == 0 {
		return
	}
	at := -1
	for i, n := range nodes {
		if n == m.session.Selection() {
			at = i
			break
		}
	}
	next := min(max(at+step, 0), len(nodes)-1)
	if at < 0 {
		next = 0
	}
	if err := m.session.Select(nodes[next]); err != nil {
		m.status = errors.UserMessage(err)
	}
}

func (m *viewModel) enter() {
	a, ok := m.session.Selection().(*visual.Atom)
	if !ok {
		m.status = "select an atom to window into"
		return
	}
	if err := m.session.SetWindow(a); err != nil {
		m.status = errors.UserMessage(err)
	}
}

// navigable lists the nodes under the window in document order, skipping
// layout plumbing and the insides of ellipsized atoms.
func navigable(s *visual.Session) []visual.Node {
	var out []visual.Node
	var walk func(n visual.Node)
	walk = func(n visual.Node) {
		if isFiller(n) {
			return
		}
		out = append(out, n)
		if a, ok := n.(*visual.Atom); ok && a.Ellipsized() {
			return
		}
		for _, kid := range n.Children() {
			walk(kid)
		}
	}
	if w := s.Window(); w != nil {
		walk(w)
	}
	return out
}

func (m viewModel) View() string {
	var b strings.Builder

	s := m.session
	header := fmt.Sprintf("%s  %s", StyleTitle.Render(appName), StyleValue.Render(m.title))
	b.WriteString(header + StyleDim.Render(fmt.Sprintf("  width %d", s.Width())))
	if m.busy {
		b.WriteString(StyleDim.Render("  laying out…"))
	}
	b.WriteString("\n\n")

	opts := preview.SessionOptions(s)
	opts.Color = true
	opts.Margin = s.Width()
	opts.Selection.First, opts.Selection.Last = s.SelectionBricks()
	lines := strings.Split(preview.RenderText(s.Wall(), opts), "\n")

	// Keep the cornerstone course in view.
	body := max(m.height-5, 1)
	start := 0
	if c := s.Wall().CornerstoneCourse(); c != nil && !c.Destroyed() {
		start = max(c.Index()-body/2, 0)
	}
	end := min(start+body, len(lines))
	start = max(min(start, end-body), 0)
	b.WriteString(strings.Join(lines[start:end], "\n"))
	b.WriteString("\n\n")

	if n := s.Selection(); n != nil {
		path := make([]string, 0, 8)
		for _, i := range visual.Path(n) {
			path = append(path, fmt.Sprint(i))
		}
		b.WriteString(StyleHighlight.Render(treeviz.Label(n)) + " " + StyleDim.Render(strings.Join(path, ".")))
	}
	if m.status != "" {
		b.WriteString("  " + StyleWarning.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ width  ↑/↓ select  f fit  ⏎ window  esc back  q quit"))
	return b.String()
}
