package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/pipeline"
	"github.com/matzehuels/mandelscope/pkg/session"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// statusLines is the number of terminal rows below the frame.
const statusLines = 2

var (
	exploreStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	exploreHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	exploreErrStyle    = lipgloss.NewStyle().Foreground(colorRed)
	boxColor           = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the set interactively in the terminal",
		Long: `Explore shows the set in the terminal and zooms with the mouse or keyboard.

  left click, enter     zoom into the box
  right click, ⌫        zoom out
  arrows, hjkl          move the zoom box
  space                 show or hide the zoom box
  [ ] or , .            previous / next gradient
  tab                   invert the gradient
  r                     back to the start
  q                     quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.Config)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			runner := c.newRunner(ctx, opts, flags.noCache)
			defer runner.Close()

			ex, err := session.Open(opts.Precise, opts.Resolution(), opts.Gradient, opts.MaxIters, opts.Inverted,
				session.WithRunner(runner), session.WithRegion(opts.Region))
			if err != nil {
				return err
			}

			p := tea.NewProgram(newExploreModel(ctx, ex, opts),
				tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd, false)
	return cmd
}

// =============================================================================
// exploreModel - bubbletea model around a session
// =============================================================================

// frameMsg carries the result of an asynchronous recompute.
type frameMsg struct {
	buf *grid.Buffer
	err error
}

type exploreModel struct {
	ctx  context.Context
	ex   session.Explorer
	opts pipeline.Options

	res       viewport.Resolution
	margin    int
	boxX      int
	boxY      int
	showBox   bool
	computing bool
	frame     string
	err       error
}

func newExploreModel(ctx context.Context, ex session.Explorer, opts pipeline.Options) exploreModel {
	return exploreModel{ctx: ctx, ex: ex, opts: opts, showBox: true}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rows := msg.Height - statusLines
		if rows < 1 {
			rows = 1
		}
		m.res = viewport.Resolution{Width: max(msg.Width, 1), Height: rows * 2}
		m.margin = scaleMargin(m.opts.Margin, m.opts.Width, m.res.Width)
		m.boxX, m.boxY = m.res.Width/2, m.res.Height/2
		cmd := m.recompute()
		return m, cmd

	case frameMsg:
		if errs.Is(msg.err, errs.ErrCodeSuperseded) {
			return m, nil
		}
		m.computing = false
		m.err = msg.err
		if msg.err == nil {
			m.redraw()
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || m.frame == "" {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.boxX, m.boxY = msg.X, msg.Y*2
			return m.zoomIn()
		case tea.MouseButtonRight:
			return m.zoomOut()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveBox(0, -1)
		case "down", "j":
			m.moveBox(0, 1)
		case "left", "h":
			m.moveBox(-1, 0)
		case "right", "l":
			m.moveBox(1, 0)
		case "enter":
			return m.zoomIn()
		case "backspace":
			return m.zoomOut()
		case "r":
			m.ex.Reset()
			cmd := m.recompute()
			return m, cmd
		case "[", ",":
			m.cycleGradient(-1)
		case "]", ".":
			m.cycleGradient(1)
		case "tab":
			m.ex.ToggleInverted()
			m.redraw()
		case " ":
			m.showBox = !m.showBox
			m.redraw()
		}
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder
	if m.frame == "" {
		b.WriteString(exploreStatusStyle.Render("computing…"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.frame)
	}

	st := m.ex.State()
	inv := ""
	if st.Inverted {
		inv = " inverted"
	}
	status := fmt.Sprintf("%s%s · depth %d · %s · %s", st.Gradient, inv, st.Depth, st.Numeric, formatBounds(st.Rect))
	if m.computing {
		status += " · computing…"
	}
	if m.err != nil {
		status = exploreErrStyle.Render(errs.UserMessage(m.err))
	} else {
		status = exploreStatusStyle.Render(status)
	}
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(exploreHelpStyle.Render("click/⏎ zoom  right/⌫ out  hjkl move  [ ] gradient  tab invert  r reset  q quit"))
	return b.String()
}

// =============================================================================
// Actions
// =============================================================================

func (m *exploreModel) recompute() tea.Cmd {
	m.computing = true
	ex, ctx, res := m.ex, m.ctx, m.res
	return func() tea.Msg {
		buf, err := ex.Recompute(ctx, res)
		return frameMsg{buf: buf, err: err}
	}
}

func (m exploreModel) zoomIn() (tea.Model, tea.Cmd) {
	if err := m.ex.ZoomIn(m.boxX, m.boxY, session.Square(m.margin)); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	cmd := m.recompute()
	return m, cmd
}

func (m exploreModel) zoomOut() (tea.Model, tea.Cmd) {
	if !m.ex.ZoomOut() {
		return m, nil
	}
	cmd := m.recompute()
	return m, cmd
}

func (m *exploreModel) moveBox(dx, dy int) {
	step := max(m.margin/2, 1)
	m.boxX = clampInt(m.boxX+dx*step, 0, m.res.Width-1)
	m.boxY = clampInt(m.boxY+dy*step, 0, m.res.Height-1)
	m.redraw()
}

func (m *exploreModel) cycleGradient(delta int) {
	if _, err := m.ex.CycleGradient(delta); err != nil {
		m.err = err
		return
	}
	m.redraw()
}

// redraw recolors the installed buffer; it never recomputes.
func (m *exploreModel) redraw() {
	img := m.ex.Image()
	if img == nil {
		return
	}
	if m.showBox {
		drawBox(img, m.boxX, m.boxY, m.margin)
	}
	m.frame = halfBlocks(img)
}

// drawBox outlines the square of half-size margin around (cx, cy).
func drawBox(img *image.RGBA, cx, cy, margin int) {
	r := image.Rect(cx-margin, cy-margin, cx+margin, cy+margin).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, boxColor)
		img.SetRGBA(x, r.Max.Y-1, boxColor)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, boxColor)
		img.SetRGBA(r.Max.X-1, y, boxColor)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
