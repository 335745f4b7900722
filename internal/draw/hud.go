package draw

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Status is the information shown in the viewer's status line.
type Status struct {
	Tick          uint64
	Bodies        int
	Pairs         int
	WallHits      int
	Viewers       int
	CellsOccupied int
	Cells         int
	MaxOccupancy  int
	Paused        bool
	GridOverlay   bool
}

// HUD styles the text drawn over the canvas.
type HUD struct {
	key    lipgloss.Style
	value  lipgloss.Style
	paused lipgloss.Style
	hint   lipgloss.Style
	box    lipgloss.Style
}

// NewHUD creates a HUD whose styles render for w. When forceColor is set the
// 256-colour profile is used even if w is not a terminal (SSH sessions).
func NewHUD(w io.Writer, forceColor bool) *HUD {
	r := lipgloss.NewRenderer(w)
	if forceColor {
		r.SetColorProfile(termenv.ANSI256)
	}
	return &HUD{
		key:    r.NewStyle().Foreground(lipgloss.Color("244")),
		value:  r.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		paused: r.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214")).Bold(true).Padding(0, 1),
		hint:   r.NewStyle().Foreground(lipgloss.Color("240")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 2).
			Align(lipgloss.Center),
	}
}

// StatusLine renders the tick statistics, truncated to width columns.
func (h *HUD) StatusLine(s Status, width int) string {
	fields := []string{
		h.field("tick", fmt.Sprint(s.Tick)),
		h.field("bodies", fmt.Sprint(s.Bodies)),
		h.field("pairs", fmt.Sprint(s.Pairs)),
		h.field("walls", fmt.Sprint(s.WallHits)),
		h.field("cells", fmt.Sprintf("%d/%d", s.CellsOccupied, s.Cells)),
		h.field("max", fmt.Sprint(s.MaxOccupancy)),
		h.field("viewers", fmt.Sprint(s.Viewers)),
	}
	line := strings.Join(fields, "  ")
	if s.Paused {
		line = h.paused.Render("PAUSED") + " " + line
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// HelpLine renders the key bindings, truncated to width columns.
func (h *HUD) HelpLine(gridOverlay bool, width int) string {
	grid := "show grid"
	if gridOverlay {
		grid = "hide grid"
	}
	help := fmt.Sprintf("q quit · space pause · n step · r reset · + spawn · g %s", grid)
	return lipgloss.NewStyle().MaxWidth(width).Render(h.hint.Render(help))
}

// Banner renders a bordered message box.
func (h *HUD) Banner(lines ...string) string {
	return h.box.Render(strings.Join(lines, "\n"))
}

func (h *HUD) field(key, value string) string {
	return h.key.Render(key+" ") + h.value.Render(value)
}
