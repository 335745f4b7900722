package client

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/circles/internal/draw"
	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/loop/server"
)

// drawFrame draws the current frame.
func (v *Viewer) drawFrame() error {
	// On state or inactivity transitions, do a full terminal clear so
	// banners from the previous state don't persist on screen.
	stateChanged := v.state.State != v.state.prevState
	inactiveChanged := v.state.isInactive != v.state.wasInactive
	if stateChanged || inactiveChanged {
		v.chunkWriter.WriteString("\033[H\033[2J")
		v.canvas.ForceRedraw()
		v.state.prevState = v.state.State
		v.state.wasInactive = v.state.isInactive
	}

	snapshot := v.sim.GetSnapshot()

	v.canvas.Clear()
	if v.state.GridOverlay {
		v.drawGrid(snapshot.Grid)
	}
	v.drawBodies(snapshot)

	v.canvas.Render(v.chunkWriter)
	// The border rows carry the status and help lines.
	v.canvas.RenderBorder(v.chunkWriter)
	v.drawUI(snapshot)

	return v.chunkWriter.Flush()
}

// drawGrid shades occupied cells by body count and draws the cell lines.
func (v *Viewer) drawGrid(g server.GridSnapshot) {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			n := g.CellCount(row, col)
			if n == 0 {
				continue
			}
			v.canvas.SetColorIndex(occupancyShade(n))
			v.canvas.FillRect(float64(col)*g.CellWidth, float64(row)*g.CellHeight, g.CellWidth, g.CellHeight)
		}
	}

	v.canvas.SetColorIndex(draw.ColorGridLine)
	v.canvas.DrawGrid(g.Rows, g.Columns, g.CellWidth, g.CellHeight)
}

// occupancyShade maps a cell's body count onto the dark end of the grey ramp.
func occupancyShade(n int) uint8 {
	return uint8(232 + min(n, 5))
}

// drawBodies draws every body as a filled circle in its own colour.
func (v *Viewer) drawBodies(snapshot *server.WorldSnapshot) {
	for i := range snapshot.Bodies {
		b := &snapshot.Bodies[i]
		v.canvas.SetColor(b.Color)
		v.canvas.DrawCircle(b.X, b.Y, b.Radius, config.CircleSegments, true)
	}
}

// drawUI draws the HUD and any banner over the canvas.
func (v *Viewer) drawUI(snapshot *server.WorldSnapshot) {
	width := v.canvas.TerminalWidth()
	height := v.canvas.TerminalHeight() + 2

	status := draw.Status{
		Tick:          snapshot.Stats.Tick,
		Bodies:        len(snapshot.Bodies),
		Pairs:         snapshot.Stats.Pairs,
		WallHits:      snapshot.Stats.WallHits,
		Viewers:       snapshot.Viewers,
		CellsOccupied: snapshot.Grid.Stats.CellsOccupied,
		Cells:         snapshot.Grid.Rows * snapshot.Grid.Columns,
		MaxOccupancy:  snapshot.Grid.Stats.MaxOccupancy,
		Paused:        snapshot.Paused,
		GridOverlay:   v.state.GridOverlay,
	}
	v.chunkWriter.WriteAt(2, 1, " "+v.hud.StatusLine(status, width-4)+" ")
	v.chunkWriter.WriteAt(2, height, " "+v.hud.HelpLine(v.state.GridOverlay, width-4)+" ")

	switch {
	case v.state.State == ViewerStateShutdown:
		v.drawBanner(width, height,
			"SERVER SHUTTING DOWN",
			fmt.Sprintf("Disconnecting in %d seconds", max(int(v.state.shutdownTimer+0.999), 0)))
	case v.state.isInactive:
		v.drawBanner(width, height,
			"INACTIVITY WARNING",
			fmt.Sprintf("You will be disconnected in %d seconds.",
				int(config.InactivityDisconnectUser-time.Since(v.lastInput).Seconds())),
			"Press any key to continue")
	}
}

// drawBanner centres a bordered message in the render area.
func (v *Viewer) drawBanner(width, height int, lines ...string) {
	banner := v.hud.Banner(lines...)
	col := max((width-lipgloss.Width(banner))/2+1, 1)
	row := max((height-lipgloss.Height(banner))/2+1, 1)
	v.chunkWriter.WriteBlock(col, row, banner)
}
