// Package client renders simulation snapshots to a single terminal and
// forwards the viewer's key presses to the server as commands.
package client

import (
	"bufio"
	"io"
	"time"

	"github.com/tomz197/circles/internal/draw"
	"github.com/tomz197/circles/internal/input"
	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/loop/server"
)

// Viewer handles rendering and input for a single connection.
type Viewer struct {
	sim          server.Simulation
	handle       *server.ViewerHandle
	state        *viewState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates border and HUD text for chunked output
	hud          *draw.HUD
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	opts         ViewerOptions
}

// ViewerOptions configures a viewer.
type ViewerOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Name         string
	ForceColor   bool // Render 256 colours even if the writer is not a terminal
	Inactivity   bool // Warn and then disconnect idle viewers
}

// NewViewer creates a viewer registered with the given simulation.
func NewViewer(sim server.Simulation, r *bufio.Reader, w io.Writer, opts ViewerOptions) *Viewer {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}

	snapshot := sim.GetSnapshot()
	termWidth, termHeight, _ := opts.TermSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	canvas := draw.NewScaledCanvas(renderWidth, canvasRows(renderHeight), snapshot.Bounds.Width, snapshot.Bounds.Height)
	canvas.SetOffset(offsetCol, offsetRow+1)

	return &Viewer{
		sim:          sim,
		handle:       sim.RegisterViewer(opts.Name),
		state:        newViewState(),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		hud:          draw.NewHUD(w, opts.ForceColor),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		termSizeFunc: opts.TermSizeFunc,
		opts:         opts,
	}
}

// Run starts the viewer loop. Blocks until the viewer quits, its input
// closes or the server shuts down.
func (v *Viewer) Run() error {
	defer v.inputStream.Stop()

	draw.HideCursor(v.writer)
	defer draw.ShowCursor(v.writer)
	draw.ClearScreen(v.writer)

	lastTime := time.Now()

	for v.state.Running {
		frameStart := time.Now()
		v.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		v.processInput()
		v.processServerEvents()
		v.updateScreen()

		if v.state.State == ViewerStateShutdown {
			v.updateShutdownState()
		}

		if err := v.drawFrame(); err != nil {
			v.sim.UnregisterViewer(v.handle.ID)
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	v.sim.UnregisterViewer(v.handle.ID)

	draw.ClearScreen(v.writer)
	return nil
}

// processInput reads input and turns key presses into server commands.
func (v *Viewer) processInput() {
	in := input.ReadInput(v.inputStream)
	v.state.Input = in

	if in.Quit {
		v.state.Running = false
		return
	}

	if in.Any {
		v.lastInput = time.Now()
		v.state.isInactive = false
	} else if v.opts.Inactivity {
		idle := time.Since(v.lastInput).Seconds()
		if idle > config.InactivityDisconnectUser {
			v.state.Running = false
			return
		}
		v.state.isInactive = idle > config.InactivityWarnUser
	}

	if in.Closed {
		v.state.Running = false
	}

	if v.state.State != ViewerStateWatching {
		return
	}

	if in.Pause {
		v.sim.Send(server.Command{Type: server.CommandTogglePause})
	}
	if in.Step {
		v.sim.Send(server.Command{Type: server.CommandStep})
	}
	if in.Reset {
		v.sim.Send(server.Command{Type: server.CommandReset})
	}
	if in.Spawn > 0 {
		v.sim.Send(server.Command{Type: server.CommandSpawn, Count: in.Spawn * config.SpawnBatch})
	}
	if in.Grid {
		v.state.GridOverlay = !v.state.GridOverlay
	}
}

// processServerEvents handles events from the server.
func (v *Viewer) processServerEvents() {
	for {
		select {
		case event, ok := <-v.handle.EventsCh:
			if !ok {
				v.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				v.state.State = ViewerStateShutdown
				v.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (v *Viewer) updateScreen() {
	termWidth, termHeight, err := v.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	rows := canvasRows(renderHeight)

	if renderWidth != v.canvas.TerminalWidth() || rows != v.canvas.TerminalHeight() ||
		offsetCol != v.canvas.OffsetCol() || offsetRow+1 != v.canvas.OffsetRow() {
		draw.ClearScreen(v.writer)
		v.canvas.ForceRedraw()
	}

	v.canvas.Resize(renderWidth, rows)
	v.canvas.SetOffset(offsetCol, offsetRow+1)
	v.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// updateShutdownState counts down the shutdown message.
func (v *Viewer) updateShutdownState() {
	v.state.shutdownTimer -= v.state.delta.Seconds()
	if v.state.shutdownTimer <= 0 {
		v.state.Running = false
	}
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// canvasRows is the canvas height left after the status and help lines.
func canvasRows(renderHeight int) int {
	return max(renderHeight-2, 1)
}
