package client

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/loop/server"
	"github.com/tomz197/circles/internal/object"
)

// fakeSim records commands and serves a fixed snapshot.
type fakeSim struct {
	mu           sync.Mutex
	commands     []server.Command
	snapshot     *server.WorldSnapshot
	handle       *server.ViewerHandle
	unregistered bool
}

func newFakeSim() *fakeSim {
	b := object.NewBody(1, 20)
	b.X, b.Y = 100, 100
	b.Color = colorful.Color{R: 1, G: 0, B: 0}

	return &fakeSim{
		snapshot: &server.WorldSnapshot{
			Bodies: []object.Body{*b},
			Bounds: object.Bounds{Width: 640, Height: 480},
			Stats:  server.TickStats{Tick: 42, Pairs: 3},
			Grid: server.GridSnapshot{
				Rows: 2, Columns: 2,
				CellWidth: 320, CellHeight: 240,
				Occupancy: []int{1, 0, 0, 0},
			},
		},
	}
}

func (f *fakeSim) RegisterViewer(name string) *server.ViewerHandle {
	f.handle = &server.ViewerHandle{ID: 7, Name: name, EventsCh: make(chan server.ViewerEvent, 4)}
	return f.handle
}

func (f *fakeSim) UnregisterViewer(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = true
}

func (f *fakeSim) Send(cmd server.Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
}

func (f *fakeSim) GetSnapshot() *server.WorldSnapshot {
	return f.snapshot
}

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

func newTestViewer(sim server.Simulation, r io.Reader, w io.Writer) *Viewer {
	return NewViewer(sim, bufio.NewReader(r), w, ViewerOptions{
		TermSizeFunc: fixedSize(80, 24),
		Name:         "test",
	})
}

func TestRunSendsCommandsAndExitsOnEOF(t *testing.T) {
	sim := newFakeSim()
	var out bytes.Buffer
	v := newTestViewer(sim, strings.NewReader(" n+r"), &out)

	done := make(chan error, 1)
	go func() { done <- v.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after input closed")
	}

	want := map[server.CommandType]server.Command{
		server.CommandTogglePause: {Type: server.CommandTogglePause},
		server.CommandStep:        {Type: server.CommandStep},
		server.CommandReset:       {Type: server.CommandReset},
		server.CommandSpawn:       {Type: server.CommandSpawn, Count: config.SpawnBatch},
	}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	if len(sim.commands) != len(want) {
		t.Fatalf("Expected %d commands, got %+v", len(want), sim.commands)
	}
	for _, cmd := range sim.commands {
		if want[cmd.Type] != cmd {
			t.Errorf("Unexpected command %+v", cmd)
		}
	}
	if !sim.unregistered {
		t.Error("Expected viewer to unregister on exit")
	}
}

func TestQuitStopsViewer(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	v := newTestViewer(sim, pr, io.Discard)

	go pw.Write([]byte("q"))

	done := make(chan error, 1)
	go func() { done <- v.Run() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected q to stop the viewer")
	}
}

func TestDrawFrameRendersBodiesAndHUD(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	v := newTestViewer(sim, pr, &out)

	if err := v.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}

	s := out.String()
	if !strings.Contains(s, "\033[38;5;196m") {
		t.Error("Expected the red body to be drawn in xterm colour 196")
	}
	for _, want := range []string{"tick", "42", "q quit"} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected frame to contain %q", want)
		}
	}
}

func TestGridOverlayShadesOccupiedCells(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	v := newTestViewer(sim, pr, &out)
	v.state.GridOverlay = true

	if err := v.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}

	if !strings.Contains(out.String(), "38;5;233") {
		t.Error("Expected the occupied cell to be shaded")
	}
	if !strings.Contains(out.String(), "38;5;238") {
		t.Error("Expected grid lines to be drawn")
	}
}

func TestShutdownEventShowsBanner(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	v := newTestViewer(sim, pr, &out)

	sim.handle.EventsCh <- server.ViewerEvent{Type: server.EventServerShutdown}
	v.processServerEvents()

	if v.state.State != ViewerStateShutdown {
		t.Fatalf("Expected shutdown state, got %v", v.state.State)
	}
	if v.state.shutdownTimer != config.ShutdownDisplaySeconds {
		t.Errorf("Expected timer %v, got %v", config.ShutdownDisplaySeconds, v.state.shutdownTimer)
	}

	if err := v.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}
	if !strings.Contains(out.String(), "SERVER SHUTTING DOWN") {
		t.Error("Expected shutdown banner")
	}
}

func TestClosedEventsStopViewer(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	v := newTestViewer(sim, pr, io.Discard)

	close(sim.handle.EventsCh)
	v.processServerEvents()

	if v.state.Running {
		t.Error("Expected viewer to stop when the server closes its channel")
	}
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		name                 string
		w, h                 int
		rw, rh, offCol, offR int
	}{
		{"small", 80, 24, 80, 24, 0, 0},
		{"wide", config.MaxTermWidth + 20, 24, config.MaxTermWidth, 24, 10, 0},
		{"tall", 80, config.MaxTermHeight + 11, 80, config.MaxTermHeight, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw, rh, oc, or := clampTermSize(tt.w, tt.h)
			if rw != tt.rw || rh != tt.rh || oc != tt.offCol || or != tt.offR {
				t.Errorf("clampTermSize(%d, %d) = %d, %d, %d, %d", tt.w, tt.h, rw, rh, oc, or)
			}
		})
	}
}

func TestResizeClearsScreen(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	v := newTestViewer(sim, pr, &out)

	v.termSizeFunc = fixedSize(100, 30)
	v.updateScreen()

	if v.canvas.TerminalWidth() != 100 || v.canvas.TerminalHeight() != 28 {
		t.Errorf("Expected 100x28 canvas, got %dx%d", v.canvas.TerminalWidth(), v.canvas.TerminalHeight())
	}
	if !strings.Contains(out.String(), "\033[2J") {
		t.Error("Expected screen to be cleared on resize")
	}
}

func TestLargeTerminalDrawsBoxBorder(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	v := NewViewer(sim, bufio.NewReader(pr), &out, ViewerOptions{
		TermSizeFunc: fixedSize(config.MaxTermWidth+40, config.MaxTermHeight+20),
	})

	if err := v.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}

	// Render area starts at column 21, row 11; the top border sits on row 11.
	s := out.String()
	if !strings.Contains(s, "\033[11;20H┌") {
		t.Error("Expected top-left corner left of the centred render area")
	}
	if !strings.Contains(s, "│") || !strings.Contains(s, "┘") {
		t.Error("Expected side bars and bottom corners")
	}
}

func TestSmallTerminalDrawsFrameLinesOnly(t *testing.T) {
	sim := newFakeSim()
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	v := newTestViewer(sim, pr, &out)

	if err := v.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}

	s := out.String()
	if !strings.Contains(s, "\033[1;1H─") {
		t.Error("Expected the status frame line on row 1")
	}
	if strings.Contains(s, "┌") || strings.Contains(s, "│") {
		t.Error("Expected no side bars without a column offset")
	}
}

func TestRunStopsInputReader(t *testing.T) {
	sim := newFakeSim()
	// Quit followed by more input than the stream buffers.
	v := newTestViewer(sim, strings.NewReader("q"+strings.Repeat("x", 1000)), io.Discard)

	if err := v.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	select {
	case <-v.inputStream.Finished():
	case <-time.After(time.Second):
		t.Fatal("Expected the input reader to exit with the viewer")
	}
}
