package client

import (
	"time"

	"github.com/tomz197/circles/internal/input"
)

// ViewerState represents the current phase of a viewer.
type ViewerState int

const (
	ViewerStateWatching ViewerState = iota // Rendering the simulation
	ViewerStateShutdown                    // Server is shutting down
)

// viewState holds per-viewer state. Each Viewer owns its own instance.
type viewState struct {
	Input       input.Input
	State       ViewerState
	GridOverlay bool // Draw cell lines and occupancy shading
	Running     bool

	prevState     ViewerState
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Showing the inactivity warning
	wasInactive   bool
}

func newViewState() *viewState {
	return &viewState{
		State:   ViewerStateWatching,
		Running: true,
	}
}
