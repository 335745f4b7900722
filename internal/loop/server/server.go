package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/object"
)

// Simulation is the interface viewers use to talk to the server.
// Decouples the viewer from the concrete Server implementation.
type Simulation interface {
	RegisterViewer(name string) *ViewerHandle
	UnregisterViewer(viewerID int)
	Send(cmd Command)
	GetSnapshot() *WorldSnapshot
}

// CommandType identifies a viewer request.
type CommandType int

const (
	CommandTogglePause CommandType = iota
	CommandStep                    // Advance one tick while paused
	CommandReset                   // Repopulate from the seed
	CommandSpawn                   // Add Count bodies
)

// Command is a request from a viewer, applied at the start of the next tick.
type Command struct {
	Type  CommandType
	Count int
}

// ViewerEventType identifies an event sent to a viewer.
type ViewerEventType int

const (
	EventServerShutdown ViewerEventType = iota
)

// ViewerEvent is sent from the server to a viewer.
type ViewerEvent struct {
	Type ViewerEventType
}

// ViewerHandle represents a viewer's connection to the server.
type ViewerHandle struct {
	ID       int
	Name     string
	EventsCh chan ViewerEvent
}

// Server owns the world and advances it at a fixed tick rate. Only the Run
// goroutine touches the world; everyone else reads published snapshots.
type Server struct {
	world    *WorldState
	snapshot atomic.Pointer[WorldSnapshot]
	logger   *log.Logger
	tickTime time.Duration
	paused   bool

	viewers      map[int]*ViewerHandle
	nextViewerID int
	commandCh    chan Command
	registerCh   chan *ViewerHandle
	unregisterCh chan int
	mu           sync.RWMutex
}

// statsReportInterval is how often tick statistics are logged at debug level.
const statsReportInterval = 10 * time.Second

// Compile-time check that Server implements Simulation.
var _ Simulation = (*Server)(nil)

// ServerOptions configures a Server.
type ServerOptions struct {
	World    WorldOptions
	TickRate int         // Ticks per second; defaults to config.ServerTickRate
	Logger   *log.Logger // Defaults to log.Default()
}

// NewServer creates a server with a freshly populated world.
func NewServer(opts ServerOptions) (*Server, error) {
	world, err := NewWorldState(opts.World)
	if err != nil {
		return nil, err
	}

	tickTime := config.ServerTickTime
	if opts.TickRate > 0 {
		tickTime = time.Second / time.Duration(opts.TickRate)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		world:        world,
		logger:       logger,
		tickTime:     tickTime,
		viewers:      make(map[int]*ViewerHandle),
		nextViewerID: 1,
		commandCh:    make(chan Command, 64),
		registerCh:   make(chan *ViewerHandle, 16),
		unregisterCh: make(chan int, 16),
	}

	s.createSnapshot()
	return s, nil
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.logger.Info("simulation started",
		"bodies", len(s.world.Bodies),
		"rows", s.world.Grid().Rows(),
		"columns", s.world.Grid().Columns(),
		"tick", s.tickTime)

	ticker := time.NewTicker(s.tickTime)
	defer ticker.Stop()

	reportEvery := uint64(statsReportInterval / s.tickTime)
	if reportEvery == 0 {
		reportEvery = 1
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation stopped", "tick", s.world.Last.Tick)
			return
		case <-ticker.C:
		}

		s.processRegistrations()
		step := s.processCommands()

		if !s.paused || step {
			stats := s.world.Step()
			if stats.Tick%reportEvery == 0 {
				s.logger.Debug("tick",
					"n", stats.Tick,
					"pairs", stats.Pairs,
					"walls", stats.WallHits,
					"pool", s.world.Grid().Pool().Len())
			}
		}

		s.createSnapshot()
	}
}

// Shutdown notifies all connected viewers and waits for them to disconnect
// (up to the given timeout). The caller should cancel the Run context after
// Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.viewers {
		select {
		case handle.EventsCh <- ViewerEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.viewers)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterViewer registers a new viewer and returns its handle.
func (s *Server) RegisterViewer(name string) *ViewerHandle {
	s.mu.Lock()
	id := s.nextViewerID
	s.nextViewerID++
	s.mu.Unlock()

	handle := &ViewerHandle{
		ID:       id,
		Name:     name,
		EventsCh: make(chan ViewerEvent, 4),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterViewer removes a viewer from the server.
func (s *Server) UnregisterViewer(viewerID int) {
	s.unregisterCh <- viewerID
}

// Send queues a command for the next tick. Commands are dropped when the
// queue is full.
func (s *Server) Send(cmd Command) {
	select {
	case s.commandCh <- cmd:
	default:
	}
}

// GetSnapshot returns the most recently published snapshot.
func (s *Server) GetSnapshot() *WorldSnapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending viewer registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.viewers[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Info("viewer joined", "id", handle.ID, "name", handle.Name)
		case viewerID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.viewers[viewerID]; ok {
				close(handle.EventsCh)
				delete(s.viewers, viewerID)
				s.logger.Info("viewer left", "id", viewerID, "name", handle.Name)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

// processCommands applies queued commands. Returns true if a single step
// was requested.
func (s *Server) processCommands() (step bool) {
	for {
		select {
		case cmd := <-s.commandCh:
			switch cmd.Type {
			case CommandTogglePause:
				s.paused = !s.paused
			case CommandStep:
				step = true
			case CommandReset:
				s.world.Reset()
			case CommandSpawn:
				added := s.world.AddBodies(cmd.Count)
				s.logger.Debug("spawned bodies", "added", added, "total", len(s.world.Bodies))
			}
		default:
			return step
		}
	}
}

// createSnapshot publishes a copy of the world for viewers. Snapshots are
// freshly allocated so a slow viewer never sees a buffer being rewritten.
func (s *Server) createSnapshot() {
	buf := make([]object.Body, len(s.world.Bodies))
	for i, b := range s.world.Bodies {
		buf[i] = *b
	}

	grid := s.world.Grid()
	cellW, cellH := grid.CellSize()

	s.mu.RLock()
	viewers := len(s.viewers)
	s.mu.RUnlock()

	s.snapshot.Store(&WorldSnapshot{
		Bodies:  buf,
		Bounds:  s.world.Bounds,
		Stats:   s.world.Last,
		Paused:  s.paused,
		Viewers: viewers,
		Grid: GridSnapshot{
			Rows:       grid.Rows(),
			Columns:    grid.Columns(),
			CellWidth:  cellW,
			CellHeight: cellH,
			Occupancy:  grid.Occupancy(nil),
			Stats:      grid.Stats(),
		},
	})
}
