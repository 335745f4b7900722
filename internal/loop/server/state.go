package server

import (
	"fmt"
	"math/rand"

	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/object"
	"github.com/tomz197/circles/internal/physics"
)

// WorldOptions configures a WorldState. Grid settings cannot change after
// the world is created.
type WorldOptions struct {
	Bodies      int
	Radius      float64
	MaxSpeed    float64
	Bounds      object.Bounds
	CellWidth   float64
	CellHeight  float64
	Restitution float64
	Seed        int64
	Recolor     bool              // Give colliding bodies new random colours
	Observer    CollisionObserver // Extra collision callback, may be nil
}

// DefaultWorldOptions returns the options built from the package defaults.
func DefaultWorldOptions() WorldOptions {
	return WorldOptions{
		Bodies:      config.DefaultBodies,
		Radius:      config.DefaultRadius,
		MaxSpeed:    config.DefaultMaxSpeed,
		Bounds:      object.Bounds{Width: config.WorldWidth, Height: config.WorldHeight},
		CellWidth:   config.CellWidth,
		CellHeight:  config.CellHeight,
		Restitution: config.Restitution,
		Seed:        config.DefaultSeed,
		Recolor:     true,
	}
}

// TickStats describes what happened during one Step.
type TickStats struct {
	Tick     uint64
	Pairs    int // Body pairs resolved
	WallHits int // Bodies that touched a wall
}

// WorldState holds the bodies, the arena and the broad-phase grid.
// It is not safe for concurrent use; the Server serializes access.
type WorldState struct {
	Bodies []*object.Body
	Bounds object.Bounds
	Last   TickStats

	opts     WorldOptions
	rng      *rand.Rand
	grid     *physics.SpatialGrid
	resolver resolver
	nextID   int
}

// NewWorldState creates a world populated with opts.Bodies random bodies.
func NewWorldState(opts WorldOptions) (*WorldState, error) {
	if opts.Radius <= 0 {
		return nil, fmt.Errorf("body radius must be positive, got %g", opts.Radius)
	}

	grid, err := physics.NewSpatialGrid(opts.Bodies, opts.Bounds.Width, opts.Bounds.Height, opts.CellWidth, opts.CellHeight)
	if err != nil {
		return nil, fmt.Errorf("create grid: %w", err)
	}

	w := &WorldState{
		Bounds: opts.Bounds,
		opts:   opts,
		grid:   grid,
		resolver: resolver{
			restitution: opts.Restitution,
			epsilon:     config.SeparationEpsilon,
		},
	}

	var observers []CollisionObserver
	if opts.Recolor {
		observers = append(observers, ObserverFunc(func(a, b *object.Body) {
			a.Recolor(w.rng)
			b.Recolor(w.rng)
		}))
	}
	if opts.Observer != nil {
		observers = append(observers, opts.Observer)
	}
	switch len(observers) {
	case 0:
	case 1:
		w.resolver.observer = observers[0]
	default:
		w.resolver.observer = multiObserver(observers)
	}

	w.Reset()
	return w, nil
}

// Grid returns the broad-phase grid as populated by the last Step.
func (w *WorldState) Grid() *physics.SpatialGrid {
	return w.grid
}

// Reset discards all bodies and repopulates the world from the seed.
func (w *WorldState) Reset() {
	w.rng = rand.New(rand.NewSource(w.opts.Seed))
	w.Bodies = w.Bodies[:0]
	w.nextID = 0
	w.Last = TickStats{}
	w.grid.Clear()
	w.AddBodies(w.opts.Bodies)
}

// AddBodies adds n random bodies with fresh ids, up to config.MaxBodies.
// Returns the number actually added.
func (w *WorldState) AddBodies(n int) int {
	if room := config.MaxBodies - len(w.Bodies); n > room {
		n = room
	}
	if n <= 0 {
		return 0
	}
	w.AddBody(object.Populate(w.nextID, n, w.opts.Radius, w.opts.MaxSpeed, w.Bounds, w.rng)...)
	return n
}

// AddBody adds bodies built by the caller. Ids must be unique; later
// generated ids continue after the highest one seen.
func (w *WorldState) AddBody(bodies ...*object.Body) {
	for _, b := range bodies {
		if b.ID >= w.nextID {
			w.nextID = b.ID + 1
		}
	}
	w.Bodies = append(w.Bodies, bodies...)
}

// Step advances the simulation by one tick:
// clear grid, move, reinsert, resolve body pairs, resolve walls.
func (w *WorldState) Step() TickStats {
	w.grid.Clear()

	for _, b := range w.Bodies {
		b.Move()
	}

	for i, b := range w.Bodies {
		w.grid.Insert(b.X, b.Y, i)
	}

	stats := TickStats{Tick: w.Last.Tick + 1}
	stats.Pairs = w.resolver.resolveCollisions(w.grid, w.Bodies)

	for _, b := range w.Bodies {
		if resolveWalls(b, w.Bounds) != physics.NoWallHit {
			stats.WallHits++
		}
	}

	w.Last = stats
	return stats
}

// MaxPenetration returns the deepest overlap between any two bodies that
// share a grid neighbourhood. Positions have moved since the grid was built,
// so this is a diagnostic, not an exact measure.
func (w *WorldState) MaxPenetration() float64 {
	deepest := 0.0
	for _, c1 := range w.Bodies {
		w.grid.QueryAround(c1.X, c1.Y, func(j int) bool {
			c2 := w.Bodies[j]
			if c1.ID < c2.ID {
				deepest = max(deepest, penetration(c1, c2))
			}
			return false
		})
	}
	return deepest
}
