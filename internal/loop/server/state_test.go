package server

import (
	"errors"
	"math"
	"testing"

	"github.com/tomz197/circles/internal/object"
	"github.com/tomz197/circles/internal/physics"
)

func testWorldOptions(bodies int) WorldOptions {
	opts := DefaultWorldOptions()
	opts.Bodies = bodies
	opts.Seed = 3
	return opts
}

func newTestWorld(t *testing.T, opts WorldOptions) *WorldState {
	t.Helper()
	w, err := NewWorldState(opts)
	if err != nil {
		t.Fatalf("NewWorldState: %v", err)
	}
	return w
}

func TestNewWorldStateRejectsBadGrid(t *testing.T) {
	opts := testWorldOptions(10)
	opts.CellWidth = 0

	_, err := NewWorldState(opts)
	if !errors.Is(err, physics.ErrInvalidGrid) {
		t.Errorf("Expected ErrInvalidGrid, got %v", err)
	}
}

func TestNewWorldStateRejectsBadRadius(t *testing.T) {
	opts := testWorldOptions(10)
	opts.Radius = 0

	if _, err := NewWorldState(opts); err == nil {
		t.Error("Expected error for zero radius")
	}
}

func TestStepKeepsBodiesInsideArena(t *testing.T) {
	w := newTestWorld(t, testWorldOptions(300))

	for i := 0; i < 200; i++ {
		w.Step()
		for _, b := range w.Bodies {
			if b.X-b.Radius < 0 || b.X+b.Radius > w.Bounds.Width ||
				b.Y-b.Radius < 0 || b.Y+b.Radius > w.Bounds.Height {
				t.Fatalf("Tick %d: body %d escaped to (%g, %g)", i, b.ID, b.X, b.Y)
			}
		}
	}
}

func TestStepConservesEnergy(t *testing.T) {
	w := newTestWorld(t, testWorldOptions(150))
	before := object.KineticEnergy(w.Bodies)

	for i := 0; i < 300; i++ {
		w.Step()
	}

	after := object.KineticEnergy(w.Bodies)
	if math.Abs(after-before) > before*1e-6 {
		t.Errorf("Expected energy %g to be conserved, got %g", before, after)
	}
}

func TestStepBucketsEveryBodyOnce(t *testing.T) {
	w := newTestWorld(t, testWorldOptions(120))
	w.Step()

	stats := w.Grid().Stats()
	if stats.ItemsTotal != len(w.Bodies) {
		t.Errorf("Expected %d bodies in grid, got %d", len(w.Bodies), stats.ItemsTotal)
	}
}

func TestStepCountsTicksAndPairs(t *testing.T) {
	opts := testWorldOptions(0)
	opts.Recolor = false
	w := newTestWorld(t, opts)
	w.AddBody(
		newBody(0, 10, 100, 100, 1, 0),
		newBody(1, 10, 119, 100, -1, 0),
	)

	stats := w.Step()

	if stats.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", stats.Tick)
	}
	if stats.Pairs != 1 {
		t.Errorf("Expected 1 pair, got %d", stats.Pairs)
	}
	if w.Bodies[0].VX != -1 || w.Bodies[1].VX != 1 {
		t.Errorf("Expected velocities exchanged, got %g and %g", w.Bodies[0].VX, w.Bodies[1].VX)
	}
}

func TestStepWallHitsCounted(t *testing.T) {
	opts := testWorldOptions(0)
	w := newTestWorld(t, opts)
	w.AddBody(newBody(0, 10, 11, 100, -3, 0))

	if stats := w.Step(); stats.WallHits != 1 {
		t.Errorf("Expected 1 wall hit, got %d", stats.WallHits)
	}
	if b := w.Bodies[0]; b.X != 10 || b.VX != 3 {
		t.Errorf("Expected x=10 vx=3, got x=%g vx=%g", b.X, b.VX)
	}
}

func TestObserverNotifiedOncePerPair(t *testing.T) {
	counts := map[[2]int]int{}
	opts := testWorldOptions(0)
	opts.Observer = ObserverFunc(func(a, b *object.Body) {
		counts[[2]int{a.ID, b.ID}]++
	})
	w := newTestWorld(t, opts)
	w.AddBody(
		newBody(5, 8, 30, 30, 0, 0),
		newBody(9, 8, 34, 30, 0, 0),
		newBody(2, 8, 32, 33, 0, 0),
	)

	w.Step()

	if len(counts) != 3 {
		t.Errorf("Expected 3 distinct pairs, got %v", counts)
	}
	for pair, n := range counts {
		if n != 1 {
			t.Errorf("Pair %v resolved %d times", pair, n)
		}
		if pair[0] >= pair[1] {
			t.Errorf("Pair %v not ordered by id", pair)
		}
	}
}

func TestRecolorChangesCollidingBodies(t *testing.T) {
	w := newTestWorld(t, testWorldOptions(0))
	a := newBody(0, 10, 100, 100, 1, 0)
	b := newBody(1, 10, 110, 100, -1, 0)
	w.AddBody(a, b)
	colorA, colorB := a.Color, b.Color

	w.Step()

	if a.Color == colorA || b.Color == colorB {
		t.Error("Expected colliding bodies to receive new colours")
	}
}

func TestAddBodiesContinuesIDs(t *testing.T) {
	w := newTestWorld(t, testWorldOptions(5))
	w.AddBody(newBody(40, 3, 10, 10, 0, 0))

	if n := w.AddBodies(2); n != 2 {
		t.Fatalf("Expected 2 bodies added, got %d", n)
	}

	seen := map[int]bool{}
	for _, b := range w.Bodies {
		if seen[b.ID] {
			t.Errorf("Duplicate id %d", b.ID)
		}
		seen[b.ID] = true
	}
	if !seen[41] || !seen[42] {
		t.Errorf("Expected ids 41 and 42, got %v", seen)
	}
}

func TestResetRestoresSeededWorld(t *testing.T) {
	w := newTestWorld(t, testWorldOptions(20))
	first := *w.Bodies[0]

	for i := 0; i < 10; i++ {
		w.Step()
	}
	w.AddBodies(5)
	w.Reset()

	if len(w.Bodies) != 20 {
		t.Errorf("Expected 20 bodies after reset, got %d", len(w.Bodies))
	}
	if *w.Bodies[0] != first {
		t.Error("Expected first body to match the first seeded run")
	}
	if w.Last.Tick != 0 {
		t.Errorf("Expected tick counter reset, got %d", w.Last.Tick)
	}
}

func TestMaxPenetrationStaysSmall(t *testing.T) {
	w := newTestWorld(t, testWorldOptions(200))
	for i := 0; i < 50; i++ {
		w.Step()
	}

	// Bodies resolved this tick are separated; anything left over comes from
	// later wall clamps or third bodies and stays well below one radius.
	if p := w.MaxPenetration(); p > w.opts.Radius {
		t.Errorf("Expected penetration below %g, got %g", w.opts.Radius, p)
	}
}

func TestStepWithUnevenCells(t *testing.T) {
	opts := testWorldOptions(60)
	opts.Bounds = object.Bounds{Width: 130, Height: 97}
	opts.CellWidth, opts.CellHeight = 12, 12
	opts.Radius = 4
	w := newTestWorld(t, opts)

	g := w.Grid()
	if g.Columns() != 10 || g.Rows() != 8 {
		t.Fatalf("Expected 10x8 grid, got %dx%d", g.Columns(), g.Rows())
	}

	for tick := 0; tick < 200; tick++ {
		w.Step()

		seen := make([]int, len(w.Bodies))
		for row := 0; row < g.Rows(); row++ {
			for col := 0; col < g.Columns(); col++ {
				g.Each(g.Cell(row, col), func(i int) bool {
					seen[i]++
					return false
				})
			}
		}
		for i, n := range seen {
			if n != 1 {
				t.Fatalf("Tick %d: body %d bucketed %d times", tick, w.Bodies[i].ID, n)
			}
		}

		for _, b := range w.Bodies {
			if b.X-b.Radius < 0 || b.X+b.Radius > 130 || b.Y-b.Radius < 0 || b.Y+b.Radius > 97 {
				t.Fatalf("Tick %d: body %d escaped to (%g, %g)", tick, b.ID, b.X, b.Y)
			}
		}
	}
}

func TestPoolGrowthDoesNotChangeResolution(t *testing.T) {
	opts := testWorldOptions(60)
	opts.Bounds = object.Bounds{Width: 130, Height: 97}
	opts.CellWidth, opts.CellHeight = 12, 12
	opts.Radius = 4
	opts.Recolor = false
	sized := newTestWorld(t, opts)

	// A world created empty starts with the smallest pool.
	opts.Bodies = 0
	small := newTestWorld(t, opts)
	initialCap := small.Grid().Pool().Cap()
	for _, b := range sized.Bodies {
		c := *b
		small.AddBody(&c)
	}

	for tick := 0; tick < 100; tick++ {
		a := sized.Step()
		b := small.Step()
		if a != b {
			t.Fatalf("Tick %d: expected stats %+v, got %+v", tick, a, b)
		}
	}

	if small.Grid().Pool().Cap() <= initialCap {
		t.Errorf("Expected the pool to grow past %d nodes", initialCap)
	}
	for i := range sized.Bodies {
		if *sized.Bodies[i] != *small.Bodies[i] {
			t.Fatalf("Body %d diverged: %+v vs %+v", sized.Bodies[i].ID, *sized.Bodies[i], *small.Bodies[i])
		}
	}
}
