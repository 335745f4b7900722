package server

import (
	"github.com/tomz197/circles/internal/object"
	"github.com/tomz197/circles/internal/physics"
)

// GridSnapshot describes grid occupancy after a tick, for overlays.
type GridSnapshot struct {
	Rows, Columns         int
	CellWidth, CellHeight float64
	Occupancy             []int // Items per cell, row-major
	Stats                 physics.GridStats
}

// CellCount returns the number of bodies in a cell, or 0 if out of range.
func (g GridSnapshot) CellCount(row, col int) int {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Columns {
		return 0
	}
	return g.Occupancy[row*g.Columns+col]
}

// WorldSnapshot is an immutable copy of the world taken after a tick.
type WorldSnapshot struct {
	Bodies  []object.Body
	Bounds  object.Bounds
	Stats   TickStats
	Grid    GridSnapshot
	Paused  bool
	Viewers int
}
