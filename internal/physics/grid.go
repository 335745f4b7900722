package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGrid is returned when grid dimensions are not positive.
var ErrInvalidGrid = errors.New("physics: invalid grid dimensions")

// poolNodesPerItem sizes the node pool: one node per insertion plus the
// 3x3 neighbourhood lists built while resolving collisions.
const poolNodesPerItem = 20

// SpatialGrid is a uniform grid for broad-phase collision detection in a
// bounded arena. Items are inserted by position and index, then nearby
// items can be gathered from the 3x3 block of cells around a position.
//
// Cells hold intrusive lists whose nodes come from a NodePool that is
// rewound by Clear, so a populated grid costs no allocations per tick
// once the pool has reached its working size.
//
// Cell size should be at least the largest body diameter (2-3x is a good
// choice) so that every overlapping pair shares a 3x3 neighbourhood.
type SpatialGrid struct {
	cellW, cellH float64
	cols         int
	rows         int
	cells        []NodeList // row-major: row*cols + col
	pool         *NodePool
}

// NewSpatialGrid creates a grid covering worldW x worldH with cells of
// cellW x cellH. Rows and columns use floor division, so when the cell size
// does not divide the world evenly the trailing cells absorb the remainder.
// itemHint is the expected number of inserted items and sizes the pool.
func NewSpatialGrid(itemHint int, worldW, worldH, cellW, cellH float64) (*SpatialGrid, error) {
	if worldW <= 0 || worldH <= 0 || cellW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf("%w: world %gx%g, cell %gx%g", ErrInvalidGrid, worldW, worldH, cellW, cellH)
	}

	cols := int(worldW / cellW)
	rows := int(worldH / cellH)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if itemHint < 1 {
		itemHint = 1
	}

	g := &SpatialGrid{
		cellW: cellW,
		cellH: cellH,
		cols:  cols,
		rows:  rows,
		cells: make([]NodeList, cols*rows),
		pool:  NewNodePool(itemHint * poolNodesPerItem),
	}
	g.Clear()
	return g, nil
}

// Rows returns the number of cell rows.
func (g *SpatialGrid) Rows() int { return g.rows }

// Columns returns the number of cell columns.
func (g *SpatialGrid) Columns() int { return g.cols }

// CellSize returns the width and height of a cell.
func (g *SpatialGrid) CellSize() (w, h float64) { return g.cellW, g.cellH }

// Pool exposes the node pool, mainly for diagnostics.
func (g *SpatialGrid) Pool() *NodePool { return g.pool }

// Clear empties every cell and rewinds the node pool. It must run before
// items are reinserted for a new tick.
func (g *SpatialGrid) Clear() {
	g.pool.Reset()
	for i := range g.cells {
		g.cells[i] = NodeList{head: nilNode}
	}
}

// Insert adds an item (identified by index) at the given world position.
func (g *SpatialGrid) Insert(x, y float64, index int) {
	row, col := g.CellAt(x, y)
	g.pool.push(&g.cells[row*g.cols+col], int32(index))
}

// CellAt converts world coordinates to a cell. Positions outside the arena
// are clamped into the nearest edge cell.
func (g *SpatialGrid) CellAt(x, y float64) (row, col int) {
	row = clampIndex(y/g.cellH, g.rows)
	col = clampIndex(x/g.cellW, g.cols)
	return row, col
}

// clampIndex floors v and clamps it to [0, n-1]. NaN maps to 0.
func clampIndex(v float64, n int) int {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v >= float64(n) {
		return n - 1
	}
	return int(v)
}

// Cell returns the list of items in a cell. Out-of-range cells are empty.
func (g *SpatialGrid) Cell(row, col int) NodeList {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return NodeList{head: nilNode}
	}
	return g.cells[row*g.cols+col]
}

// Nearby gathers every item in the 3x3 block of cells around the given
// position, including any item located at that position itself.
func (g *SpatialGrid) Nearby(x, y float64) NodeList {
	row, col := g.CellAt(x, y)
	return g.NearbyCell(row, col)
}

// NearbyCell gathers every item in the cell and its in-bounds neighbours
// into a fresh pool-backed list. Order is unspecified.
func (g *SpatialGrid) NearbyCell(row, col int) NodeList {
	out := NodeList{head: nilNode}
	for r := row - 1; r <= row+1; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		rowOffset := r * g.cols
		for c := col - 1; c <= col+1; c++ {
			if c < 0 || c >= g.cols {
				continue
			}
			cell := g.cells[rowOffset+c]
			if cell.count == 0 {
				continue
			}
			g.Each(cell, func(index int) bool {
				g.pool.push(&out, int32(index))
				return false
			})
		}
	}
	return out
}

// Each calls fn for each item index in list.
// If fn returns true, iteration stops early.
func (g *SpatialGrid) Each(list NodeList, fn func(index int) bool) {
	idx := list.head
	for i := 0; i < list.count; i++ {
		n := g.pool.nodes[idx]
		if fn(int(n.item)) {
			return
		}
		idx = n.next
	}
}

// QueryAround calls fn for each item index in the 3x3 cell neighbourhood
// around the given world position without building an intermediate list.
// It visits the same items as Nearby.
// If fn returns true, iteration stops early (useful for "find first" queries).
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int) bool) {
	row, col := g.CellAt(x, y)

	for r := max(row-1, 0); r <= min(row+1, g.rows-1); r++ {
		rowOffset := r * g.cols
		for c := max(col-1, 0); c <= min(col+1, g.cols-1); c++ {
			stop := false
			g.Each(g.cells[rowOffset+c], func(index int) bool {
				stop = fn(index)
				return stop
			})
			if stop {
				return
			}
		}
	}
}
