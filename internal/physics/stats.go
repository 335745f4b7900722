package physics

// GridStats summarises grid occupancy for overlays and diagnostics.
type GridStats struct {
	CellsOccupied int
	ItemsTotal    int
	MaxOccupancy  int
}

// Stats computes occupancy statistics in a single pass over the cells.
func (g *SpatialGrid) Stats() GridStats {
	var stats GridStats
	for _, cell := range g.cells {
		if cell.count == 0 {
			continue
		}
		stats.CellsOccupied++
		stats.ItemsTotal += cell.count
		if cell.count > stats.MaxOccupancy {
			stats.MaxOccupancy = cell.count
		}
	}
	return stats
}

// Occupancy writes the item count of every cell (row-major) into dst,
// growing it if needed, and returns the filled slice.
func (g *SpatialGrid) Occupancy(dst []int) []int {
	n := len(g.cells)
	if cap(dst) < n {
		dst = make([]int, n)
	}
	dst = dst[:n]
	for i, cell := range g.cells {
		dst[i] = cell.count
	}
	return dst
}
