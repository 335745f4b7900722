package draw

import (
	"math"
)

// CirclePoints fills dst with a regular polygon approximating a circle.
// len(dst) is the number of segments.
func CirclePoints(dst []Point, cx, cy, radius float64) []Point {
	n := len(dst)
	for i := range dst {
		angle := 2 * math.Pi * float64(i) / float64(n)
		dst[i] = Point{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		}
	}
	return dst
}

// DrawCircle draws a circle in logical coordinates as a polygon with the
// given number of segments, using the current pen colour.
func (c *Canvas) DrawCircle(cx, cy, radius float64, segments int, filled bool) {
	if segments < 3 {
		segments = 3
	}
	points := CirclePoints(c.BorrowPoints(segments), cx, cy, radius)
	c.DrawPolygon(points, filled)
}

// DrawGrid draws the lines between cells of a rows x cols grid with cells of
// cellW x cellH logical units. Outer edges are left to the border.
func (c *Canvas) DrawGrid(rows, cols int, cellW, cellH float64) {
	for col := 1; col < cols; col++ {
		x := float64(col) * cellW
		c.DrawLine(Point{X: x, Y: 0}, Point{X: x, Y: c.logicalHeight})
	}
	for row := 1; row < rows; row++ {
		y := float64(row) * cellH
		c.DrawLine(Point{X: 0, Y: y}, Point{X: c.logicalWidth, Y: y})
	}
}

// FillRect fills an axis-aligned rectangle given in logical coordinates.
func (c *Canvas) FillRect(x, y, w, h float64) {
	x0 := max(int(math.Round(x*c.scaleX)), 0)
	y0 := max(int(math.Round(y*c.scaleY)), 0)
	x1 := min(int(math.Round((x+w)*c.scaleX)), c.termWidth)
	y1 := min(int(math.Round((y+h)*c.scaleY)), c.subPixelHeight)

	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.setPixel(px, py)
		}
	}
}
