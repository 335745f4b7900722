package draw

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block
// characters. Every sub-pixel carries an xterm-256 colour, and Render only
// emits terminal cells that changed since the previous frame.
type Canvas struct {
	termWidth      int      // Actual terminal columns
	termHeight     int      // Actual terminal rows
	subPixelHeight int      // termHeight * 2
	pixels         []uint16 // [y * termWidth + x]; 0 is empty, otherwise colour index + 1
	rendered       []cell   // What the terminal currently shows, per cell
	redraw         bool     // Emit every cell on the next Render

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets for centering the render area.
	offsetCol int
	offsetRow int

	pen uint16

	renderBuf       strings.Builder
	numBuf          [20]byte
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// cell is the pair of sub-pixels shown by one terminal character.
type cell struct {
	top, bottom uint16
}

// NewCanvas creates a canvas for the given terminal dimensions with a 1:1
// mapping (logical height is in sub-pixels).
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by the world.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		pen:           uint16(XtermIndex(colorful.Color{R: 1, G: 1, B: 1})) + 1,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
// A size change forces a full redraw.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 0)
	termHeight = max(termHeight, 0)
	subPixelHeight := termHeight * 2

	if c.pixels == nil || termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]uint16, subPixelHeight*termWidth)
		c.rendered = make([]cell, termHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
		c.redraw = true
	}

	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.redraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render emit every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.redraw = true
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// SetColor sets the pen used by subsequent drawing calls.
func (c *Canvas) SetColor(col colorful.Color) {
	c.pen = uint16(XtermIndex(col)) + 1
}

// SetColorIndex sets the pen to an xterm-256 palette index.
func (c *Canvas) SetColorIndex(idx uint8) {
	c.pen = uint16(idx) + 1
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = c.pen
	}
}

// SetFloat sets a pixel using logical coordinates.
func (c *Canvas) SetFloat(x, y float64) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	c.setPixel(px, py)
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon on the canvas.
// If filled is true, the interior is filled using scanline algorithm.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	if len(points) < 3 {
		return
	}

	if filled {
		c.fillPolygon(points)
	}

	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n])
	}
}

// fillPolygon fills a polygon using scanline algorithm in pixel space.
func (c *Canvas) fillPolygon(points []Point) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	yStart := max(int(math.Floor(minY)), 0)
	yEnd := min(int(math.Ceil(maxY)), c.subPixelHeight-1)

	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5

		intersections := c.intersectionBuf[:0]
		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]

			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections

		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i]))
			xEnd := int(math.Floor(intersections[i+1]))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once. It stays under a
// typical MTU for smooth SSH transmission.
const maxChunkSize = 1400

// Render writes every terminal cell that changed since the last Render.
// Cells that became empty are erased with a space.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			next := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !c.redraw && c.rendered[idx] == next {
				continue
			}
			c.rendered[idx] = next
			c.writeCell(row, col, next)
		}
	}
	c.redraw = false

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// writeCell appends the escape sequence for one terminal cell.
func (c *Canvas) writeCell(row, col int, cl cell) {
	b := &c.renderBuf
	b.WriteString("\033[")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(row+1+c.offsetRow), 10))
	b.WriteByte(';')
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(col+1+c.offsetCol), 10))
	b.WriteByte('H')

	var fg, bg uint16
	var ch rune
	switch {
	case cl.top == 0 && cl.bottom == 0:
		b.WriteRune(BlockEmpty)
		return
	case cl.top == cl.bottom:
		fg, ch = cl.top, BlockFull
	case cl.bottom == 0:
		fg, ch = cl.top, BlockUpperHalf
	case cl.top == 0:
		fg, ch = cl.bottom, BlockLowerHalf
	default:
		fg, bg, ch = cl.top, cl.bottom, BlockUpperHalf
	}

	b.WriteString("\033[38;5;")
	b.Write(strconv.AppendInt(c.numBuf[:0], int64(fg-1), 10))
	if bg != 0 {
		b.WriteString(";48;5;")
		b.Write(strconv.AppendInt(c.numBuf[:0], int64(bg-1), 10))
	}
	b.WriteByte('m')
	b.WriteRune(ch)
	b.WriteString("\033[0m")
}

// RenderBorder draws a border in the space the offsets leave around the
// canvas: horizontal lines when there is a row offset, side bars when there
// is a column offset, corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	move := func(row, col int) {
		buf.WriteString("\033[")
		buf.WriteString(strconv.Itoa(row))
		buf.WriteByte(';')
		buf.WriteString(strconv.Itoa(col))
		buf.WriteByte('H')
	}

	if hasV {
		if hasH {
			move(top, left)
			buf.WriteString("┌" + line + "┐")
			move(bottom, left)
			buf.WriteString("└" + line + "┘")
		} else {
			move(top, c.offsetCol+1)
			buf.WriteString(line)
			move(bottom, c.offsetCol+1)
			buf.WriteString(line)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			move(row, left)
			buf.WriteString("│")
			move(row, right)
			buf.WriteString("│")
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}
