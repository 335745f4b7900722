package physics

// WallHit classifies which arena walls a circle touches or crosses.
type WallHit int

const (
	NoWallHit     WallHit = iota
	HorizontalHit         // left or right wall (x axis)
	VerticalHit           // top or bottom wall (y axis)
	BothHit
)

// CheckBounds reports which axes of a circle at (x, y) with radius r
// extend past an arena of width x height.
func CheckBounds(x, y, r, width, height float64) WallHit {
	hitX := x-r < 0 || x+r > width
	hitY := y-r < 0 || y+r > height

	switch {
	case hitX && hitY:
		return BothHit
	case hitY:
		return VerticalHit
	case hitX:
		return HorizontalHit
	default:
		return NoWallHit
	}
}

// ClampAxis keeps a circle inside [0, bound] on one axis. When the circle
// crosses a wall its position is clamped to touch the wall and hit is true.
// The low wall wins if both are crossed.
func ClampAxis(pos, radius, bound float64) (newPos float64, hit bool) {
	if pos-radius < 0 {
		return radius, true
	}
	if pos+radius > bound {
		return bound - radius, true
	}
	return pos, false
}
