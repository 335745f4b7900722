package draw

import (
	"github.com/lucasb-eyer/go-colorful"
)

// ColorGridLine is the xterm-256 index used for grid overlay lines.
const ColorGridLine uint8 = 238

// cubeLevels are the channel intensities of the 6x6x6 xterm colour cube.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// XtermIndex maps a colour to the nearest entry of the xterm-256 palette,
// choosing between the 6x6x6 cube (16-231) and the grey ramp (232-255).
func XtermIndex(c colorful.Color) uint8 {
	r, g, b := c.Clamped().RGB255()
	ri, gi, bi := nearestLevel(r), nearestLevel(g), nearestLevel(b)
	cube := colorful.Color{
		R: float64(cubeLevels[ri]) / 255,
		G: float64(cubeLevels[gi]) / 255,
		B: float64(cubeLevels[bi]) / 255,
	}

	avg := (int(r) + int(g) + int(b)) / 3
	step := min(max((avg-8+5)/10, 0), 23)
	v := float64(8+10*step) / 255
	grey := colorful.Color{R: v, G: v, B: v}

	if c.DistanceRgb(grey) < c.DistanceRgb(cube) {
		return uint8(232 + step)
	}
	return uint8(16 + 36*ri + 6*gi + bi)
}

func nearestLevel(v uint8) int {
	best, bestDist := 0, 256
	for i, level := range cubeLevels {
		if d := abs(int(v) - int(level)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
