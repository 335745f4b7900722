// Package object defines the bodies moved by the simulation.
package object

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Body is a movable circle. The simulation mutates position and velocity in
// place; ID and Radius are fixed once the body is created.
type Body struct {
	ID     int            // Unique, stable identity; orders collision pairs
	Radius float64        // Collision/draw radius
	X, Y   float64        // Position (center)
	VX, VY float64        // Velocity in world units per tick
	Color  colorful.Color // Cosmetic, changed on collision
}

// Bounds is the size of the arena, with its origin at (0, 0).
type Bounds struct {
	Width, Height float64
}

// NewBody creates a body at the origin with no velocity.
func NewBody(id int, radius float64) *Body {
	return &Body{
		ID:     id,
		Radius: radius,
		Color:  colorful.Color{R: 1, G: 1, B: 1},
	}
}

// Move advances the body by one tick of its velocity.
func (b *Body) Move() {
	b.X += b.VX
	b.Y += b.VY
}

// Rebound negates the velocity on the selected axes.
func (b *Body) Rebound(x, y bool) {
	if x {
		b.VX = -b.VX
	}
	if y {
		b.VY = -b.VY
	}
}

// Recolor assigns a random saturated colour.
func (b *Body) Recolor(rng *rand.Rand) {
	b.Color = colorful.Hsv(rng.Float64()*360, 0.55+rng.Float64()*0.45, 0.7+rng.Float64()*0.3)
}

// Speed returns the magnitude of the velocity.
func (b *Body) Speed() float64 {
	return math.Hypot(b.VX, b.VY)
}

// KineticEnergy returns the total kinetic energy of bodies, treating every
// body as unit mass.
func KineticEnergy(bodies []*Body) float64 {
	total := 0.0
	for _, b := range bodies {
		total += 0.5 * (b.VX*b.VX + b.VY*b.VY)
	}
	return total
}

// SpeedStats returns the mean and maximum speed of bodies (0, 0 if empty).
func SpeedStats(bodies []*Body) (mean, fastest float64) {
	if len(bodies) == 0 {
		return 0, 0
	}
	total := 0.0
	for _, b := range bodies {
		s := b.Speed()
		total += s
		fastest = max(fastest, s)
	}
	return total / float64(len(bodies)), fastest
}
