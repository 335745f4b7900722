package object

import "math/rand"

// Place puts the body at (x, y) and gives it a random velocity with each
// axis in [1, maxSpeed) and a random sign.
func (b *Body) Place(x, y, maxSpeed float64, rng *rand.Rand) {
	b.X = x
	b.Y = y

	if maxSpeed < 1 {
		maxSpeed = 1
	}
	b.VX = randomAxisSpeed(maxSpeed, rng)
	b.VY = randomAxisSpeed(maxSpeed, rng)
}

func randomAxisSpeed(maxSpeed float64, rng *rand.Rand) float64 {
	speed := 1 + rng.Float64()*(maxSpeed-1)
	if rng.Intn(2) == 0 {
		return -speed
	}
	return speed
}

// Populate creates count bodies with ids firstID, firstID+1, ... placed at
// random positions fully inside bounds (where the arena is large enough)
// with random velocities and colours.
func Populate(firstID, count int, radius, maxSpeed float64, bounds Bounds, rng *rand.Rand) []*Body {
	bodies := make([]*Body, 0, count)
	for i := 0; i < count; i++ {
		b := NewBody(firstID+i, radius)
		b.Place(randomCoord(radius, bounds.Width, rng), randomCoord(radius, bounds.Height, rng), maxSpeed, rng)
		b.Recolor(rng)
		bodies = append(bodies, b)
	}
	return bodies
}

// randomCoord picks a coordinate in [radius, bound-radius], or the middle
// of the axis when the body does not fit.
func randomCoord(radius, bound float64, rng *rand.Rand) float64 {
	span := bound - 2*radius
	if span <= 0 {
		return bound / 2
	}
	return radius + rng.Float64()*span
}
