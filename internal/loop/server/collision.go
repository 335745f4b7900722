package server

import (
	"math"

	"github.com/tomz197/circles/internal/object"
	"github.com/tomz197/circles/internal/physics"
)

// CollisionObserver is notified after a pair of bodies has been resolved.
// It runs on the simulation goroutine and may mutate cosmetic fields only.
type CollisionObserver interface {
	OnCollision(a, b *object.Body)
}

// ObserverFunc adapts a function to CollisionObserver.
type ObserverFunc func(a, b *object.Body)

// OnCollision calls f(a, b).
func (f ObserverFunc) OnCollision(a, b *object.Body) {
	f(a, b)
}

// multiObserver fans a collision out to several observers in order.
type multiObserver []CollisionObserver

func (m multiObserver) OnCollision(a, b *object.Body) {
	for _, o := range m {
		o.OnCollision(a, b)
	}
}

// resolver runs the broad and narrow phase over a populated grid.
type resolver struct {
	restitution float64
	epsilon     float64
	observer    CollisionObserver
}

// resolveCollisions walks every occupied cell, gathers its 3x3 neighbourhood
// once, and resolves each overlapping pair exactly once. A pair is only
// processed from the side holding the lower id, which also rules out a body
// colliding with itself. Returns the number of pairs resolved.
func (r *resolver) resolveCollisions(grid *physics.SpatialGrid, bodies []*object.Body) int {
	pairs := 0

	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Columns(); col++ {
			cell := grid.Cell(row, col)
			if cell.Len() == 0 {
				continue
			}

			nearby := grid.NearbyCell(row, col)

			grid.Each(cell, func(i int) bool {
				c1 := bodies[i]
				grid.Each(nearby, func(j int) bool {
					c2 := bodies[j]
					if c1.ID < c2.ID && r.resolvePair(c1, c2) {
						pairs++
					}
					return false
				})
				return false
			})
		}
	}

	return pairs
}

// resolvePair separates two overlapping bodies and applies an elastic
// impulse along the collision normal. Returns false if they do not overlap.
func (r *resolver) resolvePair(c1, c2 *object.Body) bool {
	if !physics.CirclesOverlap(c1.X, c1.Y, c1.Radius, c2.X, c2.Y, c2.Radius) {
		return false
	}

	dx := c2.X - c1.X
	dy := c2.Y - c1.Y
	dist := physics.Distance(c1.X, c1.Y, c2.X, c2.Y)
	radiusSum := c1.Radius + c2.Radius

	// Squared and plain distance can disagree in the last bit at contact.
	if dist >= radiusSum {
		return false
	}

	overlap := radiusSum - dist

	// Stacked centers have no direction; push apart along +x.
	if dist == 0 {
		dx, dy, dist = 1, 0, 1
	}

	nx := dx / dist
	ny := dy / dist

	// Each body moves half the overlap, plus a small bias against
	// re-detecting the same contact next tick.
	sep := overlap*0.5 + r.epsilon
	c1.X -= nx * sep
	c1.Y -= ny * sep
	c2.X += nx * sep
	c2.Y += ny * sep

	r.applyImpulse(c1, c2, nx, ny)

	if r.observer != nil {
		r.observer.OnCollision(c1, c2)
	}
	return true
}

// applyImpulse exchanges the normal component of the relative velocity
// between two equal-mass bodies. Tangential components are unchanged.
func (r *resolver) applyImpulse(c1, c2 *object.Body, nx, ny float64) {
	dvx := c1.VX - c2.VX
	dvy := c1.VY - c2.VY

	// Relative velocity along the collision normal
	vn := physics.Dot(dvx, dvy, nx, ny)

	// Already separating
	if vn < 0 {
		return
	}

	impulse := -(1 + r.restitution) * vn / 2

	c1.VX += impulse * nx
	c1.VY += impulse * ny
	c2.VX -= impulse * nx
	c2.VY -= impulse * ny
}

// penetration returns how far two bodies overlap (0 if they do not).
func penetration(c1, c2 *object.Body) float64 {
	d := physics.Distance(c1.X, c1.Y, c2.X, c2.Y)
	return math.Max(0, c1.Radius+c2.Radius-d)
}
