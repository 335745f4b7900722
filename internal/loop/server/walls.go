package server

import (
	"github.com/tomz197/circles/internal/object"
	"github.com/tomz197/circles/internal/physics"
)

// resolveWalls clamps a body inside bounds, reflecting velocity on each axis
// that crossed a wall. Returns which walls were hit.
func resolveWalls(b *object.Body, bounds object.Bounds) physics.WallHit {
	hit := physics.CheckBounds(b.X, b.Y, b.Radius, bounds.Width, bounds.Height)
	if hit == physics.NoWallHit {
		return hit
	}

	var hitX, hitY bool
	b.X, hitX = physics.ClampAxis(b.X, b.Radius, bounds.Width)
	b.Y, hitY = physics.ClampAxis(b.Y, b.Radius, bounds.Height)
	b.Rebound(hitX, hitY)
	return hit
}
