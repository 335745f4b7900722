// Package config centralizes the tunable simulation parameters.
package config

import "time"

// Arena, in world units
const (
	WorldWidth  = 640
	WorldHeight = 480
)

// Bodies
const (
	DefaultBodies   = 200
	DefaultRadius   = 6.0
	DefaultMaxSpeed = 4.0 // World units per tick, per axis
	DefaultSeed     = 1
)

// Grid cells should be 2-3x the largest body diameter.
const (
	CellWidth  = 32
	CellHeight = 32
)

// Collision response
const (
	Restitution       = 1.0   // Perfectly elastic
	SeparationEpsilon = 0.001 // Extra push so resolved pairs do not re-collide next tick
)

// Spawning
const (
	SpawnBatch = 10 // Bodies added per spawn command
	MaxBodies  = 20000
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxTermWidth          = 200 // Max rendered columns
	MaxTermHeight         = 60  // Max rendered rows
	CircleSegments        = 16  // Polygon sides used to draw a circle
)

// Server tick rate
const (
	ServerTickRate = 30
	ServerTickTime = time.Second / ServerTickRate
)

// Shutdown
const (
	ShutdownDisplaySeconds = 5.0 // Seconds to show shutdown message before auto-disconnect
)
