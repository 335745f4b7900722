package config

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	loopconfig "github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/loop/server"
	"github.com/tomz197/circles/internal/object"
)

// Settings holds the simulation parameters read from the environment.
type Settings struct {
	Bodies      int
	Radius      float64
	MaxSpeed    float64
	WorldWidth  float64
	WorldHeight float64
	CellWidth   float64
	CellHeight  float64
	Restitution float64
	Seed        int64
	TickRate    int
	LogLevel    string
}

// LoadSettings reads SIM_* variables, falling back to the defaults in
// internal/loop/config. It returns every problem found, joined.
func LoadSettings() (Settings, error) {
	s := Settings{LogLevel: GetEnv("SIM_LOG_LEVEL", "info")}

	var errs []error
	intVar := func(dst *int, key string, fallback int) {
		v, err := GetEnvInt(key, fallback)
		*dst = v
		errs = append(errs, err)
	}
	floatVar := func(dst *float64, key string, fallback float64) {
		v, err := GetEnvFloat(key, fallback)
		*dst = v
		errs = append(errs, err)
	}

	intVar(&s.Bodies, "SIM_BODIES", loopconfig.DefaultBodies)
	floatVar(&s.Radius, "SIM_RADIUS", loopconfig.DefaultRadius)
	floatVar(&s.MaxSpeed, "SIM_MAX_SPEED", loopconfig.DefaultMaxSpeed)
	floatVar(&s.WorldWidth, "SIM_WORLD_WIDTH", loopconfig.WorldWidth)
	floatVar(&s.WorldHeight, "SIM_WORLD_HEIGHT", loopconfig.WorldHeight)
	floatVar(&s.CellWidth, "SIM_CELL_WIDTH", loopconfig.CellWidth)
	floatVar(&s.CellHeight, "SIM_CELL_HEIGHT", loopconfig.CellHeight)
	floatVar(&s.Restitution, "SIM_RESTITUTION", loopconfig.Restitution)
	intVar(&s.TickRate, "SIM_TICK_RATE", loopconfig.ServerTickRate)

	seed, err := GetEnvInt64("SIM_SEED", loopconfig.DefaultSeed)
	s.Seed = seed
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// Validate checks that the settings describe a runnable simulation.
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSetting}, args...)...))
		}
	}

	check(s.Bodies >= 0 && s.Bodies <= loopconfig.MaxBodies, "bodies must be in [0, %d], got %d", loopconfig.MaxBodies, s.Bodies)
	check(s.Radius > 0, "radius must be positive, got %g", s.Radius)
	check(s.MaxSpeed >= 1, "max speed must be at least 1, got %g", s.MaxSpeed)
	check(s.WorldWidth > 0 && s.WorldHeight > 0, "world must be positive, got %gx%g", s.WorldWidth, s.WorldHeight)
	check(s.CellWidth > 0 && s.CellHeight > 0, "cells must be positive, got %gx%g", s.CellWidth, s.CellHeight)
	check(s.Restitution >= 0 && s.Restitution <= 1, "restitution must be in [0, 1], got %g", s.Restitution)
	check(s.TickRate > 0, "tick rate must be positive, got %d", s.TickRate)

	return errors.Join(errs...)
}

// Warnings reports settings that run but defeat the broad phase.
func (s Settings) Warnings() []string {
	var warnings []string
	diameter := 2 * s.Radius
	if s.CellWidth < diameter || s.CellHeight < diameter {
		warnings = append(warnings, fmt.Sprintf(
			"cell size %gx%g is smaller than a body diameter (%g); overlapping pairs can be missed",
			s.CellWidth, s.CellHeight, diameter))
	}
	return warnings
}

// ServerOptions converts the settings into options for server.NewServer.
func (s Settings) ServerOptions(logger *log.Logger) server.ServerOptions {
	world := server.DefaultWorldOptions()
	world.Bodies = s.Bodies
	world.Radius = s.Radius
	world.MaxSpeed = s.MaxSpeed
	world.Bounds = object.Bounds{Width: s.WorldWidth, Height: s.WorldHeight}
	world.CellWidth = s.CellWidth
	world.CellHeight = s.CellHeight
	world.Restitution = s.Restitution
	world.Seed = s.Seed

	return server.ServerOptions{
		World:    world,
		TickRate: s.TickRate,
		Logger:   logger,
	}
}
