package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/circles/internal/config"
	"github.com/tomz197/circles/internal/loop/server"
	"github.com/tomz197/circles/internal/object"
)

const (
	defaultTicks       = 1000
	defaultReportEvery = 100
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "headless", ReportTimestamp: true})

	settings, err := config.LoadSettings()
	if err != nil {
		logger.Fatal("invalid settings", "err", err)
	}
	if l, err := config.NewLogger(os.Stderr, "headless", settings.LogLevel); err == nil {
		logger = l
	} else {
		logger.Warn("keeping default log level", "err", err)
	}
	for _, w := range settings.Warnings() {
		logger.Warn(w)
	}

	ticks, err := config.GetEnvInt("SIM_TICKS", defaultTicks)
	if err != nil {
		logger.Fatal("invalid tick count", "err", err)
	}
	reportEvery, err := config.GetEnvInt("SIM_REPORT_EVERY", defaultReportEvery)
	if err != nil || reportEvery < 1 {
		logger.Fatal("invalid report interval", "err", err, "value", reportEvery)
	}

	world, err := server.NewWorldState(settings.ServerOptions(logger).World)
	if err != nil {
		logger.Fatal("failed to create world", "err", err)
	}

	grid := world.Grid()
	logger.Info("running",
		"ticks", ticks,
		"bodies", len(world.Bodies),
		"rows", grid.Rows(),
		"columns", grid.Columns())

	initialEnergy := object.KineticEnergy(world.Bodies)
	totalPairs := 0
	start := time.Now()

	for i := 0; i < ticks; i++ {
		stats := world.Step()
		totalPairs += stats.Pairs

		if stats.Tick%uint64(reportEvery) == 0 {
			gs := grid.Stats()
			meanSpeed, maxSpeed := object.SpeedStats(world.Bodies)
			logger.Info("tick",
				"n", stats.Tick,
				"pairs", stats.Pairs,
				"walls", stats.WallHits,
				"energy", object.KineticEnergy(world.Bodies),
				"mean_speed", meanSpeed,
				"max_speed", maxSpeed,
				"penetration", world.MaxPenetration(),
				"occupied", gs.CellsOccupied,
				"max_per_cell", gs.MaxOccupancy,
				"pool", grid.Pool().Len())
		}
	}

	elapsed := time.Since(start)
	logger.Info("done",
		"ticks", ticks,
		"pairs", totalPairs,
		"energy_start", initialEnergy,
		"energy_end", object.KineticEnergy(world.Bodies),
		"elapsed", elapsed,
		"per_tick", elapsed/time.Duration(max(ticks, 1)))
}
