package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"planetsim/internal/core"
	"planetsim/internal/sims/planet"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional TOML config file")
		ticks      = flag.Int("ticks", 1000, "number of ticks to simulate")
		seed       = flag.Int64("seed", 0, "world seed (0 uses the config seed)")
		width      = flag.Int("w", 0, "grid width override")
		height     = flag.Int("h", 0, "grid height override")
		speed      = flag.Float64("speed", 1, "speed multiplier passed to the scheduler")
		tps        = flag.Int("tps", 0, "pace at ticks per second (0 runs flat out)")
		report     = flag.Int("report", 100, "log aggregates every N ticks")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := initLogger(*debug)

	cfg := planet.DefaultConfig()
	if *configPath != "" {
		loaded, err := planet.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("config")
		}
		cfg = loaded
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}

	world := planet.NewWithConfig(cfg)
	world.SetLogger(logger)
	world.Reset(*seed)

	logger.Info().Int("w", cfg.Width).Int("h", cfg.Height).Int64("seed", cfg.Seed).
		Int("ticks", *ticks).Msg("planet simulation starting")

	var pacer *core.FixedStep
	if *tps > 0 {
		pacer = core.NewFixedStep(*tps)
	}

	// Pace through the Advancer seam, the way an external host drives a
	// registry sim.
	var sim core.Advancer = world

	start := time.Now()
	for t := 0; t < *ticks; t++ {
		if pacer != nil {
			for !pacer.ShouldStep() {
				time.Sleep(time.Millisecond)
			}
		}
		sim.Advance(1, world.Tick(), *speed)

		if *report > 0 && (t+1)%*report == 0 {
			agg := world.Aggregates()
			logger.Info().
				Int64("tick", world.Tick()).
				Float64("mean_temp", agg.MeanTemperature).
				Float64("mean_o2", agg.MeanOxygen).
				Float64("mean_co2", agg.MeanCO2).
				Float64("populated", agg.PopulatedFrac).
				Float64("frozen", agg.FrozenFrac).
				Int("rivers", len(world.Rivers())).
				Msg("aggregates")
		}
	}

	logger.Info().Dur("elapsed", time.Since(start)).Int64("tick", world.Tick()).
		Msg("planet simulation finished")
}

func initLogger(debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "planetsim").Logger()
}
