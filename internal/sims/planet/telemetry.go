package planet

// ClimateRunResult captures telemetry from a deterministic run used for
// tuning and regression checks.
type ClimateRunResult struct {
	// FinalMeanTemp is the planet mean temperature after the last step.
	FinalMeanTemp float64
	// PeakMeanTemp tracks the warmest planet mean seen during the run.
	PeakMeanTemp float64
	// MinMeanTemp tracks the coldest planet mean seen during the run.
	MinMeanTemp float64
	// FinalFrozenFrac is the frozen cell fraction after the last step.
	FinalFrozenFrac float64
	// FinalPopulatedFrac is the populated cell fraction after the last step.
	FinalPopulatedFrac float64
	// PeakRiverCount tracks the most rivers alive at any step.
	PeakRiverCount int
	// StepsSimulated reports how many ticks executed.
	StepsSimulated int
}

// ClimateRun resets a world from the configuration seed, advances it for the
// requested number of steps, and reports the trajectory telemetry. Handy for
// parameter sweeps: the run is fully deterministic for a given config.
func ClimateRun(cfg Config, steps int) ClimateRunResult {
	if steps <= 0 {
		return ClimateRunResult{}
	}

	world := NewWithConfig(cfg)
	world.Reset(0)

	result := ClimateRunResult{StepsSimulated: steps}
	first := true
	for step := 0; step < steps; step++ {
		world.Step()
		agg := world.Aggregates()
		if first || agg.MeanTemperature > result.PeakMeanTemp {
			result.PeakMeanTemp = agg.MeanTemperature
		}
		if first || agg.MeanTemperature < result.MinMeanTemp {
			result.MinMeanTemp = agg.MeanTemperature
		}
		if n := len(world.Rivers()); n > result.PeakRiverCount {
			result.PeakRiverCount = n
		}
		result.FinalMeanTemp = agg.MeanTemperature
		result.FinalFrozenFrac = agg.FrozenFrac
		result.FinalPopulatedFrac = agg.PopulatedFrac
		first = false
	}
	return result
}
