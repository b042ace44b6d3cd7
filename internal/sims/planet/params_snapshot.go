package planet

import (
	"strconv"

	icore "planetsim/internal/core"
)

// Parameters exposes the current tunables for collaborator inspection.
func (w *World) Parameters() icore.ParameterSnapshot {
	p := w.cfg.Params
	groups := []icore.ParameterGroup{
		{
			Name: "World",
			Params: []icore.Parameter{
				intParam("w", "Width", w.cfg.Width),
				intParam("h", "Height", w.cfg.Height),
				int64Param("seed", "Seed", w.cfg.Seed),
				intParam("workers", "Workers", w.cfg.Workers),
			},
		},
		{
			Name: "Atmosphere",
			Params: []icore.Parameter{
				floatParam("gas_diffusion_rate", "Gas diffusion rate", p.GasDiffusionRate),
				floatParam("gas_advection_max", "Gas advection cap", p.GasAdvectionMax),
				floatParam("photosynthesis_rate", "Photosynthesis rate", p.PhotosynthesisRate),
				floatParam("respiration_rate", "Respiration rate", p.RespirationRate),
				floatParam("greenhouse_co2", "Greenhouse CO2 weight", p.GreenhouseCO2),
				floatParam("greenhouse_ch4", "Greenhouse CH4 weight", p.GreenhouseCH4),
				floatParam("greenhouse_n2o", "Greenhouse N2O weight", p.GreenhouseN2O),
			},
		},
		{
			Name: "Hydrology",
			Params: []icore.Parameter{
				floatParam("river_spawn_chance", "River spawn chance", p.RiverSpawnChance),
				floatParam("river_min_elevation", "River min elevation", p.RiverMinElevation),
				floatParam("river_min_rainfall", "River min rainfall", p.RiverMinRainfall),
				intParam("river_max_length", "River max length", p.RiverMaxLength),
				intParam("flood_passes", "Flood relaxation passes", p.FloodPasses),
				floatParam("flood_transfer", "Flood transfer fraction", p.FloodTransfer),
				floatParam("tide_amplitude", "Tide amplitude", p.TideAmplitude),
			},
		},
		{
			Name: "Life",
			Params: []icore.Parameter{
				floatParam("profile_blend", "Profile blend factor", p.ProfileBlend),
				floatParam("extreme_relax", "Extreme relax rate", p.ExtremeRelax),
				floatParam("bacteria_temp_margin", "Bacteria temp margin", p.BacteriaTempMargin),
				floatParam("reseed_threshold", "Reseed threshold", p.ReseedThreshold),
				int64Param("grace_ticks", "Grace period ticks", p.GraceTicks),
				intParam("dispersal_trials", "Dispersal trials", p.DispersalTrials),
			},
		},
	}
	return icore.ParameterSnapshot{Groups: groups}
}

// SetFloatParameter updates a runtime-adjustable float tunable.
func (w *World) SetFloatParameter(key string, value float64) bool {
	p := &w.cfg.Params
	switch key {
	case "river_spawn_chance":
		p.RiverSpawnChance = icore.Clamp01(value)
	case "reseed_threshold":
		p.ReseedThreshold = icore.Clamp01(value)
	case "tide_amplitude":
		p.TideAmplitude = icore.Clamp(value, 0, 1)
	case "flood_transfer":
		p.FloodTransfer = icore.Clamp01(value)
	case "profile_blend":
		p.ProfileBlend = icore.Clamp01(value)
	case "extreme_relax":
		p.ExtremeRelax = icore.Clamp01(value)
	default:
		return false
	}
	return true
}

// SetIntParameter updates a runtime-adjustable integer tunable.
func (w *World) SetIntParameter(key string, value int) bool {
	p := &w.cfg.Params
	switch key {
	case "dispersal_trials":
		if value < 0 {
			value = 0
		}
		p.DispersalTrials = value
	case "flood_passes":
		if value < 1 {
			value = 1
		}
		p.FloodPasses = value
	default:
		return false
	}
	return true
}

func intParam(key, label string, v int) icore.Parameter {
	return icore.Parameter{Key: key, Label: label, Type: icore.ParamTypeInt, Value: strconv.Itoa(v)}
}

func int64Param(key, label string, v int64) icore.Parameter {
	return icore.Parameter{Key: key, Label: label, Type: icore.ParamTypeInt, Value: strconv.FormatInt(v, 10)}
}

func floatParam(key, label string, v float64) icore.Parameter {
	return icore.Parameter{Key: key, Label: label, Type: icore.ParamTypeFloat, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}
