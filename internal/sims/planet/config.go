package planet

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Params holds every tunable constant for the planet simulation. The values
// are empirically tuned; treat them as balance knobs, not derived physics.
type Params struct {
	// Atmosphere.
	GasDiffusionRate   float64 `toml:"gas_diffusion_rate"`
	GasAdvectionGain   float64 `toml:"gas_advection_gain"`
	GasAdvectionMax    float64 `toml:"gas_advection_max"`
	PhotosynthesisRate float64 `toml:"photosynthesis_rate"`
	RespirationRate    float64 `toml:"respiration_rate"`
	CombustionTemp     float64 `toml:"combustion_temp"`
	CombustionRate     float64 `toml:"combustion_rate"`
	VolcanismCO2Rate   float64 `toml:"volcanism_co2_rate"`
	OceanCO2Uptake     float64 `toml:"ocean_co2_uptake"`
	MethaneSourceRate  float64 `toml:"methane_source_rate"`
	MethaneDecayRate   float64 `toml:"methane_decay_rate"`
	N2OSourceRate      float64 `toml:"n2o_source_rate"`
	N2ODecayRate       float64 `toml:"n2o_decay_rate"`
	GreenhouseCO2      float64 `toml:"greenhouse_co2"`
	GreenhouseCH4      float64 `toml:"greenhouse_ch4"`
	GreenhouseN2O      float64 `toml:"greenhouse_n2o"`
	VaporFeedbackGain  float64 `toml:"vapor_feedback_gain"`
	VaporWarmBoost     float64 `toml:"vapor_warm_boost"`

	// Climate.
	EquatorTemp        float64 `toml:"equator_temp"`
	PolarDrop          float64 `toml:"polar_drop"`
	AltitudeLapse      float64 `toml:"altitude_lapse"`
	GreenhouseWarming  float64 `toml:"greenhouse_warming"`
	ClimateInertia     float64 `toml:"climate_inertia"`
	FreezePoint        float64 `toml:"freeze_point"`
	IceAlbedoCooling   float64 `toml:"ice_albedo_cooling"`
	RainfallConvergence float64 `toml:"rainfall_convergence"`

	// Hydrology.
	SoilAbsorption    float64 `toml:"soil_absorption"`
	EvaporationRate   float64 `toml:"evaporation_rate"`
	TranspirationRate float64 `toml:"transpiration_rate"`
	FlowMax           float64 `toml:"flow_max"`
	RiverSpawnChance  float64 `toml:"river_spawn_chance"`
	RiverMinElevation float64 `toml:"river_min_elevation"`
	RiverMinRainfall  float64 `toml:"river_min_rainfall"`
	RiverMinFlow      float64 `toml:"river_min_flow"`
	RiverMinAccum     float64 `toml:"river_min_accum"`
	RiverMaxLength    int     `toml:"river_max_length"`
	RiverCarve        float64 `toml:"river_carve"`
	SalinityEvapGain  float64 `toml:"salinity_evap_gain"`
	SalinityRainDilute float64 `toml:"salinity_rain_dilute"`
	CurrentExchange   float64 `toml:"current_exchange"`
	TidePeriod        float64 `toml:"tide_period"`
	TideAmplitude     float64 `toml:"tide_amplitude"`
	FloodPasses       int     `toml:"flood_passes"`
	FloodTransfer     float64 `toml:"flood_transfer"`
	FloodDecay        float64 `toml:"flood_decay"`

	// Life.
	ProfileBlend       float64 `toml:"profile_blend"`
	ExtremeRelax       float64 `toml:"extreme_relax"`
	ComfortStdWidth    float64 `toml:"comfort_std_width"`
	BacteriaTempMargin float64 `toml:"bacteria_temp_margin"`
	DeathRateGain      float64 `toml:"death_rate_gain"`
	ExtinctionBiomass  float64 `toml:"extinction_biomass"`
	EvolveChance       float64 `toml:"evolve_chance"`
	AlgaeOxygenGate    float64 `toml:"algae_oxygen_gate"`
	PlantOxygenGate    float64 `toml:"plant_oxygen_gate"`
	AnimalOxygenGate   float64 `toml:"animal_oxygen_gate"`
	DispersalTrials    int     `toml:"dispersal_trials"`
	DispersalBiomass   float64 `toml:"dispersal_biomass"`
	GraceTicks         int64   `toml:"grace_ticks"`
	ReseedInterval     int64   `toml:"reseed_interval"`
	ReseedThreshold    float64 `toml:"reseed_threshold"`
	ReseedCells        int     `toml:"reseed_cells"`

	// Stabilizer.
	StabilizerMinTemp float64 `toml:"stabilizer_min_temp"`
	StabilizerMaxTemp float64 `toml:"stabilizer_max_temp"`
	StabilizerStep    float64 `toml:"stabilizer_step"`
}

// Config controls the planet simulation dimensions and worker pool.
type Config struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	Seed int64 `toml:"seed"`

	// Workers bounds the goroutines used for data-parallel passes. Zero
	// selects GOMAXPROCS.
	Workers int `toml:"workers"`

	Params Params `toml:"params"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:   128,
		Height:  96,
		Seed:    1337,
		Workers: 0,
		Params: Params{
			GasDiffusionRate:   0.15,
			GasAdvectionGain:   0.1,
			GasAdvectionMax:    0.2,
			PhotosynthesisRate: 2.0,
			RespirationRate:    0.8,
			CombustionTemp:     45,
			CombustionRate:     0.5,
			VolcanismCO2Rate:   1.5,
			OceanCO2Uptake:     0.4,
			MethaneSourceRate:  0.3,
			MethaneDecayRate:   0.05,
			N2OSourceRate:      0.05,
			N2ODecayRate:       0.02,
			GreenhouseCO2:      0.02,
			GreenhouseCH4:      0.56,
			GreenhouseN2O:      5.3,
			VaporFeedbackGain:  0.8,
			VaporWarmBoost:     2.0,

			EquatorTemp:         30,
			PolarDrop:           55,
			AltitudeLapse:       25,
			GreenhouseWarming:   8,
			ClimateInertia:      0.05,
			FreezePoint:         -4,
			IceAlbedoCooling:    3,
			RainfallConvergence: 0.1,

			SoilAbsorption:    0.3,
			EvaporationRate:   0.02,
			TranspirationRate: 0.05,
			FlowMax:           10,
			RiverSpawnChance:  0.02,
			RiverMinElevation: 0.3,
			RiverMinRainfall:  0.5,
			RiverMinFlow:      0.1,
			RiverMinAccum:     1.0,
			RiverMaxLength:    200,
			RiverCarve:        0.002,
			SalinityEvapGain:  0.004,
			SalinityRainDilute: 0.01,
			CurrentExchange:   0.05,
			TidePeriod:        24,
			TideAmplitude:     0.02,
			FloodPasses:       3,
			FloodTransfer:     0.3,
			FloodDecay:        0.05,

			ProfileBlend:       0.05,
			ExtremeRelax:       0.015,
			ComfortStdWidth:    2.5,
			BacteriaTempMargin: 35,
			DeathRateGain:      0.02,
			ExtinctionBiomass:  0.01,
			EvolveChance:       0.1,
			AlgaeOxygenGate:    5,
			PlantOxygenGate:    10,
			AnimalOxygenGate:   15,
			DispersalTrials:    64,
			DispersalBiomass:   0.15,
			GraceTicks:         50,
			ReseedInterval:     200,
			ReseedThreshold:    0.01,
			ReseedCells:        32,

			StabilizerMinTemp: -40,
			StabilizerMaxTemp: 70,
			StabilizerStep:    0.5,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. Keys absent from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load planet config: %w", err)
	}
	return cfg, nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}
	if v, ok := cfg["river_spawn_chance"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.RiverSpawnChance = parsed
		}
	}
	if v, ok := cfg["reseed_threshold"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Params.ReseedThreshold = parsed
		}
	}
	if v, ok := cfg["grace_ticks"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			c.Params.GraceTicks = parsed
		}
	}
	return c
}
