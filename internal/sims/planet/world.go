package planet

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	icore "planetsim/internal/core"
	"planetsim/pkg/core"
)

// geologyTable holds the always-allocated geology side fields, indexed
// identically to the primary grid.
type geologyTable struct {
	plate        []int16
	volcanism    []float64
	erosion      []float64
	sediment     []float64
	soilMoisture []float64
	flowDir      []int32 // downstream cell index, -1 none
	flowVolume   []float64
	accumFlow    []float64
	salinity     []float64
	waterDensity []float64
	floodLevel   []float64
	riverID      []int32 // 0 none
}

// meteorologyTable holds the always-allocated weather side fields.
type meteorologyTable struct {
	windX         []float64
	windY         []float64
	pressure      []float64
	cloudCover    []float64
	precipitation []float64
}

// World stores all state for the planet simulation: the primary per-cell
// fields, the geology and meteorology side tables, the river registry, and
// the engines orchestrated by the staged scheduler.
type World struct {
	cfg  Config
	grid icore.Grid
	log  zerolog.Logger

	tick int64

	// Primary per-cell fields. Every ranged field is re-clamped after every
	// mutation; one out-of-range cell cascades through mixing within ticks.
	elevation   []float64 // [-1, 1]
	temperature []float64 // degC, finite
	rainfall    []float64 // [0, 1]
	humidity    []float64 // [0, 1]
	oxygen      []float64 // [0, 100]
	co2         []float64 // [0, 100]
	methane     []float64 // [0, 100]
	n2o         []float64 // [0, 100]
	greenhouse  []float64 // [0, 5]
	biomass     []float64 // [0, 1]
	evolution   []float64 // >= 0
	life        []LifeForm
	ice         []bool

	geo geologyTable
	met meteorologyTable

	rivers      map[int32]*River
	nextRiverID int32

	display []uint8

	climate    *climateEngine
	atmosphere *AtmosphereEngine
	hydrology  *HydrologyEngine
	lifeEng    *LifeEngine
	stabilizer *stabilizer
	sched      *Scheduler

	// Event lists consumed from collaborators, replaced each tick.
	eruptions   []Eruption
	earthquakes []Earthquake
	storms      []Storm
}

// New returns a planet simulation with the provided dimensions using defaults.
func New(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a planet world configured from the provided options.
func NewWithConfig(cfg Config) *World {
	grid := icore.NewGrid(cfg.Width, cfg.Height)
	cfg.Width, cfg.Height = grid.W, grid.H
	total := grid.Len()

	w := &World{
		cfg:  cfg,
		grid: grid,
		log:  zerolog.Nop(),

		elevation:   make([]float64, total),
		temperature: make([]float64, total),
		rainfall:    make([]float64, total),
		humidity:    make([]float64, total),
		oxygen:      make([]float64, total),
		co2:         make([]float64, total),
		methane:     make([]float64, total),
		n2o:         make([]float64, total),
		greenhouse:  make([]float64, total),
		biomass:     make([]float64, total),
		evolution:   make([]float64, total),
		life:        make([]LifeForm, total),
		ice:         make([]bool, total),

		geo: geologyTable{
			plate:        make([]int16, total),
			volcanism:    make([]float64, total),
			erosion:      make([]float64, total),
			sediment:     make([]float64, total),
			soilMoisture: make([]float64, total),
			flowDir:      make([]int32, total),
			flowVolume:   make([]float64, total),
			accumFlow:    make([]float64, total),
			salinity:     make([]float64, total),
			waterDensity: make([]float64, total),
			floodLevel:   make([]float64, total),
			riverID:      make([]int32, total),
		},
		met: meteorologyTable{
			windX:         make([]float64, total),
			windY:         make([]float64, total),
			pressure:      make([]float64, total),
			cloudCover:    make([]float64, total),
			precipitation: make([]float64, total),
		},

		rivers:  make(map[int32]*River),
		display: make([]uint8, total),
	}

	// Only the stochastic engines draw random numbers; each gets its own
	// stream so runs reproduce regardless of scheduling.
	seed := cfg.Seed
	w.climate = newClimateEngine(w)
	w.atmosphere = NewAtmosphereEngine(w)
	w.hydrology = NewHydrologyEngine(w, core.NewRNG(seed, 3))
	w.lifeEng = NewLifeEngine(w, core.NewRNG(seed, 4))
	w.stabilizer = newStabilizer(w)
	w.sched = NewScheduler(w)

	return w
}

// SetLogger installs a structured logger; engines derive named sub-loggers.
func (w *World) SetLogger(l zerolog.Logger) {
	w.log = l
	w.climate.log = l.With().Str("engine", "climate").Logger()
	w.atmosphere.log = l.With().Str("engine", "atmosphere").Logger()
	w.hydrology.log = l.With().Str("engine", "hydrology").Logger()
	w.lifeEng.log = l.With().Str("engine", "life").Logger()
	w.stabilizer.log = l.With().Str("engine", "stabilizer").Logger()
	w.sched.log = l.With().Str("engine", "scheduler").Logger()
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "planet" }

// Size reports the grid dimensions.
func (w *World) Size() icore.Size { return icore.Size{W: w.grid.W, H: w.grid.H} }

// Grid exposes the cell topology.
func (w *World) Grid() icore.Grid { return w.grid }

// Tick reports the number of completed simulation ticks.
func (w *World) Tick() int64 { return w.tick }

// Scheduler exposes the staged pipeline so collaborators can register
// subsystems into their stage.
func (w *World) Scheduler() *Scheduler { return w.sched }

// Field accessors. Slices are live views; collaborators treat them read-only.

func (w *World) Elevation() []float64    { return w.elevation }
func (w *World) Temperature() []float64  { return w.temperature }
func (w *World) Rainfall() []float64     { return w.rainfall }
func (w *World) Humidity() []float64     { return w.humidity }
func (w *World) Oxygen() []float64       { return w.oxygen }
func (w *World) CO2() []float64          { return w.co2 }
func (w *World) Methane() []float64      { return w.methane }
func (w *World) NitrousOxide() []float64 { return w.n2o }
func (w *World) Greenhouse() []float64   { return w.greenhouse }
func (w *World) Biomass() []float64      { return w.biomass }
func (w *World) LifeForms() []LifeForm   { return w.life }
func (w *World) Ice() []bool             { return w.ice }
func (w *World) FloodLevel() []float64   { return w.geo.floodLevel }
func (w *World) AccumulatedFlow() []float64 { return w.geo.accumFlow }
func (w *World) Salinity() []float64     { return w.geo.salinity }
func (w *World) Wind() (x, y []float64)  { return w.met.windX, w.met.windY }

// Rivers returns the live river list. Owned by the hydrology engine;
// read-only to collaborators.
func (w *World) Rivers() []*River {
	out := make([]*River, 0, len(w.rivers))
	for _, r := range w.rivers {
		out = append(out, r)
	}
	return out
}

// Profile returns the current life-support envelope.
func (w *World) Profile() LifeSupportProfile { return w.lifeEng.profile }

// Aggregates summarizes planet-wide state in a single pass over the grid.
type Aggregates struct {
	MeanTemperature float64
	MeanOxygen      float64
	MeanCO2         float64
	PopulatedFrac   float64
	FrozenFrac      float64
}

// Aggregates computes the global means exposed to collaborators.
func (w *World) Aggregates() Aggregates {
	total := w.grid.Len()
	if total == 0 {
		return Aggregates{}
	}
	var agg Aggregates
	populated, frozen := 0, 0
	for i := 0; i < total; i++ {
		agg.MeanTemperature += w.temperature[i]
		agg.MeanOxygen += w.oxygen[i]
		agg.MeanCO2 += w.co2[i]
		if w.life[i] != LifeNone {
			populated++
		}
		if w.ice[i] {
			frozen++
		}
	}
	n := float64(total)
	agg.MeanTemperature /= n
	agg.MeanOxygen /= n
	agg.MeanCO2 /= n
	agg.PopulatedFrac = float64(populated) / n
	agg.FrozenFrac = float64(frozen) / n
	return agg
}

// SetEruptions replaces the eruption list consumed this tick.
func (w *World) SetEruptions(list []Eruption) { w.eruptions = list }

// SetEarthquakes replaces the earthquake list consumed this tick.
func (w *World) SetEarthquakes(list []Earthquake) { w.earthquakes = list }

// SetStorms replaces the active storm list consumed this tick.
func (w *World) SetStorms(list []Storm) { w.storms = list }

// SeedLife plants a life form manually and arms the establishment grace
// period so the colony is not culled before it settles.
func (w *World) SeedLife(x, y int, form LifeForm, biomass float64) {
	if x < 0 || x >= w.grid.W || y < 0 || y >= w.grid.H || form >= lifeFormCount {
		return
	}
	idx := w.grid.Index(x, y)
	w.life[idx] = form
	w.biomass[idx] = icore.Clamp01(biomass)
	w.evolution[idx] = 0
	w.lifeEng.armGrace(w.tick)
}

// Step advances the simulation by one tick with unit dt.
func (w *World) Step() { w.Advance(1, w.tick, 1) }

// Advance runs one full staged tick. A tick always runs to completion; the
// host controls pacing by choosing how often to call this.
func (w *World) Advance(dt float64, tick int64, speed float64) {
	if dt <= 0 {
		dt = 1
	}
	w.sched.Advance(dt, tick, speed)
	w.tick++
	w.updateDisplay()
}

// Reset builds a deterministic starting planet from the seed: fractal-ish
// elevation, latitude climate bands, zonal winds, plate assignment, polar
// ice, an initial gas loadout, and a bacterial seed population.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	rng := core.NewRNG(effective, 0)
	total := w.grid.Len()

	for i := 0; i < total; i++ {
		w.elevation[i] = 0
		w.temperature[i] = 0
		w.rainfall[i] = 0
		w.humidity[i] = 0
		w.oxygen[i] = 18
		w.co2[i] = 8
		w.methane[i] = 0.6
		w.n2o[i] = 0.1
		w.greenhouse[i] = 0
		w.biomass[i] = 0
		w.evolution[i] = 0
		w.life[i] = LifeNone
		w.ice[i] = false

		w.geo.plate[i] = 0
		w.geo.volcanism[i] = 0
		w.geo.erosion[i] = 0
		w.geo.sediment[i] = 0
		w.geo.soilMoisture[i] = 0
		w.geo.flowDir[i] = -1
		w.geo.flowVolume[i] = 0
		w.geo.accumFlow[i] = 0
		w.geo.salinity[i] = 0
		w.geo.waterDensity[i] = 0
		w.geo.floodLevel[i] = 0
		w.geo.riverID[i] = 0

		w.met.windX[i] = 0
		w.met.windY[i] = 0
		w.met.pressure[i] = 1
		w.met.cloudCover[i] = 0
		w.met.precipitation[i] = 0
	}
	w.rivers = make(map[int32]*River)
	w.nextRiverID = 0
	w.tick = 0
	w.eruptions = nil
	w.earthquakes = nil
	w.storms = nil

	w.generateTerrain(rng)
	w.assignPlates(rng)
	w.initClimate(rng)
	w.seedInitialLife(rng)
	w.lifeEng.reset()
	w.hydrology.reset()
	w.updateDisplay()
}

// generateTerrain deposits overlapping hills and basins, then recenters the
// field so roughly 55% of the surface sits below sea level.
func (w *World) generateTerrain(rng *core.RNG) {
	total := w.grid.Len()
	blobs := (w.grid.W*w.grid.H)/48 + 8
	for b := 0; b < blobs; b++ {
		cx := rng.IntN(w.grid.W)
		cy := rng.IntN(w.grid.H)
		radius := 2 + rng.IntN(w.grid.W/8+2)
		amp := rng.Range(-0.9, 1.0)
		r2 := float64(radius * radius)
		for dy := -radius; dy <= radius; dy++ {
			yp := cy + dy
			if yp < 0 || yp >= w.grid.H {
				continue
			}
			for dx := -radius; dx <= radius; dx++ {
				d2 := float64(dx*dx + dy*dy)
				if d2 > r2 {
					continue
				}
				idx := w.grid.Index(w.grid.WrapX(cx+dx), yp)
				w.elevation[idx] += amp * (1 - d2/r2) * 0.5
			}
		}
	}

	// Recenter around the 55th percentile as sea level.
	sorted := append([]float64(nil), w.elevation...)
	sort.Float64s(sorted)
	cut := int(float64(total) * 0.55)
	if cut >= total {
		cut = total - 1
	}
	sea := sorted[cut]
	for i := 0; i < total; i++ {
		w.elevation[i] = icore.Clamp(w.elevation[i]-sea, -1, 1)
	}
}

// assignPlates builds a Voronoi partition from random plate seeds and marks
// volcanism along plate borders.
func (w *World) assignPlates(rng *core.RNG) {
	const plateCount = 8
	type seedPt struct{ x, y int }
	seeds := make([]seedPt, plateCount)
	for i := range seeds {
		seeds[i] = seedPt{rng.IntN(w.grid.W), rng.IntN(w.grid.H)}
	}
	for y := 0; y < w.grid.H; y++ {
		for x := 0; x < w.grid.W; x++ {
			best, bestD := 0, math.MaxFloat64
			for s, pt := range seeds {
				dx := float64(x - pt.x)
				// Wrap-aware horizontal distance.
				if dx > float64(w.grid.W)/2 {
					dx -= float64(w.grid.W)
				} else if dx < -float64(w.grid.W)/2 {
					dx += float64(w.grid.W)
				}
				dy := float64(y - pt.y)
				d := dx*dx + dy*dy
				if d < bestD {
					best, bestD = s, d
				}
			}
			w.geo.plate[w.grid.Index(x, y)] = int16(best)
		}
	}
	for y := 0; y < w.grid.H; y++ {
		for x := 0; x < w.grid.W; x++ {
			idx := w.grid.Index(x, y)
			for _, off := range icore.MooreOffsets {
				n, ok := w.grid.Neighbor(x, y, off[0], off[1])
				if ok && w.geo.plate[n] != w.geo.plate[idx] {
					w.geo.volcanism[idx] = rng.Range(0.2, 0.8)
					break
				}
			}
		}
	}
}

// initClimate sets latitude temperature bands, trade-wind style zonal winds,
// moisture, salinity and polar ice.
func (w *World) initClimate(rng *core.RNG) {
	p := &w.cfg.Params
	for y := 0; y < w.grid.H; y++ {
		lat := w.grid.Latitude(y)
		abs := math.Abs(lat)
		// Alternating zonal bands: easterly tropics, westerly mid-latitudes.
		zonal := 1.0
		if abs < 0.3 || abs > 0.75 {
			zonal = -1.0
		}
		for x := 0; x < w.grid.W; x++ {
			idx := w.grid.Index(x, y)
			elev := w.elevation[idx]
			t := p.EquatorTemp - abs*p.PolarDrop - math.Max(elev, 0)*p.AltitudeLapse
			t += rng.Range(-2, 2)
			w.temperature[idx] = t
			w.met.windX[idx] = zonal * rng.Range(0.4, 1.0)
			w.met.windY[idx] = rng.Range(-0.2, 0.2)

			if elev <= 0 {
				w.geo.salinity[idx] = 0.5 + rng.Range(-0.05, 0.05)
				w.humidity[idx] = icore.Clamp01(0.6 + rng.Range(-0.1, 0.1))
				w.rainfall[idx] = 0
			} else {
				w.humidity[idx] = icore.Clamp01(0.5 - abs*0.3 + rng.Range(-0.1, 0.1))
				w.rainfall[idx] = icore.Clamp01(0.6 - abs*0.4 + rng.Range(-0.1, 0.1))
				w.geo.soilMoisture[idx] = w.rainfall[idx] * 0.5
			}
			if t < p.FreezePoint {
				w.ice[idx] = true
			}
			w.geo.waterDensity[idx] = waterDensity(w.temperature[idx], w.geo.salinity[idx])
		}
	}
}

// seedInitialLife sprinkles bacteria in warm wet cells and algae in shallow
// seas so a fresh planet is not sterile.
func (w *World) seedInitialLife(rng *core.RNG) {
	total := w.grid.Len()
	for i := 0; i < total; i++ {
		if w.ice[i] {
			continue
		}
		if w.elevation[i] <= 0 && w.elevation[i] > -0.4 && rng.Chance(0.05) {
			w.life[i] = LifeAlgae
			w.biomass[i] = rng.Range(0.1, 0.4)
		} else if w.temperature[i] > 5 && rng.Chance(0.03) {
			w.life[i] = LifeBacteria
			w.biomass[i] = rng.Range(0.1, 0.3)
		}
	}
}

func waterDensity(temp, salinity float64) float64 {
	// Denser when cold and salty; arbitrary units around 1.
	return icore.SanitizeClamp(1+salinity*0.08-(temp-4)*0.002, 0.5, 1.5)
}

func init() {
	icore.Register("planet", func(cfg map[string]string) icore.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
