package planet

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	icore "planetsim/internal/core"
	"planetsim/pkg/core"
)

// exchangeDelta is one pending heat/salt transfer produced by the ocean
// current pass. Workers append into per-band lists; a single sequential
// reduce applies them, so no two goroutines ever write the same cell.
type exchangeDelta struct {
	idx   int32
	dTemp float64
	dSalt float64
}

// HydrologyEngine advances soil moisture, drainage routing and accumulation,
// rivers, ocean salinity/density circulation, tides and flooding.
//
// Fields read by stage-one peers (soil moisture, humidity, elevation) are
// staged: moisture and humidity in next buffers, river bed carving as a
// deferred delta list, ocean heat/salt exchange as per-band delta lists. All
// are applied in commit at the stage barrier.
type HydrologyEngine struct {
	w   *World
	rng *core.RNG
	log zerolog.Logger

	soilNext     []float64
	humidityNext []float64

	order  []int // elevation-sorted cell indices, rebuilt per tick
	carve  []int32
	deltas [][]exchangeDelta
}

// NewHydrologyEngine constructs the engine with its own RNG stream.
func NewHydrologyEngine(w *World, rng *core.RNG) *HydrologyEngine {
	total := w.grid.Len()
	e := &HydrologyEngine{
		w: w, rng: rng, log: zerolog.Nop(),
		soilNext:     make([]float64, total),
		humidityNext: make([]float64, total),
		order:        make([]int, total),
	}
	e.reset()
	return e
}

func (e *HydrologyEngine) reset() {
	for i := range e.order {
		e.order[i] = i
	}
	e.carve = e.carve[:0]
}

func (e *HydrologyEngine) Name() string { return "hydrology" }

func (e *HydrologyEngine) Tick(dt float64, tick int64, speed float64) {
	e.moisturePass(dt)
	e.routeFlow()
	e.accumulateFlow()
	e.riverPass(dt)
	e.salinityPass(dt)
	e.currentPass(dt)
	e.tidePass(dt, tick)
	e.floodPass(dt)
}

// commit publishes the staged buffers. Runs sequentially at the stage
// barrier, after the climate commit, so the carve and exchange deltas apply
// on top of this tick's committed fields.
func (e *HydrologyEngine) commit() {
	w := e.w
	copy(w.geo.soilMoisture, e.soilNext)
	copy(w.humidity, e.humidityNext)

	for _, idx := range e.carve {
		w.elevation[idx] = icore.Clamp(w.elevation[idx]-w.cfg.Params.RiverCarve, -1, 1)
		w.geo.erosion[idx] = icore.Clamp01(w.geo.erosion[idx] + w.cfg.Params.RiverCarve)
	}
	e.carve = e.carve[:0]

	for _, band := range e.deltas {
		for _, d := range band {
			w.temperature[d.idx] = icore.Sanitize(w.temperature[d.idx] + d.dTemp)
			w.geo.salinity[d.idx] = icore.Clamp01(w.geo.salinity[d.idx] + d.dSalt)
		}
	}
	for i := range e.deltas {
		e.deltas[i] = e.deltas[i][:0]
	}

	for i := range w.geo.waterDensity {
		if w.elevation[i] <= 0 {
			w.geo.waterDensity[i] = waterDensity(w.temperature[i], w.geo.salinity[i])
		} else {
			w.geo.waterDensity[i] = 0
		}
	}
}

// moisturePass balances soil moisture and humidity per cell: rainfall soaks
// in, heat evaporates, plants transpire, and the evaporated water is
// credited back to the air. Saturated soil overflows into flood level.
func (e *HydrologyEngine) moisturePass(dt float64) {
	w := e.w
	p := &w.cfg.Params
	w.parallelRows(func(_, y0, y1 int) {
		lo, hi := y0*w.grid.W, y1*w.grid.W
		for idx := lo; idx < hi; idx++ {
			if w.elevation[idx] <= 0 {
				e.soilNext[idx] = 1
				evap := p.EvaporationRate * icore.Clamp01((w.temperature[idx]+10)/40) * dt
				e.humidityNext[idx] = icore.Clamp01(w.humidity[idx] + evap - w.met.precipitation[idx]*0.2*dt)
				continue
			}

			soil := w.geo.soilMoisture[idx]
			intake := w.rainfall[idx] * p.SoilAbsorption * dt
			evap := soil * p.EvaporationRate * icore.Clamp01(w.temperature[idx]/30) * dt
			transp := 0.0
			if w.life[idx] == LifePlant {
				transp = w.biomass[idx] * p.TranspirationRate * dt
				if transp > soil {
					transp = soil
				}
			}

			next := soil + intake - evap - transp
			if next > 1 {
				// Overflow becomes standing water.
				w.geo.floodLevel[idx] = icore.Clamp(w.geo.floodLevel[idx]+(next-1)*0.5, 0, 10)
				next = 1
			}
			e.soilNext[idx] = icore.SanitizeClamp(next, 0, 1)
			e.humidityNext[idx] = icore.Clamp01(w.humidity[idx] + evap + transp - w.met.precipitation[idx]*0.3*dt)
		}
	})
}

// routeFlow picks each land cell's steepest-descent neighbor and derives the
// local flow magnitude. Every operand is validated: gradients from generated
// terrain can be pathological.
func (e *HydrologyEngine) routeFlow() {
	w := e.w
	p := &w.cfg.Params
	w.parallelRows(func(_, y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w.grid.W; x++ {
				idx := w.grid.Index(x, y)
				if w.elevation[idx] <= 0 {
					w.geo.flowDir[idx] = -1
					w.geo.flowVolume[idx] = 0
					continue
				}

				best := -1
				bestDrop := 0.0
				for _, off := range icore.MooreOffsets {
					n, ok := w.grid.Neighbor(x, y, off[0], off[1])
					if !ok {
						continue
					}
					drop := icore.Sanitize(w.elevation[idx] - w.elevation[n])
					if drop > bestDrop {
						bestDrop = drop
						best = n
					}
				}
				w.geo.flowDir[idx] = int32(best)

				gradient := icore.SanitizeClamp(bestDrop, 0, 2)
				rain := icore.SanitizeClamp(w.rainfall[idx], 0, 1)
				soil := icore.SanitizeClamp(w.geo.soilMoisture[idx], 0, 1)
				w.geo.flowVolume[idx] = icore.SanitizeClamp((rain+soil)*gradient, 0, p.FlowMax)
			}
		}
	})
}

// accumulateFlow visits cells in descending elevation order, pushing each
// cell's own flow plus accumulated upstream flow downstream. Elevation order
// guarantees every contributor lands before its recipient is visited, so a
// single linear pass suffices.
func (e *HydrologyEngine) accumulateFlow() {
	w := e.w
	p := &w.cfg.Params
	sort.Slice(e.order, func(a, b int) bool {
		return w.elevation[e.order[a]] > w.elevation[e.order[b]]
	})
	for i := range w.geo.accumFlow {
		w.geo.accumFlow[i] = 0
	}
	for _, idx := range e.order {
		total := icore.SanitizeClamp(w.geo.accumFlow[idx]+w.geo.flowVolume[idx], 0, p.FlowMax*float64(w.grid.Len()))
		w.geo.accumFlow[idx] = total
		if dst := w.geo.flowDir[idx]; dst >= 0 {
			w.geo.accumFlow[dst] = icore.Sanitize(w.geo.accumFlow[dst] + total)
		}
	}
}

// riverPass rolls formation trials on qualifying source cells and retires
// frozen rivers.
func (e *HydrologyEngine) riverPass(dt float64) {
	w := e.w
	p := &w.cfg.Params

	spawnP := icore.Clamp01(p.RiverSpawnChance * dt)
	for idx := 0; idx < w.grid.Len(); idx++ {
		if w.geo.riverID[idx] != 0 || w.ice[idx] {
			continue
		}
		if w.elevation[idx] <= p.RiverMinElevation ||
			w.rainfall[idx] <= p.RiverMinRainfall ||
			w.geo.flowVolume[idx] <= p.RiverMinFlow ||
			w.geo.accumFlow[idx] < p.RiverMinAccum {
			continue
		}
		if !e.rng.Chance(spawnP) {
			continue
		}
		x, y := w.grid.Coords(idx)
		e.spawnRiver(e.traceRiver(x, y))
	}

	e.maintainRivers()
}

// salinityPass concentrates ocean salt under evaporation and dilutes it
// under rain and river inflow. Cell-local.
func (e *HydrologyEngine) salinityPass(dt float64) {
	w := e.w
	p := &w.cfg.Params
	w.parallelRows(func(_, y0, y1 int) {
		lo, hi := y0*w.grid.W, y1*w.grid.W
		for idx := lo; idx < hi; idx++ {
			if w.elevation[idx] > 0 {
				continue
			}
			s := w.geo.salinity[idx]
			s += p.SalinityEvapGain * math.Max(w.temperature[idx], 0) * 0.01 * dt
			s -= p.SalinityRainDilute * w.met.precipitation[idx] * dt
			if w.geo.riverID[idx] != 0 {
				s -= p.SalinityRainDilute * 2 * dt // fresh river mouth
			}
			w.geo.salinity[idx] = icore.SanitizeClamp(s, 0, 1)
		}
	})
}

// currentPass models surface currents and thermohaline circulation: every
// water cell exchanges a fraction of its heat and salt with its least-dense
// water neighbor, from dense to light. Transfers are recorded as per-band
// deltas and reduced at commit; addition commutes, so band order is
// irrelevant.
func (e *HydrologyEngine) currentPass(dt float64) {
	w := e.w
	p := &w.cfg.Params
	n := w.workers()
	if cap(e.deltas) < n {
		e.deltas = make([][]exchangeDelta, n)
	}
	e.deltas = e.deltas[:n]

	k := icore.Clamp01(p.CurrentExchange * dt)
	w.parallelRows(func(band, y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w.grid.W; x++ {
				idx := w.grid.Index(x, y)
				if w.elevation[idx] > 0 {
					continue
				}
				target := -1
				lightest := w.geo.waterDensity[idx]
				for _, off := range icore.MooreOffsets {
					ni, ok := w.grid.Neighbor(x, y, off[0], off[1])
					if !ok || w.elevation[ni] > 0 {
						continue
					}
					if w.geo.waterDensity[ni] < lightest {
						lightest = w.geo.waterDensity[ni]
						target = ni
					}
				}
				if target < 0 {
					continue
				}
				dTemp := icore.Sanitize((w.temperature[idx] - w.temperature[target]) * k * 0.5)
				dSalt := icore.Sanitize((w.geo.salinity[idx] - w.geo.salinity[target]) * k * 0.5)
				e.deltas[band] = append(e.deltas[band],
					exchangeDelta{idx: int32(target), dTemp: dTemp, dSalt: dSalt},
					exchangeDelta{idx: int32(idx), dTemp: -dTemp, dSalt: -dSalt})
			}
		}
	})
}

// tidePass raises flood level on low coastal land while the tide is high.
func (e *HydrologyEngine) tidePass(dt float64, tick int64) {
	w := e.w
	p := &w.cfg.Params
	if p.TideAmplitude <= 0 || p.TidePeriod <= 0 {
		return
	}
	tide := p.TideAmplitude * math.Sin(2*math.Pi*float64(tick)/p.TidePeriod)
	if tide <= 0 {
		return
	}
	w.parallelRows(func(_, y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w.grid.W; x++ {
				idx := w.grid.Index(x, y)
				if w.elevation[idx] <= 0 || w.elevation[idx] > 0.05 {
					continue
				}
				coastal := false
				for _, off := range icore.MooreOffsets {
					n, ok := w.grid.Neighbor(x, y, off[0], off[1])
					if ok && w.elevation[n] <= 0 {
						coastal = true
						break
					}
				}
				if coastal {
					w.geo.floodLevel[idx] = icore.Clamp(w.geo.floodLevel[idx]+tide*dt, 0, 10)
				}
			}
		}
	})
}

// floodPass runs three sequential relaxation passes, each moving a fraction
// of every cell's standing water to its lowest total-elevation neighbor,
// then decays the remainder by evaporation and infiltration. Relaxation
// converges well enough at simulation timescales; a closed-form solve is not
// worth the complexity.
func (e *HydrologyEngine) floodPass(dt float64) {
	w := e.w
	p := &w.cfg.Params
	passes := p.FloodPasses
	if passes <= 0 {
		passes = 3
	}

	for pass := 0; pass < passes; pass++ {
		for y := 0; y < w.grid.H; y++ {
			for x := 0; x < w.grid.W; x++ {
				idx := w.grid.Index(x, y)
				level := w.geo.floodLevel[idx]
				if level <= 0 {
					continue
				}
				totalHere := w.elevation[idx] + level
				best := -1
				bestTotal := totalHere
				for _, off := range icore.MooreOffsets {
					n, ok := w.grid.Neighbor(x, y, off[0], off[1])
					if !ok {
						continue
					}
					t := w.elevation[n] + w.geo.floodLevel[n]
					if t < bestTotal {
						bestTotal = t
						best = n
					}
				}
				if best < 0 {
					continue
				}
				move := level * p.FloodTransfer
				if w.elevation[best] <= 0 {
					// Drains into open water.
					w.geo.floodLevel[idx] = icore.Clamp(level-move, 0, 10)
					continue
				}
				w.geo.floodLevel[idx] = icore.Clamp(level-move, 0, 10)
				w.geo.floodLevel[best] = icore.Clamp(w.geo.floodLevel[best]+move, 0, 10)
			}
		}
	}

	decay := icore.Clamp01(p.FloodDecay * dt)
	for i := range w.geo.floodLevel {
		if w.geo.floodLevel[i] > 0 {
			w.geo.floodLevel[i] = icore.SanitizeClamp(w.geo.floodLevel[i]*(1-decay), 0, 10)
		}
	}
}
