package planet

import (
	"math"

	"github.com/rs/zerolog"

	icore "planetsim/internal/core"
)

// AtmosphereEngine advances per-cell gas chemistry and spatial mixing. Each
// gas runs its reaction pass immediately followed by its own mixing pass:
// the gases have distinct dominant transport mechanisms and timescales, and
// interleaving them this way keeps each gas self-consistent within a tick.
//
// The four gas arrays are owned exclusively by this engine during stage one;
// greenhouse is read by the climate engine, so it is staged in a next buffer
// and committed at the barrier.
type AtmosphereEngine struct {
	w   *World
	log zerolog.Logger

	scratch []float64
	ghNext  []float64
}

// NewAtmosphereEngine constructs the engine.
func NewAtmosphereEngine(w *World) *AtmosphereEngine {
	total := w.grid.Len()
	return &AtmosphereEngine{
		w: w, log: zerolog.Nop(),
		scratch: make([]float64, total),
		ghNext:  make([]float64, total),
	}
}

func (e *AtmosphereEngine) Name() string { return "atmosphere" }

func (e *AtmosphereEngine) Tick(dt float64, tick int64, speed float64) {
	e.chemistryPass(&e.w.oxygen, e.oxygenDelta, dt)
	e.mixPass(&e.w.oxygen, dt)

	e.chemistryPass(&e.w.co2, e.co2Delta, dt)
	e.mixPass(&e.w.co2, dt)

	e.chemistryPass(&e.w.methane, e.methaneDelta, dt)
	e.mixPass(&e.w.methane, dt)

	e.chemistryPass(&e.w.n2o, e.n2oDelta, dt)
	e.mixPass(&e.w.n2o, dt)

	e.greenhousePass(dt)
}

// commit publishes greenhouse at the stage barrier.
func (e *AtmosphereEngine) commit() {
	copy(e.w.greenhouse, e.ghNext)
}

// chemistryPass applies a reaction delta to every cell and re-clamps.
func (e *AtmosphereEngine) chemistryPass(field *[]float64, delta func(idx int) float64, dt float64) {
	f := *field
	e.w.parallelRows(func(_, y0, y1 int) {
		lo, hi := y0*e.w.grid.W, y1*e.w.grid.W
		for idx := lo; idx < hi; idx++ {
			f[idx] = icore.SanitizeClamp(f[idx]+delta(idx)*dt, 0, 100)
		}
	})
}

// oxygenDelta: photosynthesis by producers, respiration by consumers,
// combustion above the ignition threshold, slow oceanic drawdown.
func (e *AtmosphereEngine) oxygenDelta(idx int) float64 {
	w := e.w
	p := &w.cfg.Params
	traits := lifeTable[w.life[idx]]
	d := 0.0
	if traits.producer {
		d += p.PhotosynthesisRate * w.biomass[idx]
	}
	if traits.grazer {
		d -= p.RespirationRate * w.biomass[idx]
	}
	if w.temperature[idx] > p.CombustionTemp && traits.producer {
		d -= p.CombustionRate * w.biomass[idx]
	}
	if w.elevation[idx] <= 0 {
		d -= p.OceanCO2Uptake * 0.1
	}
	return d
}

// co2Delta: respiration and volcanism add, photosynthesis and cold-ocean
// absorption remove.
func (e *AtmosphereEngine) co2Delta(idx int) float64 {
	w := e.w
	p := &w.cfg.Params
	traits := lifeTable[w.life[idx]]
	d := 0.0
	if traits.grazer {
		d += p.RespirationRate * w.biomass[idx]
	}
	if traits.producer {
		d -= p.PhotosynthesisRate * w.biomass[idx] * 0.8
	}
	d += p.VolcanismCO2Rate * w.geo.volcanism[idx]
	if w.temperature[idx] > p.CombustionTemp && traits.producer {
		d += p.CombustionRate * w.biomass[idx]
	}
	if w.elevation[idx] <= 0 {
		// Colder water absorbs more.
		cold := icore.Clamp01((20 - w.temperature[idx]) / 40)
		d -= p.OceanCO2Uptake * (0.5 + cold)
	}
	return d
}

// methaneDelta: anaerobic decay in warm wet cells, thermal oxidation.
func (e *AtmosphereEngine) methaneDelta(idx int) float64 {
	w := e.w
	p := &w.cfg.Params
	d := 0.0
	wet := w.geo.soilMoisture[idx]
	if w.elevation[idx] <= 0 {
		wet = 1
	}
	if w.life[idx] == LifeBacteria {
		d += p.MethaneSourceRate * w.biomass[idx] * wet
	}
	d -= p.MethaneDecayRate * w.methane[idx] * icore.Clamp01((w.temperature[idx]+20)/60)
	return d
}

// n2oDelta: microbial soil source, slow photolysis.
func (e *AtmosphereEngine) n2oDelta(idx int) float64 {
	w := e.w
	p := &w.cfg.Params
	d := 0.0
	form := w.life[idx]
	if form == LifeBacteria || form == LifePlant {
		d += p.N2OSourceRate * w.biomass[idx] * w.geo.soilMoisture[idx]
	}
	d -= p.N2ODecayRate * w.n2o[idx]
	return d
}

// mixPass blends each cell toward its 8-neighbor average (diffusion) and
// toward the upwind neighbor (advection), double-buffered so no cell reads a
// neighbor mutated in the same pass.
func (e *AtmosphereEngine) mixPass(field *[]float64, dt float64) {
	w := e.w
	p := &w.cfg.Params
	src := *field
	dst := e.scratch

	diffuse := icore.Clamp01(p.GasDiffusionRate * dt)

	w.parallelRows(func(_, y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w.grid.W; x++ {
				idx := w.grid.Index(x, y)
				sum, count := 0.0, 0
				for _, off := range icore.MooreOffsets {
					n, ok := w.grid.Neighbor(x, y, off[0], off[1])
					if !ok {
						continue
					}
					sum += src[n]
					count++
				}
				v := src[idx]
				if count > 0 {
					v += (sum/float64(count) - v) * diffuse
				}

				wx, wy := w.met.windX[idx], w.met.windY[idx]
				speed := math.Hypot(wx, wy)
				if speed > 1e-6 {
					ux, uy := unitStep(-wx/speed), unitStep(-wy/speed)
					if n, ok := w.grid.Neighbor(x, y, ux, uy); ok && (ux != 0 || uy != 0) {
						rate := icore.Clamp(speed*p.GasAdvectionGain*dt, 0, p.GasAdvectionMax)
						v = v*(1-rate) + src[n]*rate
					}
				}

				dst[idx] = icore.SanitizeClamp(v, 0, 100)
			}
		}
	})

	*field = dst
	e.scratch = src
}

// greenhousePass recomputes radiative forcing from the mixed gases plus the
// water-vapor feedback (humid cells, amplified when warm).
func (e *AtmosphereEngine) greenhousePass(dt float64) {
	w := e.w
	p := &w.cfg.Params
	w.parallelRows(func(_, y0, y1 int) {
		lo, hi := y0*w.grid.W, y1*w.grid.W
		for idx := lo; idx < hi; idx++ {
			g := p.GreenhouseCO2*w.co2[idx] +
				p.GreenhouseCH4*w.methane[idx] +
				p.GreenhouseN2O*w.n2o[idx]
			if w.humidity[idx] > 0.5 {
				vapor := (w.humidity[idx] - 0.5) * p.VaporFeedbackGain
				if w.temperature[idx] > 15 {
					vapor *= p.VaporWarmBoost
				}
				g += vapor
			}
			e.ghNext[idx] = icore.SanitizeClamp(g, 0, 5)
		}
	})
}

// unitStep quantizes a direction component to -1, 0 or 1.
func unitStep(v float64) int {
	if v > 0.4 {
		return 1
	}
	if v < -0.4 {
		return -1
	}
	return 0
}
