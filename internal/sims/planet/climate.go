package planet

import (
	"math"

	"github.com/rs/zerolog"

	icore "planetsim/internal/core"
)

// climateEngine relaxes every cell's temperature toward its radiative
// equilibrium (latitude insolation, altitude lapse, greenhouse forcing, ice
// albedo), forms and melts ice, and converts humidity into rainfall.
//
// It runs in stage one next to atmosphere and hydrology, so fields those
// engines read (temperature, ice, rainfall, precipitation, wind) are computed
// into next buffers and committed sequentially at the stage barrier. Cloud
// cover and pressure are only read across stage boundaries or within this
// engine, so they are written in place.
type climateEngine struct {
	w   *World
	log zerolog.Logger

	tempNext   []float64
	iceNext    []bool
	rainNext   []float64
	precipNext []float64
	windXNext  []float64
	windYNext  []float64
}

func newClimateEngine(w *World) *climateEngine {
	total := w.grid.Len()
	return &climateEngine{
		w: w, log: zerolog.Nop(),
		tempNext:   make([]float64, total),
		iceNext:    make([]bool, total),
		rainNext:   make([]float64, total),
		precipNext: make([]float64, total),
		windXNext:  make([]float64, total),
		windYNext:  make([]float64, total),
	}
}

func (e *climateEngine) Name() string { return "climate" }

func (e *climateEngine) Tick(dt float64, tick int64, speed float64) {
	w := e.w
	p := &w.cfg.Params

	w.parallelRows(func(_, y0, y1 int) {
		for y := y0; y < y1; y++ {
			lat := math.Abs(w.grid.Latitude(y))
			for x := 0; x < w.grid.W; x++ {
				idx := w.grid.Index(x, y)

				target := p.EquatorTemp - lat*p.PolarDrop -
					math.Max(w.elevation[idx], 0)*p.AltitudeLapse +
					w.greenhouse[idx]*p.GreenhouseWarming
				if w.ice[idx] {
					target -= p.IceAlbedoCooling
				}

				t := w.temperature[idx]
				t += (target - t) * icore.Clamp01(p.ClimateInertia*dt)
				e.tempNext[idx] = icore.Sanitize(t)

				// Hysteresis so coastal cells do not flicker.
				switch {
				case t < p.FreezePoint:
					e.iceNext[idx] = true
				case t > p.FreezePoint+3:
					e.iceNext[idx] = false
				default:
					e.iceNext[idx] = w.ice[idx]
				}

				// Cloud cover follows humidity; rain falls where clouds
				// saturate, feeding the hydrology engine next tick.
				hum := w.humidity[idx]
				w.met.cloudCover[idx] = icore.Clamp01(0.2 + hum*0.8)
				rain := 0.0
				if hum > 0.55 {
					rain = (hum - 0.55) * p.RainfallConvergence * 8
				}
				e.precipNext[idx] = icore.Clamp01(rain)
				e.rainNext[idx] = icore.Clamp01(w.rainfall[idx]*(1-0.1*dt) + rain*dt)

				// Pressure falls where air is warm; winds drift down the
				// gradient on top of the zonal bands.
				w.met.pressure[idx] = icore.SanitizeClamp(1-(t-10)*0.004, 0.5, 1.5)
			}
		}
	})

	w.parallelRows(func(_, y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w.grid.W; x++ {
				idx := w.grid.Index(x, y)
				east, okE := w.grid.Neighbor(x, y, 1, 0)
				south, okS := w.grid.Neighbor(x, y, 0, 1)
				gx, gy := 0.0, 0.0
				if okE {
					gx = w.met.pressure[idx] - w.met.pressure[east]
				}
				if okS {
					gy = w.met.pressure[idx] - w.met.pressure[south]
				}
				e.windXNext[idx] = icore.SanitizeClamp(w.met.windX[idx]+gx*2*dt, -2, 2)
				e.windYNext[idx] = icore.SanitizeClamp(w.met.windY[idx]+gy*2*dt, -2, 2)
			}
		}
	})
}

// commit publishes the next buffers. Runs sequentially at the stage barrier.
func (e *climateEngine) commit() {
	w := e.w
	copy(w.temperature, e.tempNext)
	copy(w.ice, e.iceNext)
	copy(w.rainfall, e.rainNext)
	copy(w.met.precipitation, e.precipNext)
	copy(w.met.windX, e.windXNext)
	copy(w.met.windY, e.windYNext)
}
