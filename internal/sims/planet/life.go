package planet

import (
	"math"

	"github.com/rs/zerolog"

	icore "planetsim/internal/core"
	"planetsim/pkg/core"
)

// EnvStat is a smoothed statistical summary of one environmental quantity.
type EnvStat struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// LifeSupportProfile is the planet's self-updating comfort envelope: what
// counts as survivable is defined by smoothed planet-wide statistics, never
// by hardcoded constants, so life stays viable on arbitrarily generated
// worlds. Rebuilt every tick; only these smoothed values are persisted.
type LifeSupportProfile struct {
	Oxygen    EnvStat
	LandTemp  EnvStat
	WaterTemp EnvStat
	LandRain  EnvStat
}

// LifeEngine advances habitability profiling, biomass kinetics, evolutionary
// transitions, dispersal, event damage and extinction recovery. It runs
// alone in the biology stage; the growth/death pass is data-parallel with a
// biomass next buffer, the stochastic passes run sequentially so RNG
// consumption stays deterministic.
type LifeEngine struct {
	w   *World
	rng *core.RNG
	log zerolog.Logger

	profile     LifeSupportProfile
	initialized bool
	graceUntil  int64

	biomassNext []float64
}

// NewLifeEngine constructs the engine with its own RNG stream.
func NewLifeEngine(w *World, rng *core.RNG) *LifeEngine {
	return &LifeEngine{
		w: w, rng: rng, log: zerolog.Nop(),
		biomassNext: make([]float64, w.grid.Len()),
	}
}

func (e *LifeEngine) reset() {
	e.initialized = false
	e.graceUntil = 0
	e.profile = LifeSupportProfile{}
}

func (e *LifeEngine) armGrace(tick int64) {
	e.graceUntil = tick + e.w.cfg.Params.GraceTicks
}

func (e *LifeEngine) Name() string { return "life" }

func (e *LifeEngine) Tick(dt float64, tick int64, speed float64) {
	e.updateProfile()
	e.kineticsPass(dt, tick)
	e.evolvePass(dt)
	e.dispersalPass()
	e.eventPass(dt)
	e.reseedPass(tick)
}

// updateProfile recomputes the comfort envelope by blending freshly observed
// planet statistics into the smoothed profile. Extremes relax slowly so a
// transient outlier does not instantly redefine the survivable window.
func (e *LifeEngine) updateProfile() {
	w := e.w
	p := &w.cfg.Params

	var (
		oxy, landT, waterT, landR statAccum
	)
	for i := 0; i < w.grid.Len(); i++ {
		oxy.add(w.oxygen[i])
		if w.elevation[i] > 0 {
			landT.add(w.temperature[i])
			landR.add(w.rainfall[i])
		} else {
			waterT.add(w.temperature[i])
		}
	}

	blend, relax := p.ProfileBlend, p.ExtremeRelax
	if !e.initialized {
		blend, relax = 1, 1
		e.initialized = true
	}
	blendStat(&e.profile.Oxygen, oxy, blend, relax)
	blendStat(&e.profile.LandTemp, landT, blend, relax)
	blendStat(&e.profile.WaterTemp, waterT, blend, relax)
	blendStat(&e.profile.LandRain, landR, blend, relax)
}

type statAccum struct {
	n          float64
	sum, sumSq float64
	min, max   float64
	any        bool
}

func (a *statAccum) add(v float64) {
	v = icore.Sanitize(v)
	if !a.any {
		a.min, a.max = v, v
		a.any = true
	}
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
	a.n++
	a.sum += v
	a.sumSq += v * v
}

func (a *statAccum) stats() (mean, std float64) {
	if a.n == 0 {
		return 0, 0
	}
	mean = a.sum / a.n
	variance := a.sumSq/a.n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

func blendStat(s *EnvStat, a statAccum, blend, relax float64) {
	if a.n == 0 {
		return
	}
	mean, std := a.stats()
	s.Mean += (mean - s.Mean) * blend
	s.Std += (std - s.Std) * blend
	s.Min += (a.min - s.Min) * relax
	s.Max += (a.max - s.Max) * relax
}

// kineticsPass applies net biomass change (growth − death)·dt per cell and
// reverts cells whose biomass collapses to the empty form. Deterministic, so
// it fans out over row bands with a next buffer.
func (e *LifeEngine) kineticsPass(dt float64, tick int64) {
	w := e.w
	p := &w.cfg.Params
	grace := tick < e.graceUntil

	w.parallelRows(func(_, y0, y1 int) {
		lo, hi := y0*w.grid.W, y1*w.grid.W
		for idx := lo; idx < hi; idx++ {
			form := w.life[idx]
			if form == LifeNone {
				e.biomassNext[idx] = 0
				continue
			}
			traits := &lifeTable[form]
			growth := 0.0
			if traits.growth != nil {
				growth = traits.growth(e, idx)
			}
			death := 0.0
			if !grace {
				death = e.deathRate(idx, form)
			}
			b := w.biomass[idx] + (growth-death)*dt
			e.biomassNext[idx] = icore.SanitizeClamp(b, 0, 1)
		}
	})
	copy(w.biomass, e.biomassNext)

	for idx := 0; idx < w.grid.Len(); idx++ {
		if w.life[idx] != LifeNone && w.biomass[idx] < p.ExtinctionBiomass {
			w.life[idx] = LifeNone
			w.biomass[idx] = 0
			w.evolution[idx] = 0
		}
	}
}

// deathRate measures deviation outside the adaptive comfort window. The
// window is the profile mean widened by a multiple of the tracked standard
// deviation plus the form's own margin; bacteria get a large extra margin.
func (e *LifeEngine) deathRate(idx int, form LifeForm) float64 {
	w := e.w
	p := &w.cfg.Params
	traits := &lifeTable[form]

	land := w.elevation[idx] > 0
	var tempStat EnvStat
	if land {
		tempStat = e.profile.LandTemp
	} else {
		tempStat = e.profile.WaterTemp
	}

	margin := traits.tempMargin
	if form == LifeBacteria {
		margin += p.BacteriaTempMargin
	}
	width := tempStat.Std*p.ComfortStdWidth + margin
	death := deviation(w.temperature[idx], tempStat.Mean-width, tempStat.Mean+width) * p.DeathRateGain

	// Habitat mismatch: a stranded form declines steadily.
	if land && !traits.land {
		death += 0.15
	}
	if !land && !traits.water {
		death += 0.15
	}
	if w.ice[idx] && form != LifeBacteria {
		death += 0.1
	}

	// Grazers suffocate below the oxygen envelope.
	if traits.grazer {
		oxyFloor := e.profile.Oxygen.Mean - e.profile.Oxygen.Std*p.ComfortStdWidth
		if w.oxygen[idx] < oxyFloor {
			death += (oxyFloor - w.oxygen[idx]) * p.DeathRateGain
		}
	}

	// Plants wither outside the rainfall envelope.
	if form == LifePlant {
		rainFloor := e.profile.LandRain.Mean - e.profile.LandRain.Std*p.ComfortStdWidth - 0.1
		if w.rainfall[idx] < rainFloor {
			death += (rainFloor - w.rainfall[idx]) * 0.3
		}
	}

	return icore.SanitizeClamp(death, 0, 5)
}

func deviation(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// landSuitability is a coarse multiplier for plant growth: poor on ice,
// mountains and saturated flood plains.
func (e *LifeEngine) landSuitability(idx int) float64 {
	w := e.w
	if w.ice[idx] {
		return 0.1
	}
	s := 1.0
	if w.elevation[idx] > 0.7 {
		s -= (w.elevation[idx] - 0.7) * 2
	}
	if w.geo.floodLevel[idx] > 0.5 {
		s -= 0.3
	}
	return icore.Clamp01(s)
}

// evolvePass accumulates evolutionary progress in thriving cells and rolls
// promotion trials along the fixed chain. A promotion whose successor cannot
// live in the cell relocates into an adjacent compatible empty cell instead
// (life begets the next form nearby rather than in place).
func (e *LifeEngine) evolvePass(dt float64) {
	w := e.w
	p := &w.cfg.Params

	for idx := 0; idx < w.grid.Len(); idx++ {
		form := w.life[idx]
		if form == LifeNone || form >= LifeIntelligence {
			continue
		}
		traits := &lifeTable[form]
		if w.biomass[idx] > evolveBiomassFloor {
			w.evolution[idx] += traits.evolveRate * dt
		}
		if w.evolution[idx] <= 1 {
			continue
		}
		if !e.rng.Chance(p.EvolveChance) {
			continue
		}
		if traits.canEvolve != nil && !traits.canEvolve(e, idx) {
			w.evolution[idx] = 0
			continue
		}

		next := form + 1
		if e.habitatOK(next, idx) {
			w.life[idx] = next
			w.evolution[idx] = 0
			e.log.Debug().Str("from", form.String()).Str("to", next.String()).Msg("evolution")
			continue
		}
		// Relocate: beget the successor in an adjacent compatible cell.
		x, y := w.grid.Coords(idx)
		for _, off := range icore.MooreOffsets {
			n, ok := w.grid.Neighbor(x, y, off[0], off[1])
			if !ok || w.life[n] != LifeNone || !e.habitatOK(next, n) {
				continue
			}
			w.life[n] = next
			w.biomass[n] = 0.3
			w.evolution[n] = 0
			w.evolution[idx] = 0
			e.log.Debug().Str("from", form.String()).Str("to", next.String()).Msg("evolution (relocated)")
			break
		}
		w.evolution[idx] = 0
	}
}

func (e *LifeEngine) habitatOK(form LifeForm, idx int) bool {
	traits := &lifeTable[form]
	if e.w.ice[idx] && form != LifeBacteria {
		return false
	}
	if e.w.elevation[idx] > 0 {
		return traits.land
	}
	return traits.water
}

// dispersalPass runs a bounded number of random colonization trials from
// populated cells into empty survivable neighbors.
func (e *LifeEngine) dispersalPass() {
	w := e.w
	p := &w.cfg.Params
	total := w.grid.Len()
	if total == 0 {
		return
	}

	for trial := 0; trial < p.DispersalTrials; trial++ {
		idx := e.rng.IntN(total)
		form := w.life[idx]
		if form == LifeNone || w.biomass[idx] < 0.3 {
			continue
		}
		x, y := w.grid.Coords(idx)
		off := icore.MooreOffsets[e.rng.IntN(len(icore.MooreOffsets))]
		n, ok := w.grid.Neighbor(x, y, off[0], off[1])
		if !ok || w.life[n] != LifeNone {
			continue
		}
		if !e.habitatOK(form, n) || e.deathRate(n, form) > 0.05 {
			continue
		}
		w.life[n] = form
		w.biomass[n] = icore.Clamp01(p.DispersalBiomass)
		w.evolution[n] = w.evolution[idx] * 0.5
	}
}

// eventPass applies radius-scaled biomass damage from the collaborator event
// lists consumed this tick. Bacteria are largely immune.
func (e *LifeEngine) eventPass(dt float64) {
	w := e.w
	for _, ev := range w.eruptions {
		e.applyDamage(ev.X, ev.Y, 4, 0.8*dt)
	}
	for _, ev := range w.earthquakes {
		radius := int(icore.SanitizeClamp(ev.Magnitude, 0, 9))
		e.applyDamage(ev.X, ev.Y, radius, 0.1*ev.Magnitude*dt)
	}
	for _, s := range w.storms {
		e.applyDamage(s.X, s.Y, s.Radius(), 0.15*icore.SanitizeClamp(s.Intensity, 0, 10)*dt)
	}
}

func (e *LifeEngine) applyDamage(cx, cy, radius int, base float64) {
	w := e.w
	if radius < 0 || base <= 0 {
		return
	}
	r2 := float64(radius*radius) + 1e-9
	for dy := -radius; dy <= radius; dy++ {
		y := cy + dy
		if y < 0 || y >= w.grid.H {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			if d2 > r2 {
				continue
			}
			idx := w.grid.Index(w.grid.WrapX(cx+dx), y)
			form := w.life[idx]
			if form == LifeNone {
				continue
			}
			falloff := 1 - d2/r2
			damage := base * falloff * (1 - lifeTable[form].eventResistance)
			w.biomass[idx] = icore.Clamp01(w.biomass[idx] - damage)
		}
	}
}

// reseedPass periodically checks for planetary extinction and reseeds
// pioneers: bacteria always, algae and plants once oxygen clears their
// gates. The new colonies get the establishment grace period.
func (e *LifeEngine) reseedPass(tick int64) {
	w := e.w
	p := &w.cfg.Params
	if p.ReseedInterval <= 0 || tick == 0 || tick%p.ReseedInterval != 0 {
		return
	}

	total := w.grid.Len()
	populated := 0
	oxySum := 0.0
	for i := 0; i < total; i++ {
		if w.life[i] != LifeNone {
			populated++
		}
		oxySum += w.oxygen[i]
	}
	if float64(populated)/float64(total) >= p.ReseedThreshold {
		return
	}
	meanOxy := oxySum / float64(total)

	seeded := 0
	for attempt := 0; attempt < p.ReseedCells*8 && seeded < p.ReseedCells; attempt++ {
		idx := e.rng.IntN(total)
		if w.life[idx] != LifeNone || w.ice[idx] {
			continue
		}
		form := LifeBacteria
		if w.elevation[idx] <= 0 && meanOxy >= p.AlgaeOxygenGate && e.rng.Chance(0.5) {
			form = LifeAlgae
		} else if w.elevation[idx] > 0 && meanOxy >= p.PlantOxygenGate && e.rng.Chance(0.3) {
			form = LifePlant
		}
		w.life[idx] = form
		w.biomass[idx] = e.rng.Range(0.2, 0.5)
		w.evolution[idx] = 0
		seeded++
	}
	if seeded > 0 {
		e.armGrace(tick)
		e.log.Info().Int("cells", seeded).Float64("mean_oxygen", meanOxy).
			Msg("life collapsed below threshold, reseeding")
	}
}
