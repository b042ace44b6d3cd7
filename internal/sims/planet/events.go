package planet

import (
	"github.com/rs/zerolog"

	icore "planetsim/internal/core"
)

// Eruption is a recent volcanic event reported by the geology collaborator.
type Eruption struct {
	X, Y int
	Year int
}

// Earthquake is a recent seismic event reported by the geology collaborator.
type Earthquake struct {
	X, Y      int
	Magnitude float64
}

// Storm is an active storm reported by the weather collaborator. The damage
// radius is implied by the category.
type Storm struct {
	X, Y      int
	Intensity float64
	Category  int
}

// Radius derives the storm's reach from its category.
func (s Storm) Radius() int {
	c := s.Category
	if c < 0 {
		c = 0
	}
	if c > 5 {
		c = 5
	}
	return 2 + c
}

// stabilizer is the stage-four finalizer: the only subsystem permitted to
// apply policy corrections across the whole grid. It pulls the planet back
// from runaway drift (greenhouse heat spiral, total ice collapse) by nudging
// every cell's temperature toward the configured band. Leaf engines never
// raise errors for drift; this is where it gets corrected.
type stabilizer struct {
	w   *World
	log zerolog.Logger
}

func newStabilizer(w *World) *stabilizer {
	return &stabilizer{w: w, log: zerolog.Nop()}
}

func (s *stabilizer) Name() string { return "stabilizer" }

func (s *stabilizer) Tick(dt float64, tick int64, speed float64) {
	w := s.w
	p := &w.cfg.Params

	total := w.grid.Len()
	if total == 0 {
		return
	}
	sum := 0.0
	frozen := 0
	for i := 0; i < total; i++ {
		sum += w.temperature[i]
		if w.ice[i] {
			frozen++
		}
	}
	mean := sum / float64(total)
	frozenFrac := float64(frozen) / float64(total)

	step := p.StabilizerStep * dt
	switch {
	case mean > p.StabilizerMaxTemp:
		for i := 0; i < total; i++ {
			w.temperature[i] = icore.Sanitize(w.temperature[i] - step)
		}
		s.log.Warn().Float64("mean_temp", mean).Msg("runaway heat, stabilizer cooling planet")
	case mean < p.StabilizerMinTemp || frozenFrac > 0.98:
		for i := 0; i < total; i++ {
			w.temperature[i] = icore.Sanitize(w.temperature[i] + step)
		}
		s.log.Warn().Float64("mean_temp", mean).Float64("frozen_frac", frozenFrac).
			Msg("ice collapse, stabilizer warming planet")
	}
}
