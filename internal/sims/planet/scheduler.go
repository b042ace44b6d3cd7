package planet

import (
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Stage identifies one barrier of the tick pipeline. Subsystems in the same
// stage run concurrently and must touch disjoint or delta-merged state;
// ordering across stages is the only synchronization primitive.
type Stage int

const (
	// StagePhysics runs the independent physics: climate, atmosphere,
	// hydrology, geology, magnetosphere, biome.
	StagePhysics Stage = iota
	// StageWeather runs subsystems that read stage-one outputs: weather,
	// civilization, disasters.
	StageWeather
	// StageBiology runs life, disease and fire on top of this tick's weather.
	StageBiology
	// StageFinal runs sequential finalizers (stabilizer, seismic/tsunami
	// application) that may override any field.
	StageFinal

	stageCount
)

// Subsystem is one unit of work within a stage.
type Subsystem interface {
	Name() string
	Tick(dt float64, tick int64, speed float64)
}

// SubsystemFunc adapts a function to the Subsystem interface for external
// collaborators that plug into the pipeline.
type SubsystemFunc struct {
	ID string
	Fn func(dt float64, tick int64, speed float64)
}

func (s SubsystemFunc) Name() string { return s.ID }

func (s SubsystemFunc) Tick(dt float64, tick int64, speed float64) {
	if s.Fn != nil {
		s.Fn(dt, tick, speed)
	}
}

// Scheduler executes the fixed stage pipeline. It never fails: leaf engines
// self-clamp, and planetary-scale drift is corrected by the stage-four
// stabilizer rather than surfaced as an error.
type Scheduler struct {
	w      *World
	stages [stageCount][]Subsystem
	log    zerolog.Logger

	// commits run sequentially at each stage barrier, publishing the next
	// buffers the stage's engines computed into (read-old / compute-new /
	// commit-new).
	commits [stageCount][]func()
}

// committer is implemented by engines that stage their writes in next
// buffers and publish them at the barrier.
type committer interface{ commit() }

// NewScheduler wires the core engines into their stages. Collaborator slots
// (geology, weather, civilization, disease, fire, seismic) are filled via
// Register.
func NewScheduler(w *World) *Scheduler {
	s := &Scheduler{w: w, log: zerolog.Nop()}
	s.Register(StagePhysics, w.climate)
	s.Register(StagePhysics, w.atmosphere)
	s.Register(StagePhysics, w.hydrology)
	s.Register(StageBiology, w.lifeEng)
	s.Register(StageFinal, w.stabilizer)
	return s
}

// Register appends a subsystem to a stage. Within a stage no ordering is
// guaranteed except in StageFinal, which runs members sequentially in
// registration order.
func (s *Scheduler) Register(stage Stage, sub Subsystem) {
	if stage < 0 || stage >= stageCount || sub == nil {
		return
	}
	s.stages[stage] = append(s.stages[stage], sub)
	if c, ok := sub.(committer); ok {
		s.commits[stage] = append(s.commits[stage], c.commit)
	}
}

// Advance runs one tick: three concurrent stages separated by barriers, then
// the sequential finalizers. A tick always runs to completion.
func (s *Scheduler) Advance(dt float64, tick int64, speed float64) {
	for stage := StagePhysics; stage < StageFinal; stage++ {
		subs := s.stages[stage]
		if len(subs) == 0 {
			continue
		}
		var g errgroup.Group
		for _, sub := range subs {
			sub := sub
			g.Go(func() error {
				sub.Tick(dt, tick, speed)
				return nil
			})
		}
		// Subsystems never return errors; Wait is purely the stage barrier.
		_ = g.Wait()
		for _, commit := range s.commits[stage] {
			commit()
		}
	}
	for _, sub := range s.stages[StageFinal] {
		sub.Tick(dt, tick, speed)
	}
}

// workers resolves the configured worker count.
func (w *World) workers() int {
	n := w.cfg.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > w.grid.H {
		n = w.grid.H
	}
	if n < 1 {
		n = 1
	}
	return n
}

// parallelRows fans a cell pass out over horizontal bands. The callback must
// only write cell-local state within its band (or into a per-band buffer
// selected by the band index).
func (w *World) parallelRows(fn func(band, y0, y1 int)) {
	n := w.workers()
	if n == 1 {
		fn(0, 0, w.grid.H)
		return
	}
	var g errgroup.Group
	per := (w.grid.H + n - 1) / n
	band := 0
	for y0 := 0; y0 < w.grid.H; y0 += per {
		y1 := y0 + per
		if y1 > w.grid.H {
			y1 = w.grid.H
		}
		b, lo, hi := band, y0, y1
		g.Go(func() error {
			fn(b, lo, hi)
			return nil
		})
		band++
	}
	_ = g.Wait()
}
