package planet

import (
	"fmt"
	"sort"

	icore "planetsim/internal/core"
)

// RiverState is a river's persisted form.
type RiverState struct {
	ID     int32
	Source icore.Point
	Mouth  icore.Point
	Path   []icore.Point
	Volume float64
}

// Snapshot is the flat enumeration of all simulation state consumed by the
// external save collaborator. Restore(Snapshot()) reproduces identical field
// values; the collaborator owns the actual encoding.
type Snapshot struct {
	Width  int
	Height int
	Tick   int64

	Elevation    []float64
	Temperature  []float64
	Rainfall     []float64
	Humidity     []float64
	Oxygen       []float64
	CO2          []float64
	Methane      []float64
	NitrousOxide []float64
	Greenhouse   []float64
	Biomass      []float64
	Evolution    []float64
	Life         []LifeForm
	Ice          []bool

	Plate        []int16
	Volcanism    []float64
	Erosion      []float64
	Sediment     []float64
	SoilMoisture []float64
	FlowDir      []int32
	FlowVolume   []float64
	AccumFlow    []float64
	Salinity     []float64
	WaterDensity []float64
	FloodLevel   []float64
	RiverID      []int32

	WindX         []float64
	WindY         []float64
	Pressure      []float64
	CloudCover    []float64
	Precipitation []float64

	Rivers      []RiverState
	NextRiverID int32

	Profile            LifeSupportProfile
	ProfileInitialized bool
	GraceUntil         int64
}

func cloneF(src []float64) []float64 { return append([]float64(nil), src...) }

// Snapshot captures the complete simulation state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Width:  w.grid.W,
		Height: w.grid.H,
		Tick:   w.tick,

		Elevation:    cloneF(w.elevation),
		Temperature:  cloneF(w.temperature),
		Rainfall:     cloneF(w.rainfall),
		Humidity:     cloneF(w.humidity),
		Oxygen:       cloneF(w.oxygen),
		CO2:          cloneF(w.co2),
		Methane:      cloneF(w.methane),
		NitrousOxide: cloneF(w.n2o),
		Greenhouse:   cloneF(w.greenhouse),
		Biomass:      cloneF(w.biomass),
		Evolution:    cloneF(w.evolution),
		Life:         append([]LifeForm(nil), w.life...),
		Ice:          append([]bool(nil), w.ice...),

		Plate:        append([]int16(nil), w.geo.plate...),
		Volcanism:    cloneF(w.geo.volcanism),
		Erosion:      cloneF(w.geo.erosion),
		Sediment:     cloneF(w.geo.sediment),
		SoilMoisture: cloneF(w.geo.soilMoisture),
		FlowDir:      append([]int32(nil), w.geo.flowDir...),
		FlowVolume:   cloneF(w.geo.flowVolume),
		AccumFlow:    cloneF(w.geo.accumFlow),
		Salinity:     cloneF(w.geo.salinity),
		WaterDensity: cloneF(w.geo.waterDensity),
		FloodLevel:   cloneF(w.geo.floodLevel),
		RiverID:      append([]int32(nil), w.geo.riverID...),

		WindX:         cloneF(w.met.windX),
		WindY:         cloneF(w.met.windY),
		Pressure:      cloneF(w.met.pressure),
		CloudCover:    cloneF(w.met.cloudCover),
		Precipitation: cloneF(w.met.precipitation),

		NextRiverID: w.nextRiverID,

		Profile:            w.lifeEng.profile,
		ProfileInitialized: w.lifeEng.initialized,
		GraceUntil:         w.lifeEng.graceUntil,
	}

	s.Rivers = make([]RiverState, 0, len(w.rivers))
	for _, r := range w.rivers {
		s.Rivers = append(s.Rivers, RiverState{
			ID:     r.ID,
			Source: r.Source,
			Mouth:  r.Mouth,
			Path:   append([]icore.Point(nil), r.Path...),
			Volume: r.Volume,
		})
	}
	sort.Slice(s.Rivers, func(a, b int) bool { return s.Rivers[a].ID < s.Rivers[b].ID })
	return s
}

// Restore replaces the world state with the snapshot's. The grid dimensions
// must match; that is the only hard failure this core can produce.
func (w *World) Restore(s Snapshot) error {
	if s.Width != w.grid.W || s.Height != w.grid.H {
		return fmt.Errorf("restore planet: snapshot is %dx%d, world is %dx%d",
			s.Width, s.Height, w.grid.W, w.grid.H)
	}
	w.tick = s.Tick

	copy(w.elevation, s.Elevation)
	copy(w.temperature, s.Temperature)
	copy(w.rainfall, s.Rainfall)
	copy(w.humidity, s.Humidity)
	copy(w.oxygen, s.Oxygen)
	copy(w.co2, s.CO2)
	copy(w.methane, s.Methane)
	copy(w.n2o, s.NitrousOxide)
	copy(w.greenhouse, s.Greenhouse)
	copy(w.biomass, s.Biomass)
	copy(w.evolution, s.Evolution)
	copy(w.life, s.Life)
	copy(w.ice, s.Ice)

	copy(w.geo.plate, s.Plate)
	copy(w.geo.volcanism, s.Volcanism)
	copy(w.geo.erosion, s.Erosion)
	copy(w.geo.sediment, s.Sediment)
	copy(w.geo.soilMoisture, s.SoilMoisture)
	copy(w.geo.flowDir, s.FlowDir)
	copy(w.geo.flowVolume, s.FlowVolume)
	copy(w.geo.accumFlow, s.AccumFlow)
	copy(w.geo.salinity, s.Salinity)
	copy(w.geo.waterDensity, s.WaterDensity)
	copy(w.geo.floodLevel, s.FloodLevel)
	copy(w.geo.riverID, s.RiverID)

	copy(w.met.windX, s.WindX)
	copy(w.met.windY, s.WindY)
	copy(w.met.pressure, s.Pressure)
	copy(w.met.cloudCover, s.CloudCover)
	copy(w.met.precipitation, s.Precipitation)

	w.rivers = make(map[int32]*River, len(s.Rivers))
	for _, r := range s.Rivers {
		w.rivers[r.ID] = &River{
			ID:     r.ID,
			Source: r.Source,
			Mouth:  r.Mouth,
			Path:   append([]icore.Point(nil), r.Path...),
			Volume: r.Volume,
		}
	}
	w.nextRiverID = s.NextRiverID

	w.lifeEng.profile = s.Profile
	w.lifeEng.initialized = s.ProfileInitialized
	w.lifeEng.graceUntil = s.GraceUntil

	w.updateDisplay()
	return nil
}
