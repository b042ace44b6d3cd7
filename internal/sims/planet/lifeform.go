package planet

import "planetsim/internal/core"

// LifeForm enumerates the evolutionary chain. The order is fixed; a cell may
// only ever advance to the next value in the chain.
type LifeForm uint8

const (
	LifeNone LifeForm = iota
	LifeBacteria
	LifeAlgae
	LifePlant
	LifeSimpleAnimal
	LifeFish
	LifeAmphibian
	LifeReptile
	LifeDinosaur
	LifeMammal
	LifeComplexAnimal
	LifeIntelligence
	LifeCivilization

	lifeFormCount
)

var lifeFormNames = [lifeFormCount]string{
	"none", "bacteria", "algae", "plant", "simple-animal", "fish",
	"amphibian", "reptile", "dinosaur", "mammal", "complex-animal",
	"intelligence", "civilization",
}

func (l LifeForm) String() string {
	if l >= lifeFormCount {
		return "unknown"
	}
	return lifeFormNames[l]
}

// lifeTraits describes one life form's kinetics. Adding a life form means
// adding a table entry, nothing else.
type lifeTraits struct {
	// habitat
	land  bool
	water bool

	// producer forms feed grazers via neighbor biomass sampling.
	producer bool
	grazer   bool

	// tempMargin widens the comfort window beyond the profile's band.
	tempMargin float64

	// evolveRate is accumulated per tick while biomass > evolveBiomassFloor.
	evolveRate float64

	// eventResistance scales damage from eruptions/quakes/storms down.
	eventResistance float64

	// growth returns the raw growth rate for a cell holding this form.
	growth func(e *LifeEngine, idx int) float64

	// canEvolve gates promotion to the next chain entry on local ecology.
	canEvolve func(e *LifeEngine, idx int) bool
}

const evolveBiomassFloor = 0.5

// lifeTable maps each form to its strategy. LifeNone and LifeCivilization
// have no kinetics here: empty cells do not grow and civilization belongs to
// the civilization collaborator.
var lifeTable [lifeFormCount]lifeTraits

func init() {
	lifeTable = [lifeFormCount]lifeTraits{
		LifeBacteria: {
			land: true, water: true, producer: true,
			tempMargin:      0, // margin added separately via BacteriaTempMargin
			evolveRate:      0.02,
			eventResistance: 0.9,
			growth:          growthConstant(0.08),
			canEvolve:       evolveAlways,
		},
		LifeAlgae: {
			water: true, producer: true,
			evolveRate:      0.015,
			eventResistance: 0.3,
			growth:          growthAlgae,
			canEvolve:       evolveNeedsOxygen(paramPlantGate),
		},
		LifePlant: {
			land: true, producer: true,
			evolveRate:      0.012,
			eventResistance: 0.2,
			growth:          growthPlant,
			canEvolve:       evolveNeedsLandOxygen,
		},
		LifeSimpleAnimal: {
			land: true, water: true, grazer: true,
			evolveRate:      0.01,
			eventResistance: 0.1,
			growth:          growthGrazer(0.6),
			canEvolve:       evolveAlways,
		},
		LifeFish: {
			water: true, grazer: true,
			evolveRate:      0.01,
			eventResistance: 0.2,
			growth:          growthGrazer(0.7),
			canEvolve:       evolveNearLand,
		},
		LifeAmphibian: {
			land: true, water: true, grazer: true,
			evolveRate:      0.008,
			eventResistance: 0.1,
			growth:          growthGrazer(0.6),
			canEvolve:       evolveNeedsOxygen(paramAnimalGate),
		},
		LifeReptile: {
			land: true, grazer: true,
			evolveRate:      0.008,
			eventResistance: 0.1,
			growth:          growthGrazer(0.65),
			canEvolve:       evolveAlways,
		},
		LifeDinosaur: {
			land: true, grazer: true,
			evolveRate:      0.006,
			eventResistance: 0.05,
			growth:          growthGrazer(0.8),
			canEvolve:       evolveAlways,
		},
		LifeMammal: {
			land: true, grazer: true,
			tempMargin:      8,
			evolveRate:      0.006,
			eventResistance: 0.15,
			growth:          growthGrazer(0.7),
			canEvolve:       evolveAlways,
		},
		LifeComplexAnimal: {
			land: true, water: true, grazer: true,
			tempMargin:      5,
			evolveRate:      0.005,
			eventResistance: 0.15,
			growth:          growthGrazer(0.75),
			canEvolve:       evolveNeedsOxygen(paramAnimalGate),
		},
		LifeIntelligence: {
			land: true, grazer: true,
			tempMargin:      12,
			evolveRate:      0, // civilization is founded externally, not evolved
			eventResistance: 0.25,
			growth:          growthGrazer(0.6),
			canEvolve:       evolveNever,
		},
		LifeCivilization: {
			land: true, grazer: true,
			tempMargin:      15,
			eventResistance: 0.3,
			growth:          growthConstant(0.02),
			canEvolve:       evolveNever,
		},
	}
}

type gateParam uint8

const (
	paramAlgaeGate gateParam = iota
	paramPlantGate
	paramAnimalGate
)

func (p gateParam) value(cfg *Params) float64 {
	switch p {
	case paramAlgaeGate:
		return cfg.AlgaeOxygenGate
	case paramPlantGate:
		return cfg.PlantOxygenGate
	default:
		return cfg.AnimalOxygenGate
	}
}

func growthConstant(rate float64) func(*LifeEngine, int) float64 {
	return func(*LifeEngine, int) float64 { return rate }
}

func growthAlgae(e *LifeEngine, idx int) float64 {
	w := e.w
	// CO2 fertilization, saturating.
	fert := core.Clamp01(w.co2[idx] / 30)
	light := core.Clamp01(1 - w.met.cloudCover[idx]*0.5)
	return 0.05 + 0.1*fert*light
}

func growthPlant(e *LifeEngine, idx int) float64 {
	w := e.w
	moisture := core.Clamp01(w.rainfall[idx] + 0.5*w.geo.soilMoisture[idx])
	fert := core.Clamp01(w.co2[idx] / 30)
	suit := e.landSuitability(idx)
	return (0.04 + 0.12*moisture + 0.06*fert) * suit
}

// growthGrazer samples producer biomass in the Moore neighborhood; predators
// starve without local producers.
func growthGrazer(efficiency float64) func(*LifeEngine, int) float64 {
	return func(e *LifeEngine, idx int) float64 {
		w := e.w
		x, y := w.grid.Coords(idx)
		food := 0.0
		for _, off := range core.MooreOffsets {
			n, ok := w.grid.Neighbor(x, y, off[0], off[1])
			if !ok {
				continue
			}
			if lifeTable[w.life[n]].producer {
				food += w.biomass[n]
			}
		}
		if lifeTable[w.life[idx]].producer {
			food += w.biomass[idx]
		}
		return efficiency * 0.04 * core.Clamp01(food/2)
	}
}

func evolveAlways(*LifeEngine, int) bool { return true }
func evolveNever(*LifeEngine, int) bool  { return false }

func evolveNeedsOxygen(gate gateParam) func(*LifeEngine, int) bool {
	return func(e *LifeEngine, idx int) bool {
		return e.w.oxygen[idx] >= gate.value(&e.w.cfg.Params)
	}
}

// evolveNeedsLandOxygen encodes the plant→animal prerequisite: land plus a
// breathable atmosphere.
func evolveNeedsLandOxygen(e *LifeEngine, idx int) bool {
	return e.w.elevation[idx] > 0 && e.w.oxygen[idx] >= e.w.cfg.Params.AnimalOxygenGate
}

// evolveNearLand lets fish leave the water only when a land cell is adjacent.
func evolveNearLand(e *LifeEngine, idx int) bool {
	x, y := e.w.grid.Coords(idx)
	for _, off := range core.MooreOffsets {
		n, ok := e.w.grid.Neighbor(x, y, off[0], off[1])
		if ok && e.w.elevation[n] > 0 {
			return true
		}
	}
	return false
}
