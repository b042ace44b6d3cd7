package planet

import (
	"math"
	"testing"
)

// temperateLand fills the world with mild, uniform land conditions and snaps
// the life-support profile to them.
func temperateLand(world *World) {
	for i := range world.elevation {
		world.elevation[i] = 0.5
		world.temperature[i] = 20
		world.rainfall[i] = 0.6
		world.geo.soilMoisture[i] = 0.4
		world.oxygen[i] = 20
	}
	world.lifeEng.updateProfile()
}

func TestBacteriaGrowInComfortableConditions(t *testing.T) {
	world := blankWorld(8, 8)
	temperateLand(world)
	idx := world.grid.Index(3, 3)
	world.life[idx] = LifeBacteria
	world.biomass[idx] = 0.5

	world.lifeEng.kineticsPass(1, 100)

	if b := world.biomass[idx]; b <= 0.5 || b > 1 {
		t.Fatalf("comfortable bacteria biomass = %f, want growth within [0,1]", b)
	}
	if world.life[idx] != LifeBacteria {
		t.Fatalf("form changed to %s during plain kinetics", world.life[idx])
	}
}

func TestProfileBlendsTowardObservations(t *testing.T) {
	world := blankWorld(6, 6)
	for i := range world.oxygen {
		world.oxygen[i] = 10
	}
	world.lifeEng.updateProfile()
	if m := world.lifeEng.profile.Oxygen.Mean; m != 10 {
		t.Fatalf("first observation must snap, mean = %f", m)
	}

	for i := range world.oxygen {
		world.oxygen[i] = 30
	}
	world.lifeEng.updateProfile()

	wantMean := 10 + (30-10)*world.cfg.Params.ProfileBlend
	if m := world.lifeEng.profile.Oxygen.Mean; math.Abs(m-wantMean) > 1e-9 {
		t.Fatalf("blended mean = %f, want %f", m, wantMean)
	}
	wantMax := 10 + (30-10)*world.cfg.Params.ExtremeRelax
	if m := world.lifeEng.profile.Oxygen.Max; math.Abs(m-wantMax) > 1e-9 {
		t.Fatalf("relaxed max = %f, want %f", m, wantMax)
	}
}

func TestHeatKillsPlantsBeforeBacteria(t *testing.T) {
	world := blankWorld(8, 8)
	temperateLand(world)

	plant := world.grid.Index(2, 2)
	bact := world.grid.Index(5, 5)
	world.life[plant] = LifePlant
	world.biomass[plant] = 0.5
	world.life[bact] = LifeBacteria
	world.biomass[bact] = 0.5
	world.temperature[plant] = 50
	world.temperature[bact] = 50

	for i := 0; i < 10; i++ {
		world.lifeEng.kineticsPass(1, 100)
	}

	if world.life[plant] != LifeNone {
		t.Fatalf("plant at 50C with a 20C profile must die, biomass %f", world.biomass[plant])
	}
	if world.life[bact] != LifeBacteria {
		t.Fatal("bacteria ride out heat their wide margin covers")
	}
	if world.biomass[bact] <= 0.5 {
		t.Fatalf("surviving bacteria must keep growing, biomass %f", world.biomass[bact])
	}
}

func TestExtremeHeatCullsNonBacteria(t *testing.T) {
	world := blankWorld(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			idx := world.grid.Index(x, y)
			if y < 4 {
				world.elevation[idx] = -0.5
			} else {
				world.elevation[idx] = 0.5
			}
			world.temperature[idx] = 20
			world.rainfall[idx] = 0.6
			world.geo.soilMoisture[idx] = 0.4
			world.oxygen[idx] = 20
		}
	}
	world.lifeEng.updateProfile()

	// One colony per habitat-compatible form, spaced so no grazer feeds.
	const start = 0.5
	cells := map[int]LifeForm{
		world.grid.Index(1, 1): LifeAlgae,
		world.grid.Index(5, 1): LifeFish,
		world.grid.Index(1, 5): LifePlant,
		world.grid.Index(4, 5): LifeSimpleAnimal,
		world.grid.Index(6, 5): LifeMammal,
		world.grid.Index(1, 7): LifeBacteria,
	}
	bact := world.grid.Index(1, 7)
	for idx, form := range cells {
		world.life[idx] = form
		world.biomass[idx] = start
	}

	for i := range world.temperature {
		world.temperature[i] = 90
	}
	world.lifeEng.kineticsPass(0.25, 100)

	for idx, form := range cells {
		if form == LifeBacteria {
			continue
		}
		if world.biomass[idx] >= start {
			t.Fatalf("%s at 90C against a 20C profile must lose biomass, got %f", form, world.biomass[idx])
		}
		if world.biomass[idx] >= world.biomass[bact] {
			t.Fatalf("%s (biomass %f) must fare worse than bacteria (%f)",
				form, world.biomass[idx], world.biomass[bact])
		}
	}
	if world.biomass[bact] >= start {
		t.Fatal("even bacteria run hot at 90C")
	}
	if world.biomass[bact] <= 0 {
		t.Fatal("bacteria must outlast a single hot tick")
	}
}

func TestGracePeriodSuppressesDeath(t *testing.T) {
	world := blankWorld(8, 8)
	temperateLand(world)
	idx := world.grid.Index(3, 3)
	world.life[idx] = LifePlant
	world.biomass[idx] = 0.5
	world.temperature[idx] = 50

	world.lifeEng.armGrace(0)
	world.lifeEng.kineticsPass(1, 10)

	if b := world.biomass[idx]; b <= 0.5 {
		t.Fatalf("grace period must suppress death, biomass fell to %f", b)
	}

	world.lifeEng.kineticsPass(1, world.lifeEng.graceUntil+1)
	if world.biomass[idx] >= 1 {
		t.Fatal("death must resume once the grace period lapses")
	}
}

func TestEvolutionPromotesInPlace(t *testing.T) {
	world := blankWorld(8, 8)
	temperateLand(world)
	world.cfg.Params.EvolveChance = 1
	idx := world.grid.Index(3, 3)
	world.life[idx] = LifePlant
	world.biomass[idx] = 0.9
	world.evolution[idx] = 1.5
	world.oxygen[idx] = 50

	world.lifeEng.evolvePass(1)

	if world.life[idx] != LifeSimpleAnimal {
		t.Fatalf("thriving oxygenated plant must beget %s, got %s", LifeSimpleAnimal, world.life[idx])
	}
	if world.evolution[idx] != 0 {
		t.Fatal("promotion must reset the evolution accumulator")
	}
}

func TestEvolutionRelocatesAcrossHabitats(t *testing.T) {
	world := blankWorld(8, 8)
	temperateLand(world)
	world.cfg.Params.EvolveChance = 1

	src := world.grid.Index(3, 3)
	shore := world.grid.Index(4, 3)
	world.elevation[shore] = -0.5 // the only water neighbor
	world.life[src] = LifeBacteria
	world.biomass[src] = 0.9
	world.evolution[src] = 1.5

	world.lifeEng.evolvePass(1)

	if world.life[src] != LifeBacteria {
		t.Fatal("relocating promotion must leave the parent in place")
	}
	if world.life[shore] != LifeAlgae {
		t.Fatalf("algae must appear in the adjacent water cell, got %s", world.life[shore])
	}
	if world.biomass[shore] <= 0 {
		t.Fatal("relocated colony must start with seed biomass")
	}
	if world.evolution[src] != 0 {
		t.Fatal("relocation must reset the parent accumulator")
	}
}

func TestEvolutionGatedByOxygen(t *testing.T) {
	world := blankWorld(8, 8)
	temperateLand(world)
	world.cfg.Params.EvolveChance = 1
	idx := world.grid.Index(3, 3)
	world.life[idx] = LifePlant
	world.biomass[idx] = 0.9
	world.evolution[idx] = 1.5
	world.oxygen[idx] = 1 // far below the animal gate

	world.lifeEng.evolvePass(1)

	if world.life[idx] != LifePlant {
		t.Fatal("anoxic plant must not beget animals")
	}
	if world.evolution[idx] != 0 {
		t.Fatal("failed gate must reset the accumulator")
	}
}

func TestDispersalColonizesSurvivableNeighbors(t *testing.T) {
	world := blankWorld(6, 6)
	temperateLand(world)
	world.cfg.Params.DispersalTrials = 2000
	idx := world.grid.Index(3, 3)
	world.life[idx] = LifePlant
	world.biomass[idx] = 1

	world.lifeEng.dispersalPass()

	populated := 0
	for i := range world.life {
		if world.life[i] != LifeNone {
			populated++
		}
	}
	if populated < 2 {
		t.Fatal("a thriving plant with empty mild neighbors must spread")
	}
	for i, form := range world.life {
		if form != LifeNone && form != LifePlant {
			t.Fatalf("cell %d: dispersal invented form %s", i, form)
		}
	}
}

func TestEventDamageRespectsResistance(t *testing.T) {
	world := blankWorld(10, 10)
	temperateLand(world)
	bact := world.grid.Index(5, 5)
	plant := world.grid.Index(6, 5)
	world.life[bact] = LifeBacteria
	world.biomass[bact] = 0.8
	world.life[plant] = LifePlant
	world.biomass[plant] = 0.8

	world.SetStorms([]Storm{{X: 5, Y: 5, Intensity: 4, Category: 2}})
	world.lifeEng.eventPass(1)

	bactLoss := 0.8 - world.biomass[bact]
	plantLoss := 0.8 - world.biomass[plant]
	if plantLoss <= 0 {
		t.Fatal("storm must damage the plant cell")
	}
	if bactLoss >= plantLoss {
		t.Fatalf("resistant bacteria lost %f, fragile plant lost %f", bactLoss, plantLoss)
	}
}

func TestReseedAfterPlanetaryCollapse(t *testing.T) {
	world := blankWorld(10, 10)
	for i := range world.elevation {
		world.elevation[i] = 0.5
		world.temperature[i] = 15
	}

	interval := world.cfg.Params.ReseedInterval
	world.lifeEng.reseedPass(interval)

	populated := 0
	for i, form := range world.life {
		if form == LifeNone {
			continue
		}
		populated++
		if form != LifeBacteria {
			t.Fatalf("cell %d: anoxic reseed must plant bacteria, got %s", i, form)
		}
		if world.biomass[i] <= 0 {
			t.Fatalf("cell %d: reseeded colony has no biomass", i)
		}
	}
	if populated == 0 {
		t.Fatal("a dead planet must be reseeded")
	}
	if world.lifeEng.graceUntil != interval+world.cfg.Params.GraceTicks {
		t.Fatalf("reseed must arm the grace period, graceUntil = %d", world.lifeEng.graceUntil)
	}
}

func TestReseedSkipsPopulatedPlanet(t *testing.T) {
	world := blankWorld(6, 6)
	temperateLand(world)
	world.life[world.grid.Index(2, 2)] = LifePlant
	world.biomass[world.grid.Index(2, 2)] = 0.5

	world.lifeEng.reseedPass(world.cfg.Params.ReseedInterval)

	populated := 0
	for _, form := range world.life {
		if form != LifeNone {
			populated++
		}
	}
	if populated != 1 {
		t.Fatalf("populated planet must not be reseeded, %d cells alive", populated)
	}
}
