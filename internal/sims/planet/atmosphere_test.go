package planet

import (
	"testing"
)

// blankWorld builds a world without Reset so tests control every field.
func blankWorld(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	cfg.Workers = 1
	return NewWithConfig(cfg)
}

func TestMixingMovesAdjacentValuesTogether(t *testing.T) {
	world := blankWorld(8, 8)
	hi := world.grid.Index(3, 4)
	lo := world.grid.Index(4, 4)
	world.oxygen[hi] = 80
	world.oxygen[lo] = 0

	world.atmosphere.mixPass(&world.oxygen, 1)

	if world.oxygen[hi] >= 80 {
		t.Fatalf("high cell must move strictly down, got %f", world.oxygen[hi])
	}
	if world.oxygen[lo] <= 0 {
		t.Fatalf("low cell must move strictly up, got %f", world.oxygen[lo])
	}
	if world.oxygen[hi] < world.oxygen[lo] {
		t.Fatalf("one pass must not overshoot: hi=%f lo=%f", world.oxygen[hi], world.oxygen[lo])
	}
}

func TestMixingRespectsRange(t *testing.T) {
	world := blankWorld(6, 6)
	for i := range world.oxygen {
		world.oxygen[i] = 100
		world.met.windX[i] = 2
	}
	world.atmosphere.mixPass(&world.oxygen, 1)
	for i, v := range world.oxygen {
		if v < 0 || v > 100 {
			t.Fatalf("cell %d: oxygen %f escaped [0,100] after mixing", i, v)
		}
	}
}

func TestChemistryClampsAtCeiling(t *testing.T) {
	world := blankWorld(4, 4)
	idx := world.grid.Index(1, 1)
	world.co2[idx] = 99.9
	world.geo.volcanism[idx] = 1
	world.elevation[idx] = 0.5

	world.atmosphere.chemistryPass(&world.co2, world.atmosphere.co2Delta, 5)

	if v := world.co2[idx]; v < 0 || v > 100 {
		t.Fatalf("co2 = %f escaped [0,100]", v)
	}
}

func TestGreenhouseVaporFeedback(t *testing.T) {
	world := blankWorld(4, 4)
	humid := world.grid.Index(1, 1)
	humidWarm := world.grid.Index(2, 1)
	world.humidity[humid] = 0.9
	world.temperature[humid] = 5
	world.humidity[humidWarm] = 0.9
	world.temperature[humidWarm] = 25

	world.atmosphere.greenhousePass(1)
	world.atmosphere.commit()

	dry := world.greenhouse[world.grid.Index(0, 0)]
	if world.greenhouse[humid] <= dry {
		t.Fatal("humid cell must trap more heat than a dry one")
	}
	if world.greenhouse[humidWarm] <= world.greenhouse[humid] {
		t.Fatal("warmth must amplify the vapor feedback")
	}
	for i, v := range world.greenhouse {
		if v < 0 || v > 5 {
			t.Fatalf("cell %d: greenhouse %f escaped [0,5]", i, v)
		}
	}
}

func TestPhotosynthesisRaisesOxygen(t *testing.T) {
	world := blankWorld(4, 4)
	idx := world.grid.Index(1, 1)
	world.elevation[idx] = 0.5
	world.life[idx] = LifePlant
	world.biomass[idx] = 1
	world.oxygen[idx] = 10
	before := world.oxygen[idx]

	world.atmosphere.chemistryPass(&world.oxygen, world.atmosphere.oxygenDelta, 1)

	if world.oxygen[idx] <= before {
		t.Fatalf("plant cell oxygen must rise, got %f -> %f", before, world.oxygen[idx])
	}
}
