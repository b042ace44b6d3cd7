package planet

import (
	"testing"
)

func TestPrecipitationStagedUntilCommit(t *testing.T) {
	world := blankWorld(6, 6)
	for i := range world.humidity {
		world.elevation[i] = 0.5
		world.humidity[i] = 0.9
	}

	world.climate.Tick(1, 0, 1)

	// Stage-one peers read precipitation concurrently; the tick must leave
	// the live field untouched until the barrier commit.
	for i, v := range world.met.precipitation {
		if v != 0 {
			t.Fatalf("cell %d: precipitation %f visible before commit", i, v)
		}
	}
	for i, v := range world.rainfall {
		if v != 0 {
			t.Fatalf("cell %d: rainfall %f visible before commit", i, v)
		}
	}

	world.climate.commit()

	idx := world.grid.Index(3, 3)
	if world.met.precipitation[idx] <= 0 {
		t.Fatal("saturated humidity must precipitate after commit")
	}
	if world.rainfall[idx] <= 0 {
		t.Fatal("saturated humidity must rain after commit")
	}
}

func TestTemperatureRelaxesTowardEquilibrium(t *testing.T) {
	world := blankWorld(6, 9)
	for i := range world.temperature {
		world.temperature[i] = 0
	}

	world.climate.Tick(1, 0, 1)
	world.climate.commit()

	equator := world.grid.Index(3, 4)
	pole := world.grid.Index(3, 0)
	if world.temperature[equator] <= world.temperature[pole] {
		t.Fatalf("equator %f must warm faster than pole %f",
			world.temperature[equator], world.temperature[pole])
	}
}

func TestIceHysteresis(t *testing.T) {
	world := blankWorld(4, 4)
	p := &world.cfg.Params
	idx := world.grid.Index(1, 1)

	// Hold the cell just above the freeze point: already-frozen cells stay
	// frozen inside the hysteresis band, thawed cells stay thawed. Zero
	// inertia pins the temperature for the check.
	world.temperature[idx] = p.FreezePoint + 1
	world.cfg.Params.ClimateInertia = 0

	world.ice[idx] = true
	world.climate.Tick(1, 0, 1)
	world.climate.commit()
	if !world.ice[idx] {
		t.Fatal("frozen cell inside the hysteresis band must stay frozen")
	}

	world.ice[idx] = false
	world.climate.Tick(1, 0, 1)
	world.climate.commit()
	if world.ice[idx] {
		t.Fatal("thawed cell inside the hysteresis band must stay thawed")
	}
}
