package planet

import (
	"testing"

	icore "planetsim/internal/core"
)

var (
	_ icore.FloatParameterSetter = (*World)(nil)
	_ icore.IntParameterSetter   = (*World)(nil)
)

func TestParametersListsEveryGroup(t *testing.T) {
	world := blankWorld(4, 4)
	snap := world.Parameters()

	want := map[string]bool{
		"World": false, "Atmosphere": false, "Hydrology": false, "Life": false,
	}
	for _, g := range snap.Groups {
		if _, ok := want[g.Name]; !ok {
			t.Fatalf("unexpected parameter group %q", g.Name)
		}
		want[g.Name] = true
		if len(g.Params) == 0 {
			t.Fatalf("group %q lists no parameters", g.Name)
		}
		for _, p := range g.Params {
			if p.Key == "" || p.Label == "" || p.Value == "" {
				t.Fatalf("group %q carries an incomplete parameter: %+v", g.Name, p)
			}
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("group %q missing from snapshot", name)
		}
	}
}

func TestSetFloatParameterClampsAndRejects(t *testing.T) {
	cases := []struct {
		key  string
		in   float64
		want float64
	}{
		{"river_spawn_chance", 0.5, 0.5},
		{"river_spawn_chance", 2, 1},
		{"reseed_threshold", -1, 0},
		{"tide_amplitude", 0.4, 0.4},
		{"flood_transfer", 1.5, 1},
		{"profile_blend", 0.2, 0.2},
		{"extreme_relax", -0.5, 0},
	}
	for _, tc := range cases {
		world := blankWorld(4, 4)
		if !world.SetFloatParameter(tc.key, tc.in) {
			t.Fatalf("%s: settable key rejected", tc.key)
		}
		got := map[string]float64{
			"river_spawn_chance": world.cfg.Params.RiverSpawnChance,
			"reseed_threshold":   world.cfg.Params.ReseedThreshold,
			"tide_amplitude":     world.cfg.Params.TideAmplitude,
			"flood_transfer":     world.cfg.Params.FloodTransfer,
			"profile_blend":      world.cfg.Params.ProfileBlend,
			"extreme_relax":      world.cfg.Params.ExtremeRelax,
		}[tc.key]
		if got != tc.want {
			t.Fatalf("%s: set %f, stored %f, want %f", tc.key, tc.in, got, tc.want)
		}
	}

	world := blankWorld(4, 4)
	if world.SetFloatParameter("no_such_key", 1) {
		t.Fatal("unknown float key must be rejected")
	}
}

func TestSetIntParameterClampsAndRejects(t *testing.T) {
	world := blankWorld(4, 4)

	if !world.SetIntParameter("dispersal_trials", -5) {
		t.Fatal("dispersal_trials must be settable")
	}
	if world.cfg.Params.DispersalTrials != 0 {
		t.Fatalf("negative trial count must clamp to 0, got %d", world.cfg.Params.DispersalTrials)
	}

	if !world.SetIntParameter("flood_passes", 0) {
		t.Fatal("flood_passes must be settable")
	}
	if world.cfg.Params.FloodPasses != 1 {
		t.Fatalf("flood passes must clamp to at least 1, got %d", world.cfg.Params.FloodPasses)
	}

	if world.SetIntParameter("no_such_key", 1) {
		t.Fatal("unknown int key must be rejected")
	}
}

func TestSetParameterReflectsInSnapshot(t *testing.T) {
	world := blankWorld(4, 4)
	world.SetFloatParameter("river_spawn_chance", 0.25)

	for _, g := range world.Parameters().Groups {
		for _, p := range g.Params {
			if p.Key == "river_spawn_chance" {
				if p.Value != "0.25" {
					t.Fatalf("snapshot shows %q, want \"0.25\"", p.Value)
				}
				return
			}
		}
	}
	t.Fatal("river_spawn_chance missing from snapshot")
}
