package planet

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planet.toml")
	body := []byte(`
width = 64
seed = 7

[params]
river_max_length = 123
equator_temp = 25.0
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Width != 64 {
		t.Fatalf("width = %d, want 64", cfg.Width)
	}
	if cfg.Seed != 7 {
		t.Fatalf("seed = %d, want 7", cfg.Seed)
	}
	if cfg.Params.RiverMaxLength != 123 {
		t.Fatalf("river_max_length = %d, want 123", cfg.Params.RiverMaxLength)
	}
	if cfg.Params.EquatorTemp != 25 {
		t.Fatalf("equator_temp = %f, want 25", cfg.Params.EquatorTemp)
	}

	// Keys absent from the file keep their defaults.
	def := DefaultConfig()
	if cfg.Height != def.Height {
		t.Fatalf("height = %d, want default %d", cfg.Height, def.Height)
	}
	if cfg.Params.GreenhouseCH4 != def.Params.GreenhouseCH4 {
		t.Fatal("untouched params must keep defaults")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("missing config file must fail")
	}
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":       "48",
		"h":       "32",
		"seed":    "-12",
		"workers": "2",
	})
	if cfg.Width != 48 || cfg.Height != 32 {
		t.Fatalf("dimensions %dx%d, want 48x32", cfg.Width, cfg.Height)
	}
	if cfg.Seed != -12 {
		t.Fatalf("seed = %d, want -12", cfg.Seed)
	}
	if cfg.Workers != 2 {
		t.Fatalf("workers = %d, want 2", cfg.Workers)
	}
}

func TestFromMapIgnoresGarbage(t *testing.T) {
	def := DefaultConfig()
	cfg := FromMap(map[string]string{
		"w":    "not-a-number",
		"h":    "-5",
		"seed": "",
	})
	if cfg.Width != def.Width || cfg.Height != def.Height || cfg.Seed != def.Seed {
		t.Fatal("unparseable values must fall back to defaults")
	}
	if got := FromMap(nil); got.Width != def.Width {
		t.Fatal("nil map must yield defaults")
	}
}
