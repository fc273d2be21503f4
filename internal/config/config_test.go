package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Loop.Steps != DefaultSteps {
		t.Errorf("steps = %d, want %d", cfg.Loop.Steps, DefaultSteps)
	}
	if cfg.Loop.Perturbation != DefaultPerturbation {
		t.Errorf("perturbation = %v, want %v", cfg.Loop.Perturbation, DefaultPerturbation)
	}
	if cfg.Mirror.Rows <= 0 || cfg.Mirror.Cols <= 0 {
		t.Errorf("default grid %dx%d is not usable", cfg.Mirror.Rows, cfg.Mirror.Cols)
	}
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Loop.Steps = 25
	cfg.Loop.Gain = 0.003
	cfg.Disturbance.Shape = "astigmatism"
	cfg.Beam.Origin = [3]float64{0.1, -0.2, -3}

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPresets(t *testing.T) {
	if len(ListPresets()) == 0 {
		t.Fatal("no presets registered")
	}
	for name, cfg := range Presets {
		if cfg.Mirror.Rows <= 0 || cfg.Mirror.Cols <= 0 {
			t.Errorf("preset %s has unusable grid", name)
		}
		if cfg.Loop.Steps <= 0 {
			t.Errorf("preset %s has unusable step count", name)
		}
	}
	if GetPreset("no_such_preset") != nil {
		t.Error("unknown preset should be nil")
	}
	if GetPreset("tilted") == nil {
		t.Error("tilted preset missing")
	}
}
