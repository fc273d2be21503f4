package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps        = 10
	DefaultPerturbation = 0.01
	DefaultGridRows     = 5
	DefaultGridCols     = 5
	DefaultPitch        = 0.2
	DefaultHalfSize     = 2.0
	DefaultAmplitude    = 0.005
)

type Config struct {
	Mirror      MirrorConfig      `yaml:"mirror"`
	Beam        BeamConfig        `yaml:"beam"`
	Detector    DetectorConfig    `yaml:"detector"`
	Disturbance DisturbanceConfig `yaml:"disturbance"`
	Loop        LoopConfig        `yaml:"loop"`
}

type MirrorConfig struct {
	Rows  int     `yaml:"rows"`
	Cols  int     `yaml:"cols"`
	Pitch float64 `yaml:"pitch"`
}

type BeamConfig struct {
	Origin    [3]float64 `yaml:"origin"`
	Direction [3]float64 `yaml:"direction"`
}

type DetectorConfig struct {
	Center   [3]float64 `yaml:"center"`
	Normal   [3]float64 `yaml:"normal"`
	HalfSize float64    `yaml:"half_size"`
}

// DisturbanceConfig names the deformation applied to the mirror before the
// loop runs; the calibration's job is to undo it.
type DisturbanceConfig struct {
	Shape     string  `yaml:"shape"`
	Amplitude float64 `yaml:"amplitude"`
}

type LoopConfig struct {
	Steps         int        `yaml:"steps"`
	Gain          float64    `yaml:"gain"` // 0 selects 1/steps
	Perturbation  float64    `yaml:"perturbation"`
	Target        [3]float64 `yaml:"target"`
	ConvergeBelow float64    `yaml:"converge_below"`
	DivergeAbove  float64    `yaml:"diverge_above"`
}

func DefaultConfig() *Config {
	return &Config{
		Mirror: MirrorConfig{
			Rows:  DefaultGridRows,
			Cols:  DefaultGridCols,
			Pitch: DefaultPitch,
		},
		Beam: BeamConfig{
			Origin:    [3]float64{0, 0, -2},
			Direction: [3]float64{0, 0, 1},
		},
		Detector: DetectorConfig{
			Center:   [3]float64{0, 0, -1},
			Normal:   [3]float64{0, 0, 1},
			HalfSize: DefaultHalfSize,
		},
		Disturbance: DisturbanceConfig{
			Shape:     "tilt",
			Amplitude: DefaultAmplitude,
		},
		Loop: LoopConfig{
			Steps:        DefaultSteps,
			Perturbation: DefaultPerturbation,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
