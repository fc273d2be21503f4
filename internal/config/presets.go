package config

import "sort"

// Presets are named calibration scenarios. Each starts from DefaultConfig
// geometry unless it overrides it.
var Presets = map[string]*Config{
	"flat": {
		Mirror:      MirrorConfig{Rows: 5, Cols: 5, Pitch: 0.2},
		Beam:        BeamConfig{Origin: [3]float64{0, 0, -2}, Direction: [3]float64{0, 0, 1}},
		Detector:    DetectorConfig{Center: [3]float64{0, 0, -1}, Normal: [3]float64{0, 0, 1}, HalfSize: 2.0},
		Disturbance: DisturbanceConfig{Shape: "none"},
		Loop:        LoopConfig{Steps: 10, Perturbation: 0.01},
	},
	"tilted": {
		Mirror:      MirrorConfig{Rows: 5, Cols: 5, Pitch: 0.2},
		Beam:        BeamConfig{Origin: [3]float64{0, 0, -2}, Direction: [3]float64{0, 0, 1}},
		Detector:    DetectorConfig{Center: [3]float64{0, 0, -1}, Normal: [3]float64{0, 0, 1}, HalfSize: 2.0},
		Disturbance: DisturbanceConfig{Shape: "tilt", Amplitude: 0.005},
		Loop:        LoopConfig{Steps: 10, Perturbation: 0.01, Gain: 0.002},
	},
	"bumped": {
		Mirror:      MirrorConfig{Rows: 7, Cols: 7, Pitch: 0.15},
		Beam:        BeamConfig{Origin: [3]float64{0.1, 0, -2}, Direction: [3]float64{0, 0, 1}},
		Detector:    DetectorConfig{Center: [3]float64{0, 0, -1}, Normal: [3]float64{0, 0, 1}, HalfSize: 2.0},
		Disturbance: DisturbanceConfig{Shape: "bump", Amplitude: 0.01},
		Loop:        LoopConfig{Steps: 15, Perturbation: 0.01, Gain: 0.002},
	},
	"astigmatic": {
		Mirror:      MirrorConfig{Rows: 7, Cols: 7, Pitch: 0.15},
		Beam:        BeamConfig{Origin: [3]float64{0.05, 0.05, -2}, Direction: [3]float64{0, 0, 1}},
		Detector:    DetectorConfig{Center: [3]float64{0, 0, -1}, Normal: [3]float64{0, 0, 1}, HalfSize: 2.0},
		Disturbance: DisturbanceConfig{Shape: "astigmatism", Amplitude: 0.008},
		Loop:        LoopConfig{Steps: 20, Perturbation: 0.01, Gain: 0.001},
	},
}

// GetPreset returns a copy of the named preset, or nil when unknown. Copying
// keeps callers' flag overrides from leaking into the shared table.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPresets returns the available preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
