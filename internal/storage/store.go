// Package storage persists calibration run artifacts: metadata plus the
// per-step trace, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Scenario     string             `json:"scenario"`
	Timestamp    time.Time          `json:"timestamp"`
	Actuators    int                `json:"actuators"`
	Steps        int                `json:"steps"`
	Gain         float64            `json:"gain"`
	Perturbation float64            `json:"perturbation"`
	Disturbance  string             `json:"disturbance"`
	Stop         string             `json:"stop"`
	Metrics      map[string]float64 `json:"metrics"`
}

// stepHeader is the column layout of steps.csv.
var stepHeader = []string{"step", "wx", "wy", "wz", "ex", "ey", "ez", "err_norm", "max_adjustment"}

// Save writes one run directory with metadata.json and steps.csv, returning
// the generated run ID.
func (s *Store) Save(scenario string, actuators int, steps int, gain, perturbation float64, disturbance string, result *calib.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Scenario:     scenario,
		Timestamp:    time.Now(),
		Actuators:    actuators,
		Steps:        steps,
		Gain:         gain,
		Perturbation: perturbation,
		Disturbance:  disturbance,
		Stop:         string(result.Stop),
		Metrics:      result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "steps.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(stepHeader); err != nil {
		return "", err
	}
	for _, st := range result.States {
		row := []string{
			strconv.Itoa(st.Step),
			formatFloat(st.Wavefront.X), formatFloat(st.Wavefront.Y), formatFloat(st.Wavefront.Z),
			formatFloat(st.Error.X), formatFloat(st.Error.Y), formatFloat(st.Error.Z),
			formatFloat(st.ErrorNorm()),
			formatFloat(st.MaxAdjustment),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// StepRecord is one steps.csv row, parsed.
type StepRecord struct {
	Step          int
	Wavefront     [3]float64
	Error         [3]float64
	ErrorNorm     float64
	MaxAdjustment float64
}

func (s *Store) LoadSteps(runID string) ([]StepRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "steps.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []StepRecord{}, nil
	}

	steps := make([]StepRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(stepHeader) {
			continue
		}
		vals := make([]float64, len(record)-1)
		bad := false
		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				bad = true
				break
			}
			vals[i] = v
		}
		if bad {
			continue
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		steps = append(steps, StepRecord{
			Step:          step,
			Wavefront:     [3]float64{vals[0], vals[1], vals[2]},
			Error:         [3]float64{vals[3], vals[4], vals[5]},
			ErrorNorm:     vals[6],
			MaxAdjustment: vals[7],
		})
	}
	return steps, nil
}

// ExportJSON writes the run metadata and steps as one JSON document to path.
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	steps, err := s.LoadSteps(runID)
	if err != nil {
		return err
	}
	doc := struct {
		Metadata *RunMetadata `json:"metadata"`
		Steps    []StepRecord `json:"steps"`
	}{meta, steps}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ExportCSV copies the run's steps.csv to path.
func (s *Store) ExportCSV(runID, path string) error {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "steps.csv"))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
