// Package storage persists generated benchmark runs: the accepted model
// parameters alongside the sampled trajectory, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
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

// RunMetadata records everything needed to reproduce a run.
type RunMetadata struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       int64     `json:"seed"`
	Attempts   int       `json:"attempts"`
	Integrator string    `json:"integrator"`

	U0         []float64 `json:"u0"`
	Dt         float64   `json:"dt"`
	Cxy        float64   `json:"c_xy"`
	A1         float64   `json:"a1"`
	A2         float64   `json:"a2"`
	A3         float64   `json:"a3"`
	B1         float64   `json:"b1"`
	B2         float64   `json:"b2"`
	B3         float64   `json:"b3"`
	NoiseLevel float64   `json:"noise_level"`

	Npts      int `json:"npts"`
	Stride    int `json:"stride"`
	Transient int `json:"transient"`
}

var columnNames = []string{"x1", "x2", "x3", "y1", "y2", "y3"}

// Save writes metadata.json and trajectory.csv under a fresh run
// directory and returns the run ID.
func (s *Store) Save(meta RunMetadata, traj *mat.Dense) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

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

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	rows, cols := traj.Dims()
	header := make([]string, cols)
	for j := 0; j < cols; j++ {
		if j < len(columnNames) {
			header[j] = columnNames[j]
		} else {
			header[j] = fmt.Sprintf("v%d", j)
		}
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	row := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = strconv.FormatFloat(traj.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
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

// LoadTrajectory reads a stored trajectory back as a dense matrix.
func (s *Store) LoadTrajectory(runID string) (*mat.Dense, []string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("storage: run %s has no trajectory rows", runID)
	}

	header := records[0]
	cols := len(header)
	rows := len(records) - 1

	traj := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		record := records[i+1]
		if len(record) != cols {
			return nil, nil, fmt.Errorf("storage: run %s row %d has %d fields, want %d", runID, i, len(record), cols)
		}
		for j := 0; j < cols; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: run %s row %d col %d: %w", runID, i, j, err)
			}
			traj.Set(i, j, v)
		}
	}

	return traj, header, nil
}
