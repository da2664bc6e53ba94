package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/tensegrity/internal/metrics"
	"github.com/san-kum/tensegrity/internal/relax"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	resultFile   = "result.json"
)

// Store keeps one directory per solver run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Timestamp           time.Time          `json:"timestamp"`
	InEquilibrium       bool               `json:"in_equilibrium"`
	TimeSteps           int                `json:"time_steps"`
	KineticEnergyResets int                `json:"kinetic_energy_resets"`
	ResidualNorm        float64            `json:"residual_norm"`
	Config              relax.Config       `json:"config"`
	Metrics             map[string]float64 `json:"metrics,omitempty"`
}

// Run is everything Save persists about one relaxation.
type Run struct {
	Name    string
	Config  relax.Config
	Result  *relax.Result
	History []metrics.Sample
	Metrics map[string]float64
}

// Save writes run under a fresh ID and returns the ID.
func (s *Store) Save(run Run) (string, error) {
	if run.Result == nil || run.Result.Final == nil {
		return "", errors.New("storage: run has no result")
	}

	runID := fmt.Sprintf("%s_%s", run.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:                  runID,
		Name:                run.Name,
		Timestamp:           time.Now(),
		InEquilibrium:       run.Result.InEquilibrium,
		TimeSteps:           run.Result.TimeSteps,
		KineticEnergyResets: run.Result.KineticEnergyResets,
		ResidualNorm:        run.Result.ResidualNorm,
		Config:              run.Config,
		Metrics:             run.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, resultFile), NewSnapshot(run.Name, run.Result)); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), run.History); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, filepath.Base(filepath.Dir(path)))
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func writeHistory(path string, history []metrics.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "time", "kinetic_energy", "residual_norm", "reset"}); err != nil {
		return err
	}
	for _, h := range history {
		row := []string{
			strconv.Itoa(h.Step),
			strconv.FormatFloat(h.Time, 'g', -1, 64),
			strconv.FormatFloat(h.KineticEnergy, 'g', -1, 64),
			strconv.FormatFloat(h.ResidualNorm, 'g', -1, 64),
			strconv.FormatBool(h.Reset),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, newest first. Directories without valid
// metadata are skipped.
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
		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, entry.Name(), metadataFile), &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSnapshot(runID string) (*Snapshot, error) {
	var snap Snapshot
	if err := readJSON(filepath.Join(s.baseDir, runID, resultFile), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) LoadHistory(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	history := make([]metrics.Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != 5 {
			continue
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		sample := metrics.Sample{Step: step}
		sample.Time, _ = strconv.ParseFloat(rec[1], 64)
		sample.KineticEnergy, _ = strconv.ParseFloat(rec[2], 64)
		sample.ResidualNorm, _ = strconv.ParseFloat(rec[3], 64)
		sample.Reset, _ = strconv.ParseBool(rec[4])
		history = append(history, sample)
	}
	return history, nil
}
