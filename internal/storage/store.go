package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
	"github.com/slochower/nonequilibrium-manuscript/internal/metrics"
	"github.com/slochower/nonequilibrium-manuscript/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	profilesFile   = "profiles.csv"
	relaxationFile = "relaxation.csv"
)

// Column names of profiles.csv, one row per bin.
var profileColumns = []string{
	"bin",
	"unbound_energy", "bound_energy",
	"unbound_boltzmann", "bound_boltzmann",
	"unbound_population", "bound_population",
	"flux_unbound", "flux_bound", "flux_intersurface",
}

var iterativeColumns = []string{
	"iterative_flux_unbound", "iterative_flux_bound", "iterative_flux_intersurface",
}

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
	ID         string              `json:"id"`
	Label      string              `json:"label"`
	Timestamp  time.Time           `json:"timestamp"`
	Bins       int                 `json:"bins"`
	Params     kinetics.Parameters `json:"params"`
	Dt         float64             `json:"dt"`
	Eigenvalue float64             `json:"eigenvalue"`
	Summary    metrics.Summary     `json:"summary"`
	Agreement  *metrics.Agreement  `json:"agreement,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// Save writes a run directory named after label and a fresh uuid.
func (s *Store) Save(label string, result *sim.Result, summary metrics.Summary, agreement *metrics.Agreement) (string, error) {
	runID := fmt.Sprintf("%s_%s", label, uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Label:      label,
		Timestamp:  time.Now(),
		Bins:       result.Bins,
		Params:     result.Params,
		Dt:         result.Dt,
		Eigenvalue: real(result.SteadyState.Eigenvalue),
		Summary:    summary,
		Agreement:  agreement,
	}
	for _, w := range result.Warnings {
		meta.Warnings = append(meta.Warnings, w.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	header, columns := profileTable(result)
	if err := writeCSV(filepath.Join(runDir, profilesFile), header, columns); err != nil {
		return "", err
	}

	if r := result.Relaxation; r != nil {
		steps := make([]float64, len(r.MSD))
		for i := range steps {
			steps[i] = float64(i)
		}
		err := writeCSV(filepath.Join(runDir, relaxationFile),
			[]string{"iteration", "msd", "center_of_mass"},
			[][]float64{steps, r.MSD, r.CenterOfMass})
		if err != nil {
			return "", err
		}
	}

	return runID, nil
}

func profileTable(result *sim.Result) ([]string, [][]float64) {
	bins := make([]float64, result.Bins)
	for i := range bins {
		bins[i] = float64(i)
	}
	d := result.SteadyState.Distribution
	columns := [][]float64{
		bins,
		result.Unbound, result.Bound,
		result.UnboundBoltzmann, result.BoundBoltzmann,
		d.Unbound(), d.Bound(),
		result.Flux.Unbound, result.Flux.Bound, result.Flux.Intersurface,
	}
	header := append([]string(nil), profileColumns...)
	if f := result.IterativeFlux; f != nil {
		header = append(header, iterativeColumns...)
		columns = append(columns, f.Unbound, f.Bound, f.Intersurface)
	}
	return header, columns
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

func writeCSV(path string, header []string, columns [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}
	for i := 0; i < rows; i++ {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Table is a CSV file read back as named columns.
type Table struct {
	Header  []string
	Columns map[string][]float64
}

func (s *Store) LoadProfiles(runID string) (*Table, error) {
	return readCSV(filepath.Join(s.baseDir, runID, profilesFile))
}

// LoadRelaxation returns the iterative series, or os.ErrNotExist when the
// run had no iterations.
func (s *Store) LoadRelaxation(runID string) (*Table, error) {
	return readCSV(filepath.Join(s.baseDir, runID, relaxationFile))
}

// ProfilesPath is the location of the per-bin CSV of a run.
func (s *Store) ProfilesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, profilesFile)
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}

	t := &Table{Header: records[0], Columns: make(map[string][]float64, len(records[0]))}
	for i, record := range records[1:] {
		for j, name := range t.Header {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
			}
			t.Columns[name] = append(t.Columns[name], v)
		}
	}
	return t, nil
}
