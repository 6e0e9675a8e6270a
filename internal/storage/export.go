package storage

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

type ExportData struct {
	Metadata   *RunMetadata         `json:"metadata"`
	Profiles   map[string][]float64 `json:"profiles"`
	Relaxation map[string][]float64 `json:"relaxation,omitempty"`
}

// ExportJSON writes the metadata and every stored series of a run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	profiles, err := s.LoadProfiles(runID)
	if err != nil {
		return err
	}

	data := ExportData{Metadata: meta, Profiles: profiles.Columns}
	relax, err := s.LoadRelaxation(runID)
	switch {
	case err == nil:
		data.Relaxation = relax.Columns
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV copies the per-bin profiles of a run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(s.ProfilesPath(runID))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
