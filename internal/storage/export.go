package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/san-kum/robosim/internal/sim"
)

// ExportData is the single-document JSON form of a run.
type ExportData struct {
	Run    RunMetadata `json:"run"`
	Frames []sim.Frame `json:"frames"`
}

// ExportJSON writes a stored run, metadata and frames, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return WriteJSON(w, ExportData{Run: *meta, Frames: frames})
}

// ExportJSONFile is ExportJSON into a new file at path.
func (s *Store) ExportJSONFile(path, runID string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	return s.ExportJSON(f, runID)
}

func WriteJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(data), "encode export")
}

// ExportCSV copies the frames table of a stored run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	records, err := s.records(runID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return errors.Wrapf(err, "export %s", runID)
	}
	return nil
}
