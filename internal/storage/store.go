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

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/san-kum/robosim/internal/robot"
	"github.com/san-kum/robosim/internal/sim"
)

var (
	ErrRunNotFound   = errors.New("storage: run not found")
	ErrUnknownColumn = errors.New("storage: unknown column")
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

// Store keeps one directory per run under baseDir, named by a KSUID so a
// plain listing is in creation order.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return errors.Wrapf(os.MkdirAll(s.baseDir, 0755), "create %s", s.baseDir)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Ticks     int                `json:"ticks"`
	DeltaTime float64            `json:"dt"`
	Robots    int                `json:"robots"`
	Params    map[string]float64 `json:"params,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and the recorded frames of result as a new run and
// returns its id. ID and Timestamp of meta are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	id := ksuid.New()
	meta.ID = id.String()
	meta.Timestamp = id.Time()
	meta.Ticks = result.TicksTaken
	meta.Robots = len(result.Final.Robots)
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrapf(err, "create run %s", meta.ID)
	}
	if err := writeRun(runDir, meta, result.Frames); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

func writeRun(runDir string, meta RunMetadata, frames []sim.Frame) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return errors.Wrap(err, "create metadata")
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return errors.Wrap(err, "encode metadata")
	}
	return writeFrames(filepath.Join(runDir, framesFile), frames)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create frames")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(frames) == 0 {
		w.Flush()
		return w.Error()
	}

	if err := w.Write(Header(frames[0])); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, fr := range frames {
		if err := w.Write(Row(fr)); err != nil {
			return errors.Wrapf(err, "write tick %d", fr.Tick)
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush frames")
}

// Header names the CSV columns for frames shaped like f.
func Header(f sim.Frame) []string {
	h := []string{"tick", "time", "ball_x", "ball_y", "ball_z", "ball_vx", "ball_vy", "ball_vz", "last_toucher"}
	for _, r := range f.Robots {
		p := fmt.Sprintf("r%d_", r.ID)
		h = append(h, p+"x", p+"y", p+"dir", p+"vx", p+"vy", p+"w")
		for i := range r.Wheels {
			h = append(h, fmt.Sprintf("%swheel%d", p, i))
		}
		h = append(h, p+"kicker", p+"roller", p+"touching", p+"enabled")
	}
	return h
}

func Row(f sim.Frame) []string {
	b := f.Ball
	row := []string{strconv.Itoa(f.Tick), ff(f.Time), ff(b.X), ff(b.Y), ff(b.Z), ff(b.VX), ff(b.VY), ff(b.VZ), strconv.Itoa(b.LastToucher)}
	for _, r := range f.Robots {
		row = append(row, ff(r.X), ff(r.Y), ff(r.Dir), ff(r.VX), ff(r.VY), ff(r.W))
		for _, w := range r.Wheels {
			row = append(row, ff(w))
		}
		row = append(row, strconv.Itoa(int(r.Kicker)), strconv.Itoa(r.Roller), bit(r.Touching), bit(r.Enabled))
	}
	return row
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, errors.Wrapf(err, "list %s", s.baseDir)
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRunNotFound, "%s", runID)
		}
		return nil, errors.Wrapf(err, "read run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", runID)
	}
	return &meta, nil
}

// Columns returns the CSV header of a run.
func (s *Store) Columns(runID string) ([]string, error) {
	records, err := s.records(runID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []string{}, nil
	}
	return records[0], nil
}

// LoadSeries returns the time column and one named column of a run.
func (s *Store) LoadSeries(runID, column string) ([]float64, []float64, error) {
	records, err := s.records(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	col := -1
	for i, name := range records[0] {
		if name == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil, errors.Wrapf(ErrUnknownColumn, "%q in run %s", column, runID)
	}

	times := make([]float64, 0, len(records)-1)
	values := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) <= col {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		values = append(values, v)
	}
	return times, values, nil
}

func (s *Store) records(runID string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrRunNotFound, "%s", runID)
		}
		return nil, errors.Wrapf(err, "open run %s", runID)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	return records, errors.Wrapf(err, "read frames of %s", runID)
}

const (
	ballColumns  = 9
	robotColumns = 14
)

// LoadFrames rebuilds the recorded frames of a run from its CSV.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	records, err := s.records(runID)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	header := records[0]
	ids := make([]int, 0)
	for i := ballColumns; i+robotColumns <= len(header); i += robotColumns {
		var id int
		if _, err := fmt.Sscanf(header[i], "r%d_x", &id); err != nil {
			return nil, errors.Wrapf(err, "column %q of run %s", header[i], runID)
		}
		ids = append(ids, id)
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) < ballColumns+robotColumns*len(ids) {
			return nil, errors.Errorf("run %s: row %d has %d columns", runID, n+1, len(rec))
		}
		p := parser{rec: rec}
		f := sim.Frame{
			Tick: p.integer(),
			Time: p.float(),
			Ball: sim.BallState{
				X: p.float(), Y: p.float(), Z: p.float(),
				VX: p.float(), VY: p.float(), VZ: p.float(),
				LastToucher: p.integer(),
			},
			Robots: make([]robot.Snapshot, len(ids)),
		}
		for i, id := range ids {
			r := robot.Snapshot{ID: id}
			r.X, r.Y, r.Dir = p.float(), p.float(), p.float()
			r.VX, r.VY, r.W = p.float(), p.float(), p.float()
			for j := range r.Wheels {
				r.Wheels[j] = p.float()
			}
			r.Kicker = robot.KickerMode(p.integer())
			r.Roller = p.integer()
			r.Touching = p.integer() == 1
			r.Enabled = p.integer() == 1
			f.Robots[i] = r
		}
		if p.err != nil {
			return nil, errors.Wrapf(p.err, "run %s row %d", runID, n+1)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// parser reads a CSV record left to right and keeps the first error.
type parser struct {
	rec []string
	pos int
	err error
}

func (p *parser) next() string {
	v := p.rec[p.pos]
	p.pos++
	return v
}

func (p *parser) float() float64 {
	v, err := strconv.ParseFloat(p.next(), 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) integer() int {
	v, err := strconv.Atoi(p.next())
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
