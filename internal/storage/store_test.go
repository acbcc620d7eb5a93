package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/robot"
	"github.com/san-kum/robosim/internal/sim"
)

func sampleResult() *sim.Result {
	frames := []sim.Frame{
		{
			Tick: 1, Time: 0.015385,
			Ball:   sim.BallState{X: 0.1, Z: 0.0215, VX: 2, LastToucher: 3},
			Robots: []robot.Snapshot{{ID: 3, X: 0.5, Dir: 90, Wheels: [4]float64{1, 2, 3, 4}, Kicker: robot.Kicking, Touching: true, Enabled: true}},
		},
		{
			Tick: 2, Time: 0.030769,
			Ball:   sim.BallState{X: 0.13, Z: 0.0215, VX: 1.95, LastToucher: 3},
			Robots: []robot.Snapshot{{ID: 3, X: 0.5, Dir: 91, Roller: -1, Enabled: true}},
		},
	}
	return &sim.Result{
		Frames:     frames,
		Final:      frames[1],
		Metrics:    map[string]float64{"peak_ball_speed": 2},
		TicksTaken: 2,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Scenario: "kick", DeltaTime: 1.0 / 65}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "kick" {
		t.Errorf("expected scenario 'kick', got '%s'", meta.Scenario)
	}
	if meta.Ticks != 2 || meta.Robots != 1 {
		t.Errorf("expected 2 ticks and 1 robot, got %d and %d", meta.Ticks, meta.Robots)
	}
	if meta.Metrics["peak_ball_speed"] != 2 {
		t.Errorf("expected peak 2, got %f", meta.Metrics["peak_ball_speed"])
	}
	if meta.Timestamp.IsZero() {
		t.Error("expected a timestamp from the run id")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	var ids []string
	for _, name := range []string{"drive", "turn", "kick"} {
		id, err := st.Save(RunMetadata{Scenario: name}, sampleResult())
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i-1].ID > runs[i].ID {
			t.Errorf("expected runs sorted by id, got %s before %s", runs[i-1].ID, runs[i].ID)
		}
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, _, err := st.LoadSeries("nope", "ball_x"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSaveFailureLeavesNoRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	meta := RunMetadata{Scenario: "kick", Params: map[string]float64{"speed": math.NaN()}}
	if _, err := st.Save(meta, sampleResult()); err == nil {
		t.Fatal("expected an encode error for a NaN param")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no run directory after a failed save, got %d entries", len(entries))
	}
}

func TestLoadSeries(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save(RunMetadata{Scenario: "kick"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	times, xs, err := st.LoadSeries(id, "ball_x")
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 2 || xs[1] != 0.13 {
		t.Errorf("expected ball_x series [0.1 0.13], got %v", xs)
	}

	_, dirs, err := st.LoadSeries(id, "r3_dir")
	if err != nil {
		t.Fatal(err)
	}
	if dirs[0] != 90 || dirs[1] != 91 {
		t.Errorf("expected dir series [90 91], got %v", dirs)
	}

	if _, _, err := st.LoadSeries(id, "r9_dir"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}

	cols, err := st.Columns(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != ballColumns+robotColumns {
		t.Errorf("expected %d columns, got %d", ballColumns+robotColumns, len(cols))
	}
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save(RunMetadata{Scenario: "drive"}, &sim.Result{Metrics: map[string]float64{}})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{metadataFile, framesFile} {
		if _, err := os.Stat(filepath.Join(st.baseDir, id, name)); err != nil {
			t.Errorf("expected %s in the run directory: %v", name, err)
		}
	}
	times, _, err := st.LoadSeries(id, "ball_x")
	if err != nil || len(times) != 0 {
		t.Errorf("expected an empty series for a run without frames, got %v, %v", times, err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save(RunMetadata{Scenario: "kick"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, id); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Run.ID != id {
		t.Errorf("expected run %s, got %s", id, data.Run.ID)
	}
	if len(data.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(data.Frames))
	}

	r := data.Frames[0].Robots[0]
	if r.ID != 3 || r.Wheels[3] != 4 || r.Kicker != robot.Kicking || !r.Touching {
		t.Errorf("robot snapshot did not survive the CSV: %+v", r)
	}
	if data.Frames[1].Robots[0].Roller != -1 {
		t.Errorf("expected roller -1, got %d", data.Frames[1].Robots[0].Roller)
	}
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save(RunMetadata{Scenario: "kick"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportCSV(&buf, id); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tick,time,ball_x") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestSaveRecordedRun(t *testing.T) {
	a := sim.NewArena(config.DefaultConfig(), nil)
	a.AddRobot(robot.Spawn{ID: 0})
	a.AddRobot(robot.Spawn{ID: 1, Team: robot.Yellow, X: 1, Reversed: true})
	s := sim.New(a, sim.DriverFunc(func(a *sim.Arena, _ int) {
		a.Robot(0).Submit(robot.Command{Mode: robot.DriveVelocity, VX: 1})
	}))
	res, err := s.Run(context.Background(), sim.Config{Ticks: 30, Record: true})
	if err != nil {
		t.Fatal(err)
	}

	st := New(t.TempDir())
	id, err := st.Save(RunMetadata{Scenario: "adhoc"}, res)
	if err != nil {
		t.Fatal(err)
	}
	_, xs, err := st.LoadSeries(id, "r0_x")
	if err != nil {
		t.Fatal(err)
	}
	if len(xs) != 30 {
		t.Fatalf("expected 30 samples, got %d", len(xs))
	}
	if xs[29] <= xs[0] {
		t.Errorf("expected robot 0 to advance, got %f then %f", xs[0], xs[29])
	}
	_, dirs, err := st.LoadSeries(id, "r1_dir")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(math.Abs(dirs[0])-180) > 1e-3 {
		t.Errorf("expected the reversed robot at 180 degrees, got %f", dirs[0])
	}
}

func TestLoadFrames(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Scenario: "kick"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	r := frames[1].Robots[0]
	if r.ID != 3 || r.Dir != 91 || r.Roller != -1 || !r.Enabled {
		t.Errorf("unexpected robot snapshot %+v", r)
	}
	if frames[0].Ball.LastToucher != 3 || frames[0].Robots[0].Kicker != robot.Kicking {
		t.Error("expected the kick recorded on the first frame")
	}

	if _, err := st.LoadFrames("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}
