package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/robosim/internal/config"
)

func TestParseParams(t *testing.T) {
	p, err := parseParams(map[string]string{"vx": "0.5", "heading": "-1.57"})
	if err != nil {
		t.Fatal(err)
	}
	if p["vx"] != 0.5 || p["heading"] != -1.57 {
		t.Errorf("unexpected params %v", p)
	}
	if _, err := parseParams(map[string]string{"vx": "fast"}); err == nil {
		t.Error("expected an error for a non-numeric value")
	}
}

func TestLoadConfig(t *testing.T) {
	defer func() { configFile, preset = "", "" }()

	cfg, err := loadConfig()
	if err != nil || cfg.Robot.RobotRadius != config.DefaultRobotRadius {
		t.Fatalf("expected defaults, got %v, %v", cfg, err)
	}

	preset = "compact"
	cfg, err = loadConfig()
	if err != nil || cfg.Robot.RobotRadius != 0.08 {
		t.Errorf("expected the compact preset, got %v", err)
	}

	preset = "missing"
	if _, err := loadConfig(); err == nil {
		t.Error("expected an error for an unknown preset")
	}

	path := filepath.Join(t.TempDir(), "robot.toml")
	heavy := config.GetPreset("heavy")
	if err := config.Save(path, heavy); err != nil {
		t.Fatal(err)
	}
	configFile = path
	cfg, err = loadConfig()
	if err != nil || cfg.Robot.BodyMass != heavy.Robot.BodyMass {
		t.Errorf("expected the config file over the preset, got %v", err)
	}
}

func TestScriptRegistry(t *testing.T) {
	defer func() { scriptFile = "" }()

	reg, err := registry()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := scenarioName(reg, nil); err == nil {
		t.Error("expected an error without a scenario or script")
	}
	if name, _ := scenarioName(reg, []string{"kick"}); name != "kick" {
		t.Errorf("expected kick, got %s", name)
	}

	path := filepath.Join(t.TempDir(), "script.yaml")
	src := "name: wiggle\nrobots: [{id: 0}]\nsteps: [{at: 0, until: 10, robot: 0, mode: velocity, w: 1}]\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	scriptFile = path
	reg, err = registry()
	if err != nil {
		t.Fatal(err)
	}
	name, err := scenarioName(reg, nil)
	if err != nil || name != "wiggle" {
		t.Errorf("expected the script scenario, got %q, %v", name, err)
	}
	if sc, err := reg.Get("wiggle"); err != nil || sc.Ticks != 10 {
		t.Errorf("expected a 10 tick scenario, got %v", err)
	}

	scriptFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := registry(); err == nil {
		t.Error("expected an error for a missing script")
	}
}

func TestSeconds(t *testing.T) {
	if s := seconds(-1); s != "never" {
		t.Errorf("expected never, got %s", s)
	}
	if s := seconds(0.25); s != "0.250s" {
		t.Errorf("expected 0.250s, got %s", s)
	}
}
