package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS          = 65.0
	DefaultRobotRadius  = 0.09
	DefaultRobotHeight  = 0.13
	DefaultBottomHeight = 0.02
	DefaultWheelRadius  = 0.0325
	DefaultBallRadius   = 0.0215
	DefaultBallMass     = 0.043
	DefaultKickCooldown = 10
)

// ErrInvalid is returned (wrapped) by Validate and Load for unusable settings.
var ErrInvalid = errors.New("config: invalid settings")

type Config struct {
	Robot   RobotSettings   `yaml:"robot" toml:"robot"`
	Ball    BallSettings    `yaml:"ball" toml:"ball"`
	World   WorldSettings   `yaml:"world" toml:"world"`
	Control ControlSettings `yaml:"control" toml:"control"`
}

type RobotSettings struct {
	RobotRadius  float64 `yaml:"robot_radius" toml:"robot_radius"`
	RobotHeight  float64 `yaml:"robot_height" toml:"robot_height"`
	BottomHeight float64 `yaml:"bottom_height" toml:"bottom_height"`
	BodyMass     float64 `yaml:"body_mass" toml:"body_mass"`

	KickerZ                         float64 `yaml:"kicker_z" toml:"kicker_z"`
	KickerThickness                 float64 `yaml:"kicker_thickness" toml:"kicker_thickness"`
	KickerWidth                     float64 `yaml:"kicker_width" toml:"kicker_width"`
	KickerHeight                    float64 `yaml:"kicker_height" toml:"kicker_height"`
	KickerMass                      float64 `yaml:"kicker_mass" toml:"kicker_mass"`
	KickerDampFactor                float64 `yaml:"kicker_damp_factor" toml:"kicker_damp_factor"`
	RollerTorqueFactor              float64 `yaml:"roller_torque_factor" toml:"roller_torque_factor"`
	RollerPerpendicularTorqueFactor float64 `yaml:"roller_perpendicular_torque_factor" toml:"roller_perpendicular_torque_factor"`
	CenterFromKicker                float64 `yaml:"center_from_kicker" toml:"center_from_kicker"`

	WheelRadius    float64    `yaml:"wheel_radius" toml:"wheel_radius"`
	WheelThickness float64    `yaml:"wheel_thickness" toml:"wheel_thickness"`
	WheelMass      float64    `yaml:"wheel_mass" toml:"wheel_mass"`
	WheelMotorFMax float64    `yaml:"wheel_motor_fmax" toml:"wheel_motor_fmax"`
	WheelAngles    [4]float64 `yaml:"wheel_angles" toml:"wheel_angles"`
}

type BallSettings struct {
	Radius          float64 `yaml:"radius" toml:"radius"`
	Mass            float64 `yaml:"mass" toml:"mass"`
	RollingFriction float64 `yaml:"rolling_friction" toml:"rolling_friction"`
}

type WorldSettings struct {
	DesiredFPS float64 `yaml:"desired_fps" toml:"desired_fps"`
	Gravity    float64 `yaml:"gravity" toml:"gravity"`
}

// ControlSettings holds the heading loop gains. Zero values fall back to
// the control package defaults.
type ControlSettings struct {
	HeadingKp     float64 `yaml:"heading_kp" toml:"heading_kp"`
	HeadingKd     float64 `yaml:"heading_kd" toml:"heading_kd"`
	WheelKp       float64 `yaml:"wheel_kp" toml:"wheel_kp"`
	WheelKd       float64 `yaml:"wheel_kd" toml:"wheel_kd"`
	MaxWheelSpeed float64 `yaml:"max_wheel_speed" toml:"max_wheel_speed"`
	KickCountdown int     `yaml:"kick_countdown" toml:"kick_countdown"`
}

func DefaultConfig() *Config {
	return &Config{
		Robot: RobotSettings{
			RobotRadius:                     DefaultRobotRadius,
			RobotHeight:                     DefaultRobotHeight,
			BottomHeight:                    DefaultBottomHeight,
			BodyMass:                        2.0,
			KickerZ:                         0.005,
			KickerThickness:                 0.005,
			KickerWidth:                     0.08,
			KickerHeight:                    0.04,
			KickerMass:                      0.02,
			KickerDampFactor:                0.2,
			RollerTorqueFactor:              0.06,
			RollerPerpendicularTorqueFactor: 0.005,
			CenterFromKicker:                0.073,
			WheelRadius:                     DefaultWheelRadius,
			WheelThickness:                  0.005,
			WheelMass:                       0.2,
			WheelMotorFMax:                  0.2,
			WheelAngles:                     [4]float64{60, 135, 225, 300},
		},
		Ball: BallSettings{
			Radius:          DefaultBallRadius,
			Mass:            DefaultBallMass,
			RollingFriction: 0.35,
		},
		World: WorldSettings{
			DesiredFPS: DefaultFPS,
			Gravity:    9.8,
		},
		Control: ControlSettings{
			KickCountdown: DefaultKickCooldown,
		},
	}
}

// Load reads a YAML or TOML file (by extension) on top of DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func (c *Config) Validate() error {
	positive := map[string]float64{
		"robot_radius":    c.Robot.RobotRadius,
		"robot_height":    c.Robot.RobotHeight,
		"body_mass":       c.Robot.BodyMass,
		"kicker_width":    c.Robot.KickerWidth,
		"kicker_height":   c.Robot.KickerHeight,
		"kicker_mass":     c.Robot.KickerMass,
		"wheel_radius":    c.Robot.WheelRadius,
		"wheel_thickness": c.Robot.WheelThickness,
		"wheel_mass":      c.Robot.WheelMass,
		"ball.radius":     c.Ball.Radius,
		"ball.mass":       c.Ball.Mass,
		"desired_fps":     c.World.DesiredFPS,
	}
	for name, v := range positive {
		if v <= 0 {
			return errors.Wrapf(ErrInvalid, "%s must be positive, got %g", name, v)
		}
	}
	if c.Robot.WheelThickness/2 >= c.Robot.RobotRadius {
		return errors.Wrap(ErrInvalid, "wheel thickness exceeds robot radius")
	}
	seen := make(map[float64]bool, 4)
	for i, a := range c.Robot.WheelAngles {
		if seen[a] {
			return errors.Wrapf(ErrInvalid, "wheel %d angle %g duplicates another wheel", i, a)
		}
		seen[a] = true
	}
	if c.Control.KickCountdown < 1 {
		return errors.Wrapf(ErrInvalid, "kick_countdown must be at least 1, got %d", c.Control.KickCountdown)
	}
	return nil
}

// StartZ is the chassis center height with the wheels resting on the ground.
// Robots are spawned and teleported at this height.
func (c *Config) StartZ() float64 {
	return c.Robot.RobotHeight*0.5 + c.Robot.BottomHeight
}

func (c *Config) DeltaTime() float64 {
	return 1.0 / c.World.DesiredFPS
}

// Clone returns a deep copy; every field is a value type.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
