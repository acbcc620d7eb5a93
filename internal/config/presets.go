package config

// Presets are robot builds layered over DefaultConfig.
var Presets = map[string]func(*Config){
	"parsian": func(c *Config) {},
	"compact": func(c *Config) {
		c.Robot.RobotRadius = 0.08
		c.Robot.RobotHeight = 0.14
		c.Robot.WheelRadius = 0.0275
		c.Robot.CenterFromKicker = 0.065
		c.Robot.BodyMass = 1.6
	},
	"heavy": func(c *Config) {
		c.Robot.BodyMass = 2.8
		c.Robot.WheelMotorFMax = 0.35
		c.Robot.KickerDampFactor = 0.3
	},
	"dribbler": func(c *Config) {
		c.Robot.RollerTorqueFactor = 0.1
		c.Robot.RollerPerpendicularTorqueFactor = 0.01
		c.Robot.KickerWidth = 0.07
	},
	"three-forty": func(c *Config) {
		c.Robot.WheelAngles = [4]float64{30, 150, 225, 315}
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
