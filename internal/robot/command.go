package robot

type DriveMode int

const (
	DriveNone DriveMode = iota
	DriveWheels
	DriveVelocity
	DriveHeading
	DriveForce
	DriveForceHeading
)

var driveModeNames = map[DriveMode]string{
	DriveNone:         "none",
	DriveWheels:       "wheels",
	DriveVelocity:     "velocity",
	DriveHeading:      "heading",
	DriveForce:        "force",
	DriveForceHeading: "force-heading",
}

func (m DriveMode) String() string {
	if s, ok := driveModeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseDriveMode is the inverse of DriveMode.String.
func ParseDriveMode(s string) (DriveMode, bool) {
	for m, name := range driveModeNames {
		if name == s {
			return m, true
		}
	}
	return DriveNone, false
}

// Command is one tick's worth of instructions for a robot. W is the yaw
// rate for DriveVelocity, the target heading in radians for DriveHeading
// and DriveForceHeading, and the rotational force for DriveForce.
type Command struct {
	Mode     DriveMode
	Wheels   [NumWheels]float64
	VX, VY   float64
	W        float64
	KickFlat float64
	KickChip float64
	Spinner  bool
}

// Submit queues cmd for the next Step, replacing any command not yet
// taken. It must not be called while Step runs.
func (r *Robot) Submit(cmd Command) {
	r.pending = &cmd
}

func (r *Robot) Pending() bool { return r.pending != nil }

// apply resolves a command into one drive call and at most one kicker call.
// A kick leaves the roller as it was.
func (r *Robot) apply(cmd Command) {
	switch cmd.Mode {
	case DriveWheels:
		for i, v := range cmd.Wheels {
			r.SetSpeed(i, v)
		}
	case DriveVelocity:
		r.SetVelocity(cmd.VX, cmd.VY, cmd.W)
	case DriveHeading:
		r.SetAngle(cmd.VX, cmd.VY, cmd.W)
	case DriveForce:
		r.SetForce(cmd.VX, cmd.VY, cmd.W)
	case DriveForceHeading:
		r.SetForceAngle(cmd.VX, cmd.VY, cmd.W)
	}

	switch {
	case cmd.KickFlat != 0 || cmd.KickChip != 0:
		r.kicker.Kick(cmd.KickFlat, cmd.KickChip)
	case cmd.Spinner:
		r.kicker.SetRoller(1)
	default:
		r.kicker.SetRoller(0)
	}
}
