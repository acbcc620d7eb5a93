package control

import (
	"math"
	"testing"

	"github.com/san-kum/robosim/internal/kinematics"
)

func TestConstrainAngleRange(t *testing.T) {
	inputs := []float64{
		0, 1, -1, math.Pi, -math.Pi, 2 * math.Pi, -2 * math.Pi, 3 * math.Pi, -3 * math.Pi,
		7.5, -7.5, 1e6, -1e6, math.Pi + 1e-12, -math.Pi - 1e-12, 1e-300, -1e-300,
	}
	for x := -50.0; x <= 50; x += 0.37 {
		inputs = append(inputs, x)
	}

	for _, x := range inputs {
		y := ConstrainAngle(x)
		if y <= -math.Pi || y > math.Pi {
			t.Errorf("ConstrainAngle(%v) = %v out of (-π, π]", x, y)
		}
		if z := ConstrainAngle(y); z != y {
			t.Errorf("ConstrainAngle not idempotent at %v: %v then %v", x, y, z)
		}
		if d := math.Remainder(x-y, 2*math.Pi); math.Abs(d) > 1e-6 {
			t.Errorf("ConstrainAngle(%v) = %v is not an equivalent angle", x, y)
		}
	}
}

func TestConstrainAngleBoundaries(t *testing.T) {
	if got := ConstrainAngle(-math.Pi); got != math.Pi {
		t.Errorf("expected -π to map to π, got %v", got)
	}
	if got := ConstrainAngle(math.Pi); got != math.Pi {
		t.Errorf("expected π to stay π, got %v", got)
	}
}

func TestRotate(t *testing.T) {
	x, y := Rotate(1, 0, math.Pi/2)
	if math.Abs(x) > 1e-12 || math.Abs(y-1) > 1e-12 {
		t.Errorf("expected (0,1), got (%f,%f)", x, y)
	}
}

func TestHeadingPDFirstTick(t *testing.T) {
	pd := NewHeadingPD(DefaultHeadingKp, DefaultHeadingKd)
	_, _, w := pd.Update(0, 0, math.Pi/2, 0, 65)
	want := DefaultHeadingKp * math.Pi / 2
	if math.Abs(w-want) > 1e-9 {
		t.Errorf("expected w %f, got %f", want, w)
	}

	on := NewHeadingPD(DefaultHeadingKp, DefaultHeadingKd)
	if _, _, w := on.Update(0, 0, 1, 1, 65); w != 0 {
		t.Errorf("expected no derivative kick on target, got %f", w)
	}
}

func TestHeadingPDRotatesIntoRobotFrame(t *testing.T) {
	pd := NewHeadingPD(DefaultHeadingKp, DefaultHeadingKd)
	vx, vy, _ := pd.Update(1, 0, math.Pi/2, math.Pi/2, 65)
	if math.Abs(vx) > 1e-9 || math.Abs(vy+1) > 1e-9 {
		t.Errorf("expected (0,-1) in robot frame, got (%f,%f)", vx, vy)
	}
}

func TestHeadingPDDerivative(t *testing.T) {
	pd := NewHeadingPD(DefaultHeadingKp, DefaultHeadingKd)
	pd.Update(0, 0, 0, 0, 65)
	_, _, w := pd.Update(0, 0, 0.1, 0.1, 65)
	want := -DefaultHeadingKd * 0.1 * 65
	if math.Abs(w-want) > 1e-9 {
		t.Errorf("expected derivative-only output %f, got %f", want, w)
	}
}

func TestHeadingPDWrapsAcrossPi(t *testing.T) {
	pd := NewHeadingPD(DefaultHeadingKp, DefaultHeadingKd)
	pd.Update(0, 0, math.Pi, 3.1, 65)
	_, _, w := pd.Update(0, 0, math.Pi, -3.1, 65)

	err := ConstrainAngle(math.Pi + 3.1)
	rate := ConstrainAngle(-3.1 - 3.1)
	want := DefaultHeadingKp*err - DefaultHeadingKd*rate*65
	if math.Abs(w-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, w)
	}
	if math.Abs(rate) > 0.1 {
		t.Errorf("wrapped yaw rate should be small, got %f", rate)
	}
}

func TestHeadingPDReset(t *testing.T) {
	pd := NewHeadingPD(DefaultHeadingKp, DefaultHeadingKd)
	pd.Update(0, 0, 0, 1, 65)
	pd.Reset()
	_, _, w := pd.Update(0, 0, 1, 1, 65)
	if w != 0 {
		t.Errorf("expected no derivative kick after reset, got %f", w)
	}
}

func TestHeadingPDParams(t *testing.T) {
	pd := NewHeadingPD(1, 2)
	if err := pd.SetParam("Kp", 4); err != nil {
		t.Fatal(err)
	}
	if pd.GetParams()["Kp"] != 4 {
		t.Errorf("expected Kp 4, got %f", pd.GetParams()["Kp"])
	}
	if err := pd.SetParam("Ki", 1); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestAngleControlClamp(t *testing.T) {
	ac := NewAngleController()
	if out := ac.Update(3, 0); out != DefaultAngleLimit {
		t.Errorf("expected clamp to %f, got %f", DefaultAngleLimit, out)
	}
	ac = NewAngleController()
	if out := ac.Update(-3, 0); out != -DefaultAngleLimit {
		t.Errorf("expected clamp to %f, got %f", -DefaultAngleLimit, out)
	}
}

func TestAngleControlMinimumTorque(t *testing.T) {
	floor := kinematics.TCutoff / 2
	for _, sign := range []float64{1, -1} {
		ac := NewAngleController()
		ac.Update(sign*0.04, 0)
		out := ac.Update(sign*0.04, 0)
		if math.Abs(out-sign*floor) > 1e-9 {
			t.Errorf("expected output floored to %f, got %f", sign*floor, out)
		}
	}
}

func TestAngleControlHysteresis(t *testing.T) {
	ac := NewAngleController()
	if out := ac.Update(0.02, 0); out != 0 {
		t.Fatalf("expected dead zone output 0, got %f", out)
	}
	if !ac.Latched() {
		t.Fatal("expected hysteresis latch inside dead zone")
	}
	if out := ac.Update(0.031, 0); out != 0 {
		t.Errorf("widened dead zone should still hold at 0.031, got %f", out)
	}

	fresh := NewAngleController()
	if out := fresh.Update(0.031, 0); out == 0 {
		t.Error("narrow dead zone should not hold at 0.031")
	}
	if fresh.Latched() {
		t.Error("latch should stay open outside dead zone")
	}
}

func TestAngleControlInstancesIndependent(t *testing.T) {
	a := NewAngleController()
	b := NewAngleController()
	a.Update(0.02, 0)
	if b.Latched() {
		t.Error("hysteresis state leaked between controllers")
	}
}

func TestAngleControlReset(t *testing.T) {
	ac := NewAngleController()
	ac.Update(0.02, 0)
	ac.Reset()
	if ac.Latched() {
		t.Error("reset should clear latch")
	}
}
