package kinematics

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestBody2WheelsForward(t *testing.T) {
	out, policy := Body2Wheels(1, 0, 0)
	if policy != FourWheelRotation {
		t.Fatalf("expected four-wheel policy, got %v", policy)
	}

	want := 1 / sin60 * WheelRadius / 4
	expected := [4]float64{want, want, -want, -want}
	for i := range out {
		if math.Abs(out[i]-expected[i]) > eps {
			t.Errorf("wheel %d: expected %f, got %f", i, expected[i], out[i])
		}
	}
	if math.Abs(math.Abs(out[0])-math.Abs(out[1])) > eps {
		t.Errorf("front pair should have equal magnitude: %f vs %f", out[0], out[1])
	}
}

func TestBody2WheelsClosedForm(t *testing.T) {
	fx, fy, fw := 0.7, -1.3, 4.0
	out, _ := Body2Wheels(fx, fy, fw)
	k := WheelRadius / 4
	expected := [4]float64{
		(fx/sin60 + fy/cos60 + fw/ChassisRadius) * k,
		(fx/sin60 - fy/cos60 + fw/ChassisRadius) * k,
		(-fx/sin60 - fy/cos60 + fw/ChassisRadius) * k,
		(-fx/sin60 + fy/cos60 + fw/ChassisRadius) * k,
	}
	for i := range out {
		if math.Abs(out[i]-expected[i]) > eps {
			t.Errorf("wheel %d: expected %f, got %f", i, expected[i], out[i])
		}
	}
}

func TestRotationPolicyBand(t *testing.T) {
	lo, hi := TwoWheelBand()
	if math.Abs(hi-3.1*4*0.0775/0.0275) > eps {
		t.Fatalf("unexpected cutoff %f", hi)
	}

	tests := []struct {
		name string
		fw   float64
		want RotationPolicy
	}{
		{"zero", 0, FourWheelRotation},
		{"below band", lo - 1e-6, FourWheelRotation},
		{"lower edge", lo, TwoWheelRotation},
		{"inside", (lo + hi) / 2, TwoWheelRotation},
		{"negative inside", -(lo + hi) / 2, TwoWheelRotation},
		{"just under upper", hi - 1e-6, TwoWheelRotation},
		{"upper edge", hi, FourWheelRotation},
		{"negative upper edge", -hi, FourWheelRotation},
		{"large", 300, FourWheelRotation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectRotationPolicy(tt.fw); got != tt.want {
				t.Errorf("fw=%f: expected %v, got %v", tt.fw, tt.want, got)
			}
		})
	}
}

func TestBody2WheelsTwoWheelOutput(t *testing.T) {
	lo, hi := TwoWheelBand()
	fw := (lo + hi) / 2
	out, policy := Body2Wheels(0, 0, fw)
	if policy != TwoWheelRotation {
		t.Fatalf("expected two-wheel policy, got %v", policy)
	}
	rot := 2 / ChassisRadius * fw * WheelRadius / 4
	if math.Abs(out[0]-rot) > eps || math.Abs(out[2]-rot) > eps {
		t.Errorf("wheels 0 and 2 should carry doubled rotation %f, got %v", rot, out)
	}
	if out[1] != 0 || out[3] != 0 {
		t.Errorf("wheels 1 and 3 should carry no rotation, got %v", out)
	}
}

func TestScaleLimit(t *testing.T) {
	limits := []float64{0.05, 0.5, 1, 10}
	for _, limit := range limits {
		for fx := -300.0; fx <= 300; fx += 75 {
			for fy := -300.0; fy <= 300; fy += 75 {
				for _, fw := range []float64{-200, -20, 0, 18, 200} {
					s := ScaleLimit(fx, fy, fw, limit)
					if s > 1 || s <= 0 {
						t.Fatalf("scale %f out of (0,1] for (%f,%f,%f)", s, fx, fy, fw)
					}
					out, _ := Body2Wheels(fx, fy, fw)
					if MaxAbs(out)*s > limit+1e-9 {
						t.Fatalf("scaled max %f exceeds limit %f", MaxAbs(out)*s, limit)
					}
				}
			}
		}
	}
}

func TestScaleLimitWithinLimit(t *testing.T) {
	if s := ScaleLimit(0.1, 0, 0, 100); s != 1 {
		t.Errorf("expected scale 1 within limit, got %f", s)
	}
	if s := ScaleLimit(1e6, 0, 0, 0); s != 1 {
		t.Errorf("non-positive limit should disable scaling, got %f", s)
	}
}

func TestScalePreservesDirection(t *testing.T) {
	in := [4]float64{10, -20, 5, 40}
	out, s := Scale(in, 8)
	if math.Abs(s-0.2) > eps {
		t.Fatalf("expected scale 0.2, got %f", s)
	}
	for i := range in {
		if math.Abs(out[i]-in[i]*0.2) > eps {
			t.Errorf("channel %d: expected %f, got %f", i, in[i]*0.2, out[i])
		}
	}
}

func TestPWM2Motor(t *testing.T) {
	tests := []struct {
		name  string
		power float64
		want  float64
	}{
		{"dead zone", 2.9, 0},
		{"negative dead zone", -2.9, 0},
		{"round up", 3.05, PWMRoundUp},
		{"negative round up", -3.05, -PWMRoundUp},
		{"passthrough", 50, 50},
		{"saturate", 150, PWMMax},
		{"negative saturate", -150, -PWMMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := PWM2Motor([4]float64{tt.power, tt.power, tt.power, tt.power})
			for i, v := range out {
				if math.Abs(v-tt.want*MotorConstant) > eps {
					t.Errorf("channel %d: expected %f, got %f", i, tt.want*MotorConstant, v)
				}
			}
		})
	}
}

func TestMapperPureRotation(t *testing.T) {
	m := NewMapper([4]float64{60, 135, 225, 300}, 0.09, 0.0325)
	out := m.Wheels(0, 0, 2)
	want := 0.09 * 2 / 0.0325
	for i, v := range out {
		if math.Abs(v-want) > eps {
			t.Errorf("wheel %d: expected %f, got %f", i, want, v)
		}
	}
}

func TestMapperTranslation(t *testing.T) {
	m := NewMapper([4]float64{60, 135, 225, 300}, 0.09, 0.0325)
	out := m.Wheels(1, 0, 0)
	for i, a := range []float64{60, 135, 225, 300} {
		want := -math.Sin(a*math.Pi/180) / 0.0325
		if math.Abs(out[i]-want) > 1e-9 {
			t.Errorf("wheel %d: expected %f, got %f", i, want, out[i])
		}
	}
}

func TestMapperForwardInvertsWheels(t *testing.T) {
	m := NewMapper([4]float64{60, 135, 225, 300}, 0.09, 0.0325)
	tests := []struct{ vx, vy, w float64 }{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 3},
		{-0.4, 0.7, -1.5},
	}
	for _, tt := range tests {
		vx, vy, w := m.Forward(m.Wheels(tt.vx, tt.vy, tt.w))
		if math.Abs(vx-tt.vx) > 1e-9 || math.Abs(vy-tt.vy) > 1e-9 || math.Abs(w-tt.w) > 1e-9 {
			t.Errorf("expected (%f,%f,%f), got (%f,%f,%f)", tt.vx, tt.vy, tt.w, vx, vy, w)
		}
	}
}
