package control

import "math"

// ConstrainAngle reduces x to (-π, π]. Values already in range are
// returned unchanged, so the function is exactly idempotent.
func ConstrainAngle(x float64) float64 {
	if x > -math.Pi && x <= math.Pi {
		return x
	}
	r := math.Mod(x+math.Pi, 2*math.Pi)
	if r <= 0 {
		r += 2 * math.Pi
	}
	r -= math.Pi
	if r <= -math.Pi {
		return math.Pi
	}
	return r
}

// Rotate turns the vector (x, y) counter-clockwise by theta radians.
func Rotate(x, y, theta float64) (float64, float64) {
	s, c := math.Sincos(theta)
	return c*x - s*y, s*x + c*y
}
