// Package control provides the heading controllers of the robot drivetrain.
//
//   - [HeadingPD]: turns a velocity demand plus target heading into a
//     robot-frame velocity and yaw rate (proportional 6.0, derivative 0.6
//     scaled by tick rate).
//   - [AngleController]: heading-only PD loop producing a torque-equivalent
//     output, with a hysteresis dead zone, output clamp and a minimum
//     effective torque.
//
// Every heading computation goes through [ConstrainAngle] so errors never
// jump at ±π.
//
// # Usage
//
//	pd := control.NewHeadingPD(control.DefaultHeadingKp, control.DefaultHeadingKd)
//	vx, vy, w := pd.Update(1, 0, math.Pi/2, yaw, 65)
//	// Update is called once per tick
//
// Both controllers support live tuning through GetParams/SetParam.
package control
