// Package physics is the contract between the robot core and a rigid-body
// engine: bodies, the shared ball, hinge and fixed joints, and angular
// motors. Vectors are golang/geo r3 values and orientations are mgl64
// quaternions.
//
// [KinematicWorld] is the bundled engine. It is small: it
// honors the joint graph and the wheel motors exactly and treats the ball
// as a free sphere, which is enough to exercise drive, heading and kicker
// logic without a full dynamics solver. A real engine plugs in by
// implementing [Engine].
package physics
