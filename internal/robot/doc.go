// Package robot is the per-robot drivetrain and ball-handling core.
//
// A [Robot] owns a chassis body, four motored [Wheel]s and a [Kicker] built
// on a [physics.World]. Once per tick the caller steps the robot and then
// advances the world:
//
//	r := robot.New(world, ball, cfg, robot.Spawn{ID: 0, X: -1})
//	r.Submit(robot.Command{Mode: robot.DriveVelocity, VX: 1})
//	r.Step()
//	world.Step(cfg.DeltaTime())
//
// Drive paths:
//
//   - SetSpeed/IncSpeed: raw wheel speeds.
//   - SetVelocity: body velocity through the configured wheel geometry.
//   - SetAngle: world-frame velocity plus a target heading (PD loop).
//   - SetForce/SetForceAngle: fixed-geometry force mapping and PWM model.
//
// Wheels and the kicker hold a shared read-only [Parts] handle instead of a
// reference to their robot.
package robot
