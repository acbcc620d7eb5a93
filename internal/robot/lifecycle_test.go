package robot_test

import (
	"math"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/physics"
	"github.com/san-kum/robosim/internal/robot"
)

var _ = Describe("Robot", func() {
	var (
		cfg   *config.Config
		world *physics.KinematicWorld
		ball  physics.Ball
		r     *robot.Robot
	)

	tick := func() {
		r.Step()
		world.Step(cfg.DeltaTime())
	}

	placeBall := func() {
		c := r.Kicker().ContactCenter()
		f := physics.Forward(r.Chassis())
		ball.SetPosition(r3.Vector{X: c.X + f.X*0.02, Y: c.Y + f.Y*0.02, Z: cfg.Ball.Radius})
		ball.SetLinearVelocity(r3.Vector{})
	}

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		world = physics.NewKinematicWorld(cfg.World.Gravity, cfg.Ball.RollingFriction)
		ball = world.AddBall(physics.BodySpec{
			Name:     "ball",
			Shape:    physics.Sphere,
			Size:     r3.Vector{X: cfg.Ball.Radius},
			Mass:     cfg.Ball.Mass,
			Position: r3.Vector{X: 1, Z: cfg.Ball.Radius},
		})
		r = robot.New(world, ball, cfg, robot.Spawn{ID: 1, Team: robot.Yellow})
	})

	Describe("kicking a resting ball", func() {
		BeforeEach(func() {
			placeBall()
			Expect(r.Kicker().IsTouchingBall()).To(BeTrue())
		})

		It("launches it along the heading at the kick speed", func() {
			r.Submit(robot.Command{KickFlat: 3})
			r.Step()

			v := ball.LinearVelocity()
			Expect(v.Norm()).To(BeNumerically("~", 3.0, 1e-9))
			Expect(v.X).To(BeNumerically("~", 3.0, 1e-9))
			Expect(ball.LastToucher()).To(Equal(1))
			Expect(r.Kicker().Mode()).To(Equal(robot.Kicking))
		})

		It("sends the ball away from the robot", func() {
			r.Kicker().Kick(3, 0)
			for i := 0; i < 10; i++ {
				tick()
			}
			x, _ := r.XY()
			Expect(ball.Position().X).To(BeNumerically(">", x+0.3))
			Expect(r.Kicker().IsTouchingBall()).To(BeFalse())
		})

		It("lifts the ball on a chip kick", func() {
			r.Kicker().Kick(1, 2)
			peak := 0.0
			for i := 0; i < 30; i++ {
				world.Step(cfg.DeltaTime())
				peak = math.Max(peak, ball.Position().Z)
			}
			Expect(peak).To(BeNumerically(">", 0.15))
		})
	})

	Describe("dribbling", func() {
		It("keeps spinning the ball while it stays on the paddle", func() {
			placeBall()
			r.Submit(robot.Command{Spinner: true})
			r.Step()
			Expect(r.Kicker().Mode()).To(Equal(robot.Rolling))
			Expect(ball.AngularVelocity().Y).To(BeNumerically("<", 0))
			Expect(ball.LastToucher()).To(Equal(1))
		})

		It("stops the roller on a command without spinner", func() {
			r.Submit(robot.Command{Spinner: true})
			r.Step()
			r.Submit(robot.Command{})
			r.Step()
			Expect(r.Kicker().Mode()).To(Equal(robot.Idle))
		})
	})

	Describe("disabling mid-roll", func() {
		BeforeEach(func() {
			r.Submit(robot.Command{Mode: robot.DriveVelocity, VX: 0.5, Spinner: true})
			tick()
			r.SetEnabled(false)
		})

		It("zeroes wheels and roller on the next tick only", func() {
			tick()
			Expect(r.Speeds()).To(Equal([robot.NumWheels]float64{}))
			Expect(r.Kicker().Roller()).To(Equal(0))

			r.SetSpeed(2, 1.5)
			Expect(func() {
				for i := 0; i < 5; i++ {
					tick()
				}
			}).NotTo(Panic())
			Expect(r.Speed(2)).To(Equal(1.5))
			Expect(r.Wheel(2).Motor().Velocity()).To(Equal(0.0))
		})

		It("brakes the chassis", func() {
			tick()
			tick()
			Expect(r.Chassis().LinearVelocity().Norm()).To(BeNumerically("<", 1e-9))
		})
	})

	Describe("snapshot", func() {
		It("reports the live state", func() {
			r.SetXY(-1, 0.5)
			r.SetDir(-90)
			s := r.Snapshot()
			Expect(s.ID).To(Equal(1))
			Expect(s.Team).To(Equal(robot.Yellow))
			Expect(s.X).To(BeNumerically("~", -1, 1e-12))
			Expect(s.Y).To(BeNumerically("~", 0.5, 1e-12))
			Expect(s.Dir).To(BeNumerically("~", -90, 1e-6))
			Expect(s.Enabled).To(BeTrue())
			Expect(s.Kicker).To(Equal(robot.Idle))
		})
	})
})
