package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

var (
	UnitX = r3.Vector{X: 1}
	UnitY = r3.Vector{Y: 1}
	UnitZ = r3.Vector{Z: 1}
)

func toVec3(v r3.Vector) mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func fromVec3(v mgl64.Vec3) r3.Vector { return r3.Vector{X: v[0], Y: v[1], Z: v[2]} }

// Rotate applies q to v.
func Rotate(q mgl64.Quat, v r3.Vector) r3.Vector {
	return fromVec3(normalized(q).Rotate(toVec3(v)))
}

// AxisAngle builds a rotation of angle radians about axis.
func AxisAngle(axis r3.Vector, angle float64) mgl64.Quat {
	return mgl64.QuatRotate(angle, toVec3(axis.Normalize()))
}

// Yaw builds a rotation of angle radians about the vertical axis.
func Yaw(angle float64) mgl64.Quat {
	return mgl64.QuatRotate(angle, mgl64.Vec3{0, 0, 1})
}

// Forward is the body's local x axis expressed in the world frame.
func Forward(b Body) r3.Vector {
	return Rotate(b.Rotation(), UnitX)
}

// ToLocal expresses world point p in the frame of a body at pos/rot.
func ToLocal(pos r3.Vector, rot mgl64.Quat, p r3.Vector) r3.Vector {
	return Rotate(normalized(rot).Inverse(), p.Sub(pos))
}

// ToWorld is the inverse of ToLocal.
func ToWorld(pos r3.Vector, rot mgl64.Quat, local r3.Vector) r3.Vector {
	return pos.Add(Rotate(rot, local))
}

// normalized treats the zero quaternion as identity.
func normalized(q mgl64.Quat) mgl64.Quat {
	if q.W == 0 && q.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
