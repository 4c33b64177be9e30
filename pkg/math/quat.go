package math

import "github.com/go-gl/mathgl/mgl32"

// Quat is a rotation quaternion. W is the scalar part; documents store the
// components as X, Y, Z, W.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns a rotation of angle radians around a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	return quatFromMgl(mgl32.QuatRotate(angle, mgl32.Vec3(axis.Array())))
}

func quatFromMgl(q mgl32.Quat) Quat {
	return Quat{X: q.X(), Y: q.Y(), Z: q.Z(), W: q.W}
}

func (q Quat) mgl() mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

// Normalize returns q scaled to unit length. A zero quaternion becomes the identity.
func (q Quat) Normalize() Quat {
	if q.mgl().Len() < 1e-4 {
		return QuatIdentity()
	}
	return quatFromMgl(q.mgl().Normalize())
}

// Dot returns the 4D dot product.
func (q Quat) Dot(other Quat) float32 {
	return q.mgl().Dot(other.mgl())
}

// SameRotation reports whether q and other describe the same rotation
// within eps. q and -q are equivalent.
func (q Quat) SameRotation(other Quat, eps float32) bool {
	d := q.Normalize().Dot(other.Normalize())
	if d < 0 {
		d = -d
	}
	return 1-d <= eps
}

// Array returns the components in X, Y, Z, W order.
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// ToMat4 returns the rotation matrix of the normalized quaternion.
func (q Quat) ToMat4() Mat4 {
	return Mat4(q.Normalize().mgl().Mat4())
}
