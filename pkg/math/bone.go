package math

// Mat3x4 is a packed bone transform: three rows of four floats.
// Row 0 holds the rotation quaternion (x, y, z, w), row 1 the scale and
// row 2 the translation; the fourth float of rows 1 and 2 is unused.
type Mat3x4 [12]float32

// Mat3x4FromMat4 keeps the first three rows of a 4x4 matrix stored with the
// same row layout.
func Mat3x4FromMat4(m Mat4) Mat3x4 {
	var out Mat3x4
	copy(out[:], m[:12])
	return out
}

// Rotation returns row 0 as a quaternion.
func (m Mat3x4) Rotation() Quat {
	return Quat{X: m[0], Y: m[1], Z: m[2], W: m[3]}
}

// Scale returns row 1.
func (m Mat3x4) Scale() Vec3 {
	return Vec3{m[4], m[5], m[6]}
}

// Translation returns row 2.
func (m Mat3x4) Translation() Vec3 {
	return Vec3{m[8], m[9], m[10]}
}

// PackBone builds the packed layout from its components.
func PackBone(pos Vec3, scale Vec3, rot Quat) Mat3x4 {
	return Mat3x4{
		rot.X, rot.Y, rot.Z, rot.W,
		scale.X, scale.Y, scale.Z, 0,
		pos.X, pos.Y, pos.Z, 0,
	}
}
