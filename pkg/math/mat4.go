package math

import "github.com/go-gl/mathgl/mgl32"

// Mat4 is a 4x4 transform as stored in model chunks: four basis rows of four
// floats, translation in the last row. In memory this matches the OpenGL
// column-major layout, so the translation lives at indices 12, 13, 14.
//
//	[m0  m1  m2  m3 ]  basis X
//	[m4  m5  m6  m7 ]  basis Y
//	[m8  m9  m10 m11]  basis Z
//	[m12 m13 m14 m15]  translation
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(other)))
}

// TransformPoint applies m to a point (w = 1).
func (m Mat4) TransformPoint(p [3]float32) [3]float32 {
	return mgl32.TransformCoordinate(mgl32.Vec3(p), mgl32.Mat4(m))
}

// Row returns basis row i (0..3) as stored.
func (m Mat4) Row(i int) [4]float32 {
	return [4]float32{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Translation returns the translation row.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Rotation extracts the rotation with each basis row normalized first,
// so uniform and non-uniform scale do not leak into the quaternion.
func (m Mat4) Rotation() Quat {
	g := mgl32.Mat4(m)
	x := g.Col(0).Vec3().Normalize()
	y := g.Col(1).Vec3().Normalize()
	z := g.Col(2).Vec3().Normalize()
	basis := mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
	return quatFromMgl(mgl32.Mat4ToQuat(basis).Normalize())
}

// ScaleFactors returns the length of each basis row.
func (m Mat4) ScaleFactors() Vec3 {
	g := mgl32.Mat4(m)
	return Vec3{g.Col(0).Vec3().Len(), g.Col(1).Vec3().Len(), g.Col(2).Vec3().Len()}
}

// Decompose splits the matrix into translation and rotation. Scale is dropped.
func (m Mat4) Decompose() (Vec3, Quat) {
	return m.Translation(), m.Rotation()
}

// Compose builds a matrix from translation, rotation and scale.
func Compose(pos Vec3, rot Quat, scale Vec3) Mat4 {
	return Translate(pos.X, pos.Y, pos.Z).Mul(rot.ToMat4()).Mul(Scale(scale.X, scale.Y, scale.Z))
}
