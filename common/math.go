package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// singularEpsilon is the determinant magnitude below which a matrix is treated as non-invertible.
const singularEpsilon = 1e-12

// ComposeTRS builds a local transform from translation, rotation and scale.
// The result is T * R * S: scale is applied first, then rotation, then translation.
// All matrices are column-major.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion
//   - s: the per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed transform
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// LerpVec3 linearly interpolates between a and b: a + factor*(b-a).
//
// Parameters:
//   - a: the start value (returned exactly when factor is 0)
//   - b: the end value
//   - factor: the interpolation amount in [0, 1]
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, factor float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(factor))
}

// SlerpShortest spherically interpolates from a to b along the shorter arc and returns a unit quaternion.
// When the inputs lie in opposite hemispheres, b is negated before interpolating.
// Inputs do not need to be normalized.
//
// Parameters:
//   - a: the start rotation
//   - b: the end rotation
//   - factor: the interpolation amount in [0, 1]
//
// Returns:
//   - mgl32.Quat: the unit-length interpolated rotation
func SlerpShortest(a, b mgl32.Quat, factor float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, factor).Normalize()
}

// InvertChecked inverts m, reporting whether the matrix was invertible.
// mgl32's Inv returns the zero matrix for singular input, so the determinant is checked first.
//
// Parameters:
//   - m: the matrix to invert
//
// Returns:
//   - mgl32.Mat4: the inverse, or identity if m is singular
//   - bool: true if m was invertible
func InvertChecked(m mgl32.Mat4) (mgl32.Mat4, bool) {
	det := m.Det()
	if math.Abs(float64(det)) < singularEpsilon || math.IsNaN(float64(det)) {
		return mgl32.Ident4(), false
	}
	return m.Inv(), true
}

// EulerModelMatrix builds a model matrix from a position, Euler angles in degrees and a scale.
// The rotation order is Z * Y * X, so the composed matrix is T * Rz * Ry * Rx * S.
//
// Parameters:
//   - position: translation in world space
//   - rotationDeg: rotation angles in degrees around X, Y and Z
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the model-to-world matrix (column-major)
func EulerModelMatrix(position, rotationDeg, scale mgl32.Vec3) mgl32.Mat4 {
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(rotationDeg.X()))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(rotationDeg.Y()))
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(rotationDeg.Z()))

	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(rz).
		Mul4(ry).
		Mul4(rx).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Mat4Finite reports whether every element of m is a finite number.
//
// Parameters:
//   - m: the matrix to check
//
// Returns:
//   - bool: false if any element is NaN or infinite
func Mat4Finite(m mgl32.Mat4) bool {
	for _, v := range m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// IdentityPalette returns a slice of n identity matrices.
//
// Parameters:
//   - n: the number of matrices
//
// Returns:
//   - []mgl32.Mat4: n identity matrices
func IdentityPalette(n int) []mgl32.Mat4 {
	out := make([]mgl32.Mat4, n)
	for i := range out {
		out[i] = mgl32.Ident4()
	}
	return out
}
