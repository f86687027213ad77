package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func vec3Near(a, b mgl32.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tol {
			return false
		}
	}
	return true
}

func mat4Near(a, b mgl32.Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tol {
			return false
		}
	}
	return true
}
