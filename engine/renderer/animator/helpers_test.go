package animator

import (
	"io"
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

var quietLogger = log.New(io.Discard, "", 0)

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

func constantChannel(node string, pos mgl32.Vec3, rot mgl32.Quat) model.AnimationChannel {
	return model.AnimationChannel{
		NodeName:     node,
		PositionKeys: []model.VectorKeyframe{{Value: pos}},
		RotationKeys: []model.QuaternionKeyframe{{Value: rot}},
		ScaleKeys:    []model.VectorKeyframe{{Value: mgl32.Vec3{1, 1, 1}}},
	}
}

// chainModel builds Armature -> upper -> lower, with lower one unit above upper.
// Both bones use identity offsets so final transforms equal world transforms.
func chainModel(clips ...*model.AnimationClip) model.Model {
	lower := model.NewNode("lower", mgl32.Translate3D(0, 1, 0))
	upper := model.NewNode("upper", mgl32.Ident4(), lower)
	root := model.NewNode("Armature", mgl32.Ident4(), upper)

	bones := skeleton.NewRegistry()
	bones.RegisterOrGet("upper", mgl32.Ident4())
	bones.RegisterOrGet("lower", mgl32.Ident4())

	return model.NewModel(
		model.WithName("chain"),
		model.WithRoot(root),
		model.WithBones(bones),
		model.WithAnimations(clips),
	)
}
