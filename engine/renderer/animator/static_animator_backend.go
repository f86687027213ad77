package animator

import (
	"github.com/go-gl/mathgl/mgl32"
)

// staticAnimatorBackendImpl evaluates the rest pose. Every node uses its authored transform,
// so the resulting palette depends only on the scene graph and bone offsets.
type staticAnimatorBackendImpl struct{}

var _ AnimatorBackend = &staticAnimatorBackendImpl{}

func newStaticAnimatorBackend() AnimatorBackend {
	return &staticAnimatorBackendImpl{}
}

func (s *staticAnimatorBackendImpl) SamplesClips() bool {
	return false
}

func (s *staticAnimatorBackendImpl) Evaluate(in PoseInput, out []mgl32.Mat4) error {
	w := &poseWalker{in: in, out: out}
	return w.run()
}
