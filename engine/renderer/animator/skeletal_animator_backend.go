package animator

import (
	"github.com/go-gl/mathgl/mgl32"
)

// skeletalAnimatorBackendImpl samples the active clip at every node that has a channel
// and falls back to the authored transform everywhere else.
type skeletalAnimatorBackendImpl struct{}

var _ AnimatorBackend = &skeletalAnimatorBackendImpl{}

// newSkeletalAnimatorBackend creates the clip-sampling backend.
//
// Returns:
//   - AnimatorBackend: a new skeletal backend
func newSkeletalAnimatorBackend() AnimatorBackend {
	return &skeletalAnimatorBackendImpl{}
}

func (s *skeletalAnimatorBackendImpl) SamplesClips() bool {
	return true
}

func (s *skeletalAnimatorBackendImpl) Evaluate(in PoseInput, out []mgl32.Mat4) error {
	w := &poseWalker{in: in, sample: true, out: out}
	return w.run()
}
