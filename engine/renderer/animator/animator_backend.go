package animator

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// AnimatorBackendType identifies the type of pose backend used by an Animator.
type AnimatorBackendType int

const (
	// BackendTypeStatic evaluates the rest pose from the authored node transforms and ignores clips.
	BackendTypeStatic AnimatorBackendType = iota

	// BackendTypeSkeletal samples the active animation clip for every animated node.
	BackendTypeSkeletal
)

func (t AnimatorBackendType) String() string {
	switch t {
	case BackendTypeStatic:
		return "static"
	case BackendTypeSkeletal:
		return "skeletal"
	default:
		return fmt.Sprintf("AnimatorBackendType(%d)", int(t))
	}
}

// PoseInput is everything a backend needs to evaluate one frame.
type PoseInput struct {
	// Root is the model's scene graph root.
	Root *model.Node

	// Bones maps node names to palette indices and offsets.
	Bones skeleton.Registry

	// GlobalInverse is the inverse of the root node transform.
	GlobalInverse mgl32.Mat4

	// Clip is the active clip. Backends that do not sample clips ignore it.
	Clip *model.AnimationClip

	// Tick is the sample time within the clip, in ticks.
	Tick float64
}

// AnimatorBackend evaluates bone palettes for an Animator.
type AnimatorBackend interface {
	// SamplesClips reports whether the backend needs an active clip.
	//
	// Returns:
	//   - bool: true if Evaluate reads PoseInput.Clip and PoseInput.Tick
	SamplesClips() bool

	// Evaluate writes the final transform of every bone reached from in.Root into out.
	// out must have in.Bones.Len() entries and should be reset to identity by the caller;
	// bones the traversal does not reach are left untouched.
	//
	// Parameters:
	//   - in: the frame input
	//   - out: the palette to fill, indexed by bone index
	//
	// Returns:
	//   - error: the joined *NodeError values for nodes whose channel failed to sample, or nil
	Evaluate(in PoseInput, out []mgl32.Mat4) error
}

// NodeError reports a node whose local transform could not be sampled.
// The node was evaluated with an identity local transform instead.
type NodeError struct {
	Node  string
	Track Track
	Err   error
}

func (e *NodeError) Error() string {
	if e.Track == "" {
		return fmt.Sprintf("node %q: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("node %q %s track: %v", e.Node, e.Track, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// poseWalker is the depth-first traversal shared by the backends.
type poseWalker struct {
	in     PoseInput
	sample bool
	out    []mgl32.Mat4
	errs   []error
}

func (w *poseWalker) run() error {
	if w.in.Root == nil {
		return nil
	}
	w.visit(w.in.Root, mgl32.Ident4())
	return errors.Join(w.errs...)
}

func (w *poseWalker) visit(node *model.Node, parent mgl32.Mat4) {
	local := node.Transform
	if w.sample && w.in.Clip != nil {
		if ch := w.in.Clip.Channel(node.Name); ch != nil {
			m, err := SampleChannel(ch, w.in.Tick)
			if err != nil {
				w.errs = append(w.errs, newNodeError(node.Name, err))
				m = mgl32.Ident4()
			}
			local = m
		}
	}

	world := parent.Mul4(local)
	if idx, ok := w.in.Bones.Index(node.Name); ok && idx < len(w.out) {
		w.out[idx] = w.in.GlobalInverse.Mul4(world).Mul4(w.in.Bones.Offset(idx))
	}

	for _, child := range node.Children {
		w.visit(child, world)
	}
}

func newNodeError(node string, err error) *NodeError {
	var te *TrackError
	if errors.As(err, &te) {
		return &NodeError{Node: node, Track: te.Track, Err: te.Err}
	}
	return &NodeError{Node: node, Err: err}
}
