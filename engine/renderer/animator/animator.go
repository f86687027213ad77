package animator

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTicksPerSecond is used when a clip does not report its own sample rate.
const DefaultTicksPerSecond = 25.0

// Frame-level errors. These abort the frame before any node is evaluated.
var (
	ErrInvalidDuration = errors.New("clip duration must be non-negative and finite")
	ErrInvalidTime     = errors.New("elapsed time must be finite")
	ErrNoClip          = errors.New("no animation clip selected")
	ErrNoModel         = errors.New("animator has no model")
)

// FailurePolicy decides what an Animator commits when a frame fails to evaluate.
type FailurePolicy int

const (
	// PolicyRetainLastPose discards the failed frame and keeps the last committed pose.
	PolicyRetainLastPose FailurePolicy = iota

	// PolicySubstituteIdentity commits the frame with identity transforms wherever evaluation failed.
	PolicySubstituteIdentity
)

func (p FailurePolicy) String() string {
	switch p {
	case PolicyRetainLastPose:
		return "retain_last_pose"
	case PolicySubstituteIdentity:
		return "substitute_identity"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy parses the names produced by FailurePolicy.String.
// The empty string selects PolicyRetainLastPose.
//
// Parameters:
//   - s: the policy name
//
// Returns:
//   - FailurePolicy: the parsed policy
//   - error: an error if s is not a known policy
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "retain_last_pose":
		return PolicyRetainLastPose, nil
	case "substitute_identity":
		return PolicySubstituteIdentity, nil
	default:
		return PolicyRetainLastPose, fmt.Errorf("unknown failure policy %q", s)
	}
}

// PoseResult is the outcome of evaluating one frame.
type PoseResult struct {
	// Matrices holds one final bone transform per registered bone, in bone index order.
	// It always has BoneCount entries, even when Err is set.
	Matrices []mgl32.Mat4

	// AnimationTime is the sampled position within the clip, in ticks.
	AnimationTime float64

	// Err is nil for a clean frame. Node failures are joined *NodeError values.
	Err error
}

// OK reports whether the frame evaluated without errors.
func (r PoseResult) OK() bool {
	return r.Err == nil
}

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	backendType AnimatorBackendType
	backend     AnimatorBackend
	model       model.Model
	bones       skeleton.Registry

	clipIndex  int
	clipName   string
	defaultTPS float64
	policy     FailurePolicy
	logger     *log.Logger

	scratch  []mgl32.Mat4
	failures int
	lastErr  string
}

// Animator evaluates skeletal poses for one animated instance of a Model.
//
// Each Animator owns a private copy of the model's bone registry, so many animators can
// share one Model (scene graph and clips are read-only) while keeping independent poses.
// An Animator is safe for concurrent use; ComputePose holds its lock for the whole frame.
type Animator interface {
	// Model returns the Model this animator evaluates, or nil if none was set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// BackendType returns the type of backend this animator is using.
	//
	// Returns:
	//   - AnimatorBackendType: BackendTypeStatic or BackendTypeSkeletal
	BackendType() AnimatorBackendType

	// Registry returns this instance's bone registry. Its final transforms hold the last committed pose.
	//
	// Returns:
	//   - skeleton.Registry: the per-instance registry
	Registry() skeleton.Registry

	// SetClip selects the active clip by index.
	//
	// Parameters:
	//   - index: the clip index within Model().Animations()
	//
	// Returns:
	//   - error: ErrNoClip (wrapped) if the index is out of range
	SetClip(index int) error

	// SetClipByName selects the active clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - error: ErrNoClip (wrapped) if no clip has that name
	SetClipByName(name string) error

	// ClipIndex returns the active clip index, or -1 if none is selected.
	//
	// Returns:
	//   - int: the active clip index
	ClipIndex() int

	// Clip returns the active clip, or nil if none is selected.
	//
	// Returns:
	//   - *model.AnimationClip: the active clip
	Clip() *model.AnimationClip

	// ComputePose evaluates the pose at the given elapsed time and commits it according to the failure policy.
	// Elapsed time is converted to ticks with the clip's rate (or the default) and wrapped into the clip,
	// so playback always loops.
	//
	// Parameters:
	//   - seconds: elapsed playback time in seconds
	//
	// Returns:
	//   - PoseResult: the bone palette, the sampled tick and any frame error
	ComputePose(seconds float64) PoseResult

	// BoneMatrices returns a copy of the last committed pose.
	//
	// Returns:
	//   - []mgl32.Mat4: one matrix per bone, in index order
	BoneMatrices() []mgl32.Mat4

	// BoneCount returns the number of bones in this instance's registry.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// FailureCount returns how many frames have failed since construction or the last Reset.
	//
	// Returns:
	//   - int: the failed frame count
	FailureCount() int

	// Reset restores the identity pose and clears failure tracking. The active clip is kept.
	Reset()
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator with the specified backend type.
// The backend is created based on the type and then configured using the provided options.
// Without WithModel the animator has no bones and every frame fails with ErrNoModel.
//
// Parameters:
//   - backendType: the type of pose backend to use (BackendTypeStatic or BackendTypeSkeletal)
//   - options: variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: a new instance of Animator configured with the specified backend and options
func NewAnimator(backendType AnimatorBackendType, options ...AnimatorBuilderOption) Animator {
	a := &animator{
		mu:          &sync.Mutex{},
		backendType: backendType,
		clipIndex:   -1,
		defaultTPS:  DefaultTicksPerSecond,
		logger:      log.Default(),
	}
	switch backendType {
	case BackendTypeSkeletal:
		a.backend = newSkeletalAnimatorBackend()
	case BackendTypeStatic:
		fallthrough
	default:
		a.backend = newStaticAnimatorBackend()
	}
	for _, opt := range options {
		opt(a)
	}

	if a.model != nil {
		a.bones = a.model.Bones().Clone()
		a.bones.ResetFinalTransforms()
		if a.clipName != "" {
			if err := a.selectClipByName(a.clipName); err != nil {
				a.logger.Printf("[Animator] %s: %v", a.model.Name(), err)
			}
		}
		if a.clipIndex < 0 && a.model.AnimationCount() > 0 {
			a.clipIndex = 0
		}
	} else {
		a.bones = skeleton.NewRegistry()
	}
	a.scratch = make([]mgl32.Mat4, a.bones.Len())
	return a
}

func (a *animator) Model() model.Model {
	return a.model
}

func (a *animator) BackendType() AnimatorBackendType {
	return a.backendType
}

func (a *animator) Registry() skeleton.Registry {
	return a.bones
}

func (a *animator) SetClip(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	if a.model != nil {
		count = a.model.AnimationCount()
	}
	if index < 0 || index >= count {
		return fmt.Errorf("clip %d of %d: %w", index, count, ErrNoClip)
	}
	a.clipIndex = index
	return nil
}

func (a *animator) SetClipByName(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectClipByName(name)
}

func (a *animator) selectClipByName(name string) error {
	if a.model == nil {
		return fmt.Errorf("clip %q: %w", name, ErrNoModel)
	}
	i := a.model.GetAnimationIndex(name)
	if i < 0 {
		return fmt.Errorf("clip %q: %w", name, ErrNoClip)
	}
	a.clipIndex = i
	return nil
}

func (a *animator) ClipIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clipIndex
}

func (a *animator) Clip() *model.AnimationClip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeClip()
}

func (a *animator) activeClip() *model.AnimationClip {
	if a.model == nil || a.clipIndex < 0 {
		return nil
	}
	clips := a.model.Animations()
	if a.clipIndex >= len(clips) {
		return nil
	}
	return clips[a.clipIndex]
}

func (a *animator) ComputePose(seconds float64) PoseResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.model == nil {
		return a.fail(0, ErrNoModel, false)
	}

	in := PoseInput{
		Root:          a.model.Root(),
		Bones:         a.bones,
		GlobalInverse: a.model.GlobalInverseTransform(),
	}

	if a.backend.SamplesClips() {
		clip := a.activeClip()
		if clip == nil {
			return a.fail(0, ErrNoClip, false)
		}
		tick, err := AnimationTime(seconds, clip, a.defaultTPS)
		if err != nil {
			return a.fail(0, fmt.Errorf("clip %q: %w", clip.Name, err), false)
		}
		in.Clip = clip
		in.Tick = tick
	} else if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return a.fail(0, ErrInvalidTime, false)
	}

	for i := range a.scratch {
		a.scratch[i] = mgl32.Ident4()
	}
	if err := a.backend.Evaluate(in, a.scratch); err != nil {
		return a.fail(in.Tick, err, true)
	}

	a.commit()
	a.lastErr = ""
	return PoseResult{
		Matrices:      a.bones.Matrices(),
		AnimationTime: in.Tick,
	}
}

// fail records a failed frame and applies the failure policy.
// evaluated is true when scratch holds a full frame with identity substitutions.
func (a *animator) fail(tick float64, err error, evaluated bool) PoseResult {
	a.failures++
	if key := fmt.Sprintf("%d|%s", a.clipIndex, failureKey(err)); key != a.lastErr {
		a.lastErr = key
		name := "<nil>"
		if a.model != nil {
			name = a.model.Name()
		}
		a.logger.Printf("[Animator] %s: frame failed (%s): %v", name, a.policy, err)
	}

	if a.policy == PolicySubstituteIdentity {
		if !evaluated {
			for i := range a.scratch {
				a.scratch[i] = mgl32.Ident4()
			}
		}
		a.commit()
	}

	return PoseResult{
		Matrices:      a.bones.Matrices(),
		AnimationTime: tick,
		Err:           err,
	}
}

// frameSentinels are the errors a failure key is reduced to.
var frameSentinels = []error{
	ErrEmptyTrack, ErrTimeOutOfRange, ErrUnsortedKeys,
	ErrInvalidDuration, ErrInvalidTime, ErrNoClip, ErrNoModel,
}

// failureKey identifies a frame failure by failing node, track and sentinel, so the same
// defect reached at a different tick yields the same key.
func failureKey(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			parts = append(parts, failureKey(e))
		}
		return strings.Join(parts, ";")
	}

	cause := err.Error()
	for _, sentinel := range frameSentinels {
		if errors.Is(err, sentinel) {
			cause = sentinel.Error()
			break
		}
	}
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Node + "/" + string(ne.Track) + "/" + cause
	}
	return cause
}

func (a *animator) commit() {
	// scratch is sized from the registry, so the lengths always agree.
	_ = a.bones.SetFinalTransforms(a.scratch)
}

func (a *animator) BoneMatrices() []mgl32.Mat4 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bones.Matrices()
}

func (a *animator) BoneCount() int {
	return a.bones.Len()
}

func (a *animator) FailureCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failures
}

func (a *animator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bones.ResetFinalTransforms()
	a.failures = 0
	a.lastErr = ""
}

// AnimationTime converts elapsed seconds into a looping position within clip, in ticks.
// The result is in [0, clip.Duration); negative elapsed time wraps from the end.
// A zero-duration clip is a static pose and always evaluates at tick 0.
//
// Parameters:
//   - seconds: elapsed playback time in seconds
//   - clip: the clip being played
//   - defaultTicksPerSecond: the rate to use when the clip reports zero
//
// Returns:
//   - float64: the clip position in ticks
//   - error: ErrInvalidTime or ErrInvalidDuration
func AnimationTime(seconds float64, clip *model.AnimationClip, defaultTicksPerSecond float64) (float64, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, ErrInvalidTime
	}
	duration := clip.Duration
	if !(duration >= 0) || math.IsInf(duration, 0) {
		return 0, fmt.Errorf("duration %g: %w", duration, ErrInvalidDuration)
	}
	if duration == 0 {
		return 0, nil
	}
	tps := common.Coalesce(clip.TicksPerSecond, defaultTicksPerSecond)
	if !(tps > 0) || math.IsInf(tps, 0) {
		return 0, fmt.Errorf("ticks per second %g: %w", tps, ErrInvalidDuration)
	}

	t := math.Mod(seconds*tps, duration)
	if t < 0 {
		t += duration
	}
	if t >= duration {
		t = 0
	}
	return t, nil
}
