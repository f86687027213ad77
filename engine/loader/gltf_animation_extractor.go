package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// gltfTicksPerSecond is the tick rate of imported clips. glTF key times are in seconds.
const gltfTicksPerSecond = 1.0

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor defines the interface for extracting animation data from a parsed glTF document.
// It converts glTF animations into AnimationClips whose channels target nodes by name.
//
// Every channel it produces has all three tracks: a track the glTF animation does not drive holds
// the node's rest value as a single key. Multi-key tracks are padded with held keys so they cover
// the whole clip, which keeps every tick in [0, duration] inside the track's key range.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//
	// Returns:
	//   - *model.AnimationClip: the extracted animation clip
	//   - error: error if extraction fails
	ExtractAnimation(animIndex uint32) (*model.AnimationClip, error)

	// ExtractAllAnimations extracts every animation from the document.
	//
	// Returns:
	//   - []*model.AnimationClip: all extracted animation clips
	//   - error: error if extraction fails
	ExtractAllAnimations() ([]*model.AnimationClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

// channelBuilder collects the tracks of one target node.
type channelBuilder struct {
	node                     uint32
	channel                  model.AnimationChannel
	hasPos, hasRot, hasScale bool
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex uint32) (*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if int(animIndex) >= len(doc.Animations) {
		return nil, errors.Errorf("animation index %d out of range", animIndex)
	}
	anim := doc.Animations[animIndex]

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	// Channels are kept in order of first appearance so imports are deterministic.
	byNode := make(map[uint32]*channelBuilder)
	var order []*channelBuilder
	var duration float64

	for i, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Target.Path == gltf.TRSWeights {
			continue
		}
		node := *ch.Target.Node
		if int(node) >= len(doc.Nodes) {
			return nil, errors.Errorf("animation %q channel %d: node %d out of range", name, i, node)
		}
		if ch.Sampler == nil || int(*ch.Sampler) >= len(anim.Samplers) {
			return nil, errors.Errorf("animation %q channel %d: invalid sampler", name, i)
		}
		sampler := anim.Samplers[*ch.Sampler]
		if sampler.Input == nil || sampler.Output == nil {
			return nil, errors.Errorf("animation %q channel %d: sampler has no input or output", name, i)
		}

		times, err := e.parser.ReadScalars(*sampler.Input)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %q channel %d times", name, i)
		}
		if n := len(times); n > 0 && float64(times[n-1]) > duration {
			duration = float64(times[n-1])
		}

		b, ok := byNode[node]
		if !ok {
			b = &channelBuilder{node: node, channel: model.AnimationChannel{NodeName: gltfNodeName(doc, node)}}
			byNode[node] = b
			order = append(order, b)
		}

		cubic := sampler.Interpolation == gltf.InterpolationCubicSpline
		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			raw, err := e.parser.ReadVec3s(*sampler.Output)
			if err != nil {
				return nil, errors.Wrapf(err, "animation %q channel %d values", name, i)
			}
			values, err := keyValues(raw, len(times), cubic)
			if err != nil {
				return nil, errors.Wrapf(err, "animation %q channel %d", name, i)
			}
			keys := make([]model.VectorKeyframe, len(times))
			for k := range keys {
				keys[k] = model.VectorKeyframe{Time: float64(times[k]), Value: values[k]}
			}
			if ch.Target.Path == gltf.TRSTranslation {
				b.channel.PositionKeys, b.hasPos = keys, true
			} else {
				b.channel.ScaleKeys, b.hasScale = keys, true
			}

		case gltf.TRSRotation:
			raw, err := e.parser.ReadVec4s(*sampler.Output)
			if err != nil {
				return nil, errors.Wrapf(err, "animation %q channel %d values", name, i)
			}
			values, err := keyValues(raw, len(times), cubic)
			if err != nil {
				return nil, errors.Wrapf(err, "animation %q channel %d", name, i)
			}
			keys := make([]model.QuaternionKeyframe, len(times))
			for k := range keys {
				keys[k] = model.QuaternionKeyframe{Time: float64(times[k]), Value: gltfQuat(values[k])}
			}
			b.channel.RotationKeys, b.hasRot = keys, true
		}
	}

	channels := make([]model.AnimationChannel, 0, len(order))
	for _, b := range order {
		t, r, s := gltfNodeRestTRS(doc.Nodes[b.node])
		ch := b.channel
		if !b.hasPos {
			ch.PositionKeys = []model.VectorKeyframe{{Value: t}}
		}
		if !b.hasRot {
			ch.RotationKeys = []model.QuaternionKeyframe{{Value: r}}
		}
		if !b.hasScale {
			ch.ScaleKeys = []model.VectorKeyframe{{Value: s}}
		}
		ch.PositionKeys = padVectorTrack(ch.PositionKeys, duration)
		ch.RotationKeys = padRotationTrack(ch.RotationKeys, duration)
		ch.ScaleKeys = padVectorTrack(ch.ScaleKeys, duration)
		channels = append(channels, ch)
	}

	return model.NewAnimationClip(name, duration, gltfTicksPerSecond, channels), nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() ([]*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	clips := make([]*model.AnimationClip, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.ExtractAnimation(uint32(i))
		if err != nil {
			return nil, errors.Wrapf(err, "animation %d", i)
		}
		clips[i] = clip
	}
	return clips, nil
}

// keyValues returns one value per key. Cubic spline samplers store (in-tangent, value, out-tangent)
// triplets; only the value element is kept and the curve is sampled linearly.
func keyValues[T any](raw []T, keyCount int, cubic bool) ([]T, error) {
	if !cubic {
		if len(raw) < keyCount {
			return nil, errors.Errorf("%d values for %d keys", len(raw), keyCount)
		}
		return raw[:keyCount], nil
	}
	if len(raw) < keyCount*3 {
		return nil, errors.Errorf("%d spline values for %d keys", len(raw), keyCount)
	}
	out := make([]T, keyCount)
	for i := range out {
		out[i] = raw[i*3+1]
	}
	return out, nil
}

func padVectorTrack(keys []model.VectorKeyframe, duration float64) []model.VectorKeyframe {
	if len(keys) < 2 {
		return keys
	}
	if first := keys[0]; first.Time > 0 {
		keys = append([]model.VectorKeyframe{{Time: 0, Value: first.Value}}, keys...)
	}
	if last := keys[len(keys)-1]; last.Time < duration {
		keys = append(keys, model.VectorKeyframe{Time: duration, Value: last.Value})
	}
	return keys
}

func padRotationTrack(keys []model.QuaternionKeyframe, duration float64) []model.QuaternionKeyframe {
	if len(keys) < 2 {
		return keys
	}
	if first := keys[0]; first.Time > 0 {
		keys = append([]model.QuaternionKeyframe{{Time: 0, Value: first.Value}}, keys...)
	}
	if last := keys[len(keys)-1]; last.Time < duration {
		keys = append(keys, model.QuaternionKeyframe{Time: duration, Value: last.Value})
	}
	return keys
}
