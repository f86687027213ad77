package animator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Errors returned by the keyframe samplers.
var (
	ErrEmptyTrack     = model.ErrEmptyTrack
	ErrUnsortedKeys   = model.ErrUnsortedKeys
	ErrTimeOutOfRange = errors.New("sample time outside keyframe range")
)

// SamplePosition samples a translation track at time t (in ticks).
//
// Parameters:
//   - keys: the translation keyframes, sorted ascending by time
//   - t: the sample time in ticks
//
// Returns:
//   - mgl32.Vec3: the interpolated translation
//   - error: ErrEmptyTrack, ErrTimeOutOfRange or ErrUnsortedKeys on malformed input
func SamplePosition(keys []model.VectorKeyframe, t float64) (mgl32.Vec3, error) {
	return sampleVector(keys, t)
}

// SampleScale samples a scale track at time t (in ticks).
//
// Parameters:
//   - keys: the scale keyframes, sorted ascending by time
//   - t: the sample time in ticks
//
// Returns:
//   - mgl32.Vec3: the interpolated scale
//   - error: ErrEmptyTrack, ErrTimeOutOfRange or ErrUnsortedKeys on malformed input
func SampleScale(keys []model.VectorKeyframe, t float64) (mgl32.Vec3, error) {
	return sampleVector(keys, t)
}

// SampleRotation samples a rotation track at time t (in ticks) using shortest-path
// spherical interpolation. Interpolated results are always unit length.
//
// Parameters:
//   - keys: the rotation keyframes, sorted ascending by time
//   - t: the sample time in ticks
//
// Returns:
//   - mgl32.Quat: the interpolated rotation
//   - error: ErrEmptyTrack, ErrTimeOutOfRange or ErrUnsortedKeys on malformed input
func SampleRotation(keys []model.QuaternionKeyframe, t float64) (mgl32.Quat, error) {
	switch len(keys) {
	case 0:
		return mgl32.QuatIdent(), ErrEmptyTrack
	case 1:
		return keys[0].Value, nil
	}

	i, factor, err := findKey(len(keys), func(k int) float64 { return keys[k].Time }, t)
	if err != nil {
		return mgl32.QuatIdent(), err
	}
	if factor == 0 {
		return keys[i].Value.Normalize(), nil
	}
	return common.SlerpShortest(keys[i].Value, keys[i+1].Value, factor), nil
}

// SampleChannel samples all three tracks of a channel and composes the local transform T * R * S.
//
// Parameters:
//   - ch: the channel to sample
//   - t: the sample time in ticks
//
// Returns:
//   - mgl32.Mat4: the local transform
//   - error: a *TrackError naming the first failing track
func SampleChannel(ch *model.AnimationChannel, t float64) (mgl32.Mat4, error) {
	pos, err := SamplePosition(ch.PositionKeys, t)
	if err != nil {
		return mgl32.Ident4(), &TrackError{Track: TrackPosition, Time: t, Err: err}
	}
	rot, err := SampleRotation(ch.RotationKeys, t)
	if err != nil {
		return mgl32.Ident4(), &TrackError{Track: TrackRotation, Time: t, Err: err}
	}
	scale, err := SampleScale(ch.ScaleKeys, t)
	if err != nil {
		return mgl32.Ident4(), &TrackError{Track: TrackScale, Time: t, Err: err}
	}
	return common.ComposeTRS(pos, rot, scale), nil
}

// Track names a keyframe track within a channel.
type Track string

const (
	TrackPosition Track = "position"
	TrackRotation Track = "rotation"
	TrackScale    Track = "scale"
)

// TrackError reports a sampling failure on one track.
type TrackError struct {
	Track Track
	Time  float64
	Err   error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("%s track at tick %g: %v", e.Track, e.Time, e.Err)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}

func sampleVector(keys []model.VectorKeyframe, t float64) (mgl32.Vec3, error) {
	switch len(keys) {
	case 0:
		return mgl32.Vec3{}, ErrEmptyTrack
	case 1:
		return keys[0].Value, nil
	}

	i, factor, err := findKey(len(keys), func(k int) float64 { return keys[k].Time }, t)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	if factor == 0 {
		return keys[i].Value, nil
	}
	return common.LerpVec3(keys[i].Value, keys[i+1].Value, factor), nil
}

// findKey scans a track of n >= 2 keys for the first i with time(i) <= t < time(i+1) and
// returns i with the interpolation factor toward key i+1. A time equal to the last key's
// time holds the last key and returns i = n-1 with factor 0.
func findKey(n int, timeAt func(int) float64, t float64) (int, float32, error) {
	if math.IsNaN(t) || t < timeAt(0) {
		return 0, 0, fmt.Errorf("tick %g before first key %g: %w", t, timeAt(0), ErrTimeOutOfRange)
	}

	last := timeAt(n - 1)
	if t > last {
		return 0, 0, fmt.Errorf("tick %g after last key %g: %w", t, last, ErrTimeOutOfRange)
	}

	for i := 0; i < n-1; i++ {
		next := timeAt(i + 1)
		if t >= next {
			continue
		}
		start := timeAt(i)
		delta := next - start
		factor := (t - start) / delta
		if delta <= 0 || factor < 0 || factor > 1 {
			return 0, 0, fmt.Errorf("keys %d..%d span [%g, %g]: %w", i, i+1, start, next, ErrUnsortedKeys)
		}
		return i, float32(factor), nil
	}

	return n - 1, 0, nil
}
