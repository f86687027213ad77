package animator

import (
	"log"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithModel is an option builder that assigns the Model to evaluate.
// The animator clones the model's bone registry so instances never share pose state.
//
// Parameters:
//   - m: the Model to associate with this animator
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the model option to an animator
func WithModel(m model.Model) AnimatorBuilderOption {
	return func(a *animator) {
		a.model = m
	}
}

// WithClip is an option builder that selects the initial clip by index.
// An index past the last clip leaves no clip selected. The first clip is selected by default.
//
// Parameters:
//   - index: the clip index
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the clip option to an animator
func WithClip(index int) AnimatorBuilderOption {
	return func(a *animator) {
		a.clipIndex = index
	}
}

// WithClipName is an option builder that selects the initial clip by name.
// An unknown name is logged and the default clip is used instead.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the clip name option to an animator
func WithClipName(name string) AnimatorBuilderOption {
	return func(a *animator) {
		a.clipName = name
	}
}

// WithDefaultTicksPerSecond is an option builder that sets the tick rate used for clips that report zero.
// Non-positive values are ignored.
//
// Parameters:
//   - tps: the default ticks per second
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the tick rate option to an animator
func WithDefaultTicksPerSecond(tps float64) AnimatorBuilderOption {
	return func(a *animator) {
		if tps > 0 {
			a.defaultTPS = tps
		}
	}
}

// WithFailurePolicy is an option builder that sets how failed frames are committed.
//
// Parameters:
//   - p: the failure policy
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the policy option to an animator
func WithFailurePolicy(p FailurePolicy) AnimatorBuilderOption {
	return func(a *animator) {
		a.policy = p
	}
}

// WithLogger is an option builder that redirects diagnostics. A nil logger is ignored.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger option to an animator
func WithLogger(l *log.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if l != nil {
			a.logger = l
		}
	}
}
