package scene

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/animator"
	"github.com/go-gl/mathgl/mgl32"
)

// CharacterBuilderOption is a functional option for configuring a Character.
// Use the With* functions to create options.
type CharacterBuilderOption func(c *character)

// WithEnabled sets whether the character starts enabled.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - CharacterBuilderOption: option function to apply
func WithEnabled(enabled bool) CharacterBuilderOption {
	return func(c *character) {
		c.enabled.Store(enabled)
	}
}

// WithPosition sets the initial world position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - CharacterBuilderOption: option function to apply
func WithPosition(x, y, z float32) CharacterBuilderOption {
	return func(c *character) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the initial Euler rotation in degrees.
//
// Parameters:
//   - rx, ry, rz: rotation angles in degrees
//
// Returns:
//   - CharacterBuilderOption: option function to apply
func WithRotation(rx, ry, rz float32) CharacterBuilderOption {
	return func(c *character) {
		c.rotation = mgl32.Vec3{rx, ry, rz}
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale components
//
// Returns:
//   - CharacterBuilderOption: option function to apply
func WithScale(sx, sy, sz float32) CharacterBuilderOption {
	return func(c *character) {
		c.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithAnimator uses an existing animator instead of building one.
// The animator should evaluate the same model the character instances.
//
// Parameters:
//   - a: the animator
//
// Returns:
//   - CharacterBuilderOption: option function to apply
func WithAnimator(a animator.Animator) CharacterBuilderOption {
	return func(c *character) {
		c.animator = a
	}
}

// WithAnimatorOptions passes options to the animator the character builds for itself.
// Ignored when WithAnimator is also given.
//
// Parameters:
//   - options: the animator options, e.g. animator.WithClipName
//
// Returns:
//   - CharacterBuilderOption: option function to apply
func WithAnimatorOptions(options ...animator.AnimatorBuilderOption) CharacterBuilderOption {
	return func(c *character) {
		c.animatorOptions = append(c.animatorOptions, options...)
	}
}
