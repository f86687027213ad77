package scene

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/animator"
	"github.com/go-gl/mathgl/mgl32"
)

// character is the implementation of the Character interface.
type character struct {
	mu       *sync.RWMutex
	name     string
	enabled  atomic.Bool
	mdl      model.Model
	animator animator.Animator

	// animatorOptions are applied when the character builds its own animator
	animatorOptions []animator.AnimatorBuilderOption

	position mgl32.Vec3
	rotation mgl32.Vec3 // Euler angles in degrees
	scale    mgl32.Vec3
}

// Character is one placed, animated instance of a Model.
// The Model is shared read-only; the character's Animator owns its pose.
type Character interface {
	// Name returns the character's unique name within a scene.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled reports whether the scene updates and draws this character.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables the character.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Model returns the model this character instances.
	//
	// Returns:
	//   - model.Model: the model
	Model() model.Model

	// Animator returns the animator evaluating this character's pose.
	//
	// Returns:
	//   - animator.Animator: the animator
	Animator() animator.Animator

	// Position returns the world position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the Euler rotation in degrees, applied X then Y then Z.
	//
	// Returns:
	//   - mgl32.Vec3: the rotation in degrees
	Rotation() mgl32.Vec3

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// SetPosition sets the world position.
	//
	// Parameters:
	//   - p: the position
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the Euler rotation in degrees.
	//
	// Parameters:
	//   - r: the rotation in degrees
	SetRotation(r mgl32.Vec3)

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - s: the scale
	SetScale(s mgl32.Vec3)

	// ModelMatrix composes the placement as T * Rz * Ry * Rx * S.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	ModelMatrix() mgl32.Mat4
}

var _ Character = &character{}

// NewCharacter creates a Character instancing m.
// Unless WithAnimator is given, the character builds its own animator: skeletal when the model
// has clips, static (rest pose) otherwise.
//
// Parameters:
//   - name: the character name
//   - m: the model to instance
//   - options: functional options to configure the character
//
// Returns:
//   - Character: the new character, enabled, at the origin with unit scale
func NewCharacter(name string, m model.Model, options ...CharacterBuilderOption) Character {
	c := &character{
		mu:    &sync.RWMutex{},
		name:  name,
		mdl:   m,
		scale: mgl32.Vec3{1, 1, 1},
	}
	c.enabled.Store(true)
	for _, opt := range options {
		opt(c)
	}

	if c.animator == nil {
		backendType := animator.BackendTypeStatic
		if m != nil && m.AnimationCount() > 0 {
			backendType = animator.BackendTypeSkeletal
		}
		opts := append([]animator.AnimatorBuilderOption{animator.WithModel(m)}, c.animatorOptions...)
		c.animator = animator.NewAnimator(backendType, opts...)
	}
	c.animatorOptions = nil
	return c
}

func (c *character) Name() string {
	return c.name
}

func (c *character) Enabled() bool {
	return c.enabled.Load()
}

func (c *character) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

func (c *character) Model() model.Model {
	return c.mdl
}

func (c *character) Animator() animator.Animator {
	return c.animator
}

func (c *character) Position() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *character) Rotation() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rotation
}

func (c *character) Scale() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scale
}

func (c *character) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *character) SetRotation(r mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = r
}

func (c *character) SetScale(s mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scale = s
}

func (c *character) ModelMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return common.EulerModelMatrix(c.position, c.rotation, c.scale)
}
