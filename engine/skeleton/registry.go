package skeleton

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrLengthMismatch is returned when a matrix slice does not match the registry's bone count.
var ErrLengthMismatch = errors.New("matrix count does not match bone count")

// Bone is a named skeletal joint.
type Bone struct {
	// Name is the bone's unique key. It matches the scene graph node that drives the bone.
	Name string

	// Offset is the inverse bind-pose matrix, taking mesh-space vertices into bone space.
	// It is set once at registration.
	Offset mgl32.Mat4

	// FinalTransform is the skinning matrix produced by the most recent committed pose.
	FinalTransform mgl32.Mat4
}

// registry is the implementation of the Registry interface.
type registry struct {
	bones   []Bone
	indices map[string]int
}

// Registry maps bone names to dense indices and owns the Bone records addressed by them.
//
// Indices are assigned in discovery order starting at 0 and never change once assigned.
// A Registry is per-instance mutable state: it is not safe for concurrent mutation, and two
// animated instances must never share one. Use Clone to derive an instance registry from a
// model's template.
type Registry interface {
	// RegisterOrGet returns the index for name, appending a new Bone with the given offset
	// if the name has not been seen. For a known name the offset argument is ignored.
	//
	// Parameters:
	//   - name: the bone name
	//   - offset: the inverse bind-pose matrix, used only on first registration
	//
	// Returns:
	//   - int: the stable index of the bone
	RegisterOrGet(name string, offset mgl32.Mat4) int

	// Index looks up the index of a bone by name.
	//
	// Parameters:
	//   - name: the bone name
	//
	// Returns:
	//   - int: the bone index, or -1 if not registered
	//   - bool: true if the bone is registered
	Index(name string) (int, bool)

	// Bone returns a copy of the bone record at index i.
	//
	// Parameters:
	//   - i: the bone index
	//
	// Returns:
	//   - Bone: the bone record
	Bone(i int) Bone

	// Offset returns the inverse bind-pose matrix of the bone at index i.
	//
	// Parameters:
	//   - i: the bone index
	//
	// Returns:
	//   - mgl32.Mat4: the offset matrix
	Offset(i int) mgl32.Mat4

	// Len returns the number of registered bones.
	//
	// Returns:
	//   - int: the bone count
	Len() int

	// Names returns the bone names in index order.
	//
	// Returns:
	//   - []string: the bone names
	Names() []string

	// Matrices returns every bone's final transform in index order.
	// The returned slice is a copy with length Len().
	//
	// Returns:
	//   - []mgl32.Mat4: the final transforms
	Matrices() []mgl32.Mat4

	// SetFinalTransforms overwrites every bone's final transform.
	//
	// Parameters:
	//   - matrices: one matrix per bone, in index order
	//
	// Returns:
	//   - error: ErrLengthMismatch if len(matrices) != Len()
	SetFinalTransforms(matrices []mgl32.Mat4) error

	// ResetFinalTransforms sets every bone's final transform to identity.
	ResetFinalTransforms()

	// Clone returns an independent copy of the registry.
	//
	// Returns:
	//   - Registry: the copy
	Clone() Registry
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Parameters:
//   - options: a variadic list of RegistryBuilderOption functions to configure the Registry
//
// Returns:
//   - Registry: the new registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registry{
		indices: make(map[string]int),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) RegisterOrGet(name string, offset mgl32.Mat4) int {
	if idx, ok := r.indices[name]; ok {
		return idx
	}

	idx := len(r.bones)
	r.bones = append(r.bones, Bone{
		Name:           name,
		Offset:         offset,
		FinalTransform: mgl32.Ident4(),
	})
	r.indices[name] = idx
	return idx
}

func (r *registry) Index(name string) (int, bool) {
	idx, ok := r.indices[name]
	if !ok {
		return -1, false
	}
	return idx, true
}

func (r *registry) Bone(i int) Bone {
	return r.bones[i]
}

func (r *registry) Offset(i int) mgl32.Mat4 {
	return r.bones[i].Offset
}

func (r *registry) Len() int {
	return len(r.bones)
}

func (r *registry) Names() []string {
	names := make([]string, len(r.bones))
	for i, b := range r.bones {
		names[i] = b.Name
	}
	return names
}

func (r *registry) Matrices() []mgl32.Mat4 {
	out := make([]mgl32.Mat4, len(r.bones))
	for i, b := range r.bones {
		out[i] = b.FinalTransform
	}
	return out
}

func (r *registry) SetFinalTransforms(matrices []mgl32.Mat4) error {
	if len(matrices) != len(r.bones) {
		return fmt.Errorf("set final transforms: got %d, want %d: %w", len(matrices), len(r.bones), ErrLengthMismatch)
	}
	for i := range r.bones {
		r.bones[i].FinalTransform = matrices[i]
	}
	return nil
}

func (r *registry) ResetFinalTransforms() {
	for i := range r.bones {
		r.bones[i].FinalTransform = mgl32.Ident4()
	}
}

func (r *registry) Clone() Registry {
	c := &registry{
		bones:   make([]Bone, len(r.bones)),
		indices: make(map[string]int, len(r.indices)),
	}
	copy(c.bones, r.bones)
	for name, idx := range r.indices {
		c.indices[name] = idx
	}
	return c
}
