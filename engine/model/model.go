package model

import (
	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name           string
	root           *Node
	meshes         []*Mesh
	materials      []common.PhongMaterial
	animations     []*AnimationClip
	bones          skeleton.Registry
	globalInverse  mgl32.Mat4
	boundingRadius float32
}

// Model defines the interface for a loaded, processed animated model.
// A Model holds the scene graph, processed meshes, materials, animation clips and the template
// bone registry. Everything reachable from a Model is read-only after construction so a single
// Model may back any number of animated instances; each instance clones Bones() for its own pose.
// It is produced by the Loader after importing and processing a model file.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Root retrieves the root of the scene graph.
	//
	// Returns:
	//   - *Node: the root node
	Root() *Node

	// Meshes retrieves the processed meshes in scene graph order.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// Materials retrieves the material list.
	//
	// Returns:
	//   - []common.PhongMaterial: the materials
	Materials() []common.PhongMaterial

	// Material returns the material at index i, or the default material if i is out of range.
	//
	// Parameters:
	//   - i: the material index
	//
	// Returns:
	//   - common.PhongMaterial: the material
	Material(i int) common.PhongMaterial

	// Skinned reports whether this model has any bones.
	//
	// Returns:
	//   - bool: true if the model has bone data
	Skinned() bool

	// Bones returns the template bone registry built during import.
	// Callers that evaluate poses must Clone it rather than mutate it.
	//
	// Returns:
	//   - skeleton.Registry: the template registry
	Bones() skeleton.Registry

	// BoneCount returns the number of registered bones.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// GlobalInverseTransform returns the inverse of the root node's transform.
	//
	// Returns:
	//   - mgl32.Mat4: the global inverse transform
	GlobalInverseTransform() mgl32.Mat4

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int

	// BoundingRadius returns the bounding sphere radius for this model, measured as
	// the maximum bind-pose vertex distance from the origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
// When no bounding radius option is given it is computed from the mesh vertices.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		globalInverse: mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(m)
	}

	if m.bones == nil {
		m.bones = skeleton.NewRegistry()
	}
	if m.boundingRadius == 0 {
		for _, mesh := range m.meshes {
			m.boundingRadius = max(m.boundingRadius, ComputeBoundingRadius(mesh.Vertices))
		}
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Root() *Node {
	return m.root
}

func (m *model) Meshes() []*Mesh {
	return m.meshes
}

func (m *model) Materials() []common.PhongMaterial {
	return m.materials
}

func (m *model) Material(i int) common.PhongMaterial {
	if i < 0 || i >= len(m.materials) {
		return common.DefaultMaterial()
	}
	return m.materials[i]
}

func (m *model) Skinned() bool {
	return m.bones.Len() > 0
}

func (m *model) Bones() skeleton.Registry {
	return m.bones
}

func (m *model) BoneCount() int {
	return m.bones.Len()
}

func (m *model) GlobalInverseTransform() mgl32.Mat4 {
	return m.globalInverse
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	for i, anim := range m.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}
