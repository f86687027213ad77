package model

import (
	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithRoot is an option builder that sets the scene graph root of the Model.
//
// Parameters:
//   - root: the root node
//
// Returns:
//   - ModelBuilderOption: a function that applies the root option to a model
func WithRoot(root *Node) ModelBuilderOption {
	return func(m *model) {
		m.root = root
	}
}

// WithMeshes is an option builder that sets the processed meshes of the Model.
//
// Parameters:
//   - meshes: the processed meshes
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes ...*Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
	}
}

// WithMaterials is an option builder that sets the materials of the Model.
//
// Parameters:
//   - materials: the materials to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the materials option to a model
func WithMaterials(materials []common.PhongMaterial) ModelBuilderOption {
	return func(m *model) {
		m.materials = materials
	}
}

// WithAnimations is an option builder that sets the animation clips of the Model.
// Nil clips are skipped.
//
// Parameters:
//   - animations: the animation clips to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations []*AnimationClip) ModelBuilderOption {
	return func(m *model) {
		m.animations = make([]*AnimationClip, 0, len(animations))
		for _, clip := range animations {
			if clip != nil {
				m.animations = append(m.animations, clip)
			}
		}
	}
}

// WithBones is an option builder that sets the template bone registry of the Model.
//
// Parameters:
//   - bones: the registry populated during mesh processing
//
// Returns:
//   - ModelBuilderOption: a function that applies the bones option to a model
func WithBones(bones skeleton.Registry) ModelBuilderOption {
	return func(m *model) {
		m.bones = bones
	}
}

// WithGlobalInverseTransform is an option builder that sets the inverse of the root node's transform.
//
// Parameters:
//   - inv: the global inverse transform
//
// Returns:
//   - ModelBuilderOption: a function that applies the global inverse option to a model
func WithGlobalInverseTransform(inv mgl32.Mat4) ModelBuilderOption {
	return func(m *model) {
		m.globalInverse = inv
	}
}

// WithBoundingRadius is an option builder that manually sets the bounding sphere radius.
// Use this to override the auto-computed value from ComputeBoundingRadius when a manually
// tuned conservative bound is preferred.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}
