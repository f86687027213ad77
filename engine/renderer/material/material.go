package material

import (
	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	phong             common.PhongMaterial
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material: the Phong colours imported with
// a model and the GPU resources that carry them to the fragment stage.
//
// Colours are set at construction and are read-only through this interface. The bind group
// provider is mutable so the Renderer can attach it after uploading the uniform.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Phong retrieves the colours the material was built from.
	//
	// Returns:
	//   - common.PhongMaterial: the source colours
	Phong() common.PhongMaterial

	// Ambient retrieves the ambient colour to render with, falling back to the diffuse colour
	// when the imported ambient term is black.
	//
	// Returns:
	//   - [4]float32: the resolved ambient RGBA
	Ambient() [4]float32

	// Diffuse retrieves the diffuse RGBA colour.
	Diffuse() [4]float32

	// Specular retrieves the specular RGBA colour.
	Specular() [4]float32

	// GPUData returns the uniform contents for this material.
	//
	// Returns:
	//   - GPUMaterial: the marshalable uniform
	GPUData() GPUMaterial

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil before upload
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider attaches the provider created at upload.
	//
	// Parameters:
	//   - provider: the bind group provider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material with the provided options.
// A material built without WithPhong uses common.DefaultMaterial.
//
// Parameters:
//   - options: a variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the configured material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{phong: common.DefaultMaterial()}
	for _, opt := range options {
		opt(m)
	}
	if m.name == "" {
		m.name = m.phong.Name
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Phong() common.PhongMaterial {
	return m.phong
}

func (m *material) Ambient() [4]float32 {
	return m.phong.ResolvedAmbient()
}

func (m *material) Diffuse() [4]float32 {
	return m.phong.Diffuse
}

func (m *material) Specular() [4]float32 {
	return m.phong.Specular
}

func (m *material) GPUData() GPUMaterial {
	return NewGPUMaterial(m.phong)
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
