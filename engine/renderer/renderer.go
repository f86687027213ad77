package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrTooManyBones is returned when a pose has more bones than a palette holds.
var ErrTooManyBones = errors.New("too many bones for palette")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu          *sync.Mutex
	backendType RendererBackendType
	backend     RendererBackend
	skinning    shader.Shader

	// staged holds uniform writes until the next Flush
	staged []bind_group_provider.BufferWrite
	// providers are every GPU resource holder created through this renderer, released with it
	providers []bind_group_provider.BindGroupProvider

	// pending WebGPU handles used to build the default backend
	device *wgpu.Device
	queue  *wgpu.Queue
}

// Renderer uploads skinned meshes, bone palettes and materials to the GPU and records their
// draws. Per-frame uniform data is staged and written in one batch by Flush, so a frame is:
//
//	StageBones / StageModelMatrix for every character
//	Flush
//	Draw for every mesh
//
// All methods are safe for concurrent use.
type Renderer interface {
	// Type returns the backend type the renderer was built with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	Type() RendererBackendType

	// Backend returns the backend draws are issued through.
	//
	// Returns:
	//   - RendererBackend: the backend
	Backend() RendererBackend

	// Shader returns the reflected skinning shader whose layouts the renderer's providers follow.
	//
	// Returns:
	//   - shader.Shader: the skinning shader
	Shader() shader.Shader

	// UploadMesh creates the vertex and index buffers of a mesh.
	//
	// Parameters:
	//   - label: the debug label of the GPU resources
	//   - mesh: the processed mesh
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider holding the buffers
	//   - error: an error if the mesh is nil or empty, or buffer creation fails
	UploadMesh(label string, mesh *model.Mesh) (bind_group_provider.BindGroupProvider, error)

	// NewBonePalette creates the per-character uniforms: the bone palette and the model matrix.
	// The palette starts as all identity and the model matrix as identity.
	//
	// Parameters:
	//   - label: the debug label of the GPU resources
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider bound at CharacterGroup
	//   - error: an error if resource creation fails
	NewBonePalette(label string) (bind_group_provider.BindGroupProvider, error)

	// StageBones stages a full palette write. The matrices are column-major, in registry index
	// order; entries past len(matrices) are written as identity.
	//
	// Parameters:
	//   - palette: a provider created by NewBonePalette
	//   - matrices: the final bone transforms
	//
	// Returns:
	//   - error: ErrTooManyBones when len(matrices) exceeds MaxBones, or an error for a nil palette
	StageBones(palette bind_group_provider.BindGroupProvider, matrices []mgl32.Mat4) error

	// StageModelMatrix stages the model matrix write of a character.
	//
	// Parameters:
	//   - palette: a provider created by NewBonePalette
	//   - m: the model matrix
	//
	// Returns:
	//   - error: an error for a nil palette
	StageModelMatrix(palette bind_group_provider.BindGroupProvider, m mgl32.Mat4) error

	// UploadMaterial creates the material uniform and stages its contents.
	//
	// Parameters:
	//   - phong: the material colours
	//
	// Returns:
	//   - material.Material: the material with its provider attached, bound at MaterialGroup
	//   - error: an error if resource creation fails
	UploadMaterial(phong common.PhongMaterial) (material.Material, error)

	// Flush writes every staged BufferWrite through the backend and clears the stage.
	Flush()

	// Draw records one indexed draw of a mesh. The bind groups are set in order, normally the
	// bone palette then the material.
	//
	// Parameters:
	//   - mesh: a provider created by UploadMesh
	//   - bindGroups: the providers bound at groups 0..n-1
	//
	// Returns:
	//   - error: an error for a nil mesh or bind group, or the backend's draw error
	Draw(mesh bind_group_provider.BindGroupProvider, bindGroups ...bind_group_provider.BindGroupProvider) error

	// StagedWriteCount returns the number of writes waiting for Flush.
	StagedWriteCount() int

	// Release releases every provider created through the renderer and the backend.
	Release()
}

var _ Renderer = &renderer{}

func (r *renderer) Type() RendererBackendType {
	return r.backendType
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Shader() shader.Shader {
	return r.skinning
}

func (r *renderer) UploadMesh(label string, mesh *model.Mesh) (bind_group_provider.BindGroupProvider, error) {
	if mesh == nil || mesh.IndexCount() == 0 || len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("upload %s: mesh has no geometry", label)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	provider := bind_group_provider.NewBindGroupProvider(label)
	if err := r.backend.InitMeshBuffers(provider, mesh.VertexData(), mesh.IndexData(), mesh.IndexCount()); err != nil {
		provider.Release()
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	r.providers = append(r.providers, provider)
	return provider, nil
}

func (r *renderer) NewBonePalette(label string) (bind_group_provider.BindGroupProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	provider, err := r.newUniformProvider(label, CharacterGroup)
	if err != nil {
		return nil, err
	}
	identity := NewGPUBonePalette(nil)
	modelData := GPUModelData{Model: mgl32.Ident4()}
	r.staged = append(r.staged,
		bind_group_provider.BufferWrite{Provider: provider, Binding: BonePaletteBinding, Data: identity.Marshal()},
		bind_group_provider.BufferWrite{Provider: provider, Binding: ModelDataBinding, Data: modelData.Marshal()},
	)
	return provider, nil
}

func (r *renderer) StageBones(palette bind_group_provider.BindGroupProvider, matrices []mgl32.Mat4) error {
	if palette == nil {
		return errors.New("stage bones: nil palette")
	}
	if len(matrices) > MaxBones {
		return fmt.Errorf("%w: %s has %d, limit %d", ErrTooManyBones, palette.Label(), len(matrices), MaxBones)
	}
	data := NewGPUBonePalette(matrices)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = append(r.staged, bind_group_provider.BufferWrite{Provider: palette, Binding: BonePaletteBinding, Data: data.Marshal()})
	return nil
}

func (r *renderer) StageModelMatrix(palette bind_group_provider.BindGroupProvider, m mgl32.Mat4) error {
	if palette == nil {
		return errors.New("stage model matrix: nil palette")
	}
	data := GPUModelData{Model: m}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = append(r.staged, bind_group_provider.BufferWrite{Provider: palette, Binding: ModelDataBinding, Data: data.Marshal()})
	return nil
}

func (r *renderer) UploadMaterial(phong common.PhongMaterial) (material.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mat := material.NewMaterial(material.WithPhong(phong))
	provider, err := r.newUniformProvider("Material "+mat.Name(), MaterialGroup)
	if err != nil {
		return nil, err
	}
	mat.SetBindGroupProvider(provider)

	data := mat.GPUData()
	r.staged = append(r.staged, bind_group_provider.BufferWrite{Provider: provider, Binding: MaterialBinding, Data: data.Marshal()})
	return mat, nil
}

// newUniformProvider creates a provider for one reflected bind group. Callers hold r.mu.
func (r *renderer) newUniformProvider(label string, group int) (bind_group_provider.BindGroupProvider, error) {
	descriptor, ok := r.skinning.BindGroupLayoutDescriptor(group)
	if !ok {
		return nil, fmt.Errorf("%s: skinning shader declares no group %d", label, group)
	}
	descriptor.Label = label

	provider := bind_group_provider.NewBindGroupProvider(label)
	for _, e := range descriptor.Entries {
		provider.SetBufferSize(int(e.Binding), e.Buffer.MinBindingSize)
	}
	if err := r.backend.InitUniformBuffers(provider, descriptor); err != nil {
		provider.Release()
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	r.providers = append(r.providers, provider)
	return provider, nil
}

func (r *renderer) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.staged) == 0 {
		return
	}
	r.backend.WriteBuffers(r.staged)
	r.staged = r.staged[:0]
}

func (r *renderer) Draw(mesh bind_group_provider.BindGroupProvider, bindGroups ...bind_group_provider.BindGroupProvider) error {
	if mesh == nil {
		return errors.New("draw: nil mesh")
	}
	for i, bg := range bindGroups {
		if bg == nil {
			return fmt.Errorf("draw %s: nil bind group %d", mesh.Label(), i)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.backend.DrawIndexed(mesh, bindGroups); err != nil {
		return fmt.Errorf("draw %s: %w", mesh.Label(), err)
	}
	return nil
}

func (r *renderer) StagedWriteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.staged)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.providers {
		p.Release()
	}
	r.providers = nil
	r.staged = nil
	r.backend.Release()
}
