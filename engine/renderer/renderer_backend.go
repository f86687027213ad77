package renderer

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeCustom marks a backend supplied with WithBackend.
	BackendTypeCustom
)

// RendererBackend is the GPU boundary of the Renderer. The Renderer serialises every call,
// so implementations need no locking of their own for calls made through it.
type RendererBackend interface {
	// InitMeshBuffers creates the vertex and index buffers of a mesh, uploads their contents
	// and stores them on the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers
	//   - vertexData: the marshaled vertices
	//   - indexData: little-endian uint32 indices
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitUniformBuffers creates one uniform buffer per layout entry, sized by the entry's
	// MinBindingSize, then the bind group layout and the bind group, and stores them on the provider.
	//
	// Parameters:
	//   - provider: the provider receiving the resources
	//   - descriptor: the bind group layout, usually reflected from the skinning shader
	//
	// Returns:
	//   - error: an error if resource creation fails
	InitUniformBuffers(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers writes staged data into the providers' buffers.
	//
	// Parameters:
	//   - writes: the writes, applied in order
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// DrawIndexed issues one indexed draw of the mesh with the bind groups set in order
	// (bind group i at group index i).
	//
	// Parameters:
	//   - mesh: the provider holding the vertex and index buffers
	//   - bindGroups: the providers whose bind groups are set before drawing
	//
	// Returns:
	//   - error: an error if no render pass is available
	DrawIndexed(mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// Release releases backend-owned resources. Providers are released by the Renderer.
	Release()
}
