package model

import (
	"github.com/Carmen-Shannon/oxy-skin/common"
)

// Mesh is a processed, render-ready mesh: skinned vertices with resolved bone indices,
// a flat triangle index list and a material reference.
type Mesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices carry positions, normals and up to four bone influences.
	Vertices []GPUSkinnedVertex

	// Indices are triangle vertex indices, three per face.
	Indices []uint32

	// MaterialIndex references Model.Materials, or -1 for none.
	MaterialIndex int
}

// VertexData returns the vertex buffer contents.
//
// Returns:
//   - []byte: the marshaled vertices
func (m *Mesh) VertexData() []byte {
	return MarshalVertices(m.Vertices)
}

// IndexData returns the index buffer contents as little-endian uint32 values.
//
// Returns:
//   - []byte: the index data
func (m *Mesh) IndexData() []byte {
	return common.Uint32sToBytes(m.Indices)
}

// IndexCount returns the number of indices to draw.
//
// Returns:
//   - int: the index count
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}
