package model

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUSkinnedVertexStride is the size in bytes of one marshaled GPUSkinnedVertex.
const GPUSkinnedVertexStride = 56

// MaxInfluences is the number of bone influence slots per vertex.
const MaxInfluences = 4

// NoBone is the bone index stored in unused influence slots.
const NoBone int32 = -1

// GPUSkinnedVertexSource is the canonical WGSL definition of the VertexInput struct for skinned mesh pipelines.
// Matches the GPUSkinnedVertex vertex buffer layout exactly (56-byte stride).
//
//go:embed assets/skinned_vertex.wgsl
var GPUSkinnedVertexSource string

// GPUSkinnedVertex is a single mesh vertex with up to four bone influences.
// Influence slots are kept sorted by descending weight; unused slots hold NoBone and weight 0.
// Marshal produces the vertex buffer layout described by GPUSkinnedVertexSource.
type GPUSkinnedVertex struct {
	Position    [3]float32 // offset  0: vertex position in mesh space (float32x3)
	Normal      [3]float32 // offset 12: vertex normal (float32x3)
	BoneIndices [4]int32   // offset 24: influencing bone indices, NoBone when unused (sint32x4)
	BoneWeights [4]float32 // offset 40: influence weights, descending (float32x4)
}

// NewSkinnedVertex creates a vertex with every influence slot empty.
//
// Parameters:
//   - position: the vertex position
//   - normal: the vertex normal
//
// Returns:
//   - GPUSkinnedVertex: the vertex
func NewSkinnedVertex(position, normal [3]float32) GPUSkinnedVertex {
	return GPUSkinnedVertex{
		Position:    position,
		Normal:      normal,
		BoneIndices: [4]int32{NoBone, NoBone, NoBone, NoBone},
	}
}

// Size returns the size of the marshaled GPUSkinnedVertex in bytes.
//
// Returns:
//   - int: the size of the vertex in bytes.
func (g *GPUSkinnedVertex) Size() int {
	return GPUSkinnedVertexStride
}

// Marshal serializes the vertex into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload.
func (g *GPUSkinnedVertex) Marshal() []byte {
	buf := make([]byte, GPUSkinnedVertexStride)
	g.marshalInto(buf)
	return buf
}

func (g *GPUSkinnedVertex) marshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(g.BoneIndices[0]))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(g.BoneIndices[1]))
	binary.LittleEndian.PutUint32(buf[32:36], uint32(g.BoneIndices[2]))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(g.BoneIndices[3]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.BoneWeights[0]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.BoneWeights[1]))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.BoneWeights[2]))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.BoneWeights[3]))
}

// MarshalVertices serializes a vertex slice into one contiguous vertex buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices) * GPUSkinnedVertexStride bytes
func MarshalVertices(vertices []GPUSkinnedVertex) []byte {
	buf := make([]byte, len(vertices)*GPUSkinnedVertexStride)
	for i := range vertices {
		vertices[i].marshalInto(buf[i*GPUSkinnedVertexStride : (i+1)*GPUSkinnedVertexStride])
	}
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// GPUSkinnedVertex positions. The radius is the maximum distance from the origin
// across all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUSkinnedVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
