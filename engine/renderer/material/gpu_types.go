package material

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-skin/common"
)

// GPUMaterialSize is the size in bytes of one marshaled GPUMaterial.
const GPUMaterialSize = 48

// GPUMaterialSource is the canonical WGSL definition of the Material struct.
// Matches GPUMaterial layout exactly (48 bytes, three vec4<f32>).
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUMaterial is the GPU-aligned uniform carrying a material's Phong colours.
// Size: 48 bytes.
type GPUMaterial struct {
	Ambient  [4]float32 // offset  0: resolved ambient RGBA
	Diffuse  [4]float32 // offset 16: diffuse RGBA
	Specular [4]float32 // offset 32: specular RGBA
}

// NewGPUMaterial builds the uniform for a Phong material, resolving the ambient term.
//
// Parameters:
//   - m: the material colours
//
// Returns:
//   - GPUMaterial: the uniform data
func NewGPUMaterial(m common.PhongMaterial) GPUMaterial {
	return GPUMaterial{
		Ambient:  m.ResolvedAmbient(),
		Diffuse:  m.Diffuse,
		Specular: m.Specular,
	}
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterial) Size() int {
	return GPUMaterialSize
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, GPUMaterialSize)
	common.PutVec4(buf[0:16], g.Ambient)
	common.PutVec4(buf[16:32], g.Diffuse)
	common.PutVec4(buf[32:48], g.Specular)
	return buf
}
