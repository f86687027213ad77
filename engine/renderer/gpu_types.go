package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxBones is the number of matrices in a bone palette.
const MaxBones = 128

const (
	// GPUBonePaletteSize is the size in bytes of a marshaled GPUBonePalette.
	GPUBonePaletteSize = MaxBones * 64

	// GPUModelDataSize is the size in bytes of a marshaled GPUModelData.
	GPUModelDataSize = 64
)

// Bind group layout of the skinning shader. Group 0 is per character, group 1 per material.
const (
	CharacterGroup = 0
	MaterialGroup  = 1

	BonePaletteBinding = 0
	ModelDataBinding   = 1
	MaterialBinding    = 0
)

// GPUSkinningSource declares the bone palette and model uniforms and the skinning helpers.
// It expects the skinned vertex and material structs to be declared alongside it; see SkinningShader.
//
//go:embed assets/skinning.wgsl
var GPUSkinningSource string

// SkinningShader reflects the full skinning source: the skinned vertex input, the material
// struct and the skinning uniforms. Callers append their own entry points before creating
// a pipeline.
//
// Returns:
//   - shader.Shader: the reflected skinning shader
func SkinningShader() shader.Shader {
	return shader.NewShader(
		"Skinning",
		shader.Compose(model.GPUSkinnedVertexSource, material.GPUMaterialSource, GPUSkinningSource),
		wgpu.ShaderStageVertex|wgpu.ShaderStageFragment,
	)
}

// GPUBonePalette is the per-character uniform holding every bone's final transform.
// Matrices are stored column-major, matching the WGSL BonePalette struct.
type GPUBonePalette struct {
	Bones [MaxBones]mgl32.Mat4
}

// NewGPUBonePalette copies the matrices into a palette and fills the remaining entries with identity.
// Callers must check the count against MaxBones; extra matrices are dropped.
//
// Parameters:
//   - matrices: the bone matrices in registry index order
//
// Returns:
//   - GPUBonePalette: the padded palette
func NewGPUBonePalette(matrices []mgl32.Mat4) GPUBonePalette {
	var p GPUBonePalette
	n := copy(p.Bones[:], matrices)
	for i := n; i < MaxBones; i++ {
		p.Bones[i] = mgl32.Ident4()
	}
	return p
}

// Size returns the size of the GPUBonePalette struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUBonePalette) Size() int {
	return GPUBonePaletteSize
}

// Marshal serializes the palette into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 8192-byte buffer ready for GPU upload.
func (g *GPUBonePalette) Marshal() []byte {
	buf := make([]byte, GPUBonePaletteSize)
	for i := range g.Bones {
		common.PutMat4(buf[i*64:(i+1)*64], g.Bones[i])
	}
	return buf
}

// GPUModelData is the per-character uniform holding the model matrix.
type GPUModelData struct {
	Model mgl32.Mat4
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelData) Size() int {
	return GPUModelDataSize
}

// Marshal serializes the model data into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, GPUModelDataSize)
	common.PutMat4(buf, g.Model)
	return buf
}
