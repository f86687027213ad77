package pipeline

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// key is the unique identifier for this pipeline, used for labels and lookups
	key string
	// shader is the single module holding both entry points
	shader shader.Shader

	vertexEntry   string
	fragmentEntry string

	// The following properties configure the pipeline at creation and are set with the builder options.

	colorFormat       wgpu.TextureFormat
	depthFormat       wgpu.TextureFormat
	depthWriteEnabled bool
	sampleCount       uint32
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	blendState        *wgpu.BlendState

	// renderPipeline is set by the backend once the pipeline is created on the device
	renderPipeline *wgpu.RenderPipeline
}

// Pipeline describes a render pipeline for skinned meshes: a reflected shader module with a vertex
// and a fragment entry point, plus the fixed-function state used when the backend creates it.
type Pipeline interface {
	// Key returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// Shader returns the reflected shader module.
	//
	// Returns:
	//   - shader.Shader: the module both entry points live in
	Shader() shader.Shader

	// VertexEntryPoint returns the vertex stage function name.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment stage function name.
	FragmentEntryPoint() string

	// ColorFormat returns the format of the single color target.
	ColorFormat() wgpu.TextureFormat

	// DepthFormat returns the depth attachment format, or wgpu.TextureFormatUndefined when depth is disabled.
	DepthFormat() wgpu.TextureFormat

	// DepthWriteEnabled returns whether fragments write depth.
	DepthWriteEnabled() bool

	// SampleCount returns the multisample count of the render targets.
	SampleCount() uint32

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	FrontFace() wgpu.FrontFace

	// BlendState returns the color blend state, or nil for opaque output.
	BlendState() *wgpu.BlendState

	// RenderPipeline returns the created pipeline, or nil before the backend registers it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the pipeline created by the backend.
	//
	// Parameters:
	//   - p: the created render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the GPU pipeline if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for a reflected shader. Entry points default to the first
// @vertex and @fragment functions of the shader. The default state is an opaque BGRA8 target
// with a Depth24Plus depth buffer, back-face culling of counter-clockwise triangle lists and
// no multisampling.
//
// Parameters:
//   - key: the unique identifier for this pipeline
//   - s: the reflected shader module
//   - options: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(key string, s shader.Shader, options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		shader:            s,
		colorFormat:       wgpu.TextureFormatBGRA8Unorm,
		depthFormat:       wgpu.TextureFormatDepth24Plus,
		depthWriteEnabled: true,
		sampleCount:       1,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
	}
	if s != nil {
		p.vertexEntry = s.EntryPoint(wgpu.ShaderStageVertex)
		p.fragmentEntry = s.EntryPoint(wgpu.ShaderStageFragment)
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntry
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
