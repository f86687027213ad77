package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoints overrides the entry points found in the shader source.
// An empty name keeps the reflected one.
//
// Parameters:
//   - vertex: the vertex stage function name
//   - fragment: the fragment stage function name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		if vertex != "" {
			p.vertexEntry = vertex
		}
		if fragment != "" {
			p.fragmentEntry = fragment
		}
	}
}

// WithColorFormat sets the format of the color target, usually the surface format.
//
// Parameters:
//   - format: the color target format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color format
func WithColorFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorFormat = format
	}
}

// WithDepthFormat sets the depth attachment format. wgpu.TextureFormatUndefined disables depth.
//
// Parameters:
//   - format: the depth format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth format
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithDepthWriteEnabled toggles depth writes.
//
// Parameters:
//   - enabled: whether fragments write depth
//
// Returns:
//   - PipelineBuilderOption: a function that sets depth writes
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithSampleCount sets the multisample count. Values below 1 are ignored.
//
// Parameters:
//   - count: the sample count, 1 or 4 on every adapter
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		if count >= 1 {
			p.sampleCount = count
		}
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the winding order of front faces.
//
// Parameters:
//   - frontFace: the winding order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithBlendState enables blending with the given state.
//
// Parameters:
//   - state: the blend state, nil for opaque output
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}
