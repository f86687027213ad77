package renderer

import (
	"errors"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// NewRenderer creates a Renderer. A BackendTypeWGPU renderer needs WithDevice; any backend type
// accepts WithBackend, which takes precedence.
//
// Parameters:
//   - backendType: the backend to build
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no backend can be built
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		skinning:    SkinningShader(),
	}
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			if r.device == nil || r.queue == nil {
				return nil, errors.New("wgpu renderer requires a device and queue")
			}
			r.backend = NewWGPURendererBackend(r.device, r.queue)
		default:
			return nil, errors.New("no renderer backend configured")
		}
	}
	return r, nil
}

// WithDevice supplies the WebGPU device and queue for the default backend.
//
// Parameters:
//   - device: the WebGPU device
//   - queue: the device's queue
//
// Returns:
//   - RendererBuilderOption: a function that applies the device option to a renderer
func WithDevice(device *wgpu.Device, queue *wgpu.Queue) RendererBuilderOption {
	return func(r *renderer) {
		r.device = device
		r.queue = queue
	}
}

// WithBackend supplies a ready backend, bypassing backend construction.
//
// Parameters:
//   - backend: the backend to draw through
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}
