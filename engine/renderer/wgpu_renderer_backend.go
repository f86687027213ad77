package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoRenderPass is returned by DrawIndexed when no render pass has been set.
var ErrNoRenderPass = errors.New("no render pass set")

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	// The caller owns the frame: it begins the pass, hands it over, and ends it after drawing.
	pass     *wgpu.RenderPassEncoder
	pipeline pipeline.Pipeline
}

// WGPURendererBackend is the WebGPU implementation of RendererBackend. It works on a device and
// queue owned by the caller, who also owns the surface, the frame's command encoder and the
// render pass; nothing here opens a window.
type WGPURendererBackend interface {
	RendererBackend

	// Device returns the device resources are created on.
	Device() *wgpu.Device

	// Queue returns the queue buffer writes are submitted to.
	Queue() *wgpu.Queue

	// RegisterRenderPipeline creates the GPU pipeline described by p: its shader module, one bind
	// group layout per reflected group and the vertex layout of its vertex input struct.
	//
	// Parameters:
	//   - p: the pipeline description; its render pipeline is set on success
	//
	// Returns:
	//   - error: an error if an entry point is missing or a GPU object cannot be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// SetRenderPass selects the pass and pipeline subsequent draws are recorded into.
	// Passing a nil pass stops drawing until the next frame.
	//
	// Parameters:
	//   - pass: the render pass of the current frame
	//   - p: a registered pipeline
	SetRenderPass(pass *wgpu.RenderPassEncoder, p pipeline.Pipeline)
}

var _ WGPURendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend creates a backend on an existing device and queue.
//
// Parameters:
//   - device: the WebGPU device
//   - queue: the device's queue
//
// Returns:
//   - WGPURendererBackend: the backend
func NewWGPURendererBackend(device *wgpu.Device, queue *wgpu.Queue) WGPURendererBackend {
	return &wgpuRendererBackendImpl{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) SetRenderPass(pass *wgpu.RenderPassEncoder, p pipeline.Pipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pass = pass
	b.pipeline = p
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitUniformBuffers(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
			return fmt.Errorf("%s: binding %d is not a uniform buffer", provider.Label(), binding)
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			size := entry.Buffer.MinBindingSize
			if recorded := provider.BufferSize(binding); recorded > size {
				size = recorded
			}
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
				Size:  size,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return err
			}
			provider.SetBuffer(binding, buf)
			provider.SetBufferSize(binding, size)
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) DrawIndexed(mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil || b.pipeline == nil || b.pipeline.RenderPipeline() == nil {
		return ErrNoRenderPass
	}

	b.pass.SetPipeline(b.pipeline.RenderPipeline())
	for i, bg := range bindGroups {
		b.pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.pass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	b.pass.SetIndexBuffer(mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.pass.DrawIndexed(uint32(mesh.IndexCount()), 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := p.Shader()
	if s == nil || p.VertexEntryPoint() == "" || p.FragmentEntryPoint() == "" {
		return fmt.Errorf("pipeline %s: a shader with vertex and fragment entry points is required", p.Key())
	}

	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return err
	}
	defer module.Release()

	groups := s.Groups()
	layouts := make([]*wgpu.BindGroupLayout, 0, len(groups))
	defer func() {
		for _, l := range layouts {
			l.Release()
		}
	}()
	for want, g := range groups {
		if g != want {
			return fmt.Errorf("pipeline %s: bind group %d is missing", p.Key(), want)
		}
		desc, _ := s.BindGroupLayoutDescriptor(g)
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		layouts = append(layouts, layout)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	var depthStencil *wgpu.DepthStencilState
	if p.DepthFormat() != wgpu.TextureFormatUndefined {
		depthStencil = &wgpu.DepthStencilState{
			Format:            p.DepthFormat(),
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.VertexEntryPoint(),
			Buffers:    s.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.FragmentEntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    p.ColorFormat(),
				Blend:     p.BlendState(),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: p.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pass = nil
	b.pipeline = nil
}
