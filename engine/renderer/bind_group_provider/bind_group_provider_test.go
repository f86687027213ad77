package bind_group_provider

import "testing"

func TestNewBindGroupProviderKeepsLabel(t *testing.T) {
	p := NewBindGroupProvider("hero palette", WithBufferSize(0, 8192), WithIndexCount(36))
	if p.Label() != "hero palette" {
		t.Errorf("Label = %q", p.Label())
	}
	if p.BufferSize(0) != 8192 || p.BufferSize(1) != 0 {
		t.Errorf("BufferSize = %d/%d, want 8192/0", p.BufferSize(0), p.BufferSize(1))
	}
	if p.IndexCount() != 36 {
		t.Errorf("IndexCount = %d, want 36", p.IndexCount())
	}
}

func TestBufferWriteFits(t *testing.T) {
	p := NewBindGroupProvider("material", WithBufferSize(0, 48))

	tests := []struct {
		name  string
		write BufferWrite
		want  bool
	}{
		{name: "exact", write: BufferWrite{Provider: p, Binding: 0, Data: make([]byte, 48)}, want: true},
		{name: "offset overflow", write: BufferWrite{Provider: p, Binding: 0, Offset: 16, Data: make([]byte, 48)}, want: false},
		{name: "unsized binding", write: BufferWrite{Provider: p, Binding: 3, Data: make([]byte, 4096)}, want: true},
		{name: "no provider", write: BufferWrite{Data: []byte{1}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.write.Fits(); got != tt.want {
				t.Errorf("Fits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("empty", WithIndexCount(3))
	p.Release()
	if p.IndexCount() != 0 || p.VertexBuffer() != nil || p.BindGroup() != nil {
		t.Errorf("Release left state behind")
	}
}
