package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-skin/common"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	if m.Name() != "default" {
		t.Errorf("Name = %q, want default", m.Name())
	}
	if m.Diffuse() != common.DefaultMaterial().Diffuse {
		t.Errorf("Diffuse = %v", m.Diffuse())
	}
	if m.BindGroupProvider() != nil {
		t.Error("provider should be nil before upload")
	}
}

func TestMaterialResolvesAmbient(t *testing.T) {
	tests := []struct {
		name  string
		phong common.PhongMaterial
		want  [4]float32
	}{
		{
			name:  "black ambient uses diffuse",
			phong: common.PhongMaterial{Name: "skin", Diffuse: [4]float32{0.8, 0.6, 0.5, 1}},
			want:  [4]float32{0.8, 0.6, 0.5, 1},
		},
		{
			name:  "explicit ambient kept",
			phong: common.PhongMaterial{Name: "cloth", Ambient: [4]float32{0.1, 0.1, 0.1, 1}, Diffuse: [4]float32{0, 0, 1, 1}},
			want:  [4]float32{0.1, 0.1, 0.1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial(WithPhong(tt.phong))
			if m.Name() != tt.phong.Name {
				t.Errorf("Name = %q, want %q", m.Name(), tt.phong.Name)
			}
			if got := m.Ambient(); got != tt.want {
				t.Errorf("Ambient = %v, want %v", got, tt.want)
			}
			if got := m.GPUData().Ambient; got != tt.want {
				t.Errorf("GPUData().Ambient = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithNameOverridesPhongName(t *testing.T) {
	m := NewMaterial(WithPhong(common.PhongMaterial{Name: "imported"}), WithName("renamed"))
	if m.Name() != "renamed" {
		t.Errorf("Name = %q, want renamed", m.Name())
	}
}

func TestGPUMaterialMarshalLayout(t *testing.T) {
	g := GPUMaterial{
		Ambient:  [4]float32{1, 2, 3, 4},
		Diffuse:  [4]float32{5, 6, 7, 8},
		Specular: [4]float32{9, 10, 11, 12},
	}
	buf := g.Marshal()
	if len(buf) != g.Size() || g.Size() != 48 {
		t.Fatalf("len = %d, Size = %d, want 48", len(buf), g.Size())
	}
	for i := 0; i < 12; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != float32(i+1) {
			t.Errorf("float %d = %v, want %d", i, got, i+1)
		}
	}
}
