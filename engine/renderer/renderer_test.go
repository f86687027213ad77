package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeBackend records every call instead of touching a GPU.
type fakeBackend struct {
	mu          sync.Mutex
	meshes      int
	descriptors []wgpu.BindGroupLayoutDescriptor
	writes      []bind_group_provider.BufferWrite
	draws       []fakeDraw
	drawErr     error
	released    bool
}

type fakeDraw struct {
	mesh       string
	indexCount int
	bindGroups []string
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meshes++
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeBackend) InitUniformBuffers(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.descriptors = append(f.descriptors, descriptor)
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) DrawIndexed(mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drawErr != nil {
		return f.drawErr
	}
	d := fakeDraw{mesh: mesh.Label(), indexCount: mesh.IndexCount()}
	for _, bg := range bindGroups {
		d.bindGroups = append(d.bindGroups, bg.Label())
	}
	f.draws = append(f.draws, d)
	return nil
}

func (f *fakeBackend) Release() {
	f.released = true
}

func newTestRenderer(t *testing.T) (Renderer, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	r, err := NewRenderer(BackendTypeCustom, WithBackend(backend))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r, backend
}

func readMat4(buf []byte) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return m
}

func triangle() *model.Mesh {
	return &model.Mesh{
		Name: "tri",
		Vertices: []model.GPUSkinnedVertex{
			model.NewSkinnedVertex([3]float32{0, 0, 0}, [3]float32{0, 0, 1}),
			model.NewSkinnedVertex([3]float32{1, 0, 0}, [3]float32{0, 0, 1}),
			model.NewSkinnedVertex([3]float32{0, 1, 0}, [3]float32{0, 0, 1}),
		},
		Indices:       []uint32{0, 1, 2},
		MaterialIndex: -1,
	}
}

func TestSkinningShaderMatchesGPUTypes(t *testing.T) {
	s := SkinningShader()

	if got := s.BindingSize(CharacterGroup, BonePaletteBinding); got != GPUBonePaletteSize {
		t.Errorf("palette binding = %d bytes, want %d", got, GPUBonePaletteSize)
	}
	if got := s.BindingSize(CharacterGroup, ModelDataBinding); got != GPUModelDataSize {
		t.Errorf("model binding = %d bytes, want %d", got, GPUModelDataSize)
	}
	if got := s.BindingSize(MaterialGroup, MaterialBinding); got != material.GPUMaterialSize {
		t.Errorf("material binding = %d bytes, want %d", got, material.GPUMaterialSize)
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 1 || layouts[0].ArrayStride != model.GPUSkinnedVertexStride {
		t.Fatalf("vertex layouts = %+v, want one with stride %d", layouts, model.GPUSkinnedVertexStride)
	}
	if got := layouts[0].Attributes[2].Format; got != wgpu.VertexFormatSint32x4 {
		t.Errorf("bone index format = %v, want Sint32x4", got)
	}
}

func TestNewRendererRequiresBackend(t *testing.T) {
	if _, err := NewRenderer(BackendTypeWGPU); err == nil {
		t.Error("expected an error without a device")
	}
	if _, err := NewRenderer(BackendTypeCustom); err == nil {
		t.Error("expected an error without a backend")
	}
}

func TestUploadMesh(t *testing.T) {
	r, backend := newTestRenderer(t)

	p, err := r.UploadMesh("hero/tri", triangle())
	if err != nil {
		t.Fatalf("UploadMesh: %v", err)
	}
	if p.Label() != "hero/tri" || p.IndexCount() != 3 || backend.meshes != 1 {
		t.Errorf("label %q, index count %d, uploads %d", p.Label(), p.IndexCount(), backend.meshes)
	}

	if _, err := r.UploadMesh("empty", &model.Mesh{}); err == nil {
		t.Error("expected an error for an empty mesh")
	}
	if _, err := r.UploadMesh("nil", nil); err == nil {
		t.Error("expected an error for a nil mesh")
	}
}

func TestNewBonePaletteStagesIdentity(t *testing.T) {
	r, backend := newTestRenderer(t)

	palette, err := r.NewBonePalette("hero")
	if err != nil {
		t.Fatalf("NewBonePalette: %v", err)
	}
	if len(backend.descriptors) != 1 || len(backend.descriptors[0].Entries) != 2 {
		t.Fatalf("descriptors = %+v", backend.descriptors)
	}
	if palette.BufferSize(BonePaletteBinding) != GPUBonePaletteSize || palette.BufferSize(ModelDataBinding) != GPUModelDataSize {
		t.Errorf("buffer sizes = %d/%d", palette.BufferSize(BonePaletteBinding), palette.BufferSize(ModelDataBinding))
	}
	if r.StagedWriteCount() != 2 {
		t.Errorf("StagedWriteCount = %d, want 2", r.StagedWriteCount())
	}
}

func TestStageBonesPadsWithIdentity(t *testing.T) {
	r, backend := newTestRenderer(t)
	palette, _ := r.NewBonePalette("hero")
	r.Flush()
	backend.writes = nil

	bones := []mgl32.Mat4{mgl32.Translate3D(1, 2, 3), mgl32.HomogRotate3DZ(math.Pi / 2)}
	if err := r.StageBones(palette, bones); err != nil {
		t.Fatalf("StageBones: %v", err)
	}
	r.Flush()

	if len(backend.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(backend.writes))
	}
	w := backend.writes[0]
	if w.Binding != BonePaletteBinding || len(w.Data) != GPUBonePaletteSize || !w.Fits() {
		t.Fatalf("write binding %d, %d bytes, fits %v", w.Binding, len(w.Data), w.Fits())
	}
	first := readMat4(w.Data[0:64])
	if first != bones[0] {
		t.Errorf("bone 0 = %v", first)
	}
	// Column-major: the translation sits in elements 12..14.
	if first[12] != 1 || first[13] != 2 || first[14] != 3 {
		t.Errorf("translation column = %v", first[12:15])
	}
	if got := readMat4(w.Data[64:128]); got != bones[1] {
		t.Errorf("bone 1 = %v", got)
	}
	for _, i := range []int{2, 64, MaxBones - 1} {
		if got := readMat4(w.Data[i*64 : (i+1)*64]); got != mgl32.Ident4() {
			t.Errorf("bone %d = %v, want identity", i, got)
		}
	}
}

func TestStageBonesRejectsOversizedPalette(t *testing.T) {
	r, _ := newTestRenderer(t)
	palette, _ := r.NewBonePalette("hero")
	before := r.StagedWriteCount()

	err := r.StageBones(palette, common.IdentityPalette(MaxBones+1))
	if !errors.Is(err, ErrTooManyBones) {
		t.Fatalf("err = %v, want ErrTooManyBones", err)
	}
	if r.StagedWriteCount() != before {
		t.Error("a rejected palette must not be staged")
	}
	if err := r.StageBones(palette, common.IdentityPalette(MaxBones)); err != nil {
		t.Errorf("a full palette should be accepted: %v", err)
	}
	if err := r.StageBones(nil, nil); err == nil {
		t.Error("expected an error for a nil palette")
	}
}

func TestStageModelMatrix(t *testing.T) {
	r, backend := newTestRenderer(t)
	palette, _ := r.NewBonePalette("hero")
	r.Flush()
	backend.writes = nil

	m := common.EulerModelMatrix(mgl32.Vec3{4, 0, -2}, mgl32.Vec3{0, 90, 0}, mgl32.Vec3{1, 1, 1})
	if err := r.StageModelMatrix(palette, m); err != nil {
		t.Fatalf("StageModelMatrix: %v", err)
	}
	r.Flush()
	if len(backend.writes) != 1 || backend.writes[0].Binding != ModelDataBinding {
		t.Fatalf("writes = %+v", backend.writes)
	}
	if got := readMat4(backend.writes[0].Data); got != m {
		t.Errorf("model = %v, want %v", got, m)
	}
}

func TestUploadMaterial(t *testing.T) {
	r, backend := newTestRenderer(t)

	mat, err := r.UploadMaterial(common.PhongMaterial{Name: "skin", Diffuse: [4]float32{0.9, 0.7, 0.6, 1}, Specular: common.DefaultSpecular})
	if err != nil {
		t.Fatalf("UploadMaterial: %v", err)
	}
	if mat.Name() != "skin" || mat.BindGroupProvider() == nil {
		t.Fatalf("material %q provider %v", mat.Name(), mat.BindGroupProvider())
	}
	r.Flush()

	if len(backend.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(backend.writes))
	}
	w := backend.writes[0]
	if w.Provider != mat.BindGroupProvider() || len(w.Data) != material.GPUMaterialSize {
		t.Fatalf("write = %+v", w)
	}
	ambientR := math.Float32frombits(binary.LittleEndian.Uint32(w.Data[0:4]))
	if ambientR != 0.9 {
		t.Errorf("ambient red = %v, want the diffuse 0.9", ambientR)
	}
}

func TestFlushClearsStage(t *testing.T) {
	r, backend := newTestRenderer(t)
	palette, _ := r.NewBonePalette("a")
	_ = r.StageBones(palette, nil)
	_ = r.StageModelMatrix(palette, mgl32.Ident4())

	if r.StagedWriteCount() != 4 {
		t.Fatalf("StagedWriteCount = %d, want 4", r.StagedWriteCount())
	}
	r.Flush()
	if r.StagedWriteCount() != 0 || len(backend.writes) != 4 {
		t.Errorf("after Flush: staged %d, written %d", r.StagedWriteCount(), len(backend.writes))
	}
	r.Flush()
	if len(backend.writes) != 4 {
		t.Error("an empty Flush should not write")
	}
}

func TestDraw(t *testing.T) {
	r, backend := newTestRenderer(t)
	mesh, _ := r.UploadMesh("tri", triangle())
	palette, _ := r.NewBonePalette("hero")
	mat, _ := r.UploadMaterial(common.DefaultMaterial())

	if err := r.Draw(mesh, palette, mat.BindGroupProvider()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(backend.draws) != 1 {
		t.Fatalf("draws = %d", len(backend.draws))
	}
	d := backend.draws[0]
	if d.mesh != "tri" || d.indexCount != 3 || len(d.bindGroups) != 2 || d.bindGroups[0] != "hero" {
		t.Errorf("draw = %+v", d)
	}

	if err := r.Draw(nil); err == nil {
		t.Error("expected an error for a nil mesh")
	}
	if err := r.Draw(mesh, nil); err == nil {
		t.Error("expected an error for a nil bind group")
	}
	backend.drawErr = ErrNoRenderPass
	if err := r.Draw(mesh, palette); !errors.Is(err, ErrNoRenderPass) {
		t.Errorf("err = %v, want ErrNoRenderPass", err)
	}
}

func TestRendererRelease(t *testing.T) {
	r, backend := newTestRenderer(t)
	_, _ = r.NewBonePalette("hero")
	r.Release()
	if !backend.released || r.StagedWriteCount() != 0 {
		t.Errorf("released %v, staged %d", backend.released, r.StagedWriteCount())
	}
}

func TestConcurrentStaging(t *testing.T) {
	r, backend := newTestRenderer(t)
	palette, _ := r.NewBonePalette("hero")
	r.Flush()
	backend.writes = nil

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.StageBones(palette, common.IdentityPalette(4))
		}()
	}
	wg.Wait()
	r.Flush()
	if len(backend.writes) != 16 {
		t.Errorf("writes = %d, want 16", len(backend.writes))
	}
}
