package loader

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func triangleMesh(name string, bones ...model.ImportedBone) model.ImportedMesh {
	return model.ImportedMesh{
		Name:          name,
		Positions:     [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}},
		Normals:       [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Faces:         [][3]uint32{{0, 1, 2}},
		MaterialIndex: -1,
		Bones:         bones,
	}
}

func TestProcessSceneRegistersBonesOnce(t *testing.T) {
	first := mgl32.Translate3D(0, -1, 0)
	second := mgl32.Translate3D(0, -5, 0)

	root := model.NewNode("root", mgl32.Ident4(),
		&model.Node{Name: "a", Transform: mgl32.Ident4(), MeshIndices: []int{0}},
		&model.Node{Name: "b", Transform: mgl32.Ident4(), MeshIndices: []int{1}},
	)
	scene := &model.ImportedScene{
		Name: "pair",
		Root: root,
		Meshes: []model.ImportedMesh{
			triangleMesh("a", model.ImportedBone{Name: "arm", Offset: first, Weights: []model.VertexWeight{{VertexIndex: 0, Weight: 1}}}),
			triangleMesh("b", model.ImportedBone{Name: "arm", Offset: second, Weights: []model.VertexWeight{{VertexIndex: 2, Weight: 1}}}),
		},
	}

	m, err := processScene("pair", scene, true, quietLogger())
	if err != nil {
		t.Fatalf("processScene: %v", err)
	}
	if m.BoneCount() != 1 {
		t.Fatalf("BoneCount = %d, want 1", m.BoneCount())
	}
	if got := m.Bones().Offset(0); got != first {
		t.Errorf("offset = %v, want first registration %v", got, first)
	}
	meshes := m.Meshes()
	if len(meshes) != 2 {
		t.Fatalf("len(Meshes) = %d, want 2", len(meshes))
	}
	if meshes[0].Vertices[0].BoneIndices[0] != 0 || meshes[1].Vertices[2].BoneIndices[0] != 0 {
		t.Errorf("both meshes should reference bone 0")
	}
	if meshes[0].Vertices[1].InfluenceCount() != 0 {
		t.Errorf("unweighted vertex has %d influences", meshes[0].Vertices[1].InfluenceCount())
	}
}

func TestProcessSceneKeepsStrongestFourInfluences(t *testing.T) {
	weights := []float32{0.1, 0.9, 0.5, 0.3, 0.7}
	var bones []model.ImportedBone
	for i, w := range weights {
		bones = append(bones, model.ImportedBone{
			Name:    string(rune('a' + i)),
			Offset:  mgl32.Ident4(),
			Weights: []model.VertexWeight{{VertexIndex: 0, Weight: w}},
		})
	}
	scene := &model.ImportedScene{
		Root:   &model.Node{Name: "root", Transform: mgl32.Ident4(), MeshIndices: []int{0}},
		Meshes: []model.ImportedMesh{triangleMesh("m", bones...)},
	}

	m, err := processScene("five", scene, false, quietLogger())
	if err != nil {
		t.Fatalf("processScene: %v", err)
	}
	v := m.Meshes()[0].Vertices[0]
	if want := [4]float32{0.9, 0.7, 0.5, 0.3}; v.BoneWeights != want {
		t.Errorf("BoneWeights = %v, want %v", v.BoneWeights, want)
	}
	if want := [4]int32{1, 4, 2, 3}; v.BoneIndices != want {
		t.Errorf("BoneIndices = %v, want %v", v.BoneIndices, want)
	}

	normalized, err := processScene("five", scene, true, quietLogger())
	if err != nil {
		t.Fatalf("processScene: %v", err)
	}
	if sum := normalized.Meshes()[0].Vertices[0].WeightSum(); math.Abs(float64(sum)-1) > 1e-6 {
		t.Errorf("normalized weight sum = %v, want 1", sum)
	}
}

func TestProcessSceneGlobalInverse(t *testing.T) {
	rootTransform := mgl32.Translate3D(2, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	scene := &model.ImportedScene{Root: model.NewNode("root", rootTransform)}

	m, err := processScene("inv", scene, true, quietLogger())
	if err != nil {
		t.Fatalf("processScene: %v", err)
	}
	if got := m.GlobalInverseTransform().Mul4(rootTransform); !got.ApproxEqualThreshold(mgl32.Ident4(), 1e-6) {
		t.Errorf("globalInverse * root = %v, want identity", got)
	}
	if m.Name() != "inv" {
		t.Errorf("Name = %q, want fallback %q", m.Name(), "inv")
	}
}

func TestProcessSceneProcessesSharedMeshOnce(t *testing.T) {
	root := model.NewNode("root", mgl32.Ident4(),
		&model.Node{Name: "left", Transform: mgl32.Ident4(), MeshIndices: []int{0}},
		&model.Node{Name: "right", Transform: mgl32.Ident4(), MeshIndices: []int{0}},
	)
	scene := &model.ImportedScene{Root: root, Meshes: []model.ImportedMesh{triangleMesh("shared")}}

	m, err := processScene("shared", scene, true, quietLogger())
	if err != nil {
		t.Fatalf("processScene: %v", err)
	}
	if len(m.Meshes()) != 1 {
		t.Errorf("len(Meshes) = %d, want 1", len(m.Meshes()))
	}
	if m.Skinned() {
		t.Errorf("model without bones reports Skinned")
	}
	if got := m.Meshes()[0].Indices; len(got) != 3 || got[2] != 2 {
		t.Errorf("Indices = %v, want [0 1 2]", got)
	}
	if r := m.BoundingRadius(); r != 2 {
		t.Errorf("BoundingRadius = %v, want 2", r)
	}
}

func TestProcessSceneErrors(t *testing.T) {
	badWeight := triangleMesh("w", model.ImportedBone{Name: "b", Offset: mgl32.Ident4(), Weights: []model.VertexWeight{{VertexIndex: 9, Weight: 1}}})
	badFace := triangleMesh("f")
	badFace.Faces = [][3]uint32{{0, 1, 7}}

	tests := []struct {
		name    string
		scene   *model.ImportedScene
		wantErr error
		wantMsg string
	}{
		{name: "nil scene", scene: nil, wantErr: ErrIncompleteScene},
		{name: "missing root", scene: &model.ImportedScene{Name: "x"}, wantErr: ErrIncompleteScene},
		{
			name:    "singular root",
			scene:   &model.ImportedScene{Root: model.NewNode("root", mgl32.Scale3D(0, 1, 1))},
			wantMsg: "singular",
		},
		{
			name:    "mesh out of range",
			scene:   &model.ImportedScene{Root: &model.Node{Name: "root", Transform: mgl32.Ident4(), MeshIndices: []int{3}}},
			wantMsg: "references mesh 3",
		},
		{
			name: "weight vertex out of range",
			scene: &model.ImportedScene{
				Root:   &model.Node{Name: "root", Transform: mgl32.Ident4(), MeshIndices: []int{0}},
				Meshes: []model.ImportedMesh{badWeight},
			},
			wantMsg: "weights vertex 9",
		},
		{
			name: "face vertex out of range",
			scene: &model.ImportedScene{
				Root:   &model.Node{Name: "root", Transform: mgl32.Ident4(), MeshIndices: []int{0}},
				Meshes: []model.ImportedMesh{badFace},
			},
			wantMsg: "references vertex 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processScene("bad", tt.scene, true, quietLogger())
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestProcessSceneLogsInvalidChannels(t *testing.T) {
	var buf bytes.Buffer
	clip := model.NewAnimationClip("broken", 10, 1, []model.AnimationChannel{{
		NodeName:     "root",
		PositionKeys: []model.VectorKeyframe{{Time: 5}, {Time: 1}},
		RotationKeys: []model.QuaternionKeyframe{{Value: mgl32.QuatIdent()}},
		ScaleKeys:    []model.VectorKeyframe{{Value: mgl32.Vec3{1, 1, 1}}},
	}})
	scene := &model.ImportedScene{
		Name:       "logged",
		Root:       model.NewNode("root", mgl32.Ident4()),
		Animations: []*model.AnimationClip{clip},
	}

	m, err := processScene("logged", scene, true, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("processScene: %v", err)
	}
	if m.AnimationCount() != 1 {
		t.Errorf("invalid clip should be kept, AnimationCount = %d", m.AnimationCount())
	}
	out := buf.String()
	if !strings.HasPrefix(out, "[Loader] logged") || !strings.Contains(out, "not ascending") {
		t.Errorf("log = %q, want a [Loader] warning about unsorted keys", out)
	}
}
