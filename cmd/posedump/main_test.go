package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"gopkg.in/yaml.v3"
)

// decodedReport mirrors Report with plain matrices so the output can be read back.
type decodedReport struct {
	TicksPerSecond float64 `yaml:"ticks_per_second"`
	Characters     []struct {
		Name   string   `yaml:"name"`
		Model  string   `yaml:"model"`
		Clip   string   `yaml:"clip"`
		Bones  []string `yaml:"bones"`
		Frames []struct {
			Time          float64     `yaml:"time"`
			AnimationTime float64     `yaml:"animation_time"`
			Error         string      `yaml:"error"`
			Matrices      [][]float64 `yaml:"matrices"`
		} `yaml:"frames"`
	} `yaml:"characters"`
	Skipped []string `yaml:"skipped"`
}

// writeTurnGLB writes a one-bone model whose "turn" clip rotates the bone 90 degrees
// about Z over one second.
func writeTurnGLB(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()
	doc.Scenes[0].Name = "turner"

	position := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	indices := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	joints := modeler.WriteJoints(doc, [][4]uint16{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}})
	weights := modeler.WriteWeights(doc, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name: "plate",
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(indices),
			Attributes: map[string]uint32{
				gltf.POSITION: position,
				"JOINTS_0":    joints,
				"WEIGHTS_0":   weights,
			},
		}},
	}}

	ibm := modeler.WriteAccessor(doc, gltf.TargetNone, [][4][4]float32{{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}})
	doc.Skins = []*gltf.Skin{{Joints: []uint32{1}, InverseBindMatrices: gltf.Index(ibm)}}

	identityRotation := [4]float32{0, 0, 0, 1}
	unitScale := [3]float32{1, 1, 1}
	doc.Nodes = []*gltf.Node{
		{Name: "plate", Mesh: gltf.Index(0), Skin: gltf.Index(0), Rotation: identityRotation, Scale: unitScale},
		{Name: "bone", Rotation: identityRotation, Scale: unitScale},
	}
	doc.Scenes[0].Nodes = []uint32{0, 1}

	s := float32(math.Sqrt2 / 2)
	times := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1})
	values := modeler.WriteAccessor(doc, gltf.TargetNone, [][4]float32{{0, 0, 0, 1}, {0, 0, s, s}})
	doc.Animations = []*gltf.Animation{{
		Name:     "turn",
		Samplers: []*gltf.AnimationSampler{{Input: gltf.Index(times), Output: gltf.Index(values)}},
		Channels: []*gltf.Channel{{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(1), Path: gltf.TRSRotation}}},
	}}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		t.Fatalf("encode GLB: %v", err)
	}
	path := filepath.Join(dir, "turner.glb")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write GLB: %v", err)
	}
	return path
}

func runPosedump(t *testing.T, args ...string) decodedReport {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr:\n%s", err, stderr.String())
	}
	var report decodedReport
	if err := yaml.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout.String())
	}
	return report
}

func TestRunDumpsPoses(t *testing.T) {
	path := writeTurnGLB(t, t.TempDir())
	report := runPosedump(t, "-model", path, "-times", "0, 0.5", "-workers", "2")

	if len(report.Characters) != 1 {
		t.Fatalf("characters = %d, want 1", len(report.Characters))
	}
	ch := report.Characters[0]
	if ch.Name != "turner" || ch.Model != "turner" || ch.Clip != "turn" {
		t.Errorf("character = %s model %s clip %s", ch.Name, ch.Model, ch.Clip)
	}
	if len(ch.Bones) != 1 || ch.Bones[0] != "bone" {
		t.Errorf("bones = %v, want [bone]", ch.Bones)
	}
	if len(ch.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(ch.Frames))
	}

	start := ch.Frames[0]
	if start.Error != "" || len(start.Matrices) != 1 || len(start.Matrices[0]) != 16 {
		t.Fatalf("frame 0 = %+v", start)
	}
	if start.Matrices[0][0] != 1 || start.Matrices[0][1] != 0 {
		t.Errorf("frame 0 should be the rest pose, got %v", start.Matrices[0])
	}

	half := ch.Frames[1]
	if half.Time != 0.5 || half.AnimationTime != 0.5 {
		t.Errorf("frame 1 time %v animation time %v", half.Time, half.AnimationTime)
	}
	var got mgl32.Mat4
	for i, v := range half.Matrices[0] {
		got[i] = float32(v)
	}
	if !got.ApproxEqualThreshold(mgl32.HomogRotate3DZ(math.Pi/4), 1e-5) {
		t.Errorf("frame 1 matrix = %v, want a 45 degree turn (column-major)", got)
	}
}

func TestRunSkipsModelsThatFailToLoad(t *testing.T) {
	dir := t.TempDir()
	good := writeTurnGLB(t, dir)
	cfgPath := filepath.Join(dir, "crowd.yaml")
	cfg := "times: [0.25]\ncharacters:\n  - {name: ok, model: " + good + "}\n  - {name: ghost, model: " + filepath.Join(dir, "ghost.glb") + "}\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	report := runPosedump(t, "-config", cfgPath)
	if len(report.Characters) != 1 || report.Characters[0].Name != "ok" {
		t.Errorf("characters = %+v, want only ok", report.Characters)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "ghost" {
		t.Errorf("skipped = %v, want [ghost]", report.Skipped)
	}
	if report.TicksPerSecond != 25 {
		t.Errorf("ticks_per_second = %v, want the default 25", report.TicksPerSecond)
	}
}

func TestRunSpewFormat(t *testing.T) {
	path := writeTurnGLB(t, t.TempDir())
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-model", path, "-format", "spew"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "CharacterReport") {
		t.Errorf("spew output missing report types:\n%s", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no characters", args: nil, want: "nothing to evaluate"},
		{name: "bad time", args: []string{"-model", "x.glb", "-times", "0,soon"}, want: "invalid time"},
		{name: "bad policy", args: []string{"-model", "x.glb", "-policy", "panic"}, want: "failure policy"},
		{name: "bad format", args: []string{"-model", "x.glb", "-format", "xml"}, want: "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParseTimes(t *testing.T) {
	got, err := parseTimes(" 0, 1.5,,2 ")
	if err != nil {
		t.Fatalf("parseTimes: %v", err)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1.5 || got[2] != 2 {
		t.Errorf("parseTimes = %v", got)
	}
	if got, _ := parseTimes(""); got != nil {
		t.Errorf("empty input = %v, want nil", got)
	}
}
