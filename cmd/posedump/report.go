package main

import (
	"io"
	"strconv"

	"github.com/Carmen-Shannon/oxy-skin/engine/config"
	"github.com/Carmen-Shannon/oxy-skin/engine/scene"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Report is the document posedump writes.
type Report struct {
	TicksPerSecond float64           `yaml:"ticks_per_second"`
	FailurePolicy  string            `yaml:"failure_policy"`
	Times          []float64         `yaml:"times,flow"`
	Characters     []CharacterReport `yaml:"characters"`
	Skipped        []string          `yaml:"skipped,omitempty"`
}

// CharacterReport holds every evaluated frame of one character.
type CharacterReport struct {
	Name   string        `yaml:"name"`
	Model  string        `yaml:"model"`
	Clip   string        `yaml:"clip,omitempty"`
	Bones  []string      `yaml:"bones,flow"`
	Frames []FrameReport `yaml:"frames"`
}

// FrameReport is one pose. Matrices are in bone index order.
type FrameReport struct {
	Time          float64  `yaml:"time"`
	AnimationTime float64  `yaml:"animation_time"`
	Error         string   `yaml:"error,omitempty"`
	Matrices      []Matrix `yaml:"matrices"`
}

// Matrix is a column-major 4x4 matrix written as a single flow sequence.
type Matrix mgl32.Mat4

var _ yaml.Marshaler = Matrix{}

func (m Matrix) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range m {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(float64(v), 'g', -1, 32),
		})
	}
	return n, nil
}

// evaluate runs the scene once per time and collects the frames per character.
//
// Parameters:
//   - s: the scene holding the characters to evaluate
//   - cfg: the resolved config
//
// Returns:
//   - *Report: the report, with one CharacterReport per scene character
func evaluate(s scene.Scene, cfg config.Config) *Report {
	report := &Report{
		TicksPerSecond: cfg.TicksPerSecond,
		FailurePolicy:  cfg.FailurePolicy,
		Times:          cfg.Times,
	}

	byName := make(map[string]int)
	for _, c := range s.Characters() {
		cr := CharacterReport{
			Name:  c.Name(),
			Bones: c.Animator().Registry().Names(),
		}
		if m := c.Model(); m != nil {
			cr.Model = m.Name()
		}
		if clip := c.Animator().Clip(); clip != nil {
			cr.Clip = clip.Name
		}
		byName[c.Name()] = len(report.Characters)
		report.Characters = append(report.Characters, cr)
	}

	for _, t := range cfg.Times {
		for _, fr := range s.Update(t) {
			frame := FrameReport{Time: t, AnimationTime: fr.AnimationTime}
			if fr.Err != nil {
				frame.Error = fr.Err.Error()
			}
			frame.Matrices = make([]Matrix, len(fr.Matrices))
			for i, m := range fr.Matrices {
				frame.Matrices[i] = Matrix(m)
			}
			cr := &report.Characters[byName[fr.Character]]
			cr.Frames = append(cr.Frames, frame)
		}
	}
	return report
}

// newSpewConfig returns the dump settings used for -format spew and -debug.
func newSpewConfig() *spew.ConfigState {
	cfg := spew.NewDefaultConfig()
	cfg.DisableCapacities = true
	cfg.DisablePointerAddresses = true
	cfg.SortKeys = true
	return cfg
}

// writeReport encodes the report in the requested format.
//
// Parameters:
//   - w: the destination
//   - report: the report to write
//   - format: "yaml" or "spew"
//
// Returns:
//   - error: an unknown format or an encoding error
func writeReport(w io.Writer, report *Report, format string) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "failed to marshal yaml")
		}
		return errors.Wrap(enc.Close(), "failed to close yaml encoder")
	case "spew":
		newSpewConfig().Fdump(w, report)
		return nil
	default:
		return errors.Errorf("unknown format %q (want yaml or spew)", format)
	}
}
