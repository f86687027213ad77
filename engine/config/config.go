package config

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/animator"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Character places one instance of a model in the scene.
type Character struct {
	Name     string     `yaml:"name"`
	Model    string     `yaml:"model"`
	Clip     string     `yaml:"clip,omitempty"`
	Position [3]float32 `yaml:"position,flow"`
	Rotation [3]float32 `yaml:"rotation,flow"` // degrees
	Scale    [3]float32 `yaml:"scale,flow"`
}

// Config holds the evaluation settings and the characters to evaluate.
type Config struct {
	// Evaluation
	TicksPerSecond   float64   `yaml:"ticks_per_second"`
	NormalizeWeights *bool     `yaml:"normalize_weights"`
	FailurePolicy    string    `yaml:"failure_policy"`
	Workers          int       `yaml:"workers"`
	Times            []float64 `yaml:"times,flow"`

	Characters []Character `yaml:"characters"`
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the file's setting alone.
type Flags struct {
	Model          string
	Clip           string
	Times          []float64
	TicksPerSecond float64
	Workers        int
	FailurePolicy  string
}

// Load reads a YAML config file, fills in defaults and validates it.
// Unknown keys are rejected. An empty file yields the defaults.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the loaded config
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	cfg.Resolve(Flags{})
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Resolve applies flag overrides, then fills every unset field with its default.
// A -model flag replaces the configured characters with a single character at the origin.
//
// Parameters:
//   - flags: the CLI overrides
func (c *Config) Resolve(flags Flags) {
	if flags.Model != "" {
		c.Characters = []Character{{Model: flags.Model}}
	}
	if flags.Clip != "" {
		for i := range c.Characters {
			c.Characters[i].Clip = flags.Clip
		}
	}
	if len(flags.Times) > 0 {
		c.Times = append([]float64(nil), flags.Times...)
	}
	if flags.TicksPerSecond > 0 {
		c.TicksPerSecond = flags.TicksPerSecond
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.FailurePolicy != "" {
		c.FailurePolicy = flags.FailurePolicy
	}

	if c.TicksPerSecond == 0 {
		c.TicksPerSecond = animator.DefaultTicksPerSecond
	}
	if c.NormalizeWeights == nil {
		normalize := true
		c.NormalizeWeights = &normalize
	}
	if c.FailurePolicy == "" {
		c.FailurePolicy = animator.PolicyRetainLastPose.String()
	}
	if c.Workers <= 0 {
		c.Workers = max(runtime.NumCPU()-1, 1)
	}
	if len(c.Times) == 0 {
		c.Times = []float64{0}
	}

	used := make(map[string]bool, len(c.Characters))
	for i := range c.Characters {
		ch := &c.Characters[i]
		if ch.Scale == [3]float32{} {
			ch.Scale = [3]float32{1, 1, 1}
		}
		if ch.Name == "" && ch.Model != "" {
			base := strings.TrimSuffix(filepath.Base(ch.Model), filepath.Ext(ch.Model))
			ch.Name = base
			for n := 2; used[ch.Name]; n++ {
				ch.Name = base + "_" + strconv.Itoa(n)
			}
		}
		used[ch.Name] = true
	}
}

// Validate reports the first invalid setting.
//
// Returns:
//   - error: nil if the config is usable
func (c Config) Validate() error {
	if c.TicksPerSecond < 0 || math.IsNaN(c.TicksPerSecond) || math.IsInf(c.TicksPerSecond, 0) {
		return errors.Errorf("ticks_per_second must be a positive number, got %v", c.TicksPerSecond)
	}
	if _, err := animator.ParseFailurePolicy(c.FailurePolicy); err != nil {
		return errors.Wrap(err, "failure_policy")
	}
	for i, t := range c.Times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return errors.Errorf("times[%d] is not finite", i)
		}
	}

	seen := make(map[string]bool, len(c.Characters))
	for i, ch := range c.Characters {
		if ch.Model == "" {
			return errors.Errorf("characters[%d]: model is required", i)
		}
		if ch.Name == "" {
			return errors.Errorf("characters[%d]: name is required", i)
		}
		if seen[ch.Name] {
			return errors.Errorf("characters[%d]: duplicate name %q", i, ch.Name)
		}
		seen[ch.Name] = true
	}
	return nil
}

// Policy returns the parsed failure policy, falling back to retaining the last pose.
//
// Returns:
//   - animator.FailurePolicy: the policy
func (c Config) Policy() animator.FailurePolicy {
	p, _ := animator.ParseFailurePolicy(c.FailurePolicy)
	return p
}

// Normalize reports whether vertex weights are renormalized after import. Defaults to true.
//
// Returns:
//   - bool: the normalize_weights setting
func (c Config) Normalize() bool {
	return c.NormalizeWeights == nil || *c.NormalizeWeights
}

// ModelPaths returns each distinct model path in first-use order.
//
// Returns:
//   - []string: the model paths
func (c Config) ModelPaths() []string {
	var paths []string
	seen := make(map[string]bool)
	for _, ch := range c.Characters {
		if !seen[ch.Model] {
			seen[ch.Model] = true
			paths = append(paths, ch.Model)
		}
	}
	return paths
}
