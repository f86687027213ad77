// Command posedump loads skinned models, evaluates their poses at the requested times and
// writes the bone palettes as YAML.
//
//	posedump -model fox.glb -clip Run -times 0,0.25,0.5
//	posedump -config crowd.yaml -format spew
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-skin/engine/config"
	"github.com/Carmen-Shannon/oxy-skin/engine/loader"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/profiler"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-skin/engine/scene"
	"github.com/pkg/errors"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is main without the process exit, so it can be driven from tests.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("posedump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Path to a YAML config file")
	modelPath := fs.String("model", "", "Model to evaluate (replaces the config's characters)")
	clip := fs.String("clip", "", "Clip name to play (default: the first clip)")
	times := fs.String("times", "", "Comma separated evaluation times in seconds (default: 0)")
	tps := fs.Float64("tps", 0, "Ticks per second for clips that report none (default: 25)")
	workers := fs.Int("workers", 0, "Number of pose evaluation workers (default: NumCPU-1)")
	policy := fs.String("policy", "", "Failure policy: retain_last_pose or substitute_identity")
	format := fs.String("format", "yaml", "Output format: yaml or spew")
	output := fs.String("output", "", "Output file (default: stdout)")
	debug := fs.Bool("debug", false, "Dump each model's scene graph to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parsedTimes, err := parseTimes(*times)
	if err != nil {
		return err
	}

	var cfg config.Config
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
		if err != nil {
			return err
		}
	}
	cfg.Resolve(config.Flags{
		Model:          *modelPath,
		Clip:           *clip,
		Times:          parsedTimes,
		TicksPerSecond: *tps,
		Workers:        *workers,
		FailurePolicy:  *policy,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Characters) == 0 {
		return errors.New("nothing to evaluate: use -model or a config with characters")
	}

	logger := log.New(stderr, "", log.LstdFlags)

	l := loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithWeightNormalization(cfg.Normalize()),
		loader.WithLogger(logger),
	)
	if _, err := l.LoadAll(cfg.ModelPaths()); err != nil {
		logger.Printf("[Posedump] some models failed to load: %v", err)
	}

	if *debug {
		dumper := newSpewConfig()
		for _, path := range cfg.ModelPaths() {
			if m := l.Get(path); m != nil {
				fmt.Fprintf(stderr, "%s: clips %v, bones %v\n", path, m.AnimationNames(), m.Bones().Names())
				dumper.Fdump(stderr, m.Root())
			}
		}
	}

	s := scene.NewScene("posedump",
		scene.WithWorkers(cfg.Workers),
		scene.WithLogger(logger),
		scene.WithProfiler(profiler.NewProfiler(profiler.WithLogger(logger))),
	)
	defer s.Release()

	var skipped []string
	for _, ch := range cfg.Characters {
		m := l.Get(ch.Model)
		if m == nil {
			logger.Printf("[Posedump] skipping %s: model %s did not load", ch.Name, ch.Model)
			skipped = append(skipped, ch.Name)
			continue
		}
		if err := s.AddCharacter(newCharacter(ch, m, cfg, logger)); err != nil {
			logger.Printf("[Posedump] skipping %s: %v", ch.Name, err)
			skipped = append(skipped, ch.Name)
		}
	}

	report := evaluate(s, cfg)
	report.Skipped = skipped

	w := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return errors.Wrapf(err, "create %s", *output)
		}
		defer f.Close()
		w = f
	}
	return writeReport(w, report, *format)
}

// newCharacter places a configured character and configures its animator.
func newCharacter(ch config.Character, m model.Model, cfg config.Config, logger *log.Logger) scene.Character {
	animOpts := []animator.AnimatorBuilderOption{
		animator.WithDefaultTicksPerSecond(cfg.TicksPerSecond),
		animator.WithFailurePolicy(cfg.Policy()),
		animator.WithLogger(logger),
	}
	if ch.Clip != "" {
		animOpts = append(animOpts, animator.WithClipName(ch.Clip))
	}
	return scene.NewCharacter(ch.Name, m,
		scene.WithPosition(ch.Position[0], ch.Position[1], ch.Position[2]),
		scene.WithRotation(ch.Rotation[0], ch.Rotation[1], ch.Rotation[2]),
		scene.WithScale(ch.Scale[0], ch.Scale[1], ch.Scale[2]),
		scene.WithAnimatorOptions(animOpts...),
	)
}

// parseTimes parses a comma separated list of seconds. Empty input yields nil.
func parseTimes(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid time %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
