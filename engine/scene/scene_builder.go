package scene

import (
	"log"

	"github.com/Carmen-Shannon/oxy-skin/engine/profiler"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCharacters adds initial characters to the scene.
// A nil character or a duplicate name is logged and skipped.
//
// Parameters:
//   - characters: the characters to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCharacters(characters ...Character) SceneBuilderOption {
	return func(s *scene) {
		for _, c := range characters {
			if err := s.addCharacter(c); err != nil {
				s.logger.Printf("[Scene] %s: skipping character: %v", s.name, err)
			}
		}
	}
}

// WithWorkers sets the number of worker goroutines used to evaluate poses.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithProfiler attaches a profiler that records and ticks once per Update.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) SceneBuilderOption {
	return func(s *scene) {
		s.profiler = p
	}
}

// WithLogger sets the destination for scene log lines.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(l *log.Logger) SceneBuilderOption {
	return func(s *scene) {
		if l != nil {
			s.logger = l
		}
	}
}
