package loader

import (
	"log"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}

// WithWeightNormalization is an option builder that controls whether vertex bone weights are
// rescaled to sum to 1 after the four strongest influences are selected. Enabled by default.
//
// Parameters:
//   - enabled: true to normalize weights
//
// Returns:
//   - LoaderBuilderOption: a function that applies the normalization option to a loader
func WithWeightNormalization(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.normalizeWeights = enabled
	}
}

// WithLogger is an option builder that sets the logger used for import warnings and skipped files.
//
// Parameters:
//   - logger: the logger; nil keeps the default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
