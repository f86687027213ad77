package loader

import (
	stderrors "errors"
	"io"
	"log"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for files whose extension no loader backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	backend loaderBackend

	normalizeWeights bool
	logger           *log.Logger
}

// Loader defines the public-facing interface for loading and caching animated models.
// It abstracts the file format (glTF, GLB, etc.) behind a generic backend, processes the
// imported scene into a Model (bone registry, skinned vertices, global inverse transform)
// and manages a cache of previously loaded models.
//
// Loaded models are read-only and safe to share between any number of animators.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: ErrUnsupportedFormat, an import error, or a processing error
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	// Only self-contained streams (GLB, or glTF JSON with embedded buffers) can be read.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// LoadScene processes an already imported scene and caches the model by name.
	// This is the entry point for importers that live outside this package.
	//
	// Parameters:
	//   - name: the cache key, also the model name when the scene has none
	//   - scene: the imported scene
	//
	// Returns:
	//   - model.Model: the processed model
	//   - error: ErrIncompleteScene or a processing error
	LoadScene(name string, scene *model.ImportedScene) (model.Model, error)

	// LoadAll loads every path. A path that fails is logged and skipped; the remaining
	// models are still returned.
	//
	// Parameters:
	//   - paths: the model files to load
	//
	// Returns:
	//   - []model.Model: the models that loaded, in path order
	//   - error: every load failure joined together, or nil
	LoadAll(paths []string) ([]model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model

	// Unload removes a model from the cache. Animators already holding it keep working.
	//
	// Parameters:
	//   - name: the cache key to remove
	//
	// Returns:
	//   - bool: true if the model was cached
	Unload(name string) bool
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:               sync.RWMutex{},
		modelCache:       make(map[string]model.Model),
		normalizeWeights: true,
		logger:           log.Default(),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	return l.store(path, imported)
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "no backend for %q", name)
	}

	imported, err := l.backend.LoadReader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load from reader %q", name)
	}
	if imported.Name == unnamedModel {
		imported.Name = name
	}

	return l.store(name, imported)
}

func (l *loader) LoadScene(name string, scene *model.ImportedScene) (model.Model, error) {
	return l.store(name, scene)
}

func (l *loader) LoadAll(paths []string) ([]model.Model, error) {
	models := make([]model.Model, 0, len(paths))
	var errs []error
	for _, path := range paths {
		m, err := l.Load(path)
		if err != nil {
			l.logger.Printf("[Loader] skipping %s: %v", path, err)
			errs = append(errs, err)
			continue
		}
		models = append(models, m)
	}
	return models, stderrors.Join(errs...)
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) Unload(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.modelCache[name]
	delete(l.modelCache, name)
	return ok
}

// store processes an imported scene and caches the model under key.
// When two goroutines load the same key concurrently, the first stored model wins.
func (l *loader) store(key string, scene *model.ImportedScene) (model.Model, error) {
	m, err := processScene(key, scene, l.normalizeWeights, l.logger)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		return cached, nil
	}
	l.modelCache[key] = m
	return m, nil
}

// resolveBackend returns the configured backend if it accepts the file.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	if l.backend != nil && l.backend.Accepts(path) {
		return l.backend, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%s (%q)", path, filepath.Ext(path))
}
