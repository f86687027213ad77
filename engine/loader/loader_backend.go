package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
)

// loaderBackend defines the importer contract: load a scene file or stream into an ImportedScene.
// Concrete implementations (e.g., gltfLoaderBackendImpl) handle format-specific details; model
// processing only ever sees the ImportedScene.
type loaderBackend interface {
	// Accepts reports whether the backend handles the file, judged by its extension.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - bool: true if Load can import the file
	Accepts(path string) bool

	// Load performs a full scene import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedScene: the imported scene
	//   - error: error if the file cannot be opened or parsed
	Load(path string) (*model.ImportedScene, error)

	// LoadReader imports a scene from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing scene data
	//
	// Returns:
	//   - *model.ImportedScene: the imported scene
	//   - error: error if the stream cannot be parsed
	LoadReader(r io.Reader) (*model.ImportedScene, error)
}
