package loader

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
)

// gltfExtensions are the file extensions the glTF backend accepts, lower case.
var gltfExtensions = map[string]bool{".gltf": true, ".glb": true}

// gltfLoaderBackendImpl is the loaderBackend for glTF 2.0 text and binary files.
// Every import gets a fresh parser, so one backend may serve concurrent loads.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{importer: newGLTFImporter()}
}

func (b *gltfLoaderBackendImpl) Accepts(path string) bool {
	return gltfExtensions[strings.ToLower(filepath.Ext(path))]
}

func (b *gltfLoaderBackendImpl) Load(path string) (*model.ImportedScene, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader) (*model.ImportedScene, error) {
	return b.importer.ImportReader(r)
}
