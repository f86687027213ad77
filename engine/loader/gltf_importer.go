package loader

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// unnamedModel is the scene name used when neither the document nor the caller supplies one.
const unnamedModel = "unnamed_model"

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and all extractors to produce a complete ImportedScene.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts all data into an ImportedScene.
	// This includes the node tree, meshes with bone weights, animations, and materials.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *model.ImportedScene: the fully populated imported scene
	//   - error: error if import fails
	Import(path string) (*model.ImportedScene, error)

	// ImportReader loads a glTF document from a reader and extracts all data.
	// The reader should provide a complete glTF JSON or GLB binary stream with embedded buffers.
	//
	// Parameters:
	//   - r: the reader providing glTF/GLB data
	//
	// Returns:
	//   - *model.ImportedScene: the fully populated imported scene
	//   - error: error if import fails
	ImportReader(r io.Reader) (*model.ImportedScene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*model.ImportedScene, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, err
	}
	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader) (*model.ImportedScene, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r); err != nil {
		return nil, err
	}
	return imp.importFromParser(parser, "")
}

// importFromParser performs a full import from a parser that has already loaded a document.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackPath: optional file path used as a fallback for scene naming
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackPath string) (*model.ImportedScene, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, errors.New("no document after parsing")
	}

	skins := newGLTFSkinExtractor(parser)
	meshes, meshMap, err := newGLTFMeshExtractor(parser, skins).ExtractAllMeshes()
	if err != nil {
		return nil, errors.Wrap(err, "mesh extraction failed")
	}

	root, err := newGLTFNodeExtractor(parser).ExtractTree(meshMap)
	if err != nil {
		return nil, errors.Wrap(err, "node extraction failed")
	}

	animations, err := newGLTFAnimationExtractor(parser).ExtractAllAnimations()
	if err != nil {
		return nil, errors.Wrap(err, "animation extraction failed")
	}

	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, errors.Wrap(err, "material extraction failed")
	}

	return &model.ImportedScene{
		Name:       gltfSceneName(doc, fallbackPath),
		Root:       root,
		Meshes:     meshes,
		Materials:  materials,
		Animations: animations,
	}, nil
}

// gltfSceneName derives a scene name from the default scene, then the file name without extension.
func gltfSceneName(doc *gltf.Document, fallbackPath string) string {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallbackPath != "" {
		base := filepath.Base(fallbackPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return unnamedModel
}
