package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/pkg/errors"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor defines the interface for converting glTF materials into Phong colours.
//
// glTF materials are metallic-roughness; only the base colour factor carries over. It becomes
// the diffuse colour, ambient stays zero so the renderer falls back to diffuse, and specular
// is common.DefaultSpecular. Textures are not read.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - common.PhongMaterial: the extracted material
	//   - error: error if the index is out of range
	ExtractMaterial(materialIndex uint32) (common.PhongMaterial, error)

	// ExtractAllMaterials extracts all materials from the document, in document order.
	//
	// Returns:
	//   - []common.PhongMaterial: all extracted materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]common.PhongMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex uint32) (common.PhongMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return common.PhongMaterial{}, errors.New("no document loaded")
	}
	if int(materialIndex) >= len(doc.Materials) {
		return common.PhongMaterial{}, errors.Errorf("material index %d out of range", materialIndex)
	}
	mat := doc.Materials[materialIndex]

	result := common.PhongMaterial{
		Name:     mat.Name,
		Diffuse:  [4]float32{1, 1, 1, 1},
		Specular: common.DefaultSpecular,
	}
	if result.Name == "" {
		result.Name = fmt.Sprintf("material_%d", materialIndex)
	}
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		result.Diffuse = *pbr.BaseColorFactor
	}
	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]common.PhongMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	materials := make([]common.PhongMaterial, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(uint32(i))
		if err != nil {
			return nil, err
		}
		materials[i] = mat
	}
	return materials, nil
}
