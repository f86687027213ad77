package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
	skins  gltfSkinExtractor
}

// gltfMeshExtractor defines the interface for extracting mesh data from a parsed glTF document.
// It converts raw glTF accessor data into ImportedMesh values, attaching bone weights for
// meshes instanced by a skinned node.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index.
	// Returns one ImportedMesh per triangle primitive (glTF meshes can have multiple primitives).
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex uint32) ([]model.ImportedMesh, error)

	// ExtractAllMeshes extracts all meshes from the document.
	// Returns a flattened slice with one ImportedMesh per primitive across all meshes, plus
	// the mapping from glTF mesh index to positions in that slice.
	//
	// Returns:
	//   - []model.ImportedMesh: all meshes (flattened, one per primitive)
	//   - map[uint32][]int: glTF mesh index to flattened mesh indices
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]model.ImportedMesh, map[uint32][]int, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - skins: the skin extractor used for skinned primitives
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser, skins gltfSkinExtractor) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, skins: skins}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex uint32) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if int(meshIndex) >= len(doc.Meshes) {
		return nil, errors.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := doc.Meshes[meshIndex]
	skinIndex, skinned := e.skins.SkinForMesh(meshIndex)

	var result []model.ImportedMesh
	for primIdx, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		imported, err := e.extractPrimitive(prim, meshName(mesh.Name, meshIndex, primIdx, len(mesh.Primitives)))
		if err != nil {
			return nil, errors.Wrapf(err, "primitive %d", primIdx)
		}
		if skinned {
			imported.Bones, err = e.skins.ExtractBones(skinIndex, prim, len(imported.Positions))
			if err != nil {
				return nil, errors.Wrapf(err, "primitive %d skin %d", primIdx, skinIndex)
			}
		}
		result = append(result, *imported)
	}

	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.ImportedMesh, map[uint32][]int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errors.New("no document loaded")
	}

	var all []model.ImportedMesh
	meshMap := make(map[uint32][]int, len(doc.Meshes))
	for i := range doc.Meshes {
		meshes, err := e.ExtractMesh(uint32(i))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "mesh %d", i)
		}
		for _, m := range meshes {
			meshMap[uint32(i)] = append(meshMap[uint32(i)], len(all))
			all = append(all, m)
		}
	}

	return all, meshMap, nil
}

// extractPrimitive extracts a single primitive as an ImportedMesh without bones.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltf.Primitive, name string) (*model.ImportedMesh, error) {
	posAccessor, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadPositions(posAccessor)
	if err != nil {
		return nil, err
	}
	vertexCount := len(positions)

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndices(*prim.Indices)
		if err != nil {
			return nil, err
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	faces := make([][3]uint32, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		faces = append(faces, [3]uint32{indices[i], indices[i+1], indices[i+2]})
	}

	var normals [][3]float32
	if normalAccessor, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = e.parser.ReadNormals(normalAccessor)
		if err != nil {
			return nil, err
		}
	} else if len(faces) > 0 {
		normals = generateNormals(positions, faces)
	}

	materialIndex := -1
	if prim.Material != nil {
		materialIndex = int(*prim.Material)
	}

	return &model.ImportedMesh{
		Name:          name,
		Positions:     positions,
		Normals:       normals,
		Faces:         faces,
		MaterialIndex: materialIndex,
	}, nil
}

func meshName(name string, meshIndex uint32, primIndex, primCount int) string {
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	if primCount > 1 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}
	return name
}

// generateNormals computes smooth per-vertex normals by accumulating area-weighted face normals
// over every triangle that references the vertex. Vertices with no usable triangles face +Y.
//
// Parameters:
//   - positions: the vertex positions
//   - faces: the triangles as vertex index triples
//
// Returns:
//   - [][3]float32: one unit normal per vertex
func generateNormals(positions [][3]float32, faces [][3]uint32) [][3]float32 {
	n := len(positions)
	accum := make([]mgl32.Vec3, n)

	for _, f := range faces {
		if int(f[0]) >= n || int(f[1]) >= n || int(f[2]) >= n {
			continue
		}
		p0, p1, p2 := mgl32.Vec3(positions[f[0]]), mgl32.Vec3(positions[f[1]]), mgl32.Vec3(positions[f[2]])
		// Cross product length is proportional to triangle area.
		faceNormal := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range f {
			accum[idx] = accum[idx].Add(faceNormal)
		}
	}

	normals := make([][3]float32, n)
	for i, v := range accum {
		if v.Len() < 1e-6 {
			normals[i] = [3]float32{0, 1, 0}
			continue
		}
		normals[i] = v.Normalize()
	}
	return normals
}
