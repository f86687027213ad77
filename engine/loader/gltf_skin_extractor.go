package loader

import (
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// Vertex attribute names for the first joint/weight set.
const (
	attrJoints0  = "JOINTS_0"
	attrWeights0 = "WEIGHTS_0"
)

// gltfSkinExtractorImpl is the implementation of the gltfSkinExtractor interface.
type gltfSkinExtractorImpl struct {
	parser gltfParser

	// inverseBind caches each skin's inverse bind matrices by skin index.
	inverseBind map[uint32][]mgl32.Mat4
}

// gltfSkinExtractor converts glTF skins into per-mesh bone weight lists.
// Bones are identified by the joint node's name, so the pose evaluator can bind them
// to scene graph nodes without keeping glTF indices around.
type gltfSkinExtractor interface {
	// SkinForMesh finds the skin bound to the first node instancing the mesh.
	//
	// Parameters:
	//   - meshIndex: the glTF mesh index
	//
	// Returns:
	//   - uint32: the skin index
	//   - bool: false if no skinned node instances the mesh
	SkinForMesh(meshIndex uint32) (uint32, bool)

	// ExtractBones reads JOINTS_0/WEIGHTS_0 of a primitive and groups the non-zero weights by joint.
	// Joints without any weight on this primitive are omitted. The returned bones follow
	// the skin's joint order.
	//
	// Parameters:
	//   - skinIndex: the skin bound to the primitive's node
	//   - prim: the primitive
	//   - vertexCount: the primitive's vertex count
	//
	// Returns:
	//   - []model.ImportedBone: one bone per influencing joint, or nil if the primitive has no skin attributes
	//   - error: error if an accessor is invalid or a joint index is outside the skin
	ExtractBones(skinIndex uint32, prim *gltf.Primitive, vertexCount int) ([]model.ImportedBone, error)
}

var _ gltfSkinExtractor = &gltfSkinExtractorImpl{}

// newGLTFSkinExtractor creates a new skin extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfSkinExtractor: the skin extractor
func newGLTFSkinExtractor(parser gltfParser) gltfSkinExtractor {
	return &gltfSkinExtractorImpl{
		parser:      parser,
		inverseBind: make(map[uint32][]mgl32.Mat4),
	}
}

func (e *gltfSkinExtractorImpl) SkinForMesh(meshIndex uint32) (uint32, bool) {
	doc := e.parser.Document()
	if doc == nil {
		return 0, false
	}
	for _, node := range doc.Nodes {
		if node.Mesh != nil && *node.Mesh == meshIndex && node.Skin != nil {
			return *node.Skin, true
		}
	}
	return 0, false
}

func (e *gltfSkinExtractorImpl) ExtractBones(skinIndex uint32, prim *gltf.Primitive, vertexCount int) ([]model.ImportedBone, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if int(skinIndex) >= len(doc.Skins) {
		return nil, errors.Errorf("skin index %d out of range", skinIndex)
	}
	skin := doc.Skins[skinIndex]

	jointsAccessor, hasJoints := prim.Attributes[attrJoints0]
	weightsAccessor, hasWeights := prim.Attributes[attrWeights0]
	if !hasJoints || !hasWeights {
		return nil, nil
	}

	joints, err := e.parser.ReadJoints(jointsAccessor)
	if err != nil {
		return nil, err
	}
	weights, err := e.parser.ReadWeights(weightsAccessor)
	if err != nil {
		return nil, err
	}
	if len(joints) != vertexCount || len(weights) != vertexCount {
		return nil, errors.Errorf("skin attributes cover %d/%d vertices, mesh has %d", len(joints), len(weights), vertexCount)
	}

	offsets, err := e.offsets(skinIndex)
	if err != nil {
		return nil, err
	}

	perJoint := make([][]model.VertexWeight, len(skin.Joints))
	for v := range joints {
		for k := 0; k < 4; k++ {
			w := weights[v][k]
			if w == 0 {
				continue
			}
			j := int(joints[v][k])
			if j >= len(skin.Joints) {
				return nil, errors.Errorf("vertex %d references joint %d, skin has %d", v, j, len(skin.Joints))
			}
			perJoint[j] = append(perJoint[j], model.VertexWeight{VertexIndex: uint32(v), Weight: w})
		}
	}

	var bones []model.ImportedBone
	for j, ws := range perJoint {
		if len(ws) == 0 {
			continue
		}
		bones = append(bones, model.ImportedBone{
			Name:    gltfNodeName(doc, skin.Joints[j]),
			Offset:  offsets[j],
			Weights: ws,
		})
	}
	return bones, nil
}

// offsets returns one inverse bind matrix per joint of the skin, identity where none is authored.
func (e *gltfSkinExtractorImpl) offsets(skinIndex uint32) ([]mgl32.Mat4, error) {
	if cached, ok := e.inverseBind[skinIndex]; ok {
		return cached, nil
	}

	skin := e.parser.Document().Skins[skinIndex]
	out := make([]mgl32.Mat4, len(skin.Joints))
	for i := range out {
		out[i] = mgl32.Ident4()
	}
	if skin.InverseBindMatrices != nil {
		ibm, err := e.parser.ReadMat4s(*skin.InverseBindMatrices)
		if err != nil {
			return nil, errors.Wrap(err, "inverse bind matrices")
		}
		copy(out, ibm)
	}

	e.inverseBind[skinIndex] = out
	return out, nil
}
