package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// syntheticRootName names the node that adopts a scene's top-level nodes when there is more than one.
const syntheticRootName = "RootNode"

// gltfNodeExtractorImpl is the implementation of the gltfNodeExtractor interface.
type gltfNodeExtractorImpl struct {
	parser gltfParser
}

// gltfNodeExtractor builds the engine scene graph from a parsed glTF document.
type gltfNodeExtractor interface {
	// ExtractTree builds the node tree of the document's default scene (or the first scene,
	// or every parentless node when the document has no scenes).
	//
	// Parameters:
	//   - meshMap: maps a glTF mesh index to the ImportedScene mesh indices of its primitives
	//
	// Returns:
	//   - *model.Node: the scene root, or nil if the document has no nodes
	//   - error: error if a node reference is invalid or the hierarchy has a cycle
	ExtractTree(meshMap map[uint32][]int) (*model.Node, error)
}

var _ gltfNodeExtractor = &gltfNodeExtractorImpl{}

// newGLTFNodeExtractor creates a new node extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfNodeExtractor: the node extractor
func newGLTFNodeExtractor(parser gltfParser) gltfNodeExtractor {
	return &gltfNodeExtractorImpl{parser: parser}
}

func (e *gltfNodeExtractorImpl) ExtractTree(meshMap map[uint32][]int) (*model.Node, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	roots := gltfRootNodes(doc)
	if len(roots) == 0 {
		return nil, nil
	}

	onPath := make(map[uint32]bool)
	var build func(index uint32) (*model.Node, error)
	build = func(index uint32) (*model.Node, error) {
		if int(index) >= len(doc.Nodes) {
			return nil, errors.Errorf("node %d out of range (%d nodes)", index, len(doc.Nodes))
		}
		if onPath[index] {
			return nil, errors.Errorf("node %d is its own ancestor", index)
		}
		onPath[index] = true
		defer delete(onPath, index)

		src := doc.Nodes[index]
		node := model.NewNode(gltfNodeName(doc, index), gltfNodeTransform(src))
		if src.Mesh != nil {
			node.MeshIndices = append(node.MeshIndices, meshMap[*src.Mesh]...)
		}
		for _, child := range src.Children {
			c, err := build(child)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, c)
		}
		return node, nil
	}

	if len(roots) == 1 {
		return build(roots[0])
	}

	root := model.NewNode(syntheticRootName, mgl32.Ident4())
	for _, r := range roots {
		c, err := build(r)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, c)
	}
	return root, nil
}

// gltfRootNodes returns the top-level node indices to import.
func gltfRootNodes(doc *gltf.Document) []uint32 {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			scene = int(*doc.Scene)
		}
		return doc.Scenes[scene].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []uint32
	for i, p := range hasParent {
		if !p {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

// gltfNodeName returns the node's name, or node_<index> for unnamed nodes.
// Bones and animation channels bind to nodes through this name.
func gltfNodeName(doc *gltf.Document, index uint32) string {
	if int(index) < len(doc.Nodes) && doc.Nodes[index].Name != "" {
		return doc.Nodes[index].Name
	}
	return fmt.Sprintf("node_%d", index)
}

// gltfNodeTransform returns the node's local transform: its matrix when one is authored, otherwise T * R * S.
func gltfNodeTransform(n *gltf.Node) mgl32.Mat4 {
	if n.Matrix != [16]float32{} && mgl32.Mat4(n.Matrix) != mgl32.Ident4() {
		return mgl32.Mat4(n.Matrix)
	}
	t, r, s := gltfNodeRestTRS(n)
	return common.ComposeTRS(t, r, s)
}

// gltfNodeRestTRS returns the node's rest translation, rotation and scale.
// The decoder fills glTF defaults, so scale is taken as authored; a zero scale hides the node.
// A zero rotation is not a valid quaternion and is read as identity. Nodes with an authored
// matrix are decomposed.
func gltfNodeRestTRS(n *gltf.Node) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if n.Matrix != [16]float32{} && mgl32.Mat4(n.Matrix) != mgl32.Ident4() {
		return decomposeMat4(mgl32.Mat4(n.Matrix))
	}

	t := mgl32.Vec3(n.Translation)
	r := mgl32.QuatIdent()
	if n.Rotation != [4]float32{} {
		r = gltfQuat(n.Rotation)
	}
	return t, r, mgl32.Vec3(n.Scale)
}

// gltfQuat converts glTF's (x, y, z, w) order into an mgl32 quaternion.
func gltfQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// decomposeMat4 splits an affine transform without shear into translation, rotation and scale.
func decomposeMat4(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := m.Col(3).Vec3()
	s := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	if m.Det() < 0 {
		s[0] = -s[0]
	}

	rot := m
	for c := 0; c < 3; c++ {
		if s[c] == 0 {
			return t, mgl32.QuatIdent(), s
		}
		for r := 0; r < 3; r++ {
			rot[c*4+r] /= s[c]
		}
	}
	rot[12], rot[13], rot[14] = 0, 0, 0
	return t, mgl32.Mat4ToQuat(rot).Normalize(), s
}
