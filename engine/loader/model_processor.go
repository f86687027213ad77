package loader

import (
	"log"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/skeleton"
	"github.com/pkg/errors"
)

// ErrIncompleteScene is returned when an imported scene has no root node.
var ErrIncompleteScene = errors.New("imported scene has no root node")

// modelProcessor turns an ImportedScene into a Model.
// Meshes are processed in depth-first scene graph order; every bone found on a mesh is
// registered in a single registry shared by all of the model's meshes.
type modelProcessor struct {
	scene     *model.ImportedScene
	normalize bool
	logger    *log.Logger

	bones     skeleton.Registry
	meshes    []*model.Mesh
	processed map[int]bool
}

// processScene builds the engine model for an imported scene.
//
// Parameters:
//   - name: the model name, used when the scene carries none
//   - scene: the imported scene
//   - normalize: whether vertex weights are rescaled to sum to 1 after top-4 selection
//   - logger: the destination for import warnings
//
// Returns:
//   - model.Model: the processed model
//   - error: ErrIncompleteScene, a singular root transform, or an out-of-range mesh or vertex reference
func processScene(name string, scene *model.ImportedScene, normalize bool, logger *log.Logger) (model.Model, error) {
	if scene == nil || scene.Root == nil {
		return nil, ErrIncompleteScene
	}
	name = common.Coalesce(scene.Name, name)

	globalInverse, ok := common.InvertChecked(scene.Root.Transform)
	if !ok {
		return nil, errors.Errorf("%s: root node %q has a singular transform", name, scene.Root.Name)
	}

	p := &modelProcessor{
		scene:     scene,
		normalize: normalize,
		logger:    logger,
		bones:     skeleton.NewRegistry(),
		processed: make(map[int]bool),
	}
	if err := p.processNode(scene.Root); err != nil {
		return nil, errors.Wrap(err, name)
	}
	clips := p.validateAnimations(name)

	return model.NewModel(
		model.WithName(name),
		model.WithRoot(scene.Root),
		model.WithMeshes(p.meshes...),
		model.WithMaterials(scene.Materials),
		model.WithAnimations(clips),
		model.WithBones(p.bones),
		model.WithGlobalInverseTransform(globalInverse),
	), nil
}

// processNode processes the node's meshes, then recurses into its children.
// A mesh referenced by several nodes is processed once.
func (p *modelProcessor) processNode(node *model.Node) error {
	for _, meshIndex := range node.MeshIndices {
		if meshIndex < 0 || meshIndex >= len(p.scene.Meshes) {
			return errors.Errorf("node %q references mesh %d, scene has %d", node.Name, meshIndex, len(p.scene.Meshes))
		}
		if p.processed[meshIndex] {
			continue
		}
		p.processed[meshIndex] = true

		mesh, err := p.processMesh(&p.scene.Meshes[meshIndex])
		if err != nil {
			return errors.Wrapf(err, "mesh %d", meshIndex)
		}
		p.meshes = append(p.meshes, mesh)
	}

	for _, child := range node.Children {
		if err := p.processNode(child); err != nil {
			return err
		}
	}
	return nil
}

// processMesh builds skinned vertices and the flat index list of one imported mesh.
// Each bone is registered by name (the first offset seen wins) and its weights are
// inserted into the vertices' top-4 influence slots.
func (p *modelProcessor) processMesh(imported *model.ImportedMesh) (*model.Mesh, error) {
	vertexCount := len(imported.Positions)
	vertices := make([]model.GPUSkinnedVertex, vertexCount)
	for i, pos := range imported.Positions {
		var normal [3]float32
		if i < len(imported.Normals) {
			normal = imported.Normals[i]
		}
		vertices[i] = model.NewSkinnedVertex(pos, normal)
	}

	indices := make([]uint32, 0, len(imported.Faces)*3)
	for f, face := range imported.Faces {
		for _, idx := range face {
			if int(idx) >= vertexCount {
				return nil, errors.Errorf("face %d references vertex %d, mesh %q has %d", f, idx, imported.Name, vertexCount)
			}
		}
		indices = append(indices, face[0], face[1], face[2])
	}

	for _, bone := range imported.Bones {
		boneIndex := p.bones.RegisterOrGet(bone.Name, bone.Offset)
		for _, w := range bone.Weights {
			if int(w.VertexIndex) >= vertexCount {
				return nil, errors.Errorf("bone %q weights vertex %d, mesh %q has %d", bone.Name, w.VertexIndex, imported.Name, vertexCount)
			}
			vertices[w.VertexIndex].AddInfluence(int32(boneIndex), w.Weight)
		}
	}

	if p.normalize && len(imported.Bones) > 0 {
		for i := range vertices {
			if err := vertices[i].NormalizeWeights(); err != nil && !errors.Is(err, model.ErrNoInfluences) {
				return nil, err
			}
		}
	}

	return &model.Mesh{
		Name:          imported.Name,
		Vertices:      vertices,
		Indices:       indices,
		MaterialIndex: imported.MaterialIndex,
	}, nil
}

// validateAnimations logs every malformed channel and returns the clips to keep.
// Malformed channels are kept: the animator reports them per frame and applies its
// failure policy. Nil clips are dropped.
func (p *modelProcessor) validateAnimations(name string) []*model.AnimationClip {
	clips := make([]*model.AnimationClip, 0, len(p.scene.Animations))
	for i, clip := range p.scene.Animations {
		if clip == nil {
			p.logger.Printf("[Loader] %s: dropping nil clip %d", name, i)
			continue
		}
		clips = append(clips, clip)
		for j := range clip.Channels {
			if err := clip.Channels[j].Validate(); err != nil {
				p.logger.Printf("[Loader] %s: clip %q channel %d: %v", name, clip.Name, j, err)
			}
		}
	}
	return clips
}
