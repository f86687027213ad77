package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Errors reported by AnimationChannel.Validate.
var (
	ErrEmptyTrack   = errors.New("keyframe track is empty")
	ErrUnsortedKeys = errors.New("keyframe times are not ascending")
)

// --- Scene Graph Types ---

// Node is a single node in a model's scene graph.
// Each node exclusively owns its children; traversal is always top-down so no parent pointer is kept.
// Nodes are read-only once import finishes and may be shared between animated instances.
type Node struct {
	// Name identifies the node. Bones and animation channels refer to nodes by name.
	Name string

	// Transform is the node's authored local transform relative to its parent (column-major).
	Transform mgl32.Mat4

	// Children are the node's child nodes, in authored order.
	Children []*Node

	// MeshIndices reference ImportedScene.Meshes.
	MeshIndices []int
}

// NewNode creates a node with the given name and local transform.
//
// Parameters:
//   - name: the node name
//   - transform: the local transform
//   - children: the child nodes
//
// Returns:
//   - *Node: the new node
func NewNode(name string, transform mgl32.Mat4, children ...*Node) *Node {
	return &Node{
		Name:      name,
		Transform: transform,
		Children:  children,
	}
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips that node's children.
//
// Parameters:
//   - fn: the visitor, called with each node and its depth (the receiver has depth 0)
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first node named name in depth-first order, or nil.
//
// Parameters:
//   - name: the node name to search for
//
// Returns:
//   - *Node: the matching node or nil
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree rooted at n.
//
// Returns:
//   - int: the node count
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// --- Animation Types ---

// AnimationClip is a single animation (walk, run, attack, etc.).
// Clips are read-only after construction and may be shared between animated instances.
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the clip length in ticks.
	Duration float64

	// TicksPerSecond is the clip's sample rate. Zero means the evaluator's default applies.
	TicksPerSecond float64

	// Channels holds one entry per animated node.
	Channels []AnimationChannel

	index map[string]int
}

// NewAnimationClip creates a clip and indexes its channels by node name.
// When two channels target the same node, the first one wins.
//
// Parameters:
//   - name: the clip name
//   - duration: the clip length in ticks
//   - ticksPerSecond: the sample rate, or 0 for the evaluator default
//   - channels: the per-node channels
//
// Returns:
//   - *AnimationClip: the new clip
func NewAnimationClip(name string, duration, ticksPerSecond float64, channels []AnimationChannel) *AnimationClip {
	c := &AnimationClip{
		Name:           name,
		Duration:       duration,
		TicksPerSecond: ticksPerSecond,
		Channels:       channels,
		index:          make(map[string]int, len(channels)),
	}
	for i, ch := range channels {
		if _, ok := c.index[ch.NodeName]; !ok {
			c.index[ch.NodeName] = i
		}
	}
	return c
}

// Channel returns the channel animating the named node, or nil if the node is not animated by this clip.
//
// Parameters:
//   - nodeName: the node name
//
// Returns:
//   - *AnimationChannel: the channel or nil
func (c *AnimationClip) Channel(nodeName string) *AnimationChannel {
	if c.index != nil {
		if i, ok := c.index[nodeName]; ok {
			return &c.Channels[i]
		}
		return nil
	}
	for i := range c.Channels {
		if c.Channels[i].NodeName == nodeName {
			return &c.Channels[i]
		}
	}
	return nil
}

// DurationSeconds converts the clip length to seconds.
//
// Parameters:
//   - defaultTicksPerSecond: the rate to use when the clip reports zero
//
// Returns:
//   - float64: the clip length in seconds, or 0 if no rate is known
func (c *AnimationClip) DurationSeconds(defaultTicksPerSecond float64) float64 {
	tps := common.Coalesce(c.TicksPerSecond, defaultTicksPerSecond)
	if tps <= 0 {
		return 0
	}
	return c.Duration / tps
}

// AnimationChannel contains the keyframe tracks for a single node.
// The three tracks are sampled independently and may hold different key counts.
type AnimationChannel struct {
	// NodeName is the name of the node this channel animates.
	NodeName string

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// RotationKeys are keyframes for rotation.
	RotationKeys []QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe
}

// Validate checks that every track is non-empty and sorted ascending by time.
//
// Returns:
//   - error: nil if the channel is well formed, otherwise every problem found joined together
func (c *AnimationChannel) Validate() error {
	var errs []error
	check := func(track string, n int, timeAt func(int) float64) {
		if n == 0 {
			errs = append(errs, fmt.Errorf("%s %s: %w", c.NodeName, track, ErrEmptyTrack))
			return
		}
		for i := 1; i < n; i++ {
			if timeAt(i) < timeAt(i-1) {
				errs = append(errs, fmt.Errorf("%s %s key %d: %w", c.NodeName, track, i, ErrUnsortedKeys))
				return
			}
		}
	}

	check("position", len(c.PositionKeys), func(i int) float64 { return c.PositionKeys[i].Time })
	check("rotation", len(c.RotationKeys), func(i int) float64 { return c.RotationKeys[i].Time })
	check("scale", len(c.ScaleKeys), func(i int) float64 { return c.ScaleKeys[i].Time })

	return errors.Join(errs...)
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in ticks.
	Time float64

	// Value is the 3D vector value at this keyframe.
	Value mgl32.Vec3
}

// QuaternionKeyframe stores a rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in ticks.
	Time float64

	// Value is the rotation at this keyframe.
	Value mgl32.Quat
}

// --- Import Types ---

// ImportedScene is the importer contract's output: an abstract scene graph with meshes, materials,
// bones and animation clips. Importers (glTF, etc.) produce it; model processing consumes it.
type ImportedScene struct {
	// Name is the scene identifier.
	Name string

	// Root is the root of the node tree. A nil root means the import is incomplete.
	Root *Node

	// Meshes are referenced by Node.MeshIndices.
	Meshes []ImportedMesh

	// Materials are referenced by ImportedMesh.MaterialIndex.
	Materials []common.PhongMaterial

	// Animations are all animation clips bundled with the scene.
	Animations []*AnimationClip
}

// ImportedMesh is a single mesh within an imported scene.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Positions are the per-vertex positions.
	Positions [][3]float32

	// Normals are the per-vertex normals. May be empty.
	Normals [][3]float32

	// Faces are triangles as vertex index triples.
	Faces [][3]uint32

	// MaterialIndex references ImportedScene.Materials, or -1 for none.
	MaterialIndex int

	// Bones lists every bone influencing this mesh with its per-vertex weights.
	Bones []ImportedBone
}

// ImportedBone is a bone-weight record of an imported mesh.
type ImportedBone struct {
	// Name matches the scene graph node that drives the bone.
	Name string

	// Offset is the inverse bind-pose matrix.
	Offset mgl32.Mat4

	// Weights are the vertices this bone influences.
	Weights []VertexWeight
}

// VertexWeight is one bone influence on one vertex.
type VertexWeight struct {
	VertexIndex uint32
	Weight      float32
}
