package model

import "errors"

// ErrNoInfluences is returned when weights cannot be normalized because the vertex has no positive influence.
var ErrNoInfluences = errors.New("vertex has no bone influences")

// AddInfluence inserts a (bone, weight) pair, keeping the slots sorted by descending weight.
//
// The candidate goes in front of the first slot holding a strictly smaller weight, and later
// slots shift down one place; whatever falls off the end is discarded. A candidate that does
// not exceed any held weight is dropped. Remaining weights are not renormalized.
//
// Parameters:
//   - boneIndex: the bone registry index
//   - weight: the influence weight
func (g *GPUSkinnedVertex) AddInfluence(boneIndex int32, weight float32) {
	for i := 0; i < MaxInfluences; i++ {
		if weight > g.BoneWeights[i] {
			for j := MaxInfluences - 1; j > i; j-- {
				g.BoneWeights[j] = g.BoneWeights[j-1]
				g.BoneIndices[j] = g.BoneIndices[j-1]
			}
			g.BoneWeights[i] = weight
			g.BoneIndices[i] = boneIndex
			return
		}
	}
}

// InfluenceCount returns the number of occupied influence slots.
//
// Returns:
//   - int: the number of slots holding a bone
func (g *GPUSkinnedVertex) InfluenceCount() int {
	n := 0
	for _, idx := range g.BoneIndices {
		if idx != NoBone {
			n++
		}
	}
	return n
}

// WeightSum returns the sum of all held weights.
//
// Returns:
//   - float32: the total weight
func (g *GPUSkinnedVertex) WeightSum() float32 {
	var sum float32
	for i, idx := range g.BoneIndices {
		if idx != NoBone {
			sum += g.BoneWeights[i]
		}
	}
	return sum
}

// NormalizeWeights rescales the held weights so they sum to 1. Slot order is preserved.
//
// Returns:
//   - error: ErrNoInfluences if the vertex holds no positive weight; the vertex is left unchanged
func (g *GPUSkinnedVertex) NormalizeWeights() error {
	sum := g.WeightSum()
	if sum <= 0 {
		return ErrNoInfluences
	}
	for i, idx := range g.BoneIndices {
		if idx != NoBone {
			g.BoneWeights[i] /= sum
		}
	}
	return nil
}
