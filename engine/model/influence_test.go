package model

import (
	"errors"
	"math"
	"testing"
)

func TestNewSkinnedVertexSlotsEmpty(t *testing.T) {
	v := NewSkinnedVertex([3]float32{1, 2, 3}, [3]float32{0, 1, 0})
	for i := 0; i < MaxInfluences; i++ {
		if v.BoneIndices[i] != NoBone || v.BoneWeights[i] != 0 {
			t.Errorf("slot %d = (%d, %v), want (%d, 0)", i, v.BoneIndices[i], v.BoneWeights[i], NoBone)
		}
	}
	if v.InfluenceCount() != 0 {
		t.Errorf("InfluenceCount() = %d, want 0", v.InfluenceCount())
	}
}

func TestAddInfluence(t *testing.T) {
	tests := []struct {
		name        string
		weights     []float32
		wantWeights [4]float32
		wantBones   [4]int32
	}{
		{
			name:        "top four of five",
			weights:     []float32{0.1, 0.9, 0.5, 0.3, 0.7},
			wantWeights: [4]float32{0.9, 0.7, 0.5, 0.3},
			wantBones:   [4]int32{1, 4, 2, 3},
		},
		{
			name:        "fewer than four",
			weights:     []float32{0.25, 0.75},
			wantWeights: [4]float32{0.75, 0.25, 0, 0},
			wantBones:   [4]int32{1, 0, NoBone, NoBone},
		},
		{
			name:        "tie with smallest is dropped",
			weights:     []float32{0.4, 0.3, 0.2, 0.1, 0.1},
			wantWeights: [4]float32{0.4, 0.3, 0.2, 0.1},
			wantBones:   [4]int32{0, 1, 2, 3},
		},
		{
			name:        "equal weights keep insertion order",
			weights:     []float32{0.5, 0.5},
			wantWeights: [4]float32{0.5, 0.5, 0, 0},
			wantBones:   [4]int32{0, 1, NoBone, NoBone},
		},
		{
			name:        "zero weight is ignored",
			weights:     []float32{0},
			wantWeights: [4]float32{},
			wantBones:   [4]int32{NoBone, NoBone, NoBone, NoBone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewSkinnedVertex([3]float32{}, [3]float32{})
			for bone, w := range tt.weights {
				v.AddInfluence(int32(bone), w)
			}
			if v.BoneWeights != tt.wantWeights {
				t.Errorf("weights = %v, want %v", v.BoneWeights, tt.wantWeights)
			}
			if v.BoneIndices != tt.wantBones {
				t.Errorf("bones = %v, want %v", v.BoneIndices, tt.wantBones)
			}
		})
	}
}

func TestAddInfluenceKeepsDescendingOrder(t *testing.T) {
	v := NewSkinnedVertex([3]float32{}, [3]float32{})
	for i, w := range []float32{0.05, 0.6, 0.15, 0.8, 0.3, 0.45, 0.2} {
		v.AddInfluence(int32(i), w)
		for s := 1; s < MaxInfluences; s++ {
			if v.BoneWeights[s] > v.BoneWeights[s-1] {
				t.Fatalf("after inserting %v: weights %v not descending", w, v.BoneWeights)
			}
		}
	}
}

func TestNormalizeWeights(t *testing.T) {
	v := NewSkinnedVertex([3]float32{}, [3]float32{})
	for i, w := range []float32{0.1, 0.9, 0.5, 0.3, 0.7} {
		v.AddInfluence(int32(i), w)
	}

	if err := v.NormalizeWeights(); err != nil {
		t.Fatalf("NormalizeWeights: %v", err)
	}
	if math.Abs(float64(v.WeightSum())-1) > 1e-6 {
		t.Errorf("WeightSum() = %v, want 1", v.WeightSum())
	}
	for s := 1; s < MaxInfluences; s++ {
		if v.BoneWeights[s] > v.BoneWeights[s-1] {
			t.Errorf("normalization broke ordering: %v", v.BoneWeights)
		}
	}
	if v.BoneIndices != [4]int32{1, 4, 2, 3} {
		t.Errorf("normalization changed bone indices: %v", v.BoneIndices)
	}
}

func TestNormalizeWeightsNoInfluences(t *testing.T) {
	v := NewSkinnedVertex([3]float32{}, [3]float32{})
	if err := v.NormalizeWeights(); !errors.Is(err, ErrNoInfluences) {
		t.Errorf("NormalizeWeights() error = %v, want ErrNoInfluences", err)
	}
}
