package model

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testTree() *Node {
	return NewNode("root", mgl32.Ident4(),
		NewNode("hips", mgl32.Translate3D(0, 1, 0),
			NewNode("spine", mgl32.Ident4()),
			NewNode("leg", mgl32.Ident4()),
		),
		NewNode("prop", mgl32.Ident4()),
	)
}

func TestNodeWalkOrder(t *testing.T) {
	var names []string
	var depths []int
	testTree().Walk(func(n *Node, depth int) bool {
		names = append(names, n.Name)
		depths = append(depths, depth)
		return true
	})

	wantNames := []string{"root", "hips", "spine", "leg", "prop"}
	wantDepths := []int{0, 1, 2, 2, 1}
	for i := range wantNames {
		if names[i] != wantNames[i] || depths[i] != wantDepths[i] {
			t.Errorf("visit %d = (%s, %d), want (%s, %d)", i, names[i], depths[i], wantNames[i], wantDepths[i])
		}
	}
}

func TestNodeWalkSkipsChildren(t *testing.T) {
	var names []string
	testTree().Walk(func(n *Node, _ int) bool {
		names = append(names, n.Name)
		return n.Name != "hips"
	})
	if len(names) != 3 {
		t.Errorf("visited %v, want root, hips, prop", names)
	}
}

func TestNodeFindAndCount(t *testing.T) {
	root := testTree()
	if n := root.Find("leg"); n == nil || n.Name != "leg" {
		t.Errorf("Find(leg) = %v", n)
	}
	if n := root.Find("tail"); n != nil {
		t.Errorf("Find(tail) = %v, want nil", n)
	}
	if root.Count() != 5 {
		t.Errorf("Count() = %d, want 5", root.Count())
	}
}

func TestAnimationClipChannelFirstWins(t *testing.T) {
	first := AnimationChannel{NodeName: "hips", PositionKeys: []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{1, 0, 0}}}}
	second := AnimationChannel{NodeName: "hips", PositionKeys: []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{2, 0, 0}}}}
	clip := NewAnimationClip("walk", 10, 0, []AnimationChannel{first, second})

	ch := clip.Channel("hips")
	if ch == nil {
		t.Fatal("Channel(hips) = nil")
	}
	if ch.PositionKeys[0].Value.X() != 1 {
		t.Errorf("Channel(hips) returned the second channel")
	}
	if clip.Channel("spine") != nil {
		t.Error("Channel(spine) should be nil")
	}
}

func TestAnimationClipChannelWithoutIndex(t *testing.T) {
	clip := &AnimationClip{Channels: []AnimationChannel{{NodeName: "a"}, {NodeName: "b"}}}
	if ch := clip.Channel("b"); ch == nil || ch.NodeName != "b" {
		t.Errorf("Channel(b) = %v", ch)
	}
}

func TestAnimationClipDurationSeconds(t *testing.T) {
	tests := []struct {
		name       string
		clip       *AnimationClip
		defaultTPS float64
		want       float64
	}{
		{"clip rate", NewAnimationClip("a", 60, 30, nil), 25, 2},
		{"default rate", NewAnimationClip("b", 50, 0, nil), 25, 2},
		{"no rate", NewAnimationClip("c", 50, 0, nil), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clip.DurationSeconds(tt.defaultTPS); got != tt.want {
				t.Errorf("DurationSeconds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnimationChannelValidate(t *testing.T) {
	good := AnimationChannel{
		NodeName:     "n",
		PositionKeys: []VectorKeyframe{{Time: 0}, {Time: 1}},
		RotationKeys: []QuaternionKeyframe{{Time: 0, Value: mgl32.QuatIdent()}},
		ScaleKeys:    []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{1, 1, 1}}},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() on good channel = %v", err)
	}

	empty := good
	empty.RotationKeys = nil
	if err := empty.Validate(); !errors.Is(err, ErrEmptyTrack) {
		t.Errorf("Validate() empty rotation = %v, want ErrEmptyTrack", err)
	}

	unsorted := good
	unsorted.PositionKeys = []VectorKeyframe{{Time: 1}, {Time: 0}}
	if err := unsorted.Validate(); !errors.Is(err, ErrUnsortedKeys) {
		t.Errorf("Validate() unsorted position = %v, want ErrUnsortedKeys", err)
	}
}
