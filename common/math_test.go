package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func TestComposeTRSOrder(t *testing.T) {
	tr := mgl32.Vec3{1, 2, 3}
	r := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	s := mgl32.Vec3{2, 2, 2}

	m := ComposeTRS(tr, r, s)

	// Scale first, then rotate 90° about Z, then translate.
	got := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{1, 4, 3}
	if !vec3Near(got, want, eps) {
		t.Errorf("ComposeTRS point = %v, want %v", got, want)
	}
}

func TestComposeTRSIdentity(t *testing.T) {
	m := ComposeTRS(mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
	if !mat4Near(m, mgl32.Ident4(), eps) {
		t.Errorf("ComposeTRS(identity) = %v", m)
	}
}

func TestLerpVec3(t *testing.T) {
	a := mgl32.Vec3{0, 10, -4}
	b := mgl32.Vec3{10, 20, 4}

	if got := LerpVec3(a, b, 0); got != a {
		t.Errorf("LerpVec3(factor 0) = %v, want %v", got, a)
	}
	if got := LerpVec3(a, b, 0.5); !vec3Near(got, mgl32.Vec3{5, 15, 0}, eps) {
		t.Errorf("LerpVec3(factor 0.5) = %v", got)
	}
}

func TestSlerpShortestUnitLength(t *testing.T) {
	tests := []struct {
		name string
		a, b mgl32.Quat
	}{
		{"unit inputs", mgl32.QuatIdent(), mgl32.QuatRotate(1.2, mgl32.Vec3{0, 1, 0})},
		{"scaled inputs", mgl32.QuatIdent().Scale(3), mgl32.QuatRotate(2, mgl32.Vec3{1, 0, 0}).Scale(0.25)},
		{"opposite hemisphere", mgl32.QuatIdent(), mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1}).Scale(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range []float32{0, 0.1, 0.5, 0.9, 1} {
				q := SlerpShortest(tt.a, tt.b, f)
				if math.Abs(float64(q.Len())-1) > eps {
					t.Errorf("factor %v: |q| = %v, want 1", f, q.Len())
				}
			}
		})
	}
}

func TestSlerpShortestTakesShortArc(t *testing.T) {
	a := mgl32.QuatIdent()
	b := mgl32.QuatRotate(mgl32.DegToRad(60), mgl32.Vec3{0, 0, 1})

	direct := SlerpShortest(a, b, 0.5)
	flipped := SlerpShortest(a, b.Scale(-1), 0.5)

	if !direct.OrientationEqualThreshold(flipped, eps) {
		t.Errorf("negated end quaternion changed the path: %v vs %v", direct, flipped)
	}
	want := mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 0, 1})
	if !direct.OrientationEqualThreshold(want, eps) {
		t.Errorf("SlerpShortest halfway = %v, want %v", direct, want)
	}
}

func TestInvertChecked(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(0.3))
	inv, ok := InvertChecked(m)
	if !ok {
		t.Fatal("InvertChecked reported an invertible matrix as singular")
	}
	if !mat4Near(m.Mul4(inv), mgl32.Ident4(), eps) {
		t.Errorf("m * inv(m) = %v", m.Mul4(inv))
	}

	inv, ok = InvertChecked(mgl32.Scale3D(1, 0, 1))
	if ok {
		t.Error("InvertChecked accepted a singular matrix")
	}
	if inv != mgl32.Ident4() {
		t.Errorf("singular inverse = %v, want identity", inv)
	}
}

func TestEulerModelMatrix(t *testing.T) {
	m := EulerModelMatrix(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{0, 90, 0}, mgl32.Vec3{1, 1, 1})

	got := m.Mul4x1(mgl32.Vec4{0, 0, 1, 1}).Vec3()
	want := mgl32.Vec3{6, 0, 0}
	if !vec3Near(got, want, eps) {
		t.Errorf("EulerModelMatrix point = %v, want %v", got, want)
	}
}

func TestMat4Finite(t *testing.T) {
	if !Mat4Finite(mgl32.Ident4()) {
		t.Error("identity reported as non-finite")
	}
	m := mgl32.Ident4()
	m[7] = float32(math.NaN())
	if Mat4Finite(m) {
		t.Error("NaN matrix reported as finite")
	}
}

func TestIdentityPalette(t *testing.T) {
	p := IdentityPalette(3)
	if len(p) != 3 {
		t.Fatalf("len = %d, want 3", len(p))
	}
	for i, m := range p {
		if m != mgl32.Ident4() {
			t.Errorf("palette[%d] = %v", i, m)
		}
	}
}
