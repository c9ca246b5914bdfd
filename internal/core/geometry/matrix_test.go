package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-10

func TestIdentity(t *testing.T) {
	assert.Equal(t, Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}, Identity())
	assert.True(t, Identity().IsIdentity())

	for _, p := range []Point{{0, 0}, {10, -20}, {1e9, 3.5}} {
		assert.Equal(t, p, Identity().Point(p))
	}
}

func TestMultiply(t *testing.T) {
	a := Matrix{1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := Matrix{9, 8, 7, 6, 5, 4, 3, 2, 1}

	assert.Equal(t, a, Multiply(Identity(), a))
	assert.Equal(t, a, Multiply(a, Identity()))
	assert.Equal(t, Matrix{30, 24, 18, 84, 69, 54, 138, 114, 90}, Multiply(a, b))
	assert.Equal(t, Multiply(a, b), a.Multiply(b))

	tr, rot := Translate(10, 0), Rotate(90)
	assert.NotEqual(t, Multiply(tr, rot), Multiply(rot, tr), "composition is not commutative")
}

func TestPrimitives(t *testing.T) {
	assert.Equal(t, Matrix{1, 0, 0, 0, 1, 0, 5, -3, 1}, Translate(5, -3))
	assert.Equal(t, Matrix{2, 0, 0, 0, 0.5, 0, 0, 0, 1}, Scale(2, 0.5))

	p := Pt(10, 20)
	assert.Equal(t, Pt(15, 15), Translate(5, -5).Point(p))
	assert.Equal(t, Pt(20, 10), Scale(2, 0.5).Point(p))
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		in   Point
		want Point
	}{
		{"zero", 0, Pt(3, 4), Pt(3, 4)},
		{"quarter", 90, Pt(10, 0), Pt(0, 10)},
		{"quarter_y", 90, Pt(10, 20), Pt(-20, 10)},
		{"half", 180, Pt(3, -7), Pt(-3, 7)},
		{"full", 360, Pt(3, 4), Pt(3, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.deg).Point(tt.in)
			assert.InDelta(t, tt.want.X, got.X, eps)
			assert.InDelta(t, tt.want.Y, got.Y, eps)
		})
	}

	m := Rotate(90)
	assert.Equal(t, 0.0, m[2])
	assert.Equal(t, 0.0, m[5])
	assert.Equal(t, 1.0, m[8])
}

func TestPlacementMatrixPivotMapsToPosition(t *testing.T) {
	for _, x := range []float64{-50, 0, 100} {
		for _, y := range []float64{-12.5, 200} {
			for _, r := range []float64{0, 33, 90, 180, 271} {
				for _, sx := range []float64{1, -1, 0.5} {
					m := PlacementMatrix(x, y, r, sx, 2, 1, 36)
					got := m.Point(Pt(2*36, 1*36))
					assert.InDelta(t, x, got.X, eps)
					assert.InDelta(t, y, got.Y, eps)
				}
			}
		}
	}
}

func TestPlacementMatrixOrder(t *testing.T) {
	m := PlacementMatrix(100, 200, 90, 1, 1, 1, 10)
	got := m.Point(Pt(10, 10))
	assert.InDelta(t, 100, got.X, eps)
	assert.InDelta(t, 200, got.Y, eps)

	m = PlacementMatrix(100, 100, 0, 1, 2, 1, 36)
	assert.Equal(t, Pt(28, 64), m.Point(Pt(0, 0)))

	// Flipping mirrors around the pivot before the rotation is applied.
	m = PlacementMatrix(0, 0, 90, -1, 0, 0, 1)
	got = m.Point(Pt(1, 0))
	assert.InDelta(t, 0, got.X, eps)
	assert.InDelta(t, -1, got.Y, eps)

	assert.Equal(t, PlacementMatrix(5, 6, 45, 2, 1.5, 0.5, 36), PlacementMatrixScaled(5, 6, 45, 2, Pt(54, 18)))
}

func TestNonFinitePropagates(t *testing.T) {
	got := Translate(math.NaN(), 0).Point(Pt(1, 1))
	assert.True(t, math.IsNaN(got.X))
	assert.Equal(t, 1.0, got.Y)

	got = Scale(math.Inf(1), 1).Point(Pt(1, 0))
	assert.True(t, math.IsInf(got.X, 1))
}
