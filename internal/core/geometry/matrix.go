package geometry

import "math"

// Matrix is a homogeneous 2D affine transform stored row-major:
//
//	| m0 m1 m2 |
//	| m3 m4 m5 |
//	| m6 m7 m8 |
//
// Points are row vectors, so translation lives in m6, m7 and the third
// column stays (0, 0, 1). Composition reads left to right: a.Multiply(b)
// applies a first, then b.
type Matrix [9]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Translate creates a translation transform.
func Translate(tx, ty float64) Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		tx, ty, 1,
	}
}

// Scale creates a scaling transform.
func Scale(sx, sy float64) Matrix {
	return Matrix{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	}
}

// Rotate creates a rotation transform. The angle is in degrees.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return Matrix{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	}
}

// Multiply returns the matrix product a·b.
func Multiply(a, b Matrix) Matrix {
	return Matrix{
		a[0]*b[0] + a[1]*b[3] + a[2]*b[6],
		a[0]*b[1] + a[1]*b[4] + a[2]*b[7],
		a[0]*b[2] + a[1]*b[5] + a[2]*b[8],
		a[3]*b[0] + a[4]*b[3] + a[5]*b[6],
		a[3]*b[1] + a[4]*b[4] + a[5]*b[7],
		a[3]*b[2] + a[4]*b[5] + a[5]*b[8],
		a[6]*b[0] + a[7]*b[3] + a[8]*b[6],
		a[6]*b[1] + a[7]*b[4] + a[8]*b[7],
		a[6]*b[2] + a[7]*b[5] + a[8]*b[8],
	}
}

// Multiply returns m·other.
func (m Matrix) Multiply(other Matrix) Matrix { return Multiply(m, other) }

// Point applies the transform to p.
func (m Matrix) Point(p Point) Point {
	return Point{
		X: p.X*m[0] + p.Y*m[3] + m[6],
		Y: p.X*m[1] + p.Y*m[4] + m[7],
	}
}

// Apply is the function form of m.Point(p).
func Apply(m Matrix, p Point) Point { return m.Point(p) }

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool { return m == Identity() }

// PlacementMatrix builds the transform that places a piece. The pivot
// (offX·unit, offY·unit) is moved to the origin, then the piece is scaled by
// (scaleX, 1), rotated and finally translated to (x, y).
func PlacementMatrix(x, y, rotationDeg, scaleX, offX, offY, unit float64) Matrix {
	return PlacementMatrixScaled(x, y, rotationDeg, scaleX, Point{X: offX * unit, Y: offY * unit})
}

// PlacementMatrixScaled is PlacementMatrix with a pivot already expressed in
// world units.
func PlacementMatrixScaled(x, y, rotationDeg, scaleX float64, pivot Point) Matrix {
	m := Translate(-pivot.X, -pivot.Y)
	m = Multiply(m, Scale(scaleX, 1))
	m = Multiply(m, Rotate(rotationDeg))
	return Multiply(m, Translate(x, y))
}
