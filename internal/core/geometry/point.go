package geometry

import "math"

// Point is a 2D position in world or local piece space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Sub returns the vector from o to p.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Mul scales both coordinates by k.
func (p Point) Mul(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// DistSq returns the squared euclidean distance between p and o.
func (p Point) DistSq(o Point) float64 {
	dx, dy := o.X-p.X, o.Y-p.Y
	return dx*dx + dy*dy
}

// Distance computes euclidean distance between two points.
func Distance(a, b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Near reports whether a and b are within eps of each other on both axes.
func Near(a, b Point, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// FromFlat converts interleaved x,y pairs into points.
// The caller guarantees an even length.
func FromFlat(flat []float64) []Point {
	pts := make([]Point, len(flat)/2)
	for i := range pts {
		pts[i] = Point{X: flat[2*i], Y: flat[2*i+1]}
	}
	return pts
}
