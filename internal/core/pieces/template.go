package pieces

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tngrm/tngrm/internal/core/geometry"
)

// Template is the static definition of a piece type. Its vertices and pivot
// are expanded by the unit scale once, at construction, so placing a piece
// never multiplies by the unit again. A Template is immutable and shared by
// pointer across every placement of that piece type.
type Template struct {
	id    string
	color string
	unit  float64

	points []geometry.Point
	pivot  geometry.Point

	scaledPoints []geometry.Point
	scaledPivot  geometry.Point
}

// NewTemplate builds a template from interleaved local-space vertices.
func NewTemplate(id string, flat []float64, pivotX, pivotY, unit float64, color string) (*Template, error) {
	switch {
	case id == "":
		return nil, fmt.Errorf("%w: empty id", ErrInvalidTemplate)
	case len(flat)%2 != 0:
		return nil, fmt.Errorf("%w: %s has an odd number of coordinates", ErrInvalidTemplate, id)
	case len(flat) < 6:
		return nil, fmt.Errorf("%w: %s needs at least 3 vertices", ErrInvalidTemplate, id)
	case math.IsNaN(unit) || math.IsInf(unit, 0) || unit <= 0:
		return nil, fmt.Errorf("%w: %s unit scale %v", ErrInvalidTemplate, id, unit)
	}
	for _, v := range append([]float64{pivotX, pivotY}, flat...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s has a non-finite coordinate", ErrInvalidTemplate, id)
		}
	}

	t := &Template{
		id:     id,
		color:  color,
		unit:   unit,
		points: geometry.FromFlat(flat),
		pivot:  geometry.Pt(pivotX, pivotY),
	}
	t.scaledPoints = make([]geometry.Point, len(t.points))
	for i, p := range t.points {
		t.scaledPoints[i] = p.Mul(unit)
	}
	t.scaledPivot = t.pivot.Mul(unit)

	return t, nil
}

// MustTemplate is NewTemplate that panics on error. It is meant for static tables.
func MustTemplate(id string, flat []float64, pivotX, pivotY, unit float64, color string) *Template {
	t, err := NewTemplate(id, flat, pivotX, pivotY, unit, color)
	if err != nil {
		panic(err)
	}
	return t
}

// ID returns the piece identifier.
func (t *Template) ID() string { return t.id }

// Color returns the display colour, if any.
func (t *Template) Color() string { return t.color }

// Unit returns the world unit scale the template was built with.
func (t *Template) Unit() float64 { return t.unit }

// VertexCount returns the number of polygon vertices.
func (t *Template) VertexCount() int { return len(t.points) }

// Points returns a copy of the local-space vertices.
func (t *Template) Points() []geometry.Point {
	return append([]geometry.Point(nil), t.points...)
}

// Pivot returns the local-space pivot offset.
func (t *Template) Pivot() geometry.Point { return t.pivot }

// ScaledPivot returns the pivot expanded by the unit scale.
func (t *Template) ScaledPivot() geometry.Point { return t.scaledPivot }

// Placement holds the mutable placement parameters of a piece on the board.
// The JSON names match the saved level format.
type Placement struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Rotation float64 `json:"r" yaml:"r"`
	ScaleX   float64 `json:"sx" yaml:"sx"`
}

// At returns an unrotated, unflipped placement at (x, y).
func At(x, y float64) Placement {
	return Placement{X: x, Y: y, ScaleX: 1}
}

// Matrix returns the world transform of t placed at p.
func (t *Template) Matrix(p Placement) geometry.Matrix {
	return geometry.PlacementMatrixScaled(p.X, p.Y, p.Rotation, p.ScaleX, t.scaledPivot)
}

// WorldVertices maps every template vertex into world space, keeping the
// template vertex order.
func WorldVertices(t *Template, p Placement) []geometry.Point {
	return t.appendWorld(make([]geometry.Point, 0, len(t.scaledPoints)), p)
}

func (t *Template) appendWorld(dst []geometry.Point, p Placement) []geometry.Point {
	m := t.Matrix(p)
	for _, v := range t.scaledPoints {
		dst = append(dst, m.Point(v))
	}
	return dst
}

// UnmarshalJSON decodes a placement, defaulting a missing sx to 1.
func (p *Placement) UnmarshalJSON(b []byte) error {
	type plain Placement
	v := plain{ScaleX: 1}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Placement(v)
	return nil
}
