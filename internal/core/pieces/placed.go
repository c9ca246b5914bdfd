package pieces

import (
	"math"

	"github.com/tngrm/tngrm/internal/core/geometry"
)

// Placed is a piece on the board. Every mutator recomputes the cached world
// vertices and bounds before returning, so the cache is never stale.
//
// Placed is not safe for concurrent mutation; the owner serialises access.
type Placed struct {
	template  *Template
	placement Placement

	vertices []geometry.Point
	bounds   geometry.BoundingBox
}

// Place creates a placed piece for t.
func Place(t *Template, p Placement) *Placed {
	pp := &Placed{
		template: t,
		vertices: make([]geometry.Point, 0, t.VertexCount()),
	}
	pp.Set(p)
	return pp
}

// Template returns the shared template.
func (p *Placed) Template() *Template { return p.template }

// ID returns the template id.
func (p *Placed) ID() string { return p.template.id }

// Placement returns the current placement parameters.
func (p *Placed) Placement() Placement { return p.placement }

// Vertices returns the cached world vertices in template order. The slice is
// owned by p and is rewritten by the next mutation.
func (p *Placed) Vertices() []geometry.Point { return p.vertices }

// Bounds returns the tight world bounding box.
func (p *Placed) Bounds() geometry.BoundingBox { return p.bounds }

// Set replaces the whole placement.
func (p *Placed) Set(pl Placement) {
	p.placement = pl
	p.refresh()
}

// MoveTo moves the pivot to (x, y).
func (p *Placed) MoveTo(x, y float64) {
	p.placement.X, p.placement.Y = x, y
	p.refresh()
}

// MoveBy translates the piece by (dx, dy).
func (p *Placed) MoveBy(dx, dy float64) {
	p.MoveTo(p.placement.X+dx, p.placement.Y+dy)
}

// SetRotation sets the absolute rotation in degrees.
func (p *Placed) SetRotation(deg float64) {
	p.placement.Rotation = deg
	p.refresh()
}

// RotateBy adds deg to the rotation, normalised to [0, 360).
func (p *Placed) RotateBy(deg float64) {
	r := math.Mod(p.placement.Rotation+deg, 360)
	if r < 0 {
		r += 360
	}
	p.SetRotation(r)
}

// SetScaleX sets the horizontal scale factor.
func (p *Placed) SetScaleX(sx float64) {
	p.placement.ScaleX = sx
	p.refresh()
}

// Flip mirrors the piece horizontally around its pivot.
func (p *Placed) Flip() { p.SetScaleX(-p.placement.ScaleX) }

// Clone returns an independent copy sharing only the template.
func (p *Placed) Clone() *Placed {
	return &Placed{
		template:  p.template,
		placement: p.placement,
		vertices:  append([]geometry.Point(nil), p.vertices...),
		bounds:    p.bounds,
	}
}

func (p *Placed) refresh() {
	p.vertices = p.template.appendWorld(p.vertices[:0], p.placement)
	p.bounds = geometry.BoundsOf(p.vertices)
}
