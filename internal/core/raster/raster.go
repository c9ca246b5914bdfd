// Package raster fills piece polygons into RGBA frames. It stands in for the
// browser canvas when a solution is checked outside of it.
package raster

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/tngrm/tngrm/internal/core/geometry"
	"github.com/tngrm/tngrm/pkg/generic"
)

// DefaultSize is the edge length of a square frame in pixels.
const DefaultSize = 256

// Rasterizer renders polygons into size×size frames with a fixed margin.
// It is safe for concurrent use.
type Rasterizer struct {
	size   int
	margin int
	pool   *generic.Pool[*vector.Rasterizer]
}

// New creates a rasterizer for size×size frames. A size below 8 falls back
// to DefaultSize. The margin is 1/16 of the frame.
func New(size int) *Rasterizer {
	if size < 8 {
		size = DefaultSize
	}
	return &Rasterizer{
		size:   size,
		margin: size / 16,
		pool: generic.NewPool(func() *vector.Rasterizer {
			return vector.NewRasterizer(size, size)
		}, nil),
	}
}

// Size returns the frame edge length.
func (r *Rasterizer) Size() int { return r.size }

// Bounds returns the union bounds of polys.
func Bounds(polys [][]geometry.Point) geometry.BoundingBox {
	b := geometry.EmptyBounds()
	for _, p := range polys {
		b = b.Union(geometry.BoundsOf(p))
	}
	return b
}

// FitScale returns the uniform scale that makes box fill the frame inside the
// margin along its longer side.
func (r *Rasterizer) FitScale(box geometry.BoundingBox) float64 {
	extent := math.Max(box.Width(), box.Height())
	if box.IsEmpty() || extent <= 0 {
		return 1
	}
	return float64(r.size-2*r.margin) / extent
}

// Frame returns the transform that moves the top-left corner of box to the
// margin and scales by scale.
func (r *Rasterizer) Frame(box geometry.BoundingBox, scale float64) geometry.Matrix {
	m := geometry.Translate(-box.MinX, -box.MinY)
	m = m.Multiply(geometry.Scale(scale, scale))
	return m.Multiply(geometry.Translate(float64(r.margin), float64(r.margin)))
}

// Render fills polys after anchoring their union bounds at the margin and
// scaling by scale. A non-positive scale fits the polygons to the frame.
func (r *Rasterizer) Render(polys [][]geometry.Point, scale float64) *image.RGBA {
	box := Bounds(polys)
	if scale <= 0 {
		scale = r.FitScale(box)
	}
	return r.RenderWith(r.Frame(box, scale), polys)
}

// RenderWith fills polys transformed by m. Each polygon is drawn on its own,
// so overlapping pieces never cancel out whatever their winding.
func (r *Rasterizer) RenderWith(m geometry.Matrix, polys [][]geometry.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	z := r.pool.Get()
	defer r.pool.Put(z)
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		z.Reset(r.size, r.size)
		z.DrawOp = draw.Over
		start := m.Point(poly[0])
		z.MoveTo(float32(start.X), float32(start.Y))
		for _, p := range poly[1:] {
			q := m.Point(p)
			z.LineTo(float32(q.X), float32(q.Y))
		}
		z.ClosePath()
		z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	}
	return dst
}
