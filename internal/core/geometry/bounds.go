package geometry

import "math"

// BoundingBox is an axis-aligned box. A box built by BoundsOf encloses its
// points tightly; slack is only ever added explicitly through Expand.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBounds returns the inverted box that every point extends.
func EmptyBounds() BoundingBox {
	return BoundingBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// BoundsOf returns the tight box around pts. An empty slice yields EmptyBounds.
func BoundsOf(pts []Point) BoundingBox {
	b := EmptyBounds()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// Extend grows b to include p.
func (b BoundingBox) Extend(p Point) BoundingBox {
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
	return b
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Expand returns b grown by d on all four sides.
func (b BoundingBox) Expand(d float64) BoundingBox {
	return BoundingBox{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Overlaps reports whether the boxes intersect. Touching edges overlap.
func (b BoundingBox) Overlaps(o BoundingBox) bool {
	return !(b.MinX > o.MaxX || b.MaxX < o.MinX || b.MinY > o.MaxY || b.MaxY < o.MinY)
}

// Width of the box.
func (b BoundingBox) Width() float64 { return b.MaxX - b.MinX }

// Height of the box.
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// IsEmpty reports whether the box encloses nothing.
func (b BoundingBox) IsEmpty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }
