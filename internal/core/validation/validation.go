// Package validation scores a board arrangement against a target silhouette.
package validation

import (
	"fmt"
	"image"
	"math"
)

// FillThreshold is the alpha value a pixel must exceed to count as filled.
const FillThreshold = 128

// CheckDimensions reports whether the current size is within tolerance of the
// target size on both axes. The tolerance is a fraction of the target and the
// bound is inclusive.
func CheckDimensions(targetW, targetH, currentW, currentH, tolerance float64) bool {
	return math.Abs(targetW-currentW) <= tolerance*targetW &&
		math.Abs(targetH-currentH) <= tolerance*targetH
}

// Jaccard returns |A∩B| / |A∪B| over the filled pixels of two RGBA buffers.
// Two empty buffers score 0. The buffers must have the same length, a
// multiple of 4; anything else panics.
func Jaccard(a, b []byte) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("validation: pixel buffers differ in length (%d != %d)", len(a), len(b)))
	}
	if len(a)%4 != 0 {
		panic(fmt.Sprintf("validation: pixel buffer length %d is not RGBA", len(a)))
	}

	var intersection, union int
	for i := 3; i < len(a); i += 4 {
		fa, fb := a[i] > FillThreshold, b[i] > FillThreshold
		if fa && fb {
			intersection++
		}
		if fa || fb {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Mask is a tightly packed RGBA pixel buffer. Only the alpha channel is read.
type Mask struct {
	Pix    []byte
	Width  int
	Height int
}

// NewMask allocates a transparent w×h mask.
func NewMask(w, h int) *Mask {
	return &Mask{Pix: make([]byte, 4*w*h), Width: w, Height: h}
}

// MaskFromRGBA wraps img, copying only when its rows are not tightly packed.
func MaskFromRGBA(img *image.RGBA) *Mask {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if img.Stride == 4*w && len(img.Pix) == 4*w*h {
		return &Mask{Pix: img.Pix, Width: w, Height: h}
	}
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(m.Pix[4*w*y:4*w*(y+1)], img.Pix[off:off+4*w])
	}
	return m
}

// Filled reports whether pixel (x, y) counts as filled.
func (m *Mask) Filled(x, y int) bool {
	return m.Pix[4*(y*m.Width+x)+3] > FillThreshold
}

// FilledCount returns the number of filled pixels.
func (m *Mask) FilledCount() int {
	n := 0
	for i := 3; i < len(m.Pix); i += 4 {
		if m.Pix[i] > FillThreshold {
			n++
		}
	}
	return n
}

// FilledBounds returns the smallest pixel rectangle holding every filled
// pixel, or an empty rectangle when nothing is filled.
func (m *Mask) FilledBounds() image.Rectangle {
	minX, minY, maxX, maxY := m.Width, m.Height, -1, -1
	for y := 0; y < m.Height; y++ {
		row := m.Pix[4*m.Width*y:]
		for x := 0; x < m.Width; x++ {
			if row[4*x+3] <= FillThreshold {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Similarity is Jaccard over two masks of the same size. It panics when the
// sizes differ.
func Similarity(a, b *Mask) float64 {
	if a.Width != b.Width || a.Height != b.Height {
		panic(fmt.Sprintf("validation: mask sizes differ (%dx%d != %dx%d)", a.Width, a.Height, b.Width, b.Height))
	}
	return Jaccard(a.Pix, b.Pix)
}
