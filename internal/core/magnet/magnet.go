// Package magnet finds vertex-to-vertex snap opportunities between pieces.
//
// A query runs in two phases. The broad phase expands the active piece's
// bounding box by the threshold and drops every candidate whose box does not
// overlap it. The narrow phase compares every remaining vertex pair by squared
// distance and keeps the closest pair strictly inside the threshold. Pairs are
// visited in a fixed order (candidates as given, active vertices, candidate
// vertices), and on an exact tie the first pair visited is kept.
package magnet

import (
	"fmt"
	"math"
	"reflect"

	"github.com/tngrm/tngrm/internal/core/geometry"
)

// DefaultThreshold is the snap distance in world units.
const DefaultThreshold = 20

// Candidate is anything exposing world vertices and a tight world bounding
// box. Pointer candidates are matched against the active piece by pointer,
// comparable values by ==, and other values by sharing the active piece's
// vertex slice.
type Candidate interface {
	Vertices() []geometry.Point
	Bounds() geometry.BoundingBox
}

// Snap is the offset that moves an active vertex onto its nearest neighbour.
type Snap struct {
	DX, DY float64
	DistSq float64
}

// Distance returns the euclidean length of the offset.
func (s Snap) Distance() float64 { return math.Sqrt(s.DistSq) }

// Detector holds the snap threshold. The zero value is unusable; use New.
type Detector struct {
	threshold   float64
	thresholdSq float64
}

// New returns a detector for threshold. It panics on a non-finite or
// non-positive threshold.
func New(threshold float64) Detector {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		panic(fmt.Sprintf("magnet: invalid threshold %v", threshold))
	}
	return Detector{threshold: threshold, thresholdSq: threshold * threshold}
}

// Threshold returns the snap distance.
func (d Detector) Threshold() float64 { return d.threshold }

// Detect finds the closest vertex pair between active and any of others.
// active itself is skipped if it appears in others. The second result is
// false when no pair lies strictly inside the threshold.
func (d Detector) Detect(active Candidate, others []Candidate) (Snap, bool) {
	return d.detect(active, active.Vertices(), active.Bounds(), others)
}

// DetectPoints is Detect for an active piece given as raw vertices and box.
// No candidate is excluded by identity.
func (d Detector) DetectPoints(pts []geometry.Point, box geometry.BoundingBox, others []Candidate) (Snap, bool) {
	return d.detect(nil, pts, box, others)
}

func (d Detector) detect(active Candidate, pts []geometry.Point, box geometry.BoundingBox, others []Candidate) (Snap, bool) {
	reach := box.Expand(d.threshold)
	best := Snap{DistSq: math.Inf(1)}
	found := false
	self := identityOf(active, pts)

	for _, other := range others {
		if other == nil || self.is(other) {
			continue
		}
		if !reach.Overlaps(other.Bounds()) {
			continue
		}
		ops := other.Vertices()
		for _, tp := range pts {
			for _, op := range ops {
				dx, dy := op.X-tp.X, op.Y-tp.Y
				distSq := dx*dx + dy*dy
				if distSq < d.thresholdSq && distSq < best.DistSq {
					best = Snap{DX: dx, DY: dy, DistSq: distSq}
					found = true
				}
			}
		}
	}

	if !found {
		return Snap{}, false
	}
	return best, true
}

// identity recognises the active candidate inside others without comparing
// values of non-comparable dynamic types.
type identity struct {
	active Candidate
	typ    reflect.Type
	pts    []geometry.Point
}

func identityOf(active Candidate, pts []geometry.Point) identity {
	if active == nil {
		return identity{}
	}
	return identity{active: active, typ: reflect.TypeOf(active), pts: pts}
}

func (id identity) is(c Candidate) bool {
	if id.active == nil || reflect.TypeOf(c) != id.typ {
		return false
	}
	switch {
	case id.typ.Kind() == reflect.Pointer:
		return c == id.active
	case id.typ.Comparable():
		return equal(c, id.active)
	default:
		return sameBacking(c.Vertices(), id.pts)
	}
}

// equal is == that reports false instead of panicking when a comparable type
// holds a non-comparable value in an interface field.
func equal(a, b Candidate) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func sameBacking(a, b []geometry.Point) bool {
	return len(a) > 0 && len(a) == len(b) && &a[0] == &b[0]
}
