package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents a bounding box in y-down coordinates.
// (X0, Y0) is the top-left corner, (X1, Y1) the bottom-right.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// NewBBox creates a bounding box, normalizing flipped coordinates
func NewBBox(x0, y0, x1, y1 float64) BBox {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns the horizontal extent of the box
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: (b.X0 + b.X1) / 2,
		Y: (b.Y0 + b.Y1) / 2,
	}
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 &&
		p.Y >= b.Y0 && p.Y <= b.Y1
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Y1 < other.Y0 ||
		b.Y0 > other.Y1)
}

// Intersection returns the intersection of two bounding boxes
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}

	return BBox{
		X0: math.Max(b.X0, other.X0),
		Y0: math.Max(b.Y0, other.Y0),
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
	}
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// VerticalOverlap returns the length of the Y-range shared with another box.
// Negative values indicate the vertical gap between the boxes.
func (b BBox) VerticalOverlap(other BBox) float64 {
	return math.Min(b.Y1, other.Y1) - math.Max(b.Y0, other.Y0)
}

// OverlapRatio calculates the overlap ratio with another box relative to
// the smaller box's area. Returns a value between 0 and 1.
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}

	intersection := b.Intersection(other)
	minArea := math.Min(b.Area(), other.Area())

	if minArea == 0 {
		return 0
	}

	return intersection.Area() / minArea
}

// CoverageOf calculates the fraction of this box's own area covered by the
// intersection with other. Returns a value between 0 and 1.
func (b BBox) CoverageOf(other BBox) float64 {
	if b.Area() <= 0 || !b.Intersects(other) {
		return 0
	}
	return b.Intersection(other).Area() / b.Area()
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// IsValid returns true if the box is properly ordered and all coordinates
// are finite
func (b BBox) IsValid() bool {
	for _, v := range [4]float64{b.X0, b.Y0, b.X1, b.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X0 <= b.X1 && b.Y0 <= b.Y1
}

// Slice returns the box as [x0, y0, x1, y1] for serialization
func (b BBox) Slice() []float64 {
	return []float64{b.X0, b.Y0, b.X1, b.Y1}
}

// RuleSegment is a horizontal or vertical ruled line on a page, supplied by
// the external geometry extractor. Used for grid-based table detection.
type RuleSegment struct {
	Start Point
	End   Point
}

// IsHorizontal reports whether the segment runs horizontally within tolerance
func (s RuleSegment) IsHorizontal(tolerance float64) bool {
	return math.Abs(s.Start.Y-s.End.Y) <= tolerance
}

// IsVertical reports whether the segment runs vertically within tolerance
func (s RuleSegment) IsVertical(tolerance float64) bool {
	return math.Abs(s.Start.X-s.End.X) <= tolerance
}
