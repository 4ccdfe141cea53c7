package domain

import "image"

// BoundingBox is an axis-aligned rectangle in source-image pixel space.
// Width and height are never negative.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the box area in square pixels.
func (b BoundingBox) Area() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// IntersectionArea returns the area shared between two boxes, 0 when disjoint.
func (b BoundingBox) IntersectionArea(o BoundingBox) float64 {
	left := max(b.X, o.X)
	top := max(b.Y, o.Y)
	right := min(b.X+b.W, o.X+o.W)
	bottom := min(b.Y+b.H, o.Y+o.H)

	if right <= left || bottom <= top {
		return 0
	}
	return (right - left) * (bottom - top)
}

// IOU returns the intersection-over-union overlap measure in [0,1].
// A zero union yields 0 rather than dividing by zero.
func (b BoundingBox) IOU(o BoundingBox) float64 {
	inter := b.IntersectionArea(o)
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Rect converts the box to an integer image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(int(b.X), int(b.Y), int(b.X+b.W), int(b.Y+b.H))
}
