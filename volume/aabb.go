package volume

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	return AABB{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// IsEmpty reports whether the box has not been extended by any point yet.
func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

// ContainsPoint checks if a point is inside the AABB, boundary included
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// ContainsPointStrict is ContainsPoint with the boundary excluded.
func (a AABB) ContainsPointStrict(point mgl64.Vec3) bool {
	return point.X() > a.Min.X() && point.X() < a.Max.X() &&
		point.Y() > a.Min.Y() && point.Y() < a.Max.Y() &&
		point.Z() > a.Min.Z() && point.Z() < a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Extend grows the box to include point.
func (a AABB) Extend(point mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a.Min.X(), point.X()), math.Min(a.Min.Y(), point.Y()), math.Min(a.Min.Z(), point.Z())},
		Max: mgl64.Vec3{math.Max(a.Max.X(), point.X()), math.Max(a.Max.Y(), point.Y()), math.Max(a.Max.Z(), point.Z())},
	}
}

// Union returns the smallest box enclosing both boxes.
func (a AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return a
	}
	return a.Extend(other.Min).Extend(other.Max)
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}
