package volume

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// AreaThreshold is the polygon area below which a face is considered too
	// small to keep. Cut faces produced by grazing planes fall under it.
	AreaThreshold = 1e-6

	// degenerateLengthSqr is the squared length under which a direction is
	// treated as zero while sorting.
	degenerateLengthSqr = 1e-16
)

// Face is a planar polygon bounding a Volume.
// Vertices are indices into the owning volume's vertex store. Once sorted they
// run counter-clockwise seen from the tip of Normal, so that
// (p1-p0) x (p2-p1) points along Normal.
type Face struct {
	vertices []int
	normal   mgl64.Vec3
	marker   int
}

// NewFace creates an empty face with the given outward normal.
func NewFace(normal mgl64.Vec3) *Face {
	return &Face{normal: normal}
}

// NewFaceFrom creates a face from an already wound index list.
func NewFaceFrom(normal mgl64.Vec3, indices ...int) (*Face, error) {
	face := &Face{
		normal:   normal,
		vertices: make([]int, 0, len(indices)),
	}
	for _, index := range indices {
		if err := face.AddVertex(index); err != nil {
			return nil, err
		}
	}

	return face, nil
}

func (f *Face) Normal() mgl64.Vec3 {
	return f.normal
}

func (f *Face) SetNormal(normal mgl64.Vec3) {
	f.normal = normal
}

// Marker is an opaque tag. Faces derived from this face while splitting
// inherit it.
func (f *Face) Marker() int {
	return f.marker
}

func (f *Face) SetMarker(marker int) {
	f.marker = marker
}

func (f *Face) VertexCount() int {
	return len(f.vertices)
}

// Vertices returns the index list. The slice is owned by the face.
func (f *Face) Vertices() []int {
	return f.vertices
}

// VertexAt returns the vertex index stored at position i.
func (f *Face) VertexAt(i int) (int, error) {
	if i < 0 || i >= len(f.vertices) {
		return 0, fmt.Errorf("face vertex %d out of range [0, %d): %w", i, len(f.vertices), ErrInvalidParam)
	}
	return f.vertices[i], nil
}

// AddVertex appends a vertex index. No ordering is implied until SortVertices.
func (f *Face) AddVertex(index int) error {
	if index < 0 {
		return fmt.Errorf("negative vertex index %d: %w", index, ErrInvalidParam)
	}
	f.vertices = append(f.vertices, index)
	return nil
}

// IndexOfVertex returns the position of a vertex index in the face, or -1.
func (f *Face) IndexOfVertex(index int) int {
	for i, v := range f.vertices {
		if v == index {
			return i
		}
	}
	return -1
}

func (f *Face) HasVertex(index int) bool {
	return f.IndexOfVertex(index) != -1
}

func (f *Face) RemoveAllVertices() {
	f.vertices = f.vertices[:0]
}

// Clone returns a copy sharing nothing with f.
func (f *Face) Clone() *Face {
	clone := &Face{
		normal: f.normal,
		marker: f.marker,
	}
	clone.vertices = append(make([]int, 0, len(f.vertices)), f.vertices...)
	return clone
}

// Center returns the mean of the face's vertex positions.
func (f *Face) Center(v *Volume) mgl64.Vec3 {
	var center mgl64.Vec3
	if len(f.vertices) == 0 {
		return center
	}

	for _, index := range f.vertices {
		center = center.Add(v.vertices[index])
	}
	return center.Mul(1.0 / float64(len(f.vertices)))
}

// Area returns the area of the face polygon, assuming the current order walks
// its boundary.
func (f *Face) Area(v *Volume) float64 {
	if len(f.vertices) < 3 {
		return 0
	}

	origin := v.vertices[f.vertices[0]]
	var sum mgl64.Vec3
	for i := 1; i < len(f.vertices)-1; i++ {
		a := v.vertices[f.vertices[i]].Sub(origin)
		b := v.vertices[f.vertices[i+1]].Sub(origin)
		sum = sum.Add(a.Cross(b))
	}
	return sum.Len() * 0.5
}

// IsTooSmall reports whether the face cannot form a usable polygon: fewer
// than three vertices or an area under AreaThreshold. Order is irrelevant.
func (f *Face) IsTooSmall(v *Volume) bool {
	if len(f.vertices) < 3 {
		return true
	}

	sorted := f.Clone()
	sorted.SortVertices(v)
	return sorted.Area(v) < AreaThreshold
}

// SortVertices reorders the vertex indices so they walk the polygon boundary
// counter-clockwise around Normal.
//
// Every vertex gets the signed angle between (vertex - center) and
// (first vertex - center), measured around the normal. The first vertex
// has angle zero and keeps its position; the rest follow by increasing angle.
// Faces with fewer than three vertices are left untouched.
func (f *Face) SortVertices(v *Volume) {
	count := len(f.vertices)
	if count < 3 {
		return
	}

	center := f.Center(v)
	reference := v.vertices[f.vertices[0]].Sub(center)
	if reference.LenSqr() < degenerateLengthSqr {
		// First vertex sits on the center, use any other one as reference
		for _, index := range f.vertices[1:] {
			candidate := v.vertices[index].Sub(center)
			if candidate.LenSqr() >= degenerateLengthSqr {
				reference = candidate
				break
			}
		}
	}

	type entry struct {
		index int
		angle float64
	}
	entries := make([]entry, count)
	for i, index := range f.vertices {
		entries[i] = entry{
			index: index,
			angle: angleAround(reference, v.vertices[index].Sub(center), f.normal),
		}
	}
	entries[0].angle = 0

	sort.SliceStable(entries[1:], func(i, j int) bool {
		return entries[1+i].angle < entries[1+j].angle
	})

	for i := range entries {
		f.vertices[i] = entries[i].index
	}
}

// angleAround returns the angle in [0, 2π) rotating reference onto direction
// around axis, following the right-hand rule.
func angleAround(reference, direction, axis mgl64.Vec3) float64 {
	if direction.LenSqr() < degenerateLengthSqr {
		return 0
	}

	cos := reference.Dot(direction)
	sin := axis.Dot(reference.Cross(direction))
	angle := math.Atan2(sin, cos)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}
