package volume

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// MinClosedFaceCount is the number of faces below which a volume cannot be
// closed.
const MinClosedFaceCount = 4

// Volume is a convex polyhedron: a vertex store and the faces built on it.
// The volume owns both; faces refer to vertices by index.
//
// A vertex may be stored without any face referring to it. Only faces define
// the hull.
type Volume struct {
	vertices []mgl64.Vec3
	faces    []*Face
}

// New creates an empty volume.
func New() *Volume {
	return &Volume{}
}

// NewCube creates a box centered on the origin.
func NewCube(halfExtents mgl64.Vec3) (*Volume, error) {
	v := New()
	if err := v.SetToCube(halfExtents); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Volume) VertexCount() int {
	return len(v.vertices)
}

// Vertices returns the vertex store. The slice is owned by the volume.
func (v *Volume) Vertices() []mgl64.Vec3 {
	return v.vertices
}

func (v *Volume) VertexAt(i int) (mgl64.Vec3, error) {
	if i < 0 || i >= len(v.vertices) {
		return mgl64.Vec3{}, fmt.Errorf("vertex %d out of range [0, %d): %w", i, len(v.vertices), ErrInvalidParam)
	}
	return v.vertices[i], nil
}

// IndexOfVertex returns the index of a vertex with exactly the same
// coordinates, or -1.
func (v *Volume) IndexOfVertex(point mgl64.Vec3) int {
	for i, vertex := range v.vertices {
		if vertex == point {
			return i
		}
	}
	return -1
}

func (v *Volume) HasVertex(point mgl64.Vec3) bool {
	return v.IndexOfVertex(point) != -1
}

// AddVertex appends a vertex and returns its index. Duplicates are accepted.
func (v *Volume) AddVertex(point mgl64.Vec3) int {
	v.vertices = append(v.vertices, point)
	return len(v.vertices) - 1
}

// AddVertexUnique returns the index of point, appending it only if no vertex
// matches it exactly.
func (v *Volume) AddVertexUnique(point mgl64.Vec3) int {
	if index := v.IndexOfVertex(point); index != -1 {
		return index
	}
	return v.AddVertex(point)
}

func (v *Volume) RemoveAllVertices() {
	v.vertices = v.vertices[:0]
}

func (v *Volume) FaceCount() int {
	return len(v.faces)
}

// Faces returns the face list. The slice is owned by the volume.
func (v *Volume) Faces() []*Face {
	return v.faces
}

func (v *Volume) FaceAt(i int) (*Face, error) {
	if i < 0 || i >= len(v.faces) {
		return nil, fmt.Errorf("face %d out of range [0, %d): %w", i, len(v.faces), ErrInvalidParam)
	}
	return v.faces[i], nil
}

// AddFace transfers ownership of face to the volume.
func (v *Volume) AddFace(face *Face) error {
	if face == nil {
		return fmt.Errorf("nil face: %w", ErrInvalidParam)
	}
	v.faces = append(v.faces, face)
	return nil
}

func (v *Volume) RemoveAllFaces() {
	v.faces = v.faces[:0]
}

// SetEmpty removes all faces and vertices.
func (v *Volume) SetEmpty() {
	v.RemoveAllFaces()
	v.RemoveAllVertices()
}

// cubeFaces lists the six faces of SetToCube, wound counter-clockwise seen
// from outside: +x, -x, +y, -y, +z, -z.
var cubeFaces = [6]struct {
	normal  mgl64.Vec3
	indices [4]int
}{
	{mgl64.Vec3{1, 0, 0}, [4]int{1, 5, 6, 2}},
	{mgl64.Vec3{-1, 0, 0}, [4]int{4, 0, 3, 7}},
	{mgl64.Vec3{0, 1, 0}, [4]int{0, 4, 5, 1}},
	{mgl64.Vec3{0, -1, 0}, [4]int{3, 2, 6, 7}},
	{mgl64.Vec3{0, 0, 1}, [4]int{7, 6, 5, 4}},
	{mgl64.Vec3{0, 0, -1}, [4]int{0, 1, 2, 3}},
}

// SetToCube replaces the content with an axis aligned box centered on the
// origin.
//
// Vertex order is fixed:
//
//	0 (-x,+y,-z)  1 (+x,+y,-z)  2 (+x,-y,-z)  3 (-x,-y,-z)
//	4 (-x,+y,+z)  5 (+x,+y,+z)  6 (+x,-y,+z)  7 (-x,-y,+z)
func (v *Volume) SetToCube(halfExtents mgl64.Vec3) error {
	if halfExtents.X() < 0 || halfExtents.Y() < 0 || halfExtents.Z() < 0 {
		return fmt.Errorf("negative half extents %v: %w", halfExtents, ErrInvalidParam)
	}

	x, y, z := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	v.SetEmpty()
	v.vertices = append(v.vertices,
		mgl64.Vec3{-x, y, -z},
		mgl64.Vec3{x, y, -z},
		mgl64.Vec3{x, -y, -z},
		mgl64.Vec3{-x, -y, -z},
		mgl64.Vec3{-x, y, z},
		mgl64.Vec3{x, y, z},
		mgl64.Vec3{x, -y, z},
		mgl64.Vec3{-x, -y, z},
	)

	for _, def := range cubeFaces {
		face, err := NewFaceFrom(def.normal, def.indices[:]...)
		if err != nil {
			return err
		}
		v.faces = append(v.faces, face)
	}

	return nil
}

// Move translates every vertex by offset.
func (v *Volume) Move(offset mgl64.Vec3) {
	for i := range v.vertices {
		v.vertices[i] = v.vertices[i].Add(offset)
	}
}

// Transform applies an affine matrix to the vertices. Normals are rotated by
// the upper 3x3 block and renormalized, which is exact for rigid transforms
// and uniform scales.
func (v *Volume) Transform(m mgl64.Mat4) {
	for i := range v.vertices {
		v.vertices[i] = mgl64.TransformCoordinate(v.vertices[i], m)
	}

	normalMatrix := m.Mat3().Inv().Transpose()
	for _, face := range v.faces {
		normal := normalMatrix.Mul3x1(face.normal)
		if normal.LenSqr() > degenerateLengthSqr {
			face.normal = normal.Normalize()
		}
	}
}

// Clone returns a deep copy: vertex store and faces are duplicated.
func (v *Volume) Clone() *Volume {
	clone := &Volume{
		vertices: append(make([]mgl64.Vec3, 0, len(v.vertices)), v.vertices...),
		faces:    make([]*Face, len(v.faces)),
	}
	for i, face := range v.faces {
		clone.faces[i] = face.Clone()
	}
	return clone
}

// AABB returns the bounds of the vertex store. An empty volume yields an
// empty box.
func (v *Volume) AABB() AABB {
	box := EmptyAABB()
	for _, vertex := range v.vertices {
		box = box.Extend(vertex)
	}
	return box
}

// ContainsPoint reports whether point lies behind every face plane by more
// than threshold. A volume with fewer than MinClosedFaceCount faces is open
// and contains nothing.
func (v *Volume) ContainsPoint(point mgl64.Vec3, threshold float64) bool {
	if len(v.faces) < MinClosedFaceCount {
		return false
	}

	for _, face := range v.faces {
		if len(face.vertices) == 0 {
			continue
		}
		if face.normal.Dot(point.Sub(v.vertices[face.vertices[0]])) > -threshold {
			return false
		}
	}
	return true
}

// Center returns the mean of the vertex store.
func (v *Volume) Center() mgl64.Vec3 {
	var center mgl64.Vec3
	if len(v.vertices) == 0 {
		return center
	}
	for _, vertex := range v.vertices {
		center = center.Add(vertex)
	}
	return center.Mul(1.0 / float64(len(v.vertices)))
}

// Volume computes the enclosed volume from the faces, summing the signed
// tetrahedra formed by the center and each face fan triangle.
func (v *Volume) Volume() float64 {
	center := v.Center()
	total := 0.0
	for _, face := range v.faces {
		if len(face.vertices) < 3 {
			continue
		}
		a := v.vertices[face.vertices[0]].Sub(center)
		for i := 1; i < len(face.vertices)-1; i++ {
			b := v.vertices[face.vertices[i]].Sub(center)
			c := v.vertices[face.vertices[i+1]].Sub(center)
			total += a.Dot(b.Cross(c))
		}
	}
	return total / 6.0
}
