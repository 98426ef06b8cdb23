package volume

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertFaceWinding checks that every vertex of the face lies on its plane and
// that consecutive edges turn around the normal following the right-hand rule.
func assertFaceWinding(t *testing.T, v *Volume, face *Face) {
	t.Helper()

	indices := face.Vertices()
	require.GreaterOrEqual(t, len(indices), 3)

	origin := v.vertices[indices[0]]
	for _, index := range indices {
		assert.InDelta(t, 0, face.Normal().Dot(v.vertices[index].Sub(origin)), 1e-9, "vertex %d off the face plane", index)
	}

	count := len(indices)
	for i := range indices {
		p0 := v.vertices[indices[i]]
		p1 := v.vertices[indices[(i+1)%count]]
		p2 := v.vertices[indices[(i+2)%count]]
		turn := p1.Sub(p0).Cross(p2.Sub(p1))
		assert.Greater(t, turn.Dot(face.Normal()), 0.0, "edge %d turns against the normal", i)
	}
}

// assertClosedOutward checks the faces of a convex volume: right-hand winding
// and normals pointing away from the vertex centroid.
func assertClosedOutward(t *testing.T, v *Volume) {
	t.Helper()

	center := v.Center()
	for _, face := range v.Faces() {
		assertFaceWinding(t, v, face)
		assert.Greater(t, face.Normal().Dot(face.Center(v).Sub(center)), 0.0)
	}
}

func TestVolumeSetToCube(t *testing.T) {
	v := New()
	require.NoError(t, v.SetToCube(mgl64.Vec3{1, 2, 3}))

	assert.Equal(t, 8, v.VertexCount())
	assert.Equal(t, 6, v.FaceCount())

	expected := []mgl64.Vec3{
		{-1, 2, -3}, {1, 2, -3}, {1, -2, -3}, {-1, -2, -3},
		{-1, 2, 3}, {1, 2, 3}, {1, -2, 3}, {-1, -2, 3},
	}
	assert.Equal(t, expected, v.Vertices())

	normals := []mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for i, face := range v.Faces() {
		assert.Equal(t, normals[i], face.Normal())
		assert.Equal(t, 4, face.VertexCount())
	}
	assertClosedOutward(t, v)

	// SetToCube replaces any previous content
	require.NoError(t, v.SetToCube(mgl64.Vec3{1, 1, 1}))
	assert.Equal(t, 8, v.VertexCount())
	assert.Equal(t, 6, v.FaceCount())
}

func TestVolumeSetToCube_InvalidExtents(t *testing.T) {
	tests := []struct {
		name        string
		halfExtents mgl64.Vec3
	}{
		{name: "negative x", halfExtents: mgl64.Vec3{-1, 1, 1}},
		{name: "negative y", halfExtents: mgl64.Vec3{1, -1, 1}},
		{name: "negative z", halfExtents: mgl64.Vec3{1, 1, -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCube(tt.halfExtents)
			assert.ErrorIs(t, err, ErrInvalidParam)
		})
	}
}

func TestVolumeVertices(t *testing.T) {
	v := New()
	assert.Equal(t, 0, v.AddVertex(mgl64.Vec3{1, 2, 3}))
	assert.Equal(t, 1, v.AddVertex(mgl64.Vec3{1, 2, 3}))
	assert.Equal(t, 0, v.AddVertexUnique(mgl64.Vec3{1, 2, 3}))
	assert.Equal(t, 2, v.AddVertexUnique(mgl64.Vec3{4, 5, 6}))

	assert.Equal(t, 0, v.IndexOfVertex(mgl64.Vec3{1, 2, 3}))
	assert.Equal(t, -1, v.IndexOfVertex(mgl64.Vec3{1, 2, 3.0000001}))
	assert.True(t, v.HasVertex(mgl64.Vec3{4, 5, 6}))

	p, err := v.VertexAt(2)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, p)

	_, err = v.VertexAt(3)
	assert.ErrorIs(t, err, ErrInvalidParam)

	v.RemoveAllVertices()
	assert.Equal(t, 0, v.VertexCount())
}

func TestVolumeFaces(t *testing.T) {
	v := New()
	assert.ErrorIs(t, v.AddFace(nil), ErrInvalidParam)

	face := NewFace(mgl64.Vec3{0, 1, 0})
	require.NoError(t, v.AddFace(face))

	got, err := v.FaceAt(0)
	require.NoError(t, err)
	assert.Same(t, face, got)

	_, err = v.FaceAt(1)
	assert.ErrorIs(t, err, ErrInvalidParam)
	_, err = v.FaceAt(-1)
	assert.ErrorIs(t, err, ErrInvalidParam)

	v.AddVertex(mgl64.Vec3{})
	v.SetEmpty()
	assert.Equal(t, 0, v.FaceCount())
	assert.Equal(t, 0, v.VertexCount())
}

func TestVolumeMove(t *testing.T) {
	v, err := NewCube(mgl64.Vec3{0.25, 0.25, 0.25})
	require.NoError(t, err)

	v.Move(mgl64.Vec3{1, 1, 1})

	box := v.AABB()
	assert.Equal(t, mgl64.Vec3{0.75, 0.75, 0.75}, box.Min)
	assert.Equal(t, mgl64.Vec3{1.25, 1.25, 1.25}, box.Max)
	assertClosedOutward(t, v)
}

func TestVolumeTransform(t *testing.T) {
	tests := []struct {
		name   string
		matrix mgl64.Mat4
	}{
		{name: "identity", matrix: mgl64.Ident4()},
		{name: "translation", matrix: mgl64.Translate3D(3, -2, 5)},
		{name: "rotation y", matrix: mgl64.HomogRotate3DY(math.Pi / 2)},
		{name: "rotation and translation", matrix: mgl64.Translate3D(1, 2, 3).Mul4(mgl64.HomogRotate3D(0.7, mgl64.Vec3{1, 1, 0}.Normalize()))},
		{name: "non uniform scale", matrix: mgl64.Scale3D(2, 1, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewCube(mgl64.Vec3{1, 2, 3})
			require.NoError(t, err)
			before := v.Volume()

			v.Transform(tt.matrix)

			for _, face := range v.Faces() {
				assert.InDelta(t, 1, face.Normal().Len(), 1e-9)
			}
			assertClosedOutward(t, v)

			det := tt.matrix.Mat3().Det()
			assert.InDelta(t, before*det, v.Volume(), 1e-9)
		})
	}
}

func TestVolumeClone(t *testing.T) {
	v, err := NewCube(mgl64.Vec3{1, 1, 1})
	require.NoError(t, err)
	v.Faces()[0].SetMarker(3)

	clone := v.Clone()
	v.Move(mgl64.Vec3{5, 0, 0})
	v.Faces()[0].SetMarker(4)
	v.Faces()[1].RemoveAllVertices()

	assert.Equal(t, mgl64.Vec3{-1, 1, -1}, clone.Vertices()[0])
	assert.Equal(t, 3, clone.Faces()[0].Marker())
	assert.Equal(t, 4, clone.Faces()[1].VertexCount())
	assertClosedOutward(t, clone)
}

func TestVolumeContainsPoint(t *testing.T) {
	v, err := NewCube(mgl64.Vec3{1, 1, 1})
	require.NoError(t, err)

	tests := []struct {
		name     string
		point    mgl64.Vec3
		expected bool
	}{
		{name: "center", point: mgl64.Vec3{0, 0, 0}, expected: true},
		{name: "near corner", point: mgl64.Vec3{0.99, -0.99, 0.99}, expected: true},
		{name: "on face", point: mgl64.Vec3{1, 0, 0}, expected: false},
		{name: "within threshold of face", point: mgl64.Vec3{0.9995, 0, 0}, expected: false},
		{name: "outside", point: mgl64.Vec3{0, 0, 1.5}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.ContainsPoint(tt.point, 1e-3))
		})
	}

	assert.False(t, New().ContainsPoint(mgl64.Vec3{}, 0))

	// Three faces around a corner leave the volume open
	corner := New()
	corner.AddVertex(mgl64.Vec3{0, 0, 0})
	corner.AddVertex(mgl64.Vec3{1, 0, 0})
	corner.AddVertex(mgl64.Vec3{0, 1, 0})
	corner.AddVertex(mgl64.Vec3{0, 0, 1})
	for _, f := range []struct {
		normal  mgl64.Vec3
		indices []int
	}{
		{normal: mgl64.Vec3{-1, 0, 0}, indices: []int{0, 3, 2}},
		{normal: mgl64.Vec3{0, -1, 0}, indices: []int{0, 1, 3}},
		{normal: mgl64.Vec3{0, 0, -1}, indices: []int{0, 2, 1}},
	} {
		face, err := NewFaceFrom(f.normal, f.indices...)
		require.NoError(t, err)
		require.NoError(t, corner.AddFace(face))
	}
	assert.False(t, corner.ContainsPoint(mgl64.Vec3{0.1, 0.1, 0.1}, 0))
	assert.False(t, corner.ContainsPoint(mgl64.Vec3{50, 50, 50}, 0))
}

func TestVolumeVolume(t *testing.T) {
	v, err := NewCube(mgl64.Vec3{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 48, v.Volume(), 1e-12)

	assert.Equal(t, 0.0, New().Volume())
}

func TestVolumeMesh(t *testing.T) {
	v, err := NewCube(mgl64.Vec3{1, 1, 1})
	require.NoError(t, err)

	// A face left with two vertices is not exported
	degenerate, err := NewFaceFrom(mgl64.Vec3{0, 1, 0}, 0, 1)
	require.NoError(t, err)
	require.NoError(t, v.AddFace(degenerate))

	mesh := v.Mesh()
	assert.Equal(t, 24, mesh.VertexCount())
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Len(t, mesh.Normals, len(mesh.Vertices))
	assert.False(t, mesh.IsEmpty())

	// First triangle belongs to the +x face
	for i := 0; i < 3; i++ {
		assert.Equal(t, float32(1), mesh.Normals[3*int(mesh.Indices[i])])
	}

	data, err := json.Marshal(mesh)
	require.NoError(t, err)
	var decoded Mesh
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, mesh, decoded)

	assert.True(t, New().Mesh().IsEmpty())
}
