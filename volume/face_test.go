package volume

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// heptagon returns a volume holding seven points of a convex polygon in the
// z=0 plane. Walking them in order is counter-clockwise seen from -z.
func heptagon() *Volume {
	v := New()
	v.AddVertex(mgl64.Vec3{1, 5, 0})
	v.AddVertex(mgl64.Vec3{3, 8, 0})
	v.AddVertex(mgl64.Vec3{6, 9, 0})
	v.AddVertex(mgl64.Vec3{8, 6, 0})
	v.AddVertex(mgl64.Vec3{8, 2, 0})
	v.AddVertex(mgl64.Vec3{7, 1, 0})
	v.AddVertex(mgl64.Vec3{2, 1, 0})
	return v
}

func TestFaceSortVertices(t *testing.T) {
	v := heptagon()

	tests := []struct {
		name  string
		order []int
	}{
		{name: "already sorted", order: []int{0, 1, 2, 3, 4, 5, 6}},
		{name: "scramble 1", order: []int{0, 6, 2, 3, 1, 5, 4}},
		{name: "reversed", order: []int{0, 6, 5, 4, 3, 2, 1}},
		{name: "pairs swapped", order: []int{0, 2, 1, 4, 3, 6, 5}},
		{name: "scramble 2", order: []int{0, 5, 6, 3, 4, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face, err := NewFaceFrom(mgl64.Vec3{0, 0, -1}, tt.order...)
			require.NoError(t, err)

			face.SortVertices(v)

			assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, face.Vertices())
			assertFaceWinding(t, v, face)
		})
	}
}

func TestFaceSortVertices_KeepsFirstVertex(t *testing.T) {
	v := heptagon()
	face, err := NewFaceFrom(mgl64.Vec3{0, 0, -1}, 3, 0, 6, 5, 4, 1, 2)
	require.NoError(t, err)

	face.SortVertices(v)

	assert.Equal(t, []int{3, 4, 5, 6, 0, 1, 2}, face.Vertices())
}

func TestFaceSortVertices_OppositeNormal(t *testing.T) {
	v := heptagon()
	face, err := NewFaceFrom(mgl64.Vec3{0, 0, 1}, 0, 1, 2, 3, 4, 5, 6)
	require.NoError(t, err)

	face.SortVertices(v)

	assert.Equal(t, []int{0, 6, 5, 4, 3, 2, 1}, face.Vertices())
	assertFaceWinding(t, v, face)
}

func TestFaceSortVertices_Degenerate(t *testing.T) {
	v := New()
	v.AddVertex(mgl64.Vec3{0, 0, 0})
	v.AddVertex(mgl64.Vec3{0, 0, 0})
	v.AddVertex(mgl64.Vec3{0, 0, 0})
	face, err := NewFaceFrom(mgl64.Vec3{0, 1, 0}, 2, 1, 0)
	require.NoError(t, err)

	assert.NotPanics(t, func() { face.SortVertices(v) })
	assert.Equal(t, []int{2, 1, 0}, face.Vertices())
}

func TestFaceIsTooSmall(t *testing.T) {
	v := New()
	v.AddVertex(mgl64.Vec3{0, 0, 0})    // 0
	v.AddVertex(mgl64.Vec3{1, 0, 0})    // 1
	v.AddVertex(mgl64.Vec3{1, 1, 0})    // 2
	v.AddVertex(mgl64.Vec3{2, 0, 0})    // 3
	v.AddVertex(mgl64.Vec3{1e-4, 0, 0}) // 4
	v.AddVertex(mgl64.Vec3{0, 1e-4, 0}) // 5

	tests := []struct {
		name     string
		indices  []int
		expected bool
	}{
		{name: "no vertex", indices: nil, expected: true},
		{name: "edge", indices: []int{0, 1}, expected: true},
		{name: "collinear", indices: []int{0, 1, 3}, expected: true},
		{name: "tiny triangle", indices: []int{0, 4, 5}, expected: true},
		{name: "triangle", indices: []int{0, 1, 2}, expected: false},
		{name: "unsorted triangle", indices: []int{2, 1, 0}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face, err := NewFaceFrom(mgl64.Vec3{0, 0, 1}, tt.indices...)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, face.IsTooSmall(v))
		})
	}
}

func TestFaceVertexAccess(t *testing.T) {
	face := NewFace(mgl64.Vec3{1, 0, 0})
	face.SetMarker(7)

	assert.ErrorIs(t, face.AddVertex(-1), ErrInvalidParam)
	require.NoError(t, face.AddVertex(4))
	require.NoError(t, face.AddVertex(2))

	index, err := face.VertexAt(1)
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	_, err = face.VertexAt(2)
	assert.ErrorIs(t, err, ErrInvalidParam)
	_, err = face.VertexAt(-1)
	assert.ErrorIs(t, err, ErrInvalidParam)

	assert.True(t, face.HasVertex(4))
	assert.False(t, face.HasVertex(3))
	assert.Equal(t, 1, face.IndexOfVertex(2))
	assert.Equal(t, -1, face.IndexOfVertex(9))

	clone := face.Clone()
	face.RemoveAllVertices()
	assert.Equal(t, 0, face.VertexCount())
	assert.Equal(t, []int{4, 2}, clone.Vertices())
	assert.Equal(t, 7, clone.Marker())
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, clone.Normal())
}

func TestFaceArea(t *testing.T) {
	v, err := NewCube(mgl64.Vec3{1, 2, 3})
	require.NoError(t, err)

	expected := []float64{24, 24, 12, 12, 8, 8}
	for i, face := range v.Faces() {
		assert.InDelta(t, expected[i], face.Area(v), 1e-12, "face %d", i)
	}
}
