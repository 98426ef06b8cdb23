package clip

import (
	"math"
	"testing"

	"github.com/akmonengine/convex/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTolerance = 1e-6

func vec3ApproxEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

// indexOfVertexApprox is IndexOfVertex with a tolerance.
func indexOfVertexApprox(v *volume.Volume, p mgl64.Vec3, tolerance float64) int {
	for i, vertex := range v.Vertices() {
		if vec3ApproxEqual(vertex, p, tolerance) {
			return i
		}
	}
	return -1
}

// volumeWithVertex returns the first volume holding a vertex close to p.
func volumeWithVertex(l *List, p mgl64.Vec3) *volume.Volume {
	for _, v := range l.Volumes() {
		if indexOfVertexApprox(v, p, testTolerance) != -1 {
			return v
		}
	}
	return nil
}

func faceWithNormal(v *volume.Volume, normal mgl64.Vec3) *volume.Face {
	for _, face := range v.Faces() {
		if vec3ApproxEqual(face.Normal(), normal, testTolerance) {
			return face
		}
	}
	return nil
}

func sameVertexSet(a, b []mgl64.Vec3, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for _, p := range a {
		found := false
		for _, q := range b {
			if vec3ApproxEqual(p, q, tolerance) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func totalVolume(l *List) float64 {
	total := 0.0
	for _, v := range l.Volumes() {
		total += v.Volume()
	}
	return total
}

func newCubeList(t *testing.T, halfExtents mgl64.Vec3) *List {
	t.Helper()
	l := New()
	require.NoError(t, l.SetToCube(halfExtents))
	return l
}

// assertWellFormed checks every face of v: vertices on the face plane,
// right-hand winding and normal pointing away from the vertex centroid.
func assertWellFormed(t *testing.T, v *volume.Volume) {
	t.Helper()

	vertices := v.Vertices()
	center := v.Center()
	for f, face := range v.Faces() {
		indices := face.Vertices()
		require.GreaterOrEqual(t, len(indices), 3, "face %d", f)

		origin := vertices[indices[0]]
		for _, index := range indices {
			assert.InDelta(t, 0, face.Normal().Dot(vertices[index].Sub(origin)), 1e-9, "face %d vertex %d off plane", f, index)
		}

		count := len(indices)
		for i := range indices {
			p0 := vertices[indices[i]]
			p1 := vertices[indices[(i+1)%count]]
			p2 := vertices[indices[(i+2)%count]]
			turn := p1.Sub(p0).Cross(p2.Sub(p1))
			assert.Greater(t, turn.Dot(face.Normal()), 0.0, "face %d edge %d winding", f, i)
		}

		assert.Greater(t, face.Normal().Dot(face.Center(v).Sub(center)), 0.0, "face %d points inward", f)
	}
}

// assertBoxShaped checks that v is an axis aligned box: eight vertices and
// one face for each axis direction.
func assertBoxShaped(t *testing.T, v *volume.Volume) {
	t.Helper()

	assert.Equal(t, 8, v.VertexCount())
	require.Equal(t, 6, v.FaceCount())

	axes := []mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, axis := range axes {
		count := 0
		for _, face := range v.Faces() {
			if vec3ApproxEqual(face.Normal(), axis, testTolerance) {
				count++
				assert.Equal(t, 4, face.VertexCount())
			}
		}
		assert.Equal(t, 1, count, "axis %v", axis)
	}
	assertWellFormed(t, v)
}
