package hull

import (
	"fmt"
	"sort"

	"github.com/akmonengine/convex/clip"
	"github.com/akmonengine/convex/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// minOriginDistance is the floor applied to the distance between the origin
// and an occluding triangle plane before extruding it.
const minOriginDistance = 1e-5

// Triangle is an occluding triangle, wound counter-clockwise seen from the
// origin of the crop.
type Triangle [3]mgl64.Vec3

func (t Triangle) Center() mgl64.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Mul(1.0 / 3.0)
}

// OcclusionMesh is an indexed triangle mesh used to crop volume lists. The
// first SingleSidedFaceCount faces occlude only from their front side, the
// remaining ones from both sides.
type OcclusionMesh struct {
	Vertices             []mgl64.Vec3
	Corners              []int
	SingleSidedFaceCount int
}

// CropByBoundingBox crops l to the box [minExtent, maxExtent] expressed in the
// space of m.
func CropByBoundingBox(l *clip.List, m mgl64.Mat4, minExtent, maxExtent mgl64.Vec3) {
	right := transformNormal(mgl64.Vec3{1, 0, 0}, m)
	up := transformNormal(mgl64.Vec3{0, 1, 0}, m)
	forward := view(m)
	low := mgl64.TransformCoordinate(minExtent, m)
	high := mgl64.TransformCoordinate(maxExtent, m)

	l.SplitByPlane(right, low, true, nil)
	l.SplitByPlane(right.Mul(-1), high, true, nil)
	l.SplitByPlane(up, low, true, nil)
	l.SplitByPlane(up.Mul(-1), high, true, nil)
	l.SplitByPlane(forward, low, true, nil)
	l.SplitByPlane(forward.Mul(-1), high, true, nil)
}

// CropByTriangles removes from l the space hidden behind each triangle, as
// seen from origin, up to distance from it.
//
// Algorithm:
//  1. Project the triangle corners away from origin so the far triangle lies
//     at distance from origin along the triangle normal.
//  2. Build the prism between the triangle and its projection.
//  3. Remove the prism from l with SplitByVolume.
func CropByTriangles(l *clip.List, triangles []Triangle, origin mgl64.Vec3, distance float64) error {
	for _, triangle := range triangles {
		splitter, ok := shadowPrism(triangle, origin, distance)
		if !ok {
			continue
		}
		if err := l.SplitByVolume(splitter); err != nil {
			return err
		}
	}
	return nil
}

func shadowPrism(triangle Triangle, origin mgl64.Vec3, distance float64) (*volume.Volume, bool) {
	p1, p2, p3 := triangle[0], triangle[1], triangle[2]

	normal := p2.Sub(p1).Cross(p3.Sub(p2))
	if normal.Len() < illShapedLength {
		return nil, false
	}
	normal = normal.Normalize()

	dot := max(origin.Sub(p1).Dot(normal), minOriginDistance)
	scale := distance / dot
	pf1 := origin.Add(p1.Sub(origin).Mul(scale))
	pf2 := origin.Add(p2.Sub(origin).Mul(scale))
	pf3 := origin.Add(p3.Sub(origin).Mul(scale))

	splitter := volume.New()
	for _, p := range []mgl64.Vec3{p1, p2, p3, pf1, pf2, pf3} {
		splitter.AddVertex(p)
	}

	faces := []struct {
		indices []int
		normal  mgl64.Vec3
	}{
		{[]int{0, 1, 2}, normal},
		{[]int{5, 4, 3}, normal.Mul(-1)},
		{[]int{0, 3, 4, 1}, pf1.Sub(p1).Cross(p2.Sub(p1))},
		{[]int{1, 4, 5, 2}, pf2.Sub(p2).Cross(p3.Sub(p2))},
		{[]int{2, 5, 3, 0}, pf3.Sub(p3).Cross(p1.Sub(p3))},
	}
	for _, f := range faces {
		if f.normal.Len() < illShapedLength {
			return nil, false
		}
		// Indices are in range, NewFaceFrom cannot fail here
		_ = addFace(splitter, f.normal.Normalize(), f.indices...)
	}

	return splitter, true
}

// CropByOcclusionMesh crops l by the faces of mesh placed by m, as seen from
// origin. Faces are processed from the nearest to the farthest.
func CropByOcclusionMesh(l *clip.List, mesh OcclusionMesh, m mgl64.Mat4, origin mgl64.Vec3, distance float64) error {
	triangles, err := mesh.frontTriangles(m, origin)
	if err != nil {
		return err
	}
	if len(triangles) == 0 {
		return nil
	}

	SortRadial(triangles, origin)
	return CropByTriangles(l, triangles, origin, distance)
}

// frontTriangles returns the faces of the mesh turned toward origin. Double
// sided faces seen from the back are flipped, single sided ones are dropped.
func (mesh OcclusionMesh) frontTriangles(m mgl64.Mat4, origin mgl64.Vec3) ([]Triangle, error) {
	if len(mesh.Corners)%3 != 0 {
		return nil, fmt.Errorf("occlusion mesh corner count %d not a multiple of 3: %w", len(mesh.Corners), volume.ErrInvalidParam)
	}

	faceCount := len(mesh.Corners) / 3
	triangles := make([]Triangle, 0, faceCount)
	for i := 0; i < faceCount; i++ {
		var corners [3]mgl64.Vec3
		for j := 0; j < 3; j++ {
			// Mesh faces are stored clockwise
			index := mesh.Corners[3*i+2-j]
			if index < 0 || index >= len(mesh.Vertices) {
				return nil, fmt.Errorf("occlusion mesh corner %d out of range: %w", index, volume.ErrInvalidParam)
			}
			corners[j] = mgl64.TransformCoordinate(mesh.Vertices[index], m)
		}

		t1, t2, t3 := corners[0], corners[1], corners[2]
		if origin.Sub(t1).Dot(t2.Sub(t1).Cross(t3.Sub(t2))) > 0 {
			triangles = append(triangles, Triangle{t1, t2, t3})
		} else if i >= mesh.SingleSidedFaceCount {
			triangles = append(triangles, Triangle{t3, t2, t1})
		}
	}

	return triangles, nil
}

// SortRadial orders triangles by increasing distance of their center to
// origin.
func SortRadial(triangles []Triangle, origin mgl64.Vec3) {
	sort.SliceStable(triangles, func(i, j int) bool {
		return triangles[i].Center().Sub(origin).LenSqr() < triangles[j].Center().Sub(origin).LenSqr()
	})
}
