// Package hull builds convex volume lists approximating common shapes and
// crops them by boxes and occluding triangles.
package hull

import (
	"fmt"
	"math"

	"github.com/akmonengine/convex/clip"
	"github.com/akmonengine/convex/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// illShapedLength is the cross product length under which a triangle or quad
// built with a computed normal is skipped.
const illShapedLength = 1e-6

// BuildBox replaces the content of l with a box of the given half extents,
// placed by m.
func BuildBox(l *clip.List, m mgl64.Mat4, halfExtents mgl64.Vec3) error {
	box, err := volume.NewCube(halfExtents)
	if err != nil {
		return err
	}
	box.Transform(m)

	l.RemoveAllVolumes()
	return l.AddVolume(box)
}

// BuildSphere replaces the content of l with a bevelled cube enclosing the
// sphere: 24 vertices, 26 faces. The axis and edge aligned faces touch the
// sphere, the corner triangles stay slightly outside.
func BuildSphere(l *clip.List, position mgl64.Vec3, radius float64) error {
	if radius < 0 {
		return fmt.Errorf("negative sphere radius %f: %w", radius, volume.ErrInvalidParam)
	}

	v := volume.New()
	r := radius
	o := (math.Sqrt2 - 1) * radius

	for _, p := range []mgl64.Vec3{
		// top
		{-o, r, -o}, {o, r, -o}, {-o, r, o}, {o, r, o},
		// upper band
		{-r, o, -o}, {-o, o, -r}, {o, o, -r}, {r, o, -o},
		{-r, o, o}, {-o, o, r}, {o, o, r}, {r, o, o},
		// lower band
		{-r, -o, -o}, {-o, -o, -r}, {o, -o, -r}, {r, -o, -o},
		{-r, -o, o}, {-o, -o, r}, {o, -o, r}, {r, -o, o},
		// bottom
		{-o, -r, -o}, {o, -r, -o}, {-o, -r, o}, {o, -r, o},
	} {
		v.AddVertex(position.Add(p))
	}

	faces := []struct {
		indices []int
		normal  mgl64.Vec3
	}{
		{[]int{2, 3, 1, 0}, mgl64.Vec3{0, 1, 0}},

		{[]int{0, 1, 6, 5}, mgl64.Vec3{0, 1, -1}},
		{[]int{1, 7, 6}, mgl64.Vec3{1, 1, -1}},
		{[]int{1, 3, 11, 7}, mgl64.Vec3{1, 1, 0}},
		{[]int{3, 10, 11}, mgl64.Vec3{1, 1, 1}},
		{[]int{3, 2, 9, 10}, mgl64.Vec3{0, 1, 1}},
		{[]int{2, 8, 9}, mgl64.Vec3{-1, 1, 1}},
		{[]int{2, 0, 4, 8}, mgl64.Vec3{-1, 1, 0}},
		{[]int{0, 5, 4}, mgl64.Vec3{-1, 1, -1}},

		{[]int{5, 6, 14, 13}, mgl64.Vec3{0, 0, -1}},
		{[]int{6, 7, 15, 14}, mgl64.Vec3{1, 0, -1}},
		{[]int{7, 11, 19, 15}, mgl64.Vec3{1, 0, 0}},
		{[]int{11, 10, 18, 19}, mgl64.Vec3{1, 0, 1}},
		{[]int{10, 9, 17, 18}, mgl64.Vec3{0, 0, 1}},
		{[]int{9, 8, 16, 17}, mgl64.Vec3{-1, 0, 1}},
		{[]int{8, 4, 12, 16}, mgl64.Vec3{-1, 0, 0}},
		{[]int{4, 5, 13, 12}, mgl64.Vec3{-1, 0, -1}},

		{[]int{13, 14, 21, 20}, mgl64.Vec3{0, -1, -1}},
		{[]int{14, 15, 21}, mgl64.Vec3{1, -1, -1}},
		{[]int{15, 19, 23, 21}, mgl64.Vec3{1, -1, 0}},
		{[]int{19, 18, 23}, mgl64.Vec3{1, -1, 1}},
		{[]int{18, 17, 22, 23}, mgl64.Vec3{0, -1, 1}},
		{[]int{17, 16, 22}, mgl64.Vec3{-1, -1, 1}},
		{[]int{16, 12, 20, 22}, mgl64.Vec3{-1, -1, 0}},
		{[]int{12, 13, 20}, mgl64.Vec3{-1, -1, -1}},

		{[]int{20, 21, 23, 22}, mgl64.Vec3{0, -1, 0}},
	}
	for _, f := range faces {
		if err := addFace(v, f.normal.Normalize(), f.indices...); err != nil {
			return err
		}
	}

	l.RemoveAllVolumes()
	return l.AddVolume(v)
}

// BuildCone replaces the content of l with a cone whose tip sits at the
// origin of m and which opens along its z axis up to distance.
//
// The base circle is tessellated into resolution points. Its radius is
// enlarged so the polygon encloses the circle: with r = d·tan(angle), the
// polygon edge midpoints lie at r' cos(step/2), giving r' = r / cos(step/2).
func BuildCone(l *clip.List, m mgl64.Mat4, distance, angle float64, resolution int) error {
	if resolution < 3 {
		return fmt.Errorf("cone resolution %d below 3: %w", resolution, volume.ErrInvalidParam)
	}

	step := 2 * math.Pi / float64(resolution)
	radius := distance * math.Tan(angle) / math.Cos(step*0.5)

	v := volume.New()
	v.AddVertex(translation(m))
	for i := 0; i < resolution; i++ {
		a := step * float64(i)
		circle := mgl64.Vec3{math.Sin(a) * radius, math.Cos(a) * radius, distance}
		v.AddVertex(mgl64.TransformCoordinate(circle, m))
	}

	// mantle
	for i := 0; i < resolution; i++ {
		if err := addAutoFace(v, 0, 1+i, 1+(i+1)%resolution); err != nil {
			return err
		}
	}

	// base
	base := make([]int, resolution)
	for i := range base {
		base[i] = 1 + (resolution - 1 - i)
	}
	if err := addFace(v, view(m), base...); err != nil {
		return err
	}

	l.RemoveAllVolumes()
	return l.AddVolume(v)
}

// BuildFrustum replaces the content of l with a pyramid whose apex sits at
// the origin of m, opening along its z axis up to far. angleX and angleY are
// the half opening angles around the y and x axes.
func BuildFrustum(l *clip.List, m mgl64.Mat4, far, angleX, angleY float64) error {
	if far <= 0 {
		return fmt.Errorf("frustum far distance %f not positive: %w", far, volume.ErrInvalidParam)
	}
	if angleX <= 0 || angleX >= math.Pi/2 || angleY <= 0 || angleY >= math.Pi/2 {
		return fmt.Errorf("frustum angles (%f, %f) outside ]0, π/2[: %w", angleX, angleY, volume.ErrInvalidParam)
	}

	sinX, cosX := math.Sincos(angleX)
	sinY, cosY := math.Sincos(angleY)
	xf := math.Tan(angleX) * far
	yf := math.Tan(angleY) * far

	v := volume.New()
	v.AddVertex(translation(m))
	for _, p := range []mgl64.Vec3{{-xf, yf, far}, {xf, yf, far}, {xf, -yf, far}, {-xf, -yf, far}} {
		v.AddVertex(mgl64.TransformCoordinate(p, m))
	}

	faces := []struct {
		indices []int
		normal  mgl64.Vec3
	}{
		{[]int{0, 2, 3}, mgl64.Vec3{cosX, 0, -sinX}},  // right
		{[]int{1, 0, 4}, mgl64.Vec3{-cosX, 0, -sinX}}, // left
		{[]int{1, 2, 0}, mgl64.Vec3{0, cosY, -sinY}},  // top
		{[]int{0, 3, 4}, mgl64.Vec3{0, -cosY, -sinY}}, // bottom
		{[]int{2, 1, 4, 3}, mgl64.Vec3{0, 0, 1}},      // far
	}
	for _, f := range faces {
		if err := addFace(v, transformNormal(f.normal, m), f.indices...); err != nil {
			return err
		}
	}

	l.RemoveAllVolumes()
	return l.AddVolume(v)
}

// Extents returns the bounds of every vertex of l. ok is false when the list
// holds no vertex.
func Extents(l *clip.List) (box volume.AABB, ok bool) {
	box = l.AABB()
	return box, !box.IsEmpty()
}

// TransformedExtents returns the bounds of every vertex of l transformed by m.
func TransformedExtents(l *clip.List, m mgl64.Mat4) (box volume.AABB, ok bool) {
	box = volume.EmptyAABB()
	for _, v := range l.Volumes() {
		for _, p := range v.Vertices() {
			box = box.Extend(mgl64.TransformCoordinate(p, m))
		}
	}
	return box, !box.IsEmpty()
}

func addFace(v *volume.Volume, normal mgl64.Vec3, indices ...int) error {
	face, err := volume.NewFaceFrom(normal, indices...)
	if err != nil {
		return err
	}
	return v.AddFace(face)
}

// addAutoFace adds a face whose normal is computed from its first three
// vertices. Ill shaped faces are skipped.
func addAutoFace(v *volume.Volume, indices ...int) error {
	points := v.Vertices()
	p1, p2, p3 := points[indices[0]], points[indices[1]], points[indices[2]]

	normal := p2.Sub(p1).Cross(p3.Sub(p2))
	length := normal.Len()
	if length < illShapedLength {
		return nil
	}
	return addFace(v, normal.Mul(1/length), indices...)
}

func translation(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}

// view is the z axis of m.
func view(m mgl64.Mat4) mgl64.Vec3 {
	return transformNormal(mgl64.Vec3{0, 0, 1}, m)
}

func transformNormal(n mgl64.Vec3, m mgl64.Mat4) mgl64.Vec3 {
	t := mgl64.TransformNormal(n, m)
	if t.LenSqr() == 0 {
		return t
	}
	return t.Normalize()
}
