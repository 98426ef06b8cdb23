package convex

import "github.com/go-gl/mathgl/mgl64"

// Transform places a blocker shape in world space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Matrix returns the rotation followed by the translation
func (t Transform) Matrix() mgl64.Mat4 {
	rotation := t.Rotation
	// A zero quaternion comes from a Transform literal without rotation
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).Mul4(rotation.Normalize().Mat4())
}

// Apply transforms a point from local to world space
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(point, t.Matrix())
}
