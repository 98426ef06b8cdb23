package clip

import (
	"fmt"

	"github.com/akmonengine/convex/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// EqualityThreshold is the default distance under which a vertex is
// considered to lie on a cutting plane.
const EqualityThreshold = 1e-3

// List is an ordered collection of convex volumes, exclusively owned by the
// list, together with the algorithms splitting them.
//
// A List is not safe for concurrent use.
type List struct {
	// Threshold overrides EqualityThreshold when strictly positive.
	Threshold float64

	volumes []*volume.Volume
}

// New creates an empty list.
func New() *List {
	return &List{}
}

func (l *List) threshold() float64 {
	if l.Threshold > 0 {
		return l.Threshold
	}
	return EqualityThreshold
}

func (l *List) VolumeCount() int {
	return len(l.volumes)
}

// Volumes returns the volumes in list order. The slice is owned by the list.
func (l *List) Volumes() []*volume.Volume {
	return l.volumes
}

func (l *List) VolumeAt(i int) (*volume.Volume, error) {
	if i < 0 || i >= len(l.volumes) {
		return nil, fmt.Errorf("volume %d out of range [0, %d): %w", i, len(l.volumes), volume.ErrInvalidParam)
	}
	return l.volumes[i], nil
}

// IndexOfVolume returns the position of v in the list, or -1.
func (l *List) IndexOfVolume(v *volume.Volume) int {
	for i, candidate := range l.volumes {
		if candidate == v {
			return i
		}
	}
	return -1
}

func (l *List) HasVolume(v *volume.Volume) bool {
	return l.IndexOfVolume(v) != -1
}

// AddVolume transfers ownership of v to the list.
func (l *List) AddVolume(v *volume.Volume) error {
	if v == nil {
		return fmt.Errorf("nil volume: %w", volume.ErrInvalidParam)
	}
	if l.HasVolume(v) {
		return fmt.Errorf("volume already in list: %w", volume.ErrInvalidParam)
	}
	l.volumes = append(l.volumes, v)
	return nil
}

// RemoveVolume drops v from the list.
func (l *List) RemoveVolume(v *volume.Volume) error {
	index := l.IndexOfVolume(v)
	if index == -1 {
		return fmt.Errorf("volume not in list: %w", volume.ErrInvalidParam)
	}
	l.removeAt(index)
	return nil
}

func (l *List) RemoveVolumeAt(i int) error {
	if i < 0 || i >= len(l.volumes) {
		return fmt.Errorf("volume %d out of range [0, %d): %w", i, len(l.volumes), volume.ErrInvalidParam)
	}
	l.removeAt(i)
	return nil
}

// ExtractVolume removes v from the list and hands ownership back to the
// caller.
func (l *List) ExtractVolume(v *volume.Volume) (*volume.Volume, error) {
	if err := l.RemoveVolume(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (l *List) ExtractVolumeAt(i int) (*volume.Volume, error) {
	v, err := l.VolumeAt(i)
	if err != nil {
		return nil, err
	}
	l.removeAt(i)
	return v, nil
}

func (l *List) RemoveAllVolumes() {
	clear(l.volumes)
	l.volumes = l.volumes[:0]
}

// SetToCube replaces the content with a single box centered on the origin.
func (l *List) SetToCube(halfExtents mgl64.Vec3) error {
	cube, err := volume.NewCube(halfExtents)
	if err != nil {
		return err
	}
	l.RemoveAllVolumes()
	l.volumes = append(l.volumes, cube)
	return nil
}

// Move translates every volume by offset.
func (l *List) Move(offset mgl64.Vec3) {
	for _, v := range l.volumes {
		v.Move(offset)
	}
}

// Transform applies m to every volume.
func (l *List) Transform(m mgl64.Mat4) {
	for _, v := range l.volumes {
		v.Transform(m)
	}
}

// Clone returns a deep copy of the list and its volumes.
func (l *List) Clone() *List {
	clone := &List{
		Threshold: l.Threshold,
		volumes:   make([]*volume.Volume, len(l.volumes)),
	}
	for i, v := range l.volumes {
		clone.volumes[i] = v.Clone()
	}
	return clone
}

// AABB returns the bounds of all volumes. An empty list yields an empty box.
func (l *List) AABB() volume.AABB {
	box := volume.EmptyAABB()
	for _, v := range l.volumes {
		box = box.Union(v.AABB())
	}
	return box
}

// Mesh exports every volume into a single mesh.
func (l *List) Mesh() volume.Mesh {
	var mesh volume.Mesh
	for _, v := range l.volumes {
		v.AppendMesh(&mesh)
	}
	return mesh
}

// ContainsPoint reports how many volumes strictly contain point.
func (l *List) ContainsPoint(point mgl64.Vec3) int {
	count := 0
	for _, v := range l.volumes {
		if v.ContainsPoint(point, 0) {
			count++
		}
	}
	return count
}

func (l *List) removeAt(i int) {
	copy(l.volumes[i:], l.volumes[i+1:])
	l.volumes[len(l.volumes)-1] = nil
	l.volumes = l.volumes[:len(l.volumes)-1]
}

func (l *List) replaceAt(i int, v *volume.Volume) {
	l.volumes[i] = v
}
