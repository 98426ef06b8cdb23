package convex

import (
	"github.com/akmonengine/convex/clip"
	"github.com/akmonengine/convex/volume"
)

// Blocker is a convex shape removed from every space it overlaps.
type Blocker struct {
	Id any
	// Shape in local space, every volume of it is carved out of the spaces
	Shape     *clip.List
	Transform Transform
	// A blocker only carves the spaces of its layer whose BlockingPriority
	// is not above Priority
	Layer    int
	Priority int
	Enabled  bool

	world *clip.List
	aabb  volume.AABB
}

// NewBlocker creates an enabled blocker
func NewBlocker(shape *clip.List, transform Transform) *Blocker {
	return &Blocker{
		Shape:     shape,
		Transform: transform,
		Enabled:   true,
		aabb:      volume.EmptyAABB(),
	}
}

// World returns the shape placed in world space by the last update.
func (b *Blocker) World() *clip.List {
	return b.world
}

// AABB returns the world bounds computed by the last update.
func (b *Blocker) AABB() volume.AABB {
	return b.aabb
}

// update places the shape in world space
func (b *Blocker) update() {
	if b.Shape == nil {
		b.world = clip.New()
		b.aabb = volume.EmptyAABB()
		return
	}

	b.world = b.Shape.Clone()
	b.world.Transform(b.Transform.Matrix())
	b.aabb = b.world.AABB()
}
