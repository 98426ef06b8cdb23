package clip

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/akmonengine/convex/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// Side is the position of a volume relative to a plane.
type Side int

const (
	// SideFront: every vertex is in front of the plane or on it.
	SideFront Side = iota
	// SideBack: every vertex is behind the plane or on it, at least one behind.
	SideBack
	// SideSpanning: vertices on both sides.
	SideSpanning
)

func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	case SideSpanning:
		return "spanning"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// splitResult tells which parts survived a volume split.
type splitResult int

const (
	splitNone splitResult = iota
	splitFront
	splitBack
	splitFrontBack
)

// volumeTest is the outcome of testing a volume against a cutting volume.
type volumeTest int

const (
	testKeep volumeTest = iota
	testRemove
	testSplit
)

// Classify returns the side of the plane {x : normal·x = dot} on which v
// lies. Vertices closer than the threshold are neutral; a volume made only of
// neutral vertices is reported in front.
func (l *List) Classify(v *volume.Volume, normal mgl64.Vec3, dot float64) Side {
	front, back := l.sides(v.Vertices(), normal, dot)
	switch {
	case front && back:
		return SideSpanning
	case back:
		return SideBack
	default:
		return SideFront
	}
}

// sides reports whether any point lies in front of or behind the plane.
func (l *List) sides(points []mgl64.Vec3, normal mgl64.Vec3, dot float64) (front, back bool) {
	threshold := l.threshold()
	for _, p := range points {
		distance := normal.Dot(p) - dot
		if distance > threshold {
			front = true
		} else if distance < -threshold {
			back = true
		}
		if front && back {
			return
		}
	}
	return
}

// SplitByPlane splits every volume crossed by the plane through position
// with the given normal.
//
// Volumes in front of the plane are kept. Volumes behind it are kept, or
// removed if crop is set. A crossed volume is replaced by its front part at
// the same index and its back part is appended to the list, unless crop is
// set in which case the back part is dropped.
//
// The closing faces get the normal -normal on the front part and normal on
// the back part. They carry the marker of cutFace when not nil.
func (l *List) SplitByPlane(normal, position mgl64.Vec3, crop bool, cutFace *volume.Face) {
	l.cropByPlane(normal, normal.Dot(position), crop, cutFace, nil)
}

// CropByPlane is SplitByPlane with crop set, except that the discarded
// geometry is moved into removed instead of being dropped. removed may be nil.
func (l *List) CropByPlane(normal, position mgl64.Vec3, removed *List) error {
	if removed == l {
		return fmt.Errorf("crop target and removed list are the same: %w", volume.ErrInvalidParam)
	}
	l.cropByPlane(normal, normal.Dot(position), true, nil, removed)
	return nil
}

func (l *List) cropByPlane(normal mgl64.Vec3, dot float64, crop bool, cutFace *volume.Face, removed *List) {
	count := len(l.volumes)
	for i := 0; i < count; i++ {
		switch l.Classify(l.volumes[i], normal, dot) {
		case SideFront:

		case SideBack:
			if crop {
				if removed != nil {
					removed.volumes = append(removed.volumes, l.volumes[i])
				}
				l.removeAt(i)
				i--
				count--
			}

		case SideSpanning:
			if !crop || removed == nil {
				if l.splitVolume(i, normal, dot, crop, cutFace) == splitNone {
					i--
					count--
				}
				continue
			}

			// Build the back part too, then hand it over to removed
			switch l.splitVolume(i, normal, dot, false, cutFace) {
			case splitFrontBack:
				last := len(l.volumes) - 1
				removed.volumes = append(removed.volumes, l.volumes[last])
				l.removeAt(last)
			case splitBack:
				removed.volumes = append(removed.volumes, l.volumes[i])
				l.removeAt(i)
				i--
				count--
			case splitNone:
				i--
				count--
			}
		}
	}
}

// SplitByFace splits the volumes by the plane of a face of cutter. The plane
// goes through the first vertex of the face.
//
// A volume is split only when the plane crosses it and the face touches it:
// if all the face vertices lie on or outside one of the volume face planes,
// the volume is left untouched. Unlike SplitByPlane, a volume crossed by the
// face plane but out of reach of the face itself is therefore not split.
// Both parts are kept. The closing faces take the marker of the cutting face.
func (l *List) SplitByFace(cutter *volume.Volume, faceIndex int) error {
	if cutter == nil {
		return fmt.Errorf("nil cutting volume: %w", volume.ErrInvalidParam)
	}
	face, err := cutter.FaceAt(faceIndex)
	if err != nil {
		return err
	}
	if face.VertexCount() == 0 {
		return fmt.Errorf("cutting face %d has no vertex: %w", faceIndex, volume.ErrInvalidParam)
	}

	points, err := facePoints(cutter, face)
	if err != nil {
		return err
	}
	normal := face.Normal()
	dot := normal.Dot(points[0])

	count := len(l.volumes)
	for i := 0; i < count; i++ {
		v := l.volumes[i]
		if l.Classify(v, normal, dot) != SideSpanning {
			continue
		}
		if l.separates(v, points) {
			continue
		}

		if l.splitVolume(i, normal, dot, false, face) == splitNone {
			i--
			count--
		}
	}

	return nil
}

// SplitByVolume removes from every volume the region inside cutter.
//
// Volumes out of reach of cutter are kept, volumes inside it are removed.
// The others are cut by the face planes of cutter, in face order: each cut
// keeps the outside part in the list and carries on with the inside part,
// which is dropped once every face has been applied. The closing faces take
// the marker of the cutting face that produced them.
func (l *List) SplitByVolume(cutter *volume.Volume) error {
	if cutter == nil {
		return fmt.Errorf("nil cutting volume: %w", volume.ErrInvalidParam)
	}

	count := len(l.volumes)
	for i := 0; i < count; i++ {
		switch l.testVolume(l.volumes[i], cutter) {
		case testKeep:

		case testRemove:
			l.removeAt(i)
			i--
			count--

		case testSplit:
			if l.carve(i, cutter) {
				i--
				count--
			}
		}
	}

	return nil
}

// IntersectVolume keeps only the region of every volume inside cutter.
// The closing faces take the marker of the cutting face that produced them.
func (l *List) IntersectVolume(cutter *volume.Volume) error {
	if cutter == nil {
		return fmt.Errorf("nil cutting volume: %w", volume.ErrInvalidParam)
	}

	vertices := cutter.Vertices()
	for _, face := range cutter.Faces() {
		if face.VertexCount() == 0 {
			continue
		}
		// Inside is behind the face, keep it as the front of the inverted plane
		normal := face.Normal().Mul(-1)
		dot := normal.Dot(vertices[face.Vertices()[0]])
		l.cropByPlane(normal, dot, true, face, nil)
	}

	return nil
}

// testVolume decides what SplitByVolume does with v.
func (l *List) testVolume(v *volume.Volume, cutter *volume.Volume) volumeTest {
	cutterVertices := cutter.Vertices()
	targetVertices := v.Vertices()
	threshold := l.threshold()

	inside := true
	for _, face := range cutter.Faces() {
		if face.VertexCount() == 0 {
			continue
		}
		normal := face.Normal()
		dot := normal.Dot(cutterVertices[face.Vertices()[0]])

		front, back := l.sides(targetVertices, normal, dot)
		if front && !back {
			return testKeep
		}
		if front {
			inside = false
		}
	}
	if inside {
		return testRemove
	}

	// A face of v may separate it from cutter even when no face of cutter does
	for _, face := range v.Faces() {
		if face.VertexCount() == 0 {
			continue
		}
		normal := face.Normal()
		dot := normal.Dot(targetVertices[face.Vertices()[0]])

		separated := true
		for _, p := range cutterVertices {
			if normal.Dot(p)-dot < -threshold {
				separated = false
				break
			}
		}
		if separated {
			return testKeep
		}
	}

	return testSplit
}

// carve cuts the volume at index by the face planes of cutter and drops the
// part inside cutter. It reports whether the volume at index was removed,
// which shifts the following volumes down.
func (l *List) carve(index int, cutter *volume.Volume) bool {
	vertices := cutter.Vertices()
	current := index

	for _, face := range cutter.Faces() {
		if face.VertexCount() == 0 {
			continue
		}
		normal := face.Normal()
		dot := normal.Dot(vertices[face.Vertices()[0]])

		switch l.Classify(l.volumes[current], normal, dot) {
		case SideFront:
			// The remaining fragment is outside cutter
			return false
		case SideBack:
			continue
		}

		switch l.splitVolume(current, normal, dot, false, face) {
		case splitFrontBack:
			current = len(l.volumes) - 1
		case splitFront:
			return false
		case splitNone:
			return current == index
		}
	}

	l.removeAt(current)
	return current == index
}

// separates reports whether a face plane of v leaves every point on or
// outside of it.
func (l *List) separates(v *volume.Volume, points []mgl64.Vec3) bool {
	threshold := l.threshold()
	vertices := v.Vertices()

	for _, face := range v.Faces() {
		if face.VertexCount() == 0 {
			continue
		}
		normal := face.Normal()
		dot := normal.Dot(vertices[face.Vertices()[0]])

		separated := true
		for _, p := range points {
			if normal.Dot(p)-dot < -threshold {
				separated = false
				break
			}
		}
		if separated {
			return true
		}
	}

	return false
}

// splitVolume replaces the volume at index by its parts on each side of the
// plane. The front part takes the index, the back part is appended. With
// crop set the back part is not built.
//
// Algorithm:
//  1. Walk the edges of every face. Front vertices go to the front part,
//     the others to the back part.
//  2. An edge whose endpoints are on different sides adds its intersection
//     with the plane to both parts and to both closing faces.
//  3. Faces of each part keep the normal and marker of their source face.
//  4. Closing faces are sorted and added unless they are too small.
func (l *List) splitVolume(index int, normal mgl64.Vec3, dot float64, crop bool, cutFace *volume.Face) splitResult {
	source := l.volumes[index]
	threshold := l.threshold()
	vertices := source.Vertices()

	closed := source.FaceCount() >= volume.MinClosedFaceCount
	front := newPart(normal.Mul(-1), cutFace, closed)
	var back *part
	if !crop {
		back = newPart(normal, cutFace, closed)
	}

	for _, face := range source.Faces() {
		indices := face.Vertices()
		count := len(indices)
		if count == 0 {
			continue
		}

		front.beginFace(face)
		if back != nil {
			back.beginFace(face)
		}

		for i, index := range indices {
			p := vertices[index]
			next := vertices[indices[(i+1)%count]]
			pDistance := normal.Dot(p) - dot
			nextDistance := normal.Dot(next) - dot
			pFront := pDistance > threshold
			nextFront := nextDistance > threshold

			if pFront {
				front.addVertex(p)
			} else if back != nil {
				back.addVertex(p)
			}

			if pFront != nextFront {
				var cut mgl64.Vec3
				if pFront {
					cut = intersect(p, pDistance, next, nextDistance, threshold)
				} else {
					cut = intersect(next, nextDistance, p, pDistance, threshold)
				}

				front.addCutVertex(cut)
				if back != nil {
					back.addCutVertex(cut)
				}
			}
		}

		front.endFace()
		if back != nil {
			back.endFace()
		}
	}

	frontVolume := front.finish()
	var backVolume *volume.Volume
	if back != nil {
		backVolume = back.finish()
	}

	switch {
	case frontVolume != nil && backVolume != nil:
		l.replaceAt(index, frontVolume)
		l.volumes = append(l.volumes, backVolume)
		return splitFrontBack
	case frontVolume != nil:
		l.replaceAt(index, frontVolume)
		return splitFront
	case backVolume != nil:
		l.replaceAt(index, backVolume)
		return splitBack
	default:
		l.removeAt(index)
		return splitNone
	}
}

// intersect returns the point where the edge from front to other crosses the
// plane. front must lie in front of the plane. The edge is always walked from
// its front endpoint so that two faces sharing it get the same point; an
// endpoint on the plane is returned as is.
func intersect(front mgl64.Vec3, frontDistance float64, other mgl64.Vec3, otherDistance float64, threshold float64) mgl64.Vec3 {
	if math.Abs(otherDistance) <= threshold {
		return other
	}

	lambda := frontDistance / (frontDistance - otherDistance)
	return front.Add(other.Sub(front).Mul(lambda))
}

// facePoints resolves the vertex positions of a face.
func facePoints(v *volume.Volume, face *volume.Face) ([]mgl64.Vec3, error) {
	points := make([]mgl64.Vec3, face.VertexCount())
	for i, index := range face.Vertices() {
		p, err := v.VertexAt(index)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}

// part accumulates one side of a volume being split.
type part struct {
	volume  *volume.Volume
	face    *volume.Face
	cutFace *volume.Face
	// closed is set when the source volume is a closed polyhedron, flat
	// volumes have no cut face to lose
	closed bool
}

func newPart(cutNormal mgl64.Vec3, template *volume.Face, closed bool) *part {
	cutFace := volume.NewFace(cutNormal)
	if template != nil {
		cutFace.SetMarker(template.Marker())
	}

	return &part{
		volume:  volume.New(),
		cutFace: cutFace,
		closed:  closed,
	}
}

func (p *part) beginFace(source *volume.Face) {
	p.face = volume.NewFace(source.Normal())
	p.face.SetMarker(source.Marker())
}

// addVertex adds point to the current face, sharing the vertex with other
// faces of the part.
func (p *part) addVertex(point mgl64.Vec3) int {
	index := p.volume.AddVertexUnique(point)
	if !p.face.HasVertex(index) {
		// Indices returned by the volume are never negative
		_ = p.face.AddVertex(index)
	}
	return index
}

func (p *part) addCutVertex(point mgl64.Vec3) {
	index := p.addVertex(point)
	if !p.cutFace.HasVertex(index) {
		_ = p.cutFace.AddVertex(index)
	}
}

func (p *part) endFace() {
	if p.face.VertexCount() >= 3 {
		_ = p.volume.AddFace(p.face)
	}
	p.face = nil
}

// finish closes the part and returns it, or nil if nothing closed is left.
//
// When the cut face of a closed volume is too small to keep, the part is only
// kept if its other faces still close it on the cut side: it needs at least
// MinClosedFaceCount faces, one of them facing the same way as the dropped
// cut face. Otherwise the part is a sliver at a sharp corner of the source
// volume and its face planes would enclose an unbounded region.
func (p *part) finish() *volume.Volume {
	if p.cutFace.IsTooSmall(p.volume) {
		if p.cutFace.VertexCount() > 0 {
			slog.Debug("clip: dropping degenerate cut face", "vertices", p.cutFace.VertexCount(), "area", p.cutFace.Area(p.volume))
		}
		if p.closed && p.volume.FaceCount() > 0 && !p.closedWithoutCut() {
			slog.Debug("clip: dropping open sliver", "faces", p.volume.FaceCount(), "vertices", p.volume.VertexCount())
			return nil
		}
	} else {
		p.cutFace.SortVertices(p.volume)
		_ = p.volume.AddFace(p.cutFace)
	}

	if p.volume.FaceCount() == 0 {
		return nil
	}
	return p.volume
}

// closedWithoutCut reports whether the faces of the part bound it in the
// direction of its cut face.
func (p *part) closedWithoutCut() bool {
	if p.volume.FaceCount() < volume.MinClosedFaceCount {
		return false
	}

	capNormal := p.cutFace.Normal()
	for _, face := range p.volume.Faces() {
		if face.Normal().Dot(capNormal) > 0 {
			return true
		}
	}
	return false
}
