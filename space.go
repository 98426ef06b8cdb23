package convex

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/akmonengine/convex/clip"
	"github.com/akmonengine/convex/volume"
)

// Space is a region of world space, given as convex volumes, from which the
// overlapping blockers are carved.
type Space struct {
	Id any
	// Bounds in world space, left untouched by updates
	Bounds *clip.List
	// Result holds the part of Bounds left free by the blockers
	Result *clip.List
	// Only blockers on the same layer with at least this priority are
	// carved out
	Layer            int
	BlockingPriority int

	hits []*Blocker
	err  error
}

// NewSpace creates a space over bounds
func NewSpace(bounds *clip.List) *Space {
	s := &Space{Bounds: bounds, Result: clip.New()}
	if bounds != nil {
		s.Result = bounds.Clone()
	}
	return s
}

// IsBlocked reports whether nothing is left of the space.
func (s *Space) IsBlocked() bool {
	return s.Result != nil && s.Result.VolumeCount() == 0
}

// Hits returns the blockers that carved the space in the last update.
func (s *Space) Hits() []*Blocker {
	return s.hits
}

// blockedBy reports whether b may carve the space: same layer, and a
// priority at least equal to BlockingPriority.
func (s *Space) blockedBy(b *Blocker) bool {
	return b.Layer == s.Layer && b.Priority >= s.BlockingPriority
}

// update rebuilds Result from Bounds and the blockers, applied in the given
// order. Blockers that leave the space untouched are not reported as hits.
func (s *Space) update(blockers []*Blocker) error {
	s.hits = s.hits[:0]
	if s.Bounds == nil {
		return fmt.Errorf("space %v has no bounds: %w", s.Id, volume.ErrInvalidParam)
	}

	result := s.Bounds.Clone()
	for _, b := range blockers {
		carved := false
		for _, cutter := range b.world.Volumes() {
			if result.VolumeCount() == 0 {
				break
			}

			before := slices.Clone(result.Volumes())
			if err := result.SplitByVolume(cutter); err != nil {
				return fmt.Errorf("space %v, blocker %v: %w", s.Id, b.Id, err)
			}
			if !slices.Equal(before, result.Volumes()) {
				carved = true
			}
		}
		if carved {
			s.hits = append(s.hits, b)
		}
	}

	slog.Debug("convex: space updated", "space", s.Id, "candidates", len(blockers), "hits", len(s.hits), "volumes", result.VolumeCount())
	s.Result = result
	return nil
}
