// Package convex carves convex blockers out of convex spaces.
//
// A World holds spaces and blockers. Each update places the blockers in world
// space, finds the ones overlapping every space and removes them from it,
// leaving the free region of each space in Space.Result.
package convex

import (
	"errors"
	"log/slog"
)

const DEFAULT_WORKERS = 1

type World struct {
	Spaces   []*Space
	Blockers []*Blocker
	// Optional broad phase, every blocker is tested against every space
	// when nil
	SpatialGrid *SpatialGrid
	Workers     int

	Events Events
}

// AddSpace adds a space to the world
func (w *World) AddSpace(space *Space) {
	w.Spaces = append(w.Spaces, space)
}

// RemoveSpace removes a space from the world
func (w *World) RemoveSpace(space *Space) {
	k := -1
	for i, s := range w.Spaces {
		if s == space {
			k = i
			break
		}
	}

	if k != -1 {
		w.Spaces = append(w.Spaces[:k], w.Spaces[k+1:]...)
	}

	w.Events.forgetSpace(space)
}

// AddBlocker adds a blocker to the world
func (w *World) AddBlocker(blocker *Blocker) {
	w.Blockers = append(w.Blockers, blocker)
}

// RemoveBlocker removes a blocker from the world
func (w *World) RemoveBlocker(blocker *Blocker) {
	k := -1
	for i, b := range w.Blockers {
		if b == blocker {
			k = i
			break
		}
	}

	if k != -1 {
		w.Blockers = append(w.Blockers[:k], w.Blockers[k+1:]...)
	}

	w.Events.forgetBlocker(blocker)
}

// Update recomputes the free region of every space.
func (w *World) Update() error {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	// Phase 1: place the blockers in world space
	enabled := w.enabledBlockers()
	task(w.Workers, enabled, func(blocker *Blocker) {
		blocker.update()
	})

	// Phase 2: broad phase
	w.fillGrid(enabled)

	// Phase 3: carve every space
	task(w.Workers, w.Spaces, func(space *Space) {
		space.err = space.update(w.candidates(space, enabled))
	})

	// Phase 4: events, in space order
	var errs []error
	for _, space := range w.Spaces {
		if space.err != nil {
			errs = append(errs, space.err)
			continue
		}
		w.Events.recordHits(space, space.hits)
	}
	w.Events.processBlockedEvents(w.Spaces)
	w.Events.flush()

	slog.Debug("convex: world updated", "spaces", len(w.Spaces), "blockers", len(enabled), "errors", len(errs))
	return errors.Join(errs...)
}

// enabledBlockers returns the enabled blockers with a shape, in insertion
// order.
func (w *World) enabledBlockers() []*Blocker {
	enabled := make([]*Blocker, 0, len(w.Blockers))
	for _, b := range w.Blockers {
		if b != nil && b.Enabled && b.Shape != nil {
			enabled = append(enabled, b)
		}
	}
	return enabled
}

func (w *World) fillGrid(blockers []*Blocker) {
	if w.SpatialGrid == nil {
		return
	}

	w.SpatialGrid.Clear()
	for i, b := range blockers {
		w.SpatialGrid.Insert(i, b.aabb)
	}
	w.SpatialGrid.SortCells()
}

// candidates returns the blockers allowed to carve the space whose bounds
// overlap it, in insertion order.
func (w *World) candidates(space *Space, blockers []*Blocker) []*Blocker {
	if space.Bounds == nil {
		return nil
	}
	box := space.Bounds.AABB()

	result := make([]*Blocker, 0, len(blockers))
	if w.SpatialGrid != nil {
		for _, i := range w.SpatialGrid.Query(box, blockers) {
			if space.blockedBy(blockers[i]) {
				result = append(result, blockers[i])
			}
		}
		return result
	}

	for _, b := range blockers {
		if space.blockedBy(b) && b.aabb.Overlaps(box) {
			result = append(result, b)
		}
	}
	return result
}
