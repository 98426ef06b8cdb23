package convex

import (
	"math"
	"sort"

	"github.com/akmonengine/convex/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - Coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - Indices of the blockers overlapping a cell
type Cell struct {
	blockerIndices []int
}

// SpatialGrid - Uniform hashed grid used to find the blockers near a space
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - Creates a grid of numCells hashed cells, rounded up to a
// power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].blockerIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - Rounds up to the next power of two
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert - Adds a blocker index to every cell covered by box. Empty boxes are
// ignored.
func (sg *SpatialGrid) Insert(blockerIndex int, box volume.AABB) {
	if box.IsEmpty() {
		return
	}

	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				sg.cells[cellIdx].blockerIndices = append(
					sg.cells[cellIdx].blockerIndices,
					blockerIndex,
				)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].blockerIndices = sg.cells[i].blockerIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].blockerIndices) > 1 {
			sort.Ints(sg.cells[i].blockerIndices)
		}
	}
}

// Query - Returns, in increasing order, the indices of the blockers whose
// bounds overlap box. The grid is only read, so queries may run concurrently.
func (sg *SpatialGrid) Query(box volume.AABB, blockers []*Blocker) []int {
	if box.IsEmpty() {
		return nil
	}

	seen := make([]bool, len(blockers))
	indices := make([]int, 0, 8)

	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				for _, blockerIdx := range sg.cells[cellIdx].blockerIndices {
					// Hash collisions and large blockers show up in several cells
					if blockerIdx >= len(blockers) || seen[blockerIdx] {
						continue
					}
					seen[blockerIdx] = true

					if blockers[blockerIdx].aabb.Overlaps(box) {
						indices = append(indices, blockerIdx)
					}
				}
			}
		}
	}

	sort.Ints(indices)
	return indices
}

// worldToCell - Converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - Hashes a cell to an index in the cell array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
