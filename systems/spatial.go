package systems

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ranger/components"
	"github.com/pthm-cable/ranger/geom"
)

// gridEntry is an indexed entity with its spawn ordinal.
type gridEntry struct {
	e     ecs.Entity
	order int
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid over a
// bounded field.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]gridEntry // flat grid of entity lists
}

// NewSpatialGrid creates a spatial grid covering the given field size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 100
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]gridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, pos geom.Vector2, order int) {
	col, row := g.cell(pos)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], gridEntry{e: e, order: order})
}

// QueryRadius returns entities within radius of pos (inclusive), ordered by
// spawn ordinal so results never depend on cell layout.
func (g *SpatialGrid) QueryRadius(pos geom.Vector2, radius float64, posMap *ecs.Map1[components.Position]) []ecs.Entity {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cell(pos)

	var found []gridEntry
	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, entry := range g.cells[row*g.cols+col] {
				p := posMap.Get(entry.e)
				if p == nil {
					continue
				}
				if p.DistanceTo(pos) <= radius {
					found = append(found, entry)
				}
			}
		}
	}

	slices.SortFunc(found, func(a, b gridEntry) int {
		return a.order - b.order
	})

	result := make([]ecs.Entity, len(found))
	for i, entry := range found {
		result[i] = entry.e
	}
	return result
}

// cell returns the clamped column and row for a position.
func (g *SpatialGrid) cell(pos geom.Vector2) (int, int) {
	col := int(pos.X / g.cellSize)
	row := int(pos.Y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
