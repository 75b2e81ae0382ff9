// Package spatial provides the broad-phase index used for projectile
// collision queries.
//
// The grid stores entity indices (not pointers) in preallocated per-cell
// slices so a rebuild every tick costs no allocations once warmed up.
package spatial

import (
	"math"
	"slices"
)

// Grid is a uniform grid over the world rectangle.
// Memory layout: cells are stored in row-major order (cells[row*cols+col]).
type Grid struct {
	cellSize    float64
	invCellSize float64 // 1/cellSize for faster division
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32 // reusable buffer for query results
}

// NewGrid creates a grid for the given world bounds.
// cellSize should be at least the largest query radius.
func NewGrid(worldWidth, worldHeight, cellSize float64, expectedEntities int) *Grid {
	if cellSize <= 0 {
		cellSize = 100
	}
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	perCell := expectedEntities / len(cells)
	if perCell < 4 {
		perCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, perCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without deallocating underlying memory
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds entity id at (x, y). Positions outside the world are clamped
// into the border cells.
func (g *Grid) Insert(id uint32, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], id)
}

func (g *Grid) clampCol(col int) int {
	return max(0, min(col, g.cols-1))
}

func (g *Grid) clampRow(row int) int {
	return max(0, min(row, g.rows-1))
}

func (g *Grid) cellIndex(x, y float64) int {
	col := g.clampCol(int(math.Floor(x * g.invCellSize)))
	row := g.clampRow(int(math.Floor(y * g.invCellSize)))
	return row*g.cols + col
}

// QueryRadius returns the ids of every entity whose cell intersects the
// square around (cx, cy), sorted ascending so callers iterate candidates in
// insertion-index order.
//
// The returned slice is reused on subsequent calls. Candidates may lie
// outside the radius; the caller performs the narrow-phase check.
func (g *Grid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol := g.clampCol(int(math.Floor((cx - radius) * g.invCellSize)))
	maxCol := g.clampCol(int(math.Floor((cx + radius) * g.invCellSize)))
	minRow := g.clampRow(int(math.Floor((cy - radius) * g.invCellSize)))
	maxRow := g.clampRow(int(math.Floor((cy + radius) * g.invCellSize)))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}

	slices.Sort(g.scratch)
	return g.scratch
}

// Count returns the number of indexed entities
func (g *Grid) Count() int {
	n := 0
	for _, cell := range g.cells {
		n += len(cell)
	}
	return n
}

// Dimensions returns the grid dimensions
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
