package physics

import "math"

type cellKey struct{ cx, cy int }

// Grid is an unbounded uniform spatial hash for broad-phase radius queries.
// With a cell size equal to the query radius, every point within that radius
// of p lies in the 3x3 block of cells around p.
type Grid[T any] struct {
	cellSize float64
	cells    map[cellKey][]T
	count    int
}

// NewGrid creates a grid with the given cell size. Non-positive sizes fall
// back to 1.
func NewGrid[T any](cellSize float64) *Grid[T] {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		cellSize = 1
	}
	return &Grid[T]{
		cellSize: cellSize,
		cells:    make(map[cellKey][]T),
	}
}

func (g *Grid[T]) CellSize() float64 { return g.cellSize }

func (g *Grid[T]) key(p Vec2) cellKey {
	return cellKey{
		cx: int(math.Floor(p.Xv / g.cellSize)),
		cy: int(math.Floor(p.Yv / g.cellSize)),
	}
}

// Insert adds v at position p.
func (g *Grid[T]) Insert(p Vec2, v T) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], v)
	g.count++
}

// Clear resets all cells (keeps allocated capacity)
func (g *Grid[T]) Clear() {
	for k, c := range g.cells {
		g.cells[k] = c[:0]
	}
	g.count = 0
}

func (g *Grid[T]) Len() int { return g.count }

// Near calls fn for every item stored in the 3x3 cell block around p until
// fn returns false. Candidates are not distance filtered.
func (g *Grid[T]) Near(p Vec2, fn func(T) bool) {
	k := g.key(p)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, v := range g.cells[cellKey{k.cx + dx, k.cy + dy}] {
				if !fn(v) {
					return
				}
			}
		}
	}
}

// Within calls fn for every item of g whose position lies within radius of p,
// until fn returns false. radius should not exceed the cell size.
func Within[T Positioned](g *Grid[T], p Vec2, radius float64, fn func(T) bool) {
	g.Near(p, func(v T) bool {
		if p.DistanceTo(v.Position()) > radius {
			return true
		}
		return fn(v)
	})
}
