// Package proximity implements the per-colour proximity graph: drones are
// nodes and an undirected edge joins two same-colour drones whose positions
// are within the neighbour radius. Edges are rebuilt wholesale by
// RefreshProximity rather than maintained incrementally.
//
// The anchor of a graph is the earliest inserted node still present. It seeds
// FindByID, which therefore only reaches the anchor's connected component.
package proximity

import (
	"fmt"
	"slices"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/systems/physics"
)

type Option func(*Graph)

// WithSpatialIndex makes RefreshProximity bucket nodes into a uniform grid
// with cell size equal to the radius and only test pairs from adjacent cells.
// The resulting edge set is identical to the exhaustive rebuild.
func WithSpatialIndex() Option {
	return func(g *Graph) {
		g.grid = physics.NewGrid[*Node](g.radius)
	}
}

// Graph is a proximity graph over the drones of one colour partition.
// It is not safe for concurrent use.
type Graph struct {
	radius   float64
	order    []*Node
	byHandle map[Handle]*Node
	next     Handle
	grid     *physics.Grid[*Node]
}

func New(radius float64, opts ...Option) *Graph {
	g := &Graph{
		radius:   radius,
		byHandle: make(map[Handle]*Node),
		next:     1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Graph) Radius() float64 { return g.radius }

func (g *Graph) Len() int { return len(g.order) }

// SpatialIndexed reports whether refreshes use the grid.
func (g *Graph) SpatialIndexed() bool { return g.grid != nil }

// Anchor returns the earliest inserted node still in the graph, or nil.
func (g *Graph) Anchor() *Node {
	if len(g.order) == 0 {
		return nil
	}
	return g.order[0]
}

// Node resolves a handle issued by this graph.
func (g *Graph) Node(h Handle) (*Node, bool) {
	n, ok := g.byHandle[h]
	return n, ok
}

// Nodes returns the members in insertion order.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.order)
}

func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.order {
		total += len(n.neighbors)
	}
	return total / 2
}

// Insert adds d and connects it to every existing same-colour node within the
// radius. It runs in O(n) against the current graph size.
func (g *Graph) Insert(d *models.Drone) *Node {
	n := newNode(g.next, d)
	g.next++
	for _, existing := range g.order {
		if g.adjacent(n, existing) {
			link(n, existing)
		}
	}
	g.order = append(g.order, n)
	g.byHandle[n.handle] = n
	return n
}

// ContainsNode reports whether n is a member of this graph instance.
func (g *Graph) ContainsNode(n *Node) bool {
	if n == nil {
		return false
	}
	got, ok := g.byHandle[n.handle]
	return ok && got == n
}

// Remove detaches n from all of its neighbours and drops it from the graph.
func (g *Graph) Remove(n *Node) error {
	if !g.ContainsNode(n) {
		return ErrForeignNode
	}
	i := slices.Index(g.order, n)
	if i < 0 {
		return fmt.Errorf("proximity: node %d indexed but not ordered: %w", n.handle, index.ErrInvalidOperation)
	}
	for _, nb := range n.neighbors {
		unlink(n, nb)
	}
	delete(g.byHandle, n.handle)
	g.order = slices.Delete(g.order, i, i+1)
	return nil
}

// RefreshProximity recomputes every neighbour set from the current drone
// positions and colours.
func (g *Graph) RefreshProximity() {
	for _, n := range g.order {
		n.clearNeighbors()
	}
	if g.grid != nil {
		g.refreshGrid()
		return
	}
	for i, a := range g.order {
		for _, b := range g.order[i+1:] {
			if g.adjacent(a, b) {
				link(a, b)
			}
		}
	}
}

func (g *Graph) refreshGrid() {
	g.grid.Clear()
	for _, n := range g.order {
		g.grid.Insert(n.drone.Position(), n)
	}
	for _, a := range g.order {
		g.grid.Near(a.drone.Position(), func(b *Node) bool {
			if b.handle > a.handle && g.adjacent(a, b) {
				link(a, b)
			}
			return true
		})
	}
}

func (g *Graph) adjacent(a, b *Node) bool {
	if a == b || a.drone.Colour() != b.drone.Colour() {
		return false
	}
	return g.distance(a, b) <= g.radius
}

func (g *Graph) distance(a, b *Node) float64 {
	return a.drone.Position().DistanceTo(b.drone.Position())
}
