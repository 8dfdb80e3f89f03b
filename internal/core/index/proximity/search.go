package proximity

import (
	"fmt"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
)

// FindByID runs a breadth-first search from the anchor and returns the first
// node carrying id together with the anchor that seeded the search. Nodes
// outside the anchor's component are not reachable this way.
func (g *Graph) FindByID(id models.DroneID) (*Node, *Node, error) {
	anchor := g.Anchor()
	if anchor == nil {
		return nil, nil, fmt.Errorf("proximity: find drone %d: %w", id, index.ErrStructureEmpty)
	}
	n, err := g.FindByIDFrom(id, anchor)
	return n, anchor, err
}

// FindByIDFrom is FindByID seeded from an explicit member node.
func (g *Graph) FindByIDFrom(id models.DroneID, start *Node) (*Node, error) {
	if len(g.order) == 0 {
		return nil, fmt.Errorf("proximity: find drone %d: %w", id, index.ErrStructureEmpty)
	}
	if !g.ContainsNode(start) {
		return nil, ErrForeignNode
	}

	visited := map[Handle]struct{}{start.handle: {}}
	queue := []*Node{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.drone.ID() == id {
			return current, nil
		}
		for _, nb := range current.Neighbors() {
			if _, seen := visited[nb.handle]; seen {
				continue
			}
			visited[nb.handle] = struct{}{}
			queue = append(queue, nb)
		}
	}
	return nil, fmt.Errorf("proximity: drone %d unreachable from %d: %w", id, start.drone.ID(), index.ErrNotFound)
}

// Reachable returns every node in start's connected component in BFS order.
func (g *Graph) Reachable(start *Node) []*Node {
	if !g.ContainsNode(start) {
		return nil
	}
	visited := map[Handle]struct{}{start.handle: {}}
	out := []*Node{start}
	for i := 0; i < len(out); i++ {
		for _, nb := range out[i].Neighbors() {
			if _, seen := visited[nb.handle]; !seen {
				visited[nb.handle] = struct{}{}
				out = append(out, nb)
			}
		}
	}
	return out
}
