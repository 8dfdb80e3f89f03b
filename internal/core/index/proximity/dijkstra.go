package proximity

import (
	"fmt"
	"math"
	"slices"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/pkg/sequence"
)

// Path is an ordered node sequence from a start node to an end node.
type Path struct {
	Nodes []*Node
	Cost  float64
}

func (p Path) Len() int { return len(p.Nodes) }

func (p Path) Drones() []*models.Drone {
	out := make([]*models.Drone, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.drone
	}
	return out
}

// ShortestPath runs Dijkstra's algorithm between two members of this graph,
// weighting each edge by the Euclidean distance between its drones.
//
// Errors: ErrStructureEmpty for an empty graph, ErrForeignNode when either
// endpoint is not a member, ErrColourMismatch when the endpoints currently
// have different colours, ErrNoPath when end is unreachable from start.
func (g *Graph) ShortestPath(start, end *Node) (Path, error) {
	if len(g.order) == 0 {
		return Path{}, fmt.Errorf("proximity: shortest path: %w", index.ErrStructureEmpty)
	}
	if !g.ContainsNode(start) || !g.ContainsNode(end) {
		return Path{}, ErrForeignNode
	}
	if start.drone.Colour() != end.drone.Colour() {
		return Path{}, ErrColourMismatch
	}

	dist := make(map[Handle]float64, len(g.order))
	prev := make(map[Handle]*Node, len(g.order))
	visited := make(map[Handle]bool, len(g.order))
	for _, n := range g.order {
		dist[n.handle] = math.Inf(1)
	}
	dist[start.handle] = 0

	pq := sequence.NewPriorityQueue[*Node]()
	pq.Enqueue(start, 0)

	for !pq.IsEmpty() {
		current, err := pq.Dequeue()
		if err != nil {
			return Path{}, fmt.Errorf("proximity: shortest path: %w", err)
		}
		if visited[current.handle] {
			// stale entry left behind by a later improvement
			continue
		}
		if current == end {
			return Path{Nodes: g.walkBack(prev, start, end), Cost: dist[end.handle]}, nil
		}
		visited[current.handle] = true

		for _, nb := range current.Neighbors() {
			if visited[nb.handle] {
				continue
			}
			candidate := dist[current.handle] + g.distance(current, nb)
			if candidate < dist[nb.handle] {
				dist[nb.handle] = candidate
				prev[nb.handle] = current
				pq.Enqueue(nb, candidate)
			}
		}
	}
	return Path{}, fmt.Errorf("drone %d to %d: %w", start.drone.ID(), end.drone.ID(), ErrNoPath)
}

func (g *Graph) walkBack(prev map[Handle]*Node, start, end *Node) []*Node {
	path := []*Node{end}
	for current := end; current != start; {
		current = prev[current.handle]
		path = append(path, current)
	}
	slices.Reverse(path)
	return path
}
