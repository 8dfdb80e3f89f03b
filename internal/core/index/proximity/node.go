package proximity

import (
	"sort"

	"github.com/zeusync/flocknet/internal/core/models"
)

// Handle identifies a node within its graph. Handles grow with insertion
// order and are never reused by the same graph.
type Handle uint64

// Node wraps a drone reference and its current neighbour set.
type Node struct {
	handle    Handle
	drone     *models.Drone
	neighbors map[Handle]*Node
}

func newNode(h Handle, d *models.Drone) *Node {
	return &Node{
		handle:    h,
		drone:     d,
		neighbors: make(map[Handle]*Node),
	}
}

func (n *Node) Handle() Handle { return n.handle }

func (n *Node) Drone() *models.Drone { return n.drone }

func (n *Node) Degree() int { return len(n.neighbors) }

func (n *Node) HasNeighbor(o *Node) bool {
	if o == nil {
		return false
	}
	got, ok := n.neighbors[o.handle]
	return ok && got == o
}

// Neighbors returns the neighbour set ordered by handle.
func (n *Node) Neighbors() []*Node {
	out := make([]*Node, 0, len(n.neighbors))
	for _, nb := range n.neighbors {
		out = append(out, nb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].handle < out[j].handle })
	return out
}

func link(a, b *Node) {
	a.neighbors[b.handle] = b
	b.neighbors[a.handle] = a
}

func unlink(a, b *Node) {
	delete(a.neighbors, b.handle)
	delete(b.neighbors, a.handle)
}

func (n *Node) clearNeighbors() {
	clear(n.neighbors)
}
