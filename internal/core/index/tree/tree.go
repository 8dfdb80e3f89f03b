// Package tree implements the per-colour binary search tree of drones keyed by
// identifier. The tree is not balanced.
package tree

import (
	"fmt"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
)

type node struct {
	drone       *models.Drone
	left, right *node
}

// Tree orders drones by ascending id: left subtrees hold strictly smaller ids,
// right subtrees hold greater or equal ids. The zero value is an empty tree.
// It is not safe for concurrent use.
type Tree struct {
	root *node
	size int
}

func New() *Tree { return &Tree{} }

// Insert attaches d at the first empty slot found by iterative descent.
func (t *Tree) Insert(d *models.Drone) {
	n := &node{drone: d}
	t.size++
	if t.root == nil {
		t.root = n
		return
	}

	var parent *node
	for current := t.root; current != nil; {
		parent = current
		if d.ID() < current.drone.ID() {
			current = current.left
		} else {
			current = current.right
		}
	}
	if d.ID() < parent.drone.ID() {
		parent.left = n
	} else {
		parent.right = n
	}
}

// FindByID returns the drone with the given id in O(height).
func (t *Tree) FindByID(id models.DroneID) (*models.Drone, error) {
	for current := t.root; current != nil; {
		switch cid := current.drone.ID(); {
		case id == cid:
			return current.drone, nil
		case id < cid:
			current = current.left
		default:
			current = current.right
		}
	}
	return nil, fmt.Errorf("tree: drone %d: %w", id, index.ErrNotFound)
}

// Delete removes the node carrying id and reports whether one was found.
//
// A node with two children takes over the drone of its in-order successor
// (the leftmost node of its right subtree) and the successor node, which has
// no left child, is spliced out instead.
func (t *Tree) Delete(id models.DroneID) bool {
	var parent *node
	current := t.root
	for current != nil && current.drone.ID() != id {
		parent = current
		if id < current.drone.ID() {
			current = current.left
		} else {
			current = current.right
		}
	}
	if current == nil {
		return false
	}

	if current.left != nil && current.right != nil {
		successorParent := current
		successor := current.right
		for successor.left != nil {
			successorParent = successor
			successor = successor.left
		}
		current.drone = successor.drone
		if successorParent.left == successor {
			successorParent.left = successor.right
		} else {
			successorParent.right = successor.right
		}
		t.size--
		return true
	}

	// zero or one child
	child := current.left
	if child == nil {
		child = current.right
	}
	switch {
	case parent == nil:
		t.root = child
	case parent.left == current:
		parent.left = child
	default:
		parent.right = child
	}
	t.size--
	return true
}

func (t *Tree) Len() int { return t.size }

// Height is the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	var height func(n *node) int
	height = func(n *node) int {
		if n == nil {
			return 0
		}
		return 1 + max(height(n.left), height(n.right))
	}
	return height(t.root)
}

// Min returns the drone with the smallest id, or nil for an empty tree.
func (t *Tree) Min() *models.Drone {
	if t.root == nil {
		return nil
	}
	current := t.root
	for current.left != nil {
		current = current.left
	}
	return current.drone
}

// InOrder returns the drones sorted by id.
func (t *Tree) InOrder() []*models.Drone {
	out := make([]*models.Drone, 0, t.size)
	var stack []*node
	current := t.root
	for current != nil || len(stack) > 0 {
		for current != nil {
			stack = append(stack, current)
			current = current.left
		}
		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, current.drone)
		current = current.right
	}
	return out
}
