// Package list implements the per-colour singly linked drone chain.
package list

import (
	"fmt"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
)

type node struct {
	drone *models.Drone
	next  *node
}

// List is a singly linked chain of drones. The zero value is an empty list.
// It is not safe for concurrent use.
type List struct {
	head *node
	size int
}

func New() *List { return &List{} }

// Append links d at the tail. Appending the same drone twice chains it twice.
func (l *List) Append(d *models.Drone) {
	n := &node{drone: d}
	l.size++
	if l.head == nil {
		l.head = n
		return
	}
	current := l.head
	for current.next != nil {
		current = current.next
	}
	current.next = n
}

// FindByID returns the first chained drone carrying id.
func (l *List) FindByID(id models.DroneID) (*models.Drone, error) {
	for current := l.head; current != nil; current = current.next {
		if current.drone.ID() == id {
			return current.drone, nil
		}
	}
	return nil, fmt.Errorf("list: drone %d: %w", id, index.ErrNotFound)
}

// Remove unlinks the first node holding exactly d (pointer identity).
// It reports false when d is not chained.
func (l *List) Remove(d *models.Drone) bool {
	if l.head == nil || d == nil {
		return false
	}
	if l.head.drone == d {
		l.head = l.head.next
		l.size--
		return true
	}
	for current := l.head; current.next != nil; current = current.next {
		if current.next.drone == d {
			current.next = current.next.next
			l.size--
			return true
		}
	}
	return false
}

// Contains reports whether d is chained at least once.
func (l *List) Contains(d *models.Drone) bool {
	for current := l.head; current != nil; current = current.next {
		if current.drone == d {
			return true
		}
	}
	return false
}

// Head returns the first chained drone, or nil.
func (l *List) Head() *models.Drone {
	if l.head == nil {
		return nil
	}
	return l.head.drone
}

func (l *List) Len() int { return l.size }

// Each walks the chain head to tail until fn returns false.
func (l *List) Each(fn func(*models.Drone) bool) {
	for current := l.head; current != nil; current = current.next {
		if !fn(current.drone) {
			return
		}
	}
}

// Drones returns a head-to-tail snapshot of the chain.
func (l *List) Drones() []*models.Drone {
	out := make([]*models.Drone, 0, l.size)
	l.Each(func(d *models.Drone) bool {
		out = append(out, d)
		return true
	})
	return out
}
