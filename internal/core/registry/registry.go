// Package registry routes drone operations to the per-colour list, tree and
// proximity graph indices and keeps the three consistent.
//
// A Registry is not safe for concurrent use.
package registry

import (
	"fmt"
	"math/rand/v2"

	"github.com/zeusync/flocknet/internal/core/events/bus"
	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/index/list"
	"github.com/zeusync/flocknet/internal/core/index/proximity"
	"github.com/zeusync/flocknet/internal/core/index/tree"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/observability/log"
)

type Config struct {
	NeighborRadius float64
	SpatialIndex   bool
}

// partition is the index trio for one colour.
type partition struct {
	colour      models.Colour
	list        *list.List
	tree        *tree.Tree
	graph       *proximity.Graph
	fingerprint uint64
}

// entry records where a drone is indexed.
type entry struct {
	drone  *models.Drone
	colour models.Colour
	handle proximity.Handle
}

type Registry struct {
	cfg        Config
	partitions map[models.Colour]*partition
	entries    map[models.DroneID]entry
	logger     log.Log
	events     bus.EventBus
}

// New builds an empty registry. events may be nil.
func New(cfg Config, logger log.Log, events bus.EventBus) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	r := &Registry{
		cfg:        cfg,
		partitions: make(map[models.Colour]*partition, 2),
		entries:    make(map[models.DroneID]entry),
		logger:     logger.With(log.String("component", "registry")),
		events:     events,
	}
	var opts []proximity.Option
	if cfg.SpatialIndex {
		opts = append(opts, proximity.WithSpatialIndex())
	}
	for _, c := range models.Colours() {
		p := &partition{
			colour: c,
			list:   list.New(),
			tree:   tree.New(),
			graph:  proximity.New(cfg.NeighborRadius, opts...),
		}
		p.fingerprint = p.graph.Fingerprint()
		r.partitions[c] = p
	}
	return r
}

// Insert indexes d in the list, tree and graph of its current colour.
func (r *Registry) Insert(d *models.Drone) error {
	if d == nil {
		return ErrNilDrone
	}
	p, ok := r.partitions[d.Colour()]
	if !ok {
		return fmt.Errorf("insert drone %d (%s): %w", d.ID(), d.Colour(), ErrUnknownColour)
	}
	if _, exists := r.entries[d.ID()]; exists {
		return fmt.Errorf("insert drone %d: %w", d.ID(), ErrDuplicate)
	}

	p.list.Append(d)
	p.tree.Insert(d)
	n := p.graph.Insert(d)
	r.entries[d.ID()] = entry{drone: d, colour: p.colour, handle: n.Handle()}

	r.publish(EventDroneInserted, DroneEvent{ID: d.ID(), Colour: p.colour, From: p.colour})
	return nil
}

// Remove drops the drone from every index of its partition. It succeeds iff
// the drone was removed from the list; tree and graph removal are attempted
// regardless and failures there are logged.
func (r *Registry) Remove(id models.DroneID) error {
	p, d, err := r.locate(id)
	if err != nil {
		return err
	}
	removed := p.list.Remove(d)
	r.detach(p, d)
	delete(r.entries, id)
	if !removed {
		return fmt.Errorf("remove drone %d: not chained in %s list: %w", id, p.colour, index.ErrNotFound)
	}

	r.publish(EventDroneRemoved, DroneEvent{ID: id, Colour: p.colour, From: p.colour})
	return nil
}

// detach removes d from the tree and graph of p, logging any inconsistency.
func (r *Registry) detach(p *partition, d *models.Drone) {
	if !p.tree.Delete(d.ID()) {
		r.logger.Warn("drone missing from tree",
			log.Int("drone_id", int(d.ID())),
			log.Stringer("colour", p.colour),
		)
	}

	e, ok := r.entries[d.ID()]
	if !ok {
		r.logger.Warn("drone has no graph handle", log.Int("drone_id", int(d.ID())))
		return
	}
	n, ok := p.graph.Node(e.handle)
	if !ok {
		r.logger.Warn("drone missing from graph",
			log.Int("drone_id", int(d.ID())),
			log.Uint64("handle", uint64(e.handle)),
		)
		return
	}
	if err := p.graph.Remove(n); err != nil {
		r.logger.Warn("graph remove failed", log.Int("drone_id", int(d.ID())), log.Error(err))
	}
}

// locate finds the partition whose list chains id.
func (r *Registry) locate(id models.DroneID) (*partition, *models.Drone, error) {
	if e, ok := r.entries[id]; ok {
		return r.partitions[e.colour], e.drone, nil
	}
	for _, c := range models.Colours() {
		p := r.partitions[c]
		if d, err := p.list.FindByID(id); err == nil {
			return p, d, nil
		}
	}
	return nil, nil, fmt.Errorf("drone %d: %w", id, index.ErrNotFound)
}

// FindByID looks id up in each colour's tree, falling back to the lists.
func (r *Registry) FindByID(id models.DroneID) (*models.Drone, error) {
	for _, c := range models.Colours() {
		if d, err := r.partitions[c].tree.FindByID(id); err == nil {
			return d, nil
		}
	}
	for _, c := range models.Colours() {
		if d, err := r.partitions[c].list.FindByID(id); err == nil {
			return d, nil
		}
	}
	return nil, fmt.Errorf("find drone %d: %w", id, index.ErrNotFound)
}

// RefreshProximity rebuilds every partition's graph edges from current
// positions and publishes EventTopologyChanged for partitions whose edge set
// moved.
func (r *Registry) RefreshProximity() {
	for _, c := range models.Colours() {
		p := r.partitions[c]
		p.graph.RefreshProximity()

		fp := p.graph.Fingerprint()
		if fp == p.fingerprint {
			continue
		}
		p.fingerprint = fp
		r.publish(EventTopologyChanged, TopologyEvent{
			Colour:      c,
			Nodes:       p.graph.Len(),
			Edges:       p.graph.EdgeCount(),
			Fingerprint: fp,
		})
	}
}

// ShortestPath returns the cheapest same-colour path from idA to idB and its
// total Euclidean length.
func (r *Registry) ShortestPath(idA, idB models.DroneID) ([]*models.Drone, float64, error) {
	a, ok := r.entries[idA]
	if !ok {
		return nil, 0, fmt.Errorf("shortest path: drone %d: %w", idA, index.ErrNotFound)
	}
	b, ok := r.entries[idB]
	if !ok {
		return nil, 0, fmt.Errorf("shortest path: drone %d: %w", idB, index.ErrNotFound)
	}
	if a.colour != b.colour {
		return nil, 0, fmt.Errorf("shortest path %d -> %d: %w", idA, idB, proximity.ErrColourMismatch)
	}

	g := r.partitions[a.colour].graph
	start, ok := g.Node(a.handle)
	if !ok {
		return nil, 0, fmt.Errorf("shortest path: drone %d: %w", idA, proximity.ErrForeignNode)
	}
	end, ok := g.Node(b.handle)
	if !ok {
		return nil, 0, fmt.Errorf("shortest path: drone %d: %w", idB, proximity.ErrForeignNode)
	}
	path, err := g.ShortestPath(start, end)
	if err != nil {
		return nil, 0, err
	}
	return path.Drones(), path.Cost, nil
}

// PathFromAnchor finds id by breadth-first search from the anchor of the
// given colour partition and returns the shortest path between them.
func (r *Registry) PathFromAnchor(colour models.Colour, id models.DroneID) ([]*models.Drone, float64, error) {
	p, ok := r.partitions[colour]
	if !ok {
		return nil, 0, fmt.Errorf("path from anchor (%s): %w", colour, ErrUnknownColour)
	}
	target, anchor, err := p.graph.FindByID(id)
	if err != nil {
		return nil, 0, err
	}
	path, err := p.graph.ShortestPath(anchor, target)
	if err != nil {
		return nil, 0, err
	}
	return path.Drones(), path.Cost, nil
}

// Repartition moves the drone into the partition of colour and updates its
// colour attribute. It is a no-op when the drone already lives there.
func (r *Registry) Repartition(id models.DroneID, colour models.Colour) error {
	to, ok := r.partitions[colour]
	if !ok {
		return fmt.Errorf("repartition drone %d (%s): %w", id, colour, ErrUnknownColour)
	}
	from, d, err := r.locate(id)
	if err != nil {
		return err
	}
	if from == to {
		d.SetColour(colour)
		return nil
	}

	if !from.list.Remove(d) {
		return fmt.Errorf("repartition drone %d: %w", id, index.ErrNotFound)
	}
	r.detach(from, d)

	d.SetColour(colour)
	to.list.Append(d)
	to.tree.Insert(d)
	n := to.graph.Insert(d)
	r.entries[id] = entry{drone: d, colour: colour, handle: n.Handle()}

	r.publish(EventDroneRepartitioned, DroneEvent{ID: id, Colour: colour, From: from.colour})
	return nil
}

// PartitionByCoolness moves drones whose coolness is above the truncated
// flock average to the blue partition and the rest to red. It returns how many drones
// changed partition.
func (r *Registry) PartitionByCoolness() int {
	if len(r.entries) == 0 {
		return 0
	}
	drones := r.Drones()
	total := 0
	for _, d := range drones {
		total += d.Coolness()
	}
	pivot := total / len(drones)

	moved := 0
	for _, d := range drones {
		want := models.ColourRed
		if d.Coolness() > pivot {
			want = models.ColourBlue
		}
		if r.entries[d.ID()].colour == want {
			continue
		}
		if err := r.Repartition(d.ID(), want); err != nil {
			r.logger.Warn("repartition failed", log.Int("drone_id", int(d.ID())), log.Error(err))
			continue
		}
		moved++
	}
	return moved
}

// RemoveRandom removes a uniformly chosen drone.
func (r *Registry) RemoveRandom(rng *rand.Rand) (models.DroneID, error) {
	drones := r.Drones()
	if len(drones) == 0 {
		return 0, fmt.Errorf("remove random: %w", index.ErrStructureEmpty)
	}
	d := drones[rng.IntN(len(drones))]
	if err := r.Remove(d.ID()); err != nil {
		return 0, err
	}
	return d.ID(), nil
}

// Len is the number of indexed drones across all partitions.
func (r *Registry) Len() int { return len(r.entries) }

// Each visits drones red partition first, each in list order, until fn
// returns false.
func (r *Registry) Each(fn func(*models.Drone) bool) {
	stop := false
	for _, c := range models.Colours() {
		r.partitions[c].list.Each(func(d *models.Drone) bool {
			if !fn(d) {
				stop = true
			}
			return !stop
		})
		if stop {
			return
		}
	}
}

// Drones returns a snapshot of every indexed drone in Each order.
func (r *Registry) Drones() []*models.Drone {
	out := make([]*models.Drone, 0, r.Len())
	r.Each(func(d *models.Drone) bool {
		out = append(out, d)
		return true
	})
	return out
}

// Graph exposes the proximity graph of a colour partition for read-only use.
func (r *Registry) Graph(colour models.Colour) (*proximity.Graph, bool) {
	p, ok := r.partitions[colour]
	if !ok {
		return nil, false
	}
	return p.graph, true
}

// PartitionStats describes one colour partition. Reachable counts the drones
// an anchored search (PathFromAnchor) can find.
type PartitionStats struct {
	Colour      models.Colour `json:"colour"`
	Drones      int           `json:"drones"`
	Reachable   int           `json:"reachable"`
	TreeHeight  int           `json:"tree_height"`
	Edges       int           `json:"edges"`
	Fingerprint uint64        `json:"fingerprint"`
}

func (r *Registry) Stats() []PartitionStats {
	out := make([]PartitionStats, 0, len(r.partitions))
	for _, c := range models.Colours() {
		p := r.partitions[c]
		out = append(out, PartitionStats{
			Colour:      c,
			Drones:      p.list.Len(),
			Reachable:   len(p.graph.Reachable(p.graph.Anchor())),
			TreeHeight:  p.tree.Height(),
			Edges:       p.graph.EdgeCount(),
			Fingerprint: p.graph.Fingerprint(),
		})
	}
	return out
}

// EventMetrics reports the delivery counters of the registry's bus.
func (r *Registry) EventMetrics() bus.EventBusMetrics {
	if r.events == nil {
		return bus.EventBusMetrics{}
	}
	return r.events.GetMetrics()
}
