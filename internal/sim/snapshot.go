package sim

import (
	"context"
	"time"

	"github.com/zeusync/flocknet/internal/core/events/bus"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/registry"
)

// DroneState is an immutable copy of a drone taken under the runner lock.
type DroneState struct {
	ID       models.DroneID `json:"id"`
	Colour   models.Colour  `json:"colour"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Coolness int            `json:"coolness"`
}

// Snapshot is the flock state after a tick.
type Snapshot struct {
	RunID      string                    `json:"run_id"`
	Tick       uint64                    `json:"tick"`
	Time       time.Time                 `json:"time"`
	Drones     []DroneState              `json:"drones"`
	Partitions []registry.PartitionStats `json:"partitions"`
	Events     bus.EventBusMetrics       `json:"events"`
}

func stateOf(d *models.Drone) DroneState {
	p := d.Position()
	return DroneState{
		ID:       d.ID(),
		Colour:   d.Colour(),
		X:        p.X(),
		Y:        p.Y(),
		Coolness: d.Coolness(),
	}
}

func states(ds []*models.Drone) []DroneState {
	out := make([]DroneState, len(ds))
	for i, d := range ds {
		out[i] = stateOf(d)
	}
	return out
}

// Watch returns a channel receiving the snapshot of every tick until ctx is
// done. A slow receiver misses snapshots rather than stalling the runner.
func (r *Runner) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	r.watchMu.Lock()
	id := r.nextW
	r.nextW++
	r.watchers[id] = ch
	r.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		r.watchMu.Lock()
		delete(r.watchers, id)
		close(ch)
		r.watchMu.Unlock()
	}()
	return ch
}

func (r *Runner) broadcast(s Snapshot) {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	for _, ch := range r.watchers {
		select {
		case ch <- s:
		default:
		}
	}
}
