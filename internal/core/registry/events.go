package registry

import (
	"github.com/zeusync/flocknet/internal/core/events/bus"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/observability/log"
)

const eventSource = "registry"

// Event types published on the bus passed to New.
const (
	EventDroneInserted      = "drone.inserted"
	EventDroneRemoved       = "drone.removed"
	EventDroneRepartitioned = "drone.repartitioned"
	EventTopologyChanged    = "network.topology_changed"
)

// DroneEvent is the payload of the drone.* events. From equals Colour
// except for drone.repartitioned.
type DroneEvent struct {
	ID     models.DroneID
	Colour models.Colour
	From   models.Colour
}

// TopologyEvent is the payload of network.topology_changed.
type TopologyEvent struct {
	Colour      models.Colour
	Nodes       int
	Edges       int
	Fingerprint uint64
}

func (r *Registry) publish(typ string, data any) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(bus.NewEvent(typ, eventSource, data)); err != nil {
		r.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}
