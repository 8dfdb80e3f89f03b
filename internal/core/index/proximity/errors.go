package proximity

import (
	"fmt"

	"github.com/zeusync/flocknet/internal/core/index"
)

var (
	// ErrNoPath is returned when the endpoints lie in different components.
	ErrNoPath = fmt.Errorf("proximity: no path between drones: %w", index.ErrNotFound)
	// ErrColourMismatch is returned for a path request across two colours.
	ErrColourMismatch = fmt.Errorf("proximity: endpoints have different colours: %w", index.ErrInvalidOperation)
	// ErrForeignNode is returned for a node that is not a member of the graph.
	ErrForeignNode = fmt.Errorf("proximity: node is not in this graph: %w", index.ErrNotFound)
)
