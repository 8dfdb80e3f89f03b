package registry

import (
	"fmt"

	"github.com/zeusync/flocknet/internal/core/index"
)

var (
	ErrNilDrone      = fmt.Errorf("registry: nil drone: %w", index.ErrInvalidOperation)
	ErrUnknownColour = fmt.Errorf("registry: unknown colour: %w", index.ErrInvalidOperation)
	// ErrDuplicate is returned when inserting a drone whose id is already indexed.
	ErrDuplicate = fmt.Errorf("registry: drone already indexed: %w", index.ErrInvalidOperation)
)
