package injector

import (
	"fmt"
	"time"

	"github.com/zeusync/flocknet/internal/config"
	"github.com/zeusync/flocknet/internal/core/events/bus"
	"github.com/zeusync/flocknet/internal/core/observability/log"
	"github.com/zeusync/flocknet/internal/core/registry"
	"github.com/zeusync/flocknet/internal/server"
	"github.com/zeusync/flocknet/internal/sim"
)

// App is the fully wired serve command.
type App struct {
	Logger *log.Logger
	Runner *sim.Runner
	Server *server.Server
}

func NewApp(logger *log.Logger, runner *sim.Runner, srv *server.Server) *App {
	return &App{Logger: logger, Runner: runner, Server: srv}
}

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	switch enc := log.Encoding(cfg.Logging.Format); enc {
	case log.EncodingJSON, log.EncodingConsole:
		return log.NewWithEncoding(level, enc), nil
	case "":
		return log.NewWithEncoding(level, log.EncodingConsole), nil
	default:
		return nil, fmt.Errorf("logging.format %q: %w", cfg.Logging.Format, config.ErrInvalidConfig)
	}
}

// ProvideEventBus returns a bus that logs topology changes of the flock. The
// delivery observer also turns on the bus metrics reported in snapshots.
func ProvideEventBus(logger log.Log) (bus.EventBus, error) {
	b := bus.New()
	l := logger.With(log.String("component", "events"))
	b.AddObserver(&deliveryLogger{logger: l})
	_, err := b.Subscribe(registry.EventTopologyChanged, func(e bus.Event) error {
		if t, ok := e.Data().(registry.TopologyEvent); ok {
			l.Debug("topology changed",
				log.Stringer("colour", t.Colour),
				log.Int("nodes", t.Nodes),
				log.Int("edges", t.Edges),
				log.Uint64("fingerprint", t.Fingerprint),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

type deliveryLogger struct {
	logger log.Log
}

func (d *deliveryLogger) OnPublish(string, bus.Event) {}

func (d *deliveryLogger) OnDelivered(eventType string, handlers int, err error, duration time.Duration) {
	d.logger.Debug("event delivered",
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Duration("elapsed", duration),
		log.Error(err),
	)
}

func ProvideRegistryConfig(cfg *config.Config) registry.Config {
	return registry.Config{
		NeighborRadius: cfg.Network.NeighborRadius,
		SpatialIndex:   cfg.Network.SpatialIndex,
	}
}

func ProvideServerConfig(cfg *config.Config) config.ServerConfig {
	return cfg.Server
}
