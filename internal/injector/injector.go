//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/flocknet/internal/config"
	"github.com/zeusync/flocknet/internal/core/observability/log"
	"github.com/zeusync/flocknet/internal/core/registry"
	"github.com/zeusync/flocknet/internal/server"
	"github.com/zeusync/flocknet/internal/sim"
)

var runnerSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideEventBus,
	ProvideRegistryConfig,
	registry.New,
	sim.NewRunner,
)

func InitializeRunner(cfg *config.Config) (*sim.Runner, error) {
	wire.Build(runnerSet)
	return nil, nil
}

func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(
		runnerSet,
		ProvideServerConfig,
		wire.Bind(new(server.Flock), new(*sim.Runner)),
		server.NewServer,
		NewApp,
	)
	return nil, nil
}
