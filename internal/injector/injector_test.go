package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/flocknet/internal/config"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.Flock.StartingCount = 10
	cfg.Flock.Seed = 1

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app.Runner)
	require.NotNil(t, app.Server)

	require.NoError(t, app.Runner.Seed())
	snap := app.Runner.Step()
	assert.Len(t, snap.Drones, 10)
	// the delivery observer keeps the bus counters live
	assert.GreaterOrEqual(t, snap.Events.Published, uint64(10))
	assert.Positive(t, snap.Events.SubscribersActive)
}

func TestProvideLoggerRejectsFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	_, err := InitializeRunner(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg.Logging.Format = "json"
	cfg.Logging.Level = "loud"
	_, err = InitializeRunner(cfg)
	assert.Error(t, err)
}
