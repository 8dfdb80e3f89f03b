package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/flocknet/internal/config"
	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/observability/log"
	"github.com/zeusync/flocknet/internal/core/registry"
	"github.com/zeusync/flocknet/internal/core/systems/physics"
)

func newRunner(t *testing.T, count int, opts ...func(*config.Config)) (*Runner, *registry.Registry) {
	t.Helper()
	cfg := config.Default()
	cfg.Flock.StartingCount = count
	cfg.Flock.Seed = 42
	cfg.Sim.TickRate = time.Millisecond
	for _, opt := range opts {
		opt(cfg)
	}
	reg := registry.New(registry.Config{NeighborRadius: cfg.Network.NeighborRadius}, log.NewNop(), nil)
	return NewRunner(cfg, reg, log.NewNop()), reg
}

func TestSeedPopulatesRegistry(t *testing.T) {
	r, reg := newRunner(t, 60)
	require.NoError(t, r.Seed())
	assert.ErrorIs(t, r.Seed(), ErrAlreadySeeded)
	assert.Equal(t, 60, reg.Len())

	bound := 60 * config.Default().Flock.AgentDensity
	reg.Each(func(d *models.Drone) bool {
		assert.LessOrEqual(t, d.Position().Len(), bound+1e-9)
		return true
	})

	var blue, red int
	for _, s := range reg.Stats() {
		switch s.Colour {
		case models.ColourBlue:
			blue = s.Drones
		case models.ColourRed:
			red = s.Drones
		}
	}
	assert.Equal(t, 60, blue+red)
	assert.Positive(t, blue)
	assert.Positive(t, red)
}

func TestStepKeepsEdgeInvariant(t *testing.T) {
	r, reg := newRunner(t, 80)
	require.NoError(t, r.Seed())

	for i := 0; i < 5; i++ {
		snap := r.Step()
		assert.Equal(t, uint64(i+1), snap.Tick)
		assert.Len(t, snap.Drones, 80)
	}

	for _, c := range models.Colours() {
		g, ok := reg.Graph(c)
		require.True(t, ok)
		nodes := g.Nodes()
		for i, a := range nodes {
			for _, b := range nodes[i+1:] {
				near := a.Drone().Position().DistanceTo(b.Drone().Position()) <= g.Radius()
				assert.Equal(t, near, a.HasNeighbor(b))
			}
		}
	}
}

func TestSteeringRespectsMaxSpeed(t *testing.T) {
	s := steering{avoidanceRadius: 0.75, boundRadius: 5, driveFactor: 10, maxSpeed: 5}
	d := models.NewDrone(1, models.ColourRed, physics.V2(0, 0))
	others := []*models.Drone{
		models.NewDrone(2, models.ColourRed, physics.V2(0.5, 0)),
		models.NewDrone(3, models.ColourRed, physics.V2(1.2, 0.3)),
	}
	v := s.move(d, others)
	assert.LessOrEqual(t, v.Len(), 5+1e-9)

	// far outside the bound the drone heads back toward the centre
	lost := models.NewDrone(4, models.ColourRed, physics.V2(20, 0))
	v = s.move(lost, nil)
	assert.Less(t, v.X(), 0.0)
}

func TestQueries(t *testing.T) {
	r, _ := newRunner(t, 30)
	require.NoError(t, r.Seed())

	st, err := r.Find(3)
	require.NoError(t, err)
	assert.Equal(t, models.DroneID(3), st.ID)

	path, cost, err := r.ShortestPath(3, 3)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Zero(t, cost)

	require.NoError(t, r.Remove(3))
	_, err = r.Find(3)
	assert.ErrorIs(t, err, index.ErrNotFound)

	id, err := r.RemoveRandom()
	require.NoError(t, err)
	assert.NotEqual(t, models.DroneID(3), id)
	assert.Len(t, r.Snapshot().Drones, 28)
}

func TestRunStopsAfterTicks(t *testing.T) {
	r, _ := newRunner(t, 20)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	watch := r.Watch(ctx)
	require.NoError(t, r.Run(ctx, 3))
	assert.Equal(t, uint64(3), r.Tick())

	select {
	case snap := <-watch:
		assert.Equal(t, r.RunID(), snap.RunID)
		assert.NotZero(t, snap.Tick)
	default:
		t.Fatal("no snapshot delivered")
	}
}

func TestRunCancelled(t *testing.T) {
	r, _ := newRunner(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx, 0), context.Canceled)
}

func TestStepRemovesOnSchedule(t *testing.T) {
	r, reg := newRunner(t, 12, func(cfg *config.Config) { cfg.Sim.RemoveEvery = 2 })
	require.NoError(t, r.Seed())

	for i := 0; i < 4; i++ {
		r.Step()
	}
	assert.Equal(t, 10, reg.Len())
	assert.Len(t, r.Snapshot().Drones, 10)
}

func TestStepRemovalStopsWhenEmpty(t *testing.T) {
	r, reg := newRunner(t, 2, func(cfg *config.Config) { cfg.Sim.RemoveEvery = 1 })
	require.NoError(t, r.Seed())

	for i := 0; i < 4; i++ {
		r.Step()
	}
	assert.Zero(t, reg.Len())
	_, err := r.RemoveRandom()
	assert.ErrorIs(t, err, index.ErrStructureEmpty)
}

func TestPathFromAnchor(t *testing.T) {
	r, reg := newRunner(t, 40)
	require.NoError(t, r.Seed())

	red, ok := reg.Graph(models.ColourRed)
	require.True(t, ok)
	anchor := red.Anchor().Drone().ID()

	path, cost, err := r.PathFromAnchor(models.ColourRed, anchor)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, anchor, path[0].ID)
	assert.Zero(t, cost)

	for _, n := range red.Reachable(red.Anchor()) {
		path, _, err = r.PathFromAnchor(models.ColourRed, n.Drone().ID())
		require.NoError(t, err)
		assert.Equal(t, anchor, path[0].ID)
		assert.Equal(t, n.Drone().ID(), path[len(path)-1].ID)
	}

	blue, ok := reg.Graph(models.ColourBlue)
	require.True(t, ok)
	_, _, err = r.PathFromAnchor(models.ColourRed, blue.Anchor().Drone().ID())
	assert.ErrorIs(t, err, index.ErrNotFound)
}
