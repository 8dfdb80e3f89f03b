// Package sim drives a flock of drones through the registry: it seeds the
// population, moves drones with a flocking behaviour every tick, refreshes the
// proximity graphs and periodically repartitions drones by coolness.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/flocknet/internal/config"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/observability/log"
	"github.com/zeusync/flocknet/internal/core/registry"
	"github.com/zeusync/flocknet/internal/core/systems/physics"
	"github.com/zeusync/flocknet/pkg/concurrent"
	"github.com/zeusync/flocknet/pkg/generic"
)

var ErrAlreadySeeded = errors.New("sim: flock already seeded")

// Runner owns a registry and serialises ticks with queries against it.
type Runner struct {
	mu sync.Mutex

	runID    string
	flock    config.FlockConfig
	simCfg   config.SimConfig
	radius   float64
	registry *registry.Registry
	rng      *rand.Rand
	grid     *physics.Grid[*models.Drone]
	scratch  *generic.Pool[*[]*models.Drone]
	steer    steering
	logger   log.Log

	tick   uint64
	seeded bool

	watchMu  sync.Mutex
	watchers map[uint64]chan Snapshot
	nextW    uint64
}

func NewRunner(cfg *config.Config, reg *registry.Registry, logger log.Log) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	seed := cfg.Flock.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := uuid.NewString()
	bound := float64(cfg.Flock.StartingCount) * cfg.Flock.AgentDensity

	return &Runner{
		runID:    runID,
		flock:    cfg.Flock,
		simCfg:   cfg.Sim,
		radius:   cfg.Network.NeighborRadius,
		registry: reg,
		rng:      rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
		grid:     physics.NewGrid[*models.Drone](cfg.Network.NeighborRadius),
		scratch:  generic.NewResetPool(newScratch, resetScratch),
		steer: steering{
			avoidanceRadius: cfg.Network.NeighborRadius * cfg.Sim.AvoidanceRadiusMultiplier,
			boundRadius:     bound,
			driveFactor:     cfg.Sim.DriveFactor,
			maxSpeed:        cfg.Sim.MaxSpeed,
		},
		logger: logger.WithContext(log.ContextWithRunID(context.Background(), runID)).
			With(log.String("component", "sim")),
		watchers: make(map[uint64]chan Snapshot),
	}
}

func newScratch() *[]*models.Drone {
	s := make([]*models.Drone, 0, 16)
	return &s
}

func resetScratch(s *[]*models.Drone) *[]*models.Drone {
	clear(*s)
	*s = (*s)[:0]
	return s
}

func (r *Runner) RunID() string { return r.runID }

// Seed inserts the starting population at random positions inside a circle
// whose radius grows with the population, then partitions it by coolness.
func (r *Runner) Seed() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seeded {
		return ErrAlreadySeeded
	}
	bound := r.steer.boundRadius
	for i := 0; i < r.flock.StartingCount; i++ {
		d := models.NewDrone(models.DroneID(i), models.ColourRed, r.insideCircle(bound))
		d.SetCoolness(r.rng.IntN(r.flock.MaxCoolness))
		if err := r.registry.Insert(d); err != nil {
			return fmt.Errorf("seed drone %d: %w", i, err)
		}
	}
	moved := r.registry.PartitionByCoolness()
	r.registry.RefreshProximity()
	r.seeded = true

	r.logger.Info("flock seeded",
		log.Int("drones", r.registry.Len()),
		log.Int("blue", moved),
		log.Float64("bound_radius", bound),
	)
	return nil
}

func (r *Runner) insideCircle(radius float64) physics.Vec2 {
	// sqrt keeps the density uniform over the disc
	rho := radius * math.Sqrt(r.rng.Float64())
	theta := 2 * math.Pi * r.rng.Float64()
	return physics.V2(rho*math.Cos(theta), rho*math.Sin(theta))
}

// Step advances the flock by one tick and returns its snapshot.
func (r *Runner) Step() Snapshot {
	r.mu.Lock()
	start := time.Now()
	r.tick++
	dt := r.simCfg.TickRate.Seconds()

	drones := r.registry.Drones()
	r.grid.Clear()
	for _, d := range drones {
		r.grid.Insert(d.Position(), d)
	}

	moves := concurrent.ParallelMap(drones, r.simCfg.Workers, r.steerDrone)
	for i, d := range drones {
		d.Move(moves[i], dt)
	}
	moveDone := time.Now()

	r.registry.RefreshProximity()
	refreshDone := time.Now()

	moved := 0
	if every := r.simCfg.RepartitionEvery; every > 0 && r.tick%uint64(every) == 0 {
		moved = r.registry.PartitionByCoolness()
	}
	if every := r.simCfg.RemoveEvery; every > 0 && r.tick%uint64(every) == 0 && r.registry.Len() > 0 {
		r.removeRandomLocked()
	}

	snap := r.snapshotLocked()
	r.logger.Debug("tick",
		log.Uint64("tick", r.tick),
		log.Duration("move", moveDone.Sub(start)),
		log.Duration("refresh", refreshDone.Sub(moveDone)),
		log.Duration("partition", time.Since(refreshDone)),
		log.Int("repartitioned", moved),
		log.Int("drones", len(snap.Drones)),
		log.Uint64("events_published", snap.Events.Published),
		log.Uint64("event_errors", snap.Events.Errors),
	)
	r.mu.Unlock()

	r.broadcast(snap)
	return snap
}

// steerDrone runs concurrently for every drone of a tick and must only read
// shared state.
func (r *Runner) steerDrone(d *models.Drone) physics.Vec2 {
	buf := r.scratch.Get()
	defer r.scratch.Put(buf)

	pos := d.Position()
	physics.Within(r.grid, pos, r.radius, func(o *models.Drone) bool {
		if o != d {
			*buf = append(*buf, o)
		}
		return true
	})
	return r.steer.move(d, *buf)
}

// Run ticks at the configured rate until ctx is done or, when ticks is
// positive, until that many ticks have run.
func (r *Runner) Run(ctx context.Context, ticks int) error {
	if err := r.ensureSeeded(); err != nil {
		return err
	}

	ticker := time.NewTicker(r.simCfg.TickRate)
	defer ticker.Stop()

	r.logger.Info("simulation started", log.Duration("tick_rate", r.simCfg.TickRate), log.Int("ticks", ticks))
	for n := 0; ticks <= 0 || n < ticks; n++ {
		select {
		case <-ctx.Done():
			r.logger.Info("simulation stopped", log.Uint64("tick", r.Tick()))
			return ctx.Err()
		case <-ticker.C:
			r.Step()
		}
	}
	r.logger.Info("simulation finished", log.Uint64("tick", r.Tick()))
	return nil
}

func (r *Runner) ensureSeeded() error {
	r.mu.Lock()
	seeded := r.seeded
	r.mu.Unlock()
	if seeded {
		return nil
	}
	return r.Seed()
}

func (r *Runner) Tick() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tick
}

// ShortestPath runs a path query between two drones.
func (r *Runner) ShortestPath(from, to models.DroneID) ([]DroneState, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	path, cost, err := r.registry.ShortestPath(from, to)
	r.logger.Debug("shortest path",
		log.Int("from", int(from)),
		log.Int("to", int(to)),
		log.Duration("elapsed", time.Since(start)),
		log.Error(err),
	)
	if err != nil {
		return nil, 0, err
	}
	return states(path), cost, nil
}

// PathFromAnchor locates a drone by searching outward from the anchor of
// colour's partition and returns the shortest path from the anchor to it.
func (r *Runner) PathFromAnchor(colour models.Colour, to models.DroneID) ([]DroneState, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	path, cost, err := r.registry.PathFromAnchor(colour, to)
	r.logger.Debug("anchored path",
		log.Stringer("colour", colour),
		log.Int("to", int(to)),
		log.Duration("elapsed", time.Since(start)),
		log.Error(err),
	)
	if err != nil {
		return nil, 0, err
	}
	return states(path), cost, nil
}

// Find returns the current state of a drone.
func (r *Runner) Find(id models.DroneID) (DroneState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.registry.FindByID(id)
	if err != nil {
		return DroneState{}, err
	}
	return stateOf(d), nil
}

// Remove deletes a drone from the flock.
func (r *Runner) Remove(id models.DroneID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	err := r.registry.Remove(id)
	r.logger.Info("drone removed",
		log.Int("drone_id", int(id)),
		log.Duration("elapsed", time.Since(start)),
		log.Error(err),
	)
	return err
}

// RemoveRandom deletes a randomly chosen drone.
func (r *Runner) RemoveRandom() (models.DroneID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeRandomLocked()
}

func (r *Runner) removeRandomLocked() (models.DroneID, error) {
	start := time.Now()
	id, err := r.registry.RemoveRandom(r.rng)
	if err != nil {
		r.logger.Warn("random removal failed", log.Error(err))
		return 0, err
	}
	r.logger.Info("drone removed at random",
		log.Int("drone_id", int(id)),
		log.Int("remaining", r.registry.Len()),
		log.Duration("elapsed", time.Since(start)),
	)
	return id, nil
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Runner) snapshotLocked() Snapshot {
	return Snapshot{
		RunID:      r.runID,
		Tick:       r.tick,
		Time:       time.Now(),
		Drones:     states(r.registry.Drones()),
		Partitions: r.registry.Stats(),
		Events:     r.registry.EventMetrics(),
	}
}
