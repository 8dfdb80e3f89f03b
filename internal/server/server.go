package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/flocknet/internal/config"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/observability/log"
	"github.com/zeusync/flocknet/internal/sim"
)

// Flock is the simulation surface served over HTTP and websocket.
type Flock interface {
	Snapshot() sim.Snapshot
	Watch(ctx context.Context) <-chan sim.Snapshot
	Find(id models.DroneID) (sim.DroneState, error)
	ShortestPath(from, to models.DroneID) ([]sim.DroneState, float64, error)
	PathFromAnchor(colour models.Colour, to models.DroneID) ([]sim.DroneState, float64, error)
	Remove(id models.DroneID) error
	RemoveRandom() (models.DroneID, error)
}

// Server exposes a Flock as a JSON API and a websocket snapshot stream.
type Server struct {
	flock  Flock
	config config.ServerConfig
	logger log.Log

	httpServer *http.Server
	listener   net.Listener

	clientCount int64 // atomic

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	// Stream goroutines. streamMu orders workerGroup.Add against the close
	// of stopChan in Stop.
	streamMu    sync.Mutex
	stopping    bool
	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// NewServer creates a server for flock.
func NewServer(flock Flock, cfg config.ServerConfig, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = 1
	}

	s := &Server{
		flock:    flock,
		config:   cfg,
		logger:   logger.With(log.String("component", "server")),
		stopChan: make(chan struct{}),
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("Server created", log.String("listen_addr", cfg.ListenAddr))
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/path", s.handlePath)
	mux.HandleFunc("GET /api/drones/{id}", s.handleFind)
	mux.HandleFunc("DELETE /api/drones/random", s.handleRemoveRandom)
	mux.HandleFunc("DELETE /api/drones/{id}", s.handleRemove)
	return mux
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	s.listener = listener
	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Serve failed", log.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run starts the server and stops it when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout+time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop shuts the HTTP server down and waits for the snapshot streams. A
// stopped server cannot be started again.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	atomic.StoreInt32(&s.closed, 1)

	s.logger.Info("Stopping server")
	s.streamMu.Lock()
	s.stopping = true
	close(s.stopChan)
	s.streamMu.Unlock()

	err := s.httpServer.Shutdown(ctx)
	s.workerGroup.Wait()

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if needed and makes it unusable.
func (s *Server) Close() error {
	if atomic.LoadInt32(&s.running) == 1 {
		if err := s.Stop(context.Background()); !errors.Is(err, ErrServerNotRunning) {
			return err
		}
	}
	atomic.StoreInt32(&s.closed, 1)
	return nil
}

// beginStream registers a snapshot stream unless the server is stopping.
func (s *Server) beginStream() bool {
	s.streamMu.Lock()
	defer s.streamMu.Unlock()
	if s.stopping {
		return false
	}
	s.workerGroup.Add(1)
	return true
}

func (s *Server) Clients() int64 { return atomic.LoadInt64(&s.clientCount) }
