package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/flocknet/internal/core/observability/log"
	"github.com/zeusync/flocknet/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// handleWebSocket streams the current snapshot and then every
// SnapshotEvery-th tick snapshot until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.beginStream() {
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}
	defer s.workerGroup.Done()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	total := atomic.AddInt64(&s.clientCount, 1)
	logger := s.logger.With(log.String("remote_addr", conn.RemoteAddr().String()))
	logger.Info("Client connected", log.Int64("total_clients", total))
	defer func() {
		_ = conn.Close()
		logger.Info("Client disconnected", log.Int64("total_clients", atomic.AddInt64(&s.clientCount, -1)))
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readPump(conn, cancel)

	snapshots := s.flock.Watch(ctx)
	if err = s.write(conn, s.flock.Snapshot()); err != nil {
		logger.Debug("Write failed", log.Error(err))
		return
	}

	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(time.Second))
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			n++
			if n%s.config.SnapshotEvery != 0 {
				continue
			}
			if err = s.write(conn, snap); err != nil {
				logger.Debug("Write failed", log.Error(err))
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, snap sim.Snapshot) error {
	if s.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	return conn.WriteJSON(snap)
}

// readPump discards client frames so control messages are processed and
// cancels the stream once the connection fails.
func (s *Server) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
