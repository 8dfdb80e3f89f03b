package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/observability/log"
	"github.com/zeusync/flocknet/internal/sim"
)

type pathResponse struct {
	From   models.DroneID   `json:"from"`
	To     models.DroneID   `json:"to"`
	Cost   float64          `json:"cost"`
	Drones []sim.DroneState `json:"drones"`
}

type removedResponse struct {
	ID models.DroneID `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.flock.Snapshot())
}

// handlePath answers ?from=A&to=B with a direct shortest path, or
// ?anchor=COLOUR&to=B with a path from that partition's anchor.
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to, err := parseID(q.Get("to"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var (
		drones []sim.DroneState
		cost   float64
	)
	if raw := q.Get("anchor"); raw != "" {
		colour, perr := models.ParseColour(raw)
		if perr != nil {
			s.writeError(w, fmt.Errorf("%w: %w", ErrInvalidRequest, perr))
			return
		}
		drones, cost, err = s.flock.PathFromAnchor(colour, to)
	} else {
		from, perr := parseID(q.Get("from"))
		if perr != nil {
			s.writeError(w, perr)
			return
		}
		drones, cost, err = s.flock.ShortestPath(from, to)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pathResponse{From: drones[0].ID, To: to, Cost: cost, Drones: drones})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.flock.Find(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err = s.flock.Remove(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveRandom(w http.ResponseWriter, _ *http.Request) {
	id, err := s.flock.RemoveRandom()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, removedResponse{ID: id})
}

func parseID(raw string) (models.DroneID, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("drone id %q: %w", raw, ErrInvalidRequest)
	}
	return models.DroneID(id), nil
}

// statusOf maps the index error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, index.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, index.ErrInvalidOperation), errors.Is(err, index.ErrStructureEmpty):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", log.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Encode response failed", log.Error(err))
	}
}
