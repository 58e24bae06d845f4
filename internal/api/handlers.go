// Package api implements the local HTTP status API: a now-playing snapshot,
// an SSE stream of state changes, and transport commands.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ncspot/mprisd/internal/models"
)

// Controller is the interface the handlers use to read and drive playback.
type Controller interface {
	Now() models.NowPlaying
	Command(name string) error
	SetVolume(f float64) error
	SeekTo(positionMS int) error
	SaveCurrent() error
	RemoveCurrent() error
}

// EventBus is the interface for subscribing to now-playing updates.
type EventBus interface {
	Subscribe(id string) <-chan models.NowPlaying
	Unsubscribe(id string)
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	ctrl   Controller
	events EventBus
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Now())
}

func (h *Handlers) playerCommand(w http.ResponseWriter, r *http.Request) {
	cmd := chi.URLParam(r, "cmd")
	if err := h.ctrl.Command(cmd); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Now())
}

func (h *Handlers) setVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.ctrl.SetVolume(req.Volume); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Now())
}

func (h *Handlers) seek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PositionMS int `json:"position_ms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.ctrl.SeekTo(req.PositionMS); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Now())
}

func (h *Handlers) saveCurrent(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.SaveCurrent(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Now())
}

func (h *Handlers) removeCurrent(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.RemoveCurrent(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Now())
}
