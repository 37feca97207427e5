// Package api provides HTTP API handlers for the Mudra gesture recognition system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// DefaultListLimit bounds an event listing when no limit is given.
const DefaultListLimit = 50

// EventsHandler handles HTTP requests for recorded gesture events.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/events, /api/events/stats or /api/events/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.prune(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "stats" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stats(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

// Request and response types

type eventResponse struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Handedness string  `json:"handedness,omitempty"`
	Slot       int     `json:"slot"`
	OccurredAt string  `json:"occurred_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type statsResponse struct {
	Counts map[string]int `json:"counts"`
}

type pruneResponse struct {
	Removed int64 `json:"removed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Event to an eventResponse.
func toResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:         e.ID,
		Label:      e.Label,
		Confidence: e.Confidence,
		Handedness: e.Handedness,
		Slot:       e.Slot,
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/events with optional limit and since query parameters.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	var events []*store.Event
	var err error

	if since := r.URL.Query().Get("since"); since != "" {
		t, perr := time.Parse(time.RFC3339, since)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid since parameter, want RFC3339")
			return
		}
		events, err = h.store.Events().ListSince(t)
	} else {
		limit := DefaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit parameter")
				return
			}
		}
		events, err = h.store.Events().ListRecent(limit)
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	response := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		response.Events = append(response.Events, toResponse(e))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/events/{id}.
func (h *EventsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	event, err := h.store.Events().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(event))
}

// stats handles GET /api/events/stats.
func (h *EventsHandler) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Events().CountByLabel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count events")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Counts: counts})
}

// prune handles DELETE /api/events?before=RFC3339.
func (h *EventsHandler) prune(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("before")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing before parameter")
		return
	}
	before, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid before parameter, want RFC3339")
		return
	}

	removed, err := h.store.Events().Prune(before)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to prune events")
		return
	}
	writeJSON(w, http.StatusOK, pruneResponse{Removed: removed})
}
