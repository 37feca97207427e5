package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

func newTestHandler(t *testing.T) (*EventsHandler, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return NewEventsHandler(s), s
}

func TestEventsHandler_List(t *testing.T) {
	h, s := newTestHandler(t)

	base := time.Now().Add(-time.Minute)
	for i, label := range []string{"fist", "victory", "ok"} {
		event := &store.Event{
			Label:      label,
			Confidence: 0.8,
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Events().Insert(event); err != nil {
			t.Fatalf("failed to insert event: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events?limit=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response listEventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(response.Events))
	}
	// Newest first
	if response.Events[0].Label != "ok" {
		t.Errorf("first label = %s, want ok", response.Events[0].Label)
	}
}

func TestEventsHandler_List_InvalidLimit(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, query := range []string{"?limit=abc", "?limit=0", "?limit=-5", "?since=yesterday"} {
		req := httptest.NewRequest(http.MethodGet, "/api/events"+query, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %s: status = %d, want %d", query, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestEventsHandler_Get_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events/missing-id", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var response errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Error == "" {
		t.Error("expected error message in response")
	}
}

func TestEventsHandler_Prune_RequiresBefore(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestEventsHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
