package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/store"
)

func TestAPI_EventWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "test.db"))
	defer s.Close()

	event := &store.Event{
		Label:      "victory",
		Confidence: 0.87,
		Handedness: "Right",
		OccurredAt: time.Now(),
	}
	if err := s.Events().Insert(event); err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. List events
	resp, err := client.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatalf("GET /api/events error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/events status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var listed struct {
		Events []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(listed.Events))
	}
	if listed.Events[0].Label != "victory" {
		t.Errorf("label = %s, want victory", listed.Events[0].Label)
	}

	// 2. Get single event
	resp, _ = client.Get(ts.URL + "/api/events/" + listed.Events[0].ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/events/{id} status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 3. Stats
	resp, _ = client.Get(ts.URL + "/api/events/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/events/stats status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var stats struct {
		Counts map[string]int `json:"counts"`
	}
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()

	if stats.Counts["victory"] != 1 {
		t.Errorf("stats counts = %v, want victory:1", stats.Counts)
	}

	// 4. Prune everything
	req, _ := http.NewRequest(http.MethodDelete,
		ts.URL+"/api/events?before="+time.Now().Add(time.Hour).UTC().Format(time.RFC3339), nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE /api/events status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 5. Verify empty
	resp, _ = client.Get(ts.URL + "/api/events")
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Events) != 0 {
		t.Errorf("len(events) after prune = %d, want 0", len(listed.Events))
	}
}

func TestAPI_LiveWebSocket(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	// Wait for the server to register the client
	deadline := time.Now().Add(time.Second)
	for srv.Live().ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Live().ClientCount() != 1 {
		t.Fatal("client was not registered")
	}

	srv.Live().Publish(appEventFixture())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("websocket read error = %v", err)
	}

	var payload struct {
		Event struct {
			Label string `json:"label"`
		} `json:"event"`
	}
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if payload.Event.Label != "victory" {
		t.Errorf("label = %s, want victory", payload.Event.Label)
	}
}
