package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mudra-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestEventRepository_Insert(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	event := &Event{
		Label:      "thumbs_up",
		Confidence: 0.82,
		Handedness: "Right",
		OccurredAt: time.Now(),
	}

	if err := repo.Insert(event); err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}

	// Insert assigns an ID when none is set
	if event.ID == "" {
		t.Error("ID should be assigned on insert")
	}
	if event.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on insert")
	}

	// Retrieve the event by ID
	got, err := repo.GetByID(event.ID)
	if err != nil {
		t.Fatalf("failed to retrieve event: %v", err)
	}
	if got.Label != "thumbs_up" {
		t.Errorf("expected label thumbs_up, got %q", got.Label)
	}
	if got.Confidence != 0.82 {
		t.Errorf("expected confidence 0.82, got %f", got.Confidence)
	}
	if got.Handedness != "Right" {
		t.Errorf("expected handedness Right, got %q", got.Handedness)
	}
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Events().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEventRepository_ListRecent(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	base := time.Now().Add(-time.Minute)
	labels := []string{"fist", "open_hand", "victory", "none"}
	for i, label := range labels {
		event := &Event{
			Label:      label,
			Confidence: 0.7,
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Insert(event); err != nil {
			t.Fatalf("failed to insert event: %v", err)
		}
	}

	events, err := repo.ListRecent(3)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	// Newest first
	if events[0].Label != "none" {
		t.Errorf("expected newest event first, got %q", events[0].Label)
	}
	if events[2].Label != "open_hand" {
		t.Errorf("expected open_hand third, got %q", events[2].Label)
	}
}

func TestEventRepository_ListSince(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	base := time.Now().Add(-time.Hour)
	old := &Event{Label: "fist", Confidence: 0.6, OccurredAt: base}
	recent := &Event{Label: "victory", Confidence: 0.9, OccurredAt: base.Add(30 * time.Minute)}
	for _, e := range []*Event{old, recent} {
		if err := repo.Insert(e); err != nil {
			t.Fatalf("failed to insert event: %v", err)
		}
	}

	events, err := repo.ListSince(base.Add(10 * time.Minute))
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Label != "victory" {
		t.Errorf("expected victory, got %q", events[0].Label)
	}
}

func TestEventRepository_CountByLabel(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	for _, label := range []string{"fist", "fist", "victory"} {
		event := &Event{Label: label, Confidence: 0.7, OccurredAt: time.Now()}
		if err := repo.Insert(event); err != nil {
			t.Fatalf("failed to insert event: %v", err)
		}
	}

	counts, err := repo.CountByLabel()
	if err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	if counts["fist"] != 2 {
		t.Errorf("expected 2 fist events, got %d", counts["fist"])
	}
	if counts["victory"] != 1 {
		t.Errorf("expected 1 victory event, got %d", counts["victory"])
	}
}

func TestEventRepository_Prune(t *testing.T) {
	s := newTestStore(t)
	repo := s.Events()

	base := time.Now()
	old := &Event{Label: "fist", Confidence: 0.6, OccurredAt: base.Add(-48 * time.Hour)}
	recent := &Event{Label: "victory", Confidence: 0.9, OccurredAt: base}
	for _, e := range []*Event{old, recent} {
		if err := repo.Insert(e); err != nil {
			t.Fatalf("failed to insert event: %v", err)
		}
	}

	removed, err := repo.Prune(base.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("failed to prune events: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned event, got %d", removed)
	}

	events, err := repo.ListRecent(10)
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(events) != 1 || events[0].Label != "victory" {
		t.Errorf("expected only the recent event to survive, got %v", events)
	}
}
