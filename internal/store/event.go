package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event represents a confirmed gesture transition recorded in the database.
type Event struct {
	ID         string
	Label      string
	Confidence float64
	Handedness string
	Slot       int
	OccurredAt time.Time
	CreatedAt  time.Time
}

// EventRepository provides persistence for gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert records a new event. If the event has no ID one is assigned.
func (r *EventRepository) Insert(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO events (id, label, confidence, handedness, slot, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Label, e.Confidence, e.Handedness, e.Slot, e.OccurredAt, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}

	err := r.db.QueryRow(
		`SELECT id, label, confidence, handedness, slot, occurred_at, created_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Label, &e.Confidence, &e.Handedness, &e.Slot, &e.OccurredAt, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e, nil
}

// ListRecent retrieves up to limit events, newest first.
func (r *EventRepository) ListRecent(limit int) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, label, confidence, handedness, slot, occurred_at, created_at
		 FROM events ORDER BY occurred_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListSince retrieves all events that occurred at or after the given time,
// newest first.
func (r *EventRepository) ListSince(since time.Time) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, label, confidence, handedness, slot, occurred_at, created_at
		 FROM events WHERE occurred_at >= ? ORDER BY occurred_at DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountByLabel returns the number of recorded events per label.
func (r *EventRepository) CountByLabel() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM events GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	return counts, rows.Err()
}

// Prune deletes all events that occurred before the given time and
// returns the number of rows removed.
func (r *EventRepository) Prune(before time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM events WHERE occurred_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var events []*Event
	for rows.Next() {
		e := &Event{}
		err := rows.Scan(&e.ID, &e.Label, &e.Confidence, &e.Handedness, &e.Slot, &e.OccurredAt, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
