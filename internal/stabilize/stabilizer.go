// Package stabilize debounces per-frame gesture classifications into a
// stream of confirmed gesture events.
package stabilize

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Default debounce parameters.
const (
	// DefaultDebounceFrames is how many consecutive identical samples are
	// required before a new label is confirmed.
	DefaultDebounceFrames = 3
	// DefaultIdleTimeout is how long a slot may go without any hand pose
	// before its state is reset.
	DefaultIdleTimeout = 2 * time.Second
	// DefaultHistorySize bounds the ring of recent samples kept per slot.
	DefaultHistorySize = 30
)

// Config holds configuration options for temporal stabilization.
type Config struct {
	// DebounceFrames counts frames, not wall-clock time, so the stabilizer
	// tolerates the irregular timestamps a lossy frame queue produces.
	DebounceFrames int

	// IdleTimeout is elapsed time without a pose before the slot resets.
	IdleTimeout time.Duration

	// HistorySize is the capacity of the recent-sample ring.
	HistorySize int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		DebounceFrames: DefaultDebounceFrames,
		IdleTimeout:    DefaultIdleTimeout,
		HistorySize:    DefaultHistorySize,
	}
}

// Event is a confirmed gesture transition: exactly one is emitted per
// transition, never one per frame. Events are immutable values and safe to
// hand to a consumer running concurrently with the pipeline.
type Event struct {
	Label      gesture.Label `json:"label"`
	Confidence float64       `json:"confidence"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Stabilizer debounces the classification stream for one tracked hand slot.
// It is the only stateful stage of the pipeline and must be driven from a
// single goroutine.
//
// The state machine has three states: idle (no hand seen recently),
// unconfirmed (a candidate label is accumulating consecutive matches), and
// confirmed. Any label change, including back to none, passes through the
// same debounce rule, which suppresses single-frame flicker in both
// directions.
type Stabilizer struct {
	config Config

	confirmed      gesture.Label
	candidate      gesture.Label
	candidateCount int
	idle           bool
	lastPose       time.Time

	history []gesture.Sample
	next    int
	filled  bool
}

// New creates a Stabilizer in the idle state.
func New(config Config) *Stabilizer {
	if config.DebounceFrames <= 0 {
		config.DebounceFrames = DefaultDebounceFrames
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultHistorySize
	}
	return &Stabilizer{
		config:    config,
		confirmed: gesture.LabelNone,
		candidate: gesture.LabelNone,
		idle:      true,
		history:   make([]gesture.Sample, config.HistorySize),
	}
}

// Observe feeds one classification sample. It returns an Event and true only
// when the sample confirms a transition to a new label.
func (s *Stabilizer) Observe(sample gesture.Sample) (Event, bool) {
	s.idle = false
	s.lastPose = sample.Timestamp
	s.record(sample)

	if sample.Label == s.confirmed {
		// Matching the confirmed label dissolves any pending candidate.
		s.candidate = s.confirmed
		s.candidateCount = 0
		return Event{}, false
	}

	if sample.Label == s.candidate {
		s.candidateCount++
	} else {
		s.candidate = sample.Label
		s.candidateCount = 1
	}

	if s.candidateCount < s.config.DebounceFrames {
		return Event{}, false
	}

	s.confirmed = s.candidate
	s.candidateCount = 0
	return Event{
		Label:      s.confirmed,
		Confidence: sample.Confidence,
		Timestamp:  sample.Timestamp,
	}, true
}

// ObserveNoHand reports that no pose was available for this slot at the
// given time. Once the idle timeout elapses the slot resets and, if a
// gesture was confirmed, a closing none event is emitted.
func (s *Stabilizer) ObserveNoHand(now time.Time) (Event, bool) {
	if s.idle {
		return Event{}, false
	}
	if s.lastPose.IsZero() || now.Sub(s.lastPose) < s.config.IdleTimeout {
		return Event{}, false
	}

	wasConfirmed := s.confirmed != gesture.LabelNone
	s.Reset()

	if !wasConfirmed {
		return Event{}, false
	}
	return Event{Label: gesture.LabelNone, Timestamp: now}, true
}

// Confirmed returns the currently confirmed label.
func (s *Stabilizer) Confirmed() gesture.Label {
	return s.confirmed
}

// Idle reports whether the slot has been reset for lack of a hand.
func (s *Stabilizer) Idle() bool {
	return s.idle
}

// History returns the retained samples, oldest first.
func (s *Stabilizer) History() []gesture.Sample {
	if !s.filled {
		out := make([]gesture.Sample, s.next)
		copy(out, s.history[:s.next])
		return out
	}
	out := make([]gesture.Sample, 0, len(s.history))
	out = append(out, s.history[s.next:]...)
	out = append(out, s.history[:s.next]...)
	return out
}

// Reset returns the slot to the idle state and clears its history.
func (s *Stabilizer) Reset() {
	s.confirmed = gesture.LabelNone
	s.candidate = gesture.LabelNone
	s.candidateCount = 0
	s.idle = true
	s.lastPose = time.Time{}
	s.next = 0
	s.filled = false
}

// record appends a sample to the fixed-capacity ring.
func (s *Stabilizer) record(sample gesture.Sample) {
	s.history[s.next] = sample
	s.next++
	if s.next == len(s.history) {
		s.next = 0
		s.filled = true
	}
}
