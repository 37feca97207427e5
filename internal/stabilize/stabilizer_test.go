package stabilize

import (
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// feed observes a run of identical samples and returns the emitted events.
func feed(s *Stabilizer, label gesture.Label, start time.Time, n int) []Event {
	var events []Event
	ts := start
	for i := 0; i < n; i++ {
		if e, ok := s.Observe(gesture.Sample{Label: label, Confidence: 0.8, Timestamp: ts}); ok {
			events = append(events, e)
		}
		ts = ts.Add(66 * time.Millisecond)
	}
	return events
}

func TestStabilizer_ConfirmsAfterDebounce(t *testing.T) {
	s := New(DefaultConfig())
	start := time.Now()

	// Two matching frames are not enough
	if events := feed(s, gesture.LabelFist, start, DefaultDebounceFrames-1); len(events) != 0 {
		t.Fatalf("emitted %d events before debounce completed", len(events))
	}

	// The third confirms and emits exactly one event
	events := feed(s, gesture.LabelFist, start.Add(time.Second), 1)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Label != gesture.LabelFist {
		t.Errorf("label = %s, want fist", events[0].Label)
	}
	if s.Confirmed() != gesture.LabelFist {
		t.Errorf("Confirmed() = %s, want fist", s.Confirmed())
	}
}

func TestStabilizer_HoldEmitsNothing(t *testing.T) {
	s := New(DefaultConfig())
	start := time.Now()

	feed(s, gesture.LabelVictory, start, DefaultDebounceFrames)

	// Holding the confirmed gesture for many more frames stays silent
	if events := feed(s, gesture.LabelVictory, start.Add(time.Second), 50); len(events) != 0 {
		t.Errorf("holding emitted %d events", len(events))
	}
}

func TestStabilizer_SingleFrameFlickerIgnored(t *testing.T) {
	s := New(DefaultConfig())
	start := time.Now()

	feed(s, gesture.LabelFist, start, DefaultDebounceFrames)

	// Sequence fist, open, fist, fist, fist: the lone open frame must not
	// confirm, and returning to fist must not re-emit it.
	ts := start.Add(time.Second)
	var events []Event
	for _, label := range []gesture.Label{gesture.LabelOpenHand, gesture.LabelFist, gesture.LabelFist, gesture.LabelFist} {
		if e, ok := s.Observe(gesture.Sample{Label: label, Confidence: 0.8, Timestamp: ts}); ok {
			events = append(events, e)
		}
		ts = ts.Add(66 * time.Millisecond)
	}

	if len(events) != 0 {
		t.Errorf("flicker emitted %d events", len(events))
	}
	if s.Confirmed() != gesture.LabelFist {
		t.Errorf("Confirmed() = %s, want fist", s.Confirmed())
	}
}

func TestStabilizer_TransitionEmitsOncePerLabel(t *testing.T) {
	s := New(DefaultConfig())
	start := time.Now()

	first := feed(s, gesture.LabelFist, start, DefaultDebounceFrames)
	second := feed(s, gesture.LabelOpenHand, start.Add(time.Second), DefaultDebounceFrames)

	if len(first) != 1 || first[0].Label != gesture.LabelFist {
		t.Errorf("first run: %v", first)
	}
	if len(second) != 1 || second[0].Label != gesture.LabelOpenHand {
		t.Errorf("second run: %v", second)
	}
}

func TestStabilizer_InterruptedCandidateRestartsCount(t *testing.T) {
	s := New(DefaultConfig())
	ts := time.Now()

	// A, B, A, A, A with debounce 3: the B interruption resets the run,
	// so A confirms on the third consecutive A and emits exactly once.
	sequence := []gesture.Label{
		gesture.LabelVictory, gesture.LabelOK,
		gesture.LabelVictory, gesture.LabelVictory, gesture.LabelVictory,
	}

	var events []Event
	for _, label := range sequence {
		if e, ok := s.Observe(gesture.Sample{Label: label, Confidence: 0.8, Timestamp: ts}); ok {
			events = append(events, e)
		}
		ts = ts.Add(66 * time.Millisecond)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Label != gesture.LabelVictory {
		t.Errorf("label = %s, want victory", events[0].Label)
	}
}

func TestStabilizer_IdleTimeoutEmitsClosingNone(t *testing.T) {
	s := New(DefaultConfig())
	start := time.Now()

	feed(s, gesture.LabelPointing, start, DefaultDebounceFrames)

	// Before the timeout, nothing happens
	if _, ok := s.ObserveNoHand(start.Add(DefaultIdleTimeout / 2)); ok {
		t.Fatal("emitted before the idle timeout elapsed")
	}

	// After the timeout, exactly one closing none event
	e, ok := s.ObserveNoHand(start.Add(DefaultIdleTimeout + time.Second))
	if !ok {
		t.Fatal("expected a closing event")
	}
	if e.Label != gesture.LabelNone {
		t.Errorf("label = %s, want none", e.Label)
	}
	if !s.Idle() {
		t.Error("stabilizer should be idle after the timeout")
	}

	// Further no-hand observations stay silent
	if _, ok := s.ObserveNoHand(start.Add(DefaultIdleTimeout + time.Minute)); ok {
		t.Error("idle slot emitted again")
	}
}

func TestStabilizer_IdleWithoutConfirmationEmitsNothing(t *testing.T) {
	s := New(DefaultConfig())
	start := time.Now()

	// Only one frame: nothing was confirmed, so the reset is silent
	feed(s, gesture.LabelFist, start, 1)

	if _, ok := s.ObserveNoHand(start.Add(DefaultIdleTimeout + time.Second)); ok {
		t.Error("unconfirmed slot emitted a closing event")
	}
	if !s.Idle() {
		t.Error("stabilizer should be idle after the timeout")
	}
}

func TestStabilizer_ReappearanceAfterIdleReconfirms(t *testing.T) {
	s := New(DefaultConfig())
	start := time.Now()

	feed(s, gesture.LabelFist, start, DefaultDebounceFrames)
	s.ObserveNoHand(start.Add(DefaultIdleTimeout + time.Second))

	// The same gesture after an idle reset must debounce from scratch
	events := feed(s, gesture.LabelFist, start.Add(time.Minute), DefaultDebounceFrames)
	if len(events) != 1 {
		t.Fatalf("expected 1 event after reappearance, got %d", len(events))
	}
}

func TestStabilizer_History(t *testing.T) {
	s := New(Config{DebounceFrames: 3, IdleTimeout: DefaultIdleTimeout, HistorySize: 4})
	start := time.Now()

	labels := []gesture.Label{
		gesture.LabelFist, gesture.LabelFist, gesture.LabelOpenHand,
		gesture.LabelVictory, gesture.LabelOK, gesture.LabelPointing,
	}
	ts := start
	for _, label := range labels {
		s.Observe(gesture.Sample{Label: label, Confidence: 0.8, Timestamp: ts})
		ts = ts.Add(66 * time.Millisecond)
	}

	// Only the last four samples are retained, oldest first
	history := s.History()
	if len(history) != 4 {
		t.Fatalf("len(history) = %d, want 4", len(history))
	}
	want := []gesture.Label{gesture.LabelOpenHand, gesture.LabelVictory, gesture.LabelOK, gesture.LabelPointing}
	for i, label := range want {
		if history[i].Label != label {
			t.Errorf("history[%d] = %s, want %s", i, history[i].Label, label)
		}
	}
}

func TestStabilizer_EventConfidenceFromConfirmingSample(t *testing.T) {
	s := New(DefaultConfig())
	ts := time.Now()

	confidences := []float64{0.9, 0.7, 0.85}
	var events []Event
	for _, conf := range confidences {
		if e, ok := s.Observe(gesture.Sample{Label: gesture.LabelOK, Confidence: conf, Timestamp: ts}); ok {
			events = append(events, e)
		}
		ts = ts.Add(66 * time.Millisecond)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Confidence != 0.85 {
		t.Errorf("confidence = %f, want the confirming sample's 0.85", events[0].Confidence)
	}
}
