package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
)

// runCapture is the camera-facing half of the pipeline. It reads frames at
// the current rate, runs motion detection, and pushes frames into the
// bounded queue. The queue keeps the newest frames when inference falls
// behind, so capture never blocks on a slow detector.
//
// Rate control:
// 1. Start in idle mode (IdleFPS)
// 2. On motion detected, switch to active mode (ActiveFPS)
// 3. After 2s without motion, switch back to idle mode
func (a *App) runCapture() {
	defer a.wg.Done()

	lastMotionTime := time.Now()
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	a.mu.RLock()
	stopCh := a.stopCh
	a.mu.RUnlock()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled
			if !a.IsEnabled() {
				continue
			}

			mat, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}
			frame := capture.Frame{Mat: mat, Timestamp: time.Now()}

			motionDetected, _ := a.motion.Detect(frame.Mat)

			if motionDetected {
				lastMotionTime = frame.Timestamp

				if !a.isActive() {
					a.setActive(true)
					a.Camera().SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if a.isActive() {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					a.setActive(false)
					a.Camera().SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// The queue owns the frame from here; it releases the
			// buffer itself on eviction or shutdown.
			a.queue.Push(frame)
		}
	}
}

// runInference is the single consumer of the frame queue. It runs hand
// detection, extracts validated poses, classifies them, and drives one
// stabilizer per hand slot. All stabilizer state is owned by this
// goroutine.
func (a *App) runInference() {
	defer a.wg.Done()

	for {
		frame, ok := a.queue.Pop()
		if !ok {
			return
		}
		a.processFrame(frame)
	}
}

// processFrame runs one frame through detection, classification and
// stabilization, emitting any confirmed events.
func (a *App) processFrame(frame capture.Frame) {
	defer frame.Close()

	// In idle mode hands are not expected; let the stabilizers time out
	// instead of paying for inference on every idle frame.
	if !a.isActive() {
		a.observeNoHands(frame.Timestamp)
		return
	}

	det := a.Detector()
	if det == nil {
		return
	}

	hands, err := det.Detect(frame.Mat)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return
	}

	seen := 0
	for i := range hands {
		if seen >= len(a.stabilizers) {
			break
		}

		// Hands that fail landmark validation are treated as absent
		// rather than classified from unreliable geometry.
		handPose, ok := a.extractor.Extract(hands[i])
		if !ok {
			continue
		}

		label, confidence := a.classifier.Classify(handPose)
		sample := gesture.Sample{
			Label:      label,
			Confidence: confidence,
			Timestamp:  frame.Timestamp,
		}

		slot := seen
		seen++

		if event, emitted := a.stabilizers[slot].Observe(sample); emitted {
			a.publish(Event{
				Label:      event.Label,
				Confidence: event.Confidence,
				Slot:       slot,
				Handedness: handPose.Handedness,
				Timestamp:  event.Timestamp,
			})
		}
	}

	// Slots with no usable hand this frame tick toward their idle timeout.
	for slot := seen; slot < len(a.stabilizers); slot++ {
		if event, emitted := a.stabilizers[slot].ObserveNoHand(frame.Timestamp); emitted {
			a.publish(Event{
				Label:      event.Label,
				Confidence: event.Confidence,
				Slot:       slot,
				Timestamp:  event.Timestamp,
			})
		}
	}
}

// observeNoHands ticks every stabilizer's idle timeout.
func (a *App) observeNoHands(now time.Time) {
	for slot, s := range a.stabilizers {
		if event, emitted := s.ObserveNoHand(now); emitted {
			a.publish(Event{
				Label:      event.Label,
				Confidence: event.Confidence,
				Slot:       slot,
				Timestamp:  event.Timestamp,
			})
		}
	}
}
