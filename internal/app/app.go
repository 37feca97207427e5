// Package app provides the main application logic for the Mudra gesture recognition system.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pose"
	"github.com/ayusman/mudra/internal/stabilize"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// FrameQueueSize is the capacity of the frame queue between capture and inference.
	FrameQueueSize = 2
	// EventBufferSize is the capacity of the outgoing event channel.
	EventBufferSize = 32
)

// Event is a confirmed gesture transition produced by the pipeline.
type Event struct {
	Label      gesture.Label `json:"label"`
	Confidence float64       `json:"confidence"`
	Slot       int           `json:"slot"`
	Handedness string        `json:"handedness,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
	MaxHands     int
}

// App orchestrates the capture, detection, classification and
// stabilization stages of the gesture pipeline.
type App struct {
	config      Config
	camera      capture.Camera
	motion      *capture.MotionDetector
	queue       *capture.FrameQueue
	detector    detector.Detector
	extractor   *pose.Extractor
	classifier  *gesture.Classifier
	stabilizers []*stabilize.Stabilizer

	events    chan Event
	enabled   bool
	active    bool
	lastEvent *Event
	mu        sync.RWMutex
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}
	maxHands := config.MaxHands
	if maxHands <= 0 {
		maxHands = detector.DefaultConfig().MaxHands
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		queue:      capture.NewFrameQueue(FrameQueueSize),
		extractor:  pose.NewExtractor(pose.DefaultConfig()),
		classifier: gesture.NewClassifier(gesture.DefaultConfig()),
		events:     make(chan Event, EventBufferSize),
		enabled:    false,
		stopCh:     nil,
	}

	// One stabilizer per hand slot so two tracked hands don't fight
	// over a single debounce counter.
	a.stabilizers = make([]*stabilize.Stabilizer, maxHands)
	for i := range a.stabilizers {
		a.stabilizers[i] = stabilize.New(stabilize.DefaultConfig())
	}

	// Try the inference service first, fall back to the mock detector
	detConfig := detector.DefaultConfig()
	detConfig.MaxHands = maxHands
	a.detector = detector.NewMockDetector()
	if engine, err := detector.NewServiceEngine(); err != nil {
		log.Printf("Inference service not available (%v), using mock detector", err)
	} else if m, err := detector.NewModel(engine, detConfig); err != nil {
		log.Printf("Failed to initialize landmark model (%v), using mock detector", err)
		engine.Close()
	} else {
		a.detector = m
		log.Println("Using hand landmark inference service")
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Events returns the channel of confirmed gesture events. Events are
// dropped when the channel is full so a slow consumer never stalls
// the inference loop.
func (a *App) Events() <-chan Event {
	return a.events
}

// LastEvent returns the most recently emitted event, or nil if none.
func (a *App) LastEvent() *Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastEvent
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)
	a.active = false

	// A fresh queue per run: Stop closes the previous one to unblock
	// the inference loop.
	a.queue = capture.NewFrameQueue(FrameQueueSize)

	// Create stop channel and start the capture and inference loops
	a.stopCh = make(chan struct{})
	a.wg.Add(2)
	go a.runCapture()
	go a.runInference()

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()

	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}

	// Signal the loops to stop
	close(a.stopCh)
	a.stopCh = nil
	a.mu.Unlock()

	// The queue must close so the inference loop unblocks, then wait
	// for both loops before tearing down shared resources.
	a.queue.Close()
	a.wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Store returns the configured event store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// DroppedFrames returns the number of frames discarded because
// inference could not keep up with capture.
func (a *App) DroppedFrames() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.queue.Dropped()
}

func (a *App) isActive() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

func (a *App) setActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = active
}

// publish records, stores and fans out a confirmed gesture event.
func (a *App) publish(event Event) {
	log.Printf("Gesture event: %s (confidence: %.3f, slot: %d)", event.Label, event.Confidence, event.Slot)

	a.mu.Lock()
	e := event
	a.lastEvent = &e
	a.mu.Unlock()

	if a.config.Store != nil {
		record := &store.Event{
			Label:      string(event.Label),
			Confidence: event.Confidence,
			Handedness: event.Handedness,
			Slot:       event.Slot,
			OccurredAt: event.Timestamp,
		}
		if err := a.config.Store.Events().Insert(record); err != nil {
			log.Printf("Failed to record event: %v", err)
		}
	}

	select {
	case a.events <- event:
	default:
		log.Printf("Event channel full, dropping %s event", event.Label)
	}
}
