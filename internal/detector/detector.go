package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmark sets.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]RawHand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinDetectionScore is the minimum per-hand detection score (0.0-1.0).
	// Hands scoring below it are dropped before extraction.
	MinDetectionScore float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:          2,
		MinDetectionScore: 0.5,
	}
}
