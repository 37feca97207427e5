// Package pose validates raw landmark sets into complete hand poses.
package pose

import "github.com/ayusman/mudra/internal/detector"

// DefaultMinLandmarkConfidence is the default per-landmark confidence floor.
// Raising it trades recall for stability: fewer poses reach the classifier,
// but the ones that do are better localized.
const DefaultMinLandmarkConfidence = 0.5

// HandPose is a validated, complete 21-point skeleton for one hand. It is
// only constructed when every landmark passed the confidence floor; partially
// trusted skeletons never leave the extractor.
type HandPose struct {
	Landmarks  [detector.NumLandmarks]detector.Landmark
	Handedness string
	Score      float64
}

// Config holds configuration options for pose extraction.
type Config struct {
	// MinLandmarkConfidence is the minimum per-landmark confidence. A single
	// landmark below it rejects the whole hand.
	MinLandmarkConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinLandmarkConfidence: DefaultMinLandmarkConfidence,
	}
}

// Extractor turns raw landmark sets into validated hand poses. It is a pure
// function of its input and holds no state across calls.
type Extractor struct {
	config Config
}

// NewExtractor creates an Extractor with the given configuration.
func NewExtractor(config Config) *Extractor {
	if config.MinLandmarkConfidence <= 0 {
		config.MinLandmarkConfidence = DefaultMinLandmarkConfidence
	}
	return &Extractor{config: config}
}

// Extract validates a raw hand. It returns false when any landmark falls
// below the confidence floor; that is "no hand", not an error. Handedness is
// carried over from model metadata only, never inferred.
func (e *Extractor) Extract(raw detector.RawHand) (HandPose, bool) {
	for i := range raw.Landmarks {
		if raw.Landmarks[i].Confidence < e.config.MinLandmarkConfidence {
			return HandPose{}, false
		}
	}

	return HandPose{
		Landmarks:  raw.Landmarks,
		Handedness: raw.Handedness,
		Score:      raw.Score,
	}, true
}
