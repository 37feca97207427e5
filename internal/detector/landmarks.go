// Package detector provides hand landmark inference for gesture recognition.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the model. The empty string means the model
// supplied no handedness metadata; it is never guessed from geometry.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// Landmark is a single joint sample in source-frame pixel space.
// X and Y are pixel coordinates of the original frame, Z is depth on the same
// scale. Confidence is in [0,1] and comes directly from the model output.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Confidence float64 `json:"confidence"`
}

// RawHand is one detected hand as reported by the model: the full set of 21
// landmarks, an overall detection score, and optional handedness metadata.
// It is raw model output; validation happens downstream in the pose package.
type RawHand struct {
	Landmarks  [NumLandmarks]Landmark `json:"landmarks"`
	Handedness string                 `json:"handedness"`
	Score      float64                `json:"score"`
}
