// Package hook runs user-configured commands when gestures are confirmed.
package hook

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Binding maps a gesture label to a command to execute.
type Binding struct {
	Label   gesture.Label `json:"label"`
	Command string        `json:"command"`
	Args    []string      `json:"args,omitempty"`
	Enabled bool          `json:"enabled"`
}

// Payload is the JSON document a hook command receives on stdin.
type Payload struct {
	Label      gesture.Label `json:"label"`
	Confidence float64       `json:"confidence"`
	Handedness string        `json:"handedness,omitempty"`
	Slot       int           `json:"slot"`
	Timestamp  time.Time     `json:"timestamp"`
}

// hooksFile is the on-disk format of a hooks.json configuration file.
type hooksFile struct {
	Hooks []Binding `json:"hooks"`
}
