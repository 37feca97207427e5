package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []RawHand
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []RawHand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]RawHand, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// MockEngine is a test implementation of the Engine interface. It returns
// pre-configured outputs and records the last input tensor it received.
type MockEngine struct {
	Shape     TensorShape
	Outputs   *Outputs
	Err       error
	LastInput []float32
	Closed    bool
}

// NewMockEngine creates a MockEngine with the standard input shape.
func NewMockEngine() *MockEngine {
	return &MockEngine{Shape: InputShape}
}

// InputShape returns the configured tensor shape.
func (m *MockEngine) InputShape() TensorShape {
	return m.Shape
}

// Infer records the input and returns the pre-configured outputs or error.
func (m *MockEngine) Infer(input []float32) (*Outputs, error) {
	m.LastInput = input
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Outputs == nil {
		return &Outputs{}, nil
	}
	return m.Outputs, nil
}

// Close marks the engine as closed.
func (m *MockEngine) Close() error {
	m.Closed = true
	return nil
}
