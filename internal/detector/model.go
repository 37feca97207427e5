package detector

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Model input/output contract for the hand-pose network. The input is a
// single 224x224 RGB tensor with pixel values scaled to [0,1]; the output is
// 21 x (x, y, z, confidence) per detected hand in letterboxed input
// coordinates, plus a detection score and a handedness score per hand.
const (
	// InputSize is the fixed input resolution of the hand-pose network.
	InputSize = 224

	inputChannels  = 3
	landmarkStride = 4
)

// TensorShape describes a fixed NHWC tensor dimensionality.
type TensorShape [4]int

func (s TensorShape) String() string {
	return fmt.Sprintf("%dx%dx%dx%d", s[0], s[1], s[2], s[3])
}

// InputShape is the tensor shape the pipeline feeds to every engine.
var InputShape = TensorShape{1, InputSize, InputSize, inputChannels}

// Outputs holds the raw tensors produced by one forward pass.
type Outputs struct {
	// Landmarks is 21*4 values per hand (x, y, z, confidence), with x and y
	// in letterboxed input-pixel coordinates.
	Landmarks []float32

	// Scores is the per-hand detection score.
	Scores []float32

	// Handedness is the per-hand right-hand probability, or a negative value
	// when the model provides no handedness output.
	Handedness []float32
}

// Engine runs one forward pass of the hand-pose network. Implementations are
// not required to be safe for concurrent calls; Model serializes access on
// the single inference goroutine.
type Engine interface {
	InputShape() TensorShape
	Infer(input []float32) (*Outputs, error)
	Close() error
}

// Model implements Detector on top of a narrow Engine capability. It owns
// preprocessing (letterbox to the network resolution) and postprocessing
// (denormalizing landmarks back into source-frame pixel space). It holds no
// state across calls.
type Model struct {
	engine Engine
	config Config
}

// NewModel wraps an engine after verifying its tensor contract. A shape
// mismatch is a startup failure, reported and never retried.
func NewModel(engine Engine, config Config) (*Model, error) {
	if got := engine.InputShape(); got != InputShape {
		return nil, fmt.Errorf("engine input tensor is %s, want %s", got, InputShape)
	}
	if config.MaxHands <= 0 {
		config.MaxHands = DefaultConfig().MaxHands
	}
	return &Model{engine: engine, config: config}, nil
}

// Detect runs inference on a single frame. The frame is borrowed only for
// the duration of the call. Errors are per-frame: the caller should log and
// treat them as zero detections.
func (m *Model) Detect(frame *gocv.Mat) ([]RawHand, error) {
	input, box, err := prepareFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("prepare frame: %w", err)
	}

	out, err := m.engine.Infer(input)
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}

	return decodeHands(out, box, m.config)
}

// Close shuts down the underlying engine.
func (m *Model) Close() error {
	return m.engine.Close()
}

// letterbox records how a frame was fitted into the network input so that
// landmarks can be projected back into source-frame pixel coordinates.
type letterbox struct {
	scale float64
	padX  float64
	padY  float64
	origW int
	origH int
}

// prepareFrame letterboxes a frame into the fixed network input: scale to
// fit 224x224 preserving aspect ratio, pad with black, convert to RGB, and
// scale pixel values to [0,1]. Deterministic for identical input bytes.
func prepareFrame(frame *gocv.Mat) ([]float32, letterbox, error) {
	if frame == nil || frame.Empty() {
		return nil, letterbox{}, fmt.Errorf("empty frame")
	}

	w := frame.Cols()
	h := frame.Rows()
	longest := w
	if h > longest {
		longest = h
	}
	scale := float64(InputSize) / float64(longest)
	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	switch frame.Channels() {
	case 1:
		gocv.CvtColor(*frame, &bgr, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(*frame, &bgr, gocv.ColorBGRAToBGR)
	default:
		frame.CopyTo(&bgr)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(bgr, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationLinear)

	padX := (InputSize - newW) / 2
	padY := (InputSize - newH) / 2
	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(resized, &padded,
		padY, InputSize-newH-padY, padX, InputSize-newW-padX,
		gocv.BorderConstant, color.RGBA{0, 0, 0, 255})

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(padded, &rgb, gocv.ColorBGRToRGB)

	data := rgb.ToBytes()
	want := InputSize * InputSize * inputChannels
	if len(data) != want {
		return nil, letterbox{}, fmt.Errorf("letterboxed frame is %d bytes, want %d", len(data), want)
	}

	input := make([]float32, want)
	for i, b := range data {
		input[i] = float32(b) / 255.0
	}

	box := letterbox{
		scale: scale,
		padX:  float64(padX),
		padY:  float64(padY),
		origW: w,
		origH: h,
	}
	return input, box, nil
}

// decodeHands converts raw output tensors into RawHand values in
// source-frame pixel space, dropping hands below the detection score
// threshold and capping at MaxHands.
func decodeHands(out *Outputs, box letterbox, config Config) ([]RawHand, error) {
	numHands := len(out.Scores)
	if len(out.Landmarks) != numHands*NumLandmarks*landmarkStride {
		return nil, fmt.Errorf("landmark tensor has %d values for %d hands, want %d",
			len(out.Landmarks), numHands, numHands*NumLandmarks*landmarkStride)
	}

	var hands []RawHand
	for i := 0; i < numHands && len(hands) < config.MaxHands; i++ {
		score := clamp01(float64(out.Scores[i]))
		if score < config.MinDetectionScore {
			continue
		}

		hand := RawHand{
			Score:      score,
			Handedness: handednessLabel(out.Handedness, i),
		}
		base := i * NumLandmarks * landmarkStride
		for j := 0; j < NumLandmarks; j++ {
			off := base + j*landmarkStride
			hand.Landmarks[j] = Landmark{
				X:          projectX(float64(out.Landmarks[off]), box),
				Y:          projectY(float64(out.Landmarks[off+1]), box),
				Z:          float64(out.Landmarks[off+2]) / box.scale,
				Confidence: clamp01(float64(out.Landmarks[off+3])),
			}
		}
		hands = append(hands, hand)
	}
	return hands, nil
}

func handednessLabel(scores []float32, i int) string {
	if i >= len(scores) || scores[i] < 0 {
		return ""
	}
	if scores[i] >= 0.5 {
		return HandRight
	}
	return HandLeft
}

func projectX(x float64, box letterbox) float64 {
	px := (x - box.padX) / box.scale
	return clampRange(px, 0, float64(box.origW-1))
}

func projectY(y float64, box letterbox) float64 {
	py := (y - box.padY) / box.scale
	return clampRange(py, 0, float64(box.origH-1))
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
