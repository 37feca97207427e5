package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger order used throughout the package.
const (
	thumb = iota
	index
	middle
	ring
	pinky
	numFingers
)

// fingerJoints maps each finger to its four chain joints: cmc/mcp/ip/tip
// for the thumb, mcp/pip/dip/tip for the rest.
var fingerJoints = [numFingers][4]int{
	{detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	{detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	{detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
}

type vec struct{ x, y, z float64 }

func sub(a, b detector.Landmark) vec {
	return vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func dist(a, b detector.Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func dot(a, b vec) float64 {
	return a.x*b.x + a.y*b.y + a.z*b.z
}

func unit(v vec) vec {
	l := math.Sqrt(v.x*v.x + v.y*v.y + v.z*v.z)
	if l < 1e-9 {
		return vec{}
	}
	return vec{v.x / l, v.y / l, v.z / l}
}

// straightness is the average cosine between consecutive bone directions:
// 1.0 for a perfectly straight chain, near or below zero when folded back.
func straightness(a, b, c vec) float64 {
	ab := dot(unit(a), unit(b))
	bc := dot(unit(b), unit(c))
	s := (ab + bc) / 2
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// normalize translates landmarks to the skeleton bounding-box origin and
// scales them so the larger bounding span is 1. All curl metrics operate on
// this space, which makes them invariant to distance from the camera.
func normalize(lms *[detector.NumLandmarks]detector.Landmark) [detector.NumLandmarks]detector.Landmark {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for i := range lms {
		minX = math.Min(minX, lms[i].X)
		minY = math.Min(minY, lms[i].Y)
		maxX = math.Max(maxX, lms[i].X)
		maxY = math.Max(maxY, lms[i].Y)
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span < 1e-3 {
		span = 1e-3
	}

	var out [detector.NumLandmarks]detector.Landmark
	for i := range lms {
		out[i] = detector.Landmark{
			X:          (lms[i].X - minX) / span,
			Y:          (lms[i].Y - minY) / span,
			Z:          lms[i].Z / span,
			Confidence: lms[i].Confidence,
		}
	}
	return out
}

// palmWidth is the reference distance between the index and pinky knuckles,
// used to scale fingertip-distance thresholds (e.g. the thumb-index pinch)
// against camera distance.
func palmWidth(lms *[detector.NumLandmarks]detector.Landmark) float64 {
	return dist(lms[detector.IndexMCP], lms[detector.PinkyMCP])
}

// fingerMetrics are the curl measurements for one finger over normalized
// landmarks. extension and reach are tip advances past the pip and mcp
// joints as seen from the wrist; spread is thumb-only: the tip's distance to
// the nearer of the index/pinky knuckles.
type fingerMetrics struct {
	tipWrist     float64
	extension    float64
	reach        float64
	straightness float64
	spread       float64
}

func measureFinger(lms *[detector.NumLandmarks]detector.Landmark, finger int) fingerMetrics {
	joints := fingerJoints[finger]
	wrist := lms[detector.Wrist]
	mcp := lms[joints[0]]
	pip := lms[joints[1]]
	dip := lms[joints[2]]
	tip := lms[joints[3]]

	m := fingerMetrics{
		tipWrist:     dist(tip, wrist),
		extension:    dist(tip, wrist) - dist(pip, wrist),
		reach:        dist(tip, wrist) - dist(mcp, wrist),
		straightness: straightness(sub(pip, mcp), sub(dip, pip), sub(tip, dip)),
	}

	if finger == thumb {
		// The thumb chain is cmc/mcp/ip/tip, so the advance references shift
		// one joint toward the tip.
		m.extension = dist(tip, wrist) - dist(dip, wrist)
		m.reach = dist(tip, wrist) - dist(pip, wrist)
		m.spread = math.Min(dist(tip, lms[detector.IndexMCP]), dist(tip, lms[detector.PinkyMCP]))
	}
	return m
}
