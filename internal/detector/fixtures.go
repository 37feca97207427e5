package detector

import "math"

// Synthetic hand fixtures for tests. Each constructor returns a RawHand in a
// plausible frame-pixel layout: wrist near the bottom of a ~200px region,
// fingers fanning upward, right hand with the thumb on the +x side. Fingers
// are generated as joint chains whose direction rotates by a per-segment
// curl angle, so an extended finger is straight and a folded finger doubles
// back toward the palm.

const (
	fixtureScore      = 0.95
	fixtureConfidence = 0.9

	curlExtended = 0.0
	curlFolded   = 1.7
)

type fixPoint struct{ x, y float64 }

var (
	fixWrist    = fixPoint{100, 180}
	fixThumbCMC = fixPoint{114, 166}

	fixMCP = map[int]fixPoint{
		IndexMCP:  {122, 118},
		MiddleMCP: {102, 112},
		RingMCP:   {84, 118},
		PinkyMCP:  {66, 128},
	}

	fixLengths = map[int][3]float64{
		ThumbCMC:  {20, 16, 14},
		IndexMCP:  {26, 15, 12},
		MiddleMCP: {28, 17, 13},
		RingMCP:   {26, 15, 12},
		PinkyMCP:  {23, 14, 11},
	}

	fixAngles = map[int]float64{
		IndexMCP:  0.15,
		MiddleMCP: 0.0,
		RingMCP:   -0.15,
		PinkyMCP:  -0.25,
	}
)

// chainJoints walks a finger chain from start: each segment advances by its
// length along the current direction (angle measured from straight up, +x
// clockwise), and the direction rotates by curl after every segment.
func chainJoints(start fixPoint, angle float64, lengths [3]float64, curl float64) [3]fixPoint {
	var out [3]fixPoint
	cur := start
	a := angle
	for i, l := range lengths {
		cur = fixPoint{cur.x + l*math.Sin(a), cur.y - l*math.Cos(a)}
		out[i] = cur
		a += curl
	}
	return out
}

type fixtureSpec struct {
	thumbAngle float64
	thumbCurl  float64
	curls      [4]float64 // index, middle, ring, pinky

	// pinchThumb moves the thumb tip next to the index tip (OK, finger heart).
	pinchThumb bool
}

func buildHand(spec fixtureSpec) RawHand {
	hand := RawHand{
		Handedness: HandRight,
		Score:      fixtureScore,
	}

	set := func(i int, p fixPoint) {
		hand.Landmarks[i] = Landmark{X: p.x, Y: p.y, Confidence: fixtureConfidence}
	}

	set(Wrist, fixWrist)
	set(ThumbCMC, fixThumbCMC)
	tj := chainJoints(fixThumbCMC, spec.thumbAngle, fixLengths[ThumbCMC], spec.thumbCurl)
	set(ThumbMCP, tj[0])
	set(ThumbIP, tj[1])
	set(ThumbTip, tj[2])

	for i, mcp := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		set(mcp, fixMCP[mcp])
		joints := chainJoints(fixMCP[mcp], fixAngles[mcp], fixLengths[mcp], spec.curls[i])
		set(mcp+1, joints[0])
		set(mcp+2, joints[1])
		set(mcp+3, joints[2])
	}

	if spec.pinchThumb {
		indexTip := hand.Landmarks[IndexTip]
		hand.Landmarks[ThumbTip] = Landmark{
			X:          indexTip.X + 3,
			Y:          indexTip.Y + 2,
			Confidence: fixtureConfidence,
		}
	}
	return hand
}

// FistHand returns a hand with all fingers curled and the thumb tucked
// across the folded fingers.
func FistHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 0.3, thumbCurl: 1.6,
		curls: [4]float64{curlFolded, curlFolded, curlFolded, curlFolded},
	})
}

// OpenHand returns a hand with all five fingers extended.
func OpenHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 1.0, thumbCurl: 0.05,
		curls: [4]float64{curlExtended, curlExtended, curlExtended, curlExtended},
	})
}

// ThumbsUpHand returns a hand with only the thumb extended.
func ThumbsUpHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 1.0, thumbCurl: 0.05,
		curls: [4]float64{curlFolded, curlFolded, curlFolded, curlFolded},
	})
}

// PointingHand returns a hand with only the index finger extended.
func PointingHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 0.3, thumbCurl: 1.6,
		curls: [4]float64{curlExtended, curlFolded, curlFolded, curlFolded},
	})
}

// VictoryHand returns a hand with index and middle fingers extended.
func VictoryHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 0.3, thumbCurl: 1.6,
		curls: [4]float64{curlExtended, curlExtended, curlFolded, curlFolded},
	})
}

// ILoveYouHand returns a hand with thumb, index and pinky extended.
func ILoveYouHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 1.0, thumbCurl: 0.05,
		curls: [4]float64{curlExtended, curlFolded, curlFolded, curlExtended},
	})
}

// OKHand returns a hand with thumb and index tips touching in a ring and the
// remaining fingers extended.
func OKHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 0.9, thumbCurl: 0.5,
		curls:      [4]float64{1.0, curlExtended, curlExtended, curlExtended},
		pinchThumb: true,
	})
}

// FingerHeartHand returns a hand with thumb and index tips crossed and the
// remaining fingers folded.
func FingerHeartHand() RawHand {
	return buildHand(fixtureSpec{
		thumbAngle: 0.9, thumbCurl: 0.6,
		curls:      [4]float64{1.2, curlFolded, curlFolded, curlFolded},
		pinchThumb: true,
	})
}

// ScaleHand returns a copy of the hand with every coordinate multiplied by
// factor, simulating a change in distance from the camera.
func ScaleHand(hand RawHand, factor float64) RawHand {
	for i := range hand.Landmarks {
		hand.Landmarks[i].X *= factor
		hand.Landmarks[i].Y *= factor
		hand.Landmarks[i].Z *= factor
	}
	return hand
}
