package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/pose"
)

// Config holds the geometric thresholds for gesture classification. All
// values are in normalized skeleton space (bounding span = 1) except
// PinchMaxDistance, which is in palm widths.
type Config struct {
	// Finger extended: all three must hold.
	FingerExtendedMinExtension    float64
	FingerExtendedMinStraightness float64
	FingerExtendedMinReach        float64

	// Finger folded: any one suffices.
	FingerFoldedMaxExtension    float64
	FingerFoldedMaxStraightness float64
	FingerFoldedMaxReach        float64

	// Thumb extended: all three must hold.
	ThumbExtendedMinTipWrist     float64
	ThumbExtendedMinStraightness float64
	ThumbExtendedMinExtension    float64

	// Thumb folded: tucked near a knuckle (spread, in bounding-span units)
	// and either bent or short.
	ThumbFoldedMaxSpread       float64
	ThumbFoldedMaxStraightness float64
	ThumbFoldedMaxReach        float64

	// PinchMaxDistance is the maximum thumb-tip to index-tip distance, in
	// palm widths, for the two tips to count as touching (OK, finger heart).
	PinchMaxDistance float64
}

// DefaultConfig returns the classification thresholds tuned against the
// 21-point skeleton. Curl thresholds follow the relaxed values that keep
// half-bent fingers (especially the pinky) from reading as extended.
func DefaultConfig() Config {
	return Config{
		FingerExtendedMinExtension:    0.12,
		FingerExtendedMinStraightness: 0.40,
		FingerExtendedMinReach:        0.06,
		FingerFoldedMaxExtension:      0.08,
		FingerFoldedMaxStraightness:   0.18,
		FingerFoldedMaxReach:          0.05,
		ThumbExtendedMinTipWrist:      0.30,
		ThumbExtendedMinStraightness:  0.28,
		ThumbExtendedMinExtension:     0.05,
		ThumbFoldedMaxSpread:          0.60,
		ThumbFoldedMaxStraightness:    0.28,
		ThumbFoldedMaxReach:           0.15,
		PinchMaxDistance:              0.35,
	}
}

// features are the per-pose measurements shared by every rule predicate.
type features struct {
	fingers [numFingers]fingerMetrics
	pinch   float64 // thumb-tip to index-tip distance in palm widths
}

// rule pairs a label with its predicate. The predicate returns a margin in
// (0,1]: how comfortably the weakest sub-condition cleared its threshold.
// A margin <= 0 means no match.
type rule struct {
	label Label
	match func(c *Config, f *features) float64
}

// Classifier maps validated hand poses to gesture labels. It is stateless
// and deterministic: identical landmarks always produce the same result.
type Classifier struct {
	config Config
	rules  []rule
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config Config) *Classifier {
	return &Classifier{
		config: config,
		rules:  buildRules(),
	}
}

// Classify evaluates the rule table in priority order and returns the first
// matching label. Confidence is the minimum of the pose detection score and
// the rule margin, so borderline matches report low confidence and can be
// filtered upstream. An unmatched pose returns LabelNone with the pose
// score; that is a normal outcome, not an error.
func (c *Classifier) Classify(p pose.HandPose) (Label, float64) {
	f := measure(&p.Landmarks)

	for _, r := range c.rules {
		margin := r.match(&c.config, &f)
		if margin > 0 {
			return r.label, math.Min(p.Score, margin)
		}
	}
	return LabelNone, p.Score
}

func measure(lms *[detector.NumLandmarks]detector.Landmark) features {
	norm := normalize(lms)

	var f features
	for finger := 0; finger < numFingers; finger++ {
		f.fingers[finger] = measureFinger(&norm, finger)
	}

	pw := palmWidth(&norm)
	if pw < 1e-6 {
		f.pinch = math.Inf(1)
	} else {
		f.pinch = dist(norm[detector.ThumbTip], norm[detector.IndexTip]) / pw
	}
	return f
}

// buildRules returns the gesture rule table in priority order. Rules whose
// signatures overlap are made mutually exclusive by their finger-state
// conjunctions, and the more specific rule always comes first, so at most
// one rule fires for any pose and ambiguous poses resolve deterministically.
func buildRules() []rule {
	return []rule{
		{LabelOK, func(c *Config, f *features) float64 {
			return minMargin(
				pinched(c, f),
				extended(c, f, middle),
				extended(c, f, ring),
				extended(c, f, pinky),
			)
		}},
		{LabelFingerHeart, func(c *Config, f *features) float64 {
			return minMargin(
				pinched(c, f),
				folded(c, f, middle),
				folded(c, f, ring),
				folded(c, f, pinky),
			)
		}},
		{LabelILoveYou, func(c *Config, f *features) float64 {
			return minMargin(
				thumbExtended(c, f),
				extended(c, f, index),
				folded(c, f, middle),
				folded(c, f, ring),
				extended(c, f, pinky),
			)
		}},
		{LabelVictory, func(c *Config, f *features) float64 {
			return minMargin(
				thumbNotExtended(c, f),
				extended(c, f, index),
				extended(c, f, middle),
				folded(c, f, ring),
				folded(c, f, pinky),
			)
		}},
		{LabelThumbsUp, func(c *Config, f *features) float64 {
			return minMargin(
				thumbExtended(c, f),
				notPinched(c, f),
				folded(c, f, index),
				folded(c, f, middle),
				folded(c, f, ring),
				folded(c, f, pinky),
			)
		}},
		{LabelPointing, func(c *Config, f *features) float64 {
			return minMargin(
				thumbNotExtended(c, f),
				extended(c, f, index),
				folded(c, f, middle),
				folded(c, f, ring),
				folded(c, f, pinky),
			)
		}},
		{LabelFist, func(c *Config, f *features) float64 {
			return minMargin(
				thumbFolded(c, f),
				notPinched(c, f),
				folded(c, f, index),
				folded(c, f, middle),
				folded(c, f, ring),
				folded(c, f, pinky),
			)
		}},
		{LabelOpenHand, func(c *Config, f *features) float64 {
			return minMargin(
				thumbExtended(c, f),
				extended(c, f, index),
				extended(c, f, middle),
				extended(c, f, ring),
				extended(c, f, pinky),
			)
		}},
	}
}

// Margin spans: the clearance past a threshold at which a condition counts
// as fully satisfied (margin 1). A clean pose sits at least a span beyond
// every threshold it must clear, so canonical gestures saturate toward 1
// while borderline poses report proportionally lower confidence.
const (
	extensionSpan    = 0.10
	straightnessSpan = 0.30
	reachSpan        = 0.15
	tipWristSpan     = 0.30
	pinchSpan        = 0.35
	spreadSpan       = 0.15
)

// above and below convert a threshold comparison into a margin: positive
// when the condition holds, 1 once the value clears the threshold by span,
// clamped so a single slack condition cannot inflate confidence.
func above(v, threshold, span float64) float64 {
	return clampMargin((v - threshold) / span)
}

func below(v, threshold, span float64) float64 {
	return clampMargin((threshold - v) / span)
}

func clampMargin(m float64) float64 {
	if m > 1 {
		return 1
	}
	return m
}

func minMargin(margins ...float64) float64 {
	m := margins[0]
	for _, v := range margins[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxMargin(margins ...float64) float64 {
	m := margins[0]
	for _, v := range margins[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// extended holds when a non-thumb finger clears all three extension
// conditions; the margin is the weakest of them.
func extended(c *Config, f *features, finger int) float64 {
	m := f.fingers[finger]
	return minMargin(
		above(m.extension, c.FingerExtendedMinExtension, extensionSpan),
		above(m.straightness, c.FingerExtendedMinStraightness, straightnessSpan),
		above(m.reach, c.FingerExtendedMinReach, reachSpan),
	)
}

// folded holds when any of the three curl conditions trips.
func folded(c *Config, f *features, finger int) float64 {
	m := f.fingers[finger]
	return maxMargin(
		below(m.extension, c.FingerFoldedMaxExtension, extensionSpan),
		below(m.straightness, c.FingerFoldedMaxStraightness, straightnessSpan),
		below(m.reach, c.FingerFoldedMaxReach, reachSpan),
	)
}

func thumbExtended(c *Config, f *features) float64 {
	m := f.fingers[thumb]
	return minMargin(
		above(m.tipWrist, c.ThumbExtendedMinTipWrist, tipWristSpan),
		above(m.straightness, c.ThumbExtendedMinStraightness, straightnessSpan),
		above(m.extension, c.ThumbExtendedMinExtension, extensionSpan),
	)
}

// thumbNotExtended is the complement of thumbExtended: its margin is the
// largest violation of the extended conjunction, which keeps the two
// predicates mutually exclusive by construction.
func thumbNotExtended(c *Config, f *features) float64 {
	m := f.fingers[thumb]
	return maxMargin(
		below(m.tipWrist, c.ThumbExtendedMinTipWrist, tipWristSpan),
		below(m.straightness, c.ThumbExtendedMinStraightness, straightnessSpan),
		below(m.extension, c.ThumbExtendedMinExtension, extensionSpan),
	)
}

// thumbFolded is stricter than thumbNotExtended: the thumb must be tucked
// close to a knuckle and additionally bent or pulled short. A half-bent
// thumb fails both this and thumbExtended, which is the distinction the
// fist rule depends on.
func thumbFolded(c *Config, f *features) float64 {
	m := f.fingers[thumb]
	return minMargin(
		below(m.spread, c.ThumbFoldedMaxSpread, spreadSpan),
		maxMargin(
			below(m.straightness, c.ThumbFoldedMaxStraightness, straightnessSpan),
			below(m.reach, c.ThumbFoldedMaxReach, reachSpan),
		),
	)
}

func pinched(c *Config, f *features) float64 {
	return below(f.pinch, c.PinchMaxDistance, pinchSpan)
}

func notPinched(c *Config, f *features) float64 {
	return above(f.pinch, c.PinchMaxDistance, pinchSpan)
}
