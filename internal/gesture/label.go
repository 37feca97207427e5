// Package gesture classifies validated hand poses into gesture labels using
// geometric rules over the 21-point skeleton.
package gesture

import "time"

// Label identifies a recognized gesture. LabelNone is a first-class value
// meaning "pose present, no gesture matched", not an error.
type Label string

const (
	LabelNone        Label = "none"
	LabelVictory     Label = "victory"
	LabelOK          Label = "ok"
	LabelThumbsUp    Label = "thumbs_up"
	LabelPointing    Label = "pointing"
	LabelILoveYou    Label = "i_love_you"
	LabelFingerHeart Label = "finger_heart"
	LabelFist        Label = "fist"
	LabelOpenHand    Label = "open_hand"
)

// Labels lists every recognizable gesture in classifier priority order.
func Labels() []Label {
	return []Label{
		LabelOK,
		LabelFingerHeart,
		LabelILoveYou,
		LabelVictory,
		LabelThumbsUp,
		LabelPointing,
		LabelFist,
		LabelOpenHand,
	}
}

// Sample is the raw per-frame classifier output, consumed immediately by the
// stabilizer.
type Sample struct {
	Label      Label
	Confidence float64
	Timestamp  time.Time
}
