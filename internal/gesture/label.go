// Package gesture classifies a single hand pose into a manual-alphabet label.
//
// A frame is classified by an Arbiter, which prefers a learned model and falls
// back to a hand-authored rule table. Nothing is carried between frames: the
// same landmarks always produce the same label.
package gesture

import "errors"

// Label is the symbol emitted for one frame.
type Label string

// Sentinel and phrase labels.
const (
	LabelNoHand    Label = "No Hand Detected"
	LabelNotLetter Label = "Not a letter of the alphabet!"
	LabelNotInASL  Label = "Not in ASL"
	LabelILoveYou  Label = "I LOVE YOU!"
)

// Alphabet is the ordered letter table the learned model's output indices map into.
var Alphabet = [26]Label{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
}

// IsSentinel reports whether l signals an indeterminate frame rather than a sign.
func (l Label) IsSentinel() bool {
	switch l {
	case LabelNoHand, LabelNotLetter, LabelNotInASL:
		return true
	}
	return false
}

// Errors returned by the classifiers. The Arbiter recovers from all of them.
var (
	ErrInvalidPoseShape        = errors.New("invalid pose shape")
	ErrDegenerateNormalization = errors.New("degenerate normalization")
	ErrModelUnavailable        = errors.New("model unavailable")
	ErrInferenceFailure        = errors.New("inference failed")
	ErrMultipleHands           = errors.New("multiple hands")
)
