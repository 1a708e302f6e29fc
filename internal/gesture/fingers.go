package gesture

import (
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// ProximityThreshold is the distance, in normalized image units, below which
// two landmarks count as touching. Tuned, not derived.
const ProximityThreshold = 0.085

// Finger identifies one of the five digits.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	numFingers
)

var fingerNames = [numFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || f >= numFingers {
		return fmt.Sprintf("Finger(%d)", int(f))
	}
	return fingerNames[f]
}

// fingerJoints holds the reference joint followed by the two distal joints.
var fingerJoints = [numFingers][3]int{
	Thumb:  {detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	Index:  {detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	Middle: {detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	Ring:   {detector.RingPIP, detector.RingDIP, detector.RingTip},
	Pinky:  {detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
}

// FingerStates records which fingers are open, indexed by Finger.
type FingerStates [numFingers]bool

func (s FingerStates) String() string {
	b := make([]byte, numFingers)
	for i, open := range s {
		if open {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Pose is the ordered landmark list of one hand.
type Pose []detector.Landmark

// Validate checks that p holds exactly 21 finite landmarks.
func (p Pose) Validate() error {
	if len(p) != detector.NumLandmarks {
		return fmt.Errorf("%w: got %d landmarks, want %d", ErrInvalidPoseShape, len(p), detector.NumLandmarks)
	}
	for i, l := range p {
		if !isFinite(l.X) || !isFinite(l.Y) {
			return fmt.Errorf("%w: landmark %d is not finite", ErrInvalidPoseShape, i)
		}
	}
	return nil
}

// Close reports whether landmarks i and j are within ProximityThreshold.
func (p Pose) Close(i, j int) bool {
	return Close(p[i], p[j])
}

// Close reports whether a and b lie strictly closer than ProximityThreshold.
func Close(a, b detector.Landmark) bool {
	return detector.Distance(a, b) < ProximityThreshold
}

// ExtractFingers computes the open/closed state of each finger. A finger is
// open when both distal joints sit strictly above (smaller Y) its reference
// joint; the thumb compares X instead. p must be a valid pose.
func ExtractFingers(p Pose) FingerStates {
	var s FingerStates
	for f := Thumb; f < numFingers; f++ {
		j := fingerJoints[f]
		coord := func(l detector.Landmark) float64 { return l.Y }
		if f == Thumb {
			coord = func(l detector.Landmark) float64 { return l.X }
		}
		ref := coord(p[j[0]])
		s[f] = coord(p[j[1]]) < ref && coord(p[j[2]]) < ref
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
