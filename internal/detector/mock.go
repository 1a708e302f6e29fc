package detector

import (
	"sort"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []Hand
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Preset layout. Finger columns are 0.10 apart so that no two landmarks the
// rule table inspects are within proximity range unless a preset moves them.
const (
	thumbColumn = 0.70
	mcpRow      = 0.60
	pipRow      = 0.45
)

var fingerColumns = [4]float64{0.40, 0.30, 0.20, 0.10} // index, middle, ring, pinky

// FingerPose returns a synthetic right-hand pose whose fingers are open or
// closed as requested, in thumb, index, middle, ring, pinky order.
func FingerPose(thumb, index, middle, ring, pinky bool) []Landmark {
	p := make([]Landmark, NumLandmarks)

	p[Wrist] = Landmark{X: 0.50, Y: 0.90}
	p[ThumbCMC] = Landmark{X: 0.62, Y: 0.82}
	p[ThumbMCP] = Landmark{X: thumbColumn, Y: 0.75}
	if thumb {
		p[ThumbIP] = Landmark{X: 0.66, Y: 0.68}
		p[ThumbTip] = Landmark{X: 0.62, Y: 0.62}
	} else {
		p[ThumbIP] = Landmark{X: 0.76, Y: 0.70}
		p[ThumbTip] = Landmark{X: 0.80, Y: 0.66}
	}

	open := [4]bool{index, middle, ring, pinky}
	for f := 0; f < 4; f++ {
		base := IndexMCP + 4*f
		x := fingerColumns[f]
		p[base] = Landmark{X: x, Y: mcpRow}
		p[base+1] = Landmark{X: x, Y: pipRow}
		if open[f] {
			p[base+2] = Landmark{X: x, Y: 0.32}
			p[base+3] = Landmark{X: x, Y: 0.20}
		} else {
			p[base+2] = Landmark{X: x, Y: 0.52}
			p[base+3] = Landmark{X: x, Y: 0.58}
		}
	}

	return p
}

var letterPoses = map[string]func() []Landmark{
	"C": func() []Landmark { return FingerPose(true, true, true, true, true) },
	"B": func() []Landmark { return FingerPose(false, true, true, true, true) },
	"D": func() []Landmark { return FingerPose(false, true, false, false, false) },
	"U": func() []Landmark {
		p := FingerPose(false, true, true, false, false)
		p[MiddlePIP] = Landmark{X: 0.34, Y: pipRow}
		p[MiddleDIP] = Landmark{X: 0.30, Y: 0.32}
		p[MiddleTip] = Landmark{X: 0.28, Y: 0.20}
		return p
	},
	"R": func() []Landmark {
		p := FingerPose(false, true, true, false, false)
		p[MiddlePIP] = Landmark{X: 0.34, Y: pipRow}
		p[MiddleDIP] = Landmark{X: 0.38, Y: 0.32}
		p[MiddleTip] = Landmark{X: 0.42, Y: 0.20}
		return p
	},
	"K": func() []Landmark {
		p := FingerPose(false, true, true, false, false)
		p[ThumbTip] = Landmark{X: 0.42, Y: 0.48}
		return p
	},
	"V": func() []Landmark { return FingerPose(false, true, true, false, false) },
	"W": func() []Landmark { return FingerPose(false, true, true, true, false) },
	"I LOVE YOU!": func() []Landmark {
		return FingerPose(true, true, false, false, true)
	},
	"Y": func() []Landmark { return FingerPose(true, false, false, false, true) },
	"P": func() []Landmark {
		p := FingerPose(true, true, true, false, false)
		p[ThumbTip] = Landmark{X: 0.44, Y: 0.47}
		return p
	},
	"S": func() []Landmark {
		p := FingerPose(false, false, false, false, false)
		p[ThumbIP] = Landmark{X: 0.44, Y: 0.55}
		return p
	},
	"T": func() []Landmark {
		p := FingerPose(true, false, false, false, false)
		p[ThumbTip] = Landmark{X: 0.32, Y: 0.62}
		return p
	},
	"O": func() []Landmark {
		p := FingerPose(true, false, false, false, false)
		p[ThumbTip] = Landmark{X: 0.42, Y: 0.57}
		return p
	},
	"A": func() []Landmark { return FingerPose(true, false, false, false, false) },
	"I": func() []Landmark { return FingerPose(false, false, false, false, true) },
	"F": func() []Landmark {
		p := FingerPose(false, false, true, true, true)
		p[ThumbTip] = Landmark{X: 0.41, Y: 0.60}
		return p
	},
	"L": func() []Landmark { return FingerPose(true, true, false, false, false) },
	"E": func() []Landmark { return FingerPose(false, false, false, false, false) },
	"H": func() []Landmark { return FingerPose(true, true, true, false, false) },
}

// LetterPose returns a preset pose that the rule table classifies as label.
// The second return value is false when no preset exists.
func LetterPose(label string) ([]Landmark, bool) {
	build, ok := letterPoses[label]
	if !ok {
		return nil, false
	}
	return build(), true
}

// LetterPoseLabels returns the labels that have presets, sorted.
func LetterPoseLabels() []string {
	labels := make([]string, 0, len(letterPoses))
	for l := range letterPoses {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// LetterHand wraps a preset pose in a Hand with a derived bounding rectangle.
func LetterHand(label string) (Hand, bool) {
	p, ok := LetterPose(label)
	if !ok {
		return Hand{}, false
	}
	h := NewHand(p)
	h.Handedness = "Right"
	h.Score = 0.95
	return h, true
}
