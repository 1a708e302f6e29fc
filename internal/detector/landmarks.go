// Package detector provides the hand landmark data contract and the upstream
// detectors that produce it.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Landmark is a 2D keypoint in normalized image coordinates. Y grows downward.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the normalized region a hand was detected in.
type Rect struct {
	XCenter float64 `json:"x_center"`
	YCenter float64 `json:"y_center"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Hand is a single detected hand. Landmarks is positionally indexed by the
// constants above; detectors never reorder it.
type Hand struct {
	Landmarks  []Landmark `json:"landmarks"`
	Rect       Rect       `json:"rect"`
	Handedness string     `json:"handedness"` // "Left" or "Right"
	Score      float64    `json:"score"`
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BoundingRect returns the axis-aligned rectangle enclosing points.
// An empty slice yields the zero Rect.
func BoundingRect(points []Landmark) Rect {
	if len(points) == 0 {
		return Rect{}
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	return Rect{
		XCenter: (minX + maxX) / 2,
		YCenter: (minY + maxY) / 2,
		Width:   maxX - minX,
		Height:  maxY - minY,
	}
}

// NewHand builds a Hand from landmarks and derives its bounding rectangle.
func NewHand(landmarks []Landmark) Hand {
	return Hand{
		Landmarks: landmarks,
		Rect:      BoundingRect(landmarks),
	}
}
