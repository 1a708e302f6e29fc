// Package overlay draws classification results onto video frames.
package overlay

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Style controls label placement. Positions are fractions of the frame size.
type Style struct {
	Left       float64
	Baseline   float64
	FontHeight float64
	Color      color.RGBA
	Thickness  int
}

// DefaultStyle places the label in the top-left corner in cyan.
func DefaultStyle() Style {
	return Style{
		Left:       0.055,
		Baseline:   0.05,
		FontHeight: 0.05,
		Color:      color.RGBA{R: 0, G: 255, B: 255, A: 0},
		Thickness:  4,
	}
}

const font = gocv.FontHersheySimplex

var (
	jointColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	boneColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// HandConnections are the landmark pairs drawn as bones.
var HandConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// DrawLabel renders text onto frame. Empty text and empty frames are ignored.
func DrawLabel(frame *gocv.Mat, text string, style Style) {
	if frame == nil || frame.Empty() || text == "" {
		return
	}

	unit := gocv.GetTextSize(text, font, 1.0, style.Thickness)
	scale := fontScale(frame.Rows(), style.FontHeight, unit.Y)
	origin := textOrigin(frame.Cols(), frame.Rows(), style)

	gocv.PutText(frame, text, origin, font, scale, style.Color, style.Thickness)
}

// DrawHand renders the landmark skeleton of hand onto frame.
func DrawHand(frame *gocv.Mat, hand detector.Hand) {
	if frame == nil || frame.Empty() {
		return
	}

	cols, rows := frame.Cols(), frame.Rows()
	pts := make([]image.Point, len(hand.Landmarks))
	for i, l := range hand.Landmarks {
		pts[i] = toPixel(l, cols, rows)
	}

	for _, c := range HandConnections {
		if c[0] >= len(pts) || c[1] >= len(pts) {
			continue
		}
		gocv.Line(frame, pts[c[0]], pts[c[1]], boneColor, 2)
	}
	for _, p := range pts {
		gocv.Circle(frame, p, 4, jointColor, -1)
	}
}

func toPixel(l detector.Landmark, cols, rows int) image.Point {
	return image.Point{
		X: int(math.Round(l.X * float64(cols))),
		Y: int(math.Round(l.Y * float64(rows))),
	}
}

func textOrigin(cols, rows int, s Style) image.Point {
	return image.Point{
		X: int(math.Round(s.Left * float64(cols))),
		Y: int(math.Round(s.Baseline * float64(rows))),
	}
}

// fontScale returns the scale at which text of height unitHeight (measured
// at scale 1) becomes fraction of the frame height.
func fontScale(rows int, fraction float64, unitHeight int) float64 {
	if unitHeight <= 0 {
		return 1.0
	}
	return fraction * float64(rows) / float64(unitHeight)
}
