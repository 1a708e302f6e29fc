package gesture

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/detector"
)

// FeatureSize is the length of the normalized feature vector.
const FeatureSize = 2 * detector.NumLandmarks

// minStdDev is the smallest per-axis spread accepted before z-scores are
// considered meaningless.
const minStdDev = 1e-12

// Features holds per-landmark z-scores interleaved as x0, y0, x1, y1, ...
type Features [FeatureSize]float64

// Float32 returns the features in the element type model sessions consume.
func (f Features) Float32() []float32 {
	out := make([]float32, FeatureSize)
	for i, v := range f {
		out[i] = float32(v)
	}
	return out
}

// Stats are the per-axis population moments used to normalize a pose.
type Stats struct {
	MeanX, MeanY float64
	StdX, StdY   float64
}

// Normalize z-scores each axis of p independently using the population mean
// and standard deviation (divisor 21). An axis with no spread yields
// ErrDegenerateNormalization instead of NaN features.
func Normalize(p Pose) (Features, Stats, error) {
	var f Features
	if err := p.Validate(); err != nil {
		return f, Stats{}, err
	}

	xs := make([]float64, len(p))
	ys := make([]float64, len(p))
	for i, l := range p {
		xs[i] = l.X
		ys[i] = l.Y
	}

	var s Stats
	s.MeanX, s.StdX = stat.PopMeanStdDev(xs, nil)
	s.MeanY, s.StdY = stat.PopMeanStdDev(ys, nil)

	if !(s.StdX > minStdDev) {
		return f, s, fmt.Errorf("%w: x axis has zero variance", ErrDegenerateNormalization)
	}
	if !(s.StdY > minStdDev) {
		return f, s, fmt.Errorf("%w: y axis has zero variance", ErrDegenerateNormalization)
	}

	for i := range p {
		f[2*i] = (xs[i] - s.MeanX) / s.StdX
		f[2*i+1] = (ys[i] - s.MeanY) / s.StdY
	}

	return f, s, nil
}

// Denormalize reverses Normalize.
func (s Stats) Denormalize(f Features) Pose {
	p := make(Pose, detector.NumLandmarks)
	for i := range p {
		p[i] = detector.Landmark{
			X: f[2*i]*s.StdX + s.MeanX,
			Y: f[2*i+1]*s.StdY + s.MeanY,
		}
	}
	return p
}
