package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/logger"
)

// Frame differencing parameters.
const (
	blurSize      = 21
	diffThreshold = 25
)

// MotionDetector reports the share of pixels that changed between
// consecutive frames.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64 // percent of pixels
	prev      gocv.Mat
	hasPrev   bool
}

// NewMotionDetector creates a MotionDetector that reports motion when more
// than threshold percent of pixels change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect compares frame with the previous one. The first frame only sets
// the baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	defer blurred.CopyTo(&m.prev)

	if !m.hasPrev || m.prev.Rows() != blurred.Rows() || m.prev.Cols() != blurred.Cols() {
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100.0
	return changed > m.threshold, changed
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasPrev = false
}

// Close releases the baseline frame. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prev.Close()
	m.prev = gocv.NewMat()
	m.hasPrev = false
}

// Pacing defaults.
const (
	IdleFPS     = 5
	IdleTimeout = 2 * time.Second
)

// Pacer lowers the capture rate while the scene is still. It only chooses
// how often frames are taken; it never affects how a frame is classified.
type Pacer struct {
	motion    *MotionDetector
	idleFPS   int
	activeFPS int
	timeout   time.Duration
	now       func() time.Time

	active     bool
	lastMotion time.Time
}

// NewPacer creates a Pacer that captures at activeFPS while motion was seen
// within IdleTimeout and at IdleFPS otherwise. A nil motion detector keeps
// the pacer permanently active.
func NewPacer(motion *MotionDetector, activeFPS int) *Pacer {
	if activeFPS <= 0 {
		activeFPS = DefaultFPS
	}
	return &Pacer{
		motion:    motion,
		idleFPS:   min(IdleFPS, activeFPS),
		activeFPS: activeFPS,
		timeout:   IdleTimeout,
		now:       time.Now,
		active:    motion == nil,
	}
}

// Active reports whether frames should currently be classified.
func (p *Pacer) Active() bool {
	return p.active
}

// FPS returns the capture rate for the current mode.
func (p *Pacer) FPS() int {
	if p.active {
		return p.activeFPS
	}
	return p.idleFPS
}

// Observe feeds a frame through motion detection and reports whether the
// mode changed.
func (p *Pacer) Observe(frame *gocv.Mat) (changed bool) {
	if p.motion == nil {
		return false
	}
	moved, _ := p.motion.Detect(frame)
	return p.update(moved)
}

func (p *Pacer) update(moved bool) bool {
	now := p.now()
	if moved {
		p.lastMotion = now
		if !p.active {
			p.active = true
			logger.Debug("capture active", "fps", p.activeFPS)
			return true
		}
		return false
	}

	if p.active && now.Sub(p.lastMotion) > p.timeout {
		p.active = false
		logger.Debug("capture idle", "fps", p.idleFPS)
		return true
	}
	return false
}
