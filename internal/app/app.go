// Package app runs the live classification pipeline for mudra.
package app

import (
	"sync"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// Publisher receives every pipeline decision.
type Publisher interface {
	Publish(d gesture.Decision)
}

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Arbiter  *gesture.Arbiter
	Camera   capture.Camera
	Detector detector.Detector

	// FPS is the capture rate while the scene is moving.
	FPS int
	// MotionThresh is the percentage of changed pixels counted as motion.
	// Zero selects 1.0; a negative value disables pacing.
	MotionThresh float64
}

// App owns the capture pipeline and the most recent decision.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	pacer      *capture.Pacer
	detector   detector.Detector
	arbiter    *gesture.Arbiter
	publishers []Publisher

	enabled  bool
	last     gesture.Decision
	hasLast  bool
	lastHand *detector.Hand
	mu       sync.RWMutex
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a new App. A nil camera opens the default device, a nil
// detector uses MediaPipe when available and a nil arbiter classifies with
// rules only.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		arbiter:  config.Arbiter,
	}

	if a.camera == nil {
		opts := capture.DefaultOptions()
		opts.FPS = config.FPS
		a.camera = capture.NewCamera(opts)
	}

	if a.arbiter == nil {
		a.arbiter = gesture.NewArbiter(gesture.ArbiterConfig{Strategy: gesture.StrategyRules})
	}

	switch {
	case config.MotionThresh < 0:
	case config.MotionThresh == 0:
		a.motion = capture.NewMotionDetector(1.0)
	default:
		a.motion = capture.NewMotionDetector(config.MotionThresh)
	}
	a.pacer = capture.NewPacer(a.motion, config.FPS)

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			logger.Info("using MediaPipe hand detection")
		} else {
			logger.Warn("MediaPipe not available, using mock detector", "err", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if config.Store != nil {
		a.enabled = config.Store.Settings().GetBool(store.SettingDetectionEnabled, false)
	}

	return a
}

// Subscribe registers p to receive every decision.
func (a *App) Subscribe(p Publisher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publishers = append(a.publishers, p)
}

// SetEnabled enables or disables live classification. The state is
// persisted when a store is configured.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingDetectionEnabled, enabled); err != nil {
			logger.Warn("failed to persist detection state", "err", err)
		}
	}
	logger.Info("detection toggled", "enabled", enabled)
}

// IsEnabled returns whether live classification is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// LastDecision returns the most recent pipeline decision.
func (a *App) LastDecision() (gesture.Decision, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.hasLast
}

// LastHand returns the hand behind the most recent decision, if exactly one
// was detected.
func (a *App) LastHand() (detector.Hand, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastHand == nil {
		return detector.Hand{}, false
	}
	return *a.lastHand, true
}

// Start opens the camera and begins the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.pacer.FPS())

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	logger.Info("detection pipeline started", "fps", a.pacer.FPS(), "strategy", a.arbiter.Strategy(), "model", a.arbiter.ModelState())
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		logger.Warn("error closing camera", "err", err)
	}

	if a.motion != nil {
		a.motion.Close()
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			logger.Warn("error closing detector", "err", err)
		}
	}

	logger.Info("detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Arbiter returns the arbiter used by the pipeline.
func (a *App) Arbiter() *gesture.Arbiter {
	return a.arbiter
}

// Pacer returns the capture pacer.
func (a *App) Pacer() *capture.Pacer {
	return a.pacer
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
