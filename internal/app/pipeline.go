package app

import (
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/server/api"
)

// runPipeline reads frames at the pacer's rate until stop is closed.
//
// Pipeline logic:
// 1. Capture at IdleFPS while the scene is still
// 2. On motion, switch to the configured FPS
// 3. While active, detect hands and classify the frame
// 4. After IdleTimeout without motion, fall back to IdleFPS
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval(a.pacer.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				if errors.Is(err, capture.ErrNoFrames) {
					continue
				}
				logger.Warn("error reading frame", "err", err)
				continue
			}

			if a.pacer.Observe(frame) {
				fps := a.pacer.FPS()
				a.camera.SetFPS(fps)
				ticker.Reset(interval(fps))
			}

			if a.pacer.Active() {
				if _, err := a.ClassifyFrame(frame); err != nil {
					logger.Warn("error detecting hands", "err", err)
				}
			}
			frame.Close()
		}
	}
}

func interval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}

// ClassifyFrame detects hands in frame and classifies them.
func (a *App) ClassifyFrame(frame *gocv.Mat) (gesture.Decision, error) {
	d := a.Detector()
	if d == nil {
		return gesture.Decision{}, errors.New("no hand detector configured")
	}

	hands, err := d.Detect(frame)
	if err != nil {
		return gesture.Decision{}, fmt.Errorf("detect hands: %w", err)
	}
	return a.ClassifyHands(hands), nil
}

// ClassifyHands decides a label for one frame's detections, then records,
// publishes and remembers it.
func (a *App) ClassifyHands(hands []detector.Hand) gesture.Decision {
	decision := a.arbiter.DecideHands(hands)
	now := time.Now()

	logger.Debug("frame classified", "label", decision.Label, "source", decision.Source, "confidence", decision.Confidence, "hands", len(hands))

	if s := a.config.Store; s != nil {
		if err := s.Classifications().Create(api.Record(decision, now)); err != nil {
			logger.Warn("failed to record classification", "err", err)
		}
	}

	var hand *detector.Hand
	if len(hands) == 1 {
		h := hands[0]
		hand = &h
	}

	a.mu.Lock()
	a.last, a.hasLast = decision, true
	a.lastHand = hand
	publishers := a.publishers
	a.mu.Unlock()

	for _, p := range publishers {
		p.Publish(decision)
	}

	return decision
}
