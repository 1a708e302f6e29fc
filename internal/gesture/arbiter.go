package gesture

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logger"
)

// MinHandExtent is the rectangle width/height below which no hand is assumed.
const MinHandExtent = 0.01

// ModelState tells whether the learned model is loaded.
type ModelState int

const (
	ModelUnavailable ModelState = iota
	ModelReady
)

func (s ModelState) String() string {
	if s == ModelReady {
		return "ready"
	}
	return "unavailable"
}

// Strategy selects which classifier is authoritative.
type Strategy string

const (
	// StrategyLearned uses the model when loaded and falls back to rules.
	StrategyLearned Strategy = "learned"
	// StrategyRules uses only the rule table.
	StrategyRules Strategy = "rules"
)

// ParseStrategy parses a strategy name. Empty means StrategyLearned.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyLearned:
		return StrategyLearned, nil
	case StrategyRules:
		return StrategyRules, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Source records which path produced a Decision.
type Source string

const (
	SourceSentinel Source = "sentinel"
	SourceLearned  Source = "learned"
	SourceRules    Source = "rules"
)

// Frame is the per-frame input: the detected hand region and its landmarks.
type Frame struct {
	Rect      detector.Rect
	Landmarks []detector.Landmark
}

// Decision is the outcome for one frame. Err carries the failure that was
// recovered from, if any; Label is always set.
type Decision struct {
	Label      Label
	Source     Source
	Confidence float64
	Err        error
}

// ArbiterConfig wires an Arbiter. Learned may be nil when the model failed to
// load; Rules defaults to a RuleClassifier.
type ArbiterConfig struct {
	Learned  Classifier
	Rules    Classifier
	Strategy Strategy
}

// Arbiter picks the label for a frame from the available classifiers.
// It holds no per-frame state.
type Arbiter struct {
	learned  Classifier
	rules    Classifier
	strategy Strategy
}

// NewArbiter creates an Arbiter.
func NewArbiter(config ArbiterConfig) *Arbiter {
	a := &Arbiter{
		learned:  config.Learned,
		rules:    config.Rules,
		strategy: config.Strategy,
	}
	if a.rules == nil {
		a.rules = NewRuleClassifier()
	}
	if a.strategy == "" {
		a.strategy = StrategyLearned
	}
	return a
}

// ModelState reports whether a learned classifier is available.
func (a *Arbiter) ModelState() ModelState {
	if a.learned == nil {
		return ModelUnavailable
	}
	return ModelReady
}

// Strategy returns the configured strategy.
func (a *Arbiter) Strategy() Strategy {
	return a.strategy
}

// Classify returns the label for f.
func (a *Arbiter) Classify(f Frame) Label {
	return a.Decide(f).Label
}

// Decide classifies a single frame. Exactly one label is produced for every
// input; failures are recorded on the Decision, never returned.
func (a *Arbiter) Decide(f Frame) Decision {
	if !(f.Rect.Width >= MinHandExtent) || !(f.Rect.Height >= MinHandExtent) {
		return Decision{Label: LabelNoHand, Source: SourceSentinel}
	}

	pose := Pose(f.Landmarks)
	if err := pose.Validate(); err != nil {
		logger.Debug("rejecting pose", "err", err)
		return Decision{Label: LabelNotInASL, Source: SourceSentinel, Err: err}
	}

	var recovered error
	if a.strategy == StrategyLearned {
		if a.learned == nil {
			recovered = ErrModelUnavailable
		} else {
			res, err := a.learned.Classify(pose)
			if err == nil {
				logger.Debug("frame classified", "label", res.Label, "source", SourceLearned, "confidence", res.Confidence)
				return Decision{Label: res.Label, Source: SourceLearned, Confidence: res.Confidence}
			}
			logger.Debug("learned classifier failed, using rules", "err", err)
			recovered = err
		}
	}

	res, err := a.rules.Classify(pose)
	if err != nil {
		return Decision{Label: LabelNotInASL, Source: SourceSentinel, Err: err}
	}
	logger.Debug("frame classified", "label", res.Label, "source", SourceRules)
	return Decision{Label: res.Label, Source: SourceRules, Err: recovered}
}

// DecideHands classifies the hands detected in one frame. Zero hands yields
// LabelNoHand; more than one is not a single-hand pose and yields
// LabelNotInASL with ErrMultipleHands.
func (a *Arbiter) DecideHands(hands []detector.Hand) Decision {
	switch len(hands) {
	case 0:
		return Decision{Label: LabelNoHand, Source: SourceSentinel}
	case 1:
		return a.Decide(Frame{Rect: hands[0].Rect, Landmarks: hands[0].Landmarks})
	default:
		return Decision{
			Label:  LabelNotInASL,
			Source: SourceSentinel,
			Err:    fmt.Errorf("%w: %d hands detected", ErrMultipleHands, len(hands)),
		}
	}
}
