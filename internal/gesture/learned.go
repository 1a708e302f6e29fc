package gesture

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/mudra/internal/logger"
)

// Defaults for the learned classifier.
const (
	DefaultModelName       = "model_targeted_a.onnx"
	DefaultOutputSize      = 24
	DefaultConfidenceFloor = 0.3
)

// Resolver locates a model artifact by logical name.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Engine builds inference sessions for a model file.
type Engine interface {
	NewSession(modelPath string, inputSize, outputSize int) (Session, error)
}

// Session runs a loaded model. Implementations need not be safe for
// concurrent use.
type Session interface {
	Run(input []float32) ([]float32, error)
	Close() error
}

// Result is what a Classifier produces for one pose. Confidence is zero for
// rule-based results.
type Result struct {
	Label      Label
	Confidence float64
}

// Classifier is a classification strategy.
type Classifier interface {
	Classify(p Pose) (Result, error)
}

// LearnedConfig configures a LearnedClassifier.
type LearnedConfig struct {
	ModelName       string
	OutputSize      int
	ConfidenceFloor float64
}

// DefaultLearnedConfig returns the configuration the bundled model expects.
func DefaultLearnedConfig() LearnedConfig {
	return LearnedConfig{
		ModelName:       DefaultModelName,
		OutputSize:      DefaultOutputSize,
		ConfidenceFloor: DefaultConfidenceFloor,
	}
}

// Validate checks the configuration.
func (c LearnedConfig) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("model name is empty")
	}
	if c.OutputSize < 1 || c.OutputSize > len(Alphabet) {
		return fmt.Errorf("output size %d out of range 1..%d", c.OutputSize, len(Alphabet))
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor >= 1 {
		return fmt.Errorf("confidence floor %v out of range [0,1)", c.ConfidenceFloor)
	}
	return nil
}

// Prediction is the arg-max of one model invocation.
type Prediction struct {
	Index      int
	Confidence float64
}

// LearnedClassifier maps normalized features to letters through a model
// session that is built once and reused for every frame.
type LearnedClassifier struct {
	config LearnedConfig
	path   string

	mu      sync.RWMutex
	session Session
}

// NewLearnedClassifier resolves the model and builds its session. Any failure
// to locate or load the artifact is reported as ErrModelUnavailable.
func NewLearnedClassifier(r Resolver, e Engine, config LearnedConfig) (*LearnedClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	path, err := r.Resolve(config.ModelName)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrModelUnavailable, config.ModelName, err)
	}

	session, err := e.NewSession(path, FeatureSize, config.OutputSize)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", ErrModelUnavailable, path, err)
	}

	logger.Info("model loaded", "path", path, "outputs", config.OutputSize)

	return &LearnedClassifier{
		config:  config,
		path:    path,
		session: session,
	}, nil
}

// Path returns the resolved model artifact path.
func (l *LearnedClassifier) Path() string {
	return l.path
}

// Predict runs the model over f and returns the highest-scoring output.
// Ties resolve to the lowest index.
func (l *LearnedClassifier) Predict(f Features) (Prediction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.session == nil {
		return Prediction{}, fmt.Errorf("%w: session closed", ErrModelUnavailable)
	}

	out, err := l.session.Run(f.Float32())
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	if len(out) != l.config.OutputSize {
		return Prediction{}, fmt.Errorf("%w: got %d outputs, want %d", ErrInferenceFailure, len(out), l.config.OutputSize)
	}

	scores := make([]float64, len(out))
	for i, v := range out {
		if math.IsNaN(float64(v)) {
			return Prediction{}, fmt.Errorf("%w: output %d is NaN", ErrInferenceFailure, i)
		}
		scores[i] = float64(v)
	}

	idx := floats.MaxIdx(scores)
	return Prediction{Index: idx, Confidence: scores[idx]}, nil
}

// Classify normalizes p and labels it with the model. A prediction at or
// below the confidence floor yields LabelNotLetter, which is a valid result.
func (l *LearnedClassifier) Classify(p Pose) (Result, error) {
	f, _, err := Normalize(p)
	if err != nil {
		return Result{}, err
	}

	pred, err := l.Predict(f)
	if err != nil {
		return Result{}, err
	}

	if pred.Confidence > l.config.ConfidenceFloor {
		return Result{Label: Alphabet[pred.Index], Confidence: pred.Confidence}, nil
	}
	return Result{Label: LabelNotLetter, Confidence: pred.Confidence}, nil
}

// Close releases the model session. It waits for in-flight predictions;
// later ones fail with ErrModelUnavailable.
func (l *LearnedClassifier) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil {
		return nil
	}
	err := l.session.Close()
	l.session = nil
	return err
}
