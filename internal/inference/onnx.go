// Package inference runs the letter model through ONNX Runtime.
package inference

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
)

// Default tensor names of the exported letter model.
const (
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// ErrShape is returned for session shapes the engine cannot build.
var ErrShape = errors.New("invalid tensor shape")

// Config configures the ONNX engine.
type Config struct {
	// LibraryPath is the onnxruntime shared library. Empty uses the
	// platform default lookup.
	LibraryPath string
	InputName   string
	OutputName  string
	// Threads bounds intra-op parallelism; a single pose is tiny, so 1 is
	// the default.
	Threads int
}

// DefaultConfig returns a Config for the bundled model.
func DefaultConfig() Config {
	return Config{
		InputName:  DefaultInputName,
		OutputName: DefaultOutputName,
		Threads:    1,
	}
}

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment initializes the process-wide runtime once.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = fmt.Errorf("initialize onnxruntime: %w", err)
			return
		}
		logger.Info("onnxruntime initialized", "library", libraryPath)
	})
	return envErr
}

// Shutdown tears down the runtime environment. Sessions must be closed first.
func Shutdown() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Engine builds ONNX sessions. It implements gesture.Engine.
type Engine struct {
	config Config
}

// NewEngine creates an Engine. The runtime is initialized lazily on the
// first NewSession call.
func NewEngine(config Config) *Engine {
	if config.InputName == "" {
		config.InputName = DefaultInputName
	}
	if config.OutputName == "" {
		config.OutputName = DefaultOutputName
	}
	if config.Threads <= 0 {
		config.Threads = 1
	}
	return &Engine{config: config}
}

var _ gesture.Engine = (*Engine)(nil)

// NewSession loads modelPath with a [1,inputSize] input and a [1,outputSize]
// output tensor.
func (e *Engine) NewSession(modelPath string, inputSize, outputSize int) (gesture.Session, error) {
	if err := validateShape(inputSize, outputSize); err != nil {
		return nil, err
	}
	if err := initEnvironment(e.config.LibraryPath); err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(e.config.Threads); err != nil {
		return nil, fmt.Errorf("set intra-op threads: %w", err)
	}
	if err := options.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("set inter-op threads: %w", err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(inputSize)))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(outputSize)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{e.config.InputName},
		[]string{e.config.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Session{session: session, input: input, output: output}, nil
}

func validateShape(inputSize, outputSize int) error {
	if inputSize <= 0 || outputSize <= 0 {
		return fmt.Errorf("%w: [1,%d] -> [1,%d]", ErrShape, inputSize, outputSize)
	}
	return nil
}

// Session owns one model session and its bound tensors.
type Session struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// Run copies features into the input tensor, runs the model and returns a
// copy of the output.
func (s *Session) Run(features []float32) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, errors.New("session closed")
	}

	dst := s.input.GetData()
	if len(features) != len(dst) {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrShape, len(features), len(dst))
	}
	copy(dst, features)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	out := s.output.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

// Close destroys the session and its tensors.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.input.Destroy()
	s.output.Destroy()
	s.session = nil
	return err
}
