package inference

import (
	"errors"
	"testing"
)

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(Config{})

	if e.config.InputName != DefaultInputName || e.config.OutputName != DefaultOutputName {
		t.Errorf("tensor names = %q/%q", e.config.InputName, e.config.OutputName)
	}
	if e.config.Threads != 1 {
		t.Errorf("Threads = %d, want 1", e.config.Threads)
	}
}

func TestEngine_RejectsBadShape(t *testing.T) {
	e := NewEngine(DefaultConfig())

	for _, tc := range [][2]int{{0, 24}, {42, 0}, {-1, 24}} {
		_, err := e.NewSession("model.onnx", tc[0], tc[1])
		if !errors.Is(err, ErrShape) {
			t.Errorf("NewSession(%d, %d) error = %v, want ErrShape", tc[0], tc[1], err)
		}
	}
}

func TestSession_ClosedIsSafe(t *testing.T) {
	s := &Session{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty session = %v", err)
	}
	if _, err := s.Run(make([]float32, 42)); err == nil {
		t.Error("expected error running a closed session")
	}
}
