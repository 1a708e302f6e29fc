package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantFPS int
	}{
		{"zero options", Options{}, DefaultFPS},
		{"defaults", DefaultOptions(), DefaultFPS},
		{"custom fps", Options{DeviceID: 1, FPS: 30}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.opts)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestNewCamera_FillsResolution(t *testing.T) {
	cam := NewCamera(Options{Width: 320}).(*cameraImpl)

	if cam.opts.Width != DefaultWidth || cam.opts.Height != DefaultHeight {
		t.Errorf("resolution = %dx%d, want %dx%d", cam.opts.Width, cam.opts.Height, DefaultWidth, DefaultHeight)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{"set to 10", 10, 10},
		{"set to 30", 30, 30},
		{"zero is ignored", 0, 30},
		{"negative is ignored", -5, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping camera integration test in short mode")
	}

	cam := NewCamera(DefaultOptions())
	if err := cam.Open(); err != nil {
		t.Skipf("no camera available: %v", err)
	}
	defer cam.Close()

	if !cam.IsOpen() {
		t.Error("camera should be open after Open")
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Skipf("camera opened but cannot read: %v", err)
	}
	defer frame.Close()

	if frame.Empty() {
		t.Error("frame should not be empty")
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("camera should be closed after Close")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera error = %v", err)
	}
}
