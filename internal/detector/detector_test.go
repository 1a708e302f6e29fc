package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestDistance(t *testing.T) {
	a := Landmark{X: 0.1, Y: 0.2}
	b := Landmark{X: 0.4, Y: 0.6}

	if d := Distance(a, b); math.Abs(d-0.5) > epsilon {
		t.Errorf("expected 0.5, got %f", d)
	}
	if Distance(a, b) != Distance(b, a) {
		t.Error("distance should be symmetric")
	}
	if Distance(a, a) != 0 {
		t.Error("distance to self should be 0")
	}
}

func TestBoundingRect(t *testing.T) {
	t.Run("encloses all points", func(t *testing.T) {
		r := BoundingRect([]Landmark{{X: 0.2, Y: 0.3}, {X: 0.6, Y: 0.1}, {X: 0.4, Y: 0.9}})

		want := Rect{XCenter: 0.4, YCenter: 0.5, Width: 0.4, Height: 0.8}
		if math.Abs(r.XCenter-want.XCenter) > epsilon ||
			math.Abs(r.YCenter-want.YCenter) > epsilon ||
			math.Abs(r.Width-want.Width) > epsilon ||
			math.Abs(r.Height-want.Height) > epsilon {
			t.Errorf("expected %+v, got %+v", want, r)
		}
	})

	t.Run("empty slice is zero rect", func(t *testing.T) {
		if r := BoundingRect(nil); r != (Rect{}) {
			t.Errorf("expected zero rect, got %+v", r)
		}
	})

	t.Run("single point has no extent", func(t *testing.T) {
		r := BoundingRect([]Landmark{{X: 0.5, Y: 0.5}})
		if r.Width != 0 || r.Height != 0 {
			t.Errorf("expected zero extent, got %+v", r)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		d := NewMockDetector()
		hands, err := d.Detect(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected 0 hands, got %d", len(hands))
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		d := NewMockDetector()
		hand, _ := LetterHand("B")
		d.SetHands([]Hand{hand})

		hands, err := d.Detect(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Right" {
			t.Errorf("expected Right hand, got %s", hands[0].Handedness)
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		d := NewMockDetector()
		want := errors.New("detection failed")
		d.SetError(want)

		if _, err := d.Detect(nil); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = NewMockDetector()
	})
}

func TestFingerPose(t *testing.T) {
	t.Run("has all landmarks", func(t *testing.T) {
		p := FingerPose(true, false, true, false, true)
		if len(p) != NumLandmarks {
			t.Fatalf("expected %d landmarks, got %d", NumLandmarks, len(p))
		}
	})

	t.Run("open fingers point up", func(t *testing.T) {
		p := FingerPose(false, true, true, true, true)
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			if p[tip].Y >= p[tip-2].Y {
				t.Errorf("tip %d should be above its PIP", tip)
			}
		}
	})

	t.Run("closed fingers curl below PIP", func(t *testing.T) {
		p := FingerPose(false, false, false, false, false)
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			if p[tip].Y <= p[tip-2].Y {
				t.Errorf("tip %d should be below its PIP", tip)
			}
		}
	})

	t.Run("open thumb points across the palm", func(t *testing.T) {
		open := FingerPose(true, false, false, false, false)
		closed := FingerPose(false, false, false, false, false)
		if open[ThumbTip].X >= open[ThumbMCP].X {
			t.Error("open thumb tip should be left of its MCP")
		}
		if closed[ThumbTip].X <= closed[ThumbMCP].X {
			t.Error("closed thumb tip should be right of its MCP")
		}
	})

	t.Run("returns a fresh slice", func(t *testing.T) {
		a := FingerPose(true, true, true, true, true)
		a[Wrist].X = 42
		if b := FingerPose(true, true, true, true, true); b[Wrist].X == 42 {
			t.Error("poses should not share backing storage")
		}
	})
}

func TestLetterPoses(t *testing.T) {
	labels := LetterPoseLabels()
	if len(labels) != len(letterPoses) {
		t.Fatalf("expected %d labels, got %d", len(letterPoses), len(labels))
	}
	for i := 1; i < len(labels); i++ {
		if labels[i-1] >= labels[i] {
			t.Errorf("labels not sorted at %d: %q, %q", i, labels[i-1], labels[i])
		}
	}

	for _, label := range labels {
		h, ok := LetterHand(label)
		if !ok {
			t.Fatalf("LetterHand(%q) not found", label)
		}
		if len(h.Landmarks) != NumLandmarks {
			t.Errorf("%s: expected %d landmarks, got %d", label, NumLandmarks, len(h.Landmarks))
		}
		if h.Rect.Width < 0.01 || h.Rect.Height < 0.01 {
			t.Errorf("%s: rect too small: %+v", label, h.Rect)
		}
	}

	if _, ok := LetterPose("J"); ok {
		t.Error("J is a motion letter and has no static preset")
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("derives rect when absent", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2},{"x":0.3,"y":0.6}],"handedness":"Left","score":0.8}]}`)

		hands, err := parseResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		h := hands[0]
		if h.Handedness != "Left" || h.Score != 0.8 {
			t.Errorf("unexpected metadata: %+v", h)
		}
		if math.Abs(h.Rect.Width-0.2) > epsilon || math.Abs(h.Rect.Height-0.4) > epsilon {
			t.Errorf("unexpected rect: %+v", h.Rect)
		}
	})

	t.Run("uses service rect when present", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[],"rect":{"x_center":0.5,"y_center":0.5,"width":0.005,"height":0.3}}]}`)

		hands, err := parseResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hands[0].Rect.Width != 0.005 {
			t.Errorf("expected service rect, got %+v", hands[0].Rect)
		}
	})

	t.Run("keeps malformed landmark counts", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.1},{"x":0.2,"y":0.2},{"x":0.3,"y":0.3}]}]}`)

		hands, err := parseResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands[0].Landmarks) != 3 {
			t.Errorf("expected 3 landmarks passed through, got %d", len(hands[0].Landmarks))
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected 0 hands, got %d", len(hands))
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{not json`)); err == nil {
			t.Error("expected error")
		}
	})
}
