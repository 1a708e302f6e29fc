package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

type decision struct {
	Label      string  `json:"label"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

type stack struct {
	store *store.Store
	app   *app.App
	hub   *server.LabelHub
	ts    *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	arbiter := gesture.NewArbiter(gesture.ArbiterConfig{})
	a := app.New(app.Config{
		Store:        s,
		Arbiter:      arbiter,
		Camera:       capture.NewMockCamera(nil, false),
		Detector:     detector.NewMockDetector(),
		MotionThresh: -1,
	})
	hub := server.NewLabelHub()
	a.Subscribe(hub)

	ts := httptest.NewServer(server.New(server.Config{
		Store:   s,
		Arbiter: arbiter,
		Latest:  a,
		Labels:  hub,
		Toggle:  a,
	}))
	t.Cleanup(ts.Close)

	return &stack{store: s, app: a, hub: hub, ts: ts}
}

func (st *stack) classify(t *testing.T, body any) decision {
	t.Helper()
	raw, _ := json.Marshal(body)
	resp, err := st.ts.Client().Post(st.ts.URL+"/api/classify", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var d decision
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	return d
}

func TestE2E_ClassifyWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)

	t.Run("EveryPresetLetter", func(t *testing.T) {
		for _, label := range detector.LetterPoseLabels() {
			h, _ := detector.LetterHand(label)
			d := st.classify(t, map[string]any{"rect": h.Rect, "landmarks": h.Landmarks})
			if d.Label != label {
				t.Errorf("classify %s = %q", label, d.Label)
			}
			if d.Source != string(gesture.SourceRules) {
				t.Errorf("classify %s source = %q, want rules", label, d.Source)
			}
		}
	})

	t.Run("NoHand", func(t *testing.T) {
		h, _ := detector.LetterHand("A")
		d := st.classify(t, map[string]any{
			"rect":      detector.Rect{XCenter: 0.5, YCenter: 0.5, Width: 0.005, Height: 0.3},
			"landmarks": h.Landmarks,
		})
		if d.Label != string(gesture.LabelNoHand) {
			t.Errorf("label = %q, want %q", d.Label, gesture.LabelNoHand)
		}
	})

	t.Run("MalformedPose", func(t *testing.T) {
		d := st.classify(t, map[string]any{"landmarks": make([]detector.Landmark, 5)})
		if d.Label != string(gesture.LabelNotInASL) || d.Error == "" {
			t.Errorf("decision = %+v, want Not in ASL with error", d)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		resp, err := st.ts.Client().Get(st.ts.URL + "/api/stats")
		if err != nil {
			t.Fatalf("stats error = %v", err)
		}
		defer resp.Body.Close()

		var stats struct {
			Total  int `json:"total"`
			Labels []struct {
				Label string `json:"label"`
				Count int    `json:"count"`
			} `json:"labels"`
		}
		json.NewDecoder(resp.Body).Decode(&stats)

		want := len(detector.LetterPoseLabels()) + 2
		if stats.Total != want {
			t.Errorf("total = %d, want %d", stats.Total, want)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := st.ts.Client().Get(st.ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after classifications")
		}
	})
}

func TestE2E_LiveLabels(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)

	wsURL := "ws" + strings.TrimPrefix(st.ts.URL, "http") + "/api/labels"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for st.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	h, _ := detector.LetterHand("Y")
	st.app.ClassifyHands([]detector.Hand{h})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var d decision
	if err := conn.ReadJSON(&d); err != nil {
		t.Fatalf("read label: %v", err)
	}
	if d.Label != "Y" {
		t.Errorf("live label = %q, want Y", d.Label)
	}

	resp, err := st.ts.Client().Get(st.ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("health error = %v", err)
	}
	defer resp.Body.Close()

	var health map[string]any
	json.NewDecoder(resp.Body).Decode(&health)
	if health["last_label"] != "Y" {
		t.Errorf("last_label = %v, want Y", health["last_label"])
	}
}

func TestE2E_DetectionToggle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)

	req, _ := http.NewRequest(http.MethodPut, st.ts.URL+"/api/detection", strings.NewReader(`{"enabled": true}`))
	resp, err := st.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if !st.app.IsEnabled() {
		t.Error("app not enabled after PUT")
	}
	if !st.store.Settings().GetBool(store.SettingDetectionEnabled, false) {
		t.Error("enabled state not persisted")
	}
}
