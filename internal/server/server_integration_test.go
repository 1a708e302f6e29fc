package server

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

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

func TestAPI_ClassificationWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	srv := New(Config{
		Store:   s,
		Arbiter: gesture.NewArbiter(gesture.ArbiterConfig{Strategy: gesture.StrategyRules}),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Classify two poses
	for _, label := range []string{"L", "W"} {
		hand, _ := detector.LetterHand(label)
		body, _ := json.Marshal(map[string]any{"rect": hand.Rect, "landmarks": hand.Landmarks})

		resp, err := client.Post(ts.URL+"/api/classify", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST /api/classify error = %v", err)
		}
		var d api.Decision
		json.NewDecoder(resp.Body).Decode(&d)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if d.Label != label {
			t.Errorf("classified %s as %q", label, d.Label)
		}
	}

	// 2. History lists both, newest first
	resp, err := client.Get(ts.URL + "/api/classifications?limit=10")
	if err != nil {
		t.Fatalf("GET /api/classifications error = %v", err)
	}
	var listed struct {
		Classifications []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"classifications"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Classifications) != 2 {
		t.Fatalf("len(classifications) = %d, want 2", len(listed.Classifications))
	}

	// 3. Single record
	resp, _ = client.Get(ts.URL + "/api/classifications/" + listed.Classifications[0].ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/classifications/{id} status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 4. Stats
	resp, _ = client.Get(ts.URL + "/api/stats")
	var stats struct {
		Total int `json:"total"`
	}
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()

	if stats.Total != 2 {
		t.Errorf("stats total = %d, want 2", stats.Total)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestLabelHub_Publish(t *testing.T) {
	hub := NewLabelHub()
	ts := httptest.NewServer(New(Config{Labels: hub}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/labels"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(gesture.Decision{Label: "Y", Source: gesture.SourceLearned, Confidence: 0.8})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error = %v", err)
	}

	var d api.Decision
	if err := json.Unmarshal(msg, &d); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if d.Label != "Y" || d.Source != "learned" || d.Confidence != 0.8 {
		t.Errorf("unexpected message: %+v", d)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLabelHub_PublishWithoutClients(t *testing.T) {
	hub := NewLabelHub()
	hub.Publish(gesture.Decision{Label: gesture.LabelNoHand})
	if hub.Clients() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.Clients())
	}
}
