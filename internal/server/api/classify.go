package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// ClassifyHandler labels landmark sets posted by clients.
type ClassifyHandler struct {
	arbiter *gesture.Arbiter
	store   *store.Store
}

// NewClassifyHandler creates a ClassifyHandler. s may be nil, in which case
// decisions are not recorded.
func NewClassifyHandler(a *gesture.Arbiter, s *store.Store) *ClassifyHandler {
	return &ClassifyHandler{arbiter: a, store: s}
}

// classifyRequest carries either one hand (rect and landmarks) or a list of
// hands from a detector. A missing rect, top-level or per hand, is derived
// from the landmarks.
type classifyRequest struct {
	Rect      *detector.Rect      `json:"rect"`
	Landmarks []detector.Landmark `json:"landmarks"`
	Hands     []detector.Hand     `json:"hands"`
}

// ServeHTTP handles POST /api/classify. Pose problems are reported in the
// decision, not as HTTP errors.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var d gesture.Decision
	if req.Hands != nil {
		for i := range req.Hands {
			if r := req.Hands[i].Rect; r.Width == 0 && r.Height == 0 {
				req.Hands[i].Rect = detector.BoundingRect(req.Hands[i].Landmarks)
			}
		}
		d = h.arbiter.DecideHands(req.Hands)
	} else {
		rect := detector.BoundingRect(req.Landmarks)
		if req.Rect != nil {
			rect = *req.Rect
		}
		d = h.arbiter.Decide(gesture.Frame{Rect: rect, Landmarks: req.Landmarks})
	}

	now := time.Now()
	h.record(d, now)
	writeJSON(w, http.StatusOK, NewDecision(d, now))
}

func (h *ClassifyHandler) record(d gesture.Decision, at time.Time) {
	if h.store == nil {
		return
	}
	if err := h.store.Classifications().Create(Record(d, at)); err != nil {
		logger.Warn("failed to record classification", "err", err)
	}
}

// Record converts d into a store row.
func Record(d gesture.Decision, at time.Time) *store.Classification {
	c := &store.Classification{
		Label:      string(d.Label),
		Source:     string(d.Source),
		Confidence: d.Confidence,
		CreatedAt:  at.UTC(),
	}
	if d.Err != nil {
		c.Error = d.Err.Error()
	}
	return c
}
