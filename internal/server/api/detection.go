package api

import (
	"encoding/json"
	"net/http"
)

// Toggle switches live detection on and off.
type Toggle interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// DetectionHandler exposes the live detection switch.
type DetectionHandler struct {
	toggle Toggle
}

// NewDetectionHandler creates a DetectionHandler.
func NewDetectionHandler(t Toggle) *DetectionHandler {
	return &DetectionHandler{toggle: t}
}

type detectionState struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT /api/detection.
func (h *DetectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req detectionState
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "body must be {\"enabled\": bool}")
			return
		}
		h.toggle.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := h.toggle.IsEnabled()
	writeJSON(w, http.StatusOK, detectionState{Enabled: &enabled})
}
