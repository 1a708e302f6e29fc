// Package api provides HTTP API handlers for the mudra classifier.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// Decision is the wire form of a gesture.Decision.
type Decision struct {
	Label      string  `json:"label"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
	Timestamp  int64   `json:"timestamp"`
}

// NewDecision converts d for the wire, stamped with at.
func NewDecision(d gesture.Decision, at time.Time) Decision {
	out := Decision{
		Label:      string(d.Label),
		Source:     string(d.Source),
		Confidence: d.Confidence,
		Timestamp:  at.UnixMilli(),
	}
	if d.Err != nil {
		out.Error = d.Err.Error()
	}
	return out
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
