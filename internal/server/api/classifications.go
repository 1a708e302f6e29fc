package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// ClassificationHandler serves recorded classifications.
type ClassificationHandler struct {
	store *store.Store
}

// NewClassificationHandler creates a ClassificationHandler.
func NewClassificationHandler(s *store.Store) *ClassificationHandler {
	return &ClassificationHandler{store: s}
}

type listClassificationsResponse struct {
	Classifications []*store.Classification `json:"classifications"`
}

// ServeHTTP routes /api/classifications and /api/classifications/{id}.
func (h *ClassificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/classifications"), "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, id)
}

// list handles GET /api/classifications?limit=N.
func (h *ClassificationHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.store.Classifications().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list classifications")
		return
	}
	if items == nil {
		items = []*store.Classification{}
	}

	writeJSON(w, http.StatusOK, listClassificationsResponse{Classifications: items})
}

// get handles GET /api/classifications/{id}.
func (h *ClassificationHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.store.Classifications().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "classification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get classification")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// clear handles DELETE /api/classifications?before=RFC3339, removing
// everything when before is omitted.
func (h *ClassificationHandler) clear(w http.ResponseWriter, r *http.Request) {
	before, err := parseBefore(r.URL.Query().Get("before"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
		return
	}

	n, err := h.store.Classifications().DeleteBefore(before)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete classifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// parseBefore parses an RFC3339 cutoff. Empty means no cutoff.
func parseBefore(v string) (time.Time, error) {
	if v == "" {
		return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(time.RFC3339, v)
}

type statsResponse struct {
	Total  int                `json:"total"`
	Labels []store.LabelCount `json:"labels"`
}

// StatsHandler reports per-label totals.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.store.Classifications().CountByLabel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count classifications")
		return
	}

	resp := statsResponse{Labels: []store.LabelCount{}}
	for _, c := range counts {
		resp.Total += c.Count
		resp.Labels = append(resp.Labels, c)
	}

	writeJSON(w, http.StatusOK, resp)
}
