package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fortuna/sideline/internal/report"
	"github.com/fortuna/sideline/internal/store"
)

// ReportSource serves report payloads and exposes the cached one.
type ReportSource interface {
	Get(ctx context.Context, force bool) (report.Payload, error)
	Cached() (report.Payload, time.Time, bool)
}

// RunStore lists audited refresh runs. Nil when no database is configured.
type RunStore interface {
	RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	reports ReportSource
	runs    RunStore
}

// NewHandler creates a new handler
func NewHandler(reports ReportSource, runs RunStore) *Handler {
	return &Handler{reports: reports, runs: runs}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "healthy",
		"service": "sideline",
		"version": "1.0.0",
	}
	if _, updated, ok := h.reports.Cached(); ok {
		body["lastUpdated"] = updated.UTC().Format(time.RFC3339)
	}
	respondJSON(w, http.StatusOK, body)
}

// GetReport returns the current injury report. ?refresh=1 bypasses the cache.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "1"
	payload, err := h.reports.Get(r.Context(), force)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch injury report", err)
		return
	}
	if !payload.OK {
		// The official page answered but yielded no usable report.
		respondJSON(w, http.StatusBadGateway, payload)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// GetReportStats returns aggregate counts for the current report.
func (h *Handler) GetReportStats(w http.ResponseWriter, r *http.Request) {
	payload, err := h.reports.Get(r.Context(), false)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch injury report", err)
		return
	}
	if !payload.OK {
		respondJSON(w, http.StatusBadGateway, payload)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta":  payload.Meta,
		"stats": payload.Stats,
	})
}

// GetRecentRuns returns the newest audited refreshes. ?limit caps the page
// size (default 20, max 200).
func (h *Handler) GetRecentRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusNotFound, "Audit store is not configured", nil)
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	records, err := h.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	if records == nil {
		records = []store.RunRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  records,
		"count": len(records),
	})
}
