package handlers

import (
	"net/http"

	"github.com/kinshiphq/kinship/internal/analytics"
	"github.com/kinshiphq/kinship/internal/connections"
	"github.com/kinshiphq/kinship/internal/storage"
)

// AnalyticsHandlers serves relationship set summaries.
type AnalyticsHandlers struct {
	store       storage.Store
	connManager *connections.Manager
}

// NewAnalyticsHandlers creates a new AnalyticsHandlers instance.
func NewAnalyticsHandlers(store storage.Store, connManager *connections.Manager) *AnalyticsHandlers {
	return &AnalyticsHandlers{store: store, connManager: connManager}
}

// GetAnalytics handles GET /api/analytics. An empty relationship set is a
// valid result with zero counts, not an error.
func (h *AnalyticsHandlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	edges, err := store.AllEdges(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load relationships", err)
		return
	}

	respondJSON(w, http.StatusOK, analytics.Summarize(edges))
}
