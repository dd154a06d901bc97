package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kinshiphq/kinship/internal/catalog"
	"github.com/kinshiphq/kinship/internal/connections"
	"github.com/kinshiphq/kinship/internal/relation"
	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/pkg/types"
)

// RelationshipHandlers contains HTTP handlers for relationship pair CRUD.
// All writes go through the coordinator so both directions of a pair stay
// consistent; the handlers never touch individual edges.
type RelationshipHandlers struct {
	store       storage.Store
	catalogs    *catalog.Store
	connManager *connections.Manager
	hub         *WebSocketHub
}

// NewRelationshipHandlers creates a new RelationshipHandlers instance.
// hub may be nil; change events are then not broadcast.
func NewRelationshipHandlers(store storage.Store, catalogs *catalog.Store, connManager *connections.Manager, hub *WebSocketHub) *RelationshipHandlers {
	return &RelationshipHandlers{
		store:       store,
		catalogs:    catalogs,
		connManager: connManager,
		hub:         hub,
	}
}

// coordinatorFor builds a coordinator over the request's resolved store.
func (h *RelationshipHandlers) coordinatorFor(store storage.Store) *relation.Coordinator {
	return relation.NewCoordinator(h.catalogs, store, store)
}

// pairRequest is the create request body.
type pairRequest struct {
	ContactAID string `json:"contact_a_id"`
	ContactBID string `json:"contact_b_id"`
	Type       string `json:"type"`
	Strength   int    `json:"strength,omitempty"`
	Status     string `json:"status,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	IsMutual   bool   `json:"is_mutual,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Context    string `json:"context,omitempty"`
}

// parseDate parses an RFC 3339 date or datetime, returning nil for empty input.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if t, err = time.Parse("2006-01-02", s); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// respondCoordinatorError maps coordinator validation failures to a 400 with the
// individual error messages, and everything else to a 500.
func respondCoordinatorError(w http.ResponseWriter, err error, fallback string) {
	var verr *relation.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"code":   http.StatusText(http.StatusBadRequest),
			"valid":  false,
			"errors": verr.Errors,
		})
		return
	}
	if errors.Is(err, storage.ErrPairExists) {
		respondError(w, http.StatusConflict, "a relationship already exists for this contact pair", err)
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "relationship not found", err)
		return
	}
	respondError(w, http.StatusInternalServerError, fallback, err)
}

// ListRelationships handles GET /api/relationships.
func (h *RelationshipHandlers) ListRelationships(w http.ResponseWriter, r *http.Request) {
	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	opts := storage.ListOptions{
		Page:      parseInt(r.URL.Query().Get("page"), 1),
		Limit:     parseInt(r.URL.Query().Get("limit"), 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
		Category:  types.Category(r.URL.Query().Get("category")),
		Status:    types.Status(r.URL.Query().Get("status")),
		ContactID: r.URL.Query().Get("contact_id"),
	}
	opts.Normalize()

	result, err := store.ListEdges(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list relationships", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateRelationship handles POST /api/relationships. The response carries
// both directions of the created pair.
func (h *RelationshipHandlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start_date", err)
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end_date", err)
		return
	}

	attrs := relation.PairAttrs{
		Strength:  req.Strength,
		Status:    types.Status(req.Status),
		StartDate: startDate,
		EndDate:   endDate,
		IsMutual:  req.IsMutual,
		Notes:     req.Notes,
		Context:   req.Context,
	}

	pair, err := h.coordinatorFor(store).CreatePair(r.Context(), req.ContactAID, req.ContactBID, req.Type, attrs)
	if err != nil {
		respondCoordinatorError(w, err, "failed to create relationship")
		return
	}

	h.broadcastChange("created", req.ContactAID, req.ContactBID)
	respondJSON(w, http.StatusCreated, pair)
}

// GetRelationship handles GET /api/relationships/{a}/{b}.
func (h *RelationshipHandlers) GetRelationship(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	if a == "" || b == "" {
		respondError(w, http.StatusBadRequest, "both contact IDs are required", nil)
		return
	}

	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	forward, reverse, err := store.GetPair(r.Context(), a, b)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "relationship not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get relationship", err)
		return
	}
	respondJSON(w, http.StatusOK, relation.Pair{EdgeAToB: forward, EdgeBToA: reverse})
}

// UpdateRelationship handles PATCH /api/relationships/{a}/{b}.
func (h *RelationshipHandlers) UpdateRelationship(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	if a == "" || b == "" {
		respondError(w, http.StatusBadRequest, "both contact IDs are required", nil)
		return
	}

	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	var req struct {
		Type      *string `json:"type"`
		Strength  *int    `json:"strength"`
		Status    *string `json:"status"`
		StartDate *string `json:"start_date"`
		EndDate   *string `json:"end_date"`
		IsMutual  *bool   `json:"is_mutual"`
		Notes     *string `json:"notes"`
		Context   *string `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	changes := relation.PairChanges{
		Type:     req.Type,
		Strength: req.Strength,
		IsMutual: req.IsMutual,
		Notes:    req.Notes,
		Context:  req.Context,
	}
	if req.Status != nil {
		status := types.Status(*req.Status)
		if !types.IsValidStatus(status) {
			respondError(w, http.StatusBadRequest, "invalid status", nil)
			return
		}
		changes.Status = &status
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid start_date", err)
			return
		}
		changes.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid end_date", err)
			return
		}
		changes.EndDate = endDate
	}

	pair, err := h.coordinatorFor(store).UpdatePair(r.Context(), a, b, changes)
	if err != nil {
		respondCoordinatorError(w, err, "failed to update relationship")
		return
	}

	h.broadcastChange("updated", a, b)
	respondJSON(w, http.StatusOK, pair)
}

// DeleteRelationship handles DELETE /api/relationships/{a}/{b}. Both
// directions of the pair are removed.
func (h *RelationshipHandlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	if a == "" || b == "" {
		respondError(w, http.StatusBadRequest, "both contact IDs are required", nil)
		return
	}

	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	if err := h.coordinatorFor(store).DeletePair(r.Context(), a, b); err != nil {
		respondCoordinatorError(w, err, "failed to delete relationship")
		return
	}

	h.broadcastChange("deleted", a, b)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "deleted",
		"pair_key": types.PairKey(a, b),
	})
}

// broadcastChange notifies websocket clients that the relationship set
// changed so open graph views can rebuild.
func (h *RelationshipHandlers) broadcastChange(action, a, b string) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(map[string]string{
		"type":     "relationships.changed",
		"action":   action,
		"pair_key": types.PairKey(a, b),
	})
}
