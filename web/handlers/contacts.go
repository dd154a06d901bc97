package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kinshiphq/kinship/internal/connections"
	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/pkg/types"
)

// ContactHandlers contains HTTP handlers for contact CRUD.
type ContactHandlers struct {
	store       storage.Store
	connManager *connections.Manager
}

// NewContactHandlers creates a new ContactHandlers instance.
func NewContactHandlers(store storage.Store, connManager *connections.Manager) *ContactHandlers {
	return &ContactHandlers{store: store, connManager: connManager}
}

// resolveStore picks the store for a request: the "connection" query
// parameter or X-Connection-ID header selects a configured address book,
// otherwise the default store is used.
func resolveStore(r *http.Request, def storage.Store, connManager *connections.Manager) (storage.Store, error) {
	name := r.URL.Query().Get("connection")
	if name == "" {
		name = r.Header.Get("X-Connection-ID")
	}
	if name == "" || connManager == nil {
		return def, nil
	}
	return connManager.GetStore(name)
}

// contactRequest is the create/update request body.
type contactRequest struct {
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	Company  string `json:"company,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ListContacts handles GET /api/contacts.
func (h *ContactHandlers) ListContacts(w http.ResponseWriter, r *http.Request) {
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
		Company:   r.URL.Query().Get("company"),
	}
	opts.Normalize()

	result, err := store.ListContacts(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list contacts", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateContact handles POST /api/contacts.
func (h *ContactHandlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.Gender != "" && !types.IsValidGender(types.Gender(req.Gender)) {
		respondError(w, http.StatusBadRequest, "invalid gender", nil)
		return
	}

	now := time.Now()
	contact := &types.Contact{
		ID:        "contact:" + uuid.NewString(),
		Name:      req.Name,
		Gender:    types.Gender(req.Gender),
		Company:   req.Company,
		JobTitle:  req.JobTitle,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.StoreContact(r.Context(), contact); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create contact", err)
		return
	}
	respondJSON(w, http.StatusCreated, contact)
}

// GetContact handles GET /api/contacts/{id}.
func (h *ContactHandlers) GetContact(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "contact ID is required", nil)
		return
	}

	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	contact, err := store.GetContact(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "contact not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get contact", err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// UpdateContact handles PATCH /api/contacts/{id}.
func (h *ContactHandlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "contact ID is required", nil)
		return
	}

	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	contact, err := store.GetContact(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "contact not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get contact", err)
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Gender   *string `json:"gender"`
		Company  *string `json:"company"`
		JobTitle *string `json:"job_title"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Notes    *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			respondError(w, http.StatusBadRequest, "name cannot be empty", nil)
			return
		}
		contact.Name = *req.Name
	}
	if req.Gender != nil {
		if *req.Gender != "" && !types.IsValidGender(types.Gender(*req.Gender)) {
			respondError(w, http.StatusBadRequest, "invalid gender", nil)
			return
		}
		contact.Gender = types.Gender(*req.Gender)
	}
	if req.Company != nil {
		contact.Company = *req.Company
	}
	if req.JobTitle != nil {
		contact.JobTitle = *req.JobTitle
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}
	contact.UpdatedAt = time.Now()

	if err := store.StoreContact(r.Context(), contact); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update contact", err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/contacts/{id}. Relationship edges that
// reference the contact are left behind; graph builds skip them as stale.
func (h *ContactHandlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "contact ID is required", nil)
		return
	}

	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	if err := store.DeleteContact(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "contact not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete contact", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
