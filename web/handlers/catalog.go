package handlers

import (
	"net/http"

	"github.com/kinshiphq/kinship/internal/catalog"
	"github.com/kinshiphq/kinship/pkg/types"
)

// CatalogHandlers exposes the relationship type catalog to the UI, which
// renders it as the type picker in the relationship editor.
type CatalogHandlers struct {
	catalogs *catalog.Store
}

// NewCatalogHandlers creates a new CatalogHandlers instance.
func NewCatalogHandlers(catalogs *catalog.Store) *CatalogHandlers {
	return &CatalogHandlers{catalogs: catalogs}
}

// ListTypes handles GET /api/catalog. An optional category query parameter
// restricts the listing.
func (h *CatalogHandlers) ListTypes(w http.ResponseWriter, r *http.Request) {
	cat := h.catalogs.Current()

	category := types.Category(r.URL.Query().Get("category"))
	if category != "" && !types.IsValidCategory(category) {
		respondError(w, http.StatusBadRequest, "invalid category", nil)
		return
	}

	var entries []*catalog.RelationshipType
	if category != "" {
		entries = cat.TypesByCategory(category)
	} else {
		entries = cat.Types()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total": len(entries),
		"types": entries,
	})
}
