package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kinshiphq/kinship/internal/connections"
)

// ConnectionHandlers contains HTTP handlers for address book management.
type ConnectionHandlers struct {
	manager *connections.Manager
}

// NewConnectionHandlers creates a new ConnectionHandlers instance.
func NewConnectionHandlers(manager *connections.Manager) *ConnectionHandlers {
	return &ConnectionHandlers{manager: manager}
}

// redact strips credentials before a connection leaves the API.
func redact(conn connections.Connection) connections.Connection {
	if conn.Database.Password != "" {
		conn.Database.Password = "[REDACTED]"
	}
	return conn
}

// ListConnections handles GET /api/connections.
func (h *ConnectionHandlers) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns := h.manager.ListConnections()
	out := make([]connections.Connection, 0, len(conns))
	for _, conn := range conns {
		out = append(out, redact(conn))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"default_connection": h.manager.GetDefaultConnection(),
		"connections":        out,
	})
}

// CreateConnection handles POST /api/connections.
func (h *ConnectionHandlers) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var conn connections.Connection
	if err := json.NewDecoder(r.Body).Decode(&conn); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	conn.CreatedAt = time.Now().Format(time.RFC3339)
	if err := h.manager.AddConnection(r.Context(), conn); err != nil {
		respondError(w, http.StatusBadRequest, "failed to add connection", err)
		return
	}
	respondJSON(w, http.StatusCreated, redact(conn))
}

// UpdateConnection handles PUT /api/connections/{name}.
func (h *ConnectionHandlers) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "connection name is required", nil)
		return
	}

	var conn connections.Connection
	if err := json.NewDecoder(r.Body).Decode(&conn); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if err := h.manager.UpdateConnection(r.Context(), name, conn); err != nil {
		respondError(w, http.StatusBadRequest, "failed to update connection", err)
		return
	}
	respondJSON(w, http.StatusOK, redact(conn))
}

// DeleteConnection handles DELETE /api/connections/{name}.
func (h *ConnectionHandlers) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "connection name is required", nil)
		return
	}

	if err := h.manager.DeleteConnection(r.Context(), name); err != nil {
		respondError(w, http.StatusBadRequest, "failed to delete connection", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}

// SetDefaultConnection handles POST /api/connections/default.
func (h *ConnectionHandlers) SetDefaultConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if err := h.manager.SetDefaultConnection(r.Context(), req.Name); err != nil {
		respondError(w, http.StatusBadRequest, "failed to set default connection", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"default_connection": req.Name})
}

// TestConnection handles POST /api/connections/test. The configuration in
// the request body is opened, probed and closed without being saved.
func (h *ConnectionHandlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	var conn connections.Connection
	if err := json.NewDecoder(r.Body).Decode(&conn); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if err := h.manager.TestConnection(r.Context(), conn); err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
