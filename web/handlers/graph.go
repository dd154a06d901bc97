package handlers

import (
	"errors"
	"net/http"

	"github.com/kinshiphq/kinship/internal/config"
	"github.com/kinshiphq/kinship/internal/connections"
	"github.com/kinshiphq/kinship/internal/graph"
	"github.com/kinshiphq/kinship/internal/layout"
	"github.com/kinshiphq/kinship/internal/storage"
)

// warmupTicks is how many simulation steps settle a social graph before a
// static snapshot is returned. Live animation runs over the websocket.
const warmupTicks = 120

// GraphHandlers serves built, laid-out graphs for a focal contact.
type GraphHandlers struct {
	store       storage.Store
	connManager *connections.Manager
	cfg         *config.Config
}

// NewGraphHandlers creates a new GraphHandlers instance.
func NewGraphHandlers(store storage.Store, connManager *connections.Manager, cfg *config.Config) *GraphHandlers {
	return &GraphHandlers{store: store, connManager: connManager, cfg: cfg}
}

func (h *GraphHandlers) canvas(r *http.Request) layout.Config {
	c := layout.Config{
		Width:   float64(h.cfg.Graph.CanvasWidth),
		Height:  float64(h.cfg.Graph.CanvasHeight),
		Padding: float64(h.cfg.Graph.CanvasPadding),
	}
	c.Width = parseFloat(r.URL.Query().Get("width"), c.Width)
	c.Height = parseFloat(r.URL.Query().Get("height"), c.Height)
	return c
}

// graphResponse bundles the built graph with mode-specific layout output.
type graphResponse struct {
	*graph.Graph
	Groups []layout.Group     `json:"groups,omitempty"` // professional mode
	Frame  []layout.ForceNode `json:"frame,omitempty"`  // social mode snapshot
}

// GetContactGraph handles GET /api/contacts/{id}/graph.
//
// Query parameters: mode (family|professional|social, default family),
// grouping (level|company, professional mode only), width/height (canvas
// override). Unknown contacts yield an empty graph, not an error.
func (h *GraphHandlers) GetContactGraph(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "contact ID is required", nil)
		return
	}

	mode := graph.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = graph.ModeFamily
	}
	if !graph.IsValidMode(mode) {
		respondError(w, http.StatusBadRequest, "invalid mode", nil)
		return
	}

	store, err := resolveStore(r, h.store, h.connManager)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid connection", err)
		return
	}

	edges, err := store.EdgesForContact(r.Context(), id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "failed to load relationships", err)
		return
	}
	contacts, err := store.Directory(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load contacts", err)
		return
	}

	g := graph.Build(id, edges, contacts, mode)
	resp := graphResponse{Graph: g}
	canvas := h.canvas(r)

	switch mode {
	case graph.ModeFamily:
		layout.Generational(g, canvas)

	case graph.ModeProfessional:
		grouping := layout.Grouping(r.URL.Query().Get("grouping"))
		if grouping == "" {
			grouping = layout.GroupByLevel
		}
		if grouping != layout.GroupByLevel && grouping != layout.GroupByCompany {
			respondError(w, http.StatusBadRequest, "invalid grouping", nil)
			return
		}
		resp.Groups = layout.Hierarchy(g, grouping)

	case graph.ModeSocial:
		sim := layout.NewSimulation(g, layout.ForceConfig{Canvas: canvas})
		for i := 0; i < warmupTicks; i++ {
			sim.Tick()
		}
		frame := sim.Snapshot()
		resp.Frame = frame
		// Copy the settled coordinates onto the nodes so plain renderers
		// need not understand frames.
		byID := map[string]int{}
		for i, n := range g.Nodes {
			byID[n.ID] = i
		}
		for _, fn := range frame {
			if i, ok := byID[fn.ID]; ok {
				g.Nodes[i].X = fn.X
				g.Nodes[i].Y = fn.Y
			}
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
