package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/kinshiphq/kinship/internal/config"
	"github.com/kinshiphq/kinship/internal/connections"
	"github.com/kinshiphq/kinship/internal/graph"
	"github.com/kinshiphq/kinship/internal/layout"
	"github.com/kinshiphq/kinship/internal/storage"
)

// SimulationHandlers streams live force-directed layout frames for a social
// graph over a WebSocket, one session per connection. The client may drag
// nodes; a dragged node is pinned under the cursor and released back to the
// physics on request.
type SimulationHandlers struct {
	store       storage.Store
	connManager *connections.Manager
	cfg         *config.Config
}

// NewSimulationHandlers creates a new SimulationHandlers instance.
func NewSimulationHandlers(store storage.Store, connManager *connections.Manager, cfg *config.Config) *SimulationHandlers {
	return &SimulationHandlers{store: store, connManager: connManager, cfg: cfg}
}

// dragMessage is the client->server message shape.
type dragMessage struct {
	Type   string  `json:"type"` // "drag" or "release"
	NodeID string  `json:"node_id"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// frameMessage is one animation frame sent to the client.
type frameMessage struct {
	Type  string             `json:"type"` // always "frame"
	Nodes []layout.ForceNode `json:"nodes"`
}

// Stream handles GET /ws/simulation/{id}: it builds the contact's social
// graph, then ticks a force simulation at the configured rate, writing one
// frame per tick until the client disconnects.
func (h *SimulationHandlers) Stream(w http.ResponseWriter, r *http.Request) {
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

	edges, err := store.EdgesForContact(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load relationships", err)
		return
	}
	contacts, err := store.Directory(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load contacts", err)
		return
	}

	g := graph.Build(id, edges, contacts, graph.ModeSocial)

	conn, err := acceptWebSocket(w, r)
	if err != nil {
		return
	}

	sim := layout.NewSimulation(g, layout.ForceConfig{
		Canvas: layout.Config{
			Width:   parseFloat(r.URL.Query().Get("width"), float64(h.cfg.Graph.CanvasWidth)),
			Height:  parseFloat(r.URL.Query().Get("height"), float64(h.cfg.Graph.CanvasHeight)),
			Padding: float64(h.cfg.Graph.CanvasPadding),
		},
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Drag messages arrive on their own goroutine; a read error means the
	// client went away and the session ends.
	go func() {
		defer cancel()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg dragMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("simulation: dropping malformed drag message: %v", err)
				continue
			}
			switch msg.Type {
			case "drag":
				sim.Drag(msg.NodeID, msg.X, msg.Y)
			case "release":
				sim.Release(msg.NodeID)
			}
		}
	}()

	tickRate := h.cfg.Graph.TickRate
	if tickRate <= 0 {
		tickRate = 30
	}
	interval := time.Second / time.Duration(tickRate)

	sim.Run(ctx, interval, func(nodes []layout.ForceNode) {
		frame, err := json.Marshal(frameMessage{Type: "frame", Nodes: nodes})
		if err != nil {
			log.Printf("ERROR: failed to marshal simulation frame: %v", err)
			cancel()
			return
		}
		writeCtx, writeCancel := context.WithTimeout(ctx, 5*time.Second)
		err = conn.Write(writeCtx, websocket.MessageText, frame)
		writeCancel()
		if err != nil {
			cancel()
		}
	})
}
