// Package server provides HTTP server initialization and lifecycle management
// for the Kinship Web UI.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/kinshiphq/kinship/internal/catalog"
	"github.com/kinshiphq/kinship/internal/config"
	"github.com/kinshiphq/kinship/internal/connections"
	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with
// port 0) and the WebSocketHub that broadcasts relationship change events.
// connectionsConfigPath is optional; when empty only the default store is
// available.
func Start(ctx context.Context, cfg *config.Config, store storage.Store, catalogs *catalog.Store, connectionsConfigPath string) (string, *handlers.WebSocketHub) {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub()
	go wsHub.Run()

	rateLimiter := handlers.NewRateLimiter(float64(cfg.Security.RateLimit), cfg.Security.RateBurst)

	var connManager *connections.Manager
	if connectionsConfigPath != "" {
		var err error
		connManager, err = connections.NewManager(connectionsConfigPath)
		if err != nil {
			log.Printf("Warning: failed to load connections config: %v, falling back to default", err)
			connManager = connections.NewManagerWithStore(store, "default")
		}
	} else {
		connManager = connections.NewManagerWithStore(store, "default")
	}

	contactHandlers := handlers.NewContactHandlers(store, connManager)
	relationshipHandlers := handlers.NewRelationshipHandlers(store, catalogs, connManager, wsHub)
	graphHandlers := handlers.NewGraphHandlers(store, connManager, cfg)
	analyticsHandlers := handlers.NewAnalyticsHandlers(store, connManager)
	catalogHandlers := handlers.NewCatalogHandlers(catalogs)
	connectionHandlers := handlers.NewConnectionHandlers(connManager)
	simulationHandlers := handlers.NewSimulationHandlers(store, connManager, cfg)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/contacts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			contactHandlers.ListContacts(w, r)
		case http.MethodPost:
			contactHandlers.CreateContact(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			contactHandlers.GetContact(w, r)
		case http.MethodPatch:
			contactHandlers.UpdateContact(w, r)
		case http.MethodDelete:
			contactHandlers.DeleteContact(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/contacts/{id}/graph", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			graphHandlers.GetContactGraph(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/relationships", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			relationshipHandlers.ListRelationships(w, r)
		case http.MethodPost:
			relationshipHandlers.CreateRelationship(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/relationships/{a}/{b}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			relationshipHandlers.GetRelationship(w, r)
		case http.MethodPatch:
			relationshipHandlers.UpdateRelationship(w, r)
		case http.MethodDelete:
			relationshipHandlers.DeleteRelationship(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/analytics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			analyticsHandlers.GetAnalytics(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/catalog", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			catalogHandlers.ListTypes(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Connection management routes
	apiMux.HandleFunc("/api/connections", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			connectionHandlers.ListConnections(w, r)
		case http.MethodPost:
			connectionHandlers.CreateConnection(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/connections/test", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			connectionHandlers.TestConnection(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/connections/default", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			connectionHandlers.SetDefaultConnection(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/connections/{name}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			connectionHandlers.UpdateConnection(w, r)
		case http.MethodDelete:
			connectionHandlers.DeleteConnection(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health endpoint — no auth required, used by monitoring
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status := "healthy"
		code := http.StatusOK
		if err := store.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q,"version":"1.0.0"}`, status)
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoints (no auth required - origin validation handles security)
	mux.Handle("/ws", wsHub)
	mux.HandleFunc("/ws/simulation/{id}", simulationHandlers.Stream)

	// Wrap entire server with rate limiting, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}
