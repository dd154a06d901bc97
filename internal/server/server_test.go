// Package server_test exercises the HTTP server over real TCP connections.
package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinshiphq/kinship/internal/catalog"
	"github.com/kinshiphq/kinship/internal/config"
	"github.com/kinshiphq/kinship/internal/server"
	"github.com/kinshiphq/kinship/internal/storage/sqlite"
)

// testConfig returns a server config bound to a random loopback port with
// permissive rate limits.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 0,
		},
		Security: config.SecurityConfig{
			SecurityMode: "development",
			RateLimit:    1000,
			RateBurst:    2000,
		},
		Graph: config.GraphConfig{
			CanvasWidth:   1200,
			CanvasHeight:  800,
			CanvasPadding: 40,
			TickRate:      30,
		},
	}
}

// startTestServer starts a server over an in-memory SQLite store and returns
// the base URL. Shutdown is registered with t.Cleanup.
func startTestServer(t *testing.T, cfg *config.Config) string {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "failed to create in-memory SQLite store")

	ctx, cancel := context.WithCancel(context.Background())

	catalogs := catalog.NewStore(catalog.Default())
	addr, _ := server.Start(ctx, cfg, store, catalogs, "")

	// Give the listener a moment to be fully ready for connections.
	time.Sleep(100 * time.Millisecond)

	t.Cleanup(func() {
		cancel()
		time.Sleep(100 * time.Millisecond)
		_ = store.Close()
	})

	return "http://" + addr
}

func TestServer_StartsOnRandomPort(t *testing.T) {
	baseURL := startTestServer(t, testConfig())

	require.True(t, strings.HasPrefix(baseURL, "http://"))
	addr := strings.TrimPrefix(baseURL, "http://")

	host, port, err := net.SplitHostPort(addr)
	assert.NoError(t, err, "address should be valid host:port format")
	assert.Equal(t, "127.0.0.1", host)
	assert.NotEqual(t, "0", port, "a real port should have been assigned")
}

func TestServer_HealthEndpoint(t *testing.T) {
	baseURL := startTestServer(t, testConfig())

	resp, err := http.Get(baseURL + "/api/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Contains(t, health, "version")
}

func TestServer_SecurityHeaders(t *testing.T) {
	baseURL := startTestServer(t, testConfig())

	resp, err := http.Get(baseURL + "/api/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	expectedHeaders := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for name, want := range expectedHeaders {
		assert.Equal(t, want, resp.Header.Get(name), "header %q", name)
	}
}

func TestServer_RouteRegistration(t *testing.T) {
	baseURL := startTestServer(t, testConfig())

	apiPaths := []string{
		"/api/contacts",
		"/api/relationships",
		"/api/analytics",
		"/api/catalog",
		"/api/connections",
		"/api/health",
	}

	for _, path := range apiPaths {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(baseURL + path)
			require.NoError(t, err, "failed to GET %s", path)
			defer func() { _ = resp.Body.Close() }()

			assert.NotEqual(t, http.StatusNotFound, resp.StatusCode,
				"route %s should be registered", path)
			assert.True(t, resp.StatusCode < 500,
				"route %s should not return 5xx (got %d)", path, resp.StatusCode)
		})
	}
}

func TestServer_ContactLifecycleOverHTTP(t *testing.T) {
	baseURL := startTestServer(t, testConfig())

	// Create.
	body, _ := json.Marshal(map[string]string{"name": "Ann Chen", "gender": "female"})
	resp, err := http.Post(baseURL+"/api/contacts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()
	require.NotEmpty(t, created.ID)

	// Read back through the routed path.
	resp, err = http.Get(baseURL + "/api/contacts/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Delete.
	req, err := http.NewRequest("DELETE", baseURL+"/api/contacts/"+created.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Gone.
	resp, err = http.Get(baseURL + "/api/contacts/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestServer_ProductionModeRequiresAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security.SecurityMode = "production"
	cfg.Security.APIToken = "test-secret-token"

	baseURL := startTestServer(t, cfg)

	t.Run("without_auth_header", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/contacts")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("with_valid_auth_header", func(t *testing.T) {
		req, err := http.NewRequest("GET", baseURL+"/api/contacts", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer test-secret-token")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("health_is_exempt", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/health")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestServer_MethodNotAllowed(t *testing.T) {
	baseURL := startTestServer(t, testConfig())

	for _, method := range []string{"POST", "PUT", "DELETE"} {
		t.Run(fmt.Sprintf("%s_health", method), func(t *testing.T) {
			req, err := http.NewRequest(method, baseURL+"/api/health", nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		})
	}
}

func TestServer_GracefulShutdown(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, _ := server.Start(ctx, testConfig(), store, catalog.NewStore(catalog.Default()), "")
	time.Sleep(100 * time.Millisecond)
	baseURL := "http://" + addr

	resp, err := http.Get(baseURL + "/api/health")
	require.NoError(t, err, "server should be responding before shutdown")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	time.Sleep(200 * time.Millisecond)

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer checkCancel()
	req, _ := http.NewRequestWithContext(checkCtx, "GET", baseURL+"/api/health", nil)
	_, err = http.DefaultClient.Do(req)
	assert.Error(t, err, "server should stop responding after shutdown")
}
