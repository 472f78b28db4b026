package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiwebsocket "github.com/ramonehamilton/fine-dashboard/internal/api/websocket"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func newTestServer(t *testing.T, cfg *Config) (*Server, *dashboard.Services) {
	t.Helper()
	store := dataset.New(&models.Dataset{
		Dialogues: []*models.DialogueSentiment{
			{Person: "Ross", Dialogue: strPtr("I'm fine."), Fine: intPtr(1)},
		},
		FlowEvents: []*models.FlowEventRow{
			{Season: strPtr("1"), Location: strPtr("Central Perk"), Counterpart: strPtr("Rachel")},
		},
	}, dataset.Options{})
	services := dashboard.NewServices(store, dashboard.Options{Characters: []string{"Ross", "Rachel"}})
	return NewServer(cfg, services, NewFacades(services)), services
}

func TestNewServer(t *testing.T) {
	server, services := newTestServer(t, nil)

	if server.Port() != 8050 {
		t.Errorf("Expected default port 8050, got %d", server.Port())
	}
	if server.WebSocketHub() == nil {
		t.Error("Expected wsHub to be initialized")
	}
	if server.services != services {
		t.Error("Expected services to be set")
	}
	if server.cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request timeout, got %v", server.cfg.RequestTimeout)
	}
}

func TestServer_Port(t *testing.T) {
	server, _ := newTestServer(t, &Config{Port: 9999})

	if server.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", server.Port())
	}
}

func TestServer_HealthCheck(t *testing.T) {
	server, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 0, body["wsClients"])
}

func TestServer_Routes(t *testing.T) {
	server, _ := newTestServer(t, nil)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/characters", http.StatusOK},
		{http.MethodGet, "/api/v1/characters/Ross/chart", http.StatusOK},
		{http.MethodGet, "/api/v1/characters/Ross/chart.html", http.StatusOK},
		{http.MethodGet, "/api/v1/flow/filters", http.StatusOK},
		{http.MethodPost, "/api/v1/flow/diagram", http.StatusOK},
		{http.MethodGet, "/api/v1/flow/diagram.html", http.StatusOK},
		{http.MethodPost, "/api/v1/flow/reset", http.StatusOK},
		{http.MethodPost, "/api/v1/sessions", http.StatusCreated},
		{http.MethodGet, "/api/v1/sessions/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/system/status", http.StatusOK},
		{http.MethodGet, "/api/v1/system/version", http.StatusOK},
		{http.MethodGet, "/api/v1/system/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestServer_RequiresJSONContentType(t *testing.T) {
	server, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flow/diagram", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/flow/diagram", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RateLimit(t *testing.T) {
	server, _ := newTestServer(t, &Config{RateLimit: 1, RateBurst: 2})

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RateLimitDisabled(t *testing.T) {
	server, _ := newTestServer(t, &Config{})

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestServer_WebSocketReceivesSessionProgress(t *testing.T) {
	server, services := newTestServer(t, nil)
	go server.wsHub.Run()
	services.Dispatcher.Register(server.wsObserver)
	defer func() { _ = server.Shutdown(context.Background()) }()

	httpServer := httptest.NewServer(server.Handler())
	defer httpServer.Close()

	resp, err := http.Post(httpServer.URL+"/api/v1/sessions", "application/json", nil)
	require.NoError(t, err)
	var created struct {
		Data dashboard.SessionSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	id := created.Data.ID

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?session=" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return server.wsHub.SessionClientCount(id) == 1 }, time.Second, 5*time.Millisecond)

	resp, err = http.Post(httpServer.URL+"/api/v1/sessions/"+id+"/click", "application/json",
		strings.NewReader(`{"dialogue":"I'm fine."}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var received apiwebsocket.Event
	require.NoError(t, json.Unmarshal(message, &received))
	assert.Equal(t, events.ProgressUpdated, received.Type)
}

func TestServer_WebSocketUnknownSession(t *testing.T) {
	server, _ := newTestServer(t, nil)
	go server.wsHub.Run()
	defer server.wsHub.Stop()

	httpServer := httptest.NewServer(server.Handler())
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?session=missing"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Shutdown_NotStarted(t *testing.T) {
	server, _ := newTestServer(t, nil)
	go server.wsHub.Run()

	if err := server.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected no error on shutdown of non-started server, got %v", err)
	}
	if !eventuallyStopped(server.wsHub) {
		t.Error("Expected hub to be stopped")
	}
}

func eventuallyStopped(hub *apiwebsocket.Hub) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.IsStopped() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
