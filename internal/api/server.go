package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/fine-dashboard/internal/api/websocket"
	"github.com/ramonehamilton/fine-dashboard/internal/charts"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	cfg        Config

	// Browser auto-open configuration
	openBrowser bool
	frontendURL string

	// WebSocket hub for per-session progress events
	wsHub      *websocket.Hub
	wsObserver *websocket.WebSocketObserver

	flowFacade   *dashboard.FlowFacade
	storyFacade  *dashboard.StoryFacade
	chartFacade  *dashboard.ChartFacade
	systemFacade *dashboard.SystemFacade

	services *dashboard.Services
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	OpenBrowser    bool          // Whether to auto-open browser on startup
	FrontendURL    string        // URL to open in browser (e.g., http://localhost:5173)
	RequestTimeout time.Duration // Per-request timeout
	RateLimit      float64       // Requests per second per client; 0 disables limiting
	RateBurst      int
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8050,
		OpenBrowser:    false,
		FrontendURL:    "",
		RequestTimeout: 30 * time.Second,
		RateLimit:      20,
		RateBurst:      40,
	}
}

// Facades holds all the facade instances needed by the API server.
type Facades struct {
	Flow   *dashboard.FlowFacade
	Story  *dashboard.StoryFacade
	Chart  *dashboard.ChartFacade
	System *dashboard.SystemFacade
}

// NewFacades creates every facade over services.
func NewFacades(services *dashboard.Services) *Facades {
	return &Facades{
		Flow:   dashboard.NewFlowFacade(services),
		Story:  dashboard.NewStoryFacade(services),
		Chart:  dashboard.NewChartFacade(services),
		System: dashboard.NewSystemFacade(services),
	}
}

// NewServer creates a new API server with the given facades.
func NewServer(cfg *Config, services *dashboard.Services, facades *Facades) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}

	wsHub := websocket.NewHub()

	s := &Server{
		router:       chi.NewRouter(),
		port:         cfg.Port,
		cfg:          *cfg,
		openBrowser:  cfg.OpenBrowser,
		frontendURL:  cfg.FrontendURL,
		wsHub:        wsHub,
		wsObserver:   websocket.NewWebSocketObserver(wsHub),
		services:     services,
		flowFacade:   facades.Flow,
		storyFacade:  facades.Story,
		chartFacade:  facades.Chart,
		systemFacade: facades.System,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection, also the rate limiter key
	s.router.Use(middleware.RealIP)

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.cfg.RateLimit > 0 {
		s.router.Use(newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst).Middleware)
	}

	// Content-Type enforcement for POST only
	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the WebSocket hub and the API server in goroutines.
func (s *Server) Start() error {
	go s.wsHub.Run()
	if s.services != nil {
		s.services.Dispatcher.Register(s.wsObserver)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("[API] Server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[API] Server error: %v", err)
		}
	}()

	// Open browser after short delay to ensure server is ready
	if s.openBrowser && s.frontendURL != "" {
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := charts.OpenInBrowser(s.frontendURL); err != nil {
				log.Printf("[API] Failed to open browser: %v", err)
			} else {
				log.Printf("[API] Opened browser to %s", s.frontendURL)
			}
		}()
	}

	return nil
}

// Shutdown gracefully shuts down the API server and the WebSocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.services != nil {
		s.services.Dispatcher.Unregister(s.wsObserver)
	}
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}

	log.Println("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// WebSocketHub returns the WebSocket hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
