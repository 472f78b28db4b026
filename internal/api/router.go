package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/fine-dashboard/internal/api/handlers"
	"github.com/ramonehamilton/fine-dashboard/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint, one session per connection
	s.router.Get("/ws", s.serveWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		characterHandler := handlers.NewCharacterHandler(s.chartFacade)
		r.Route("/characters", func(r chi.Router) {
			r.Get("/", characterHandler.GetCharacters)
			r.Get("/{name}/chart", characterHandler.GetChart)
			r.Get("/{name}/chart.html", characterHandler.GetChartHTML)
		})

		flowHandler := handlers.NewFlowHandler(s.flowFacade)
		r.Route("/flow", func(r chi.Router) {
			r.Get("/filters", flowHandler.GetFilters)
			r.Post("/diagram", flowHandler.GetDiagram)
			r.Get("/diagram.html", flowHandler.GetDiagramHTML)
			r.Post("/reset", flowHandler.Reset)
		})

		sessionHandler := handlers.NewSessionHandler(s.storyFacade)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Get("/{sessionID}", sessionHandler.GetSession)
			r.Delete("/{sessionID}", sessionHandler.DeleteSession)
			r.Post("/{sessionID}/character", sessionHandler.ChangeCharacter)
			r.Post("/{sessionID}/click", sessionHandler.Click)
		})

		systemHandler := handlers.NewSystemHandler(s.systemFacade)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Get("/version", systemHandler.GetVersion)
			r.Get("/metrics", systemHandler.GetMetrics)
		})
	})
}

// serveWs subscribes a client to a live session.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if s.services != nil && id != "" {
		if _, err := s.services.Sessions.Get(id); err != nil {
			response.NotFound(w, r, errors.New("session not found"))
			return
		}
	}
	s.wsHub.ServeWs(w, r)
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "fine-dashboard-api",
		"wsClients": s.wsHub.ClientCount(),
	})
}
