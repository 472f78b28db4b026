package handlers

import (
	"net/http"

	"github.com/ramonehamilton/fine-dashboard/internal/api/response"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
)

// SystemHandler handles system-related API requests.
type SystemHandler struct {
	facade *dashboard.SystemFacade
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(facade *dashboard.SystemFacade) *SystemHandler {
	return &SystemHandler{facade: facade}
}

// GetStatus returns the dashboard status.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.facade.GetStatus())
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": h.facade.GetVersion(),
		"service": "fine-dashboard-api",
	})
}

// GetMetrics returns interaction statistics.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.facade.GetMetrics())
}
