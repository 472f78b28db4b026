package dashboard

import (
	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/metrics"
	"github.com/ramonehamilton/fine-dashboard/internal/version"
)

// SystemFacade reports on the running dashboard.
type SystemFacade struct {
	services *Services
}

// NewSystemFacade creates a new SystemFacade.
func NewSystemFacade(services *Services) *SystemFacade {
	return &SystemFacade{services: services}
}

// SystemStatus represents the current state of the dashboard.
type SystemStatus struct {
	Version  version.Info    `json:"version"`
	Dataset  dataset.Summary `json:"dataset"`
	Sessions int             `json:"sessions"`
}

// GetStatus returns the dashboard status.
func (f *SystemFacade) GetStatus() *SystemStatus {
	return &SystemStatus{
		Version:  version.GetInfo(),
		Dataset:  f.services.Store.Summary(),
		Sessions: f.services.Sessions.Len(),
	}
}

// GetVersion returns the application version.
func (f *SystemFacade) GetVersion() string {
	return version.GetVersion()
}

// GetMetrics returns interaction latency and volume statistics.
func (f *SystemFacade) GetMetrics() *metrics.Stats {
	return f.services.Metrics.GetStats()
}
