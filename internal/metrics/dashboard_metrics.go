package metrics

import (
	"sync/atomic"
	"time"
)

// DashboardMetrics tracks how long interactions take and how often they happen.
type DashboardMetrics struct {
	BuildLatency     *Histogram
	HighlightLatency *Histogram
	ClickLatency     *Histogram

	FlowRebuilds    atomic.Uint64
	Hovers          atomic.Uint64
	Clicks          atomic.Uint64
	FilterChanges   atomic.Uint64
	ProgressSteps   atomic.Uint64
	SessionsCreated atomic.Uint64

	startTime time.Time
}

// NewDashboardMetrics creates an empty collector.
func NewDashboardMetrics() *DashboardMetrics {
	return &DashboardMetrics{
		BuildLatency:     NewHistogram(0),
		HighlightLatency: NewHistogram(0),
		ClickLatency:     NewHistogram(0),
		startTime:        time.Now(),
	}
}

// Stats is a point-in-time copy of the metrics.
type Stats struct {
	BuildLatency     LatencyStats `json:"build_latency"`
	HighlightLatency LatencyStats `json:"highlight_latency"`
	ClickLatency     LatencyStats `json:"click_latency"`

	FlowRebuilds    uint64 `json:"flow_rebuilds"`
	Hovers          uint64 `json:"hovers"`
	Clicks          uint64 `json:"clicks"`
	FilterChanges   uint64 `json:"filter_changes"`
	ProgressSteps   uint64 `json:"progress_steps"`
	SessionsCreated uint64 `json:"sessions_created"`

	Uptime string `json:"uptime"`
}

// GetStats returns a snapshot of the current statistics.
func (m *DashboardMetrics) GetStats() *Stats {
	return &Stats{
		BuildLatency:     m.BuildLatency.Stats(),
		HighlightLatency: m.HighlightLatency.Stats(),
		ClickLatency:     m.ClickLatency.Stats(),
		FlowRebuilds:     m.FlowRebuilds.Load(),
		Hovers:           m.Hovers.Load(),
		Clicks:           m.Clicks.Load(),
		FilterChanges:    m.FilterChanges.Load(),
		ProgressSteps:    m.ProgressSteps.Load(),
		SessionsCreated:  m.SessionsCreated.Load(),
		Uptime:           time.Since(m.startTime).Round(time.Second).String(),
	}
}
