// Package session keeps one independent progress state per dashboard viewer.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/fine-dashboard/internal/progress"
)

// Defaults for Config.
const (
	DefaultIdleTTL     = 30 * time.Minute
	DefaultMaxSessions = 1000
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session cap is reached.
	ErrTooManySessions = errors.New("too many sessions")
)

// View is the per-session interaction state: the character selector value and
// the accumulator state.
type View struct {
	Character string         `json:"character"`
	Progress  progress.State `json:"progress"`
}

// Session is one viewer's state. Interactions on a session are serialized.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	view     View
	lastSeen time.Time
}

// View returns a copy of the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// LastSeen returns the time of the last interaction.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Apply runs one interaction turn against the session. fn receives the
// current view and returns the next one; turns never overlap.
func Apply[T any](s *Session, fn func(View) (View, T)) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, result := fn(s.view)
	s.view = next
	s.lastSeen = time.Now()
	return result
}

// Config configures a Manager.
type Config struct {
	IdleTTL     time.Duration
	MaxSessions int

	// Character is the initial character selector value of new sessions.
	Character string
}

// Manager is the registry of live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config

	// OnExpire is called, outside the registry lock, for each session removed by Sweep.
	OnExpire func(id string)
}

// NewManager creates an empty registry.
func NewManager(cfg Config) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Create starts a new session with zeroed progress.
func (m *Manager) Create() (*Session, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		view:      View{Character: m.cfg.Character},
		lastSeen:  now,
	}
	m.sessions[s.ID] = s
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL as of now and returns their ids.
func (m *Manager) Sweep(now time.Time) []string {
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.cfg.IdleTTL {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	if len(expired) > 0 {
		log.Printf("[Sessions] Expired %d idle sessions", len(expired))
	}
	if m.OnExpire != nil {
		for _, id := range expired {
			m.OnExpire(id)
		}
	}
	return expired
}

// Run sweeps on every tick of interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
