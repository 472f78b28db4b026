package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ramonehamilton/fine-dashboard/internal/api/response"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
)

// SessionHandler handles viewer session API requests.
type SessionHandler struct {
	facade *dashboard.StoryFacade
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(facade *dashboard.StoryFacade) *SessionHandler {
	return &SessionHandler{facade: facade}
}

// CreateSession starts a viewer session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.facade.StartSession(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, snap)
}

// GetSession returns the panel state of a session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.facade.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, snap)
}

// DeleteSession ends a session.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.facade.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

// ChangeCharacterRequest represents a character selector change.
type ChangeCharacterRequest struct {
	Character string `json:"character"`
}

// ChangeCharacter applies a character selector change to a session.
func (h *SessionHandler) ChangeCharacter(w http.ResponseWriter, r *http.Request) {
	var req ChangeCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, errors.New("invalid request body"))
		return
	}

	if req.Character == "" {
		response.BadRequest(w, r, errors.New("character is required"))
		return
	}

	snap, err := h.facade.ChangeCharacter(r.Context(), chi.URLParam(r, "sessionID"), req.Character)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, snap)
}

// Click applies a click on a dialogue point to a session.
func (h *SessionHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req dashboard.ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, errors.New("invalid request body"))
		return
	}

	snap, err := h.facade.Click(r.Context(), chi.URLParam(r, "sessionID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, snap)
}
