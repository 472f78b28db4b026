package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/fine-dashboard/internal/api/response"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
)

// CharacterHandler handles character chart API requests.
type CharacterHandler struct {
	facade *dashboard.ChartFacade
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(facade *dashboard.ChartFacade) *CharacterHandler {
	return &CharacterHandler{facade: facade}
}

// GetCharacters returns the character selector options.
func (h *CharacterHandler) GetCharacters(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.facade.Characters())
}

// GetChart returns the composed chart for a character.
func (h *CharacterHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, r, errors.New("character name is required"))
		return
	}

	chart, err := h.facade.CharacterChart(name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, chart)
}

// GetChartHTML renders the chart for a character as a page.
func (h *CharacterHandler) GetChartHTML(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.facade.RenderHTML(&buf, chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	response.HTML(w, buf.Bytes())
}
