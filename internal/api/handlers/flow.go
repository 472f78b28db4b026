package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ramonehamilton/fine-dashboard/internal/api/response"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
	"github.com/ramonehamilton/fine-dashboard/internal/sankey"
)

// FlowHandler handles argument flow diagram API requests.
type FlowHandler struct {
	facade *dashboard.FlowFacade
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(facade *dashboard.FlowFacade) *FlowHandler {
	return &FlowHandler{facade: facade}
}

// HoverRequest is the chart pointer payload: the hovered element type as
// reported by the chart ("edge", "link" or "node") and its index.
type HoverRequest struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// DiagramRequest represents a request for the flow diagram.
type DiagramRequest struct {
	Location    string        `json:"location"`
	Counterpart string        `json:"counterpart"`
	Hover       *HoverRequest `json:"hover,omitempty"`
}

func (req DiagramRequest) toFlowRequest() dashboard.FlowRequest {
	out := dashboard.FlowRequest{Location: req.Location, Counterpart: req.Counterpart}
	if req.Hover != nil {
		// Unrecognized element types mean nothing is hovered.
		out.Hover, _ = sankey.ParseHover(req.Hover.Type, req.Hover.Index)
	}
	return out
}

// GetFilters returns the location and counterpart selector options.
func (h *FlowHandler) GetFilters(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.facade.Filters())
}

// GetDiagram builds the diagram for the posted selector values and hover.
func (h *FlowHandler) GetDiagram(w http.ResponseWriter, r *http.Request) {
	var req DiagramRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, r, errors.New("invalid request body"))
			return
		}
	}

	diagram, err := h.facade.Diagram(r.Context(), req.toFlowRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, diagram)
}

// GetDiagramHTML renders the diagram as a page. Selector values and the hover
// come from the query string.
func (h *FlowHandler) GetDiagramHTML(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := DiagramRequest{
		Location:    q.Get("location"),
		Counterpart: q.Get("counterpart"),
	}
	if hoverType := q.Get("hover"); hoverType != "" {
		index, err := strconv.Atoi(q.Get("index"))
		if err != nil {
			response.BadRequest(w, r, errors.New("hover index must be an integer"))
			return
		}
		req.Hover = &HoverRequest{Type: hoverType, Index: index}
	}

	var buf bytes.Buffer
	if err := h.facade.RenderHTML(r.Context(), &buf, req.toFlowRequest()); err != nil {
		writeError(w, r, err)
		return
	}
	response.HTML(w, buf.Bytes())
}

// Reset clears both selectors and returns the unfiltered diagram.
func (h *FlowHandler) Reset(w http.ResponseWriter, r *http.Request) {
	diagram, err := h.facade.Reset(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, diagram)
}
