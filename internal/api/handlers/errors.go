package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/fine-dashboard/internal/api/response"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
	"github.com/ramonehamilton/fine-dashboard/internal/session"
)

// writeError maps facade errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dashboard.ErrSessionNotFound):
		response.NotFound(w, r, err)
	case errors.Is(err, dashboard.ErrUnknownCharacter):
		response.BadRequest(w, r, err)
	case errors.Is(err, session.ErrTooManySessions):
		response.ServiceUnavailable(w, r, err)
	default:
		response.InternalError(w, r, err)
	}
}
