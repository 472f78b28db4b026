// Package response writes the JSON envelopes and pages the dashboard API returns.
package response

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// SuccessResponse wraps the data of a successful request.
type SuccessResponse struct {
	Data any `json:"data"`
}

// JSON writes data as JSON with the given status code. The body is encoded
// before the header is sent, so an encoding failure still yields a 500.
func JSON(w http.ResponseWriter, status int, data any) {
	if data == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// HTML writes a rendered page.
func HTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// Success writes data in a 200 envelope.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes data in a 201 envelope.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error body carrying the request id assigned by the
// RequestID middleware.
func Error(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := ErrorResponse{
		Error: http.StatusText(status),
		Code:  status,
	}
	if err != nil {
		body.Message = err.Error()
	}
	if r != nil {
		body.RequestID = middleware.GetReqID(r.Context())
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s: %d %v (request %s)", requestMethod(r), requestPath(r), status, err, body.RequestID)
	}
	JSON(w, status, body)
}

func requestMethod(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Method
}

func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	return r.URL.Path
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, http.StatusBadRequest, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, http.StatusNotFound, err)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, http.StatusTooManyRequests, err)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, http.StatusInternalServerError, err)
}

// ServiceUnavailable writes a 503 Service Unavailable response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, http.StatusServiceUnavailable, err)
}
