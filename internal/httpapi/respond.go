// Package httpapi is the REST transport: a stdlib ServeMux with
// method-pattern routes, JSON envelope responses and a small
// middleware chain. All hierarchy logic lives in internal/todo; the
// handlers only parse, delegate and map errors to status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vibetodo/vibetodo/internal/auth"
	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// envelope is the stable JSON response shape: {success, data|error}.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: true, Message: msg})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// respondErr maps the error taxonomy onto HTTP status codes:
// validation → 400, auth → 401, missing → 404, duplicate → 409,
// anything else → 500.
func respondErr(w http.ResponseWriter, err error) {
	var ve *item.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &item.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	return nil
}
