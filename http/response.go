package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/bucketgate"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Detail: detail}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WriteUnauthorized writes a 401 response with a Basic challenge.
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Basic")
	WriteError(w, http.StatusUnauthorized, detail)
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code, detail := classify(err)

	attrs := []any{"error", err, "status", code, "request_id", RequestIDFromContext(r.Context())}
	if code >= http.StatusInternalServerError {
		slog.Error("request error", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}

	if code == http.StatusUnauthorized {
		WriteUnauthorized(w, detail)
		return
	}
	WriteError(w, code, detail)
}

// classify maps an error onto a status code and client message. Operation
// failures are checked before ErrNotFound since a backend error may carry both.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, bucketgate.ErrUnauthorized):
		return http.StatusUnauthorized, "Incorrect credentials"
	case errors.Is(err, bucketgate.ErrInvalidInput):
		return http.StatusBadRequest, "FAILED: Invalid path"
	case errors.Is(err, bucketgate.ErrStorageWrite):
		return http.StatusInternalServerError, "FAILED: File upload KO"
	case errors.Is(err, bucketgate.ErrStorageDelete):
		return http.StatusInternalServerError, "FAILED: File delete KO"
	case errors.Is(err, bucketgate.ErrPresign):
		return http.StatusInternalServerError, "FAILED: Download URL could not be generated"
	case errors.Is(err, bucketgate.ErrInternal):
		return http.StatusInternalServerError, "Internal server error"
	case errors.Is(err, bucketgate.ErrNotFound):
		return http.StatusNotFound, "FAILED: File specified in path not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
