package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/sagarc03/bucketgate"
)

// requestIDHeaders are checked in order for an upstream request ID.
var requestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

type requestIDKey struct{}

// RequestIDMiddleware reuses an upstream request ID or generates one, stores
// it in the request context and echoes it in the X-Request-ID response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqID string
		for _, header := range requestIDHeaders {
			if v := r.Header.Get(header); v != "" {
				reqID = v
				break
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID)))
	})
}

// RequestIDFromContext returns the request ID, or "" if none was assigned.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// BasicAuthMiddleware requires HTTP Basic credentials accepted by auth.
// A nil auth rejects every request. The password is never logged.
func BasicAuthMiddleware(auth bucketgate.Authenticator, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromContext(r.Context())

			username, password, ok := r.BasicAuth()
			if !ok {
				slog.Warn("missing credentials", "request_id", reqID)
				metrics.authFailed()
				WriteUnauthorized(w, "Not authenticated")
				return
			}

			slog.Info("verifying credentials", "user", username, "request_id", reqID)

			if auth == nil {
				slog.Warn("authentication failed", "user", username, "reason", "no authenticator configured", "request_id", reqID)
				metrics.authFailed()
				WriteUnauthorized(w, "Incorrect credentials")
				return
			}

			id, err := auth.Authenticate(r.Context(), username, password)
			if err != nil {
				if errors.Is(err, bucketgate.ErrUnauthorized) {
					slog.Warn("authentication failed", "user", username, "request_id", reqID)
					metrics.authFailed()
					WriteUnauthorized(w, "Incorrect credentials")
					return
				}
				HandleError(w, r, err)
				return
			}

			slog.Info("credentials verified", "user", id.Username, "request_id", reqID)

			next.ServeHTTP(w, r.WithContext(bucketgate.WithIdentity(r.Context(), id)))
		})
	}
}
