package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Sentinel-Gate/Sentinelgate/internal/ctxkey"
)

// LoggerKey is the context key for the enriched per-request logger,
// shared via internal/ctxkey to avoid an import cycle with other
// packages that also enrich it.
var LoggerKey = ctxkey.LoggerKey{}

// RequestIDMiddleware extracts or generates a request ID and stores an
// enriched *slog.Logger carrying it under LoggerKey, so every log line
// inside the handler chain's dispatch for this request includes
// request_id.
func RequestIDMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			ctx := context.WithValue(r.Context(), LoggerKey, logger.With("request_id", requestID))
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerFromContext retrieves the enriched logger from context, falling
// back to slog.Default() if RequestIDMiddleware never ran.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// originAllowed enforces origin validation: a present Host or Origin
// header must appear in allowed, or the request is rejected. An empty
// allow-list disables the check entirely (the default, matching a
// reverse-proxied deployment that already enforces this).
func originAllowed(r *http.Request, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	if origin := r.Header.Get("Origin"); origin != "" {
		_, ok := allowed[origin]
		return ok
	}
	if r.Host != "" {
		_, ok := allowed[r.Host]
		return ok
	}
	return true
}
