package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/adswafford/redbiom/internal/api/auth"
	"github.com/adswafford/redbiom/internal/logger"
)

// requestLogger logs one line per completed request using the internal
// logger. Health probes log at DEBUG to keep steady-state logs quiet.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logArgs := []any{
			logger.KeyRequestID, requestID,
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			logger.KeyClientIP, r.RemoteAddr,
			"bytes", ww.BytesWritten(),
			logger.KeyDuration, time.Since(start).Milliseconds(),
		}

		if strings.HasPrefix(r.URL.Path, "/health") {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}

// requireAuth rejects requests lacking a valid bearer token. A nil token
// service disables the check.
func requireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}

			if _, err := tokens.Validate(strings.TrimPrefix(header, "Bearer ")); err != nil {
				WriteProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
