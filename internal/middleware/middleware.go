// Package middleware holds the HTTP middleware mounted in front of the API.
package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"taskhub/internal/logger"
	"taskhub/internal/response"
)

func writeEnvelope(w http.ResponseWriter, code int, env response.Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(env)
}

// RequestLogger logs one structured line per request once it completes.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				kv := []interface{}{
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote", r.RemoteAddr,
				}
				if id := middleware.GetReqID(r.Context()); id != "" {
					kv = append(kv, "request_id", id)
				}
				switch {
				case status >= 500:
					log.Error("request", kv...)
				case status >= 400:
					log.Warn("request", kv...)
				default:
					log.Info("request", kv...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// ClientAddress rewrites RemoteAddr from X-Forwarded-For/X-Real-IP when the
// server sits behind a trusted proxy. Otherwise the headers are ignored and
// the peer address is kept, so clients cannot choose their own identity.
func ClientAddress(trustProxy bool) func(http.Handler) http.Handler {
	if trustProxy {
		return middleware.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

// SecurityHeaders sets the hardening headers sent with every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return chainHeaders(next,
		"X-Content-Type-Options", "nosniff",
		"X-Frame-Options", "SAMEORIGIN",
		"X-XSS-Protection", "0",
		"Referrer-Policy", "no-referrer",
	)
}

func chainHeaders(next http.Handler, pairs ...string) http.Handler {
	for i := len(pairs) - 2; i >= 0; i -= 2 {
		next = middleware.SetHeader(pairs[i], pairs[i+1])(next)
	}
	return next
}
