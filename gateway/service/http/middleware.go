package http

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"safetyhub/config"
)

// RequestIDHeader carries the per-request id in both directions
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// RequestID returns the id assigned by the request-id middleware, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestIDMiddleware keeps a caller-supplied X-Request-ID or generates one
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// accessLogMiddleware writes one line per request
func accessLogMiddleware(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Printf("HTTP %s %s -> %d (%d bytes, %v) client=%s request_id=%s",
				r.Method, r.URL.Path, m.Code, m.Written, m.Duration, clientIP(r), RequestID(r.Context()))
		})
	}
}

// clientIP prefers proxy headers over the socket address
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if comma := strings.Index(forwarded, ","); comma != -1 {
			return strings.TrimSpace(forwarded[:comma])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Handler returns the router wrapped with request ids, access logging, CORS and panic
// recovery. 404, 405 and preflight responses pass through all of them.
func (h *SafetyHandler) Handler(corsCfg config.CorsConfig) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: corsCfg.AllowCredentials,
	})
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(h.logger),
		handlers.PrintRecoveryStack(true),
	)
	logged := accessLogMiddleware(h.logger)(c.Handler(h.Router()))
	return recovery(requestIDMiddleware(logged))
}
