package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	core "safetyhub/gateway/service/core"
	"safetyhub/storage/store"
)

// ServiceName is reported by the health endpoint
const ServiceName = "safety-gateway"

// TextRequest is the body of every single-field endpoint
type TextRequest struct {
	Text *string `json:"text"`
}

// SaveRequest is the body of POST /repo/save
type SaveRequest struct {
	Text *string `json:"text"`
	Type *string `json:"type"`
}

// requestError is a client error carrying its HTTP status
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func missingField(name string) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf("missing required field %q", name)}
}

// SafetyHandler serves the JSON API
type SafetyHandler struct {
	svc          *core.Service
	logger       *log.Logger
	maxBodyBytes int64
}

// NewSafetyHandler creates a handler; maxBodyBytes <= 0 means 10MB
func NewSafetyHandler(s *core.Service, l *log.Logger, maxBodyBytes int64) *SafetyHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}
	return &SafetyHandler{svc: s, logger: l, maxBodyBytes: maxBodyBytes}
}

// Router registers every route, one subrouter per path group
func (h *SafetyHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	crypto := r.PathPrefix("/crypto").Subrouter()
	crypto.HandleFunc("/encrypt", h.Encrypt).Methods(http.MethodPost)
	crypto.HandleFunc("/hash", h.Hash).Methods(http.MethodPost)

	transform := r.PathPrefix("/transform").Subrouter()
	transform.HandleFunc("/summarize", h.Summarize).Methods(http.MethodPost)
	transform.HandleFunc("/rephrase", h.Rephrase).Methods(http.MethodPost)

	safety := r.PathPrefix("/safety").Subrouter()
	safety.HandleFunc("/misinformation", h.Misinformation).Methods(http.MethodPost)

	awareness := r.PathPrefix("/awareness").Subrouter()
	awareness.HandleFunc("/scan", h.Scan).Methods(http.MethodPost)

	repo := r.PathPrefix("/repo").Subrouter()
	repo.HandleFunc("/save", h.SaveLog).Methods(http.MethodPost)
	repo.HandleFunc("/logs", h.Logs).Methods(http.MethodGet)

	return r
}

// Home handles GET /
func (h *SafetyHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]string{"message": core.WelcomeMessage}, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *SafetyHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"service":   ServiceName,
	}, http.StatusOK)
}

// Encrypt handles POST /crypto/encrypt
func (h *SafetyHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}
	token, err := h.svc.Encrypt(text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondJSON(w, map[string]string{"encrypted": token}, http.StatusOK)
}

// Hash handles POST /crypto/hash
func (h *SafetyHandler) Hash(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, map[string]string{"hash": h.svc.Hash(text)}, http.StatusOK)
}

// Summarize handles POST /transform/summarize
func (h *SafetyHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, map[string]string{"summary": h.svc.Summarize(text)}, http.StatusOK)
}

// Rephrase handles POST /transform/rephrase
func (h *SafetyHandler) Rephrase(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, map[string]string{"rephrased": h.svc.Rephrase(text)}, http.StatusOK)
}

// Misinformation handles POST /safety/misinformation
func (h *SafetyHandler) Misinformation(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, h.svc.CheckMisinformation(text), http.StatusOK)
}

// Scan handles POST /awareness/scan
func (h *SafetyHandler) Scan(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, h.svc.Scan(text), http.StatusOK)
}

// SaveLog handles POST /repo/save
func (h *SafetyHandler) SaveLog(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Text == nil {
		h.fail(w, r, missingField("text"))
		return
	}
	if req.Type == nil {
		h.fail(w, r, missingField("type"))
		return
	}

	if err := h.svc.SaveLog(r.Context(), *req.Text, *req.Type); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondJSON(w, map[string]string{"status": core.SaveStatus}, http.StatusOK)
}

// Logs handles GET /repo/logs
func (h *SafetyHandler) Logs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Logs(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondJSON(w, entries, http.StatusOK)
}

// readText decodes a TextRequest and writes the error response itself when it fails
func (h *SafetyHandler) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TextRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return "", false
	}
	if req.Text == nil {
		h.fail(w, r, missingField("text"))
		return "", false
	}
	return *req.Text, true
}

func (h *SafetyHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &requestError{status: http.StatusRequestEntityTooLarge, msg: "Request body too large"}
		case errors.Is(err, io.EOF):
			return &requestError{status: http.StatusBadRequest, msg: "Bad Request: empty body"}
		default:
			return &requestError{status: http.StatusBadRequest, msg: "Bad Request: Invalid JSON format"}
		}
	}
	return nil
}

// fail maps an error to a status code and writes the error body
func (h *SafetyHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Printf("HTTP Handler: %s %s failed (request_id=%s): %v", r.Method, r.URL.Path, RequestID(r.Context()), err)
	}
	h.respondError(w, msg, status)
}

func statusFor(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.msg
	case errors.Is(err, store.ErrCorruptLog):
		return http.StatusInternalServerError, store.ErrCorruptLog.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *SafetyHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path), http.StatusNotFound)
}

func (h *SafetyHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// respondJSON sends JSON response
func (h *SafetyHandler) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("HTTP Handler: Failed to encode JSON response: %v", err)
	}
}

// respondError sends error response
func (h *SafetyHandler) respondError(w http.ResponseWriter, message string, statusCode int) {
	h.respondJSON(w, map[string]interface{}{
		"error":   message,
		"status":  statusCode,
		"message": http.StatusText(statusCode),
	}, statusCode)
}
