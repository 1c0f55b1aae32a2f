// Package http exposes the Dune engine over a stateless JSON API.
//
// Conversations can be run to completion in one call or driven one step at
// a time with sessions held in a SessionStore.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dunehq/dune"
	"github.com/dunehq/dune/internal/logging"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/ports"
)

// Handler serves the JSON API.
type Handler struct {
	engine  *dune.Engine
	store   ports.SessionStore
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets a structured logger for request-level events.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics mounts a metrics endpoint (e.g., promhttp) at /metrics.
func WithMetrics(metrics http.Handler) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// NewHandler creates the HTTP handler for the engine. The store backs the
// stepwise session endpoints and may be nil when only full runs are served.
func NewHandler(engine *dune.Engine, store ports.SessionStore, opts ...Option) http.Handler {
	h := &Handler{
		engine: engine,
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}
	r.Post("/v1/conversations", h.runConversation)
	r.Post("/v1/sms", h.sendSMS)
	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Get("/{id}", h.getSession)
		r.Post("/{id}/step", h.stepSession)
		r.Delete("/{id}", h.deleteSession)
	})
	return r
}

type conversationRequest struct {
	TenantID  string `json:"tenantId"`
	UserInput string `json:"userInput"`
}

type conversationResponse struct {
	AgentOutput string `json:"agentOutput"`
	State       string `json:"state"`
}

type sessionResponse struct {
	SessionID   string `json:"sessionId"`
	State       string `json:"state"`
	AgentOutput string `json:"agentOutput,omitempty"`
	Terminal    bool   `json:"terminal"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (h *Handler) runConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}

	final, err := h.engine.RunConversation(r.Context(), req.TenantID, req.UserInput)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{
		AgentOutput: final.LastOutput,
		State:       final.Current,
	})
}

func (h *Handler) sendSMS(w http.ResponseWriter, r *http.Request) {
	var payload domain.SMSPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}

	result, err := h.engine.SendSMS(r.Context(), payload)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, errorResponse{Error: vErr.Error(), Field: vErr.Field})
			return
		}
		var pErr *domain.ProviderError
		if errors.As(err, &pErr) {
			h.logger.Error("provider dispatch failed", "error", pErr)
			writeError(w, http.StatusBadGateway, errorResponse{Error: "provider dispatch failed"})
			return
		}
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, errorResponse{Error: "session store not configured"})
		return
	}

	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}

	sess, err := h.engine.NewSession(req.TenantID, req.UserInput)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	id := uuid.NewString()
	if err := h.store.Save(r.Context(), id, sess); err != nil {
		h.logger.Error("session save failed", "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to persist session"})
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: id,
		State:     sess.Current,
		Terminal:  sess.Terminal(),
	})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, errorResponse{Error: "session store not configured"})
		return
	}

	id := chi.URLParam(r, "id")
	sess, err := h.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}
		h.logger.Error("session load failed", "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to load session"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:   id,
		State:       sess.Current,
		AgentOutput: sess.LastOutput,
		Terminal:    sess.Terminal(),
	})
}

func (h *Handler) stepSession(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, errorResponse{Error: "session store not configured"})
		return
	}

	id := chi.URLParam(r, "id")
	sess, err := h.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}
		h.logger.Error("session load failed", "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to load session"})
		return
	}

	next, err := h.engine.Step(r.Context(), sess)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if err := h.store.Save(r.Context(), id, next); err != nil {
		h.logger.Error("session save failed", "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to persist session"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:   id,
		State:       next.Current,
		AgentOutput: next.LastOutput,
		Terminal:    next.Terminal(),
	})
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, errorResponse{Error: "session store not configured"})
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Error("session delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to delete session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, errorResponse{Error: vErr.Error(), Field: vErr.Field})
		return
	}
	var wErr *domain.WorkflowConfigurationError
	if errors.As(err, &wErr) {
		h.logger.Error("workflow configuration error", "error", wErr)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: wErr.Error()})
		return
	}
	h.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	writeJSON(w, status, body)
}
