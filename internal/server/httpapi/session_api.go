package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const apiSession = "session"

// SessionRouterDeps collects what the session API needs.
type SessionRouterDeps struct {
	Auth    AuthService
	Secrets SecretService
	Logger  logging.Logger
	Metrics metrics.MetricsCollector
	// Gatherer backs GET /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
}

type sessionHandler struct {
	auth    AuthService
	secrets SecretService
	logger  logging.Logger
	metrics metrics.MetricsCollector
}

// NewSessionRouter returns the session protected API. Every route except
// GET /metrics requires x-session-id; register and login may skip it with
// "x-skip-auth: true".
func NewSessionRouter(deps *SessionRouterDeps) http.Handler {
	h := &sessionHandler{
		auth:    deps.Auth,
		secrets: deps.Secrets,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}

	r := chi.NewRouter()
	r.Use(RequestLogger(deps.Logger, deps.Metrics, apiSession))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(deps.Auth, deps.Logger, deps.Metrics))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
		})

		r.Route("/secrets", func(r chi.Router) {
			r.Post("/", h.createSecret)
			r.Get("/", h.listSecrets)
			r.Get("/{key}", h.getSecret)
		})
	})

	return r
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (h *sessionHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Message: "Invalid request body"})
		return
	}

	user, session, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUsernameTaken):
			writeJSON(w, http.StatusBadRequest, authResponse{Message: "Username already exists"})
		case errors.Is(err, common.ErrorValidation):
			writeJSON(w, http.StatusBadRequest, authResponse{Message: "Username and password are required"})
		default:
			h.logger.Error(r.Context(), "register", "error", err)
			writeJSON(w, http.StatusInternalServerError, authResponse{Message: "Internal error"})
		}
		return
	}

	h.metrics.RecordSessionCreated()
	writeJSON(w, http.StatusOK, authResponse{Success: true, SessionID: session.ID, UserID: user.ID})
}

func (h *sessionHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Message: "Invalid request body"})
		return
	}

	user, session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			h.metrics.RecordAuthFailure(apiSession, "invalid_credentials")
			writeJSON(w, http.StatusUnauthorized, authResponse{Message: "Invalid credentials"})
			return
		}
		h.logger.Error(r.Context(), "login", "error", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Message: "Internal error"})
		return
	}

	h.metrics.RecordSessionCreated()
	writeJSON(w, http.StatusOK, authResponse{Success: true, SessionID: session.ID, UserID: user.ID})
}

func (h *sessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := r.Header.Get(common.SessionHeaderName); sessionID != "" {
		if err := h.auth.Logout(r.Context(), sessionID); err != nil {
			h.logger.Error(r.Context(), "logout", "error", err)
			writeJSON(w, http.StatusInternalServerError, statusBody{Message: "Internal error"})
			return
		}
	}

	writeJSON(w, http.StatusOK, statusBody{Success: true, Message: "Logged out successfully"})
}

type secretRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type secretView struct {
	ID        string     `json:"id,omitempty"`
	Key       string     `json:"key"`
	Value     *string    `json:"value,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type secretResponse struct {
	Success bool        `json:"success"`
	Secret  *secretView `json:"secret,omitempty"`
	Message string      `json:"message,omitempty"`
}

type secretsListResponse struct {
	Success bool         `json:"success"`
	Secrets []secretView `json:"secrets"`
}

func (h *sessionHandler) createSecret(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, statusBody{Message: "Authentication required"})
		return
	}

	var req secretRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, secretResponse{Message: "Invalid request body"})
		return
	}

	secret, err := h.secrets.CreateSecret(r.Context(), userID, req.Key, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorDuplicateKey):
			writeJSON(w, http.StatusBadRequest, secretResponse{Message: fmt.Sprintf("Secret with key '%s' already exists", req.Key)})
		case errors.Is(err, common.ErrorValidation):
			writeJSON(w, http.StatusBadRequest, secretResponse{Message: "Key is required"})
		default:
			h.logger.Error(r.Context(), "create secret", "error", err)
			writeJSON(w, http.StatusInternalServerError, secretResponse{Message: "Internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, secretResponse{
		Success: true,
		Secret:  &secretView{ID: secret.ID, Key: secret.Key, CreatedAt: &secret.CreatedAt},
	})
}

func (h *sessionHandler) getSecret(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, statusBody{Message: "Authentication required"})
		return
	}

	key := chi.URLParam(r, "key")
	secret, err := h.secrets.GetSecret(r.Context(), userID, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, secretResponse{Message: fmt.Sprintf("Secret with key '%s' not found", key)})
			return
		}
		h.logger.Error(r.Context(), "get secret", "error", err)
		writeJSON(w, http.StatusInternalServerError, secretResponse{Message: "Internal error"})
		return
	}

	writeJSON(w, http.StatusOK, secretResponse{
		Success: true,
		Secret:  &secretView{Key: secret.Key, Value: &secret.Value, CreatedAt: &secret.CreatedAt},
	})
}

func (h *sessionHandler) listSecrets(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, statusBody{Message: "Authentication required"})
		return
	}

	list, err := h.secrets.ListSecrets(r.Context(), userID)
	if err != nil {
		h.logger.Error(r.Context(), "list secrets", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusBody{Message: "Internal error"})
		return
	}

	views := make([]secretView, 0, len(list))
	for _, s := range list {
		views = append(views, secretView{ID: s.ID, Key: s.Key, CreatedAt: &s.CreatedAt})
	}

	writeJSON(w, http.StatusOK, secretsListResponse{Success: true, Secrets: views})
}
