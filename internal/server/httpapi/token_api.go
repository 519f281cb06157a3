package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const apiToken = "token"

// TokenRouterDeps collects what the token API needs.
type TokenRouterDeps struct {
	// Secrets holds the values served by GET /secrets/{name}.
	Secrets TokenNamespace
	// AdminTokens holds the bearer tokens allowed to call the API.
	AdminTokens TokenNamespace
	Logger      logging.Logger
	Metrics     metrics.MetricsCollector
}

type tokenHandler struct {
	secrets     TokenNamespace
	adminTokens TokenNamespace
	logger      logging.Logger
}

// NewTokenRouter returns the bearer-token protected API:
//
//	GET  /secrets/{name}
//	POST /admin/tokens   {tokenName, value}
//	POST /admin/clients  {value}
func NewTokenRouter(deps *TokenRouterDeps) http.Handler {
	h := &tokenHandler{
		secrets:     deps.Secrets,
		adminTokens: deps.AdminTokens,
		logger:      deps.Logger,
	}

	r := chi.NewRouter()
	r.Use(RequestLogger(deps.Logger, deps.Metrics, apiToken))
	r.Use(BearerAuth(deps.AdminTokens, deps.Logger, deps.Metrics))

	r.Get("/secrets/{name}", h.getSecret)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/tokens", h.createToken)
		r.Post("/clients", h.createClient)
	})

	return r
}

type valueResponse struct {
	Value string `json:"value"`
}

func (h *tokenHandler) getSecret(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	value, err := h.secrets.Get(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			writeJSON(w, http.StatusNotFound, errorBody{Error: "notFound"})
		case errors.Is(err, common.ErrorAuthenticationFailure):
			h.logger.Error(r.Context(), "stored secret failed to decrypt", "name", name, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "decryptionFailed"})
		default:
			h.logger.Error(r.Context(), "get secret", "name", name, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internalError"})
		}
		return
	}

	writeJSON(w, http.StatusOK, valueResponse{Value: value})
}

type createTokenRequest struct {
	TokenName string `json:"tokenName"`
	Value     string `json:"value"`
}

func (h *tokenHandler) createToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if err := decodeJSON(w, r, &req); err != nil || req.TokenName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalidRequest"})
		return
	}

	// a record that exists but no longer decrypts still occupies the name
	_, err := h.secrets.Get(r.Context(), req.TokenName)
	switch {
	case err == nil, errors.Is(err, common.ErrorAuthenticationFailure):
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "tokenAlreadyExists"})
		return
	case !errors.Is(err, common.ErrorNotFound):
		h.logger.Error(r.Context(), "check token", "name", req.TokenName, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internalError"})
		return
	}

	if _, err := h.secrets.Create(r.Context(), req.TokenName, req.Value); err != nil {
		if errors.Is(err, common.ErrorTokenAlreadyExists) {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "tokenAlreadyExists"})
			return
		}
		h.logger.Error(r.Context(), "create token", "name", req.TokenName, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internalError"})
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

type createClientRequest struct {
	Value string `json:"value"`
}

type createClientResponse struct {
	TokenName string `json:"tokenName"`
}

func (h *tokenHandler) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Value == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalidRequest"})
		return
	}

	name := uuid.NewString()
	if _, err := h.adminTokens.Create(r.Context(), name, req.Value); err != nil {
		h.logger.Error(r.Context(), "create client token", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internalError"})
		return
	}

	h.logger.Info(r.Context(), "client token issued", "name", name)
	writeJSON(w, http.StatusOK, createClientResponse{TokenName: name})
}
