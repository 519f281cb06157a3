package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/cryptox"
	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/secretkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionAPIFixture struct {
	handler http.Handler
	metrics *fakeMetrics
}

func newSessionAPI(t *testing.T) *sessionAPIFixture {
	t.Helper()

	store := services.NewSessionStore(sessions.NewMemoryRepository(), common.DefaultSessionTTL)
	m := &fakeMetrics{}
	h := NewSessionRouter(&SessionRouterDeps{
		Auth:    services.NewAuthService(users.NewMemoryRepository(), store),
		Secrets: newTestSecretService(t),
		Logger:  logging.Nop(),
		Metrics: m,
	})
	return &sessionAPIFixture{handler: h, metrics: m}
}

func newTestSecretService(t *testing.T) *services.SecretService {
	t.Helper()
	c, err := cryptox.NewCipher(cryptox.NewKey("user_secrets_key_for_tests_32b!!"), cryptox.NewIV("user_iv_16_byte!"))
	require.NoError(t, err)
	return services.NewSecretService(secrets.NewMemoryRepository(), c)
}

var skipAuth = map[string]string{common.SkipAuthHeaderName: "true"}

func withSession(id string) map[string]string {
	return map[string]string{common.SessionHeaderName: id}
}

func register(t *testing.T, h http.Handler, username, password string) (sessionID, userID string) {
	t.Helper()
	w, body := doJSON(t, h, http.MethodPost, "/auth/register",
		map[string]string{"username": username, "password": password}, skipAuth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, true, body["success"])
	return body["sessionId"].(string), body["userId"].(string)
}

func TestSessionAPI_RegisterRequiresSkipHeader(t *testing.T) {
	f := newSessionAPI(t)

	w, body := doJSON(t, f.handler, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice", "password": "pw1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Authentication required", body["message"])
}

func TestSessionAPI_SkipHeaderOnlyForAuthRoutes(t *testing.T) {
	f := newSessionAPI(t)

	w, _ := doJSON(t, f.handler, http.MethodGet, "/secrets", nil, skipAuth)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, f.handler, http.MethodPost, "/auth/logout", nil, skipAuth)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAPI_RegisterDuplicate(t *testing.T) {
	f := newSessionAPI(t)
	register(t, f.handler, "alice", "pw1")

	w, body := doJSON(t, f.handler, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice", "password": "pw2"}, skipAuth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Username already exists", body["message"])
}

func TestSessionAPI_Login(t *testing.T) {
	f := newSessionAPI(t)
	regSession, userID := register(t, f.handler, "alice", "pw1")

	w, body := doJSON(t, f.handler, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "nope"}, skipAuth)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])

	w, body = doJSON(t, f.handler, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "pw1"}, skipAuth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, body["userId"])
	assert.NotEqual(t, regSession, body["sessionId"])

	assert.Equal(t, 2, f.metrics.sessions)
	assert.Contains(t, f.metrics.authFailures, "session:invalid_credentials")
}

func TestSessionAPI_InvalidSession(t *testing.T) {
	f := newSessionAPI(t)

	w, body := doJSON(t, f.handler, http.MethodGet, "/secrets", nil, withSession("bogus"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired session", body["message"])
}

func TestSessionAPI_Secrets(t *testing.T) {
	f := newSessionAPI(t)
	sid, _ := register(t, f.handler, "bob", "pw")

	w, body := doJSON(t, f.handler, http.MethodPost, "/secrets",
		map[string]string{"key": "api-key", "value": "s3cr3t"}, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)
	secret := body["secret"].(map[string]any)
	assert.NotEmpty(t, secret["id"])
	assert.Equal(t, "api-key", secret["key"])
	assert.NotContains(t, secret, "value")

	w, body = doJSON(t, f.handler, http.MethodPost, "/secrets",
		map[string]string{"key": "api-key", "value": "again"}, withSession(sid))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])

	w, body = doJSON(t, f.handler, http.MethodGet, "/secrets/missing", nil, withSession(sid))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Secret with key 'missing' not found", body["message"])

	w, body = doJSON(t, f.handler, http.MethodGet, "/secrets", nil, withSession(sid))
	require.Equal(t, http.StatusOK, w.Code)
	list := body["secrets"].([]any)
	require.Len(t, list, 1)
	item := list[0].(map[string]any)
	assert.Equal(t, "api-key", item["key"])
	assert.NotContains(t, item, "value")

	// another user does not see bob's secret
	other, _ := register(t, f.handler, "carol", "pw")
	w, _ = doJSON(t, f.handler, http.MethodGet, "/secrets/api-key", nil, withSession(other))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionAPI_AliceScenario(t *testing.T) {
	f := newSessionAPI(t)

	s1, _ := register(t, f.handler, "alice", "pw1")

	w, body := doJSON(t, f.handler, http.MethodPost, "/secrets",
		map[string]string{"key": "k1", "value": "v1"}, withSession(s1))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	w, body = doJSON(t, f.handler, http.MethodGet, "/secrets/k1", nil, withSession(s1))
	require.Equal(t, http.StatusOK, w.Code)
	secret := body["secret"].(map[string]any)
	assert.Equal(t, "k1", secret["key"])
	assert.Equal(t, "v1", secret["value"])

	w, body = doJSON(t, f.handler, http.MethodPost, "/auth/logout", nil, withSession(s1))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Logged out successfully", body["message"])

	w, body = doJSON(t, f.handler, http.MethodGet, "/secrets/k1", nil, withSession(s1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestSessionAPI_MetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	store := services.NewSessionStore(sessions.NewMemoryRepository(), common.DefaultSessionTTL)
	h := NewSessionRouter(&SessionRouterDeps{
		Auth:     services.NewAuthService(users.NewMemoryRepository(), store),
		Secrets:  newTestSecretService(t),
		Logger:   logging.Nop(),
		Metrics:  collector,
		Gatherer: reg,
	})

	register(t, h, "dave", "pw")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.True(t, strings.Contains(out, "secretkeeper_sessions_created_total 1"))
	assert.True(t, strings.Contains(out, `route="/auth/register"`))
}
