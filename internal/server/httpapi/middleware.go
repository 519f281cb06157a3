package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/metrics"
	"github.com/go-chi/chi/v5"
)

type contextKey string

var userIDContextKey = contextKey("user_id")

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the id stored by the session middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok && id != ""
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// unmatchedRoute labels requests that never reached a route, such as 404s
// and requests rejected by auth middleware.
const unmatchedRoute = "unmatched"

// RequestLogger logs every request and records it in m under the matched
// route pattern. 5xx responses are logged as errors, 4xx as warnings.
func RequestLogger(logger logging.Logger, m metrics.MetricsCollector, api string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.RecordRequest(api, r.Method, route, rec.statusCode, duration)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.statusCode,
				"duration_ms", float64(duration.Nanoseconds()) / float64(time.Millisecond),
			}

			switch {
			case rec.statusCode >= 500:
				logger.Error(r.Context(), "http_request", args...)
			case rec.statusCode >= 400:
				logger.Warn(r.Context(), "http_request", args...)
			default:
				logger.Info(r.Context(), "http_request", args...)
			}
		})
	}
}

// BearerAuth admits requests whose "Authorization: Bearer <token>" value
// exists in tokens. Anything else gets 401 {"error":"Unauthenticated"}.
func BearerAuth(tokens TokenNamespace, logger logging.Logger, m metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			token, found := strings.CutPrefix(header, common.BearerPrefix)
			if !found || token == "" {
				m.RecordAuthFailure(apiToken, "missing_token")
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthenticated"})
				return
			}

			ok, err := tokens.Exists(r.Context(), token)
			if err != nil {
				logger.Error(r.Context(), "bearer check failed", "error", err)
			}
			if err != nil || !ok {
				m.RecordAuthFailure(apiToken, "invalid_token")
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthenticated"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// skipAuthPaths may bypass the session check with "x-skip-auth: true".
var skipAuthPaths = map[string]struct{}{
	"/auth/register": {},
	"/auth/login":    {},
}

// SessionAuth resolves the x-session-id header to a user and stores its id
// in the request context. Requests to register and login carrying
// "x-skip-auth: true" pass without a session.
func SessionAuth(auth AuthService, logger logging.Logger, m metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(common.SkipAuthHeaderName) == "true" {
				if _, ok := skipAuthPaths[r.URL.Path]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			sessionID := r.Header.Get(common.SessionHeaderName)
			if sessionID == "" {
				m.RecordAuthFailure(apiSession, "missing_session")
				writeJSON(w, http.StatusUnauthorized, statusBody{Message: "Authentication required"})
				return
			}

			user, err := auth.ValidateSession(r.Context(), sessionID)
			if err != nil {
				if !errors.Is(err, common.ErrorNotFound) {
					logger.Error(r.Context(), "session check failed", "error", err)
					writeJSON(w, http.StatusInternalServerError, statusBody{Message: "Internal error"})
					return
				}
				m.RecordAuthFailure(apiSession, "invalid_session")
				writeJSON(w, http.StatusUnauthorized, statusBody{Message: "Invalid or expired session"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), user.ID)))
		})
	}
}
