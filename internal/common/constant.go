// Package common contains shared constants and sentinel errors used across
// secretkeeper components.
package common

import "time"

// Header names understood by the HTTP APIs.
const (
	// AuthorizationHeaderName carries "Bearer <token>" on token API requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "
	// SessionHeaderName carries the session id on session API requests.
	SessionHeaderName = "x-session-id"
	// SkipAuthHeaderName lets register/login requests through the session check.
	SkipAuthHeaderName = "x-skip-auth"
)

// DefaultSessionTTL is the lifetime of a freshly created session.
const DefaultSessionTTL = 24 * time.Hour

// SessionIDSize is the number of random bytes behind a session id (256 bits).
const SessionIDSize = 32

// Token namespaces, one collection and one cipher each.
const (
	SecretsNamespace     = "secrets"
	AdminTokensNamespace = "adminTokens"
	// AdminTokenName is the record seeded into AdminTokensNamespace at startup.
	AdminTokenName = "admin"
)
