// Package models defines server-side records shared by repositories,
// services and the HTTP layer.
package models

import "time"

// User is a registered account. PasswordHash is an argon2id PHC string and
// never leaves the server.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
