package models

import "time"

// Secret is a user-owned key/value pair. Key is unique per UserID.
//
// In storage Value holds the hex ciphertext and IV/AuthTag the rest of the
// sealed form. Rows written before sealing have an empty IV and a plaintext
// Value.
type Secret struct {
	ID        string
	UserID    string
	Key       string
	Value     string
	IV        string
	AuthTag   string
	CreatedAt time.Time
}
