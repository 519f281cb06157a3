package models

// Token is an encrypted named value in a token namespace.
//
// Ciphertext, IV and AuthTag are hex encoded output of the namespace cipher.
// Lookup is the keyed hash of the plaintext used for existence checks.
type Token struct {
	Name       string
	Ciphertext string
	IV         string
	AuthTag    string
	Lookup     string
}
