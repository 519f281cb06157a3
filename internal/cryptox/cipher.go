// Package cryptox implements the symmetric crypto used for stored tokens:
// length-checked key material, AES-256-GCM sealing with per-call nonces,
// a keyed lookup index for equality search, and argon2id password hashing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"golang.org/x/crypto/hkdf"
)

const (
	tagSize = 16

	// lookupInfo separates the HMAC subkey from the encryption key.
	lookupInfo = "secretkeeper-token-lookup-v1"
)

// Sealed is the hex-encoded output of Cipher.Encrypt.
type Sealed struct {
	Ciphertext string
	IV         string
	AuthTag    string
}

// Cipher encrypts strings with AES-256-GCM under one immutable key.
//
// Each Encrypt call draws a fresh random 16-byte nonce, so equal plaintexts
// produce different ciphertexts. Lookup provides the deterministic value
// needed to find a record by its plaintext.
type Cipher struct {
	aead      cipher.AEAD
	lookupKey []byte
}

// NewCipher builds a Cipher from a 32-byte key and a 16-byte IV.
//
// The IV salts the derivation of the lookup subkey, so two namespaces that
// share a key but not an IV produce unrelated lookups. It returns
// common.ErrorValidation if either value is invalid.
func NewCipher(key, iv SafeValue[string]) (*Cipher, error) {
	k, err := key.Value()
	if err != nil {
		return nil, fmt.Errorf("cipher key: %w", err)
	}
	v, err := iv.Value()
	if err != nil {
		return nil, fmt.Errorf("cipher iv: %w", err)
	}

	block, err := aes.NewCipher([]byte(k))
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}

	lookupKey := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(k), []byte(v), []byte(lookupInfo))
	if _, err := io.ReadFull(r, lookupKey); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}

	return &Cipher{aead: aead, lookupKey: lookupKey}, nil
}

// Encrypt seals plaintext and returns ciphertext, nonce and tag as hex.
func (c *Cipher) Encrypt(plaintext string) (*Sealed, error) {
	nonce := make([]byte, IVSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	out := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	split := len(out) - tagSize

	return &Sealed{
		Ciphertext: hex.EncodeToString(out[:split]),
		IV:         hex.EncodeToString(nonce),
		AuthTag:    hex.EncodeToString(out[split:]),
	}, nil
}

// Decrypt opens a record produced by Encrypt.
//
// Malformed hex, a nonce or tag of the wrong size and a tag that does not
// verify all yield common.ErrorAuthenticationFailure.
func (c *Cipher) Decrypt(ciphertext, iv, authTag string) (string, error) {
	ct, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", common.ErrorAuthenticationFailure, err)
	}
	nonce, err := hex.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("%w: iv: %v", common.ErrorAuthenticationFailure, err)
	}
	tag, err := hex.DecodeString(authTag)
	if err != nil {
		return "", fmt.Errorf("%w: tag: %v", common.ErrorAuthenticationFailure, err)
	}
	if len(nonce) != IVSize || len(tag) != tagSize {
		return "", fmt.Errorf("%w: bad nonce or tag size", common.ErrorAuthenticationFailure)
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorAuthenticationFailure, err)
	}

	return string(plaintext), nil
}

// Lookup returns the hex HMAC-SHA-256 of plaintext under the lookup subkey.
func (c *Cipher) Lookup(plaintext string) string {
	mac := hmac.New(sha256.New, c.lookupKey)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}
