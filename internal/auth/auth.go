// Package auth checks the shared password and issues the encrypted remember-me token.
package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrInvalidToken = errors.New("invalid remember token")

const keyInfo = "svtracker remember-me v1"

type tokenPayload struct {
	ID        string `json:"jti"`
	ExpiresAt int64  `json:"exp"`
}

type Authenticator struct {
	password []byte
	aead     cipher.AEAD
	ttl      time.Duration
	now      func() time.Time
}

// New derives the token key from password, so changing the password
// invalidates every outstanding token.
func New(password string, ttl time.Duration) (*Authenticator, error) {
	if password == "" {
		return nil, errors.New("auth: empty password")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(password), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create token cipher: %w", err)
	}
	return &Authenticator{password: []byte(password), aead: aead, ttl: ttl, now: time.Now}, nil
}

func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Check compares by exact equality.
func (a *Authenticator) Check(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), a.password) == 1
}

// IssueToken returns an opaque token valid until the returned time.
func (a *Authenticator) IssueToken() (string, time.Time, error) {
	expires := a.now().Add(a.ttl)
	payload, err := json.Marshal(tokenPayload{ID: uuid.NewString(), ExpiresAt: expires.Unix()})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode token: %w", err)
	}

	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(payload)+a.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", time.Time{}, fmt.Errorf("generate nonce: %w", err)
	}
	sealed := a.aead.Seal(nonce, nonce, payload, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), expires, nil
}

func (a *Authenticator) VerifyToken(token string) error {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(sealed) < a.aead.NonceSize()+a.aead.Overhead() {
		return fmt.Errorf("%w: too short", ErrInvalidToken)
	}
	nonce, ciphertext := sealed[:a.aead.NonceSize()], sealed[a.aead.NonceSize():]
	plain, err := a.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var payload tokenPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(payload.ID); err != nil {
		return fmt.Errorf("%w: bad id", ErrInvalidToken)
	}
	if !a.now().Before(time.Unix(payload.ExpiresAt, 0)) {
		return fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return nil
}
