// Package auth checks client API keys against configured SHA-256 hashes.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
)

var (
	// ErrMissingKey is returned when a request carries no API key.
	ErrMissingKey = errors.New("missing API key")
	// ErrInvalidKey is returned for a key that matches no configured hash.
	ErrInvalidKey = errors.New("invalid API key")
)

// Key is a configured client key. Only the hash is ever stored.
type Key struct {
	Name    string
	KeyHash string
}

// Client identifies the caller of an authenticated request.
type Client struct {
	Name string
}

// Authenticator validates API keys. Its key set can be replaced while it
// is in use.
type Authenticator struct {
	mu      sync.RWMutex
	clients map[string]*Client // keyhash -> client
}

// NewAuthenticator creates an authenticator for keys.
func NewAuthenticator(keys []Key) *Authenticator {
	a := &Authenticator{}
	a.SetKeys(keys)
	return a
}

// SetKeys replaces the accepted keys.
func (a *Authenticator) SetKeys(keys []Key) {
	clients := make(map[string]*Client, len(keys))
	for _, k := range keys {
		name := k.Name
		if name == "" {
			name = "default"
		}
		clients[strings.ToLower(k.KeyHash)] = &Client{Name: name}
	}

	a.mu.Lock()
	a.clients = clients
	a.mu.Unlock()
}

// Len returns the number of accepted keys.
func (a *Authenticator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

// ValidateAPIKey validates an API key and returns the associated client.
func (a *Authenticator) ValidateAPIKey(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	keyHash := HashAPIKey(apiKey)

	a.mu.RLock()
	defer a.mu.RUnlock()

	for hash, c := range a.clients {
		if subtle.ConstantTimeCompare([]byte(keyHash), []byte(hash)) == 1 {
			return c, nil
		}
	}
	return nil, ErrInvalidKey
}

// ExtractAPIKey reads the key from "Authorization: Bearer <key>", a bare
// Authorization value, or the X-API-Key header.
func ExtractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, key, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(key)
	}
	return h
}

// HashAPIKey creates a SHA-256 hash of an API key for storage
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}
