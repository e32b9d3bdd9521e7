package oracle

import (
	"log/slog"
	"strings"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// CredentialPrefix is the literal every Gemini API key starts with.
const CredentialPrefix = "AIza"

// Credential is a Gemini API key. It never prints its value.
type Credential struct {
	key string
}

// NewCredential trims and checks the key's prefix. The check is cosmetic; no
// request is made to verify the key.
func NewCredential(key string) (Credential, error) {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, CredentialPrefix) {
		return Credential{}, domain.NewValidationError("api_key", redact(key), domain.ErrInvalidCredential)
	}
	return Credential{key: key}, nil
}

// Value returns the raw key for the authenticated request.
func (c Credential) Value() string { return c.key }

// IsZero reports whether no key is set.
func (c Credential) IsZero() bool { return c.key == "" }

func (c Credential) String() string { return redact(c.key) }

// LogValue keeps the key out of structured logs.
func (c Credential) LogValue() slog.Value { return slog.StringValue(redact(c.key)) }

func redact(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= len(CredentialPrefix) {
		return "****"
	}
	return key[:len(CredentialPrefix)] + "****"
}
