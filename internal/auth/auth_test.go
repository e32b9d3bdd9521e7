package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestHashAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		expected string
	}{
		{
			name:     "simple key",
			apiKey:   "test-key-123",
			expected: "625faa3fbbc3d2bd9d6ee7678d04cc5339cb33dc68d9b58451853d60046e226a",
		},
		{
			name:     "empty key",
			apiKey:   "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hash := HashAPIKey(tt.apiKey); hash != tt.expected {
				t.Errorf("HashAPIKey() = %v, want %v", hash, tt.expected)
			}
		})
	}
}

func TestAuthenticator_ValidateAPIKey(t *testing.T) {
	a := NewAuthenticator([]Key{
		{Name: "garage", KeyHash: HashAPIKey("valid-key-1")},
		{KeyHash: HashAPIKey("valid-key-2")},
	})

	tests := []struct {
		name     string
		apiKey   string
		wantName string
		wantErr  error
	}{
		{name: "named key", apiKey: "valid-key-1", wantName: "garage"},
		{name: "unnamed key", apiKey: "valid-key-2", wantName: "default"},
		{name: "unknown key", apiKey: "nope", wantErr: ErrInvalidKey},
		{name: "empty key", apiKey: "", wantErr: ErrMissingKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := a.ValidateAPIKey(tt.apiKey)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateAPIKey() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAPIKey() error = %v", err)
			}
			if c.Name != tt.wantName {
				t.Errorf("client = %q, want %q", c.Name, tt.wantName)
			}
		})
	}
}

func TestAuthenticator_SetKeys(t *testing.T) {
	a := NewAuthenticator([]Key{{KeyHash: HashAPIKey("old")}})
	a.SetKeys([]Key{{Name: "new", KeyHash: HashAPIKey("new")}})

	if _, err := a.ValidateAPIKey("old"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("old key error = %v, want ErrInvalidKey", err)
	}
	if _, err := a.ValidateAPIKey("new"); err != nil {
		t.Errorf("new key error = %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestExtractAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer abc"}, want: "abc"},
		{name: "lowercase bearer", headers: map[string]string{"Authorization": "bearer abc"}, want: "abc"},
		{name: "bare", headers: map[string]string{"Authorization": "abc"}, want: "abc"},
		{name: "x-api-key wins", headers: map[string]string{"Authorization": "Bearer abc", "X-API-Key": "xyz"}, want: "xyz"},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ExtractAPIKey(req); got != tt.want {
				t.Errorf("ExtractAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
