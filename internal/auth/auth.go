// Package auth resolves the API token sent to the booking backend.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	credFileName = "credentials.json"
	// TokenEnv overrides the stored credentials.
	TokenEnv = "HOTELRES_TOKEN"
)

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when it was saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional
}

// Expired reports whether the token carries an expiry before now.
func (t *TokenInfo) Expired(now time.Time) bool {
	return t != nil && t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Credentials reads and writes the token file under a data directory.
type Credentials struct {
	dir string
}

func NewCredentials(dataDir string) *Credentials {
	return &Credentials{dir: dataDir}
}

func (c *Credentials) path() string {
	return filepath.Join(c.dir, credFileName)
}

// GetToken returns the env override, else the stored token, else nil when
// nobody is logged in.
func (c *Credentials) GetToken() (*TokenInfo, error) {
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: "env"}, nil
	}

	b, err := os.ReadFile(c.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// Token is GetToken reduced to the bearer value. Expired or missing
// credentials yield "".
func (c *Credentials) Token() (string, error) {
	ti, err := c.GetToken()
	if err != nil || ti == nil || ti.Expired(time.Now()) {
		return "", err
	}
	return ti.Token, nil
}

func (c *Credentials) SetToken(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// owner-only
	if err := os.WriteFile(c.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Credentials) DeleteToken() error {
	if err := os.Remove(c.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
