package auth

import (
	"context"
	"sync"

	"github.com/prn-tf/inkstand/internal/pkg/crypto"
)

// TokenStore persists the CSRF token.
type TokenStore interface {
	CSRFToken(ctx context.Context) string
	SetCSRFToken(ctx context.Context, token string)
	ClearCSRFToken(ctx context.Context)
}

// CSRF manages the anti-forgery nonce minted at login. It has no expiry of
// its own and is cleared whenever the session is.
type CSRF struct {
	mu    sync.Mutex
	token string
	store TokenStore
}

// NewCSRF creates a new CSRF manager.
func NewCSRF(store TokenStore) *CSRF {
	return &CSRF{store: store}
}

// Generate mints, stores and returns a fresh token.
func (c *CSRF) Generate(ctx context.Context) (string, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.store.SetCSRFToken(ctx, token)
	return token, nil
}

// Token returns the current token, loading it from the store after a restart.
func (c *CSRF) Token(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Validate compares token verbatim with both the stored and in-memory copies.
func (c *CSRF) Validate(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.load(ctx)
	stored := c.store.CSRFToken(ctx)
	return crypto.EqualStrings(stored, token) && crypto.EqualStrings(current, token)
}

// Clear removes the token everywhere.
func (c *CSRF) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.store.ClearCSRFToken(ctx)
}

func (c *CSRF) load(ctx context.Context) string {
	if c.token == "" {
		c.token = c.store.CSRFToken(ctx)
	}
	return c.token
}
