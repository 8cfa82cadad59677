package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/benepick/benepick/pkg/domain"
)

const (
	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL = 30 * time.Minute
	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type grant struct {
	userID    int64
	expiresAt time.Time
}

// TokenIssuer implements ports.TokenIssuer with opaque random tokens kept in memory.
// Refresh tokens are single-use and rotated on every refresh.
type TokenIssuer struct {
	mu      sync.Mutex
	access  map[string]grant
	refresh map[string]grant
	now     func() time.Time
}

// TokenOption configures the TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(ti *TokenIssuer) {
		ti.now = now
	}
}

// NewTokenIssuer creates an empty token issuer.
func NewTokenIssuer(opts ...TokenOption) *TokenIssuer {
	ti := &TokenIssuer{
		access:  make(map[string]grant),
		refresh: make(map[string]grant),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(ti)
	}
	return ti
}

// Issue creates a new access/refresh pair for the user.
func (ti *TokenIssuer) Issue(ctx context.Context, userID int64) (domain.Tokens, error) {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	return ti.issueLocked(userID)
}

func (ti *TokenIssuer) issueLocked(userID int64) (domain.Tokens, error) {
	accessToken, err := randomToken()
	if err != nil {
		return domain.Tokens{}, err
	}
	refreshToken, err := randomToken()
	if err != nil {
		return domain.Tokens{}, err
	}

	now := ti.now()
	ti.access[accessToken] = grant{userID: userID, expiresAt: now.Add(AccessTokenTTL)}
	ti.refresh[refreshToken] = grant{userID: userID, expiresAt: now.Add(RefreshTokenTTL)}

	return domain.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

// Verify resolves an access token to its user ID.
func (ti *TokenIssuer) Verify(ctx context.Context, accessToken string) (int64, error) {
	ti.mu.Lock()
	defer ti.mu.Unlock()

	g, ok := ti.access[accessToken]
	if !ok {
		return 0, domain.ErrInvalidToken
	}
	if ti.now().After(g.expiresAt) {
		delete(ti.access, accessToken)
		return 0, domain.ErrInvalidToken
	}
	return g.userID, nil
}

// Refresh invalidates the refresh token and issues a new pair.
func (ti *TokenIssuer) Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	ti.mu.Lock()
	defer ti.mu.Unlock()

	g, ok := ti.refresh[refreshToken]
	delete(ti.refresh, refreshToken)
	if !ok || ti.now().After(g.expiresAt) {
		return domain.Tokens{}, domain.ErrInvalidToken
	}
	return ti.issueLocked(g.userID)
}

// Revoke invalidates an access token. Unknown tokens are ignored.
func (ti *TokenIssuer) Revoke(ctx context.Context, accessToken string) error {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	delete(ti.access, accessToken)
	return nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
