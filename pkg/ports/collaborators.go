package ports

import (
	"context"

	"github.com/benepick/benepick/pkg/domain"
)

// UserStore is the relational store of accounts and profiles.
type UserStore interface {
	// CreateUser stores a new account. The email is expected lowercased.
	// Returns domain.ErrDuplicateEmail if the email is already registered.
	CreateUser(ctx context.Context, email, password, name string) (*domain.User, error)

	// UserExists reports whether the email is already registered.
	UserExists(ctx context.Context, email string) (bool, error)

	// FindUserByID returns domain.ErrUserNotFound for unknown IDs.
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)

	// SaveProfile stores the onboarding profile and marks onboarding as completed.
	SaveProfile(ctx context.Context, userID int64, profile domain.Profile) error
}

// Authenticator verifies account credentials for password login.
type Authenticator interface {
	// Authenticate returns domain.ErrInvalidCredentials on any mismatch.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	// Issue creates a new access/refresh pair for the user.
	Issue(ctx context.Context, userID int64) (domain.Tokens, error)

	// Verify resolves an access token to its user ID.
	// Returns domain.ErrInvalidToken for unknown or expired tokens.
	Verify(ctx context.Context, accessToken string) (int64, error)

	// Refresh rotates a refresh token into a new pair.
	Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error)

	// Revoke invalidates an access token.
	Revoke(ctx context.Context, accessToken string) error
}

// PolicySearcher finds policies relevant to a query.
type PolicySearcher interface {
	Search(ctx context.Context, query string, filter domain.SearchFilter, topK int) ([]domain.PolicySource, error)
}

// PolicyCatalog gives direct access to stored policies.
type PolicyCatalog interface {
	// GetPolicy returns domain.ErrPolicyNotFound for unknown IDs.
	GetPolicy(ctx context.Context, policyID string) (*domain.Policy, error)
	CountPolicies(ctx context.Context) (int, error)
}

// AnswerGenerator produces an answer grounded on search results.
// Implementations may fail; callers fall back to a deterministic answer.
type AnswerGenerator interface {
	Generate(ctx context.Context, query string, sources []domain.PolicySource) (string, error)
}
