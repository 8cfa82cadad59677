package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benepick/benepick/pkg/domain"
	"golang.org/x/crypto/bcrypt"
)

// UserStore implements ports.UserStore. Emails are stored lowercased and
// passwords as bcrypt hashes.
type UserStore struct {
	db   *DB
	cost int
	now  func() time.Time
}

// UserOption configures a UserStore.
type UserOption func(*UserStore)

// WithBcryptCost overrides the hashing cost, e.g. bcrypt.MinCost in tests.
func WithBcryptCost(cost int) UserOption {
	return func(s *UserStore) {
		s.cost = cost
	}
}

// NewUserStore returns a user store over db.
func NewUserStore(db *DB, opts ...UserOption) *UserStore {
	s := &UserStore{
		db:   db,
		cost: bcrypt.DefaultCost,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser inserts an active user. A taken email yields domain.ErrDuplicateEmail.
func (s *UserStore) CreateUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	res, err := s.db.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name, is_active, created_at) VALUES (?, ?, ?, 1, ?)`,
		email, string(hash), name, now.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read user id: %w", err)
	}

	return &domain.User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Unix(now.Unix(), 0).UTC(),
	}, nil
}

// UserExists reports whether an account uses email.
func (s *UserStore) UserExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return n > 0, nil
}

// FindUserByID loads a user or returns domain.ErrUserNotFound.
func (s *UserStore) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, is_active, onboarding_completed,
		       profile_region, profile_life_cycle, profile_interests, created_at
		FROM users WHERE id = ?`, id)

	var u domain.User
	var region, lifeCycle, interest sql.NullString
	var createdAt int64
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsActive, &u.OnboardingCompleted,
		&region, &lifeCycle, &interest, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	u.Profile = domain.Profile{Region: region.String, LifeCycle: lifeCycle.String, Interest: interest.String}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

// Authenticate checks an email and password pair. Unknown, inactive and
// mismatched accounts all yield domain.ErrInvalidCredentials.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	var id int64
	var hash string
	err := s.db.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ? AND is_active = 1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.FindUserByID(ctx, id)
}

// SaveProfile stores the onboarding profile and marks onboarding complete.
func (s *UserStore) SaveProfile(ctx context.Context, userID int64, p domain.Profile) error {
	res, err := s.db.db.ExecContext(ctx, `
		UPDATE users
		SET onboarding_completed = 1,
		    profile_region = ?,
		    profile_life_cycle = ?,
		    profile_interests = ?
		WHERE id = ?`,
		nullable(p.Region), nullable(p.LifeCycle), nullable(p.Interest), userID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
