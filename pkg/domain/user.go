package domain

import "time"

// User is an account created by the registration track.
type User struct {
	ID                  int64     `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name"`
	PasswordHash        string    `json:"-"`
	IsActive            bool      `json:"is_active"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	Profile             Profile   `json:"profile"`
	CreatedAt           time.Time `json:"created_at"`
}

// UserView is the public projection of a user attached to issued tokens.
type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Tokens is an access/refresh pair issued after registration or refresh.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	User         *UserView `json:"user,omitempty"`
}
