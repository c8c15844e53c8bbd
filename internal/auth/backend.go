package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// ProviderError is a non-2xx answer from the identity provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider error (status %d): %s", e.Status, e.Message)
}

// Unprocessable reports whether the provider rejected the request as
// unprocessable. This is the one provider failure that triggers the demo
// fallback on registration.
func (e *ProviderError) Unprocessable() bool {
	return e.Status == 422
}

// Session is an authenticated user session.
type Session struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RegisterInput carries the fields collected by the signup form.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Locality string
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Name     string
	Phone    string
	Locality string
}

// Backend is the capability set shared by the live identity provider and the
// in-memory demo stand-in. Exactly one backend serves a process session.
type Backend interface {
	Mode() string
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, accessToken string) error
	GetSession(ctx context.Context, accessToken string) (*Session, error)
	UpdateProfile(ctx context.Context, accessToken string, upd ProfileUpdate) error
	ChangePassword(ctx context.Context, accessToken, newPassword string) error
	DeleteAccount(ctx context.Context, accessToken string) error
}
