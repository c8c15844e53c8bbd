package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// Directory mirrors registered users into the user_profiles table.
type Directory interface {
	CreateUser(ctx context.Context, u *model.User) error
}

// LiveBackend delegates auth to a hosted identity provider (GoTrue-style REST
// API) and mirrors successful registrations into the user directory.
type LiveBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	directory  Directory
	logger     zerolog.Logger
}

func NewLiveBackend(baseURL, apiKey string, directory Directory, logger zerolog.Logger) *LiveBackend {
	return &LiveBackend{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		directory:  directory,
		logger:     logger.With().Str("auth_backend", "live").Logger(),
	}
}

func (b *LiveBackend) Mode() string { return "live" }

type providerSession struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type providerErrorBody struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (b *LiveBackend) newRequest(ctx context.Context, method, path, accessToken string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", b.apiKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return req, nil
}

func (b *LiveBackend) do(req *http.Request, out interface{}) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body providerErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		msg := body.Message
		if msg == "" {
			msg = body.ErrorDescription
		}
		if msg == "" {
			msg = resp.Status
		}
		return &ProviderError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode identity provider response: %w", err)
		}
	}
	return nil
}

func (b *LiveBackend) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	payload := map[string]interface{}{
		"email":    in.Email,
		"password": in.Password,
		"data": map[string]string{
			"name":     in.Name,
			"phone":    in.Phone,
			"locality": in.Locality,
		},
	}
	req, err := b.newRequest(ctx, http.MethodPost, "/signup", "", payload)
	if err != nil {
		return nil, err
	}
	var ps providerSession
	if err := b.do(req, &ps); err != nil {
		return nil, err
	}

	// Mirror the profile into the user directory. There is no rollback of the
	// provider-side account when this fails; registration still succeeds and
	// the gap is surfaced as a warning.
	mirror := &model.User{
		UserID:   ps.User.ID,
		Email:    ps.User.Email,
		Name:     in.Name,
		Phone:    in.Phone,
		Locality: in.Locality,
	}
	if b.directory == nil {
		return sessionFromProvider(&ps), nil
	}
	if err := b.directory.CreateUser(ctx, mirror); err != nil && !errors.Is(err, repository.ErrDuplicateEmail) {
		b.logger.Warn().Err(err).Str("user_id", ps.User.ID).
			Msg("Registered with provider but failed to mirror profile into user directory")
	}

	return sessionFromProvider(&ps), nil
}

func (b *LiveBackend) Login(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	req, err := b.newRequest(ctx, http.MethodPost, "/token?grant_type=password", "", payload)
	if err != nil {
		return nil, err
	}
	var ps providerSession
	if err := b.do(req, &ps); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && (pe.Status == http.StatusBadRequest || pe.Status == http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return sessionFromProvider(&ps), nil
}

func (b *LiveBackend) Logout(ctx context.Context, accessToken string) error {
	req, err := b.newRequest(ctx, http.MethodPost, "/logout", accessToken, nil)
	if err != nil {
		return err
	}
	return b.do(req, nil)
}

func (b *LiveBackend) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	req, err := b.newRequest(ctx, http.MethodGet, "/user", accessToken, nil)
	if err != nil {
		return nil, err
	}
	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := b.do(req, &user); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && (pe.Status == http.StatusUnauthorized || pe.Status == http.StatusForbidden) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return &Session{AccessToken: accessToken, UserID: user.ID, Email: user.Email}, nil
}

func (b *LiveBackend) UpdateProfile(ctx context.Context, accessToken string, upd ProfileUpdate) error {
	payload := map[string]interface{}{
		"data": map[string]string{
			"name":     upd.Name,
			"phone":    upd.Phone,
			"locality": upd.Locality,
		},
	}
	req, err := b.newRequest(ctx, http.MethodPut, "/user", accessToken, payload)
	if err != nil {
		return err
	}
	return b.do(req, nil)
}

func (b *LiveBackend) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	payload := map[string]string{"password": newPassword}
	req, err := b.newRequest(ctx, http.MethodPut, "/user", accessToken, payload)
	if err != nil {
		return err
	}
	return b.do(req, nil)
}

func (b *LiveBackend) DeleteAccount(ctx context.Context, accessToken string) error {
	req, err := b.newRequest(ctx, http.MethodDelete, "/user", accessToken, nil)
	if err != nil {
		return err
	}
	return b.do(req, nil)
}

func sessionFromProvider(ps *providerSession) *Session {
	s := &Session{
		AccessToken: ps.AccessToken,
		UserID:      ps.User.ID,
		Email:       ps.User.Email,
	}
	if ps.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(ps.ExpiresIn) * time.Second)
	}
	return s
}
