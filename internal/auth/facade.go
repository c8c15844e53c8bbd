package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// SessionListener is notified after a session is created (login/register) or
// ended (logout, account deletion). sess is nil when the session ended.
type SessionListener func(sess *Session)

// Facade exposes the auth capability set over whichever backend was selected
// at startup. A live registration that the provider rejects as unprocessable
// is retried against the demo backend, and the whole facade downgrades to
// demo mode for the rest of the session. The downgrade is one-way.
type Facade struct {
	mu        sync.RWMutex
	backend   Backend
	demo      *DemoBackend
	listeners []SessionListener
	logger    zerolog.Logger
}

// NewFacade selects the backend once. demo may double as the selected backend
// when no live configuration is present.
func NewFacade(backend Backend, demo *DemoBackend, logger zerolog.Logger) *Facade {
	return &Facade{
		backend: backend,
		demo:    demo,
		logger:  logger.With().Str("component", "auth_facade").Logger(),
	}
}

// Mode reports the currently active backend.
func (f *Facade) Mode() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.backend.Mode()
}

// OnSessionChange registers a listener for session lifecycle events.
func (f *Facade) OnSessionChange(l SessionListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *Facade) notify(sess *Session) {
	f.mu.RLock()
	listeners := f.listeners
	f.mu.RUnlock()
	for _, l := range listeners {
		l(sess)
	}
}

func (f *Facade) current() Backend {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.backend
}

func (f *Facade) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	backend := f.current()
	sess, err := backend.Register(ctx, in)
	if err != nil && backend.Mode() == "live" {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Unprocessable() {
			f.logger.Warn().Str("provider_error", pe.Message).
				Msg("Live registration unprocessable, falling back to demo backend for this session")
			f.mu.Lock()
			f.backend = f.demo
			f.mu.Unlock()
			sess, err = f.demo.Register(ctx, in)
		}
	}
	if err != nil {
		return nil, err
	}
	f.notify(sess)
	return sess, nil
}

func (f *Facade) Login(ctx context.Context, email, password string) (*Session, error) {
	sess, err := f.current().Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	f.notify(sess)
	return sess, nil
}

func (f *Facade) Logout(ctx context.Context, accessToken string) error {
	if err := f.current().Logout(ctx, accessToken); err != nil {
		return err
	}
	f.notify(nil)
	return nil
}

func (f *Facade) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	return f.current().GetSession(ctx, accessToken)
}

func (f *Facade) UpdateProfile(ctx context.Context, accessToken string, upd ProfileUpdate) error {
	return f.current().UpdateProfile(ctx, accessToken, upd)
}

func (f *Facade) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	return f.current().ChangePassword(ctx, accessToken, newPassword)
}

func (f *Facade) DeleteAccount(ctx context.Context, accessToken string) error {
	if err := f.current().DeleteAccount(ctx, accessToken); err != nil {
		return err
	}
	f.notify(nil)
	return nil
}
