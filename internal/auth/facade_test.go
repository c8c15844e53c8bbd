package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// fakeLiveBackend scripts provider responses for facade tests.
type fakeLiveBackend struct {
	registerErr error
	loginCalls  int
}

func (b *fakeLiveBackend) Mode() string { return "live" }

func (b *fakeLiveBackend) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if b.registerErr != nil {
		return nil, b.registerErr
	}
	return &Session{AccessToken: "live-token", UserID: "live-u1", Email: in.Email}, nil
}

func (b *fakeLiveBackend) Login(ctx context.Context, email, password string) (*Session, error) {
	b.loginCalls++
	return &Session{AccessToken: "live-token", UserID: "live-u1", Email: email}, nil
}

func (b *fakeLiveBackend) Logout(ctx context.Context, accessToken string) error { return nil }

func (b *fakeLiveBackend) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	return nil, ErrNotAuthenticated
}

func (b *fakeLiveBackend) UpdateProfile(ctx context.Context, accessToken string, upd ProfileUpdate) error {
	return nil
}

func (b *fakeLiveBackend) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	return nil
}

func (b *fakeLiveBackend) DeleteAccount(ctx context.Context, accessToken string) error { return nil }

func newTestFacade(live Backend) (*Facade, *DemoBackend) {
	demo := NewDemoBackend("test-secret", "demo@skycast.app", "demo1234", 0)
	return NewFacade(live, demo, zerolog.Nop()), demo
}

func TestFacadeFallbackOnUnprocessable(t *testing.T) {
	live := &fakeLiveBackend{registerErr: &ProviderError{Status: 422, Message: "signups disabled"}}
	f, _ := newTestFacade(live)

	if f.Mode() != "live" {
		t.Fatalf("expected live mode before fallback, got %q", f.Mode())
	}

	sess, err := f.Register(context.Background(), RegisterInput{Email: "new@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if sess.UserID == "" {
		t.Fatal("expected a demo session")
	}
	if f.Mode() != "demo" {
		t.Fatalf("expected facade to downgrade to demo, got %q", f.Mode())
	}

	// Subsequent calls stay on the demo backend.
	if _, err := f.Login(context.Background(), "new@example.com", "pw"); err != nil {
		t.Fatalf("Login after fallback returned error: %v", err)
	}
	if live.loginCalls != 0 {
		t.Fatal("expected no live logins after the downgrade")
	}
}

func TestFacadeNoFallbackOnOtherErrors(t *testing.T) {
	live := &fakeLiveBackend{registerErr: &ProviderError{Status: 500, Message: "boom"}}
	f, _ := newTestFacade(live)

	if _, err := f.Register(context.Background(), RegisterInput{Email: "x@y.z", Password: "pw"}); err == nil {
		t.Fatal("expected registration error to propagate")
	}
	if f.Mode() != "live" {
		t.Fatalf("expected facade to stay live on a non-unprocessable error, got %q", f.Mode())
	}
}

func TestFacadeNoFallbackInDemoMode(t *testing.T) {
	demo := NewDemoBackend("test-secret", "demo@skycast.app", "demo1234", 0)
	f := NewFacade(demo, demo, zerolog.Nop())

	in := RegisterInput{Email: "demo@skycast.app", Password: "pw"}
	if _, err := f.Register(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestFacadeSessionListeners(t *testing.T) {
	f, _ := newTestFacade(&fakeLiveBackend{})

	var events []*Session
	f.OnSessionChange(func(sess *Session) { events = append(events, sess) })

	ctx := context.Background()
	sess, err := f.Login(ctx, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if err := f.Logout(ctx, sess.AccessToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 listener events, got %d", len(events))
	}
	if events[0] == nil || events[0].UserID != "live-u1" {
		t.Fatalf("expected login event with session, got %+v", events[0])
	}
	if events[1] != nil {
		t.Fatalf("expected nil session on logout, got %+v", events[1])
	}
}
