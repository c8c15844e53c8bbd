package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DemoBackend is an in-memory stand-in for the identity provider, used when no
// live configuration is present. State lives for the process lifetime only.
// It signs session tokens with the same shared secret the auth middleware
// verifies, so the rest of the stack does not care which backend is active.
type DemoBackend struct {
	jwtSecret string
	latency   time.Duration

	mu    sync.Mutex
	users map[string]*demoUser // keyed by lowercased email
}

type demoUser struct {
	ID       string
	Email    string
	Password string
	Name     string
	Phone    string
	Locality string
}

// NewDemoBackend seeds the single demo account. latency simulates a remote
// provider round trip; tests pass 0.
func NewDemoBackend(jwtSecret, seedEmail, seedPassword string, latency time.Duration) *DemoBackend {
	b := &DemoBackend{
		jwtSecret: jwtSecret,
		latency:   latency,
		users:     make(map[string]*demoUser),
	}
	b.users[strings.ToLower(seedEmail)] = &demoUser{
		ID:       "demo-" + uuid.NewString(),
		Email:    seedEmail,
		Password: seedPassword,
		Name:     "Demo User",
	}
	return b
}

func (b *DemoBackend) Mode() string { return "demo" }

func (b *DemoBackend) simulateLatency(ctx context.Context) error {
	if b.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(b.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *DemoBackend) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := b.simulateLatency(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(in.Email)
	if _, exists := b.users[key]; exists {
		return nil, ErrEmailTaken
	}
	u := &demoUser{
		ID:       "demo-" + uuid.NewString(),
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Phone:    in.Phone,
		Locality: in.Locality,
	}
	b.users[key] = u
	return b.issueSession(u)
}

func (b *DemoBackend) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := b.simulateLatency(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[strings.ToLower(email)]
	if !ok || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	return b.issueSession(u)
}

func (b *DemoBackend) Logout(ctx context.Context, _ string) error {
	return b.simulateLatency(ctx)
}

func (b *DemoBackend) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if err := b.simulateLatency(ctx); err != nil {
		return nil, err
	}
	claims, err := b.parseToken(accessToken)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return &Session{
		AccessToken: accessToken,
		UserID:      claims.Subject,
		Email:       claims.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (b *DemoBackend) UpdateProfile(ctx context.Context, accessToken string, upd ProfileUpdate) error {
	u, err := b.userForToken(ctx, accessToken)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u.Name = upd.Name
	u.Phone = upd.Phone
	u.Locality = upd.Locality
	return nil
}

func (b *DemoBackend) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	u, err := b.userForToken(ctx, accessToken)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u.Password = newPassword
	return nil
}

func (b *DemoBackend) DeleteAccount(ctx context.Context, accessToken string) error {
	u, err := b.userForToken(ctx, accessToken)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, strings.ToLower(u.Email))
	return nil
}

func (b *DemoBackend) userForToken(ctx context.Context, accessToken string) (*demoUser, error) {
	if err := b.simulateLatency(ctx); err != nil {
		return nil, err
	}
	claims, err := b.parseToken(accessToken)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[strings.ToLower(claims.Email)]
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

type demoClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (b *DemoBackend) issueSession(u *demoUser) (*Session, error) {
	expiresAt := time.Now().Add(time.Hour)
	claims := demoClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(b.jwtSecret))
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		UserID:      u.ID,
		Email:       u.Email,
		ExpiresAt:   expiresAt,
	}, nil
}

func (b *DemoBackend) parseToken(accessToken string) (*demoClaims, error) {
	claims := &demoClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(b.jwtSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}
