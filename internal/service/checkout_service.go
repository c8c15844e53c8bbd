package service

import (
	"context"
	"fmt"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// CheckoutSession is the subset of a hosted checkout session this system
// reads. The session itself is owned by the payment processor.
type CheckoutSession struct {
	ID               string
	URL              string
	PaymentStatus    string
	CustomerEmail    string
	StripeCustomerID string
	Metadata         map[string]string
}

// CheckoutProvider abstracts the payment processor.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, userID, email string) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

type ConfirmStatus string

const (
	ConfirmPending  ConfirmStatus = "pending"
	ConfirmComplete ConfirmStatus = "complete"
)

// ConfirmResult is the outcome of reconciling a checkout session with the
// user directory. A completed payment whose user cannot be resolved (or whose
// activation write fails) is a soft failure: UserUpdated stays false.
type ConfirmResult struct {
	Status           ConfirmStatus `json:"status"`
	UserUpdated      bool          `json:"user_updated"`
	PremiumExpiresAt *time.Time    `json:"premium_expires_at,omitempty"`
}

type CheckoutService interface {
	Create(ctx context.Context, userID, email string) (*CheckoutSession, error)
	Confirm(ctx context.Context, sessionID string) (*ConfirmResult, error)
}

type checkoutService struct {
	provider     CheckoutProvider
	userRepo     repository.UserRepository
	entitlements EntitlementService
	logger       zerolog.Logger
}

func NewCheckoutService(provider CheckoutProvider, userRepo repository.UserRepository, entitlements EntitlementService, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		provider:     provider,
		userRepo:     userRepo,
		entitlements: entitlements,
		logger:       logger.With().Str("service", "CheckoutService").Logger(),
	}
}

func (s *checkoutService) Create(ctx context.Context, userID, email string) (*CheckoutSession, error) {
	sess, err := s.provider.CreateSession(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sess, nil
}

func (s *checkoutService) Confirm(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	sess, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}

	if sess.PaymentStatus != "paid" {
		return &ConfirmResult{Status: ConfirmPending}, nil
	}

	user, err := s.resolveUser(ctx, sess)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("User lookup failed during reconciliation")
		return &ConfirmResult{Status: ConfirmComplete}, nil
	}
	if user == nil {
		s.logger.Warn().Str("session_id", sessionID).Str("customer_email", sess.CustomerEmail).
			Msg("Payment confirmed but no user could be identified, skipping activation")
		return &ConfirmResult{Status: ConfirmComplete}, nil
	}

	status, err := s.entitlements.Activate(ctx, user.UserID, sess.StripeCustomerID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Str("user_id", user.UserID).
			Msg("Payment confirmed but premium activation failed")
		return &ConfirmResult{Status: ConfirmComplete}, nil
	}

	return &ConfirmResult{
		Status:           ConfirmComplete,
		UserUpdated:      true,
		PremiumExpiresAt: status.PremiumExpiresAt,
	}, nil
}

// resolveUser finds the paying user from session metadata, falling back to a
// customer email lookup.
func (s *checkoutService) resolveUser(ctx context.Context, sess *CheckoutSession) (*model.User, error) {
	if userID := sess.Metadata["user_id"]; userID != "" {
		u, err := s.userRepo.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return u, nil
		}
	}
	if sess.CustomerEmail != "" {
		return s.userRepo.GetUserByEmail(ctx, sess.CustomerEmail)
	}
	return nil, nil
}
