package service

import (
	"context"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// PremiumDuration is how long a one-time premium purchase lasts.
const PremiumDuration = 30 * 24 * time.Hour

// EntitlementService resolves and mutates the premium status of users.
// Expiry is lazy: a premium flag past its expiry is downgraded on read, there
// is no background sweep.
type EntitlementService interface {
	Status(ctx context.Context, userID string) (*model.PremiumStatus, error)
	Activate(ctx context.Context, userID, stripeCustomerID string) (*model.PremiumStatus, error)
}

type entitlementService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewEntitlementService(userRepo repository.UserRepository, logger zerolog.Logger) EntitlementService {
	return &entitlementService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "EntitlementService").Logger(),
		now:      time.Now,
	}
}

func (s *entitlementService) Status(ctx context.Context, userID string) (*model.PremiumStatus, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if u.IsPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(s.now()) {
		if err := s.userRepo.SetPremium(ctx, userID, false, u.PremiumExpiresAt); err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", userID).Time("expired_at", *u.PremiumExpiresAt).
			Msg("Premium expired, downgraded on read")
		return &model.PremiumStatus{IsPremium: false, PremiumExpiresAt: u.PremiumExpiresAt}, nil
	}

	return &model.PremiumStatus{IsPremium: u.IsPremium, PremiumExpiresAt: u.PremiumExpiresAt}, nil
}

func (s *entitlementService) Activate(ctx context.Context, userID, stripeCustomerID string) (*model.PremiumStatus, error) {
	expiresAt := s.now().Add(PremiumDuration)
	if err := s.userRepo.SetPremium(ctx, userID, true, &expiresAt); err != nil {
		return nil, err
	}
	if stripeCustomerID != "" {
		if err := s.userRepo.UpdateStripeCustomerID(ctx, userID, stripeCustomerID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to store stripe customer id")
		}
	}
	s.logger.Info().Str("user_id", userID).Time("premium_expires_at", expiresAt).Msg("Premium activated")
	return &model.PremiumStatus{IsPremium: true, PremiumExpiresAt: &expiresAt}, nil
}
