package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"app/internal/config"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeService is the Stripe-backed CheckoutProvider. It also serves the
// signature-verified webhook, which funnels completed checkouts through the
// same reconciliation as the polling endpoint.
type StripeService struct {
	cfg        *config.Config
	reconciler CheckoutService
	logger     zerolog.Logger
}

// NewStripeService initializes the Stripe key and returns the service with a
// scoped logger.
func NewStripeService(cfg *config.Config, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, logger: lg}
}

// AttachReconciler wires the checkout service in after construction; the two
// depend on each other (the reconciler retrieves sessions through this
// provider).
func (s *StripeService) AttachReconciler(c CheckoutService) {
	s.reconciler = c
}

// CreateSession creates a one-time payment Checkout session for the premium
// upgrade, tagged with the user id so the reconciler can find its way back.
func (s *StripeService) CreateSession(ctx context.Context, userID, email string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.StripePricePremium), Quantity: stripe.Int64(1)},
		},
		CustomerEmail: stripe.String(email),
		SuccessURL:    stripe.String(s.cfg.StripeSuccessURL),
		CancelURL:     stripe.String(s.cfg.StripeCancelURL),
		Metadata:      map[string]string{"user_id": userID},
	}
	params.Context = ctx
	sess, err := checkoutsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create Stripe checkout session")
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// GetSession retrieves a Checkout session and maps it to the neutral shape
// the reconciler works with.
func (s *StripeService) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to retrieve Stripe checkout session")
		return nil, err
	}

	mapped := &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		Metadata:      sess.Metadata,
	}
	if sess.CustomerDetails != nil {
		mapped.CustomerEmail = sess.CustomerDetails.Email
	}
	if mapped.CustomerEmail == "" {
		mapped.CustomerEmail = sess.CustomerEmail
	}
	if sess.Customer != nil {
		mapped.StripeCustomerID = sess.Customer.ID
	}
	return mapped, nil
}

// HandleWebhook processes Stripe webhook events.
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		if s.reconciler == nil {
			s.logger.Error().Msg("No reconciler attached, dropping webhook")
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		result, err := s.reconciler.Confirm(r.Context(), cs.ID)
		if err != nil {
			s.logger.Error().Err(err).Str("session_id", cs.ID).Msg("Failed to reconcile completed checkout")
			http.Error(w, "failed to reconcile checkout", http.StatusInternalServerError)
			return
		}
		s.logger.Info().Str("session_id", cs.ID).Bool("user_updated", result.UserUpdated).
			Msg("Checkout session reconciled from webhook")
	default:
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Unhandled Stripe webhook event")
	}
	w.WriteHeader(http.StatusOK)
}
