package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	validate        *validator.Validate
	logger          zerolog.Logger
}

func NewCheckoutHandler(checkoutService service.CheckoutService, v *validator.Validate, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 checkout routes
func (h *CheckoutHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/checkout-sessions", http.HandlerFunc(h.create))
	mux.Handle("/checkout-sessions/", http.HandlerFunc(h.confirm))
}

func (h *CheckoutHandler) create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.checkoutService == nil {
		writeError(w, http.StatusServiceUnavailable, "payments not provisioned")
		return
	}

	var req dto.CheckoutCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	sess, err := h.checkoutService.Create(r.Context(), req.UserID, req.UserEmail)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to create checkout session")
		writeError(w, stripeStatus(err), "failed to create checkout session")
		return
	}

	writeJSON(w, http.StatusOK, dto.CheckoutCreateResponseDTO{URL: sess.URL, SessionID: sess.ID})
}

func (h *CheckoutHandler) confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.checkoutService == nil {
		writeError(w, http.StatusServiceUnavailable, "payments not provisioned")
		return
	}
	sessionID := strings.TrimPrefix(r.URL.Path, "/checkout-sessions/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	result, err := h.checkoutService.Confirm(r.Context(), sessionID)
	if err != nil {
		// Transport or processor failure: reported distinctly from an unpaid
		// session, which is a normal pending result.
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Checkout confirmation failed")
		writeJSON(w, stripeStatus(err), map[string]string{
			"status": "error",
			"error":  "failed to confirm checkout session",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// stripeStatus maps a Stripe API failure to the closest HTTP status.
func stripeStatus(err error) int {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.HTTPStatusCode {
		case http.StatusNotFound:
			return http.StatusNotFound
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests
		case http.StatusUnauthorized:
			return http.StatusInternalServerError
		default:
			return http.StatusBadGateway
		}
	}
	// The request never produced a Stripe response: the processor is
	// unreachable rather than misbehaving.
	return http.StatusServiceUnavailable
}
