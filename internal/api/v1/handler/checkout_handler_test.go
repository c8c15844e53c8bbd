package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

type stubCheckoutService struct {
	confirmResult *service.ConfirmResult
	confirmErr    error
	createErr     error
}

func (s *stubCheckoutService) Create(ctx context.Context, userID, email string) (*service.CheckoutSession, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &service.CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

func (s *stubCheckoutService) Confirm(ctx context.Context, sessionID string) (*service.ConfirmResult, error) {
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return s.confirmResult, nil
}

func newCheckoutTestMux(svc service.CheckoutService) *http.ServeMux {
	h := NewCheckoutHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func TestCreateCheckoutSessionHandler(t *testing.T) {
	mux := newCheckoutTestMux(&stubCheckoutService{})

	body := strings.NewReader(`{"userId":"u1","userEmail":"a@b.c"}`)
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", body)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["url"] == "" || resp["sessionId"] == "" {
		t.Fatalf("expected url and sessionId, got %v", resp)
	}
}

func TestCreateCheckoutSessionHandlerValidation(t *testing.T) {
	mux := newCheckoutTestMux(&stubCheckoutService{})

	body := strings.NewReader(`{"userId":"u1","userEmail":"not-an-email"}`)
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", body)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad email, got %d", rr.Code)
	}
}

func TestConfirmCheckoutHandlerComplete(t *testing.T) {
	expiry := time.Now().Add(30 * 24 * time.Hour)
	svc := &stubCheckoutService{confirmResult: &service.ConfirmResult{
		Status:           service.ConfirmComplete,
		UserUpdated:      true,
		PremiumExpiresAt: &expiry,
	}}
	mux := newCheckoutTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/cs_123", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Status      string `json:"status"`
		UserUpdated bool   `json:"user_updated"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "complete" || !resp.UserUpdated {
		t.Fatalf("unexpected confirm response: %+v", resp)
	}
}

func TestConfirmCheckoutHandlerPending(t *testing.T) {
	svc := &stubCheckoutService{confirmResult: &service.ConfirmResult{Status: service.ConfirmPending}}
	mux := newCheckoutTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/cs_123", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "pending" {
		t.Fatalf("expected pending, got %q", resp.Status)
	}
}

func TestConfirmCheckoutHandlerTransportError(t *testing.T) {
	svc := &stubCheckoutService{confirmErr: errors.New("connection refused")}
	mux := newCheckoutTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/cs_123", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for an unreachable processor, got %d", rr.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "error" {
		t.Fatalf("expected error status to be distinct from pending, got %q", resp.Status)
	}
}

func TestConfirmCheckoutHandlerStripeErrors(t *testing.T) {
	tests := []struct {
		name       string
		stripeCode int
		wantStatus int
	}{
		{"unknown session", http.StatusNotFound, http.StatusNotFound},
		{"rate limited", http.StatusTooManyRequests, http.StatusTooManyRequests},
		{"processor fault", http.StatusInternalServerError, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubCheckoutService{confirmErr: &stripe.Error{HTTPStatusCode: tt.stripeCode}}
			mux := newCheckoutTestMux(svc)

			req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/cs_123", nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestConfirmCheckoutHandlerBadSessionID(t *testing.T) {
	mux := newCheckoutTestMux(&stubCheckoutService{})

	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty session id, got %d", rr.Code)
	}
}

func TestCheckoutHandlerUnprovisioned(t *testing.T) {
	mux := newCheckoutTestMux(nil)

	body := strings.NewReader(`{"userId":"u1","userEmail":"a@b.c"}`)
	req := httptest.NewRequest(http.MethodPost, "/checkout-sessions", body)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a payment processor, got %d", rr.Code)
	}
}

func TestCheckoutHandlerMethodNotAllowed(t *testing.T) {
	mux := newCheckoutTestMux(&stubCheckoutService{})

	req := httptest.NewRequest(http.MethodGet, "/checkout-sessions", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
