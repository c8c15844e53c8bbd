package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/auth"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService        service.UserService
	entitlementService service.EntitlementService
	facade             *auth.Facade
	validate           *validator.Validate
	logger             zerolog.Logger
}

func NewUserHandler(userService service.UserService, entitlementService service.EntitlementService, facade *auth.Facade, v *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:        userService,
		entitlementService: entitlementService,
		facade:             facade,
		validate:           v,
		logger:             logger,
	}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/users", http.HandlerFunc(h.createUser))
	mux.Handle("/users/premium-status", http.HandlerFunc(h.premiumStatus))
	mux.Handle("/users/me", authMw(http.HandlerFunc(h.handleMe)))
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.userService == nil {
		writeError(w, http.StatusServiceUnavailable, "user directory not provisioned")
		return
	}

	var req dto.UserCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	userModel := &model.User{
		UserID:   req.UserID,
		Email:    req.UserData.Email,
		Name:     req.UserData.Name,
		Phone:    req.UserData.Phone,
		Locality: req.UserData.Locality,
	}
	created, err := h.userService.Create(r.Context(), userModel)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to create user profile")
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, userToDTO(created))
}

func (h *UserHandler) premiumStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.entitlementService == nil {
		writeError(w, http.StatusServiceUnavailable, "user directory not provisioned")
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	status, err := h.entitlementService.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve premium status")
		writeError(w, http.StatusInternalServerError, "failed to resolve premium status")
		return
	}

	writeJSON(w, http.StatusOK, dto.PremiumStatusResponseDTO{
		IsPremium:        status.IsPremium,
		PremiumExpiresAt: status.PremiumExpiresAt,
	})
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getMe(w, r)
	case http.MethodPatch:
		h.updateMe(w, r)
	case http.MethodDelete:
		h.deleteMe(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *UserHandler) getMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	if h.userService == nil {
		writeError(w, http.StatusServiceUnavailable, "user directory not provisioned")
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, userToDTO(user))
}

func (h *UserHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req dto.UserUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	upd := auth.ProfileUpdate{Name: req.Name, Phone: req.Phone, Locality: req.Locality}
	if err := h.facade.UpdateProfile(r.Context(), bearerToken(r), upd); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Provider profile update failed")
		writeError(w, upstreamStatus(err), "failed to update profile")
		return
	}

	if h.userService == nil {
		writeJSON(w, http.StatusOK, req)
		return
	}
	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Name, req.Phone, req.Locality)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, userToDTO(user))
}

func (h *UserHandler) deleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	if err := h.facade.DeleteAccount(r.Context(), bearerToken(r)); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Provider account deletion failed")
		writeError(w, upstreamStatus(err), "failed to delete account")
		return
	}
	if h.userService != nil {
		if err := h.userService.Delete(r.Context(), userID); err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).
				Msg("Account deleted at provider but directory row removal failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func userToDTO(u *model.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		UserID:           u.UserID,
		Email:            u.Email,
		Name:             u.Name,
		Phone:            u.Phone,
		Locality:         u.Locality,
		IsPremium:        u.IsPremium,
		PremiumExpiresAt: u.PremiumExpiresAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// upstreamStatus maps identity provider failures to the closest HTTP status
// without leaking provider internals.
func upstreamStatus(err error) int {
	var pe *auth.ProviderError
	if errors.As(err, &pe) {
		switch pe.Status {
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests
		case http.StatusUnauthorized, http.StatusForbidden:
			return http.StatusUnauthorized
		default:
			return http.StatusBadGateway
		}
	}
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
