package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/auth"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	facade   *auth.Facade
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewAuthHandler(facade *auth.Facade, v *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{facade: facade, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 auth routes
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/auth/register", http.HandlerFunc(h.register))
	mux.Handle("/auth/login", http.HandlerFunc(h.login))
	mux.Handle("/auth/logout", http.HandlerFunc(h.logout))
	mux.Handle("/auth/change-password", authMw(http.HandlerFunc(h.changePassword)))
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	sess, err := h.facade.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Locality: req.Locality,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error().Err(err).Msg("Registration failed")
		writeError(w, upstreamStatus(err), "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, sessionToDTO(sess, h.facade.Mode()))
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	sess, err := h.facade.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error().Err(err).Msg("Login failed")
		writeError(w, upstreamStatus(err), "login failed")
		return
	}

	writeJSON(w, http.StatusOK, sessionToDTO(sess, h.facade.Mode()))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := h.facade.Logout(r.Context(), bearerToken(r)); err != nil {
		h.logger.Warn().Err(err).Msg("Logout failed")
		writeError(w, upstreamStatus(err), "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	if err := h.facade.ChangePassword(r.Context(), bearerToken(r), req.NewPassword); err != nil {
		h.logger.Error().Err(err).Msg("Password change failed")
		writeError(w, upstreamStatus(err), "failed to change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionToDTO(sess *auth.Session, mode string) dto.SessionResponseDTO {
	return dto.SessionResponseDTO{
		AccessToken: sess.AccessToken,
		UserID:      sess.UserID,
		Email:       sess.Email,
		ExpiresAt:   sess.ExpiresAt,
		Mode:        mode,
	}
}
