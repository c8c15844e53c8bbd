package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type FavoriteHandler struct {
	favoriteService service.FavoriteService
	validate        *validator.Validate
	logger          zerolog.Logger
}

func NewFavoriteHandler(favoriteService service.FavoriteService, v *validator.Validate, logger zerolog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 favorites routes
func (h *FavoriteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/favorites", http.HandlerFunc(h.handleFavorites))
}

func (h *FavoriteHandler) handleFavorites(w http.ResponseWriter, r *http.Request) {
	if h.favoriteService == nil {
		writeError(w, http.StatusServiceUnavailable, "favorites store not provisioned")
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *FavoriteHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	favorites, err := h.favoriteService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list favorites")
		writeError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}

	out := make([]dto.FavoriteResponseDTO, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, favoriteToDTO(&f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FavoriteHandler) add(w http.ResponseWriter, r *http.Request) {
	var req dto.FavoriteAddDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	f, err := h.favoriteService.Add(r.Context(), req.UserID, req.Place)
	if err != nil {
		var quotaErr *service.QuotaExceededError
		switch {
		case errors.As(err, &quotaErr):
			writeErrorDetails(w, http.StatusBadRequest, "favorite limit reached",
				map[string]int{"current": quotaErr.Count, "max": quotaErr.Max})
		case errors.Is(err, service.ErrDuplicateFavorite):
			writeError(w, http.StatusConflict, "place is already in favorites")
		default:
			h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to add favorite")
			writeError(w, http.StatusInternalServerError, "failed to add favorite")
		}
		return
	}

	writeJSON(w, http.StatusCreated, favoriteToDTO(f))
}

func (h *FavoriteHandler) remove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	id := q.Get("id")
	place := q.Get("place")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}
	if id == "" && place == "" {
		writeError(w, http.StatusBadRequest, "either id or place must be provided")
		return
	}

	f, err := h.favoriteService.Remove(r.Context(), userID, id, place)
	if err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			writeError(w, http.StatusNotFound, "favorite not found")
			return
		}
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to remove favorite")
		writeError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	writeJSON(w, http.StatusOK, favoriteToDTO(f))
}

func favoriteToDTO(f *model.Favorite) dto.FavoriteResponseDTO {
	return dto.FavoriteResponseDTO{
		ID:        f.ID,
		UserID:    f.UserID,
		Place:     f.Place,
		CreatedAt: f.CreatedAt,
	}
}
