package handler

import (
	"net/http"
	"strconv"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/rs/zerolog"
)

type WeatherHandler struct {
	weatherService service.WeatherService
	logger         zerolog.Logger
}

func NewWeatherHandler(weatherService service.WeatherService, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService, logger: logger}
}

// RegisterRoutes mounts v1 weather routes
func (h *WeatherHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/geo/search", http.HandlerFunc(h.searchCities))
	mux.Handle("/weather/forecast", http.HandlerFunc(h.forecast))
}

func (h *WeatherHandler) searchCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	limit := 5
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	cities, err := h.weatherService.SearchCities(r.Context(), query, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("query", query).Msg("City search failed")
		writeError(w, http.StatusBadGateway, "city search failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.CitySearchResponseDTO{Results: cities})
}

func (h *WeatherHandler) forecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat query parameter is required")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lon query parameter is required")
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}

	bundle, err := h.weatherService.Forecast(r.Context(), lat, lon)
	if err != nil {
		h.logger.Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Forecast fetch failed")
		writeError(w, http.StatusBadGateway, "forecast fetch failed")
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}
