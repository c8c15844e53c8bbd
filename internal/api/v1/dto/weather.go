package dto

import "app/internal/model"

// CitySearchResponseDTO wraps geocoding results
type CitySearchResponseDTO struct {
	Results []model.City `json:"results"`
}
