package dto

import "time"

// FavoriteAddDTO is used for incoming add requests
type FavoriteAddDTO struct {
	UserID string `json:"userId" validate:"required"`
	Place  string `json:"place" validate:"required"`
}

// FavoriteResponseDTO is returned in API responses
type FavoriteResponseDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Place     string    `json:"place"`
	CreatedAt time.Time `json:"created_at"`
}
