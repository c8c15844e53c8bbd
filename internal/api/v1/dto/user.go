package dto

import "time"

// UserDataDTO carries the profile fields collected at registration.
type UserDataDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Locality string `json:"locality"`
}

// UserCreateDTO is used for incoming create requests
type UserCreateDTO struct {
	UserID   string      `json:"userId" validate:"required"`
	UserData UserDataDTO `json:"userData" validate:"required"`
}

// UserUpdateDTO is used for profile updates by the owning user
type UserUpdateDTO struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Locality string `json:"locality"`
}

// UserResponseDTO is returned in API responses
type UserResponseDTO struct {
	UserID           string     `json:"user_id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Locality         string     `json:"locality"`
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PremiumStatusResponseDTO is the payload of the premium-status endpoint
type PremiumStatusResponseDTO struct {
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
}
