package dto

import "time"

// RegisterDTO is used for incoming registration requests
type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Locality string `json:"locality"`
}

// LoginDTO is used for incoming login requests
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordDTO is used for password changes by an authenticated user
type ChangePasswordDTO struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// SessionResponseDTO is returned after login or registration
type SessionResponseDTO struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
	Mode        string    `json:"mode"`
}
