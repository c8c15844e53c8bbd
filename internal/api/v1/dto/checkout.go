package dto

// CheckoutCreateDTO is used for incoming checkout session requests
type CheckoutCreateDTO struct {
	UserID    string `json:"userId" validate:"required"`
	UserEmail string `json:"userEmail" validate:"required,email"`
}

// CheckoutCreateResponseDTO points the client at the hosted payment page
type CheckoutCreateResponseDTO struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}
