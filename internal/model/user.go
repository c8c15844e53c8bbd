package model

import "time"

// User represents a user profile mirrored from the identity provider
type User struct {
	UserID           string     `db:"user_id" json:"user_id"`
	Email            string     `db:"email" json:"email"`
	Name             string     `db:"name" json:"name"`
	Phone            string     `db:"phone" json:"phone"`
	Locality         string     `db:"locality" json:"locality"`
	StripeCustomerID *string    `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	IsPremium        bool       `db:"is_premium" json:"is_premium"`
	PremiumExpiresAt *time.Time `db:"premium_expires_at" json:"premium_expires_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// PremiumStatus is the current entitlement of a user
type PremiumStatus struct {
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
}
