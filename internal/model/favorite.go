package model

import "time"

// Favorite is a place a user has pinned on their dashboard.
// Place names are unique per user, compared case-insensitively.
type Favorite struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Place     string    `db:"place" json:"place"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FreeFavoriteLimit is the maximum number of favorites a free user may keep.
const FreeFavoriteLimit = 3
