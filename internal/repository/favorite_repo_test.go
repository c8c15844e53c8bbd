package repository

import (
	"errors"
	"testing"

	"app/internal/model"
)

func TestAdmitFavorite(t *testing.T) {
	atCap := []string{"Paris", "Lyon", "Nice"}

	tests := []struct {
		name     string
		existing []string
		place    string
		wantErr  error
	}{
		{"first favorite", nil, "Paris", nil},
		{"below limit", []string{"Paris", "Lyon"}, "Nice", nil},
		{"at limit", atCap, "Marseille", ErrQuotaExceeded},
		{"case-insensitive duplicate", atCap, "paris", ErrDuplicatePlace},
		{"exact duplicate below limit", []string{"Paris"}, "Paris", ErrDuplicatePlace},
		{"duplicate wins over quota at the cap", atCap, "LYON", ErrDuplicatePlace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := admitFavorite(tt.existing, tt.place, model.FreeFavoriteLimit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("admitFavorite(%v, %q) = %v, want %v", tt.existing, tt.place, err, tt.wantErr)
			}
		})
	}
}
