package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/model"
	"app/internal/repository"
)

type stubFavoriteRepo struct {
	favorites []model.Favorite
	addErr    error
	lastPlace string
}

func (r *stubFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	return r.favorites, nil
}

func (r *stubFavoriteRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	return len(r.favorites), nil
}

func (r *stubFavoriteRepo) Add(ctx context.Context, userID, place string, limit int) (*model.Favorite, error) {
	r.lastPlace = place
	if r.addErr != nil {
		return nil, r.addErr
	}
	f := model.Favorite{ID: "f1", UserID: userID, Place: place, CreatedAt: time.Now()}
	r.favorites = append(r.favorites, f)
	return &f, nil
}

func (r *stubFavoriteRepo) RemoveByID(ctx context.Context, userID, id string) (*model.Favorite, error) {
	for i, f := range r.favorites {
		if f.ID == id {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return &f, nil
		}
	}
	return nil, nil
}

func (r *stubFavoriteRepo) RemoveByPlace(ctx context.Context, userID, place string) (*model.Favorite, error) {
	for i, f := range r.favorites {
		if f.Place == place {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return &f, nil
		}
	}
	return nil, nil
}

func TestAddFavoriteTrimsPlace(t *testing.T) {
	repo := &stubFavoriteRepo{}
	svc := NewFavoriteService(repo)

	f, err := svc.Add(context.Background(), "u1", "  Paris  ")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if f.Place != "Paris" {
		t.Fatalf("expected trimmed place, got %q", f.Place)
	}
	if repo.lastPlace != "Paris" {
		t.Fatalf("expected repo to receive trimmed place, got %q", repo.lastPlace)
	}
}

func TestAddFavoriteQuotaExceeded(t *testing.T) {
	repo := &stubFavoriteRepo{
		favorites: []model.Favorite{
			{ID: "f1", Place: "Paris"},
			{ID: "f2", Place: "Lyon"},
			{ID: "f3", Place: "Nice"},
		},
		addErr: repository.ErrQuotaExceeded,
	}
	svc := NewFavoriteService(repo)

	_, err := svc.Add(context.Background(), "u1", "Marseille")
	var quotaErr *QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if quotaErr.Count != 3 || quotaErr.Max != model.FreeFavoriteLimit {
		t.Fatalf("expected 3 of %d, got %d of %d", model.FreeFavoriteLimit, quotaErr.Count, quotaErr.Max)
	}
}

func TestAddFavoriteDuplicate(t *testing.T) {
	repo := &stubFavoriteRepo{addErr: repository.ErrDuplicatePlace}
	svc := NewFavoriteService(repo)

	if _, err := svc.Add(context.Background(), "u1", "paris"); !errors.Is(err, ErrDuplicateFavorite) {
		t.Fatalf("expected ErrDuplicateFavorite, got %v", err)
	}
}

func TestRemoveFavoriteByID(t *testing.T) {
	repo := &stubFavoriteRepo{favorites: []model.Favorite{{ID: "f1", Place: "Paris"}}}
	svc := NewFavoriteService(repo)

	f, err := svc.Remove(context.Background(), "u1", "f1", "")
	if err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if f.Place != "Paris" {
		t.Fatalf("expected removed favorite Paris, got %q", f.Place)
	}
	if len(repo.favorites) != 0 {
		t.Fatal("expected favorite to be removed")
	}
}

func TestRemoveFavoriteByPlace(t *testing.T) {
	repo := &stubFavoriteRepo{favorites: []model.Favorite{{ID: "f1", Place: "Paris"}}}
	svc := NewFavoriteService(repo)

	if _, err := svc.Remove(context.Background(), "u1", "", "Paris"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
}

func TestRemoveFavoriteNotFound(t *testing.T) {
	svc := NewFavoriteService(&stubFavoriteRepo{})
	if _, err := svc.Remove(context.Background(), "u1", "missing", ""); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound, got %v", err)
	}
}
