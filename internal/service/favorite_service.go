package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"app/internal/model"
	"app/internal/repository"
)

var (
	ErrFavoriteNotFound  = errors.New("favorite not found")
	ErrDuplicateFavorite = errors.New("place already in favorites")
)

// QuotaExceededError reports the current and maximum favorite counts.
type QuotaExceededError struct {
	Count int
	Max   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("favorite quota exceeded (%d of %d)", e.Count, e.Max)
}

type FavoriteService interface {
	List(ctx context.Context, userID string) ([]model.Favorite, error)
	Add(ctx context.Context, userID, place string) (*model.Favorite, error)
	// Remove deletes by id when id is non-empty, else by exact place name.
	Remove(ctx context.Context, userID, id, place string) (*model.Favorite, error)
}

type favoriteService struct {
	repo repository.FavoriteRepository
}

func NewFavoriteService(repo repository.FavoriteRepository) FavoriteService {
	return &favoriteService{repo: repo}
}

func (s *favoriteService) List(ctx context.Context, userID string) ([]model.Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *favoriteService) Add(ctx context.Context, userID, place string) (*model.Favorite, error) {
	place = strings.TrimSpace(place)
	f, err := s.repo.Add(ctx, userID, place, model.FreeFavoriteLimit)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicatePlace):
			return nil, ErrDuplicateFavorite
		case errors.Is(err, repository.ErrQuotaExceeded):
			count, countErr := s.repo.CountByUser(ctx, userID)
			if countErr != nil {
				count = model.FreeFavoriteLimit
			}
			return nil, &QuotaExceededError{Count: count, Max: model.FreeFavoriteLimit}
		}
		return nil, err
	}
	return f, nil
}

func (s *favoriteService) Remove(ctx context.Context, userID, id, place string) (*model.Favorite, error) {
	var (
		f   *model.Favorite
		err error
	)
	if id != "" {
		f, err = s.repo.RemoveByID(ctx, userID, id)
	} else {
		f, err = s.repo.RemoveByPlace(ctx, userID, place)
	}
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFavoriteNotFound
	}
	return f, nil
}
