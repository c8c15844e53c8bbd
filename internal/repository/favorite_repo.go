package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"app/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrQuotaExceeded is returned when a user is already at their favorite limit.
	ErrQuotaExceeded = errors.New("favorite quota exceeded")
	// ErrDuplicatePlace is returned when the place is already a favorite of the user.
	ErrDuplicatePlace = errors.New("place already in favorites")
)

// FavoriteRepository defines favorites DB operations
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Favorite, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// Add inserts a favorite, enforcing the per-user limit and case-insensitive
	// uniqueness inside a single transaction.
	Add(ctx context.Context, userID, place string, limit int) (*model.Favorite, error)
	RemoveByID(ctx context.Context, userID, id string) (*model.Favorite, error)
	RemoveByPlace(ctx context.Context, userID, place string) (*model.Favorite, error)
}

type favoriteRepo struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepo(pool *pgxpool.Pool) FavoriteRepository {
	return &favoriteRepo{pool: pool}
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	const q = `
        SELECT id, user_id, place, created_at
        FROM favorites
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites for user %s: %w", userID, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.Place, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return favorites, nil
}

func (r *favoriteRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	const q = `SELECT count(*) FROM favorites WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count favorites for user %s: %w", userID, err)
	}
	return count, nil
}

// admitFavorite decides whether place may join existing under the per-user
// limit. Duplicates are rejected before the quota so re-adding a favorite at
// the cap reads as a duplicate, not as quota pressure.
func admitFavorite(existing []string, place string, limit int) error {
	for _, p := range existing {
		if strings.EqualFold(p, place) {
			return ErrDuplicatePlace
		}
	}
	if len(existing) >= limit {
		return ErrQuotaExceeded
	}
	return nil
}

func (r *favoriteRepo) Add(ctx context.Context, userID, place string, limit int) (*model.Favorite, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin add favorite: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the user's favorites so two concurrent adds cannot both pass the
	// quota check. The unique index on (user_id, lower(place)) backs up the
	// duplicate check for rows inserted outside this code path.
	const lockQ = `SELECT place FROM favorites WHERE user_id = $1 FOR UPDATE`
	rows, err := tx.Query(ctx, lockQ, userID)
	if err != nil {
		return nil, fmt.Errorf("lock favorites for user %s: %w", userID, err)
	}
	existing := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan favorite place: %w", err)
		}
		existing = append(existing, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if err := admitFavorite(existing, place, limit); err != nil {
		return nil, err
	}

	const insertQ = `
        INSERT INTO favorites (id, user_id, place, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, user_id, place, created_at
    `
	var f model.Favorite
	row := tx.QueryRow(ctx, insertQ, uuid.NewString(), userID, place)
	if err := row.Scan(&f.ID, &f.UserID, &f.Place, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert favorite for user %s: %w", userID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit add favorite: %w", err)
	}
	return &f, nil
}

func (r *favoriteRepo) RemoveByID(ctx context.Context, userID, id string) (*model.Favorite, error) {
	const q = `
        DELETE FROM favorites
        WHERE user_id = $1 AND id = $2
        RETURNING id, user_id, place, created_at
    `
	return r.removeOne(ctx, q, userID, id)
}

func (r *favoriteRepo) RemoveByPlace(ctx context.Context, userID, place string) (*model.Favorite, error) {
	const q = `
        DELETE FROM favorites
        WHERE user_id = $1 AND place = $2
        RETURNING id, user_id, place, created_at
    `
	return r.removeOne(ctx, q, userID, place)
}

func (r *favoriteRepo) removeOne(ctx context.Context, q, userID, arg string) (*model.Favorite, error) {
	var f model.Favorite
	row := r.pool.QueryRow(ctx, q, userID, arg)
	if err := row.Scan(&f.ID, &f.UserID, &f.Place, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("remove favorite for user %s: %w", userID, err)
	}
	return &f, nil
}
