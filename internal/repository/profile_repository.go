package repository

import (
	"context"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository interface {
	// Ensure creates the profile row if it is missing and returns it.
	// Every identity must have exactly one profile after any save; callers
	// go through Ensure instead of assuming the row exists.
	Ensure(ctx context.Context, userID int64) (*domain.Profile, error)
	Get(ctx context.Context, userID int64) (*domain.Profile, error)
	Update(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileCols = `user_id, verified, bio, business_name, business_type, business_location, target_audience, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.UserID, &p.Verified, &p.Bio, &p.BusinessName, &p.BusinessType, &p.BusinessLocation, &p.TargetAudience, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Ensure(ctx context.Context, userID int64) (*domain.Profile, error) {
	const q = `
		INSERT INTO profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.pool.Exec(ctx, q, userID); err != nil {
		return nil, err
	}

	return r.get(ctx, userID)
}

func (r *profileRepository) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.get(ctx, userID)
}

func (r *profileRepository) get(ctx context.Context, userID int64) (*domain.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.pool.QueryRow(ctx, q, userID))
}

func (r *profileRepository) Update(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	const q = `
		UPDATE profiles
		SET
			bio = COALESCE($2, bio),
			business_name = COALESCE($3, business_name),
			business_type = COALESCE($4, business_type),
			business_location = COALESCE($5, business_location),
			target_audience = COALESCE($6, target_audience),
			updated_at = now()
		WHERE user_id = $1
		RETURNING ` + profileCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanProfile(r.pool.QueryRow(ctx, q, userID,
		req.Bio, req.BusinessName, req.BusinessType, req.BusinessLocation, req.TargetAudience))
}
