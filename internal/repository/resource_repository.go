package repository

import (
	"context"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResourceRepository interface {
	// ListActive returns active resources ordered by display_order then
	// newest first; limit <= 0 means no limit.
	ListActive(ctx context.Context, limit int) ([]domain.MemberResource, error)
	List(ctx context.Context, limit, offset int) ([]domain.MemberResource, error)
	Create(ctx context.Context, req *domain.UpsertResourceRequest) (*domain.MemberResource, error)
	Update(ctx context.Context, id int64, req *domain.UpsertResourceRequest) (*domain.MemberResource, error)
	Delete(ctx context.Context, id int64) error
}

type resourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) ResourceRepository {
	return &resourceRepository{pool: pool}
}

const resourceCols = `id, title, description, file_url, thumbnail_url, is_active, display_order, created_at`

func scanResources(rows pgx.Rows) ([]domain.MemberResource, error) {
	defer rows.Close()

	var resources []domain.MemberResource
	for rows.Next() {
		var m domain.MemberResource
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Description, &m.FileURL, &m.ThumbnailURL, &m.IsActive, &m.DisplayOrder, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		resources = append(resources, m)
	}

	return resources, rows.Err()
}

func (r *resourceRepository) ListActive(ctx context.Context, limit int) ([]domain.MemberResource, error) {
	const q = `
		SELECT ` + resourceCols + `
		FROM member_resources
		WHERE is_active = true
		ORDER BY display_order, created_at DESC
		LIMIT $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var arg any
	if limit > 0 {
		arg = limit
	}
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}

	return scanResources(rows)
}

func (r *resourceRepository) List(ctx context.Context, limit, offset int) ([]domain.MemberResource, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + resourceCols + `
		FROM member_resources
		ORDER BY display_order, created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}

	return scanResources(rows)
}

func (r *resourceRepository) Create(ctx context.Context, req *domain.UpsertResourceRequest) (*domain.MemberResource, error) {
	const q = `
		INSERT INTO member_resources (title, description, file_url, thumbnail_url, is_active, display_order)
		VALUES ($1, $2, $3, $4, COALESCE($5, true), COALESCE($6, 0))
		RETURNING ` + resourceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.MemberResource
	err := r.pool.QueryRow(ctx, q,
		req.Title, req.Description, req.FileURL, req.ThumbnailURL, req.IsActive, req.DisplayOrder,
	).Scan(&m.ID, &m.Title, &m.Description, &m.FileURL, &m.ThumbnailURL, &m.IsActive, &m.DisplayOrder, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *resourceRepository) Update(ctx context.Context, id int64, req *domain.UpsertResourceRequest) (*domain.MemberResource, error) {
	const q = `
		UPDATE member_resources
		SET
			title = COALESCE(NULLIF($2, ''), title),
			description = COALESCE(NULLIF($3, ''), description),
			file_url = COALESCE(NULLIF($4, ''), file_url),
			thumbnail_url = COALESCE(NULLIF($5, ''), thumbnail_url),
			is_active = COALESCE($6, is_active),
			display_order = COALESCE($7, display_order)
		WHERE id = $1
		RETURNING ` + resourceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.MemberResource
	err := r.pool.QueryRow(ctx, q,
		id, req.Title, req.Description, req.FileURL, req.ThumbnailURL, req.IsActive, req.DisplayOrder,
	).Scan(&m.ID, &m.Title, &m.Description, &m.FileURL, &m.ThumbnailURL, &m.IsActive, &m.DisplayOrder, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM member_resources WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
