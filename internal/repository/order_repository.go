package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository reads the order history owned by the shop subsystem; the
// accounts service only needs the distinct purchased-product count for the
// dashboard.
type OrderRepository interface {
	CountDistinctPurchased(ctx context.Context, userID int64) (int, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) CountDistinctPurchased(ctx context.Context, userID int64) (int, error) {
	const q = `
		SELECT COUNT(DISTINCT oi.product_id)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int
	err := r.pool.QueryRow(ctx, q, userID).Scan(&count)
	return count, err
}
