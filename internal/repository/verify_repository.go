package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VerifyRepository interface {
	// Issue supersedes any existing token for the user: old rows are deleted
	// and a fresh token is created, leaving exactly one live token.
	Issue(ctx context.Context, userID int64) (*domain.VerificationToken, error)
	Find(ctx context.Context, token string) (*domain.VerificationToken, error)
	// Consume activates the owning user, marks the profile verified and
	// deletes the token in one transaction. Returns the user ID, or
	// domain.ErrTokenNotFound / domain.ErrTokenExpired without mutating
	// anything.
	Consume(ctx context.Context, token string) (int64, error)
	ListReminderDue(ctx context.Context) ([]domain.ReminderTarget, error)
	MarkReminderSent(ctx context.Context, tokenID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type verifyRepository struct {
	pool *pgxpool.Pool
}

func NewVerifyRepository(pool *pgxpool.Pool) VerifyRepository {
	return &verifyRepository{pool: pool}
}

const tokenCols = `id, user_id, token, created_at, reminder_sent, reminder_sent_at`

func (r *verifyRepository) Issue(ctx context.Context, userID int64) (*domain.VerificationToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM email_verification_tokens WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO email_verification_tokens (user_id, token)
		VALUES ($1, $2)
		RETURNING ` + tokenCols

	var t domain.VerificationToken
	err = tx.QueryRow(ctx, q, userID, uuid.NewString()).Scan(
		&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ReminderSent, &t.ReminderSentAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *verifyRepository) Find(ctx context.Context, token string) (*domain.VerificationToken, error) {
	const q = `SELECT ` + tokenCols + ` FROM email_verification_tokens WHERE token = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.VerificationToken
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ReminderSent, &t.ReminderSentAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *verifyRepository) Consume(ctx context.Context, token string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const findQ = `
		SELECT id, user_id, created_at
		FROM email_verification_tokens
		WHERE token = $1
		FOR UPDATE`

	var (
		tokenID   int64
		userID    int64
		createdAt time.Time
	)
	err = tx.QueryRow(ctx, findQ, token).Scan(&tokenID, &userID, &createdAt)
	if err == pgx.ErrNoRows {
		return 0, domain.ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}

	t := domain.VerificationToken{CreatedAt: createdAt}
	if !t.IsValid() {
		// Rolled back by the deferred Rollback; expired tokens are left in
		// place for housekeeping and never mutate account state.
		return 0, domain.ErrTokenExpired
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET is_active = true, updated_at = now() WHERE id = $1`, userID); err != nil {
		return 0, err
	}

	// Upsert keeps the self-healing profile invariant even if the profile
	// row went missing between registration and verification.
	const profileQ = `
		INSERT INTO profiles (user_id, verified)
		VALUES ($1, true)
		ON CONFLICT (user_id) DO UPDATE SET verified = true, updated_at = now()`
	if _, err := tx.Exec(ctx, profileQ, userID); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM email_verification_tokens WHERE id = $1`, tokenID); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit verification: %w", err)
	}
	return userID, nil
}

func (r *verifyRepository) ListReminderDue(ctx context.Context) ([]domain.ReminderTarget, error) {
	const q = `
		SELECT t.id, t.token, u.id, u.username, u.email
		FROM email_verification_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.reminder_sent = false
		  AND t.created_at > now() - interval '24 hours'
		  AND u.is_active = false
		ORDER BY t.created_at`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []domain.ReminderTarget
	for rows.Next() {
		var t domain.ReminderTarget
		if err := rows.Scan(&t.TokenID, &t.Token, &t.UserID, &t.Username, &t.Email); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	return targets, rows.Err()
}

func (r *verifyRepository) MarkReminderSent(ctx context.Context, tokenID int64) error {
	const q = `
		UPDATE email_verification_tokens
		SET reminder_sent = true, reminder_sent_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, tokenID)
	return err
}

func (r *verifyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `
		DELETE FROM email_verification_tokens
		WHERE created_at < now() - interval '24 hours'`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
