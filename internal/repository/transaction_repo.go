package repository

import (
	"context"
	"time"

	"carvfi/internal/domain"

	"github.com/google/uuid"
)

// CreateTransaction appends a ledger entry. Call it inside Atomic together
// with the matching AddPoints.
func (r *queries) CreateTransaction(ctx context.Context, t *domain.PointsTransaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO points_transactions (id, user_id, amount, type, description, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.Amount, t.Type, t.Description, t.Metadata, t.CreatedAt,
	)
	return mapErr(err)
}

// ListTransactions returns ledger entries for a user, newest first. Entries
// sharing a timestamp come back in reverse insertion order.
func (r *queries) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.PointsTransaction, error) {
	limit, offset = ledgerPage(limit, offset)
	var lim any // NULL means no limit
	if limit > 0 {
		lim = limit
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, user_id, amount, type, description, metadata, created_at
		 FROM points_transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT $2 OFFSET $3`,
		userID, lim, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.PointsTransaction
	for rows.Next() {
		var t domain.PointsTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &t.Metadata, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *queries) CountTransactions(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM points_transactions WHERE user_id = $1`,
		userID,
	).Scan(&n)
	return n, err
}

func (r *queries) SumTransactions(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::bigint FROM points_transactions WHERE user_id = $1`,
		userID,
	).Scan(&sum)
	return sum, err
}
