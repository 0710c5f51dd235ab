package repository

import (
	"context"
	"time"

	"carvfi/internal/domain"

	"github.com/google/uuid"
)

func (r *queries) GetCheckIn(ctx context.Context, userID string, from, to time.Time) (*domain.CheckIn, error) {
	var c domain.CheckIn
	err := r.q.QueryRow(ctx,
		`SELECT id, user_id, check_in_date, transaction_signature, points_earned, streak_day
		 FROM check_ins
		 WHERE user_id = $1 AND check_in_date >= $2 AND check_in_date < $3
		 ORDER BY check_in_date DESC
		 LIMIT 1`,
		userID, from, to,
	).Scan(&c.ID, &c.UserID, &c.CheckInDate, &c.TransactionSignature, &c.PointsEarned, &c.StreakDay)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *queries) CreateCheckIn(ctx context.Context, c *domain.CheckIn) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO check_ins (id, user_id, check_in_date, transaction_signature, points_earned, streak_day)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.CheckInDate, c.TransactionSignature, c.PointsEarned, c.StreakDay,
	)
	return mapErr(err)
}
