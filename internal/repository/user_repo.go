package repository

import (
	"context"
	"time"

	"carvfi/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, wallet_address, username, email, avatar_url, twitter_handle, twitter_id,
	total_points, current_streak, longest_streak, last_login_date, level, username_changed, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.WalletAddress,
		&u.Username,
		&u.Email,
		&u.AvatarURL,
		&u.TwitterHandle,
		&u.TwitterID,
		&u.TotalPoints,
		&u.CurrentStreak,
		&u.LongestStreak,
		&u.LastLoginDate,
		&u.Level,
		&u.UsernameChanged,
		&u.CreatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *queries) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *queries) GetUserByWallet(ctx context.Context, wallet string) (*domain.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE wallet_address = $1`, wallet))
}

func (r *queries) LockUser(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

func (r *queries) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.Level = domain.LevelFor(u.TotalPoints)

	_, err := r.q.Exec(ctx,
		`INSERT INTO users (id, wallet_address, username, email, total_points, current_streak,
			longest_streak, level, username_changed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.WalletAddress, u.Username, u.Email, u.TotalPoints, u.CurrentStreak,
		u.LongestStreak, u.Level, u.UsernameChanged, u.CreatedAt,
	)
	return mapErr(err)
}

func (r *queries) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(username) = lower($1) AND id <> $2)`,
		username, excludeID,
	).Scan(&exists)
	return exists, mapErr(err)
}

func (r *queries) AddPoints(ctx context.Context, id string, delta int64) (*domain.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`UPDATE users
		 SET total_points = total_points + $2,
		     level = floor((total_points + $2) / 1000.0)::int + 1
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, delta))
}

func (r *queries) UpdateStreak(ctx context.Context, id string, streak int, lastLogin time.Time) (*domain.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`UPDATE users
		 SET current_streak = $2,
		     longest_streak = GREATEST(longest_streak, $2),
		     last_login_date = $3
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, streak, lastLogin))
}

func (r *queries) UpdateProfile(ctx context.Context, u *domain.User) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users
		 SET username = $2, username_changed = $3, email = $4,
		     avatar_url = $5, twitter_handle = $6, twitter_id = $7
		 WHERE id = $1`,
		u.ID, u.Username, u.UsernameChanged, u.Email, u.AvatarURL, u.TwitterHandle, u.TwitterID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TopUsers orders by points, then earlier signup.
func (r *queries) TopUsers(ctx context.Context, limit int) ([]*domain.User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY total_points DESC, created_at ASC, id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *queries) UserRank(ctx context.Context, id string) (int, error) {
	var rank int64
	err := r.q.QueryRow(ctx,
		`SELECT rank FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY total_points DESC, created_at ASC, id ASC) AS rank
			FROM users
		 ) ranked
		 WHERE id = $1`,
		id,
	).Scan(&rank)
	if err != nil {
		return 0, mapErr(err)
	}
	return int(rank), nil
}

func (r *queries) CountUsers(ctx context.Context) (int, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}
