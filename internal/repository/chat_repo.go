package repository

import (
	"context"
	"time"

	"carvfi/internal/domain"

	"github.com/google/uuid"
)

func (r *queries) GetChatInteraction(ctx context.Context, userID string, from, to time.Time) (*domain.ChatInteraction, error) {
	var ci domain.ChatInteraction
	err := r.q.QueryRow(ctx,
		`SELECT id, user_id, message_count, date, points_earned, daily_limit, messages_remaining
		 FROM chat_interactions
		 WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date DESC
		 LIMIT 1`,
		userID, from, to,
	).Scan(&ci.ID, &ci.UserID, &ci.MessageCount, &ci.Date, &ci.PointsEarned, &ci.DailyLimit, &ci.MessagesRemaining)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ci, nil
}

// SaveChatInteraction inserts the counter or overwrites its counts.
func (r *queries) SaveChatInteraction(ctx context.Context, ci *domain.ChatInteraction) error {
	if ci.ID == "" {
		ci.ID = uuid.NewString()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO chat_interactions (id, user_id, message_count, date, points_earned, daily_limit, messages_remaining)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET message_count = EXCLUDED.message_count,
		     points_earned = EXCLUDED.points_earned,
		     daily_limit = EXCLUDED.daily_limit,
		     messages_remaining = EXCLUDED.messages_remaining`,
		ci.ID, ci.UserID, ci.MessageCount, ci.Date, ci.PointsEarned, ci.DailyLimit, ci.MessagesRemaining,
	)
	return mapErr(err)
}

func (r *queries) CreateChatMessage(ctx context.Context, m *domain.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, timestamp)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.Role, m.Content, m.Timestamp,
	)
	return mapErr(err)
}

func (r *queries) ListChatMessages(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, user_id, role, content, timestamp
		 FROM chat_messages
		 WHERE user_id = $1
		 ORDER BY timestamp DESC, seq DESC
		 LIMIT $2`,
		userID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}
