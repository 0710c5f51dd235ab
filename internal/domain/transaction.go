package domain

import "time"

// Points transaction categories.
const (
	TxTypeDailyLogin = "daily_login"
	TxTypeChat       = "chat"
	TxTypeTwitter    = "twitter"
	TxTypeBonus      = "bonus"
)

// PointsTransaction is an append-only ledger entry. The sum of a user's
// amounts equals the user's total points.
type PointsTransaction struct {
	ID          string                 `db:"id" json:"id"`
	UserID      string                 `db:"user_id" json:"userId"`
	Amount      int64                  `db:"amount" json:"amount"`
	Type        string                 `db:"type" json:"type"`
	Description string                 `db:"description" json:"description"`
	Metadata    map[string]interface{} `db:"metadata" json:"metadata"`
	CreatedAt   time.Time              `db:"created_at" json:"createdAt"`
}

// PointsEvent is published after points are credited to a user.
type PointsEvent struct {
	UserID      string    `json:"userId"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"category"`
	Description string    `json:"description"`
	TotalPoints int64     `json:"totalPoints"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"createdAt"`
}
