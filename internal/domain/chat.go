package domain

import "time"

const (
	DefaultChatDailyLimit = 20
	PointsPerChatMessage  = 2
	MaxChatMessageLength  = 500
)

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatInteraction counts one user's chat messages for one calendar day.
type ChatInteraction struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"userId"`
	MessageCount      int       `db:"message_count" json:"messageCount"`
	Date              time.Time `db:"date" json:"date"`
	PointsEarned      int64     `db:"points_earned" json:"pointsEarned"`
	DailyLimit        int       `db:"daily_limit" json:"dailyLimit"`
	MessagesRemaining int       `db:"messages_remaining" json:"messagesRemaining"`
}

// NewChatInteraction starts an empty counter for the day of date.
func NewChatInteraction(id, userID string, date time.Time, limit int) *ChatInteraction {
	return &ChatInteraction{
		ID:                id,
		UserID:            userID,
		Date:              date,
		DailyLimit:        limit,
		MessagesRemaining: RemainingMessages(limit, 0),
	}
}

// LimitReached reports whether no more messages are allowed today.
func (ci *ChatInteraction) LimitReached() bool {
	return ci.MessageCount >= ci.DailyLimit
}

// RecordMessage counts one more message and refreshes derived fields.
func (ci *ChatInteraction) RecordMessage() {
	ci.MessageCount++
	ci.MessagesRemaining = RemainingMessages(ci.DailyLimit, ci.MessageCount)
	ci.PointsEarned = int64(ci.MessageCount) * PointsPerChatMessage
}

// RemainingMessages is max(0, limit-count).
func RemainingMessages(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}

type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// ChatStats is the per-day summary shown to a user.
type ChatStats struct {
	MessageCount      int   `json:"messageCount"`
	MessagesRemaining int   `json:"messagesRemaining"`
	PointsEarned      int64 `json:"pointsEarned"`
}
