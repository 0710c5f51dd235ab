package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"carvfi/internal/domain"
	"carvfi/internal/repository"

	"github.com/google/uuid"
)

type ChatResult struct {
	Response          string `json:"response"`
	PointsEarned      int64  `json:"pointsEarned"`
	MessagesRemaining int    `json:"messagesRemaining"`
}

// ChatStats returns today's counters for the user. A user with no messages
// today has the full allowance remaining.
func (s *EngagementService) ChatStats(ctx context.Context, userID string) (*domain.ChatStats, error) {
	start, end := domain.DayBounds(s.now(), s.loc)
	ci, err := s.store.GetChatInteraction(ctx, userID, start, end)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.ChatStats{MessagesRemaining: s.chatLimit}, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.ChatStats{
		MessageCount:      ci.MessageCount,
		MessagesRemaining: domain.RemainingMessages(ci.DailyLimit, ci.MessageCount),
		PointsEarned:      ci.PointsEarned,
	}, nil
}

// SendMessage stores the user's message and the canned reply, counts it
// against today's limit and awards the flat chat reward.
func (s *EngagementService) SendMessage(ctx context.Context, wallet, message string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if n := utf8.RuneCountInString(message); n == 0 || n > domain.MaxChatMessageLength {
		return nil, ErrInvalidMessage
	}
	user, err := s.ResolveUser(ctx, wallet)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start, end := domain.DayBounds(now, s.loc)
	reply := s.responder.Reply(ctx, message)

	var (
		res ChatResult
		ev  domain.PointsEvent
	)
	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.LockUser(ctx, user.ID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		ci, err := tx.GetChatInteraction(ctx, user.ID, start, end)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			ci = domain.NewChatInteraction(uuid.NewString(), user.ID, now, s.chatLimit)
		case err != nil:
			return err
		}
		if ci.LimitReached() {
			return ErrDailyLimitReached
		}

		if err := tx.CreateChatMessage(ctx, &domain.ChatMessage{
			UserID: user.ID, Role: domain.ChatRoleUser, Content: message, Timestamp: now,
		}); err != nil {
			return fmt.Errorf("save message: %w", err)
		}
		if err := tx.CreateChatMessage(ctx, &domain.ChatMessage{
			UserID: user.ID, Role: domain.ChatRoleAssistant, Content: reply, Timestamp: now,
		}); err != nil {
			return fmt.Errorf("save reply: %w", err)
		}

		ci.RecordMessage()
		if err := tx.SaveChatInteraction(ctx, ci); err != nil {
			return fmt.Errorf("save interaction: %w", err)
		}

		_, ev, err = s.credit(ctx, tx, user.ID, domain.PointsPerChatMessage, domain.TxTypeChat, "Chat message",
			map[string]interface{}{"messageCount": ci.MessageCount}, now)
		if err != nil {
			return err
		}

		res = ChatResult{
			Response:          reply,
			PointsEarned:      domain.PointsPerChatMessage,
			MessagesRemaining: ci.MessagesRemaining,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDailyLimitReached) {
			chatMessages.WithLabelValues("limited").Inc()
		}
		return nil, err
	}

	chatMessages.WithLabelValues("ok").Inc()
	s.committed(ctx, ev)
	return &res, nil
}

// ChatHistory returns the user's stored messages, newest first.
func (s *EngagementService) ChatHistory(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	msgs, err := s.store.ListChatMessages(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.ChatMessage{}
	}
	return msgs, nil
}
