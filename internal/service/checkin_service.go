package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carvfi/internal/domain"
	"carvfi/internal/logger"
	"carvfi/internal/repository"

	"github.com/google/uuid"
)

type CheckInResult struct {
	CheckIn      *domain.CheckIn `json:"checkIn"`
	PointsEarned int64           `json:"pointsEarned"`
	StreakDay    int             `json:"streakDay"`
	User         *domain.User    `json:"-"`
}

// TodayCheckIn returns the wallet's check-in for the current calendar day,
// or nil when there is none or the wallet is unknown.
func (s *EngagementService) TodayCheckIn(ctx context.Context, wallet string) (*domain.CheckIn, error) {
	u, err := s.store.GetUserByWallet(ctx, wallet)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	start, end := domain.DayBounds(s.now(), s.loc)
	c, err := s.store.GetCheckIn(ctx, u.ID, start, end)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// CheckIn records today's check-in for wallet. The check-in row, the points
// credit, the streak update and the ledger entry commit together; a second
// check-in on the same calendar day fails with ErrAlreadyCheckedIn.
func (s *EngagementService) CheckIn(ctx context.Context, wallet, signature string) (*CheckInResult, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return nil, ErrMissingProof
	}
	user, err := s.ResolveUser(ctx, wallet)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start, end := domain.DayBounds(now, s.loc)

	var (
		res CheckInResult
		ev  domain.PointsEvent
	)
	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		u, err := tx.LockUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		_, err = tx.GetCheckIn(ctx, u.ID, start, end)
		if err == nil {
			return ErrAlreadyCheckedIn
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		streak := domain.NextStreak(u.LastLoginDate, u.CurrentStreak, now, s.loc)
		reward := domain.CheckInReward(streak)

		ci := &domain.CheckIn{
			ID:                   uuid.NewString(),
			UserID:               u.ID,
			CheckInDate:          now,
			TransactionSignature: signature,
			PointsEarned:         reward,
			StreakDay:            streak,
		}
		if err := tx.CreateCheckIn(ctx, ci); err != nil {
			return fmt.Errorf("create check-in: %w", err)
		}

		_, ev, err = s.credit(ctx, tx, u.ID, reward, domain.TxTypeDailyLogin,
			fmt.Sprintf("Daily check-in (Day %d)", streak),
			map[string]interface{}{"transactionSignature": signature}, now)
		if err != nil {
			return err
		}

		updated, err := tx.UpdateStreak(ctx, u.ID, streak, now)
		if err != nil {
			return fmt.Errorf("update streak: %w", err)
		}

		res = CheckInResult{CheckIn: ci, PointsEarned: reward, StreakDay: streak, User: updated}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			checkIns.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	checkIns.WithLabelValues("ok").Inc()
	s.committed(ctx, ev)
	logger.Info("check-in recorded", "user_id", user.ID, "streak_day", res.StreakDay, "points", res.PointsEarned)
	return &res, nil
}
