package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carvfi/internal/domain"
	"carvfi/internal/logger"
	"carvfi/internal/repository"
)

const (
	leaderboardKeyPrefix = "leaderboard:"
	MaxLeaderboardLimit  = 100
)

// credit adds amount to the user's points and appends the matching ledger
// entry. It must run inside Atomic so both writes commit together.
func (s *EngagementService) credit(ctx context.Context, tx repository.Tx, userID string, amount int64,
	txType, description string, meta map[string]interface{}, at time.Time) (*domain.User, domain.PointsEvent, error) {
	if amount <= 0 {
		return nil, domain.PointsEvent{}, ErrInvalidAmount
	}

	u, err := tx.AddPoints(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.PointsEvent{}, ErrUserNotFound
		}
		return nil, domain.PointsEvent{}, fmt.Errorf("add points: %w", err)
	}

	entry := &domain.PointsTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		Metadata:    meta,
		CreatedAt:   at,
	}
	if err := tx.CreateTransaction(ctx, entry); err != nil {
		return nil, domain.PointsEvent{}, fmt.Errorf("create transaction: %w", err)
	}

	ev := domain.PointsEvent{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		TotalPoints: u.TotalPoints,
		Level:       u.Level,
		CreatedAt:   at,
	}
	return u, ev, nil
}

// committed runs the side effects of a credit once its unit of work is durable.
func (s *EngagementService) committed(ctx context.Context, ev domain.PointsEvent) {
	pointsAwarded.WithLabelValues(ev.Type).Add(float64(ev.Amount))
	s.cache.InvalidatePrefix(ctx, leaderboardKeyPrefix)
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
	logger.Debug("points credited", "user_id", ev.UserID, "amount", ev.Amount, "type", ev.Type, "total", ev.TotalPoints)
}

// AwardBonus credits a bonus outside the regular flows, e.g. from operators.
func (s *EngagementService) AwardBonus(ctx context.Context, userID string, amount int64, description string) (*domain.User, error) {
	var (
		u  *domain.User
		ev domain.PointsEvent
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		u, ev, err = s.credit(ctx, tx, userID, amount, domain.TxTypeBonus, description, nil, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, ev)
	return u, nil
}

// ListTransactions returns one page of the user's ledger, newest first, along
// with the total number of entries. limit <= 0 returns the whole log.
func (s *EngagementService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.PointsTransaction, int, error) {
	txs, err := s.store.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountTransactions(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if txs == nil {
		txs = []*domain.PointsTransaction{}
	}
	return txs, total, nil
}

// Leaderboard returns the top users by points, served from the cache when possible.
func (s *EngagementService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	key := fmt.Sprintf("%s%d", leaderboardKeyPrefix, limit)

	var cached []domain.LeaderboardEntry
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	users, err := s.store.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:          i + 1,
			UserID:        u.ID,
			Username:      u.Username,
			WalletAddress: u.WalletAddress,
			TotalPoints:   u.TotalPoints,
			Level:         u.Level,
			CurrentStreak: u.CurrentStreak,
		})
	}
	s.cache.SetJSON(ctx, key, entries, s.leaderboardTTL)
	return entries, nil
}

func (s *EngagementService) Rank(ctx context.Context, userID string) (*domain.UserRank, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rank, err := s.store.UserRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.UserRank{UserID: u.ID, Rank: rank, TotalPoints: u.TotalPoints, TotalUsers: total}, nil
}

// UserStats is the public summary for a wallet.
type UserStats struct {
	Wallet        string `json:"wallet"`
	Points        int64  `json:"points"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
	Tweets        int    `json:"tweets"`
	Engagement    int    `json:"engagement"`
}

func (s *EngagementService) Stats(ctx context.Context, wallet string) (*UserStats, error) {
	u, err := s.GetUserByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	social := s.analyzer.Analyze(ctx, wallet)
	return &UserStats{
		Wallet:        wallet,
		Points:        u.TotalPoints,
		Level:         u.Level,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
		Tweets:        social.Tweets,
		Engagement:    social.Engagement,
	}, nil
}

// Reconcile reports the difference between a user's total and the ledger sum.
func (s *EngagementService) Reconcile(ctx context.Context, userID string) (int64, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	sum, err := s.store.SumTransactions(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.TotalPoints - sum, nil
}
