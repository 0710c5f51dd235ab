package repository

import (
	"context"
	"errors"
	"time"

	"carvfi/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type UserRepository interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByWallet(ctx context.Context, wallet string) (*domain.User, error)
	// LockUser loads a user and holds it for the rest of the unit of work.
	LockUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	// AddPoints applies a signed delta to total points and recomputes the level.
	AddPoints(ctx context.Context, id string, delta int64) (*domain.User, error)
	// UpdateStreak sets the current streak, raises the longest streak if
	// needed and stamps the last login.
	UpdateStreak(ctx context.Context, id string, streak int, lastLogin time.Time) (*domain.User, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	TopUsers(ctx context.Context, limit int) ([]*domain.User, error)
	UserRank(ctx context.Context, id string) (int, error)
	CountUsers(ctx context.Context) (int, error)
}

type CheckInRepository interface {
	// GetCheckIn returns the user's check-in inside [from, to).
	GetCheckIn(ctx context.Context, userID string, from, to time.Time) (*domain.CheckIn, error)
	CreateCheckIn(ctx context.Context, c *domain.CheckIn) error
}

type ChatRepository interface {
	// GetChatInteraction returns the user's counter dated inside [from, to).
	GetChatInteraction(ctx context.Context, userID string, from, to time.Time) (*domain.ChatInteraction, error)
	SaveChatInteraction(ctx context.Context, ci *domain.ChatInteraction) error
	CreateChatMessage(ctx context.Context, m *domain.ChatMessage) error
	ListChatMessages(ctx context.Context, userID string, limit int) ([]*domain.ChatMessage, error)
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, t *domain.PointsTransaction) error
	// ListTransactions returns the user's ledger newest first, skipping
	// offset entries. A limit <= 0 reads to the end of the log.
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.PointsTransaction, error)
	CountTransactions(ctx context.Context, userID string) (int, error)
	SumTransactions(ctx context.Context, userID string) (int64, error)
}

type PartnerRepository interface {
	ListPartnerProjects(ctx context.Context, activeOnly bool) ([]*domain.PartnerProject, error)
	CreatePartnerProject(ctx context.Context, p *domain.PartnerProject) error
	ListTwitterActivities(ctx context.Context, userID string, limit int) ([]*domain.TwitterActivity, error)
	TwitterActivityExists(ctx context.Context, tweetID string) (bool, error)
	CreateTwitterActivity(ctx context.Context, a *domain.TwitterActivity) error
}

// Tx is every data operation. It is implemented by a Store and by the
// handle passed to Store.Atomic.
type Tx interface {
	UserRepository
	CheckInRepository
	ChatRepository
	TransactionRepository
	PartnerRepository
}

type Store interface {
	Tx
	// Atomic runs fn as one unit of work. Any error returned by fn discards
	// every write fn made.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close()
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	MaxLedgerPage    = 1000
)

// ledgerPage normalizes ledger paging; a zero limit means "no limit".
func ledgerPage(limit, offset int) (int, int) {
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLedgerPage {
		limit = MaxLedgerPage
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
