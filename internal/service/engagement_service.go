package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"carvfi/internal/cache"
	"carvfi/internal/domain"
	"carvfi/internal/logger"
	"carvfi/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidWallet     = errors.New("invalid wallet address")
	ErrMissingProof      = errors.New("transaction signature is required")
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrDailyLimitReached = errors.New("daily message limit reached")
	ErrInvalidMessage    = errors.New("message must be between 1 and 500 characters")
	ErrUsernameLocked    = errors.New("username can only be changed once")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidAmount     = errors.New("invalid amount")
)

const (
	MinWalletLength = 32
	MaxWalletLength = 64

	minUsernameLength = 3
	maxUsernameLength = 32
	usernameAttempts  = 20
)

// PointsPublisher receives an event after points are committed.
type PointsPublisher interface {
	Publish(ev domain.PointsEvent)
}

// LeaderboardCache stores computed leaderboards. *cache.Cache satisfies it.
type LeaderboardCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration)
	InvalidatePrefix(ctx context.Context, prefix string)
	Ping(ctx context.Context) error
}

type Options struct {
	Location       *time.Location
	ChatDailyLimit int
	Clock          func() time.Time
	Responder      Responder
	Tweets         TweetSource
	Analyzer       SocialAnalyzer
	Cache          LeaderboardCache
	LeaderboardTTL time.Duration
	Publisher      PointsPublisher
}

// EngagementService owns every points-bearing flow: user resolution,
// check-ins, chat, social tasks and the ledger.
type EngagementService struct {
	store          repository.Store
	loc            *time.Location
	chatLimit      int
	now            func() time.Time
	responder      Responder
	tweets         TweetSource
	analyzer       SocialAnalyzer
	cache          LeaderboardCache
	leaderboardTTL time.Duration
	publisher      PointsPublisher
}

func NewEngagementService(store repository.Store, opts Options) *EngagementService {
	s := &EngagementService{
		store:          store,
		loc:            opts.Location,
		chatLimit:      opts.ChatDailyLimit,
		now:            opts.Clock,
		responder:      opts.Responder,
		tweets:         opts.Tweets,
		analyzer:       opts.Analyzer,
		cache:          opts.Cache,
		leaderboardTTL: opts.LeaderboardTTL,
		publisher:      opts.Publisher,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.chatLimit <= 0 {
		s.chatLimit = domain.DefaultChatDailyLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.responder == nil {
		s.responder = KeywordResponder{}
	}
	if s.tweets == nil {
		s.tweets = UnintegratedTweetSource{}
	}
	if s.analyzer == nil {
		s.analyzer = MockSocialAnalyzer{}
	}
	if s.cache == nil {
		s.cache = cache.New(nil)
	}
	if s.leaderboardTTL <= 0 {
		s.leaderboardTTL = 30 * time.Second
	}
	return s
}

// ValidWallet reports whether addr has an acceptable wallet address length.
func ValidWallet(addr string) bool {
	n := utf8.RuneCountInString(addr)
	return n >= MinWalletLength && n <= MaxWalletLength
}

// ResolveUser returns the user owning wallet, creating it with a generated
// username on first contact.
func (s *EngagementService) ResolveUser(ctx context.Context, wallet string) (*domain.User, error) {
	if !ValidWallet(wallet) {
		return nil, ErrInvalidWallet
	}

	u, err := s.store.GetUserByWallet(ctx, wallet)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get user by wallet: %w", err)
	}

	for attempt := 0; attempt < 3; attempt++ {
		name, err := s.generateUsername(ctx)
		if err != nil {
			return nil, err
		}
		u = &domain.User{
			ID:            uuid.NewString(),
			WalletAddress: wallet,
			Username:      name,
			Level:         1,
			CreatedAt:     s.now(),
		}
		err = s.store.CreateUser(ctx, u)
		if err == nil {
			usersCreated.Inc()
			s.cache.InvalidatePrefix(ctx, leaderboardKeyPrefix)
			logger.Info("user created", "user_id", u.ID, "username", u.Username)
			return u, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		// a concurrent request may have created this wallet first
		if existing, gerr := s.store.GetUserByWallet(ctx, wallet); gerr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("create user: %w", repository.ErrDuplicate)
}

func (s *EngagementService) generateUsername(ctx context.Context) (string, error) {
	for i := 0; i < usernameAttempts; i++ {
		name := fmt.Sprintf("%s%d", domain.DefaultUsernamePrefix, 1000+rand.Intn(9000))
		taken, err := s.store.UsernameExists(ctx, name, "")
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return name, nil
		}
	}
	return domain.DefaultUsernamePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8], nil
}

func (s *EngagementService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetUserByWallet looks a user up without creating it.
func (s *EngagementService) GetUserByWallet(ctx context.Context, wallet string) (*domain.User, error) {
	u, err := s.store.GetUserByWallet(ctx, wallet)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ProfileUpdate carries optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	Username *string
	Email    *string
}

// UpdateProfile changes the username (once, away from the generated
// default) and the email (any time; empty clears it).
func (s *EngagementService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error) {
	var out *domain.User
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		u, err := tx.LockUser(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if upd.Username != nil {
			name := strings.TrimSpace(*upd.Username)
			if name != u.Username {
				if u.UsernameChanged {
					return ErrUsernameLocked
				}
				if err := validateUsername(name); err != nil {
					return err
				}
				taken, err := tx.UsernameExists(ctx, name, u.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrUsernameTaken
				}
				u.Username = name
				u.UsernameChanged = true
			}
		}

		if upd.Email != nil {
			email := strings.TrimSpace(*upd.Email)
			switch {
			case email == "":
				u.Email = nil
			case !strings.Contains(email, "@") || len(email) > 254:
				return ErrInvalidEmail
			default:
				u.Email = &email
			}
		}

		if err := tx.UpdateProfile(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrUsernameTaken
			}
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	// leaderboard entries carry the username
	s.cache.InvalidatePrefix(ctx, leaderboardKeyPrefix)
	return out, nil
}

func validateUsername(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minUsernameLength || n > maxUsernameLength {
		return ErrInvalidUsername
	}
	if strings.HasPrefix(strings.ToLower(name), domain.DefaultUsernamePrefix) {
		return ErrInvalidUsername
	}
	for _, r := range name {
		ok := r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return ErrInvalidUsername
		}
	}
	return nil
}

// Ping checks the store and, when configured, the cache.
func (s *EngagementService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}
