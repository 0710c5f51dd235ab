package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"carvfi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contractNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestUser(n int) *domain.User {
	return &domain.User{
		WalletAddress: fmt.Sprintf("Wallet%032d", n),
		Username:      fmt.Sprintf("carver_%04d", 1000+n),
		Level:         1,
		CreatedAt:     contractNow.Add(time.Duration(n) * time.Minute),
	}
}

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(1)
		require.NoError(t, s.CreateUser(ctx, u))
		require.NotEmpty(t, u.ID)

		got, err := s.GetUserByWallet(ctx, u.WalletAddress)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, 1, got.Level)

		_, err = s.GetUserByWallet(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		dup := newTestUser(1)
		assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicate)

		taken, err := s.UsernameExists(ctx, "CARVER_1001", "")
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = s.UsernameExists(ctx, u.Username, u.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("points and streak", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(2)
		require.NoError(t, s.CreateUser(ctx, u))

		got, err := s.AddPoints(ctx, u.ID, 1200)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), got.TotalPoints)
		assert.Equal(t, 2, got.Level)

		got, err = s.UpdateStreak(ctx, u.ID, 3, contractNow)
		require.NoError(t, err)
		assert.Equal(t, 3, got.CurrentStreak)
		assert.Equal(t, 3, got.LongestStreak)

		got, err = s.UpdateStreak(ctx, u.ID, 1, contractNow.Add(48*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentStreak)
		assert.Equal(t, 3, got.LongestStreak)
		require.NotNil(t, got.LastLoginDate)
		assert.True(t, got.LastLoginDate.Equal(contractNow.Add(48*time.Hour)))

		_, err = s.AddPoints(ctx, "missing", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("atomic rollback", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(3)
		require.NoError(t, s.CreateUser(ctx, u))

		boom := fmt.Errorf("boom")
		err := s.Atomic(ctx, func(ctx context.Context, tx Tx) error {
			if _, err := tx.AddPoints(ctx, u.ID, 50); err != nil {
				return err
			}
			if err := tx.CreateTransaction(ctx, &domain.PointsTransaction{
				UserID: u.ID, Amount: 50, Type: domain.TxTypeBonus, Description: "bonus", CreatedAt: contractNow,
			}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.TotalPoints)
		sum, err := s.SumTransactions(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), sum)
	})

	t.Run("check-ins by day", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(4)
		require.NoError(t, s.CreateUser(ctx, u))

		start, end := domain.DayBounds(contractNow, time.UTC)
		_, err := s.GetCheckIn(ctx, u.ID, start, end)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.CreateCheckIn(ctx, &domain.CheckIn{
			UserID: u.ID, CheckInDate: contractNow, TransactionSignature: "sig", PointsEarned: 12, StreakDay: 1,
		}))
		c, err := s.GetCheckIn(ctx, u.ID, start, end)
		require.NoError(t, err)
		assert.Equal(t, 1, c.StreakDay)
		assert.Equal(t, "sig", c.TransactionSignature)

		_, err = s.GetCheckIn(ctx, u.ID, end, end.Add(24*time.Hour))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("chat", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(5)
		require.NoError(t, s.CreateUser(ctx, u))

		start, end := domain.DayBounds(contractNow, time.UTC)
		ci := domain.NewChatInteraction("", u.ID, contractNow, 20)
		ci.RecordMessage()
		require.NoError(t, s.SaveChatInteraction(ctx, ci))
		ci.RecordMessage()
		require.NoError(t, s.SaveChatInteraction(ctx, ci))

		got, err := s.GetChatInteraction(ctx, u.ID, start, end)
		require.NoError(t, err)
		assert.Equal(t, 2, got.MessageCount)
		assert.Equal(t, 18, got.MessagesRemaining)
		assert.Equal(t, int64(4), got.PointsEarned)

		for i, role := range []string{domain.ChatRoleUser, domain.ChatRoleAssistant} {
			require.NoError(t, s.CreateChatMessage(ctx, &domain.ChatMessage{
				UserID: u.ID, Role: role, Content: role, Timestamp: contractNow.Add(time.Duration(i) * time.Second),
			}))
		}
		msgs, err := s.ListChatMessages(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, domain.ChatRoleAssistant, msgs[0].Role)
	})

	t.Run("ledger", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(6)
		require.NoError(t, s.CreateUser(ctx, u))

		for i, amt := range []int64{12, 2, -5} {
			require.NoError(t, s.CreateTransaction(ctx, &domain.PointsTransaction{
				UserID:      u.ID,
				Amount:      amt,
				Type:        domain.TxTypeBonus,
				Description: "entry",
				Metadata:    map[string]interface{}{"n": float64(i)},
				CreatedAt:   contractNow.Add(time.Duration(i) * time.Minute),
			}))
		}
		txs, err := s.ListTransactions(ctx, u.ID, 2, 0)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, int64(-5), txs[0].Amount)
		assert.Equal(t, float64(2), txs[0].Metadata["n"])

		rest, err := s.ListTransactions(ctx, u.ID, 2, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, int64(12), rest[0].Amount)

		n, err := s.CountTransactions(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		sum, err := s.SumTransactions(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9), sum)
	})

	t.Run("ledger pages cover the whole log", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(10)
		require.NoError(t, s.CreateUser(ctx, u))

		const entries = 330
		for i := 0; i < entries; i++ {
			amt := int64(2)
			if i%11 == 0 {
				amt = 12
			}
			require.NoError(t, s.Atomic(ctx, func(ctx context.Context, tx Tx) error {
				if _, err := tx.AddPoints(ctx, u.ID, amt); err != nil {
					return err
				}
				return tx.CreateTransaction(ctx, &domain.PointsTransaction{
					UserID: u.ID, Amount: amt, Type: domain.TxTypeChat, Description: "entry",
					CreatedAt: contractNow.Add(time.Duration(i/2) * time.Minute),
				})
			}))
		}

		all, err := s.ListTransactions(ctx, u.ID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, entries)

		seen := map[string]bool{}
		var sum int64
		for offset := 0; ; offset += MaxListLimit {
			page, err := s.ListTransactions(ctx, u.ID, MaxListLimit, offset)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			for _, tx := range page {
				require.False(t, seen[tx.ID], "entry %s returned twice", tx.ID)
				seen[tx.ID] = true
				sum += tx.Amount
			}
		}
		n, err := s.CountTransactions(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, entries, n)
		assert.Len(t, seen, entries)

		got, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, got.TotalPoints, sum)
	})

	t.Run("same timestamp keeps insertion order", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(11)
		require.NoError(t, s.CreateUser(ctx, u))

		for _, role := range []string{domain.ChatRoleUser, domain.ChatRoleAssistant, domain.ChatRoleUser, domain.ChatRoleAssistant} {
			require.NoError(t, s.CreateChatMessage(ctx, &domain.ChatMessage{
				UserID: u.ID, Role: role, Content: role, Timestamp: contractNow,
			}))
		}
		msgs, err := s.ListChatMessages(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 4)
		for i, want := range []string{domain.ChatRoleAssistant, domain.ChatRoleUser, domain.ChatRoleAssistant, domain.ChatRoleUser} {
			assert.Equal(t, want, msgs[i].Role, "message %d", i)
		}
	})

	t.Run("ranking", func(t *testing.T) {
		s := newStore(t)
		a, b, c := newTestUser(7), newTestUser(8), newTestUser(9)
		for _, u := range []*domain.User{a, b, c} {
			require.NoError(t, s.CreateUser(ctx, u))
		}
		_, err := s.AddPoints(ctx, a.ID, 100)
		require.NoError(t, err)
		_, err = s.AddPoints(ctx, b.ID, 300)
		require.NoError(t, err)
		_, err = s.AddPoints(ctx, c.ID, 100)
		require.NoError(t, err)

		top, err := s.TopUsers(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, []string{b.ID, a.ID, c.ID}, []string{top[0].ID, top[1].ID, top[2].ID})

		rank, err := s.UserRank(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, rank)

		n, err := s.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		_, err = s.UserRank(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("partners and activities", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser(10)
		require.NoError(t, s.CreateUser(ctx, u))

		for _, p := range domain.DefaultPartnerProjects() {
			p := p
			require.NoError(t, s.CreatePartnerProject(ctx, &p))
		}
		require.NoError(t, s.CreatePartnerProject(ctx, &domain.PartnerProject{Name: "Dormant", Hashtags: []string{"#old"}}))

		active, err := s.ListPartnerProjects(ctx, true)
		require.NoError(t, err)
		require.Len(t, active, 2)
		all, err := s.ListPartnerProjects(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		project := "CARV Protocol"
		act := &domain.TwitterActivity{
			UserID: u.ID, TweetID: "t-1", ActivityType: domain.ActivityPromotion,
			Hashtags: []string{"#CARVProtocol"}, PartnerProject: &project, PointsEarned: 50,
			Verified: true, CreatedAt: contractNow,
		}
		require.NoError(t, s.CreateTwitterActivity(ctx, act))
		assert.ErrorIs(t, s.CreateTwitterActivity(ctx, &domain.TwitterActivity{
			UserID: u.ID, TweetID: "t-1", ActivityType: domain.ActivityPromotion, CreatedAt: contractNow,
		}), ErrDuplicate)

		exists, err := s.TwitterActivityExists(ctx, "t-1")
		require.NoError(t, err)
		assert.True(t, exists)

		acts, err := s.ListTwitterActivities(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, acts, 1)
		assert.Equal(t, "CARV Protocol", *acts[0].PartnerProject)
	})
}
