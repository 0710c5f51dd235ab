package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"carvfi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newTestUser(1)
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	got.TotalPoints = 999

	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.TotalPoints)
}

func TestMemoryStoreAtomicSerializes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newTestUser(1)
	require.NoError(t, s.CreateUser(ctx, u))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Atomic(ctx, func(ctx context.Context, tx Tx) error {
				if _, err := tx.AddPoints(ctx, u.ID, 2); err != nil {
					return err
				}
				return tx.CreateTransaction(ctx, &domain.PointsTransaction{
					UserID: u.ID, Amount: 2, Type: domain.TxTypeChat, Description: "Chat message",
				})
			})
		}()
	}
	wg.Wait()

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	sum, err := s.SumTransactions(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.TotalPoints)
	assert.Equal(t, got.TotalPoints, sum)
}

func TestMemoryStoreRollbackRestoresIndexes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newTestUser(1)
	require.NoError(t, s.CreateUser(ctx, u))
	day := contractNow.Truncate(24 * time.Hour)
	require.NoError(t, s.SaveChatInteraction(ctx, domain.NewChatInteraction("", u.ID, day, 20)))

	fresh := newTestUser(2)
	errBoom := errors.New("boom")
	err := s.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.LockUser(ctx, u.ID)
		if err != nil {
			return err
		}
		cur.Username = "renamed"
		cur.UsernameChanged = true
		if err := tx.UpdateProfile(ctx, cur); err != nil {
			return err
		}
		if _, err := tx.AddPoints(ctx, u.ID, 40); err != nil {
			return err
		}
		if err := tx.CreateUser(ctx, fresh); err != nil {
			return err
		}
		ci, err := tx.GetChatInteraction(ctx, u.ID, day, day.Add(24*time.Hour))
		if err != nil {
			return err
		}
		ci.MessageCount = 5
		if err := tx.SaveChatInteraction(ctx, ci); err != nil {
			return err
		}
		if err := tx.SaveChatInteraction(ctx, domain.NewChatInteraction("", fresh.ID, day, 20)); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.False(t, got.UsernameChanged)
	assert.Zero(t, got.TotalPoints)

	taken, err := s.UsernameExists(ctx, "RENAMED", "")
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = s.UsernameExists(ctx, u.Username, "")
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = s.GetUserByWallet(ctx, fresh.WalletAddress)
	assert.ErrorIs(t, err, ErrNotFound)
	taken, err = s.UsernameExists(ctx, fresh.Username, "")
	require.NoError(t, err)
	assert.False(t, taken)
	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ci, err := s.GetChatInteraction(ctx, u.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, ci.MessageCount)
	_, err = s.GetChatInteraction(ctx, fresh.ID, day, day.Add(24*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)

	// the wallet and username are free again
	require.NoError(t, s.CreateUser(ctx, fresh))
}

func TestMemoryStoreJournalsOnlyTouchedUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var target string
	for i := 0; i < 500; i++ {
		u := newTestUser(i)
		require.NoError(t, s.CreateUser(ctx, u))
		target = u.ID
	}

	err := s.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		st := tx.(*memState)
		require.NotNil(t, st.undo)
		assert.Empty(t, st.undo.users)

		if _, err := tx.AddPoints(ctx, target, 2); err != nil {
			return err
		}
		if _, err := tx.AddPoints(ctx, target, 2); err != nil {
			return err
		}
		assert.Len(t, st.undo.users, 1)
		assert.Equal(t, int64(0), st.undo.users[target].TotalPoints)
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, s.st.undo)

	got, err := s.GetUser(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.TotalPoints)
}

func TestMemoryStoreUsernameIndexIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	const users = 20000
	for i := 0; i < users; i++ {
		require.NoError(t, s.CreateUser(ctx, newTestUser(i)))
	}

	probe := newTestUser(users - 1)
	taken, err := s.UsernameExists(ctx, strings.ToUpper(probe.Username), "")
	require.NoError(t, err)
	assert.True(t, taken)

	owner, err := s.GetUserByWallet(ctx, probe.WalletAddress)
	require.NoError(t, err)
	taken, err = s.UsernameExists(ctx, probe.Username, owner.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	dup := newTestUser(users + 1)
	dup.Username = strings.ToUpper(probe.Username)
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicate)
}

func BenchmarkMemoryStoreAtomicManyUsers(b *testing.B) {
	ctx := context.Background()
	s := NewMemoryStore()
	var id string
	for i := 0; i < 10000; i++ {
		u := newTestUser(i)
		if err := s.CreateUser(ctx, u); err != nil {
			b.Fatal(err)
		}
		id = u.ID
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Atomic(ctx, func(ctx context.Context, tx Tx) error {
			_, err := tx.AddPoints(ctx, id, 1)
			return err
		})
	}
}
