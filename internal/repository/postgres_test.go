package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"carvfi/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumnNames = []string{"id", "wallet_address", "username", "email", "avatar_url", "twitter_handle",
	"twitter_id", "total_points", "current_streak", "longest_streak", "last_login_date", "level",
	"username_changed", "created_at"}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func userRow(mock pgxmock.PgxPoolIface, id string, points int64, level int) *pgxmock.Rows {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return mock.NewRows(userColumnNames).AddRow(
		id, "WalletAddr000000000000000000000000", "carver_1234",
		(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
		points, 0, 0, (*time.Time)(nil), level, false, created,
	)
}

func TestPostgresGetUserByWalletNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM users WHERE wallet_address").
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetUserByWallet(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateUserDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_wallet_address_key"})

	err := s.CreateUser(context.Background(), &domain.User{WalletAddress: "w", Username: "carver_1000"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddPointsReturnsUser(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("UPDATE users").
		WithArgs("u1", int64(1200)).
		WillReturnRows(userRow(mock, "u1", 1200, 2))

	u, err := s.AddPoints(context.Background(), "u1", 1200)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), u.TotalPoints)
	assert.Equal(t, 2, u.Level)
	assert.Nil(t, u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateProfileMissingUser(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("UPDATE users").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateProfile(context.Background(), &domain.User{ID: "ghost", Username: "alice"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAtomicCommits(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO points_transactions").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.Atomic(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.CreateTransaction(ctx, &domain.PointsTransaction{
			UserID: "u1", Amount: 2, Type: domain.TxTypeChat, Description: "Chat message",
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAtomicRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("u1").WillReturnRows(userRow(mock, "u1", 0, 1))
	mock.ExpectRollback()

	stop := errors.New("already checked in")
	err := s.Atomic(context.Background(), func(ctx context.Context, tx Tx) error {
		if _, err := tx.LockUser(ctx, "u1"); err != nil {
			return err
		}
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListTransactions(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := mock.NewRows([]string{"id", "user_id", "amount", "type", "description", "metadata", "created_at"}).
		AddRow("t2", "u1", int64(2), "chat", "Chat message", map[string]interface{}{"messageCount": float64(1)}, at).
		AddRow("t1", "u1", int64(12), "daily_login", "Daily check-in (Day 1)", map[string]interface{}{"transactionSignature": "sig"}, at.Add(-time.Hour))
	mock.ExpectQuery("ORDER BY created_at DESC, seq DESC").WithArgs("u1", nil, 0).WillReturnRows(rows)

	txs, err := s.ListTransactions(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "chat", txs[0].Type)
	assert.Equal(t, "sig", txs[1].Metadata["transactionSignature"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListTransactionsPage(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("LIMIT \\$2 OFFSET \\$3").WithArgs("u1", 200, 400).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "amount", "type", "description", "metadata", "created_at"}))
	mock.ExpectQuery("SELECT COUNT").WithArgs("u1").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(330)))

	txs, err := s.ListTransactions(context.Background(), "u1", 200, 400)
	require.NoError(t, err)
	assert.Empty(t, txs)

	n, err := s.CountTransactions(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 330, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListChatMessagesOrder(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("ORDER BY timestamp DESC, seq DESC").WithArgs("u1", DefaultListLimit).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "role", "content", "timestamp"}))

	_, err := s.ListChatMessages(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRank(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("ROW_NUMBER").WithArgs("u1").
		WillReturnRows(mock.NewRows([]string{"rank"}).AddRow(int64(4)))

	rank, err := s.UserRank(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}
