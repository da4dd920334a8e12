package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLocked = errors.New("database is locked")

func newTestTxManager(t *testing.T) (*sqlTxManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &sqlTxManager{
		db:        db,
		attempts:  3,
		backoff:   time.Millisecond,
		retryable: func(err error) bool { return errors.Is(err, errLocked) },
	}, mock
}

func TestNewTxManager(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	m, ok := NewTxManager(db).(*sqlTxManager)
	require.True(t, ok)
	assert.Equal(t, defaultBusyAttempts, m.attempts)
	assert.False(t, m.retryable(errLocked), "only sqlite busy errors are retried by default")
}

func TestWithTx_CommitsAndExposesTx(t *testing.T) {
	m, mock := newTestTxManager(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(ctx context.Context) error {
		querier := GetTx(ctx, m.db)
		assert.IsType(t, &sql.Tx{}, querier)
		_, err := querier.ExecContext(ctx, "UPDATE wallets SET balance = balance + 10")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	m, mock := newTestTxManager(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := m.WithTx(context.Background(), func(ctx context.Context) error { return assert.AnError })

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	m, mock := newTestTxManager(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "credit overflow", func() {
		_ = m.WithTx(context.Background(), func(ctx context.Context) error { panic("credit overflow") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	m, mock := newTestTxManager(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(outer context.Context) error {
		return m.WithTx(outer, func(inner context.Context) error {
			assert.Same(t, outer.Value(txKey{}), inner.Value(txKey{}))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RetriesWhileLocked(t *testing.T) {
	m, mock := newTestTxManager(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := m.WithTx(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errLocked
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_GivesUpAfterAttempts(t *testing.T) {
	m, mock := newTestTxManager(t)
	for range m.attempts {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	calls := 0
	err := m.WithTx(context.Background(), func(ctx context.Context) error {
		calls++
		return errLocked
	})

	assert.ErrorIs(t, err, errLocked)
	assert.Equal(t, m.attempts, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_NestedLockIsNotRetriedInside(t *testing.T) {
	m, mock := newTestTxManager(t)
	m.attempts = 1
	mock.ExpectBegin()
	mock.ExpectRollback()

	inner := 0
	err := m.WithTx(context.Background(), func(ctx context.Context) error {
		return m.WithTx(ctx, func(ctx context.Context) error {
			inner++
			return errLocked
		})
	})

	assert.ErrorIs(t, err, errLocked)
	assert.Equal(t, 1, inner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginFails(t *testing.T) {
	m, mock := newTestTxManager(t)
	mock.ExpectBegin().WillReturnError(assert.AnError)

	err := m.WithTx(context.Background(), func(ctx context.Context) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestGetTx_OutsideTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	assert.Equal(t, db, GetTx(context.Background(), db))
}
