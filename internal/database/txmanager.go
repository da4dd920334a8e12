// Package database provides database connection management and utilities.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type txKey struct{}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a unit of work inside one transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	defaultBusyAttempts = 3
	defaultBusyBackoff  = 25 * time.Millisecond
)

type sqlTxManager struct {
	db        *sql.DB
	attempts  int
	backoff   time.Duration
	retryable func(error) bool
}

// NewTxManager creates a TxManager over db. When the local SQLite file is
// locked by another writer the whole transaction is retried a few times, so
// fn must not have effects outside the database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{
		db:        db,
		attempts:  defaultBusyAttempts,
		backoff:   defaultBusyBackoff,
		retryable: isSQLiteBusy,
	}
}

// WithTx runs fn in a transaction carried by the context. Calls nested inside
// fn join the outer transaction and are neither retried nor committed on their
// own.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || attempt >= m.attempts || !m.retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * m.backoff):
		}
	}
}

func (m *sqlTxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// GetTx returns the transaction carried by ctx, or db outside of WithTx.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
