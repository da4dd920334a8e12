// Package mocks provides mock implementations of database abstractions for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a mock implementation of database.TxManager.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method of TxManager.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// PassthroughTxManager runs fn directly. Use it when a test does not care about transaction boundaries.
type PassthroughTxManager struct{}

// WithTx calls fn with ctx unchanged.
func (PassthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
