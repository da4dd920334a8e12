// Package mocks provides mock implementations of rewards use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

// MockSessionUseCase is a mock implementation of usecase.SessionUseCase.
type MockSessionUseCase struct {
	mock.Mock
}

// Start mocks the Start method.
func (m *MockSessionUseCase) Start(ctx context.Context, userID, quizID string) (*rewardsDomain.QuizSession, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rewardsDomain.QuizSession), args.Error(1)
}

// Complete mocks the Complete method.
func (m *MockSessionUseCase) Complete(
	ctx context.Context,
	userID string,
	sessionID uuid.UUID,
) (*rewardsDomain.QuizSession, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rewardsDomain.QuizSession), args.Error(1)
}

// Get mocks the Get method.
func (m *MockSessionUseCase) Get(
	ctx context.Context,
	userID string,
	sessionID uuid.UUID,
) (*rewardsDomain.QuizSession, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rewardsDomain.QuizSession), args.Error(1)
}

// MockWalletUseCase is a mock implementation of usecase.WalletUseCase.
type MockWalletUseCase struct {
	mock.Mock
}

// Balance mocks the Balance method.
func (m *MockWalletUseCase) Balance(ctx context.Context, userID string) (*rewardsDomain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rewardsDomain.Wallet), args.Error(1)
}

// History mocks the History method.
func (m *MockWalletUseCase) History(
	ctx context.Context,
	userID string,
	q rewardsDomain.HistoryQuery,
) ([]*rewardsDomain.HistoryEntry, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rewardsDomain.HistoryEntry), args.Error(1)
}
