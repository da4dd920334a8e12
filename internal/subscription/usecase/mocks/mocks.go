// Package mocks provides mock implementations of subscription collaborators for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

// MockSourceClient is a mock implementation of usecase.SourceClient.
type MockSourceClient struct {
	mock.Mock
}

// GetPlatformSubscription mocks the GetPlatformSubscription method.
func (m *MockSourceClient) GetPlatformSubscription(
	ctx context.Context,
	userID string,
) (*subscriptionDomain.SourceStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriptionDomain.SourceStatus), args.Error(1)
}

// GetCarrierSubscription mocks the GetCarrierSubscription method.
func (m *MockSourceClient) GetCarrierSubscription(
	ctx context.Context,
	userID string,
) (*subscriptionDomain.SourceStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriptionDomain.SourceStatus), args.Error(1)
}

// MockStatusUseCase is a mock implementation of usecase.StatusUseCase.
type MockStatusUseCase struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockStatusUseCase) Get(ctx context.Context, userID string) (*subscriptionDomain.UnifiedStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriptionDomain.UnifiedStatus), args.Error(1)
}

// Invalidate mocks the Invalidate method.
func (m *MockStatusUseCase) Invalidate(userID string) {
	m.Called(userID)
}
