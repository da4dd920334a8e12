// Package mocks provides mock implementations of payment use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
)

// MockPaymentUseCase is a mock implementation of usecase.PaymentUseCase.
type MockPaymentUseCase struct {
	mock.Mock
}

// Initiate mocks the Initiate method.
func (m *MockPaymentUseCase) Initiate(
	ctx context.Context,
	input *paymentDomain.InitiateInput,
) (*paymentDomain.Attempt, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.Attempt), args.Error(1)
}

// Get mocks the Get method.
func (m *MockPaymentUseCase) Get(ctx context.Context, paymentID string) (*paymentDomain.Attempt, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.Attempt), args.Error(1)
}

// Refresh mocks the Refresh method.
func (m *MockPaymentUseCase) Refresh(ctx context.Context, paymentID string) (*paymentDomain.StatusResult, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.StatusResult), args.Error(1)
}

// Close mocks the Close method.
func (m *MockPaymentUseCase) Close() {
	m.Called()
}
