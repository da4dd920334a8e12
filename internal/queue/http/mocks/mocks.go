// Package mocks provides mock implementations for testing queue HTTP handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	queueUseCase "github.com/allisson/rewardsync/internal/queue/usecase"
)

// MockEnqueueUseCase is a mock implementation of EnqueueUseCase.
type MockEnqueueUseCase struct {
	mock.Mock
}

// EnqueueAnswer mocks the EnqueueAnswer method.
func (m *MockEnqueueUseCase) EnqueueAnswer(
	ctx context.Context,
	input *queueUseCase.AnswerInput,
) (*queueDomain.PendingMutation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queueDomain.PendingMutation), args.Error(1)
}

// EnqueueUpload mocks the EnqueueUpload method.
func (m *MockEnqueueUseCase) EnqueueUpload(
	ctx context.Context,
	input *queueUseCase.UploadInput,
) (*queueDomain.PendingMutation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queueDomain.PendingMutation), args.Error(1)
}

// List mocks the List method.
func (m *MockEnqueueUseCase) List(
	ctx context.Context,
	kind queueDomain.Kind,
) ([]*queueDomain.PendingMutation, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*queueDomain.PendingMutation), args.Error(1)
}

// Get mocks the Get method.
func (m *MockEnqueueUseCase) Get(
	ctx context.Context,
	kind queueDomain.Kind,
	id uuid.UUID,
) (*queueDomain.PendingMutation, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queueDomain.PendingMutation), args.Error(1)
}

// MockQueueRunner is a mock implementation of QueueRunner.
type MockQueueRunner struct {
	mock.Mock
}

// Run mocks the Run method.
func (m *MockQueueRunner) Run(ctx context.Context, kind queueDomain.Kind) error {
	args := m.Called(ctx, kind)
	return args.Error(0)
}
