// Package mocks provides mock implementations of queue collaborators for testing.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// MockSubmitter is a mock implementation of usecase.Submitter.
type MockSubmitter struct {
	mock.Mock
}

// Submit mocks the Submit method.
func (m *MockSubmitter) Submit(ctx context.Context, mutation *queueDomain.PendingMutation) (json.RawMessage, error) {
	args := m.Called(ctx, mutation)
	var result json.RawMessage
	if raw := args.Get(0); raw != nil {
		result = raw.(json.RawMessage)
	}
	return result, args.Error(1)
}

// MockReconciler is a mock implementation of usecase.Reconciler.
type MockReconciler struct {
	mock.Mock
}

// Reconcile mocks the Reconcile method.
func (m *MockReconciler) Reconcile(
	ctx context.Context,
	mutation *queueDomain.PendingMutation,
	result json.RawMessage,
) error {
	args := m.Called(ctx, mutation, result)
	return args.Error(0)
}

// MockQueueProcessor is a mock implementation of usecase.QueueProcessor.
type MockQueueProcessor struct {
	mock.Mock
}

// Kind mocks the Kind method.
func (m *MockQueueProcessor) Kind() queueDomain.Kind {
	args := m.Called()
	return args.Get(0).(queueDomain.Kind)
}

// ProcessQueue mocks the ProcessQueue method.
func (m *MockQueueProcessor) ProcessQueue(ctx context.Context) {
	m.Called(ctx)
}
