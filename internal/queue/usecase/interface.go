// Package usecase implements the offline mutation queue: the persisted store, the per-kind
// processors that drain it, the enqueue operations and the triggers that start runs.
package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// PendingMutationRepository persists pending mutations.
// Implementations must support transaction-aware operations via context propagation.
type PendingMutationRepository interface {
	Create(ctx context.Context, m *queueDomain.PendingMutation) error
	Get(ctx context.Context, id uuid.UUID) (*queueDomain.PendingMutation, error)

	// ListByKind returns mutations of kind ordered by creation time, then id.
	ListByKind(ctx context.Context, kind queueDomain.Kind) ([]*queueDomain.PendingMutation, error)

	// Update persists RetryCount, LastError and UpdatedAt. It never changes the owner.
	Update(ctx context.Context, m *queueDomain.PendingMutation) error

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerUserID string) (int64, error)
}

// Store is the persisted queue as seen by processors and enqueue operations.
type Store interface {
	// GetAll returns a snapshot of every mutation of kind in FIFO order, payloads in plaintext.
	GetAll(ctx context.Context, kind queueDomain.Kind) ([]*queueDomain.PendingMutation, error)

	// Put stores a new mutation.
	Put(ctx context.Context, m *queueDomain.PendingMutation) error

	// Save persists retry bookkeeping of an existing mutation.
	Save(ctx context.Context, m *queueDomain.PendingMutation) error

	// Remove deletes a mutation. Removing a missing id is not an error.
	Remove(ctx context.Context, m *queueDomain.PendingMutation) error
}

// Submitter performs the kind-specific remote operation for one mutation.
// It must be safe to call more than once for the same mutation; the mutation id is the idempotency key.
//
// Errors wrapping queueDomain.ErrAlreadyApplied mean an earlier attempt already took effect.
// Errors wrapping queueDomain.ErrNonRetryable mean the backend rejected the payload itself.
// Any other error is transient.
type Submitter interface {
	Submit(ctx context.Context, m *queueDomain.PendingMutation) (json.RawMessage, error)
}

// Reconciler applies a confirmed remote result to local derived state.
// Applying the same mutation twice must leave the same observable state as applying it once.
type Reconciler interface {
	Reconcile(ctx context.Context, m *queueDomain.PendingMutation, result json.RawMessage) error
}

// QueueProcessor drains the store for one kind.
type QueueProcessor interface {
	Kind() queueDomain.Kind

	// ProcessQueue runs the processor. Calls that overlap a run in progress join it.
	// Outcomes surface through notifications only.
	ProcessQueue(ctx context.Context)
}

// AnswerInput is the request to submit a quiz answer.
type AnswerInput struct {
	QuizID         string
	QuestionID     string
	SessionID      string
	SelectedOption string
}

// UploadInput is the request to upload a recorded clip.
type UploadInput struct {
	CampaignID      string
	LocalPath       string
	ContentType     string
	DurationSeconds int
}

// EnqueueUseCase records user mutations in the queue.
type EnqueueUseCase interface {
	// EnqueueAnswer queues an answer owned by the current user and kicks the answer processor when online.
	EnqueueAnswer(ctx context.Context, input *AnswerInput) (*queueDomain.PendingMutation, error)

	// EnqueueUpload queues an upload owned by the current user and kicks the upload processor when online.
	EnqueueUpload(ctx context.Context, input *UploadInput) (*queueDomain.PendingMutation, error)

	// List returns the current user's pending mutations of kind.
	List(ctx context.Context, kind queueDomain.Kind) ([]*queueDomain.PendingMutation, error)

	// Get returns one of the current user's pending mutations of kind. A mutation that was
	// already settled, belongs to another kind or to another user is reported as not found.
	Get(ctx context.Context, kind queueDomain.Kind, id uuid.UUID) (*queueDomain.PendingMutation, error)
}
