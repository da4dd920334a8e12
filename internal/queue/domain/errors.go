package domain

import (
	"github.com/allisson/rewardsync/internal/errors"
)

// Queue-specific error definitions.
var (
	// ErrAlreadyApplied signals the backend already applied this mutation on an earlier,
	// unacknowledged attempt.
	ErrAlreadyApplied = errors.Wrap(errors.ErrConflict, "mutation already applied")

	// ErrNonRetryable signals the backend rejected the payload itself; retrying cannot succeed.
	ErrNonRetryable = errors.Wrap(errors.ErrInvalidInput, "mutation rejected")

	// ErrMutationNotFound indicates the pending mutation does not exist.
	ErrMutationNotFound = errors.Wrap(errors.ErrNotFound, "pending mutation not found")

	// ErrNoIdentity indicates a mutation was enqueued while signed out.
	ErrNoIdentity = errors.Wrap(errors.ErrUnauthorized, "no authenticated user")

	// ErrUnknownKind indicates a kind with no registered processor.
	ErrUnknownKind = errors.Wrap(errors.ErrInvalidInput, "unknown mutation kind")
)
