package domain

import (
	"github.com/allisson/rewardsync/internal/errors"
)

// Rewards-specific error definitions.
var (
	// ErrSessionNotFound indicates the quiz session does not exist or belongs to another user.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "quiz session not found")

	// ErrSessionNotActive indicates the session was already completed.
	ErrSessionNotActive = errors.Wrap(errors.ErrConflict, "quiz session is not active")

	// ErrSessionAlreadyActive indicates the user already has an active session for the quiz.
	ErrSessionAlreadyActive = errors.Wrap(errors.ErrConflict, "quiz session already active")

	// ErrWalletNotFound indicates no wallet row exists for the user yet.
	ErrWalletNotFound = errors.Wrap(errors.ErrNotFound, "wallet not found")
)
