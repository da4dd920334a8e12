// Package usecase applies confirmed remote outcomes to the locally derived rewards state
// and exposes read access to it.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

// HistoryRepository persists the immutable history ledger.
type HistoryRepository interface {
	Create(ctx context.Context, entry *rewardsDomain.HistoryEntry) error
	ExistsByMutationID(ctx context.Context, mutationID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID string, q rewardsDomain.HistoryQuery) ([]*rewardsDomain.HistoryEntry, error)
}

// SessionRepository persists quiz sessions and the answers applied to them.
type SessionRepository interface {
	Create(ctx context.Context, s *rewardsDomain.QuizSession) error
	Get(ctx context.Context, id uuid.UUID) (*rewardsDomain.QuizSession, error)
	GetActiveByQuiz(ctx context.Context, userID, quizID string) (*rewardsDomain.QuizSession, error)
	Update(ctx context.Context, s *rewardsDomain.QuizSession) error
	HasAnswer(ctx context.Context, sessionID, mutationID uuid.UUID) (bool, error)
	RecordAnswer(ctx context.Context, sessionID, mutationID uuid.UUID, recordedAt time.Time) error
}

// WalletRepository persists balances and the credits that produced them.
type WalletRepository interface {
	Get(ctx context.Context, userID string) (*rewardsDomain.Wallet, error)
	HasCredit(ctx context.Context, mutationID uuid.UUID) (bool, error)
	Credit(ctx context.Context, userID string, mutationID uuid.UUID, amount int64, at time.Time) error
}

// SessionUseCase manages the quiz session lifecycle.
type SessionUseCase interface {
	// Start opens a session for quizID. Returns ErrSessionAlreadyActive if one is already open.
	Start(ctx context.Context, userID, quizID string) (*rewardsDomain.QuizSession, error)

	// Complete closes an active session owned by userID.
	Complete(ctx context.Context, userID string, sessionID uuid.UUID) (*rewardsDomain.QuizSession, error)

	// Get returns a session owned by userID.
	Get(ctx context.Context, userID string, sessionID uuid.UUID) (*rewardsDomain.QuizSession, error)
}

// WalletUseCase reads the wallet and the history ledger.
type WalletUseCase interface {
	// Balance returns the user's wallet. A user with no credits has a zero balance.
	Balance(ctx context.Context, userID string) (*rewardsDomain.Wallet, error)

	// History returns the user's history ledger, newest first.
	History(ctx context.Context, userID string, q rewardsDomain.HistoryQuery) ([]*rewardsDomain.HistoryEntry, error)
}
