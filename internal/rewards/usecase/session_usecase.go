package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/database"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

type sessionUseCase struct {
	txManager   database.TxManager
	sessionRepo SessionRepository
}

// NewSessionUseCase creates a new SessionUseCase.
func NewSessionUseCase(txManager database.TxManager, sessionRepo SessionRepository) SessionUseCase {
	return &sessionUseCase{
		txManager:   txManager,
		sessionRepo: sessionRepo,
	}
}

// Start opens a session for quizID.
func (s *sessionUseCase) Start(ctx context.Context, userID, quizID string) (*rewardsDomain.QuizSession, error) {
	var session *rewardsDomain.QuizSession

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.sessionRepo.GetActiveByQuiz(ctx, userID, quizID)
		if err == nil {
			return rewardsDomain.ErrSessionAlreadyActive
		}
		if !errors.Is(err, rewardsDomain.ErrSessionNotFound) {
			return err
		}

		session = rewardsDomain.NewQuizSession(userID, quizID)
		return s.sessionRepo.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Complete closes an active session owned by userID.
func (s *sessionUseCase) Complete(
	ctx context.Context,
	userID string,
	sessionID uuid.UUID,
) (*rewardsDomain.QuizSession, error) {
	var session *rewardsDomain.QuizSession

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.getOwned(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if !session.IsActive() {
			return rewardsDomain.ErrSessionNotActive
		}

		session.Complete(time.Now().UTC())
		return s.sessionRepo.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns a session owned by userID.
func (s *sessionUseCase) Get(
	ctx context.Context,
	userID string,
	sessionID uuid.UUID,
) (*rewardsDomain.QuizSession, error) {
	return s.getOwned(ctx, userID, sessionID)
}

// getOwned hides sessions of other users behind ErrSessionNotFound.
func (s *sessionUseCase) getOwned(
	ctx context.Context,
	userID string,
	sessionID uuid.UUID,
) (*rewardsDomain.QuizSession, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, rewardsDomain.ErrSessionNotFound
	}
	return session, nil
}
