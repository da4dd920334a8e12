package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/rewardsync/internal/database"
	apperrors "github.com/allisson/rewardsync/internal/errors"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

// AnswerReconciler applies a confirmed answer to history, the active session and the wallet.
// Each step checks before it writes, so applying the same mutation twice changes nothing.
type AnswerReconciler struct {
	txManager   database.TxManager
	historyRepo HistoryRepository
	sessionRepo SessionRepository
	walletRepo  WalletRepository
	logger      *slog.Logger
}

// NewAnswerReconciler creates a new AnswerReconciler.
func NewAnswerReconciler(
	txManager database.TxManager,
	historyRepo HistoryRepository,
	sessionRepo SessionRepository,
	walletRepo WalletRepository,
	logger *slog.Logger,
) *AnswerReconciler {
	return &AnswerReconciler{
		txManager:   txManager,
		historyRepo: historyRepo,
		sessionRepo: sessionRepo,
		walletRepo:  walletRepo,
		logger:      logger,
	}
}

// Reconcile applies result to the local state of the mutation owner.
func (r *AnswerReconciler) Reconcile(
	ctx context.Context,
	m *queueDomain.PendingMutation,
	result json.RawMessage,
) error {
	var payload queueDomain.AnswerPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return apperrors.Wrap(err, "failed to decode answer payload")
	}
	var answer queueDomain.AnswerResult
	if err := json.Unmarshal(result, &answer); err != nil {
		return apperrors.Wrap(err, "failed to decode answer result")
	}

	now := time.Now().UTC()
	outcome := rewardsDomain.OutcomeIncorrect
	if answer.Correct {
		outcome = rewardsDomain.OutcomeCorrect
	}

	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		err := appendHistory(ctx, r.historyRepo, &rewardsDomain.HistoryEntry{
			ID:          uuid.Must(uuid.NewV7()),
			UserID:      m.OwnerUserID,
			MutationID:  m.ID,
			Kind:        string(m.Kind),
			ReferenceID: payload.QuizID + "/" + payload.QuestionID,
			Outcome:     outcome,
			Points:      answer.PointsAwarded,
			RecordedAt:  now,
		})
		if err != nil {
			return err
		}

		if err := r.applyToSession(ctx, m, payload.SessionID, answer, now); err != nil {
			return err
		}

		if !answer.Correct {
			return nil
		}
		return creditWallet(ctx, r.walletRepo, m.OwnerUserID, m.ID, answer.PointsAwarded, now)
	})
}

func (r *AnswerReconciler) applyToSession(
	ctx context.Context,
	m *queueDomain.PendingMutation,
	rawSessionID string,
	answer queueDomain.AnswerResult,
	now time.Time,
) error {
	if rawSessionID == "" {
		return nil
	}
	sessionID, err := uuid.Parse(rawSessionID)
	if err != nil {
		r.logger.Warn("ignoring answer with malformed session id",
			slog.String("mutation_id", m.ID.String()),
			slog.String("session_id", rawSessionID),
		)
		return nil
	}

	session, err := r.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, rewardsDomain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if session.UserID != m.OwnerUserID || !session.IsActive() {
		return nil
	}

	applied, err := r.sessionRepo.HasAnswer(ctx, sessionID, m.ID)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	session.Apply(answer.Correct, answer.PointsAwarded)
	if err := r.sessionRepo.Update(ctx, session); err != nil {
		return err
	}
	return r.sessionRepo.RecordAnswer(ctx, sessionID, m.ID, now)
}

// UploadReconciler applies a registered upload to history and the wallet.
type UploadReconciler struct {
	txManager   database.TxManager
	historyRepo HistoryRepository
	walletRepo  WalletRepository
}

// NewUploadReconciler creates a new UploadReconciler.
func NewUploadReconciler(
	txManager database.TxManager,
	historyRepo HistoryRepository,
	walletRepo WalletRepository,
) *UploadReconciler {
	return &UploadReconciler{
		txManager:   txManager,
		historyRepo: historyRepo,
		walletRepo:  walletRepo,
	}
}

// Reconcile applies result to the local state of the mutation owner.
func (r *UploadReconciler) Reconcile(
	ctx context.Context,
	m *queueDomain.PendingMutation,
	result json.RawMessage,
) error {
	var payload queueDomain.UploadPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return apperrors.Wrap(err, "failed to decode upload payload")
	}
	var upload queueDomain.UploadResult
	if err := json.Unmarshal(result, &upload); err != nil {
		return apperrors.Wrap(err, "failed to decode upload result")
	}

	now := time.Now().UTC()

	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		err := appendHistory(ctx, r.historyRepo, &rewardsDomain.HistoryEntry{
			ID:          uuid.Must(uuid.NewV7()),
			UserID:      m.OwnerUserID,
			MutationID:  m.ID,
			Kind:        string(m.Kind),
			ReferenceID: payload.CampaignID + "/" + upload.MediaID,
			Outcome:     rewardsDomain.OutcomeUploaded,
			Points:      upload.RewardPoints,
			RecordedAt:  now,
		})
		if err != nil {
			return err
		}
		return creditWallet(ctx, r.walletRepo, m.OwnerUserID, m.ID, upload.RewardPoints, now)
	})
}

func appendHistory(ctx context.Context, repo HistoryRepository, entry *rewardsDomain.HistoryEntry) error {
	recorded, err := repo.ExistsByMutationID(ctx, entry.MutationID)
	if err != nil {
		return err
	}
	if recorded {
		return nil
	}
	return repo.Create(ctx, entry)
}

func creditWallet(
	ctx context.Context,
	repo WalletRepository,
	userID string,
	mutationID uuid.UUID,
	points int64,
	now time.Time,
) error {
	if points <= 0 {
		return nil
	}
	credited, err := repo.HasCredit(ctx, mutationID)
	if err != nil {
		return err
	}
	if credited {
		return nil
	}
	return repo.Credit(ctx, userID, mutationID, points, now)
}
