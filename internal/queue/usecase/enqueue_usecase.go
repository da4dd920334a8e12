package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/rewardsync/internal/errors"
	"github.com/allisson/rewardsync/internal/identity"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	customValidation "github.com/allisson/rewardsync/internal/validation"
)

// Validate checks if the answer input is valid.
func (i *AnswerInput) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.QuizID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&i.QuestionID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&i.SessionID, customValidation.UUID),
		validation.Field(&i.SelectedOption, validation.Required, customValidation.NotBlank, validation.Length(1, 64)),
	)
}

// Validate checks if the upload input is valid.
func (i *UploadInput) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.CampaignID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&i.LocalPath, validation.Required, customValidation.NotBlank),
		validation.Field(&i.ContentType, validation.Required, customValidation.MediaType),
		validation.Field(&i.DurationSeconds, validation.Min(0)),
	)
}

type enqueueUseCase struct {
	store    *QueueService
	identity identity.Provider
}

// NewEnqueueUseCase creates a new EnqueueUseCase. Processors are kicked by the scheduler
// through the store subscription, so enqueueing never blocks on the network.
func NewEnqueueUseCase(store *QueueService, identityProvider identity.Provider) EnqueueUseCase {
	return &enqueueUseCase{
		store:    store,
		identity: identityProvider,
	}
}

// EnqueueAnswer queues an answer owned by the current user.
func (e *enqueueUseCase) EnqueueAnswer(
	ctx context.Context,
	input *AnswerInput,
) (*queueDomain.PendingMutation, error) {
	if err := input.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	return e.enqueue(ctx, queueDomain.KindAnswerSubmission, queueDomain.AnswerPayload{
		QuizID:         input.QuizID,
		QuestionID:     input.QuestionID,
		SessionID:      input.SessionID,
		SelectedOption: input.SelectedOption,
		AnsweredAt:     time.Now().UTC(),
	})
}

// EnqueueUpload queues an upload owned by the current user.
func (e *enqueueUseCase) EnqueueUpload(
	ctx context.Context,
	input *UploadInput,
) (*queueDomain.PendingMutation, error) {
	if err := input.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	return e.enqueue(ctx, queueDomain.KindMediaUpload, queueDomain.UploadPayload{
		CampaignID:      input.CampaignID,
		LocalPath:       input.LocalPath,
		ContentType:     input.ContentType,
		DurationSeconds: input.DurationSeconds,
	})
}

// List returns the current user's pending mutations of kind.
func (e *enqueueUseCase) List(
	ctx context.Context,
	kind queueDomain.Kind,
) ([]*queueDomain.PendingMutation, error) {
	if !kind.Valid() {
		return nil, queueDomain.ErrUnknownKind
	}
	userID := e.identity.CurrentUserID()
	if userID == "" {
		return nil, queueDomain.ErrNoIdentity
	}

	all, err := e.store.GetAll(ctx, kind)
	if err != nil {
		return nil, err
	}

	owned := make([]*queueDomain.PendingMutation, 0, len(all))
	for _, m := range all {
		if m.OwnedBy(userID) {
			owned = append(owned, m)
		}
	}
	return owned, nil
}

// Get returns one of the current user's pending mutations of kind.
func (e *enqueueUseCase) Get(
	ctx context.Context,
	kind queueDomain.Kind,
	id uuid.UUID,
) (*queueDomain.PendingMutation, error) {
	if !kind.Valid() {
		return nil, queueDomain.ErrUnknownKind
	}
	userID := e.identity.CurrentUserID()
	if userID == "" {
		return nil, queueDomain.ErrNoIdentity
	}

	m, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Kind != kind || !m.OwnedBy(userID) {
		return nil, queueDomain.ErrMutationNotFound
	}
	return m, nil
}

func (e *enqueueUseCase) enqueue(
	ctx context.Context,
	kind queueDomain.Kind,
	payload any,
) (*queueDomain.PendingMutation, error) {
	userID := e.identity.CurrentUserID()
	if userID == "" {
		return nil, queueDomain.ErrNoIdentity
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}

	m := queueDomain.NewPendingMutation(kind, userID, body)
	if err := e.store.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
