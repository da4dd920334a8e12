// Package service provides the kind-specific submitters the queue processors call.
package service

import (
	"context"
	"encoding/json"

	"github.com/allisson/rewardsync/internal/errors"
	mediaService "github.com/allisson/rewardsync/internal/media/service"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	remoteService "github.com/allisson/rewardsync/internal/remote/service"
)

// AnswerAPI submits answers to the backend.
type AnswerAPI interface {
	SubmitAnswer(
		ctx context.Context,
		m *queueDomain.PendingMutation,
		payload *queueDomain.AnswerPayload,
	) (json.RawMessage, error)
}

// MediaAPI registers uploaded media with the backend.
type MediaAPI interface {
	RegisterMedia(
		ctx context.Context,
		m *queueDomain.PendingMutation,
		registration *remoteService.MediaRegistration,
	) (json.RawMessage, error)
}

// ObjectStorage stores upload files.
type ObjectStorage interface {
	Upload(ctx context.Context, key, localPath, contentType string) error
}

// AnswerSubmitter submits ANSWER_SUBMISSION mutations.
type AnswerSubmitter struct {
	api AnswerAPI
}

// NewAnswerSubmitter creates a new AnswerSubmitter.
func NewAnswerSubmitter(api AnswerAPI) *AnswerSubmitter {
	return &AnswerSubmitter{api: api}
}

// Submit decodes the answer payload and posts it.
func (s *AnswerSubmitter) Submit(ctx context.Context, m *queueDomain.PendingMutation) (json.RawMessage, error) {
	var payload queueDomain.AnswerPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, errors.Wrap(queueDomain.ErrNonRetryable, "malformed answer payload")
	}
	return s.api.SubmitAnswer(ctx, m, &payload)
}

// UploadSubmitter submits MEDIA_UPLOAD mutations: the file goes to the bucket first and
// is then registered with the backend under the same deterministic key.
type UploadSubmitter struct {
	storage ObjectStorage
	api     MediaAPI
}

// NewUploadSubmitter creates a new UploadSubmitter.
func NewUploadSubmitter(storage ObjectStorage, api MediaAPI) *UploadSubmitter {
	return &UploadSubmitter{storage: storage, api: api}
}

// Submit uploads the file and registers it.
func (s *UploadSubmitter) Submit(ctx context.Context, m *queueDomain.PendingMutation) (json.RawMessage, error) {
	var payload queueDomain.UploadPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, errors.Wrap(queueDomain.ErrNonRetryable, "malformed upload payload")
	}

	key := mediaService.ObjectKey(m.OwnerUserID, m.ID.String(), payload.LocalPath)
	if err := s.storage.Upload(ctx, key, payload.LocalPath, payload.ContentType); err != nil {
		if errors.Is(err, mediaService.ErrMediaFileMissing) {
			return nil, errors.Wrap(queueDomain.ErrNonRetryable, err.Error())
		}
		return nil, err
	}

	return s.api.RegisterMedia(ctx, m, &remoteService.MediaRegistration{
		CampaignID:      payload.CampaignID,
		ObjectKey:       key,
		ContentType:     payload.ContentType,
		DurationSeconds: payload.DurationSeconds,
	})
}
