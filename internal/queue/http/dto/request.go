// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	queueUseCase "github.com/allisson/rewardsync/internal/queue/usecase"
)

// EnqueueAnswerRequest contains a quiz answer to submit.
type EnqueueAnswerRequest struct {
	QuizID         string `json:"quiz_id"`
	QuestionID     string `json:"question_id"`
	SessionID      string `json:"session_id"`
	SelectedOption string `json:"selected_option"`
}

// ToInput maps the request to the use case input.
func (r *EnqueueAnswerRequest) ToInput() *queueUseCase.AnswerInput {
	return &queueUseCase.AnswerInput{
		QuizID:         r.QuizID,
		QuestionID:     r.QuestionID,
		SessionID:      r.SessionID,
		SelectedOption: r.SelectedOption,
	}
}

// EnqueueUploadRequest contains a recorded clip to upload.
type EnqueueUploadRequest struct {
	CampaignID      string `json:"campaign_id"`
	LocalPath       string `json:"local_path"`
	ContentType     string `json:"content_type"`
	DurationSeconds int    `json:"duration_seconds"`
}

// ToInput maps the request to the use case input.
func (r *EnqueueUploadRequest) ToInput() *queueUseCase.UploadInput {
	return &queueUseCase.UploadInput{
		CampaignID:      r.CampaignID,
		LocalPath:       r.LocalPath,
		ContentType:     r.ContentType,
		DurationSeconds: r.DurationSeconds,
	}
}
