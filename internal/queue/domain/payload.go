package domain

import "time"

// AnswerPayload is the body of an ANSWER_SUBMISSION mutation.
type AnswerPayload struct {
	QuizID         string    `json:"quiz_id"`
	QuestionID     string    `json:"question_id"`
	SessionID      string    `json:"session_id,omitempty"`
	SelectedOption string    `json:"selected_option"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// AnswerResult is the backend verdict for a submitted answer.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	PointsAwarded int64  `json:"points_awarded"`
	CorrectOption string `json:"correct_option"`
}

// UploadPayload is the body of a MEDIA_UPLOAD mutation.
type UploadPayload struct {
	CampaignID      string `json:"campaign_id"`
	LocalPath       string `json:"local_path"`
	ContentType     string `json:"content_type"`
	DurationSeconds int    `json:"duration_seconds"`
}

// UploadResult is the backend receipt for a registered upload.
type UploadResult struct {
	MediaID      string `json:"media_id"`
	ObjectKey    string `json:"object_key"`
	RewardPoints int64  `json:"reward_points"`
}
