// Package service provides the HTTP client for the rewards backend API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/allisson/rewardsync/internal/errors"
	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerUserID         = "X-User-ID"

	codeAlreadyApplied = "already_applied"
)

// Config holds backend client configuration.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// APIError is the error body returned by the backend.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MediaRegistration is the request to attach an uploaded object to a campaign.
type MediaRegistration struct {
	CampaignID      string `json:"campaign_id"`
	ObjectKey       string `json:"object_key"`
	ContentType     string `json:"content_type"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Client talks to the rewards backend. Requests are throttled by a token bucket and
// every error is classified for the queue processors.
type Client struct {
	http *resty.Client
}

// NewClient creates a new backend Client.
func NewClient(cfg Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})
	}

	return &Client{http: client}
}

// Ping checks the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	return classify(resp, err)
}

// SubmitAnswer submits a queued answer. The mutation id is the idempotency key.
func (c *Client) SubmitAnswer(
	ctx context.Context,
	m *queueDomain.PendingMutation,
	payload *queueDomain.AnswerPayload,
) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerIdempotencyKey, m.ID.String()).
		SetHeader(headerUserID, m.OwnerUserID).
		SetBody(payload).
		SetError(&APIError{}).
		Post("/v1/quiz/answers")
	if err := classify(resp, err); err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// RegisterMedia attaches an uploaded object to a campaign. The mutation id is the idempotency key.
func (c *Client) RegisterMedia(
	ctx context.Context,
	m *queueDomain.PendingMutation,
	registration *MediaRegistration,
) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerIdempotencyKey, m.ID.String()).
		SetHeader(headerUserID, m.OwnerUserID).
		SetBody(registration).
		SetError(&APIError{}).
		Post("/v1/media")
	if err := classify(resp, err); err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// InitiatePayment starts a payment.
func (c *Client) InitiatePayment(
	ctx context.Context,
	userID string,
	req *paymentDomain.InitiateRequest,
) (*paymentDomain.InitiateResult, error) {
	body := map[string]any{
		"amount":  req.Amount,
		"method":  req.Method,
		"msisdn":  req.MSISDN,
		"plan_id": req.PlanID,
	}

	var result paymentDomain.InitiateResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerIdempotencyKey, req.IdempotencyKey.String()).
		SetHeader(headerUserID, userID).
		SetBody(body).
		SetResult(&result).
		SetError(&APIError{}).
		Post("/v1/payments")
	if err := classify(resp, err); err != nil {
		if errors.Is(err, queueDomain.ErrNonRetryable) {
			return nil, errors.Wrap(paymentDomain.ErrPaymentRejected, err.Error())
		}
		return nil, err
	}
	return &result, nil
}

// GetPaymentStatus polls a payment.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*paymentDomain.StatusResult, error) {
	var result paymentDomain.StatusResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", paymentID).
		SetResult(&result).
		SetError(&APIError{}).
		Get("/v1/payments/{id}")
	if err := classify(resp, err); err != nil {
		if errors.Is(err, queueDomain.ErrNonRetryable) && resp != nil && resp.StatusCode() == http.StatusNotFound {
			return nil, paymentDomain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &result, nil
}

// GetPlatformSubscription returns the platform billing status of userID.
func (c *Client) GetPlatformSubscription(
	ctx context.Context,
	userID string,
) (*subscriptionDomain.SourceStatus, error) {
	return c.getSubscription(ctx, "/v1/subscriptions/platform", userID)
}

// GetCarrierSubscription returns the carrier billing status of userID.
func (c *Client) GetCarrierSubscription(
	ctx context.Context,
	userID string,
) (*subscriptionDomain.SourceStatus, error) {
	return c.getSubscription(ctx, "/v1/subscriptions/carrier", userID)
}

func (c *Client) getSubscription(
	ctx context.Context,
	path, userID string,
) (*subscriptionDomain.SourceStatus, error) {
	var status subscriptionDomain.SourceStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerUserID, userID).
		SetResult(&status).
		SetError(&APIError{}).
		Get(path)
	if err := classify(resp, err); err != nil {
		return nil, errors.Wrap(subscriptionDomain.ErrSourceUnavailable, err.Error())
	}
	return &status, nil
}

// classify maps transport failures and backend status codes onto the queue error taxonomy.
func classify(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	if !resp.IsError() {
		return nil
	}

	status := resp.StatusCode()
	apiErr, _ := resp.Error().(*APIError)
	detail := fmt.Sprintf("backend returned %d", status)
	if apiErr != nil && apiErr.Message != "" {
		detail = fmt.Sprintf("%s: %s", detail, apiErr.Message)
	}

	switch {
	case status == http.StatusConflict && apiErr != nil && apiErr.Code == codeAlreadyApplied:
		return errors.Wrap(queueDomain.ErrAlreadyApplied, detail)
	case status == http.StatusBadRequest, status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		return errors.Wrap(queueDomain.ErrNonRetryable, detail)
	default:
		return errors.Wrap(errors.ErrUnavailable, detail)
	}
}
