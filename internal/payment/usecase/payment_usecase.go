package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/rewardsync/internal/errors"
	"github.com/allisson/rewardsync/internal/identity"
	"github.com/allisson/rewardsync/internal/notification"
	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
	customValidation "github.com/allisson/rewardsync/internal/validation"
)

const (
	// DefaultPollInterval is the delay between two status polls.
	DefaultPollInterval = 3 * time.Second

	// DefaultTimeout is the wall-clock limit of a pending attempt.
	DefaultTimeout = 5 * time.Minute
)

// Config holds the poller timings.
type Config struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

// ValidateInput checks if the initiate input is valid.
func ValidateInput(input *paymentDomain.InitiateInput) error {
	return validation.ValidateStruct(input,
		validation.Field(&input.Amount, validation.Required, validation.Min(int64(1))),
		validation.Field(&input.Method, validation.Required, validation.In(
			paymentDomain.MethodMobileMoney,
			paymentDomain.MethodCarrier,
		)),
		validation.Field(&input.MSISDN, validation.Required, customValidation.MSISDN),
		validation.Field(&input.PlanID, validation.Required, customValidation.NotBlank, validation.Length(1, 64)),
	)
}

type pollResult struct {
	status *paymentDomain.StatusResult
	err    error
}

// paymentUseCase implements PaymentUseCase. Attempts live in memory for the life of the process.
type paymentUseCase struct {
	gateway     Gateway
	identity    identity.Provider
	invalidator SubscriptionInvalidator
	notifier    notification.Sink
	config      Config
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	attempts map[string]*paymentDomain.Attempt
	pending  map[string]string
	keys     map[string]uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPaymentUseCase creates a new PaymentUseCase. Close stops every poller.
func NewPaymentUseCase(
	gateway Gateway,
	identityProvider identity.Provider,
	invalidator SubscriptionInvalidator,
	notifier notification.Sink,
	config Config,
	logger *slog.Logger,
) PaymentUseCase {
	return newPaymentUseCase(gateway, identityProvider, invalidator, notifier, config, logger)
}

func newPaymentUseCase(
	gateway Gateway,
	identityProvider identity.Provider,
	invalidator SubscriptionInvalidator,
	notifier notification.Sink,
	config Config,
	logger *slog.Logger,
) *paymentUseCase {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &paymentUseCase{
		gateway:     gateway,
		identity:    identityProvider,
		invalidator: invalidator,
		notifier:    notifier,
		config:      config,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		attempts:    make(map[string]*paymentDomain.Attempt),
		pending:     make(map[string]string),
		keys:        make(map[string]uuid.UUID),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Initiate starts a payment for the current user. The idempotency key is reused until an
// attempt settles, so retrying a failed initiation cannot charge twice.
func (p *paymentUseCase) Initiate(
	ctx context.Context,
	input *paymentDomain.InitiateInput,
) (*paymentDomain.Attempt, error) {
	if err := ValidateInput(input); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	userID := p.identity.CurrentUserID()
	if userID == "" {
		return nil, errors.ErrUnauthorized
	}

	p.mu.Lock()
	if _, ok := p.pending[userID]; ok {
		p.mu.Unlock()
		return nil, paymentDomain.ErrPaymentInProgress
	}
	key := p.keyFor(userID)
	// Reserve the slot so a concurrent Initiate is rejected while this one is in flight.
	p.pending[userID] = ""
	p.mu.Unlock()

	result, err := p.gateway.InitiatePayment(ctx, userID, &paymentDomain.InitiateRequest{
		IdempotencyKey: key,
		Amount:         input.Amount,
		Method:         input.Method,
		MSISDN:         input.MSISDN,
		PlanID:         input.PlanID,
	})
	if err != nil {
		p.mu.Lock()
		delete(p.pending, userID)
		if errors.Is(err, paymentDomain.ErrPaymentRejected) {
			p.keys[userID] = uuid.New()
		}
		p.mu.Unlock()
		return nil, err
	}

	startedAt := p.now()
	attempt := &paymentDomain.Attempt{
		PaymentID:      result.PaymentID,
		IdempotencyKey: key,
		UserID:         userID,
		State:          paymentDomain.StatePending,
		Amount:         input.Amount,
		Method:         input.Method,
		MSISDN:         input.MSISDN,
		PlanID:         input.PlanID,
		StartedAt:      startedAt,
		ExpiresAt:      startedAt.Add(p.config.Timeout),
	}

	p.mu.Lock()
	p.attempts[attempt.PaymentID] = attempt
	p.pending[userID] = attempt.PaymentID
	snapshot := *attempt
	p.mu.Unlock()

	p.logger.Info("payment initiated",
		slog.String("payment_id", attempt.PaymentID),
		slog.String("user_id", userID),
		slog.String("method", string(attempt.Method)),
	)

	p.wg.Add(1)
	go p.poll(attempt.PaymentID)

	return &snapshot, nil
}

// Get returns a snapshot of an attempt owned by the current user.
func (p *paymentUseCase) Get(_ context.Context, paymentID string) (*paymentDomain.Attempt, error) {
	userID := p.identity.CurrentUserID()

	p.mu.Lock()
	defer p.mu.Unlock()

	attempt, ok := p.attempts[paymentID]
	if !ok || attempt.UserID != userID {
		return nil, paymentDomain.ErrPaymentNotFound
	}
	snapshot := *attempt
	return &snapshot, nil
}

// Refresh re-checks an attempt through the backend. A pending attempt settles as usual;
// a settled attempt keeps its state and only the subscription cache is invalidated.
func (p *paymentUseCase) Refresh(ctx context.Context, paymentID string) (*paymentDomain.StatusResult, error) {
	attempt, err := p.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	status, err := p.gateway.GetPaymentStatus(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.settle(paymentID, status.State) {
		return status, nil
	}

	if status.State == paymentDomain.StateSuccessful && p.stateOf(paymentID) != paymentDomain.StateSuccessful {
		p.invalidator.Invalidate(attempt.UserID)
	}
	return status, nil
}

// Close stops all pollers and waits for them. In-flight polls are cancelled.
func (p *paymentUseCase) Close() {
	p.cancel()
	p.wg.Wait()
}

// poll ticks until the attempt settles, the timeout fires or the use case is closed.
// A request still in flight when the timeout fires is not cancelled; its answer is ignored.
func (p *paymentUseCase) poll(paymentID string) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()
	timer := time.NewTimer(p.config.Timeout)
	defer timer.Stop()

	results := make(chan pollResult, 1)
	inFlight := false

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-timer.C:
			p.settle(paymentID, paymentDomain.StateTimeout)
			return
		case <-ticker.C:
			if inFlight {
				continue
			}
			if !p.beginPoll(paymentID) {
				return
			}
			inFlight = true
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				status, err := p.gateway.GetPaymentStatus(p.ctx, paymentID)
				results <- pollResult{status: status, err: err}
			}()
		case result := <-results:
			inFlight = false
			if result.err != nil {
				p.logger.Warn("payment status poll failed",
					slog.String("payment_id", paymentID),
					slog.Any("error", result.err),
				)
				continue
			}
			if result.status.State.Terminal() {
				p.settle(paymentID, result.status.State)
				return
			}
		}
	}
}

// settle moves a pending attempt to a terminal state. It reports whether this call
// performed the transition; a late or repeated settlement is ignored.
func (p *paymentUseCase) settle(paymentID string, state paymentDomain.State) bool {
	p.mu.Lock()
	attempt, ok := p.attempts[paymentID]
	if !ok || !attempt.Settle(state, p.now()) {
		p.mu.Unlock()
		return false
	}
	userID := attempt.UserID
	if p.pending[userID] == paymentID {
		delete(p.pending, userID)
	}
	p.keys[userID] = uuid.New()
	p.mu.Unlock()

	p.logger.Info("payment settled",
		slog.String("payment_id", paymentID),
		slog.String("user_id", userID),
		slog.String("state", string(state)),
	)

	ctx := context.Background()
	switch state {
	case paymentDomain.StateSuccessful:
		p.invalidator.Invalidate(userID)
		p.notifier.Notify(ctx, "Payment successful. Premium is now active.", notification.SeveritySuccess)
	case paymentDomain.StateFailed:
		p.notifier.Notify(ctx, "Payment failed. Please try again.", notification.SeverityError)
	case paymentDomain.StateTimeout:
		p.notifier.Notify(
			ctx,
			"Payment is taking longer than expected. Check its status again later.",
			notification.SeverityInfo,
		)
	}
	return true
}

// beginPoll counts a poll. It reports false once the attempt left PENDING through another path.
func (p *paymentUseCase) beginPoll(paymentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	attempt, ok := p.attempts[paymentID]
	if !ok || attempt.State != paymentDomain.StatePending {
		return false
	}
	attempt.Polls++
	return true
}

func (p *paymentUseCase) stateOf(paymentID string) paymentDomain.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if attempt, ok := p.attempts[paymentID]; ok {
		return attempt.State
	}
	return paymentDomain.StateIdle
}

// keyFor returns the idempotency key of the user's next attempt. Callers hold p.mu.
func (p *paymentUseCase) keyFor(userID string) uuid.UUID {
	key, ok := p.keys[userID]
	if !ok {
		key = uuid.New()
		p.keys[userID] = key
	}
	return key
}
