package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/rewardsync/internal/errors"
	"github.com/allisson/rewardsync/internal/identity"
	"github.com/allisson/rewardsync/internal/metrics"
	"github.com/allisson/rewardsync/internal/notification"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// Outcome labels recorded per mutation.
const (
	outcomeSubmitted      = "submitted"
	outcomeAlreadyApplied = "already_applied"
	outcomeRejected       = "rejected"
	outcomeRetried        = "retried"
	outcomeExhausted      = "exhausted"
	outcomePurged         = "purged"
	outcomeSkipped        = "skipped"
)

// ProcessorConfig holds the collaborators of one processor.
type ProcessorConfig struct {
	Kind       queueDomain.Kind
	Store      Store
	Identity   identity.Provider
	Submitter  Submitter
	Reconciler Reconciler
	Notifier   notification.Sink
	Metrics    metrics.BusinessMetrics
	MaxRetries int
	Logger     *slog.Logger
}

// Processor drains the pending mutations of one kind. Runs are single-flight: a call made
// while a run is in progress waits for that run, and all such calls share one follow-up
// pass over a fresh snapshot once it ends.
type Processor struct {
	kind       queueDomain.Kind
	store      Store
	identity   identity.Provider
	submitter  Submitter
	reconciler Reconciler
	notifier   notification.Sink
	metrics    metrics.BusinessMetrics
	maxRetries int
	logger     *slog.Logger

	runs      singleflight.Group
	requested atomic.Bool
	mu        sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewProcessor creates a new Processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = queueDomain.DefaultMaxRetries
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoOpBusinessMetrics()
	}

	return &Processor{
		kind:       cfg.Kind,
		store:      cfg.Store,
		identity:   cfg.Identity,
		submitter:  cfg.Submitter,
		reconciler: cfg.Reconciler,
		notifier:   cfg.Notifier,
		metrics:    m,
		maxRetries: maxRetries,
		logger:     cfg.Logger.With(slog.String("kind", string(cfg.Kind))),
		inFlight:   make(map[uuid.UUID]struct{}),
	}
}

// Kind returns the mutation kind this processor owns.
func (p *Processor) Kind() queueDomain.Kind {
	return p.kind
}

// ProcessQueue runs the processor, or joins the run already in progress and asks for one
// more pass after it. Runs are detached from ctx cancellation so they always drain their
// snapshot.
func (p *Processor) ProcessQueue(ctx context.Context) {
	runCtx := context.WithoutCancel(ctx)
	p.requested.Store(true)
	// A request made after the leader's last check but before it returned is picked up here.
	for p.requested.Load() {
		_, _, _ = p.runs.Do(string(p.kind), func() (any, error) {
			for p.requested.Swap(false) {
				p.run(runCtx)
			}
			return nil, nil
		})
	}
}

func (p *Processor) run(ctx context.Context) {
	// Signed out: keep everything for whoever signs in next.
	if p.identity.CurrentUserID() == "" {
		p.logger.Debug("no user signed in, leaving pending mutations queued")
		return
	}

	snapshot, err := p.store.GetAll(ctx, p.kind)
	if err != nil {
		p.logger.Error("failed to read pending mutations", slog.Any("error", err))
		return
	}
	if len(snapshot) == 0 {
		return
	}

	p.logger.Debug("processing pending mutations", slog.Int("count", len(snapshot)))

	start := time.Now()
	for _, m := range snapshot {
		p.processItem(ctx, m)
	}
	p.metrics.RecordQueueRun(ctx, string(p.kind), len(snapshot), time.Since(start))
}

func (p *Processor) processItem(ctx context.Context, m *queueDomain.PendingMutation) {
	if !p.acquire(m.ID) {
		p.metrics.RecordMutationOutcome(ctx, string(p.kind), outcomeSkipped)
		return
	}
	defer p.release(m.ID)

	logger := p.logger.With(slog.String("mutation_id", m.ID.String()))

	current := p.identity.CurrentUserID()
	if current == "" {
		p.metrics.RecordMutationOutcome(ctx, string(p.kind), outcomeSkipped)
		return
	}

	if !m.OwnedBy(current) {
		if err := p.store.Remove(ctx, m); err != nil {
			logger.Error("failed to purge foreign pending mutation", slog.Any("error", err))
			return
		}
		logger.Info("purged pending mutation of another user")
		p.metrics.RecordMutationOutcome(ctx, string(p.kind), outcomePurged)
		return
	}

	if m.Exhausted(p.maxRetries) {
		if err := p.store.Remove(ctx, m); err != nil {
			logger.Error("failed to discard exhausted pending mutation", slog.Any("error", err))
			return
		}
		logger.Warn("discarded pending mutation after exhausting retries",
			slog.Int("retry_count", m.RetryCount),
			slog.Any("last_error", m.LastError),
		)
		p.notifier.Notify(ctx, p.failureMessage(), notification.SeverityError)
		p.metrics.RecordMutationOutcome(ctx, string(p.kind), outcomeExhausted)
		return
	}

	// Count the attempt before making it so a crash mid-attempt still uses up budget.
	m.RecordAttempt()
	if err := p.store.Save(ctx, m); err != nil {
		logger.Error("failed to record attempt, skipping", slog.Any("error", err))
		return
	}

	result, err := p.submitter.Submit(ctx, m)
	switch {
	case err == nil:
		if rerr := p.reconciler.Reconcile(ctx, m, result); rerr != nil {
			logger.Error("failed to reconcile local state", slog.Any("error", rerr))
		}
		p.complete(ctx, logger, m, outcomeSubmitted)

	case errors.Is(err, queueDomain.ErrAlreadyApplied):
		p.complete(ctx, logger, m, outcomeAlreadyApplied)

	case errors.Is(err, queueDomain.ErrNonRetryable):
		if rerr := p.store.Remove(ctx, m); rerr != nil {
			logger.Error("failed to discard rejected pending mutation", slog.Any("error", rerr))
			return
		}
		logger.Warn("discarded pending mutation rejected by backend", slog.Any("error", err))
		p.notifier.Notify(ctx, p.failureMessage(), notification.SeverityError)
		p.metrics.RecordMutationOutcome(ctx, string(p.kind), outcomeRejected)

	default:
		m.RecordFailure(err)
		if serr := p.store.Save(ctx, m); serr != nil {
			logger.Error("failed to record failure", slog.Any("error", serr))
		}
		logger.Info("pending mutation attempt failed, will retry",
			slog.Int("retry_count", m.RetryCount),
			slog.Any("error", err),
		)
		p.metrics.RecordMutationOutcome(ctx, string(p.kind), outcomeRetried)
	}
}

// complete removes a mutation the backend has confirmed and tells the user.
func (p *Processor) complete(
	ctx context.Context,
	logger *slog.Logger,
	m *queueDomain.PendingMutation,
	outcome string,
) {
	if err := p.store.Remove(ctx, m); err != nil {
		// The next attempt is answered as already applied, which removes it without reconciling again.
		logger.Error("failed to remove confirmed pending mutation", slog.Any("error", err))
	}
	logger.Info("pending mutation confirmed", slog.String("outcome", outcome))
	p.notifier.Notify(ctx, p.successMessage(), notification.SeveritySuccess)
	p.metrics.RecordMutationOutcome(ctx, string(p.kind), outcome)
}

func (p *Processor) acquire(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Processor) release(id uuid.UUID) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

func (p *Processor) successMessage() string {
	return fmt.Sprintf("Your %s was synced", p.kind.Label())
}

func (p *Processor) failureMessage() string {
	return fmt.Sprintf("Your %s could not be synced. Please try again.", p.kind.Label())
}
