package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/rewardsync/internal/connectivity"
	"github.com/allisson/rewardsync/internal/identity"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// ConnectivitySource is the observable online state.
type ConnectivitySource interface {
	IsOnline() bool
	Subscribe(fn connectivity.Listener) func()
}

// IdentitySource is the observable authenticated identity.
type IdentitySource interface {
	identity.Provider
	Subscribe(fn identity.ChangeFunc) func()
}

// StoreSource publishes queue changes.
type StoreSource interface {
	Subscribe(fn StoreListener) func()
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// SweepInterval runs every processor periodically while online. Zero disables it.
	SweepInterval time.Duration
}

// Scheduler decides when processors run: on every offline to online transition, once at
// start when already online, after an account switch, when a mutation is queued while
// online and, optionally, on a periodic sweep.
type Scheduler struct {
	config       SchedulerConfig
	processors   map[queueDomain.Kind]QueueProcessor
	order        []queueDomain.Kind
	connectivity ConnectivitySource
	identity     IdentitySource
	store        StoreSource
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
	runCtx  context.Context
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler. identity and store may be nil.
func NewScheduler(
	config SchedulerConfig,
	processors []QueueProcessor,
	connectivitySource ConnectivitySource,
	identitySource IdentitySource,
	store StoreSource,
	logger *slog.Logger,
) *Scheduler {
	s := &Scheduler{
		config:       config,
		processors:   make(map[queueDomain.Kind]QueueProcessor, len(processors)),
		connectivity: connectivitySource,
		identity:     identitySource,
		store:        store,
		logger:       logger,
	}
	for _, p := range processors {
		s.processors[p.Kind()] = p
		s.order = append(s.order, p.Kind())
	}
	return s
}

// Start wires the triggers and blocks until ctx is done. Runs started by triggers are
// waited for before Start returns.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("starting queue scheduler",
		slog.Int("processors", len(s.processors)),
		slog.Duration("sweep_interval", s.config.SweepInterval),
	)

	s.mu.Lock()
	s.running = true
	s.runCtx = ctx
	s.mu.Unlock()

	unsubscribe := s.subscribe()
	defer func() {
		unsubscribe()

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		s.wg.Wait()
		s.logger.Info("stopped queue scheduler")
	}()

	// Level trigger: a cold start with a stale queue while already online.
	if s.connectivity.IsOnline() {
		s.spawnAll("startup")
	}

	var tick <-chan time.Time
	if s.config.SweepInterval > 0 {
		ticker := time.NewTicker(s.config.SweepInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			if s.connectivity.IsOnline() {
				s.spawnAll("sweep")
			}
		}
	}
}

// RunAll runs every processor concurrently and waits for all of them.
func (s *Scheduler) RunAll(ctx context.Context) error {
	var g errgroup.Group
	for _, kind := range s.order {
		p := s.processors[kind]
		g.Go(func() error {
			p.ProcessQueue(ctx)
			return nil
		})
	}
	return g.Wait()
}

// Run runs the processor of kind and waits for it.
func (s *Scheduler) Run(ctx context.Context, kind queueDomain.Kind) error {
	p, ok := s.processors[kind]
	if !ok {
		return queueDomain.ErrUnknownKind
	}
	p.ProcessQueue(ctx)
	return nil
}

// Kick starts the processor of kind in the background when online.
func (s *Scheduler) Kick(kind queueDomain.Kind) {
	if !s.connectivity.IsOnline() {
		return
	}
	p, ok := s.processors[kind]
	if !ok {
		return
	}
	s.spawn(func(ctx context.Context) {
		p.ProcessQueue(ctx)
	})
}

func (s *Scheduler) subscribe() func() {
	var unsubscribers []func()

	if s.identity != nil {
		unsubscribers = append(unsubscribers, s.identity.Subscribe(func(previous, current string) {
			if current != "" && s.connectivity.IsOnline() {
				s.spawnAll("identity")
			}
		}))
	}

	if s.store != nil {
		unsubscribers = append(unsubscribers, s.store.Subscribe(func(event StoreEvent) {
			if event.Op == StoreOpPut {
				s.Kick(event.Mutation.Kind)
			}
		}))
	}

	unsubscribers = append(unsubscribers, s.connectivity.Subscribe(func(online bool) {
		if online {
			s.spawnAll("connectivity")
		}
	}))

	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

func (s *Scheduler) spawnAll(reason string) {
	s.logger.Debug("triggering queue processors", slog.String("reason", reason))
	s.spawn(func(ctx context.Context) {
		_ = s.RunAll(ctx)
	})
}

// spawn runs fn in a tracked goroutine. Triggers arriving outside Start are dropped.
func (s *Scheduler) spawn(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	ctx := s.runCtx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}
