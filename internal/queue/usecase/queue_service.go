package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/rewardsync/internal/crypto/service"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// StoreOp is the kind of change a store subscriber is told about.
type StoreOp string

const (
	StoreOpPut    StoreOp = "put"
	StoreOpRemove StoreOp = "remove"
)

// StoreEvent describes one change to the persisted queue.
type StoreEvent struct {
	Op       StoreOp
	Mutation *queueDomain.PendingMutation
}

// StoreListener receives store changes. It runs synchronously and must not block.
type StoreListener func(event StoreEvent)

// QueueService is the persisted queue owned by the composition root. It encrypts payloads
// on the way in, decrypts them on the way out and publishes every put and remove.
type QueueService struct {
	repo   PendingMutationRepository
	cipher cryptoService.PayloadCipher
	logger *slog.Logger

	mu        sync.RWMutex
	listeners map[int]StoreListener
	nextID    int
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	repo PendingMutationRepository,
	cipher cryptoService.PayloadCipher,
	logger *slog.Logger,
) *QueueService {
	return &QueueService{
		repo:      repo,
		cipher:    cipher,
		logger:    logger,
		listeners: make(map[int]StoreListener),
	}
}

// GetAll returns a FIFO snapshot of kind. Records whose payload cannot be decrypted are
// left in place and skipped so a misconfigured keeper never destroys queued work.
func (s *QueueService) GetAll(ctx context.Context, kind queueDomain.Kind) ([]*queueDomain.PendingMutation, error) {
	stored, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	mutations := make([]*queueDomain.PendingMutation, 0, len(stored))
	for _, m := range stored {
		plaintext, err := s.cipher.Decrypt(ctx, m.Payload)
		if err != nil {
			s.logger.Error("skipping pending mutation with unreadable payload",
				slog.String("mutation_id", m.ID.String()),
				slog.String("kind", string(m.Kind)),
				slog.Any("error", err),
			)
			continue
		}
		m.Payload = plaintext
		mutations = append(mutations, m)
	}
	return mutations, nil
}

// Get returns one mutation with its payload in plaintext.
func (s *QueueService) Get(ctx context.Context, id uuid.UUID) (*queueDomain.PendingMutation, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.cipher.Decrypt(ctx, m.Payload)
	if err != nil {
		return nil, err
	}
	m.Payload = plaintext
	return m, nil
}

// Put stores a new mutation.
func (s *QueueService) Put(ctx context.Context, m *queueDomain.PendingMutation) error {
	sealed, err := s.cipher.Encrypt(ctx, m.Payload)
	if err != nil {
		return err
	}

	stored := m.Clone()
	stored.Payload = sealed
	if err := s.repo.Create(ctx, stored); err != nil {
		return err
	}

	s.publish(StoreEvent{Op: StoreOpPut, Mutation: m.Clone()})
	return nil
}

// Save persists retry bookkeeping. Payload and owner are not rewritten.
func (s *QueueService) Save(ctx context.Context, m *queueDomain.PendingMutation) error {
	return s.repo.Update(ctx, m)
}

// Remove deletes a mutation.
func (s *QueueService) Remove(ctx context.Context, m *queueDomain.PendingMutation) error {
	if err := s.repo.Delete(ctx, m.ID); err != nil {
		return err
	}

	s.publish(StoreEvent{Op: StoreOpRemove, Mutation: m.Clone()})
	return nil
}

// PurgeOwner deletes every mutation created by ownerUserID.
func (s *QueueService) PurgeOwner(ctx context.Context, ownerUserID string) (int64, error) {
	return s.repo.DeleteByOwner(ctx, ownerUserID)
}

// Subscribe registers fn for store changes and returns a function that unregisters it.
func (s *QueueService) Subscribe(fn StoreListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *QueueService) publish(event StoreEvent) {
	s.mu.RLock()
	listeners := make([]StoreListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}
