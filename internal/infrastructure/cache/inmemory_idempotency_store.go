package cache

import (
	"context"
	"sync"
	"time"

	"github.com/treeofhope/backend/internal/domain/shared"
)

const defaultSweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps webhook claims in process memory. Claims are
// not shared between replicas, so it is meant for development, tests and
// single-instance deployments.
type InMemoryIdempotencyStore struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time

	stop    context.CancelFunc
	stopped chan struct{}
}

// NewInMemoryIdempotencyStore creates a store with a background sweeper.
// Call Close to stop it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return newInMemoryIdempotencyStore(defaultSweepInterval, time.Now)
}

func newInMemoryIdempotencyStore(sweepEvery time.Duration, now func() time.Time) *InMemoryIdempotencyStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		claims:  make(map[string]time.Time),
		now:     now,
		stop:    cancel,
		stopped: make(chan struct{}),
	}
	go s.sweepLoop(ctx, sweepEvery)
	return s
}

func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.liveLocked(eventID, now) {
		return false, nil
	}
	s.claims[eventID] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(eventID, s.now()), nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, eventID string) error {
	s.mu.Lock()
	delete(s.claims, eventID)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Later calls are no-ops.
func (s *InMemoryIdempotencyStore) Close() error {
	s.stop()
	<-s.stopped
	return nil
}

// Len reports how many claims are held, expired ones included
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

func (s *InMemoryIdempotencyStore) liveLocked(eventID string, now time.Time) bool {
	expiry, ok := s.claims[eventID]
	return ok && now.Before(expiry)
}

func (s *InMemoryIdempotencyStore) sweepLoop(ctx context.Context, every time.Duration) {
	defer close(s.stopped)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep drops expired claims
func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id := range s.claims {
		if !s.liveLocked(id, now) {
			delete(s.claims, id)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
