// README: Session store interface and the in-memory implementation with idle eviction.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Store is the minimal keyed store for Session records.
type Store interface {
	// Create assigns a fresh id to sess and persists it.
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Save persists mutations made to a session fetched via Get.
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in a guarded map. Sessions idle longer than the
// TTL are evicted by RunEviction; there is no persistence across restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	sess.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.LastActive = s.now()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return ErrNotFound
	}
	// LastActive is read by the eviction sweep under the same lock; writing
	// it outside would race with the janitor.
	sess.LastActive = s.now()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// RunEviction sweeps idle sessions until ctx is cancelled.
func (s *MemoryStore) RunEviction(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(s.now()); n > 0 {
				log.Printf("session: evicted %d idle sessions", n)
			}
		}
	}
}

func (s *MemoryStore) evictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActive) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
