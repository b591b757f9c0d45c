package token

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
)

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	clock clockwork.Clock
}

// NewMemoryStore returns an empty store. A nil clock means the real clock.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{clock: clock}
}

func (s *MemoryStore) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && expired(s.token, s.clock.Now()) {
		s.token = ""
	}

	return s.token, nil
}

func (s *MemoryStore) SetToken(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if expired(token, s.clock.Now()) {
		return ErrExpired
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	return nil
}
