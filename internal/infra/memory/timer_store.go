package memory

import (
	"context"
	"sync"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

// TimerStore is the in-memory implementation of timer.StateStore.
type TimerStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID]domain.TimerState
}

func NewTimerStore() *TimerStore {
	return &TimerStore{states: make(map[uuid.UUID]domain.TimerState)}
}

func (s *TimerStore) SaveTimerState(_ context.Context, contestID uuid.UUID, state domain.TimerState) error {
	s.mu.Lock()
	s.states[contestID] = state
	s.mu.Unlock()
	return nil
}

func (s *TimerStore) LoadTimerState(_ context.Context, contestID uuid.UUID) (domain.TimerState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[contestID]
	return state, ok, nil
}

func (s *TimerStore) ClearTimerState(_ context.Context, contestID uuid.UUID) error {
	s.mu.Lock()
	delete(s.states, contestID)
	s.mu.Unlock()
	return nil
}
