package memory

import (
	"context"
	"sync"
	"time"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

// EventRewardStore is an in-memory implementation of storage.EventRewardStore.
type EventRewardStore struct {
	mu   sync.Mutex
	data map[string]*models.EventReward // keyed by event_id
}

func NewEventRewardStore() *EventRewardStore {
	return &EventRewardStore{
		data: make(map[string]*models.EventReward),
	}
}

func (s *EventRewardStore) Create(_ context.Context, r *models.EventReward) error {
	if r == nil || r.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := *r
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.data[r.EventID] = &stored
	return nil
}

func (s *EventRewardStore) GetByEventID(_ context.Context, eventID string) (*models.EventReward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[eventID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (s *EventRewardStore) Finalize(_ context.Context, eventID string, sum storage.EventRewardSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[eventID]
	if !ok {
		return storage.ErrNotFound
	}
	r.TotalHoldersFound = sum.TotalHoldersFound
	r.MatchedPlayers = sum.MatchedPlayers
	r.UnmatchedHolders = sum.UnmatchedHolders
	r.TotalPointsAwarded = sum.TotalPointsAwarded
	r.UpdatedAt = time.Now().UTC()
	return nil
}
