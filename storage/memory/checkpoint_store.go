package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

// CheckpointStore is an in-memory implementation of storage.CheckpointStore.
type CheckpointStore struct {
	mu   sync.RWMutex
	data map[string]*models.Checkpoint
	seq  int64 // creation order, used to break CreatedAt ties
	ord  map[string]int64
}

func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		data: make(map[string]*models.Checkpoint),
		ord:  make(map[string]int64),
	}
}

func (s *CheckpointStore) Create(_ context.Context, c *models.Checkpoint) error {
	if c == nil || c.ID == "" || c.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ID]; exists {
		return storage.ErrDuplicateKey
	}

	now := time.Now().UTC()
	stored := cloneCheckpoint(c)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.data[c.ID] = stored
	s.seq++
	s.ord[c.ID] = s.seq

	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *CheckpointStore) GetByID(_ context.Context, id string) (*models.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneCheckpoint(c), nil
}

func (s *CheckpointStore) List(_ context.Context, activeOnly bool) ([]*models.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Checkpoint, 0, len(s.data))
	for _, c := range s.data {
		if activeOnly && !c.IsActive {
			continue
		}
		result = append(result, cloneCheckpoint(c))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return s.ord[result[i].ID] > s.ord[result[j].ID]
	})
	return result, nil
}

func (s *CheckpointStore) Update(_ context.Context, id string, u storage.CheckpointUpdate) (*models.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	next := cloneCheckpoint(existing)
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Slug != nil {
		next.Slug = *u.Slug
	}
	if u.Description != nil {
		next.Description = copyString(u.Description)
	}
	if u.ChainType != nil {
		next.ChainType = *u.ChainType
	}
	if u.PointsValue != nil {
		next.PointsValue = *u.PointsValue
	}
	if u.IsActive != nil {
		next.IsActive = *u.IsActive
	}
	if u.PartnerImageURL != nil {
		next.PartnerImageURL = copyString(u.PartnerImageURL)
	}
	next.UpdatedAt = time.Now().UTC()
	s.data[id] = next
	return cloneCheckpoint(next), nil
}

func (s *CheckpointStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data, id)
	delete(s.ord, id)
	return nil
}

func cloneCheckpoint(c *models.Checkpoint) *models.Checkpoint {
	out := *c
	out.Description = copyString(c.Description)
	out.PartnerImageURL = copyString(c.PartnerImageURL)
	out.CreatedBy = copyString(c.CreatedBy)
	return &out
}
