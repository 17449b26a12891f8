package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

// ActivityStore is an in-memory implementation of storage.ActivityStore.
// Rows are kept in insertion order and never modified.
type ActivityStore struct {
	mu     sync.RWMutex
	rows   []*models.PointsActivity
	nextID int64
}

// NewActivityStore creates a new in-memory ledger.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

func (s *ActivityStore) Insert(_ context.Context, a *models.PointsActivity) error {
	if a == nil || a.ActivityType == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(a)
	return nil
}

func (s *ActivityStore) InsertBatch(_ context.Context, rows []*models.PointsActivity) error {
	for _, a := range rows {
		if a == nil || a.ActivityType == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range rows {
		s.insertLocked(a)
	}
	return nil
}

func (s *ActivityStore) insertLocked(a *models.PointsActivity) {
	s.nextID++
	stored := cloneActivity(a)
	stored.ID = s.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.rows = append(s.rows, stored)

	a.ID = stored.ID
	a.CreatedAt = stored.CreatedAt
}

func (s *ActivityStore) Count(_ context.Context, f storage.ActivityFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.rows {
		if matches(a, f) {
			n++
		}
	}
	return n, nil
}

func (s *ActivityStore) SumPoints(_ context.Context, f storage.ActivityFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, a := range s.rows {
		if matches(a, f) {
			total += a.PointsEarned
		}
	}
	return total, nil
}

func (s *ActivityStore) List(_ context.Context, f storage.ActivityFilter, limit int) ([]*models.PointsActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.PointsActivity
	for _, a := range s.rows {
		if matches(a, f) {
			result = append(result, cloneActivity(a))
		}
	}

	// Newest first; ID breaks ties for rows sharing a timestamp.
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func matches(a *models.PointsActivity, f storage.ActivityFilter) bool {
	if f.ActivityType != "" && a.ActivityType != f.ActivityType {
		return false
	}
	if f.Wallet != "" {
		if f.WalletMetadataKey == "" {
			if a.UserWalletAddress == nil || *a.UserWalletAddress != f.Wallet {
				return false
			}
		} else if a.Metadata.String(f.WalletMetadataKey) != f.Wallet {
			return false
		}
	}
	if f.Checkpoint != "" && a.Metadata.String("checkpoint") != f.Checkpoint {
		return false
	}
	if !f.From.IsZero() && a.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !a.CreatedAt.Before(f.To) {
		return false
	}
	return true
}

func cloneActivity(a *models.PointsActivity) *models.PointsActivity {
	c := *a
	c.UserWalletAddress = copyString(a.UserWalletAddress)
	c.Metadata = a.Metadata.Clone()
	return &c
}
