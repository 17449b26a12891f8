package postgres

import (
	"context"

	"gorm.io/gorm"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

type EventRewardStore struct {
	db *gorm.DB
}

func NewEventRewardStore(db *gorm.DB) *EventRewardStore {
	return &EventRewardStore{db: db}
}

// Create relies on the unique index on event_id; a second award for the same
// event surfaces as storage.ErrDuplicateKey.
func (s *EventRewardStore) Create(ctx context.Context, r *models.EventReward) error {
	if r == nil || r.EventID == "" {
		return storage.ErrInvalidInput
	}
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *EventRewardStore) GetByEventID(ctx context.Context, eventID string) (*models.EventReward, error) {
	var r models.EventReward
	if err := s.db.WithContext(ctx).First(&r, "event_id = ?", eventID).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *EventRewardStore) Finalize(ctx context.Context, eventID string, sum storage.EventRewardSummary) error {
	res := s.db.WithContext(ctx).
		Model(&models.EventReward{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"total_holders_found":  sum.TotalHoldersFound,
			"matched_players":      sum.MatchedPlayers,
			"unmatched_holders":    sum.UnmatchedHolders,
			"total_points_awarded": sum.TotalPointsAwarded,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
