package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

type CheckpointStore struct {
	db *gorm.DB
}

func NewCheckpointStore(db *gorm.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

func (s *CheckpointStore) Create(ctx context.Context, c *models.Checkpoint) error {
	if c == nil || c.ID == "" || c.Name == "" {
		return storage.ErrInvalidInput
	}
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *CheckpointStore) GetByID(ctx context.Context, id string) (*models.Checkpoint, error) {
	var c models.Checkpoint
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *CheckpointStore) List(ctx context.Context, activeOnly bool) ([]*models.Checkpoint, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []*models.Checkpoint
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *CheckpointStore) Update(ctx context.Context, id string, u storage.CheckpointUpdate) (*models.Checkpoint, error) {
	updates := map[string]interface{}{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Slug != nil {
		updates["slug"] = *u.Slug
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.ChainType != nil {
		updates["chain_type"] = string(*u.ChainType)
	}
	if u.PointsValue != nil {
		updates["points_value"] = *u.PointsValue
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	if u.PartnerImageURL != nil {
		updates["partner_image_url"] = *u.PartnerImageURL
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}

	var c models.Checkpoint
	res := s.db.WithContext(ctx).
		Model(&c).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (s *CheckpointStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Checkpoint{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
