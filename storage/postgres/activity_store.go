package postgres

import (
	"context"
	"regexp"

	"gorm.io/gorm"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

// ActivityStore is the GORM implementation of storage.ActivityStore.
// It only ever inserts; ledger rows are immutable.
type ActivityStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// metadata keys are interpolated into SQL, so they are restricted to identifiers
var metadataKeyPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (s *ActivityStore) Insert(ctx context.Context, a *models.PointsActivity) error {
	if a == nil || a.ActivityType == "" {
		return storage.ErrInvalidInput
	}
	if a.Metadata == nil {
		a.Metadata = models.JSONMap{}
	}
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *ActivityStore) InsertBatch(ctx context.Context, rows []*models.PointsActivity) error {
	if len(rows) == 0 {
		return nil
	}
	for _, a := range rows {
		if a == nil || a.ActivityType == "" {
			return storage.ErrInvalidInput
		}
		if a.Metadata == nil {
			a.Metadata = models.JSONMap{}
		}
	}
	return translate(s.db.WithContext(ctx).Create(&rows).Error)
}

func (s *ActivityStore) Count(ctx context.Context, f storage.ActivityFilter) (int64, error) {
	q, err := s.filtered(ctx, f)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *ActivityStore) SumPoints(ctx context.Context, f storage.ActivityFilter) (int64, error) {
	q, err := s.filtered(ctx, f)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := q.Select("COALESCE(SUM(points_earned), 0)").Scan(&total).Error; err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (s *ActivityStore) List(ctx context.Context, f storage.ActivityFilter, limit int) ([]*models.PointsActivity, error) {
	q, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []*models.PointsActivity
	if err := q.Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (s *ActivityStore) filtered(ctx context.Context, f storage.ActivityFilter) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Model(&models.PointsActivity{})

	if f.ActivityType != "" {
		q = q.Where("activity_type = ?", f.ActivityType)
	}
	if f.Wallet != "" {
		if f.WalletMetadataKey == "" {
			q = q.Where("user_wallet_address = ?", f.Wallet)
		} else {
			if !metadataKeyPattern.MatchString(f.WalletMetadataKey) {
				return nil, storage.ErrInvalidInput
			}
			q = q.Where("metadata->>'"+f.WalletMetadataKey+"' = ?", f.Wallet)
		}
	}
	if f.Checkpoint != "" {
		q = q.Where("metadata->>'checkpoint' = ?", f.Checkpoint)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}
	return q, nil
}
