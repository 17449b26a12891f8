package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

// PlayerStore is the GORM implementation of storage.PlayerStore.
type PlayerStore struct {
	db *gorm.DB
}

func NewPlayerStore(db *gorm.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

var walletColumns = map[models.Chain]string{
	models.ChainEVM:     "wallet_address",
	models.ChainSolana:  "solana_wallet_address",
	models.ChainStellar: "stellar_wallet_address",
}

func (s *PlayerStore) Create(ctx context.Context, p *models.Player) error {
	if p == nil {
		return storage.ErrInvalidInput
	}
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *PlayerStore) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	var p models.Player
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PlayerStore) GetByWallet(ctx context.Context, chain models.Chain, address string) (*models.Player, error) {
	column, ok := walletColumns[chain]
	if !ok || address == "" {
		return nil, storage.ErrInvalidInput
	}

	var p models.Player
	err := s.db.WithContext(ctx).
		Where(fmt.Sprintf("%s = ?", column), address).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PlayerStore) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	if email == "" {
		return nil, storage.ErrInvalidInput
	}

	var p models.Player
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("id ASC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PlayerStore) ListByEmails(ctx context.Context, emails []string) ([]*models.Player, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(e)
	}

	var players []*models.Player
	err := s.db.WithContext(ctx).
		Where("LOWER(email) IN ?", lowered).
		Order("id ASC").
		Find(&players).Error
	if err != nil {
		return nil, translate(err)
	}
	return players, nil
}

func (s *PlayerStore) Update(ctx context.Context, id int64, u storage.PlayerUpdate) (*models.Player, error) {
	updates := map[string]interface{}{}
	if u.WalletAddress != nil {
		updates["wallet_address"] = *u.WalletAddress
	}
	if u.SolanaWalletAddress != nil {
		updates["solana_wallet_address"] = *u.SolanaWalletAddress
	}
	if u.StellarWalletAddress != nil {
		updates["stellar_wallet_address"] = *u.StellarWalletAddress
	}
	if u.StellarWalletID != nil {
		updates["stellar_wallet_id"] = *u.StellarWalletID
	}
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Username != nil {
		updates["username"] = *u.Username
	}

	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}

	var p models.Player
	res := s.db.WithContext(ctx).
		Model(&p).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *PlayerStore) AddPoints(ctx context.Context, id int64, delta int64) (*models.Player, error) {
	var p models.Player
	res := s.db.WithContext(ctx).
		Model(&p).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("total_points", gorm.Expr("total_points + ?", delta))
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}
