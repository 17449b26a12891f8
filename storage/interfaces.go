package storage

import (
	"context"
	"time"

	"checkpoint-rewards/models"
)

// PlayerUpdate lists the profile fields a caller wants changed. Nil fields are left alone.
type PlayerUpdate struct {
	WalletAddress        *string
	SolanaWalletAddress  *string
	StellarWalletAddress *string
	StellarWalletID      *string
	Email                *string
	Username             *string
}

// Empty reports whether the update would change nothing.
func (u PlayerUpdate) Empty() bool {
	return u.WalletAddress == nil && u.SolanaWalletAddress == nil && u.StellarWalletAddress == nil &&
		u.StellarWalletID == nil && u.Email == nil && u.Username == nil
}

// PlayerStore persists players. Players are never deleted.
type PlayerStore interface {
	// Create inserts a player and fills its ID. Returns ErrDuplicateKey on a wallet collision.
	Create(ctx context.Context, p *models.Player) error

	// GetByID returns ErrNotFound if the player does not exist.
	GetByID(ctx context.Context, id int64) (*models.Player, error)

	// GetByWallet looks a player up by the wallet column of the given chain.
	GetByWallet(ctx context.Context, chain models.Chain, address string) (*models.Player, error)

	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.Player, error)

	// ListByEmails returns every player whose email (case-insensitive) is in emails.
	ListByEmails(ctx context.Context, emails []string) ([]*models.Player, error)

	Update(ctx context.Context, id int64, u PlayerUpdate) (*models.Player, error)

	// AddPoints atomically adds delta to total_points and returns the updated row.
	AddPoints(ctx context.Context, id int64, delta int64) (*models.Player, error)
}

// ActivityFilter selects ledger rows. Zero-valued fields do not filter.
//
// Wallet matches the user_wallet_address column when WalletMetadataKey is empty,
// and metadata->>WalletMetadataKey otherwise.
type ActivityFilter struct {
	ActivityType      string
	Wallet            string
	WalletMetadataKey string
	Checkpoint        string
	From              time.Time // inclusive
	To                time.Time // exclusive
}

// ActivityStore is the append-only points ledger.
type ActivityStore interface {
	// Insert appends a row and fills its ID.
	Insert(ctx context.Context, a *models.PointsActivity) error

	// InsertBatch appends all rows in a single statement.
	InsertBatch(ctx context.Context, rows []*models.PointsActivity) error

	Count(ctx context.Context, f ActivityFilter) (int64, error)

	SumPoints(ctx context.Context, f ActivityFilter) (int64, error)

	// List returns matching rows newest first, at most limit (0 = no limit).
	List(ctx context.Context, f ActivityFilter, limit int) ([]*models.PointsActivity, error)
}

// CheckpointUpdate lists the checkpoint fields to change. Nil fields are left alone.
type CheckpointUpdate struct {
	Name            *string
	Slug            *string
	Description     *string
	ChainType       *models.Chain
	PointsValue     *int
	IsActive        *bool
	PartnerImageURL *string
}

type CheckpointStore interface {
	// Create returns ErrDuplicateKey if the ID is taken.
	Create(ctx context.Context, c *models.Checkpoint) error
	GetByID(ctx context.Context, id string) (*models.Checkpoint, error)
	// List returns checkpoints newest first.
	List(ctx context.Context, activeOnly bool) ([]*models.Checkpoint, error)
	Update(ctx context.Context, id string, u CheckpointUpdate) (*models.Checkpoint, error)
	Delete(ctx context.Context, id string) error
}

// EventRewardSummary carries the final counts written after an award run.
type EventRewardSummary struct {
	TotalHoldersFound  int
	MatchedPlayers     int
	UnmatchedHolders   int
	TotalPointsAwarded int64
}

type EventRewardStore interface {
	// Create returns ErrDuplicateKey if a reward for the same event already exists.
	Create(ctx context.Context, r *models.EventReward) error
	GetByEventID(ctx context.Context, eventID string) (*models.EventReward, error)
	Finalize(ctx context.Context, eventID string, s EventRewardSummary) error
}

// Stores bundles every store the service layer needs.
type Stores struct {
	Players      PlayerStore
	Activities   ActivityStore
	Checkpoints  CheckpointStore
	EventRewards EventRewardStore
}
