package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

func TestActivityStore_FilterByWalletColumnAndMetadata(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	rows := []*models.PointsActivity{
		{
			UserWalletAddress: models.StringPtr("0xabc"),
			ActivityType:      models.ActivityCheckpointCheckin,
			PointsEarned:      100,
			Metadata:          models.JSONMap{"checkpoint": "cp-1"},
			CreatedAt:         day.Add(2 * time.Hour),
		},
		{
			ActivityType: models.ActivityCheckpointCheckin,
			PointsEarned: 100,
			Metadata:     models.JSONMap{"checkpoint": "cp-2", "solana_wallet": "SoLWallet"},
			CreatedAt:    day.Add(3 * time.Hour),
		},
		{
			UserWalletAddress: models.StringPtr("0xabc"),
			ActivityType:      models.ActivityCheckpointCheckin,
			PointsEarned:      100,
			Metadata:          models.JSONMap{"checkpoint": "cp-3"},
			CreatedAt:         day.Add(-time.Hour),
		},
	}
	require.NoError(t, store.InsertBatch(ctx, rows))
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, int64(3), rows[2].ID)

	today := storage.ActivityFilter{
		ActivityType: models.ActivityCheckpointCheckin,
		From:         day,
		To:           day.Add(24 * time.Hour),
	}

	evm := today
	evm.Wallet = "0xabc"
	n, err := store.Count(ctx, evm)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "yesterday's row is outside the window")

	sol := today
	sol.Wallet = "SoLWallet"
	sol.WalletMetadataKey = "solana_wallet"
	sum, err := store.SumPoints(ctx, sol)
	require.NoError(t, err)
	assert.Equal(t, int64(100), sum)

	byCheckpoint := storage.ActivityFilter{Wallet: "0xabc", Checkpoint: "cp-3"}
	n, err = store.Count(ctx, byCheckpoint)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestActivityStore_WindowEndIsExclusive(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, &models.PointsActivity{
		ActivityType: models.ActivityCheckpointCheckin,
		PointsEarned: 100,
		CreatedAt:    end,
	}))

	n, err := store.Count(ctx, storage.ActivityFilter{From: end.Add(-24 * time.Hour), To: end})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestActivityStore_ListNewestFirst(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, &models.PointsActivity{
			ActivityType: models.ActivityCheckpointCheckin,
			PointsEarned: int64(10 * (i + 1)),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := store.List(ctx, storage.ActivityFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(30), got[0].PointsEarned)
	assert.Equal(t, int64(20), got[1].PointsEarned)
}

func TestActivityStore_RejectsMissingType(t *testing.T) {
	store := NewActivityStore()
	err := store.Insert(context.Background(), &models.PointsActivity{PointsEarned: 1})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
