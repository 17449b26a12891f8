package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

func TestPostgresStores(t *testing.T) {
	db := setupTestDB(t)
	stores := NewStores(db)
	ctx := context.Background()

	t.Run("player lookups and atomic points", func(t *testing.T) {
		p := &models.Player{
			StellarWalletAddress: models.StringPtr("GABC"),
			Email:                models.StringPtr("Mixed@Case.io"),
		}
		require.NoError(t, stores.Players.Create(ctx, p))
		require.NotZero(t, p.ID)

		byEmail, err := stores.Players.GetByEmail(ctx, "mixed@case.io")
		require.NoError(t, err)
		assert.Equal(t, p.ID, byEmail.ID)

		byWallet, err := stores.Players.GetByWallet(ctx, models.ChainStellar, "GABC")
		require.NoError(t, err)
		assert.Equal(t, p.ID, byWallet.ID)

		updated, err := stores.Players.AddPoints(ctx, p.ID, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), updated.TotalPoints)
		assert.Equal(t, "GABC", *updated.StellarWalletAddress)

		_, err = stores.Players.AddPoints(ctx, p.ID+1000, 1)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = stores.Players.Create(ctx, &models.Player{StellarWalletAddress: models.StringPtr("GABC")})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		renamed, err := stores.Players.Update(ctx, p.ID, storage.PlayerUpdate{Username: models.StringPtr("stella")})
		require.NoError(t, err)
		assert.Equal(t, "stella", *renamed.Username)
	})

	t.Run("ledger filters on column and jsonb", func(t *testing.T) {
		start := time.Now().UTC().Truncate(time.Hour)
		rows := []*models.PointsActivity{
			{
				UserWalletAddress: models.StringPtr("0xfeed"),
				ActivityType:      models.ActivityCheckpointCheckin,
				PointsEarned:      100,
				Metadata:          models.JSONMap{"checkpoint": "cp-a"},
				Processed:         true,
				CreatedAt:         start.Add(time.Minute),
			},
			{
				ActivityType: models.ActivityCheckpointCheckin,
				PointsEarned: 100,
				Metadata:     models.JSONMap{"checkpoint": "cp-b", "solana_wallet": "SolW"},
				Processed:    true,
				CreatedAt:    start.Add(2 * time.Minute),
			},
		}
		require.NoError(t, stores.Activities.InsertBatch(ctx, rows))
		assert.NotZero(t, rows[1].ID)

		window := storage.ActivityFilter{
			ActivityType: models.ActivityCheckpointCheckin,
			From:         start,
			To:           start.Add(time.Hour),
		}

		evm := window
		evm.Wallet = "0xfeed"
		n, err := stores.Activities.Count(ctx, evm)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		sol := window
		sol.Wallet = "SolW"
		sol.WalletMetadataKey = "solana_wallet"
		sum, err := stores.Activities.SumPoints(ctx, sol)
		require.NoError(t, err)
		assert.Equal(t, int64(100), sum)

		none := window
		none.Wallet = "0xnobody"
		sum, err = stores.Activities.SumPoints(ctx, none)
		require.NoError(t, err)
		assert.Zero(t, sum)

		listed, err := stores.Activities.List(ctx, window, 10)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "cp-b", listed[0].Metadata.String("checkpoint"))

		bad := window
		bad.Wallet = "x"
		bad.WalletMetadataKey = "x'; drop table players; --"
		_, err = stores.Activities.Count(ctx, bad)
		assert.ErrorIs(t, err, storage.ErrInvalidInput)
	})

	t.Run("event reward unique lock", func(t *testing.T) {
		require.NoError(t, stores.EventRewards.Create(ctx, &models.EventReward{ID: "11111111-1111-1111-1111-111111111111", EventID: "evt-9", PointsPerHolder: 5}))
		err := stores.EventRewards.Create(ctx, &models.EventReward{ID: "22222222-2222-2222-2222-222222222222", EventID: "evt-9", PointsPerHolder: 5})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		require.NoError(t, stores.EventRewards.Finalize(ctx, "evt-9", storage.EventRewardSummary{MatchedPlayers: 3, TotalPointsAwarded: 15}))
		got, err := stores.EventRewards.GetByEventID(ctx, "evt-9")
		require.NoError(t, err)
		assert.Equal(t, 3, got.MatchedPlayers)
	})

	t.Run("checkpoint crud", func(t *testing.T) {
		c := &models.Checkpoint{ID: "0a1b2c3d4e", Slug: "main-stage", Name: "Main Stage", ChainType: models.ChainEVM, PointsValue: 100, IsActive: true}
		require.NoError(t, stores.Checkpoints.Create(ctx, c))

		points := 300
		updated, err := stores.Checkpoints.Update(ctx, c.ID, storage.CheckpointUpdate{PointsValue: &points})
		require.NoError(t, err)
		assert.Equal(t, 300, updated.PointsValue)

		require.NoError(t, stores.Checkpoints.Delete(ctx, c.ID))
		_, err = stores.Checkpoints.GetByID(ctx, c.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
