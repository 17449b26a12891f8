package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-rewards/models"
	"checkpoint-rewards/observability"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/storage"
	"checkpoint-rewards/storage/memory"
)

func TestEventRewardService_Award(t *testing.T) {
	stores := memory.NewStores()
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	svc := NewEventRewardService(stores.EventRewards, stores.Players, stores.Activities, m)
	ctx := context.Background()

	evm := &models.Player{
		WalletAddress: models.StringPtr("0x00000000000000000000000000000000000000a1"),
		Email:         models.StringPtr("Holder@Example.com"),
		TotalPoints:   10,
	}
	sol := &models.Player{
		SolanaWalletAddress: models.StringPtr("Sol111"),
		Email:               models.StringPtr("sol@example.com"),
	}
	require.NoError(t, stores.Players.Create(ctx, evm))
	require.NoError(t, stores.Players.Create(ctx, sol))

	out, err := svc.Award(ctx, EventRewardRequest{
		EventID:         "evt-1",
		EventName:       "Launch Party",
		PointsPerHolder: 50,
		Emails:          []string{"holder@example.com", " HOLDER@example.com ", "sol@example.com", "nobody@example.com", ""},
		AdminEmail:      "admin@x.io",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, out.TotalHolders)
	assert.Equal(t, 3, out.UniqueEmails)
	assert.Equal(t, 2, out.MatchedPlayers)
	assert.Equal(t, []string{"nobody@example.com"}, out.UnmatchedEmails)
	assert.Equal(t, int64(100), out.TotalPointsAwarded)
	assert.Equal(t, "Launch Party", out.EventName)

	p, err := stores.Players.GetByID(ctx, evm.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), p.TotalPoints)
	p, err = stores.Players.GetByID(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), p.TotalPoints)

	// Only the EVM holder gets a ledger row.
	rows, err := stores.Activities.List(ctx, storage.ActivityFilter{ActivityType: models.ActivityEventReward}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Event reward: Launch Party", rows[0].Description)
	assert.Equal(t, "evt-1", rows[0].Metadata.String("event_id"))
	assert.Equal(t, "admin@x.io", rows[0].Metadata.String("awarded_by"))

	rec, err := stores.EventRewards.GetByEventID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 5, rec.TotalHoldersFound)
	assert.Equal(t, 2, rec.MatchedPlayers)
	assert.Equal(t, 1, rec.UnmatchedHolders)
	assert.Equal(t, int64(100), rec.TotalPointsAwarded)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventRewardRuns.WithLabelValues("ok")))
}

func TestEventRewardService_DuplicateEvent(t *testing.T) {
	stores := memory.NewStores()
	svc := NewEventRewardService(stores.EventRewards, stores.Players, stores.Activities, nil)
	ctx := context.Background()

	req := EventRewardRequest{EventID: "evt-2", PointsPerHolder: 5, Emails: []string{"a@b.co"}}
	_, err := svc.Award(ctx, req)
	require.NoError(t, err)

	_, err = svc.Award(ctx, req)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
	assert.Equal(t, "Points for this event have already been awarded", apperrors.Message(err))
}

func TestEventRewardService_Validation(t *testing.T) {
	stores := memory.NewStores()
	svc := NewEventRewardService(stores.EventRewards, stores.Players, stores.Activities, nil)
	ctx := context.Background()

	_, err := svc.Award(ctx, EventRewardRequest{PointsPerHolder: 1})
	assert.Equal(t, "eventId is required", apperrors.Message(err))

	_, err = svc.Award(ctx, EventRewardRequest{EventID: "e", PointsPerHolder: 0})
	assert.Equal(t, "pointsPerHolder must be at least 1", apperrors.Message(err))

	out, err := svc.Award(ctx, EventRewardRequest{EventID: "e", PointsPerHolder: 1})
	require.NoError(t, err)
	assert.Equal(t, "e", out.EventName)
	assert.Empty(t, out.UnmatchedEmails)
	assert.NotNil(t, out.UnmatchedEmails)
}
