package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-rewards/models"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/storage/memory"
)

func TestCreateOrUpdateEVM(t *testing.T) {
	store := memory.NewPlayerStore()
	svc := NewPlayerService(store)
	ctx := context.Background()

	p, err := svc.CreateOrUpdateEVM(ctx, ProfileInput{WalletAddress: "0xabc", Email: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", p.EmailValue())
	assert.Zero(t, p.TotalPoints)

	updated, err := svc.CreateOrUpdateEVM(ctx, ProfileInput{WalletAddress: "0xabc", Username: strings.Repeat("x", 300)})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	require.NotNil(t, updated.Username)
	assert.Len(t, *updated.Username, MaxVarcharLength)
	assert.Equal(t, "a@b.co", updated.EmailValue(), "empty email leaves the stored one alone")

	_, err = svc.CreateOrUpdateEVM(ctx, ProfileInput{})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestResolveForChain_CreatesNewPlayer(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerStore())
	ctx := context.Background()

	p, err := svc.ResolveForChain(ctx, models.ChainStellar, "GABC", "s@x.io", "wallet-7")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "GABC", p.WalletFor(models.ChainStellar))
	require.NotNil(t, p.StellarWalletID)
	assert.Equal(t, "wallet-7", *p.StellarWalletID)
	assert.Zero(t, p.TotalPoints)

	again, err := svc.ResolveForChain(ctx, models.ChainStellar, "GABC", "", "")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
}

func TestResolveForChain_LinksByEmail(t *testing.T) {
	store := memory.NewPlayerStore()
	svc := NewPlayerService(store)
	ctx := context.Background()

	evm, err := svc.CreateOrUpdateEVM(ctx, ProfileInput{WalletAddress: "0xabc", Email: "Linked@Example.com"})
	require.NoError(t, err)

	sol, err := svc.ResolveForChain(ctx, models.ChainSolana, "Sol111", "linked@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, evm.ID, sol.ID)
	assert.Equal(t, "0xabc", sol.EVMWallet())
	assert.Equal(t, "Sol111", sol.WalletFor(models.ChainSolana))
}

func TestResolveForChain_FillsMissingEmail(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerStore())
	ctx := context.Background()

	p, err := svc.ResolveForChain(ctx, models.ChainSolana, "Sol111", "", "")
	require.NoError(t, err)
	assert.Nil(t, p.Email)

	p, err = svc.ResolveForChain(ctx, models.ChainSolana, "Sol111", "late@x.io", "")
	require.NoError(t, err)
	assert.Equal(t, "late@x.io", p.EmailValue())

	p, err = svc.ResolveForChain(ctx, models.ChainSolana, "Sol111", "other@x.io", "")
	require.NoError(t, err)
	assert.Equal(t, "late@x.io", p.EmailValue(), "an existing email is never overwritten")
}

func TestResolveForChain_EmailOwnerHasOtherWallet(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerStore())
	ctx := context.Background()

	first, err := svc.ResolveForChain(ctx, models.ChainSolana, "SolA", "dup@x.io", "")
	require.NoError(t, err)

	second, err := svc.ResolveForChain(ctx, models.ChainSolana, "SolB", "dup@x.io", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPlayerService_GetAndUsername(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerStore())
	ctx := context.Background()

	_, err := svc.GetByWallet(ctx, models.ChainEVM, "0xmissing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Equal(t, "Player not found", apperrors.Message(err))

	_, err = svc.CreateOrUpdateEVM(ctx, ProfileInput{WalletAddress: "0xabc"})
	require.NoError(t, err)

	p, err := svc.UpdateUsername(ctx, "0xabc", "  neo  ")
	require.NoError(t, err)
	assert.Equal(t, "neo", *p.Username)

	_, err = svc.UpdateUsername(ctx, "0xabc", " ")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	p, err = svc.AddPoints(ctx, p.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(25), p.TotalPoints)

	_, err = svc.AddPoints(ctx, 999, 1)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
