// services/chain.go
package services

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
	"checkpoint-rewards/utils"
)

// chainAdapter captures everything that differs between chains during a
// check-in: how the ledger is filtered by wallet, what metadata a row carries,
// and how the chain is named in user-facing text.
type chainAdapter struct {
	chain models.Chain
	// metadataKey is the JSON key holding the wallet for chains that have no
	// dedicated ledger column; empty means user_wallet_address.
	metadataKey string
	// display prefixes descriptions and messages, e.g. "Solana ".
	display string
}

var chainAdapters = map[models.Chain]chainAdapter{
	models.ChainEVM:     newChainAdapter(models.ChainEVM, ""),
	models.ChainSolana:  newChainAdapter(models.ChainSolana, "solana_wallet"),
	models.ChainStellar: newChainAdapter(models.ChainStellar, "stellar_wallet"),
}

func newChainAdapter(chain models.Chain, metadataKey string) chainAdapter {
	display := ""
	if chain != models.ChainEVM {
		display = cases.Title(language.English).String(string(chain)) + " "
	}
	return chainAdapter{chain: chain, metadataKey: metadataKey, display: display}
}

func (a chainAdapter) todaysCheckins(wallet string, window utils.DayWindow) storage.ActivityFilter {
	return storage.ActivityFilter{
		ActivityType:      models.ActivityCheckpointCheckin,
		Wallet:            wallet,
		WalletMetadataKey: a.metadataKey,
		From:              window.Start,
		To:                window.End,
	}
}

func (a chainAdapter) metadata(in CheckinInput, wallet string) models.JSONMap {
	meta := models.JSONMap{"checkpoint": in.Checkpoint}
	if in.Email != "" {
		meta["email"] = in.Email
	}
	if a.metadataKey != "" {
		meta["chain"] = string(a.chain)
		meta[a.metadataKey] = wallet
		meta["player_id"] = in.Player.ID
	}
	return meta
}
