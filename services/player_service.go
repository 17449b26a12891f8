// services/player_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"checkpoint-rewards/models"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/pkg/logger"
	"checkpoint-rewards/storage"
)

// MaxVarcharLength bounds free-text profile fields.
const MaxVarcharLength = 255

// PlayerService creates, links and looks up players across chains.
type PlayerService struct {
	players storage.PlayerStore
}

func NewPlayerService(players storage.PlayerStore) *PlayerService {
	return &PlayerService{players: players}
}

// ProfileInput describes an EVM create-or-update request.
type ProfileInput struct {
	WalletAddress string
	Email         string
	Username      string
}

// CreateOrUpdateEVM updates the email/username of the player owning the EVM
// wallet, or creates one.
func (s *PlayerService) CreateOrUpdateEVM(ctx context.Context, in ProfileInput) (*models.Player, error) {
	if in.WalletAddress == "" {
		return nil, apperrors.Validation("Wallet address is required")
	}
	username := truncate(strings.TrimSpace(in.Username), MaxVarcharLength)
	email := strings.TrimSpace(in.Email)

	existing, err := s.players.GetByWallet(ctx, models.ChainEVM, in.WalletAddress)
	switch {
	case err == nil:
		update := storage.PlayerUpdate{}
		if email != "" && email != existing.EmailValue() {
			update.Email = &email
		}
		if username != "" && (existing.Username == nil || *existing.Username != username) {
			update.Username = &username
		}
		if update.Empty() {
			return existing, nil
		}
		return s.update(ctx, existing.ID, update)
	case errors.Is(err, storage.ErrNotFound):
		p := &models.Player{
			WalletAddress: models.StringPtr(in.WalletAddress),
			Email:         models.StringPtr(email),
			Username:      models.StringPtr(username),
		}
		if err := s.players.Create(ctx, p); err != nil {
			return nil, storeError("Failed to create player", err)
		}
		return p, nil
	default:
		return nil, storeError("Failed to look up player", err)
	}
}

// ResolveForChain finds or creates the player behind a wallet on chain.
//
// A player already owning the wallet gets a missing email (and Stellar wallet id)
// filled in. Otherwise a player with the same email is linked to the wallet, and
// failing that a new player is created with zero points.
func (s *PlayerService) ResolveForChain(ctx context.Context, chain models.Chain, wallet, email, stellarWalletID string) (*models.Player, error) {
	if wallet == "" {
		return nil, apperrors.Validation("Wallet address is required")
	}
	if chain == models.ChainEVM {
		return s.CreateOrUpdateEVM(ctx, ProfileInput{WalletAddress: wallet, Email: email})
	}
	if chain != models.ChainSolana && chain != models.ChainStellar {
		return nil, apperrors.Validation("Invalid chain. Must be one of: evm, solana, stellar")
	}
	email = strings.TrimSpace(email)

	log := logger.WithFields(logrus.Fields{"chain": chain, "wallet": wallet})

	existing, err := s.players.GetByWallet(ctx, chain, wallet)
	if err == nil {
		update := storage.PlayerUpdate{}
		if email != "" && existing.Email == nil {
			update.Email = &email
		}
		if chain == models.ChainStellar && stellarWalletID != "" && existing.StellarWalletID == nil {
			update.StellarWalletID = &stellarWalletID
		}
		if update.Empty() {
			return existing, nil
		}
		return s.update(ctx, existing.ID, update)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, storeError("Failed to look up player", err)
	}

	if email != "" {
		byEmail, err := s.players.GetByEmail(ctx, email)
		switch {
		case err == nil:
			if byEmail.WalletFor(chain) == "" {
				log.WithField("player_id", byEmail.ID).Info("linking wallet to existing player by email")
				return s.update(ctx, byEmail.ID, walletUpdate(chain, wallet, stellarWalletID))
			}
			// The email's player already has another wallet on this chain; fall through and create.
		case !errors.Is(err, storage.ErrNotFound):
			return nil, storeError("Failed to look up player by email", err)
		}
	}

	p := &models.Player{Email: models.StringPtr(email)}
	switch chain {
	case models.ChainSolana:
		p.SolanaWalletAddress = models.StringPtr(wallet)
	case models.ChainStellar:
		p.StellarWalletAddress = models.StringPtr(wallet)
		p.StellarWalletID = models.StringPtr(stellarWalletID)
	}
	if err := s.players.Create(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a race with a concurrent request for the same wallet.
			if again, getErr := s.players.GetByWallet(ctx, chain, wallet); getErr == nil {
				return again, nil
			}
		}
		return nil, storeError("Failed to create player", err)
	}
	log.WithField("player_id", p.ID).Info("created player")
	return p, nil
}

// GetByWallet returns a NOT_FOUND AppError when no player owns the wallet.
func (s *PlayerService) GetByWallet(ctx context.Context, chain models.Chain, wallet string) (*models.Player, error) {
	p, err := s.players.GetByWallet(ctx, chain, wallet)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Player not found")
		}
		return nil, storeError("Failed to look up player", err)
	}
	return p, nil
}

// UpdateUsername changes the username of the player owning an EVM wallet.
func (s *PlayerService) UpdateUsername(ctx context.Context, wallet, username string) (*models.Player, error) {
	username = truncate(strings.TrimSpace(username), MaxVarcharLength)
	if username == "" {
		return nil, apperrors.Validation("Username is required")
	}
	p, err := s.GetByWallet(ctx, models.ChainEVM, wallet)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, p.ID, storage.PlayerUpdate{Username: &username})
}

// AddPoints applies an additive point increment.
func (s *PlayerService) AddPoints(ctx context.Context, playerID int64, delta int64) (*models.Player, error) {
	p, err := s.players.AddPoints(ctx, playerID, delta)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Player not found")
		}
		return nil, storeError("Failed to update player points", err)
	}
	return p, nil
}

func (s *PlayerService) update(ctx context.Context, id int64, u storage.PlayerUpdate) (*models.Player, error) {
	p, err := s.players.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, apperrors.New(apperrors.CodeConflict, "Wallet is already linked to another player", err)
		}
		return nil, storeError("Failed to update player", err)
	}
	return p, nil
}

func walletUpdate(chain models.Chain, wallet, stellarWalletID string) storage.PlayerUpdate {
	u := storage.PlayerUpdate{}
	switch chain {
	case models.ChainEVM:
		u.WalletAddress = &wallet
	case models.ChainSolana:
		u.SolanaWalletAddress = &wallet
	case models.ChainStellar:
		u.StellarWalletAddress = &wallet
		if stellarWalletID != "" {
			u.StellarWalletID = &stellarWalletID
		}
	}
	return u
}

func storeError(message string, err error) error {
	logger.WithFields(logrus.Fields{"error": err}).Error(message)
	return apperrors.New(apperrors.CodeStore, message, err)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
