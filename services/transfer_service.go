// services/transfer_service.go
package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"checkpoint-rewards/observability"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/pkg/logger"
	"checkpoint-rewards/utils"
)

// TokenReader reads reward-token state; *blockchain.Client satisfies it.
type TokenReader interface {
	RewardToken(ctx context.Context, rewardContract common.Address) (common.Address, error)
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

type TransferRequest struct {
	FromAddress string
	ToAddress   string
	Amount      string
}

type TransferResult struct {
	TransactionHash string `json:"transactionHash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Amount          string `json:"amount"`
}

type TokenInfo struct {
	TokenAddress *string `json:"tokenAddress"`
	Balance      string  `json:"balance"`
	Decimals     uint8   `json:"decimals"`
}

type TransferService struct {
	tokens         TokenReader
	rewardContract common.Address
	serverKey      *ecdsa.PrivateKey
	guard          *TransferGuard
	metrics        *observability.Metrics
}

// NewTransferService parses the server key up front so a malformed key fails at
// startup. tokens may be nil when no RPC endpoint is configured.
func NewTransferService(tokens TokenReader, rewardContract, serverPrivateKey string, guard *TransferGuard, metrics *observability.Metrics) (*TransferService, error) {
	s := &TransferService{
		tokens:  tokens,
		guard:   guard,
		metrics: metrics,
	}
	if guard == nil {
		s.guard = NewTransferGuard()
	}
	if rewardContract != "" {
		if !utils.IsEVMAddress(rewardContract) {
			return nil, fmt.Errorf("invalid reward contract address %q", rewardContract)
		}
		s.rewardContract = common.HexToAddress(rewardContract)
	}
	if serverPrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(serverPrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid server private key: %w", err)
		}
		s.serverKey = key
		logger.WithFields(logrus.Fields{
			"server_address": crypto.PubkeyToAddress(key.PublicKey).Hex(),
		}).Info("transfer service loaded server key")
	}
	return s, nil
}

// Transfer validates the request and runs the transfer under the per-address guard.
func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	from := strings.TrimSpace(req.FromAddress)
	to := strings.TrimSpace(req.ToAddress)
	amountStr := strings.TrimSpace(req.Amount)

	if from == "" || to == "" || amountStr == "" {
		return nil, apperrors.Validation("Missing required fields: fromAddress, toAddress, amount")
	}
	if strings.EqualFold(from, to) {
		return nil, apperrors.Validation("Cannot transfer to the same address")
	}
	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, apperrors.Validation("Amount must be greater than 0")
	}
	if !utils.IsEVMAddress(from) || !utils.IsEVMAddress(to) {
		return nil, apperrors.Validation("Invalid address format")
	}

	res, err := s.guard.Run(from, func() (*TransferResult, error) {
		return s.performTransfer(ctx, common.HexToAddress(from), common.HexToAddress(to), amount)
	})
	switch {
	case err == nil:
		s.metrics.ObserveTransfer("ok")
	case apperrors.Is(err, apperrors.CodeRateLimited):
		s.metrics.ObserveTransfer("conflict")
	default:
		s.metrics.ObserveTransfer("error")
	}
	return res, err
}

func (s *TransferService) performTransfer(ctx context.Context, from, to common.Address, amount *big.Int) (*TransferResult, error) {
	if s.serverKey == nil || s.tokens == nil {
		return nil, apperrors.New(apperrors.CodeConfig, "Server configuration missing", nil)
	}

	token, err := s.tokens.RewardToken(ctx, s.rewardContract)
	if err != nil {
		return nil, err
	}
	if token == (common.Address{}) {
		return nil, apperrors.Validation("No reward token configured")
	}

	balance, err := s.tokens.BalanceOf(ctx, token, from)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		return nil, apperrors.Validation("Insufficient token balance")
	}

	// The server key cannot sign for the sender.
	logger.WithFields(logrus.Fields{
		"from":   from.Hex(),
		"to":     to.Hex(),
		"amount": amount.String(),
	}).Warn("server-side transfer requested")
	return nil, apperrors.New(apperrors.CodeConfig,
		"Direct server transfers not supported. Use client-side signing instead.", nil)
}

// TokenInfo reports the reward token and the user's balance of it.
func (s *TransferService) TokenInfo(ctx context.Context, user string) (*TokenInfo, error) {
	if user == "" {
		return nil, apperrors.Validation("User address required")
	}
	if !utils.IsEVMAddress(user) {
		return nil, apperrors.Validation("Invalid address format")
	}
	if s.tokens == nil {
		return nil, apperrors.New(apperrors.CodeConfig, "RPC not configured", nil)
	}

	token, err := s.tokens.RewardToken(ctx, s.rewardContract)
	if err != nil {
		return nil, err
	}
	if token == (common.Address{}) {
		return &TokenInfo{TokenAddress: nil, Balance: "0", Decimals: 18}, nil
	}

	balance, err := s.tokens.BalanceOf(ctx, token, common.HexToAddress(user))
	if err != nil {
		return nil, err
	}
	decimals, err := s.tokens.Decimals(ctx, token)
	if err != nil {
		return nil, err
	}

	addr := token.Hex()
	return &TokenInfo{TokenAddress: &addr, Balance: balance.String(), Decimals: decimals}, nil
}
