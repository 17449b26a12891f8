// handlers/checkin_routes.go
package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"checkpoint-rewards/models"
	"checkpoint-rewards/services"
	"checkpoint-rewards/utils"
)

type checkinRequest struct {
	Chain         *string `json:"chain"`
	WalletAddress string  `json:"walletAddress"`
	Email         string  `json:"email"`
	Checkpoint    string  `json:"checkpoint"`
}

type solanaCheckinRequest struct {
	SolanaWalletAddress string `json:"solanaWalletAddress"`
	Email               string `json:"email"`
	Checkpoint          string `json:"checkpoint"`
}

type stellarCheckinRequest struct {
	StellarWalletAddress string `json:"stellarWalletAddress"`
	StellarWalletID      string `json:"stellarWalletId"`
	Email                string `json:"email"`
	Checkpoint           string `json:"checkpoint"`
}

type checkinResponse struct {
	Player               *models.Player `json:"player"`
	PointsAwarded        int64          `json:"pointsAwarded"`
	PointsEarnedToday    int64          `json:"pointsEarnedToday"`
	DailyRewardClaimed   bool           `json:"dailyRewardClaimed"`
	CheckpointActivityID int64          `json:"checkpointActivityId"`
}

// CheckinHandler serves every check-in route through one shared flow:
// resolve the player for the chain, then process the check-in.
type CheckinHandler struct {
	players  *services.PlayerService
	checkins *services.CheckinService
}

func NewCheckinHandler(players *services.PlayerService, checkins *services.CheckinService) *CheckinHandler {
	return &CheckinHandler{players: players, checkins: checkins}
}

func SetupCheckinRoutes(router fiber.Router, h *CheckinHandler) {
	router.Post("/checkin", h.Checkin)
	router.Post("/evm-checkin", h.EVMCheckin)
	router.Post("/solana-checkin", h.SolanaCheckin)
	router.Post("/stellar-checkin", h.StellarCheckin)
	router.Get("/checkin-status", h.Status)
}

// Checkin accepts {chain?, walletAddress, email?, checkpoint}. With a chain the
// wallet must be well-formed for that chain; without one the EVM format applies.
func (h *CheckinHandler) Checkin(c *fiber.Ctx) error {
	var req checkinRequest
	if err := parseBody(c, &req); err != nil {
		return failWith(c, err)
	}

	chain := models.ChainEVM
	if req.Chain != nil {
		parsed, ok := models.ParseChain(*req.Chain)
		if !ok {
			return fail(c, fiber.StatusBadRequest, "Invalid chain. Must be one of: evm, solana, stellar")
		}
		chain = parsed
	}

	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if req.WalletAddress == "" {
		return fail(c, fiber.StatusBadRequest, "Wallet address is required")
	}
	if strings.TrimSpace(req.Checkpoint) == "" {
		return fail(c, fiber.StatusBadRequest, "Checkpoint is required")
	}
	if !utils.ValidWalletAddress(chain, req.WalletAddress) {
		return fail(c, fiber.StatusBadRequest, "Invalid "+chainLabel(chain)+" wallet address format")
	}
	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		return fail(c, fiber.StatusBadRequest, "Invalid email address")
	}

	return h.process(c, chain, req.WalletAddress, req.Email, req.Checkpoint, "")
}

func (h *CheckinHandler) EVMCheckin(c *fiber.Ctx) error {
	var req checkinRequest
	if err := parseBody(c, &req); err != nil {
		return failWith(c, err)
	}
	if req.WalletAddress == "" || req.Checkpoint == "" {
		return fail(c, fiber.StatusBadRequest, "Wallet address and checkpoint are required")
	}
	return h.process(c, models.ChainEVM, req.WalletAddress, req.Email, req.Checkpoint, "")
}

func (h *CheckinHandler) SolanaCheckin(c *fiber.Ctx) error {
	var req solanaCheckinRequest
	if err := parseBody(c, &req); err != nil {
		return failWith(c, err)
	}
	if req.SolanaWalletAddress == "" || req.Checkpoint == "" {
		return fail(c, fiber.StatusBadRequest, "Solana wallet address and checkpoint are required")
	}
	return h.process(c, models.ChainSolana, req.SolanaWalletAddress, req.Email, req.Checkpoint, "")
}

func (h *CheckinHandler) StellarCheckin(c *fiber.Ctx) error {
	var req stellarCheckinRequest
	if err := parseBody(c, &req); err != nil {
		return failWith(c, err)
	}
	if req.StellarWalletAddress == "" || req.Checkpoint == "" {
		return fail(c, fiber.StatusBadRequest, "Stellar wallet address and checkpoint are required")
	}
	return h.process(c, models.ChainStellar, req.StellarWalletAddress, req.Email, req.Checkpoint, req.StellarWalletID)
}

func (h *CheckinHandler) process(c *fiber.Ctx, chain models.Chain, wallet, email, checkpoint, stellarWalletID string) error {
	ctx := c.UserContext()

	player, err := h.players.ResolveForChain(ctx, chain, wallet, email, stellarWalletID)
	if err != nil {
		return failWith(c, err)
	}

	res, err := h.checkins.ProcessCheckin(ctx, services.CheckinInput{
		Player:        player,
		Checkpoint:    checkpoint,
		Email:         email,
		Chain:         chain,
		WalletAddress: wallet,
	})
	if err != nil {
		return failWith(c, err)
	}

	return success(c, checkinResponse{
		Player:               res.Player,
		PointsAwarded:        res.PointsAwarded,
		PointsEarnedToday:    res.PointsEarnedToday,
		DailyRewardClaimed:   res.DailyRewardClaimed,
		CheckpointActivityID: res.CheckpointActivityID,
	}, res.Message)
}

func (h *CheckinHandler) Status(c *fiber.Ctx) error {
	st, err := h.checkins.Status(c.UserContext(), c.Query("address"), c.Query("checkpoint"))
	if err != nil {
		return failWith(c, err)
	}
	return success(c, st, "")
}

func chainLabel(chain models.Chain) string {
	switch chain {
	case models.ChainSolana:
		return "Solana"
	case models.ChainStellar:
		return "Stellar"
	default:
		return "EVM"
	}
}
