// handlers/player_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"checkpoint-rewards/models"
	"checkpoint-rewards/services"
	"checkpoint-rewards/utils"
)

type playerRequest struct {
	WalletAddress string `json:"walletAddress"`
	Email         string `json:"email"`
	Username      string `json:"username"`
}

func SetupPlayerRoutes(router fiber.Router, players *services.PlayerService) {
	router.Post("/player", func(c *fiber.Ctx) error {
		var req playerRequest
		if err := parseBody(c, &req); err != nil {
			return failWith(c, err)
		}
		if !utils.IsEVMAddress(req.WalletAddress) {
			return fail(c, fiber.StatusBadRequest, "Invalid EVM wallet address")
		}
		if req.Email != "" && !utils.IsValidEmail(req.Email) {
			return fail(c, fiber.StatusBadRequest, "Invalid email address")
		}
		if req.Username == "" {
			return fail(c, fiber.StatusBadRequest, "Username is required")
		}

		p, err := players.CreateOrUpdateEVM(c.UserContext(), services.ProfileInput{
			WalletAddress: req.WalletAddress,
			Email:         req.Email,
			Username:      req.Username,
		})
		if err != nil {
			return failWith(c, err)
		}
		return success(c, p, "")
	})

	router.Get("/player", func(c *fiber.Ctx) error {
		wallet := c.Query("walletAddress")
		if !utils.IsEVMAddress(wallet) {
			return fail(c, fiber.StatusBadRequest, "Invalid EVM wallet address")
		}
		p, err := players.GetByWallet(c.UserContext(), models.ChainEVM, wallet)
		if err != nil {
			return failWith(c, err)
		}
		return success(c, p, "")
	})

	router.Patch("/player", func(c *fiber.Ctx) error {
		var req playerRequest
		if err := parseBody(c, &req); err != nil {
			return failWith(c, err)
		}
		if !utils.IsEVMAddress(req.WalletAddress) {
			return fail(c, fiber.StatusBadRequest, "Invalid EVM wallet address")
		}
		p, err := players.UpdateUsername(c.UserContext(), req.WalletAddress, req.Username)
		if err != nil {
			return failWith(c, err)
		}
		return success(c, p, "")
	})
}
