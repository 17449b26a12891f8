// handlers/transfer_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"checkpoint-rewards/services"
)

type transferRequest struct {
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Amount      string `json:"amount"`
}

func SetupTransferRoutes(router fiber.Router, transfers *services.TransferService) {
	router.Get("/transfer-tokens", func(c *fiber.Ctx) error {
		info, err := transfers.TokenInfo(c.UserContext(), c.Query("userAddress"))
		if err != nil {
			return failWith(c, err)
		}
		return success(c, info, "")
	})

	router.Post("/transfer-tokens", func(c *fiber.Ctx) error {
		var req transferRequest
		if err := parseBody(c, &req); err != nil {
			return failWith(c, err)
		}
		res, err := transfers.Transfer(c.UserContext(), services.TransferRequest{
			FromAddress: req.FromAddress,
			ToAddress:   req.ToAddress,
			Amount:      req.Amount,
		})
		if err != nil {
			return failWith(c, err)
		}
		return success(c, res, "Transfer submitted")
	})
}
