// handlers/event_routes.go
package handlers

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/services"
	"checkpoint-rewards/utils"
)

type EventHandler struct {
	events *services.EventQueryService
}

func NewEventHandler(events *services.EventQueryService) *EventHandler {
	return &EventHandler{events: events}
}

func SetupEventRoutes(router fiber.Router, h *EventHandler) {
	router.Get("/checkin-events", h.List)
	router.Post("/checkin-events/invalidate-cache", h.InvalidateCache)
}

// SetupEventAdminRoutes mounts the export archive on an admin-guarded router.
func SetupEventAdminRoutes(admin fiber.Router, h *EventHandler) {
	admin.Post("/checkin-events/export", h.Archive)
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	q, err := parseEventQuery(c)
	if err != nil {
		return failWith(c, err)
	}

	page, err := h.events.List(c.UserContext(), q)
	if err != nil {
		return failWith(c, apperrors.New(apperrors.CodeRPC, "Failed to fetch CheckIn events", err))
	}

	if c.Query("export") == "csv" {
		body, err := h.events.CSV(page.Events)
		if err != nil {
			return failWith(c, apperrors.New(apperrors.CodeStore, "Failed to build CSV", err))
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, h.events.ExportFilename()))
		c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return c.Status(fiber.StatusOK).Send(body)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"events":     page.Events,
		"pagination": page.Pagination,
		"cache":      page.Cache,
	})
}

func (h *EventHandler) InvalidateCache(c *fiber.Ctx) error {
	before, after := h.events.InvalidateCache()
	return success(c, fiber.Map{"before": before, "after": after}, "Cache invalidated successfully")
}

func (h *EventHandler) Archive(c *fiber.Ctx) error {
	q, err := parseEventQuery(c)
	if err != nil {
		return failWith(c, err)
	}
	res, err := h.events.Archive(c.UserContext(), q)
	if err != nil {
		return failWith(c, err)
	}
	return success(c, res, "Export uploaded")
}

func parseEventQuery(c *fiber.Ctx) (services.EventQuery, error) {
	q := services.EventQuery{
		Limit:        c.QueryInt("limit", services.DefaultEventPageLimit),
		Offset:       c.QueryInt("offset", 0),
		ForceRefresh: c.Query("refresh") == "true",
	}

	if user := c.Query("user"); user != "" {
		if !utils.IsEVMAddress(user) {
			return q, apperrors.Validation("Invalid user address")
		}
		addr := common.HexToAddress(user)
		q.User = &addr
	}

	var err error
	if q.Checkpoint, err = bigQuery(c, "checkpoint"); err != nil {
		return q, err
	}
	if q.FromBlock, err = blockQuery(c, "fromBlock", "earliest"); err != nil {
		return q, err
	}
	if q.ToBlock, err = blockQuery(c, "toBlock", "latest"); err != nil {
		return q, err
	}
	return q, nil
}

func bigQuery(c *fiber.Ctx, key string) (*big.Int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return nil, apperrors.Validation("Invalid " + key)
	}
	return v, nil
}

// blockQuery parses a block number; the named tag (earliest/latest) maps to nil.
func blockQuery(c *fiber.Ctx, key, tag string) (*big.Int, error) {
	raw := c.Query(key)
	if raw == "" || raw == tag {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + key)
	}
	return new(big.Int).SetUint64(n), nil
}
