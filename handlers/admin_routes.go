// handlers/admin_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"checkpoint-rewards/middleware"
	"checkpoint-rewards/models"
	"checkpoint-rewards/services"
)

type checkpointRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	ChainType       *string `json:"chain_type"`
	PointsValue     *int    `json:"points_value"`
	IsActive        *bool   `json:"is_active"`
	PartnerImageURL *string `json:"partner_image_url"`
}

func (r checkpointRequest) input() services.CheckpointInput {
	return services.CheckpointInput{
		Name:            r.Name,
		Description:     r.Description,
		ChainType:       r.ChainType,
		PointsValue:     r.PointsValue,
		IsActive:        r.IsActive,
		PartnerImageURL: r.PartnerImageURL,
	}
}

type checkpointView struct {
	*models.Checkpoint
	URL string `json:"url"`
}

func viewCheckpoint(c *models.Checkpoint) checkpointView {
	return checkpointView{Checkpoint: c, URL: c.URL()}
}

type eventRewardRequest struct {
	EventID         string   `json:"eventId"`
	EventName       string   `json:"eventName"`
	PointsPerHolder int64    `json:"pointsPerHolder"`
	Emails          []string `json:"emails"`
}

// SetupAdminRoutes mounts checkpoint management and event rewards. The caller
// passes a router already guarded by middleware.AdminOnly.
func SetupAdminRoutes(admin fiber.Router, checkpoints *services.CheckpointService, rewards *services.EventRewardService) {
	admin.Get("/checkpoints", func(c *fiber.Ctx) error {
		list, err := checkpoints.List(c.UserContext(), c.QueryBool("active", false))
		if err != nil {
			return failWith(c, err)
		}
		views := make([]checkpointView, 0, len(list))
		for _, cp := range list {
			views = append(views, viewCheckpoint(cp))
		}
		return success(c, views, "")
	})

	admin.Get("/checkpoints/:id", func(c *fiber.Ctx) error {
		cp, err := checkpoints.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return failWith(c, err)
		}
		return success(c, viewCheckpoint(cp), "")
	})

	admin.Post("/checkpoints", func(c *fiber.Ctx) error {
		var req checkpointRequest
		if err := parseBody(c, &req); err != nil {
			return failWith(c, err)
		}
		cp, err := checkpoints.Create(c.UserContext(), req.input(), middleware.AdminEmail(c))
		if err != nil {
			return failWith(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: viewCheckpoint(cp), Message: "Checkpoint created"})
	})

	admin.Patch("/checkpoints/:id", func(c *fiber.Ctx) error {
		var req checkpointRequest
		if err := parseBody(c, &req); err != nil {
			return failWith(c, err)
		}
		cp, err := checkpoints.Update(c.UserContext(), c.Params("id"), req.input())
		if err != nil {
			return failWith(c, err)
		}
		return success(c, viewCheckpoint(cp), "Checkpoint updated")
	})

	admin.Delete("/checkpoints/:id", func(c *fiber.Ctx) error {
		if err := checkpoints.Delete(c.UserContext(), c.Params("id")); err != nil {
			return failWith(c, err)
		}
		return success(c, nil, "Checkpoint deleted")
	})

	admin.Post("/event-rewards", func(c *fiber.Ctx) error {
		var req eventRewardRequest
		if err := parseBody(c, &req); err != nil {
			return failWith(c, err)
		}
		out, err := rewards.Award(c.UserContext(), services.EventRewardRequest{
			EventID:         req.EventID,
			EventName:       req.EventName,
			PointsPerHolder: req.PointsPerHolder,
			Emails:          req.Emails,
			AdminEmail:      middleware.AdminEmail(c),
		})
		if err != nil {
			return failWith(c, err)
		}
		return success(c, out, "Event points awarded")
	})
}
