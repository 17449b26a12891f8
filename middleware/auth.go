// middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"checkpoint-rewards/pkg/logger"
)

const adminEmailKey = "admin_email"

// AdminOnly admits requests whose X-User-Email (set by the gateway after
// login) is on the allowlist. Comparison ignores case.
func AdminOnly(emails []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		email := strings.ToLower(strings.TrimSpace(c.Get("X-User-Email")))
		if _, ok := allowed[email]; !ok || email == "" {
			logger.WithFields(logrus.Fields{
				"path":  c.Path(),
				"email": email,
			}).Warn("❌ [ADMIN] access denied")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Admin access required",
			})
		}

		c.Locals(adminEmailKey, email)
		return c.Next()
	}
}

// AdminEmail returns the address AdminOnly accepted, or "".
func AdminEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(adminEmailKey).(string)
	return email
}
