// middleware/admin_context.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminContextMiddleware extracts the acting admin identity set by the
// Gateway. The id is an opaque label (email or identifier) carried into
// every audit entry; authorization itself is enforced upstream — this
// service only refuses mutations with no identity attached.
func AdminContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID := c.Get("X-Admin-ID")
		rolesStr := c.Get("X-Admin-Roles")

		if adminID == "" {
			log.Printf("❌ [ADMIN_CTX] X-Admin-ID required but missing on admin route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Admin-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		// Attach to ctx for handlers
		c.Locals("admin_id", adminID)
		c.Locals("admin_roles", roles)

		return c.Next()
	}
}
