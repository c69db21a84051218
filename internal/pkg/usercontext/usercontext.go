package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/auth"
)

// SetAdmin records verified admin claims on the request.
func SetAdmin(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(KeyAdminClaims, claims)
	c.Locals(KeyIsAdmin, true)
}

// IsAdmin checks if the request carries a verified admin token
func IsAdmin(c *fiber.Ctx) bool {
	v, ok := c.Locals(KeyIsAdmin).(bool)
	return ok && v
}

// AdminClaims returns the verified claims, or nil for anonymous requests.
func AdminClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(KeyAdminClaims).(*auth.Claims)
	return claims
}
