package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/auth"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/usercontext"
)

// RequireAdmin authenticates requests carrying an admin bearer token.
func RequireAdmin(issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if issuer == nil || !issuer.Enabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Admin access is not configured"})
		}

		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing admin token"})
		}

		claims, err := issuer.ValidateToken(token)
		if err != nil {
			log.Warnf("[Auth] Rejected admin token from %s: %v", c.IP(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid admin token"})
		}

		usercontext.SetAdmin(c, claims)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}
