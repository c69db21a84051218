package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/cache"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/constants"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/database"
)

// HttpRouter serves the operational endpoints outside /api.
type HttpRouter struct {
	MonitorUser     string
	MonitorPassword string
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, handleHealthz)

	// fiber metrics, only when a password is configured
	if h.MonitorPassword != "" {
		app.Get(constants.MetricsRoute, basicauth.New(basicauth.Config{
			Users: map[string]string{
				h.MonitorUser: h.MonitorPassword,
			},
		}), monitor.New(monitor.Config{Title: "GrowthPartner AI Metrics"}))
	}
}

func NewHttpRouter(monitorUser, monitorPassword string) *HttpRouter {
	return &HttpRouter{MonitorUser: monitorUser, MonitorPassword: monitorPassword}
}

// handleHealthz reports liveness along with the state of the database and
// cache connections. Only an unreachable database fails the check.
func handleHealthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"database": "ok", "cache": "disabled"}
	status := fiber.StatusOK

	if db := database.GetDB(); db == nil {
		checks["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}

	if client := cache.GetClient(); client != nil {
		checks["cache"] = "ok"
		if err := client.Ping(ctx).Err(); err != nil {
			checks["cache"] = "unavailable"
		}
	}

	ok := status == fiber.StatusOK
	return c.Status(status).JSON(fiber.Map{"ok": ok, "checks": checks})
}
