package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yfkiwi/growthPartnerAI/app/controllers"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/auth"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/constants"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/middleware"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/ratelimit"
)

// WebhookPath is exempt from rate limiting; the gateway retries on 429.
const WebhookPath = constants.WebhookRoute

type ApiRouter struct {
	Issuer         *auth.Issuer
	RateLimit      config.RateLimitConfig
	LimiterStorage fiber.Storage
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	skipWebhook := func(c *fiber.Ctx) bool { return c.Path() == WebhookPath }
	api := app.Group(constants.ApiPrefix, ratelimit.New(h.RateLimit, h.LimiterStorage, controllers.ClientIP, skipWebhook))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "GrowthPartner AI API",
		})
	})

	requireAdmin := middleware.RequireAdmin(h.Issuer)

	// submissions
	api.Post("/submissions", controllers.HandleCreateSubmission)
	api.Get("/submissions", requireAdmin, controllers.HandleListSubmissions)
	api.Get("/submissions/by-token/:token", controllers.HandleGetSubmissionByToken)
	api.Get("/submissions/:id", controllers.HandleGetSubmission)

	// bundles
	api.Post("/bundles", controllers.HandleCreateBundle)
	api.Get("/bundles/:bundleId", controllers.HandleGetBundle)

	// payments
	stripe := api.Group("/stripe")
	stripe.Post("/", controllers.HandleStripePaymentIntent)
	stripe.Post("/checkout", controllers.HandleStripeCheckout)
	stripe.Get("/session/:id", controllers.HandleStripeSession)
	stripe.Post("/webhook", controllers.HandleStripeWebhook)
	stripe.Get("/webhook", controllers.HandleStripeWebhookPing)

	// admin
	admin := api.Group("/admin")
	admin.Post("/login", controllers.HandleAdminLogin)
	admin.Patch("/submissions", requireAdmin, controllers.HandleAdminUpdateStatus)
	admin.Post("/update-report", requireAdmin, controllers.HandleAdminUpdateReport)
	admin.Post("/send-email", requireAdmin, controllers.HandleAdminSendEmail)
	admin.Post("/submissions/:id/report", requireAdmin, controllers.HandleAdminUploadReport)
	admin.Get("/stats", requireAdmin, controllers.HandleAdminStats)
}

func NewApiRouter(issuer *auth.Issuer, rateLimit config.RateLimitConfig, storage fiber.Storage) *ApiRouter {
	return &ApiRouter{Issuer: issuer, RateLimit: rateLimit, LimiterStorage: storage}
}
