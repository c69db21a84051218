package controllers

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/auth"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/billing"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/notify"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/reportstore"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/statistics"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
)

// Dependencies are the services the controllers are built from.
type Dependencies struct {
	Submissions *submissions.Service
	Billing     *billing.Service
	Notifier    *notify.Notifier
	Publisher   *reportstore.Publisher
	Statistics  *statistics.Service
	Issuer      *auth.Issuer
}

// Global controller instances
var (
	mu                   sync.RWMutex
	submissionController *SubmissionController
	billingController    *BillingController
	adminController      *AdminController
)

// InitializeControllers builds the global controllers from deps. It is called
// once at startup before the router is installed.
func InitializeControllers(deps Dependencies) {
	mu.Lock()
	defer mu.Unlock()
	submissionController = NewSubmissionController(deps.Submissions, deps.Notifier)
	billingController = NewBillingController(deps.Billing)
	adminController = NewAdminController(deps)
}

func GetSubmissionController() *SubmissionController {
	mu.RLock()
	defer mu.RUnlock()
	return submissionController
}

func GetBillingController() *BillingController {
	mu.RLock()
	defer mu.RUnlock()
	return billingController
}

func GetAdminController() *AdminController {
	mu.RLock()
	defer mu.RUnlock()
	return adminController
}

// Adapter functions used by the router

func HandleCreateSubmission(c *fiber.Ctx) error {
	return GetSubmissionController().HandleCreate(c)
}

func HandleGetSubmission(c *fiber.Ctx) error {
	return GetSubmissionController().HandleGet(c)
}

func HandleGetSubmissionByToken(c *fiber.Ctx) error {
	return GetSubmissionController().HandleGetByToken(c)
}

func HandleListSubmissions(c *fiber.Ctx) error {
	return GetSubmissionController().HandleList(c)
}

func HandleCreateBundle(c *fiber.Ctx) error {
	return GetSubmissionController().HandleCreateBundle(c)
}

func HandleGetBundle(c *fiber.Ctx) error {
	return GetSubmissionController().HandleGetBundle(c)
}

func HandleStripeCheckout(c *fiber.Ctx) error {
	return GetBillingController().HandleCheckout(c)
}

func HandleStripePaymentIntent(c *fiber.Ctx) error {
	return GetBillingController().HandlePaymentIntent(c)
}

func HandleStripeSession(c *fiber.Ctx) error {
	return GetBillingController().HandleSession(c)
}

func HandleStripeWebhook(c *fiber.Ctx) error {
	return GetBillingController().HandleWebhook(c)
}

func HandleStripeWebhookPing(c *fiber.Ctx) error {
	return GetBillingController().HandleWebhookPing(c)
}

func HandleAdminLogin(c *fiber.Ctx) error {
	return GetAdminController().HandleLogin(c)
}

func HandleAdminUpdateStatus(c *fiber.Ctx) error {
	return GetAdminController().HandleUpdateStatus(c)
}

func HandleAdminUpdateReport(c *fiber.Ctx) error {
	return GetAdminController().HandleUpdateReport(c)
}

func HandleAdminSendEmail(c *fiber.Ctx) error {
	return GetAdminController().HandleSendEmail(c)
}

func HandleAdminUploadReport(c *fiber.Ctx) error {
	return GetAdminController().HandleUploadReport(c)
}

func HandleAdminStats(c *fiber.Ctx) error {
	return GetAdminController().HandleStats(c)
}
