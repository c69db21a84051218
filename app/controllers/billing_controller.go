package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/billing"
)

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// BillingController exposes checkout creation and the payment webhook.
type BillingController struct {
	billing *billing.Service
}

func NewBillingController(svc *billing.Service) *BillingController {
	return &BillingController{billing: svc}
}

type checkoutRequest struct {
	SubmissionID string `json:"submission_id" validate:"max=64"`
	PriceType    string `json:"price_type"`
}

type paymentIntentRequest struct {
	SubmissionID    string `json:"submission_id"`
	SubmissionIDAlt string `json:"submissionId"`
	PriceType       string `json:"price_type"`
	PriceTypeAlt    string `json:"priceType"`
}

// HandleCheckout handles POST /api/stripe/checkout
func (bc *BillingController) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	session, err := bc.billing.CreateCheckout(c.UserContext(), req.SubmissionID, req.PriceType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": session.URL, "id": session.ID})
}

// HandlePaymentIntent handles POST /api/stripe
func (bc *BillingController) HandlePaymentIntent(c *fiber.Ctx) error {
	var req paymentIntentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	secret, err := bc.billing.CreatePaymentIntent(c.UserContext(),
		firstNonEmpty(req.SubmissionID, req.SubmissionIDAlt),
		firstNonEmpty(req.PriceType, req.PriceTypeAlt),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"client_secret": secret})
}

// HandleSession handles GET /api/stripe/session/:id
func (bc *BillingController) HandleSession(c *fiber.Ctx) error {
	session, err := bc.billing.GetCheckoutSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":             session.ID,
		"status":         session.Status,
		"payment_status": session.PaymentStatus,
		"customer_email": session.CustomerEmail,
		"metadata":       session.Metadata,
	})
}

// HandleWebhook handles POST /api/stripe/webhook
func (bc *BillingController) HandleWebhook(c *fiber.Ctx) error {
	signature := c.Get(StripeSignatureHeader)
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing signature"})
	}

	// the signature covers the exact bytes, so copy before fiber reuses the buffer
	payload := append([]byte(nil), c.Body()...)

	ack, err := bc.billing.HandleWebhook(c.UserContext(), payload, signature)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{"received": true}
	if ack.Duplicate {
		log.Infof("[Billing] Duplicate delivery of event %s acknowledged", ack.EventID)
		resp["duplicate"] = true
	}
	if ack.Ignored {
		resp["ignored"] = true
	}
	return c.JSON(resp)
}

// HandleWebhookPing handles GET /api/stripe/webhook
func (bc *BillingController) HandleWebhookPing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
