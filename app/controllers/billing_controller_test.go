package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/billing"
)

func TestHandleStripeCheckout(t *testing.T) {
	env := newTestEnv(t)
	s := env.seedSubmission(t, models.ReportTypeCompetitor)

	status, body := env.do(t, fiber.MethodPost, "/api/stripe/checkout", fiber.Map{
		"submission_id": s.ID,
		"price_type":    "single",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", body["url"])

	require.Len(t, env.gateway.checkouts, 1)
	assert.Equal(t, s.ID, env.gateway.checkouts[0].Metadata[billing.MetadataSubmissionID])

	status, body = env.do(t, fiber.MethodPost, "/api/stripe/checkout", fiber.Map{
		"submission_id": s.ID,
		"price_type":    "gold",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "submission_id and valid price_type are required", body["error"])

	status, _ = env.do(t, fiber.MethodPost, "/api/stripe/checkout", fiber.Map{
		"submission_id": "missing",
		"price_type":    "bundle",
	})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleStripePaymentIntentAndSession(t *testing.T) {
	env := newTestEnv(t)
	s := env.seedSubmission(t, models.ReportTypeCompetitor)

	status, body := env.do(t, fiber.MethodPost, "/api/stripe", fiber.Map{
		"submissionId": s.ID,
		"priceType":    "bundle",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "pi_test_secret", body["client_secret"])

	status, body = env.do(t, fiber.MethodGet, "/api/stripe/session/cs_test_9", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "cs_test_9", body["id"])
	assert.Equal(t, "paid", body["payment_status"])
	assert.Equal(t, "founder@example.com", body["customer_email"])
}

func TestHandleStripeWebhook(t *testing.T) {
	env := newTestEnv(t)
	s := env.seedSubmission(t, models.ReportTypeValidation)
	metadata := map[string]string{
		billing.MetadataSubmissionID: s.ID,
		billing.MetadataPriceType:    "single",
	}

	req, payload := signedWebhook(t, "evt_single_1", metadata)
	status, body := env.send(t, req)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["received"])
	assert.NotContains(t, body, "duplicate")

	got := env.reload(t, s.ID)
	assert.Equal(t, models.PaymentStatusPaidSingle, got.PaymentStatus)
	require.NotNil(t, got.StripePaymentIntentID)
	assert.Equal(t, "pi_evt_single_1", *got.StripePaymentIntentID)

	// redelivery of the same event
	status, body = env.send(t, webhookRequest(payload, testWebhookSecret))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, models.PaymentStatusPaidSingle, env.reload(t, s.ID).PaymentStatus)
}

func TestHandleStripeWebhookRejects(t *testing.T) {
	env := newTestEnv(t)
	s := env.seedSubmission(t, models.ReportTypeValidation)
	_, payload := signedWebhook(t, "evt_forged", map[string]string{
		billing.MetadataSubmissionID: s.ID,
		billing.MetadataPriceType:    "single",
	})

	unsigned := httptest.NewRequest(fiber.MethodPost, "/api/stripe/webhook", strings.NewReader(string(payload)))
	status, body := env.send(t, unsigned)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Missing signature", body["error"])

	status, body = env.send(t, webhookRequest(payload, "whsec_wrong"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid signature", body["error"])

	assert.Equal(t, models.PaymentStatusFree, env.reload(t, s.ID).PaymentStatus)
	var events int64
	require.NoError(t, env.db.Model(&models.PaymentEvent{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestHandleStripeWebhookMissingSubmissionAsksForRetry(t *testing.T) {
	env := newTestEnv(t)

	req, _ := signedWebhook(t, "evt_orphan", map[string]string{
		billing.MetadataSubmissionID: "00000000-0000-0000-0000-000000000000",
		billing.MetadataPriceType:    "single",
	})
	status, body := env.send(t, req)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Webhook handling failed", body["error"])
}

func TestHandleStripeWebhookPing(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, fiber.MethodGet, "/api/stripe/webhook", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}
