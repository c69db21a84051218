package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfkiwi/growthPartnerAI/app/models"
)

func TestHandleCreateSubmission(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, fiber.MethodPost, "/api/submissions", fiber.Map{
		"email":      "founder@example.com",
		"idea":       "A marketplace for used lab equipment",
		"reportType": models.ReportTypeValidation,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotContains(t, body, "message")

	submission := body["submission"].(map[string]interface{})
	assert.Equal(t, models.PaymentStatusFree, submission["payment_status"])
	assert.Equal(t, models.SubmissionStatusPending, submission["status"])
	assert.Equal(t, body["access_token"], submission["access_token"])
}

func TestHandleCreateSubmissionInBundle(t *testing.T) {
	env := newTestEnv(t)
	bundle := &models.Bundle{UserEmail: "founder@example.com", PaymentStatus: models.BundlePaymentPaid}
	require.NoError(t, env.db.Create(bundle).Error)

	status, body := env.do(t, fiber.MethodPost, "/api/submissions", fiber.Map{
		"email":       "founder@example.com",
		"idea":        "idea",
		"report_type": models.ReportTypeMVP,
		"bundle_id":   bundle.ID,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Report will be ready in 24h", body["message"])
	submission := body["submission"].(map[string]interface{})
	assert.Equal(t, models.PaymentStatusPaidBundle, submission["payment_status"])
	assert.Equal(t, bundle.ID, submission["bundle_id"])

	// same type twice in one bundle
	status, body = env.do(t, fiber.MethodPost, "/api/submissions", fiber.Map{
		"email":       "founder@example.com",
		"idea":        "idea",
		"report_type": models.ReportTypeMVP,
		"bundleId":    bundle.ID,
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Report type already used in this bundle", body["error"])
}

func TestHandleCreateSubmissionErrors(t *testing.T) {
	env := newTestEnv(t)
	unpaid := &models.Bundle{UserEmail: "founder@example.com", PaymentStatus: models.BundlePaymentPending}
	require.NoError(t, env.db.Create(unpaid).Error)

	tests := []struct {
		name    string
		body    fiber.Map
		status  int
		message string
	}{
		{"missing idea", fiber.Map{"email": "a@b.co", "report_type": "mvp"}, fiber.StatusBadRequest, "Email, idea, and report type are required"},
		{"bad email", fiber.Map{"email": "nope", "idea": "x", "report_type": "mvp"}, fiber.StatusBadRequest, "Invalid email format"},
		{"bad type", fiber.Map{"email": "a@b.co", "idea": "x", "report_type": "poem"}, fiber.StatusBadRequest, "Invalid report type"},
		{"unknown bundle", fiber.Map{"email": "a@b.co", "idea": "x", "report_type": "mvp", "bundle_id": "missing"}, fiber.StatusNotFound, "Invalid bundle"},
		{"unpaid bundle", fiber.Map{"email": "a@b.co", "idea": "x", "report_type": "mvp", "bundle_id": unpaid.ID}, fiber.StatusForbidden, "Bundle is not paid"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := env.do(t, fiber.MethodPost, "/api/submissions", tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.message, body["error"])
		})
	}

	var n int64
	require.NoError(t, env.db.Model(&models.Submission{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestHandleCreateSubmissionRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, fiber.MethodPost, "/api/submissions", "not an object")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, ErrInvalidBody.Message, body["error"])
}

func TestHandleGetSubmission(t *testing.T) {
	env := newTestEnv(t)
	s := env.seedSubmission(t, models.ReportTypeGTM)

	status, body := env.do(t, fiber.MethodGet, "/api/submissions/"+s.ID, nil)
	require.Equal(t, fiber.StatusOK, status)
	submission := body["submission"].(map[string]interface{})
	assert.Equal(t, s.ID, submission["id"])
	assert.NotContains(t, submission, "access_token")

	status, body = env.do(t, fiber.MethodGet, "/api/submissions/unknown", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Submission not found", body["error"])
}

func TestHandleGetSubmissionByToken(t *testing.T) {
	env := newTestEnv(t)
	s := env.seedSubmission(t, models.ReportTypeInvestor)

	status, body := env.do(t, fiber.MethodGet, "/api/submissions/by-token/"+s.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, s.ID, body["id"])
	assert.Equal(t, s.AccessToken, body["access_token"])

	status, _ = env.do(t, fiber.MethodGet, "/api/submissions/by-token/not-a-token", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleBundles(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, fiber.MethodPost, "/api/bundles", fiber.Map{"user_email": "founder@example.com"})
	require.Equal(t, fiber.StatusOK, status, body)
	bundleID, _ := body["bundle_id"].(string)
	require.NotEmpty(t, bundleID)

	status, body = env.do(t, fiber.MethodGet, "/api/bundles/"+bundleID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["used"])
	assert.EqualValues(t, models.BundleCapacity, body["limit"])
	assert.Empty(t, body["submissions"])

	status, body = env.do(t, fiber.MethodPost, "/api/bundles", fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "user_email is required", body["error"])

	status, _ = env.do(t, fiber.MethodGet, "/api/bundles/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleGetBundleHidesAccessTokens(t *testing.T) {
	env := newTestEnv(t)
	bundle := &models.Bundle{UserEmail: "founder@example.com", PaymentStatus: models.BundlePaymentPaid}
	require.NoError(t, env.db.Create(bundle).Error)

	status, body := env.do(t, fiber.MethodPost, "/api/submissions", fiber.Map{
		"email":       "founder@example.com",
		"idea":        "idea",
		"report_type": models.ReportTypeGTM,
		"bundle_id":   bundle.ID,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	require.NotEmpty(t, body["access_token"])

	status, body = env.do(t, fiber.MethodGet, "/api/bundles/"+bundle.ID, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	list := body["submissions"].([]interface{})
	require.Len(t, list, 1)
	assert.NotContains(t, list[0].(map[string]interface{}), "access_token")
}
