package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/app/repository"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/auth"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/billing"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/database"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/mail"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/notify"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/reportstore"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/statistics"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
)

const (
	testWebhookSecret = "whsec_controllers"
	testAdminPassword = "correct horse"
	testAppURL        = "https://app.example.com"
)

var dbCounter atomic.Int64

type fakeGateway struct {
	mu        sync.Mutex
	checkouts []billing.CheckoutRequest
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, req)
	id := fmt.Sprintf("cs_test_%d", len(f.checkouts))
	return &billing.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id, Status: "open", Metadata: req.Metadata}, nil
}

func (f *fakeGateway) CreatePaymentIntent(_ context.Context, _ billing.PaymentIntentRequest) (string, error) {
	return "pi_test_secret", nil
}

func (f *fakeGateway) GetCheckoutSession(_ context.Context, id string) (*billing.CheckoutSession, error) {
	return &billing.CheckoutSession{
		ID: id, Status: "complete", PaymentStatus: "paid", CustomerEmail: "founder@example.com",
		Metadata: map[string]string{"submission_id": "s1"},
	}, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, key string, body io.Reader, size int64, contentType string) (*reportstore.UploadResult, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	f.keys = append(f.keys, key)
	return &reportstore.UploadResult{ObjectKey: key, Size: size, ContentType: contentType, URL: "https://cdn.example.com/" + key}, nil
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	gateway  *fakeGateway
	mailer   *fakeMailer
	uploader *fakeUploader
	issuer   *auth.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:controllers_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, Name: dsn, Quiet: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		gateway:  &fakeGateway{},
		mailer:   &fakeMailer{},
		uploader: &fakeUploader{},
		issuer:   auth.NewIssuer("jwt-secret", string(hash), time.Hour),
	}

	repos := repository.NewRepositories(db)
	catalog := submissions.NewService(repos)
	InitializeControllers(Dependencies{
		Submissions: catalog,
		Billing: billing.NewService(repos, catalog, billing.Options{
			Gateway:  env.gateway,
			Verifier: billing.NewVerifier(testWebhookSecret),
			AppURL:   testAppURL,
		}),
		Notifier:   notify.New(catalog, env.mailer, testAppURL),
		Publisher:  reportstore.NewPublisher(catalog, env.uploader, "reports"),
		Statistics: statistics.NewService(repos, nil),
		Issuer:     env.issuer,
	})

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/submissions", HandleCreateSubmission)
	api.Get("/submissions", HandleListSubmissions)
	api.Get("/submissions/by-token/:token", HandleGetSubmissionByToken)
	api.Get("/submissions/:id", HandleGetSubmission)
	api.Post("/bundles", HandleCreateBundle)
	api.Get("/bundles/:bundleId", HandleGetBundle)
	api.Post("/stripe/checkout", HandleStripeCheckout)
	api.Post("/stripe", HandleStripePaymentIntent)
	api.Get("/stripe/session/:id", HandleStripeSession)
	api.Post("/stripe/webhook", HandleStripeWebhook)
	api.Get("/stripe/webhook", HandleStripeWebhookPing)
	api.Post("/admin/login", HandleAdminLogin)
	api.Patch("/admin/submissions", HandleAdminUpdateStatus)
	api.Post("/admin/update-report", HandleAdminUpdateReport)
	api.Post("/admin/send-email", HandleAdminSendEmail)
	api.Post("/admin/submissions/:id/report", HandleAdminUploadReport)
	api.Get("/admin/stats", HandleAdminStats)
	env.app = app

	return env
}

// do sends a JSON request and decodes the JSON response into a map.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) seedSubmission(t *testing.T, reportType string) *models.Submission {
	t.Helper()
	token, err := models.NewAccessToken()
	require.NoError(t, err)
	s := &models.Submission{
		Email:         "founder@example.com",
		Idea:          "Invoice factoring for freelancers",
		ReportType:    reportType,
		PaymentStatus: models.PaymentStatusFree,
		Status:        models.SubmissionStatusPending,
		AccessToken:   token,
	}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

func (e *testEnv) reload(t *testing.T, id string) *models.Submission {
	t.Helper()
	var s models.Submission
	require.NoError(t, e.db.Where("id = ?", id).First(&s).Error)
	return &s
}

func signedWebhook(t *testing.T, eventID string, metadata map[string]string) (*http.Request, []byte) {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"api_version": "2025-08-27.basil",
		"type":        billing.EventCheckoutCompleted,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "cs_" + eventID,
				"object":         "checkout.session",
				"payment_status": "paid",
				"payment_intent": "pi_" + eventID,
				"metadata":       metadata,
			},
		},
	})
	require.NoError(t, err)
	return webhookRequest(payload, testWebhookSecret), payload
}

func webhookRequest(payload []byte, secret string) *http.Request {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})
	req := httptest.NewRequest(fiber.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(StripeSignatureHeader, signed.Header)
	return req
}
