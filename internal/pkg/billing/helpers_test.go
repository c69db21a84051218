package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/database"
)

const testWebhookSecret = "whsec_test_secret"

var (
	bg        = context.Background()
	dbCounter atomic.Int64
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:billing_%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))
	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, Name: dsn, Quiet: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fakeGateway struct {
	mu        sync.Mutex
	checkouts []CheckoutRequest
	intents   []PaymentIntentRequest
	err       error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.checkouts = append(f.checkouts, req)
	id := fmt.Sprintf("cs_test_%d", len(f.checkouts))
	return &CheckoutSession{
		ID:       id,
		URL:      "https://checkout.stripe.test/" + id,
		Status:   "open",
		Metadata: req.Metadata,
	}, nil
}

func (f *fakeGateway) CreatePaymentIntent(_ context.Context, req PaymentIntentRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.intents = append(f.intents, req)
	return fmt.Sprintf("pi_test_%d_secret", len(f.intents)), nil
}

func (f *fakeGateway) GetCheckoutSession(_ context.Context, id string) (*CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id == "cs_missing" {
		return nil, errors.New("no such checkout.session")
	}
	return &CheckoutSession{ID: id, Status: "complete", PaymentStatus: "paid", Metadata: map[string]string{}}, nil
}

func newTestService(t *testing.T) (*Service, *fakeGateway, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	gw := &fakeGateway{}
	svc := NewServiceFromDB(db, Options{
		Gateway:  gw,
		Verifier: NewVerifier(testWebhookSecret),
		AppURL:   "https://app.example.com/",
	})
	return svc, gw, db
}

func checkoutCompletedPayload(t *testing.T, eventID string, metadata map[string]string, paymentIntent string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"api_version": "2025-08-27.basil",
		"type":        EventCheckoutCompleted,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "cs_test_" + eventID,
				"object":         "checkout.session",
				"payment_status": "paid",
				"payment_intent": paymentIntent,
				"metadata":       metadata,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	})
	return signed.Header
}

func seedSubmission(t *testing.T, db *gorm.DB, reportType string) *models.Submission {
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
	require.NoError(t, db.Create(s).Error)
	return s
}

func reload(t *testing.T, db *gorm.DB, s *models.Submission) *models.Submission {
	t.Helper()
	var out models.Submission
	require.NoError(t, db.Where("id = ?", s.ID).First(&out).Error)
	return &out
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.PaymentEvent{}).Count(&n).Error)
	return n
}
