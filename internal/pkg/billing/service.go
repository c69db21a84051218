package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/app/repository"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
)

var (
	ErrInvalidSignature  = apperr.Validation("Invalid signature")
	ErrInvalidCheckout   = apperr.Validation("submission_id and valid price_type are required")
	ErrAlreadyPaid       = apperr.New(apperr.KindConflict, "Submission is already paid")
	ErrBundleAlreadyPaid = apperr.New(apperr.KindConflict, "Submission already belongs to a paid bundle")
	ErrPaymentsDisabled  = apperr.New(apperr.KindUnavailable, "Payments are not configured")
	ErrReferenceMissing  = apperr.New(apperr.KindInternal, "Webhook handling failed")
)

// Service creates checkouts and reconciles completed payments into
// submission and bundle state.
type Service struct {
	events      repository.PaymentEventRepository
	submissions repository.SubmissionRepository
	bundles     repository.BundleRepository
	catalog     *submissions.Service
	gateway     Gateway
	verifier    *Verifier
	appURL      string
}

type Options struct {
	Gateway  Gateway
	Verifier *Verifier
	AppURL   string
}

func NewService(repos *repository.Repositories, catalog *submissions.Service, opts Options) *Service {
	return &Service{
		events:      repos.PaymentEvent,
		submissions: repos.Submission,
		bundles:     repos.Bundle,
		catalog:     catalog,
		gateway:     opts.Gateway,
		verifier:    opts.Verifier,
		appURL:      strings.TrimRight(opts.AppURL, "/"),
	}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, opts Options) *Service {
	repos := repository.NewRepositories(db)
	return NewService(repos, submissions.NewService(repos), opts)
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in PaymentEventInput) (bool, *models.PaymentEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.events.CreateIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, eventID uint, processingErr error) error {
	if eventID == 0 {
		return errors.New("payment_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.events.MarkProcessed(ctx, eventID, errMsg)
}

// HandleWebhook verifies a delivery and applies it.
//
// Unverifiable deliveries are rejected before anything is written. Verified
// deliveries are recorded once per event id; a redelivery of an event that
// was already applied is acknowledged as a duplicate. When the referenced
// submission or bundle cannot be found the error is recorded and
// ErrReferenceMissing is returned so the gateway redelivers later.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (WebhookAck, error) {
	var verified VerifiedEvent
	switch ev := s.verifier.Verify(payload, signatureHeader).(type) {
	case VerifiedEvent:
		verified = ev
	case RejectedEvent:
		log.Warnf("[Billing] Rejected webhook: %v", ev.Reason)
		return WebhookAck{}, apperr.Wrap(apperr.KindValidation, ErrInvalidSignature.Message, ev.Reason)
	}

	ack := WebhookAck{EventID: verified.ID()}
	created, stored, err := s.RecordWebhookEvent(ctx, PaymentEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: verified.ID(),
		EventType:       verified.Type(),
		PayloadJSON:     string(verified.Payload()),
		SignatureValid:  true,
	})
	if err != nil {
		return ack, apperr.Internal("Webhook handling failed", err)
	}
	if !created && stored.IsProcessed() {
		ack.Duplicate = true
		return ack, nil
	}

	applyErr := s.Reconcile(ctx, verified)
	switch {
	case applyErr == nil:
		s.markProcessed(ctx, stored.ID, nil)
		return ack, nil
	case errors.Is(applyErr, ErrNotCheckoutEvent):
		s.markProcessed(ctx, stored.ID, nil)
		ack.Ignored = true
		return ack, nil
	case errors.Is(applyErr, ErrInvalidMetadata), errors.Is(applyErr, repository.ErrBundleMismatch):
		// redelivery cannot repair either, so acknowledge it
		log.Errorf("[Billing] Event %s cannot be applied: %v", verified.ID(), applyErr)
		s.markProcessed(ctx, stored.ID, applyErr)
		ack.Ignored = true
		return ack, nil
	case errors.Is(applyErr, gorm.ErrRecordNotFound):
		log.Errorf("[Billing] Event %s references a missing record, asking for redelivery", verified.ID())
		s.markProcessed(ctx, stored.ID, applyErr)
		return ack, apperr.Wrap(ErrReferenceMissing.Kind, ErrReferenceMissing.Message, applyErr)
	default:
		log.Errorf("[Billing] Event %s failed: %v", verified.ID(), applyErr)
		s.markProcessed(ctx, stored.ID, applyErr)
		return ack, apperr.Internal("Webhook handling failed", applyErr)
	}
}

func (s *Service) markProcessed(ctx context.Context, id uint, processingErr error) {
	if err := s.MarkWebhookProcessed(ctx, id, processingErr); err != nil {
		log.Errorf("[Billing] Failed to mark payment event %d processed: %v", id, err)
	}
}

// Reconcile applies a verified completion event. Both transitions are plain
// set-to-paid writes, so applying the same event again changes nothing.
func (s *Service) Reconcile(ctx context.Context, event VerifiedEvent) error {
	completed, err := event.CompletedCheckout()
	if err != nil {
		return err
	}

	switch completed.PriceType {
	case PriceSingle:
		if err := s.submissions.MarkPaidSingle(ctx, completed.SubmissionID, completed.PaymentIntentID); err != nil {
			return fmt.Errorf("mark submission %s paid: %w", completed.SubmissionID, err)
		}
	case PriceBundle:
		if err := s.bundles.MarkPaid(ctx, completed.BundleID, completed.SubmissionID, completed.PaymentIntentID); err != nil {
			return fmt.Errorf("mark bundle %s paid: %w", completed.BundleID, err)
		}
	}

	log.Infof("[Billing] Applied %s payment for submission %s (event %s)", completed.PriceType, completed.SubmissionID, event.ID())
	return nil
}

// CreateCheckout opens a hosted checkout for the submission. For bundle
// purchases a pending bundle is created (or the submission's existing
// pending bundle reused) and its id travels in the checkout metadata.
func (s *Service) CreateCheckout(ctx context.Context, submissionID, rawPriceType string) (*CheckoutSession, error) {
	priceType, ok := ParsePriceType(rawPriceType)
	submissionID = strings.TrimSpace(submissionID)
	if !ok || submissionID == "" {
		return nil, ErrInvalidCheckout
	}
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}

	submission, err := s.catalog.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	bundleID := ""
	switch priceType {
	case PriceSingle:
		if submission.IsPaid() {
			return nil, ErrAlreadyPaid
		}
	case PriceBundle:
		bundleID, err = s.pendingBundleFor(ctx, submission)
		if err != nil {
			return nil, err
		}
	}

	reportURL := submissions.ReportURL(s.appURL, submission.AccessToken)
	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceType:     priceType,
		CustomerEmail: submission.Email,
		Metadata: map[string]string{
			MetadataSubmissionID: submission.ID,
			MetadataPriceType:    string(priceType),
			MetadataBundleID:     bundleID,
		},
		SuccessURL: reportURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  reportURL,
	})
	if err != nil {
		log.Errorf("[Billing] Checkout for submission %s failed: %v", submission.ID, err)
		return nil, apperr.Upstream("Failed to create checkout session", err)
	}

	log.Infof("[Billing] Opened %s checkout %s for submission %s", priceType, session.ID, submission.ID)
	return session, nil
}

func (s *Service) pendingBundleFor(ctx context.Context, submission *models.Submission) (string, error) {
	if submission.InBundle() {
		status, err := s.catalog.GetBundle(ctx, *submission.BundleID)
		if err != nil {
			return "", err
		}
		if status.Bundle.IsPaid() {
			return "", ErrBundleAlreadyPaid
		}
		return status.Bundle.ID, nil
	}
	if submission.IsPaid() {
		return "", ErrAlreadyPaid
	}

	bundle, err := s.catalog.CreateBundleForSubmission(ctx, submission)
	if err != nil {
		return "", err
	}
	if bundle.IsPaid() {
		return "", ErrBundleAlreadyPaid
	}
	return bundle.ID, nil
}

// CreatePaymentIntent starts an embedded payment for the submission and
// returns the client secret.
func (s *Service) CreatePaymentIntent(ctx context.Context, submissionID, rawPriceType string) (string, error) {
	priceType, ok := ParsePriceType(rawPriceType)
	submissionID = strings.TrimSpace(submissionID)
	if !ok || submissionID == "" {
		return "", ErrInvalidCheckout
	}
	if s.gateway == nil {
		return "", ErrPaymentsDisabled
	}
	if _, err := s.catalog.Get(ctx, submissionID); err != nil {
		return "", err
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, PaymentIntentRequest{
		PriceType: priceType,
		Metadata: map[string]string{
			"submissionId": submissionID,
			"priceType":    string(priceType),
		},
	})
	if err != nil {
		log.Errorf("[Billing] Payment intent for submission %s failed: %v", submissionID, err)
		return "", apperr.Upstream("Payment processing failed", err)
	}
	return secret, nil
}

func (s *Service) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation("Session ID is required")
	}
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	session, err := s.gateway.GetCheckoutSession(ctx, id)
	if err != nil {
		return nil, apperr.Upstream("Failed to retrieve session", err)
	}
	return session, nil
}

