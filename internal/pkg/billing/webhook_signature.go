package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	ErrMissingSignature     = errors.New("missing webhook signature")
	ErrWebhookSecretMissing = errors.New("webhook secret is not configured")
	ErrNotCheckoutEvent     = errors.New("event does not carry a checkout session")
	ErrInvalidMetadata      = errors.New("checkout metadata is incomplete")
)

// WebhookEvent is the outcome of checking a gateway callback. It is either a
// VerifiedEvent or a RejectedEvent; the set is closed to this package.
type WebhookEvent interface {
	webhookEvent()
}

// VerifiedEvent is a callback whose signature matched. Only Verify builds
// one, so holding a VerifiedEvent proves the payload is authentic.
type VerifiedEvent struct {
	id        string
	eventType string
	data      json.RawMessage
	payload   []byte
}

func (VerifiedEvent) webhookEvent() {}

func (e VerifiedEvent) ID() string      { return e.id }
func (e VerifiedEvent) Type() string    { return e.eventType }
func (e VerifiedEvent) Payload() []byte { return e.payload }

// CompletedCheckout extracts the checkout result carried by the event.
func (e VerifiedEvent) CompletedCheckout() (*CompletedCheckout, error) {
	if e.eventType != EventCheckoutCompleted {
		return nil, ErrNotCheckoutEvent
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(e.data, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	priceType, ok := ParsePriceType(session.Metadata[MetadataPriceType])
	submissionID := strings.TrimSpace(session.Metadata[MetadataSubmissionID])
	bundleID := strings.TrimSpace(session.Metadata[MetadataBundleID])
	if !ok || submissionID == "" || (priceType == PriceBundle && bundleID == "") {
		return nil, ErrInvalidMetadata
	}

	completed := &CompletedCheckout{
		SessionID:    session.ID,
		SubmissionID: submissionID,
		PriceType:    priceType,
		BundleID:     bundleID,
	}
	if session.PaymentIntent != nil {
		completed.PaymentIntentID = session.PaymentIntent.ID
	}
	return completed, nil
}

// RejectedEvent is a callback that failed verification. It carries no
// payload on purpose.
type RejectedEvent struct {
	Reason error
}

func (RejectedEvent) webhookEvent() {}

// Verifier checks the Stripe-Signature header of webhook deliveries.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: strings.TrimSpace(secret), tolerance: webhook.DefaultTolerance}
}

// Verify checks the signature and timestamp of payload and returns either a
// VerifiedEvent or a RejectedEvent.
func (v *Verifier) Verify(payload []byte, signatureHeader string) WebhookEvent {
	if v == nil || v.secret == "" {
		return RejectedEvent{Reason: ErrWebhookSecretMissing}
	}
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" {
		return RejectedEvent{Reason: ErrMissingSignature}
	}

	event, err := webhook.ConstructEventWithOptions(payload, sig, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return RejectedEvent{Reason: err}
	}

	var data json.RawMessage
	if event.Data != nil {
		data = event.Data.Raw
	}
	return VerifiedEvent{
		id:        event.ID,
		eventType: string(event.Type),
		data:      data,
		payload:   payload,
	}
}
