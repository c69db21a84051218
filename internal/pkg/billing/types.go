package billing

// PaymentEventInput is the normalized input for webhook event persistence.
type PaymentEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// CheckoutRequest is what the gateway needs to open a hosted checkout.
type CheckoutRequest struct {
	PriceType     PriceType
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider-neutral view of a checkout session.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url,omitempty"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency,omitempty"`
	Metadata      map[string]string `json:"metadata"`
}

type PaymentIntentRequest struct {
	PriceType PriceType
	Metadata  map[string]string
}

// CompletedCheckout is the state change carried by a completed checkout.
type CompletedCheckout struct {
	SessionID       string
	SubmissionID    string
	PriceType       PriceType
	BundleID        string
	PaymentIntentID string
}

// WebhookAck describes how a delivered event was handled.
type WebhookAck struct {
	EventID   string
	Duplicate bool
	Ignored   bool
}

// Checkout metadata keys shared between checkout creation and the webhook.
const (
	MetadataSubmissionID = "submission_id"
	MetadataPriceType    = "price_type"
	MetadataBundleID     = "bundle_id"
)

// EventCheckoutCompleted is the only event type that changes state.
const EventCheckoutCompleted = "checkout.session.completed"
