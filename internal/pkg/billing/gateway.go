package billing

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
)

// Gateway is the part of the payment provider the service talks to.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (string, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
}

type stripeGateway struct {
	api         *client.API
	currency    string
	priceSingle string
	priceBundle string
}

// NewStripeGateway returns a Gateway backed by the Stripe API, or nil when no
// secret key is configured.
func NewStripeGateway(cfg config.StripeConfig) Gateway {
	key := strings.TrimSpace(cfg.SecretKey)
	if key == "" {
		return nil
	}
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}
	return &stripeGateway{
		api:         client.New(key, nil),
		currency:    currency,
		priceSingle: strings.TrimSpace(cfg.PriceSingle),
		priceBundle: strings.TrimSpace(cfg.PriceBundle),
	}
}

func (g *stripeGateway) priceID(p PriceType) string {
	if p == PriceBundle {
		return g.priceBundle
	}
	return g.priceSingle
}

func (g *stripeGateway) lineItem(p PriceType) *stripe.CheckoutSessionLineItemParams {
	if id := g.priceID(p); id != "" {
		return &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(id),
			Quantity: stripe.Int64(1),
		}
	}
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(g.currency),
			UnitAmount: stripe.Int64(p.AmountCents()),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(p.ProductName()),
			},
		},
		Quantity: stripe.Int64(1),
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems:     []*stripe.CheckoutSessionLineItemParams{g.lineItem(req.PriceType)},
		Metadata:      req.Metadata,
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return toCheckoutSession(s), nil
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.PriceType.AmountCents()),
		Currency: stripe.String(g.currency),
		Metadata: req.Metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

func (g *stripeGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return toCheckoutSession(s), nil
}

func toCheckoutSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}
