package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceType selects what a checkout pays for.
type PriceType string

const (
	PriceSingle PriceType = "single"
	PriceBundle PriceType = "bundle"
)

const (
	singleAmountCents int64 = 2900
	bundleAmountCents int64 = 9900
)

// ParsePriceType normalizes a client supplied price type.
func ParsePriceType(v string) (PriceType, bool) {
	switch PriceType(strings.ToLower(strings.TrimSpace(v))) {
	case PriceSingle:
		return PriceSingle, true
	case PriceBundle:
		return PriceBundle, true
	default:
		return "", false
	}
}

// AmountCents returns the charge in the smallest currency unit.
func (p PriceType) AmountCents() int64 {
	if p == PriceBundle {
		return bundleAmountCents
	}
	return singleAmountCents
}

// Amount returns the charge in currency units.
func (p PriceType) Amount() decimal.Decimal {
	return decimal.New(p.AmountCents(), -2)
}

func (p PriceType) ProductName() string {
	if p == PriceBundle {
		return "Founder Bundle (5 reports)"
	}
	return "Full report"
}

// Revenue sums the gross amount for the given paid single reports and
// bundles.
func Revenue(paidSingles, paidBundles int64) decimal.Decimal {
	singles := PriceSingle.Amount().Mul(decimal.NewFromInt(paidSingles))
	bundles := PriceBundle.Amount().Mul(decimal.NewFromInt(paidBundles))
	return singles.Add(bundles)
}
