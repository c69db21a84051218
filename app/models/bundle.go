package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BundleCapacity is the number of submissions a paid bundle unlocks.
const BundleCapacity = 5

const (
	BundlePaymentPending = "pending"
	BundlePaymentPaid    = "paid"
)

// Bundle groups up to BundleCapacity submissions of distinct report types
// under a single payment. The used count is always derived from submissions.
type Bundle struct {
	ID                  string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserEmail           string    `gorm:"type:varchar(255);not null;index" json:"user_email"`
	PaymentStatus       string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	StripePaymentIntent *string   `gorm:"type:varchar(255)" json:"stripe_payment_intent"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Bundle) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

func (b *Bundle) IsPaid() bool {
	return b.PaymentStatus == BundlePaymentPaid
}
