package models

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportTypeValidation = "validation"
	ReportTypeCompetitor = "competitor"
	ReportTypeMVP        = "mvp"
	ReportTypeInvestor   = "investor"
	ReportTypeGTM        = "gtm"
)

const (
	PaymentStatusFree       = "free"
	PaymentStatusPaidSingle = "paid_single"
	PaymentStatusPaidBundle = "paid_bundle"
)

// Report lifecycle. The admin status toggle only uses pending and completed.
const (
	SubmissionStatusPending    = "pending"
	SubmissionStatusProcessing = "processing"
	SubmissionStatusAvailable  = "available"
	SubmissionStatusCompleted  = "completed"
)

// AccessTokenBytes is the amount of random data behind an access token.
const AccessTokenBytes = 24

// ReportTypes lists every report type in display order.
var ReportTypes = []string{
	ReportTypeValidation,
	ReportTypeCompetitor,
	ReportTypeMVP,
	ReportTypeInvestor,
	ReportTypeGTM,
}

// Submission is one request for a report of a given type on an idea.
//
// BundleSlot numbers the submissions of a bundle 0..BundleCapacity-1. Together
// with the unique (bundle_id, bundle_slot) and (bundle_id, report_type)
// indexes it lets the database reject inserts beyond the bundle rules.
type Submission struct {
	ID                    string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email                 string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Idea                  string     `gorm:"type:text;not null" json:"idea"`
	ReportType            string     `gorm:"type:varchar(20);not null;index:ux_submissions_bundle_report_type,unique,priority:2" json:"report_type"`
	PaymentStatus         string     `gorm:"type:varchar(20);not null;default:'free';index" json:"payment_status"`
	Status                string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AccessToken           string     `gorm:"type:varchar(64);not null;uniqueIndex:ux_submissions_access_token" json:"-"`
	BundleID              *string    `gorm:"type:varchar(36);index:ux_submissions_bundle_slot,unique,priority:1;index:ux_submissions_bundle_report_type,unique,priority:1" json:"bundle_id"`
	BundleSlot            *int       `gorm:"index:ux_submissions_bundle_slot,unique,priority:2" json:"-"`
	StripePaymentIntentID *string    `gorm:"type:varchar(255)" json:"stripe_payment_intent_id"`
	AdminNotes            *string    `gorm:"type:text" json:"admin_notes"`
	SummaryKeyInsight     *string    `gorm:"type:text" json:"summary_key_insight"`
	SummaryMarketSnapshot *string    `gorm:"type:text" json:"summary_market_snapshot"`
	SummaryNextStep       *string    `gorm:"type:text" json:"summary_next_step"`
	FullReportURL         *string    `gorm:"type:varchar(2048)" json:"full_report_url"`
	EmailSentAt           *time.Time `gorm:"type:timestamp;default:null" json:"email_sent_at"`
	CreatedAt             time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// SubmissionWithToken is the owner's view of a submission. The plain JSON
// form of Submission never carries the access token.
type SubmissionWithToken struct {
	*Submission
	AccessToken string `json:"access_token"`
}

// WithToken returns the view that includes the access token.
func (s *Submission) WithToken() SubmissionWithToken {
	return SubmissionWithToken{Submission: s, AccessToken: s.AccessToken}
}

// InBundle reports whether the submission references a bundle.
func (s *Submission) InBundle() bool {
	return s.BundleID != nil && *s.BundleID != ""
}

// IsPaid reports whether the full report has been paid for.
func (s *Submission) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaidSingle || s.PaymentStatus == PaymentStatusPaidBundle
}

// NewAccessToken returns a URL-safe token carrying AccessTokenBytes of entropy.
func NewAccessToken() (string, error) {
	b := make([]byte, AccessTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func IsValidReportType(v string) bool {
	for _, t := range ReportTypes {
		if t == v {
			return true
		}
	}
	return false
}

func IsValidPaymentStatus(v string) bool {
	switch v {
	case PaymentStatusFree, PaymentStatusPaidSingle, PaymentStatusPaidBundle:
		return true
	}
	return false
}

// IsValidSubmissionStatus checks v against the full report lifecycle.
func IsValidSubmissionStatus(v string) bool {
	switch v {
	case SubmissionStatusPending, SubmissionStatusProcessing, SubmissionStatusAvailable, SubmissionStatusCompleted:
		return true
	}
	return false
}

// IsValidToggleStatus checks v against the pending/completed toggle.
func IsValidToggleStatus(v string) bool {
	return v == SubmissionStatusPending || v == SubmissionStatusCompleted
}
