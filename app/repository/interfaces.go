package repository

import (
	"context"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"gorm.io/gorm"
)

// SubmissionRepository defines the interface for submission-related database operations
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByAccessToken(ctx context.Context, token string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	ListByBundle(ctx context.Context, bundleID string) ([]models.Submission, error)
	CountByBundle(ctx context.Context, bundleID string) (int64, error)
	ExistsInBundle(ctx context.Context, bundleID, reportType string) (bool, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Submission, error)
	MarkPaidSingle(ctx context.Context, id, paymentIntentID string) error
	CountBy(ctx context.Context, column string) (map[string]int64, error)
}

// BundleRepository defines the interface for bundle-related database operations
type BundleRepository interface {
	Create(ctx context.Context, bundle *models.Bundle) error
	CreateForSubmission(ctx context.Context, bundle *models.Bundle, submissionID string) error
	GetByID(ctx context.Context, id string) (*models.Bundle, error)
	MarkPaid(ctx context.Context, id, submissionID, paymentIntentID string) error
	CountPaid(ctx context.Context) (int64, error)
}

// PaymentEventRepository defines the interface for webhook delivery bookkeeping
type PaymentEventRepository interface {
	CreateIfNotExists(ctx context.Context, event *models.PaymentEvent) (bool, *models.PaymentEvent, error)
	MarkProcessed(ctx context.Context, id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Submission   SubmissionRepository
	Bundle       BundleRepository
	PaymentEvent PaymentEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Submission:   NewSubmissionRepository(db),
		Bundle:       NewBundleRepository(db),
		PaymentEvent: NewPaymentEventRepository(db),
	}
}
