package repository

import (
	"context"
	"fmt"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"gorm.io/gorm"
)

// submissionRepository implements the SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository instance
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create inserts a submission. Unique index violations surface as
// gorm.ErrDuplicatedKey when the connection translates errors.
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) GetByAccessToken(ctx context.Context, token string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Where("access_token = ?", token).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// List returns all submissions, newest first
func (r *submissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&submissions).Error
	return submissions, err
}

// ListByBundle returns the submissions of a bundle, newest first
func (r *submissionRepository) ListByBundle(ctx context.Context, bundleID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).Where("bundle_id = ?", bundleID).
		Order("created_at DESC").Order("bundle_slot DESC").Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) CountByBundle(ctx context.Context, bundleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Where("bundle_id = ?", bundleID).Count(&count).Error
	return count, err
}

func (r *submissionRepository) ExistsInBundle(ctx context.Context, bundleID, reportType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("bundle_id = ? AND report_type = ?", bundleID, reportType).
		Count(&count).Error
	return count > 0, err
}

// Update applies the given column values and returns the stored row.
// Existence is checked first since MySQL reports zero affected rows for
// updates that leave values unchanged.
func (r *submissionRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&submission).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&submission).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&submission).Error
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// MarkPaidSingle sets the submission to paid_single. A link to a pending
// bundle is dropped; a submission already in a paid bundle stays paid_bundle.
// Repeating it is a no-op.
func (r *submissionRepository) MarkPaidSingle(ctx context.Context, id, paymentIntentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Select("id", "bundle_id").Where("id = ?", id).First(&submission).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"payment_status": models.PaymentStatusPaidSingle,
		}
		if submission.BundleID != nil {
			var bundle models.Bundle
			if err := tx.Select("id", "payment_status").Where("id = ?", *submission.BundleID).First(&bundle).Error; err != nil {
				return err
			}
			if bundle.IsPaid() {
				return nil
			}
			updates["bundle_id"] = nil
			updates["bundle_slot"] = nil
		}
		if paymentIntentID != "" {
			updates["stripe_payment_intent_id"] = paymentIntentID
		}
		return tx.Model(&models.Submission{}).Where("id = ?", id).Updates(updates).Error
	})
}

// CountBy groups submissions by one of the enum columns
func (r *submissionRepository) CountBy(ctx context.Context, column string) (map[string]int64, error) {
	switch column {
	case "status", "payment_status", "report_type":
	default:
		return nil, fmt.Errorf("unsupported group column %q", column)
	}

	var rows []struct {
		Value string
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Select(column + " AS value, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Value] = row.Total
	}
	return result, nil
}
