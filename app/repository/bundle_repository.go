package repository

import (
	"context"
	"errors"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"gorm.io/gorm"
)

var (
	// ErrSubmissionLinked means another checkout linked the submission first.
	ErrSubmissionLinked = errors.New("submission is already linked to a bundle")
	// ErrBundleMismatch means the submission belongs to a different paid bundle.
	ErrBundleMismatch = errors.New("submission belongs to another paid bundle")
)

// bundleRepository implements the BundleRepository interface
type bundleRepository struct {
	db *gorm.DB
}

// NewBundleRepository creates a new bundle repository instance
func NewBundleRepository(db *gorm.DB) BundleRepository {
	return &bundleRepository{db: db}
}

func (r *bundleRepository) Create(ctx context.Context, bundle *models.Bundle) error {
	return r.db.WithContext(ctx).Create(bundle).Error
}

// CreateForSubmission creates the bundle and links the submission to it as
// the first slot in one transaction. Only an unlinked submission is linked;
// otherwise nothing is written and ErrSubmissionLinked is returned.
func (r *bundleRepository) CreateForSubmission(ctx context.Context, bundle *models.Bundle, submissionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Select("id").Where("id = ?", submissionID).First(&submission).Error; err != nil {
			return err
		}
		if err := tx.Create(bundle).Error; err != nil {
			return err
		}
		result := tx.Model(&models.Submission{}).
			Where("id = ? AND bundle_id IS NULL", submissionID).
			Updates(map[string]interface{}{
				"bundle_id":   bundle.ID,
				"bundle_slot": 0,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubmissionLinked
		}
		return nil
	})
}

func (r *bundleRepository) GetByID(ctx context.Context, id string) (*models.Bundle, error) {
	var bundle models.Bundle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bundle).Error; err != nil {
		return nil, err
	}
	return &bundle, nil
}

// MarkPaid sets the bundle to paid and the purchasing submission to
// paid_bundle, linking the submission to this bundle when it is unlinked or
// still points at an abandoned pending bundle. Both rows must exist;
// repeating the call is a no-op.
func (r *bundleRepository) MarkPaid(ctx context.Context, id, submissionID, paymentIntentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bundle models.Bundle
		if err := tx.Select("id").Where("id = ?", id).First(&bundle).Error; err != nil {
			return err
		}
		var submission models.Submission
		if err := tx.Select("id", "bundle_id").Where("id = ?", submissionID).First(&submission).Error; err != nil {
			return err
		}

		submissionUpdates := map[string]interface{}{"payment_status": models.PaymentStatusPaidBundle}
		if submission.BundleID == nil || *submission.BundleID != id {
			if submission.BundleID != nil {
				var linked models.Bundle
				if err := tx.Select("id", "payment_status").Where("id = ?", *submission.BundleID).First(&linked).Error; err != nil {
					return err
				}
				if linked.IsPaid() {
					return ErrBundleMismatch
				}
			}
			var used int64
			if err := tx.Model(&models.Submission{}).Where("bundle_id = ?", id).Count(&used).Error; err != nil {
				return err
			}
			submissionUpdates["bundle_id"] = id
			submissionUpdates["bundle_slot"] = int(used)
		}

		updates := map[string]interface{}{"payment_status": models.BundlePaymentPaid}
		if paymentIntentID != "" {
			updates["stripe_payment_intent"] = paymentIntentID
		}
		if err := tx.Model(&models.Bundle{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Submission{}).Where("id = ?", submissionID).Updates(submissionUpdates).Error
	})
}

func (r *bundleRepository) CountPaid(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bundle{}).
		Where("payment_status = ?", models.BundlePaymentPaid).Count(&count).Error
	return count, err
}
