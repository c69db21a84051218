package submissions

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/app/repository"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
)

// BundleStatus is a bundle together with its submissions and usage.
type BundleStatus struct {
	Bundle      *models.Bundle      `json:"bundle"`
	Submissions []models.Submission `json:"submissions"`
	Used        int                 `json:"used"`
	Limit       int                 `json:"limit"`
}

// Remaining returns the number of free slots left in the bundle.
func (b BundleStatus) Remaining() int {
	if b.Used >= b.Limit {
		return 0
	}
	return b.Limit - b.Used
}

// CreateBundle creates a pending bundle for userEmail.
func (s *Service) CreateBundle(ctx context.Context, userEmail string) (*models.Bundle, error) {
	userEmail = strings.TrimSpace(userEmail)
	if userEmail == "" {
		return nil, ErrMissingUserEmail
	}
	if !ValidEmail(userEmail) {
		return nil, ErrInvalidEmail
	}

	bundle := &models.Bundle{
		UserEmail:     userEmail,
		PaymentStatus: models.BundlePaymentPending,
	}
	if err := s.bundles.Create(ctx, bundle); err != nil {
		return nil, apperr.Internal("Failed to create bundle", err)
	}
	log.Infof("[Submissions] Created bundle %s", bundle.ID)
	return bundle, nil
}

// CreateBundleForSubmission creates a pending bundle owned by the
// submission's email and links the submission to it as the first slot. When
// a concurrent checkout linked the submission first, that bundle is returned
// instead and no second bundle is kept.
func (s *Service) CreateBundleForSubmission(ctx context.Context, submission *models.Submission) (*models.Bundle, error) {
	bundle := &models.Bundle{
		UserEmail:     submission.Email,
		PaymentStatus: models.BundlePaymentPending,
	}
	err := s.bundles.CreateForSubmission(ctx, bundle, submission.ID)
	if errors.Is(err, repository.ErrSubmissionLinked) {
		return s.linkedBundle(ctx, submission)
	}
	if err != nil {
		return nil, notFoundOr(err, ErrSubmissionNotFound, "Failed to create bundle")
	}

	slot := 0
	submission.BundleID = &bundle.ID
	submission.BundleSlot = &slot
	log.Infof("[Submissions] Linked submission %s to pending bundle %s", submission.ID, bundle.ID)
	return bundle, nil
}

func (s *Service) linkedBundle(ctx context.Context, submission *models.Submission) (*models.Bundle, error) {
	current, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return nil, notFoundOr(err, ErrSubmissionNotFound, "Failed to load submission")
	}
	if !current.InBundle() {
		return nil, apperr.Internal("Failed to create bundle", repository.ErrSubmissionLinked)
	}
	bundle, err := s.bundles.GetByID(ctx, *current.BundleID)
	if err != nil {
		return nil, notFoundOr(err, ErrBundleNotFound, "Failed to load bundle")
	}
	*submission = *current
	log.Infof("[Submissions] Submission %s already linked to bundle %s", submission.ID, bundle.ID)
	return bundle, nil
}

// GetBundle returns the bundle with its submissions, newest first. Used is
// always the number of referencing rows.
func (s *Service) GetBundle(ctx context.Context, id string) (*BundleStatus, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrBundleNotFound
	}
	bundle, err := s.bundles.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrBundleNotFound, "Failed to load bundle")
	}

	submissions, err := s.submissions.ListByBundle(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to load bundle submissions", err)
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}

	return &BundleStatus{
		Bundle:      bundle,
		Submissions: submissions,
		Used:        len(submissions),
		Limit:       s.capacity,
	}, nil
}
