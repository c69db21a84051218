package submissions

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/app/repository"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail checks the single-@, dotted-domain address shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Service owns submission and bundle state: creation with bundle rules,
// lookups, and admin mutations.
type Service struct {
	submissions repository.SubmissionRepository
	bundles     repository.BundleRepository
	capacity    int
	newToken    func() (string, error)
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{
		submissions: repos.Submission,
		bundles:     repos.Bundle,
		capacity:    models.BundleCapacity,
		newToken:    models.NewAccessToken,
	}
}

// NewServiceFromDB is a convenience constructor for handlers and tests.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(repository.NewRepositories(db))
}

type CreateInput struct {
	Email      string
	Idea       string
	ReportType string
	BundleID   string
}

func (in CreateInput) normalized() CreateInput {
	return CreateInput{
		Email:      strings.TrimSpace(in.Email),
		Idea:       strings.TrimSpace(in.Idea),
		ReportType: strings.TrimSpace(in.ReportType),
		BundleID:   strings.TrimSpace(in.BundleID),
	}
}

func (in CreateInput) validate() error {
	if in.Email == "" || in.Idea == "" || in.ReportType == "" {
		return ErrMissingFields
	}
	if !ValidEmail(in.Email) {
		return ErrInvalidEmail
	}
	if !models.IsValidReportType(in.ReportType) {
		return ErrInvalidReportType
	}
	return nil
}

// Create validates the input and inserts a pending submission.
//
// For bundle submissions the capacity and report type checks are advisory:
// the insert carries a slot number and the store rejects a second row for
// the same (bundle, slot) or (bundle, report type). A rejected insert means
// another request won the race, so the checks are repeated against fresh
// reads, which then produce the precise capacity or conflict error.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Submission, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= s.capacity; attempt++ {
		submission, err := s.tryCreate(ctx, in)
		if err == nil {
			log.Infof("[Submissions] Created submission %s (type=%s, payment=%s)", submission.ID, submission.ReportType, submission.PaymentStatus)
			return submission, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
		log.Debugf("[Submissions] Insert lost a race (attempt %d), re-checking bundle %s", attempt+1, in.BundleID)
	}

	return nil, apperr.Internal("Failed to create submission", lastErr)
}

func (s *Service) tryCreate(ctx context.Context, in CreateInput) (*models.Submission, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, apperr.Internal("Failed to generate access token", err)
	}

	submission := &models.Submission{
		Email:         in.Email,
		Idea:          in.Idea,
		ReportType:    in.ReportType,
		PaymentStatus: models.PaymentStatusFree,
		Status:        models.SubmissionStatusPending,
		AccessToken:   token,
	}

	if in.BundleID != "" {
		slot, err := s.nextBundleSlot(ctx, in.BundleID, in.ReportType)
		if err != nil {
			return nil, err
		}
		bundleID := in.BundleID
		submission.BundleID = &bundleID
		submission.BundleSlot = &slot
		submission.PaymentStatus = models.PaymentStatusPaidBundle
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		return nil, apperr.Internal("Failed to create submission", err)
	}
	return submission, nil
}

// nextBundleSlot runs the bundle checks in order and returns the slot the
// new submission would occupy.
func (s *Service) nextBundleSlot(ctx context.Context, bundleID, reportType string) (int, error) {
	bundle, err := s.bundles.GetByID(ctx, bundleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidBundle
		}
		return 0, apperr.Internal("Failed to load bundle", err)
	}
	if !bundle.IsPaid() {
		return 0, ErrBundleNotPaid
	}

	used, err := s.submissions.CountByBundle(ctx, bundleID)
	if err != nil {
		return 0, apperr.Internal("Failed to count bundle submissions", err)
	}
	if used >= int64(s.capacity) {
		return 0, ErrCapacityReached
	}

	exists, err := s.submissions.ExistsInBundle(ctx, bundleID, reportType)
	if err != nil {
		return 0, apperr.Internal("Failed to check bundle submissions", err)
	}
	if exists {
		return 0, ErrDuplicateReportType
	}

	return int(used), nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Submission, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrSubmissionNotFound
	}
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrSubmissionNotFound, "Failed to load submission")
	}
	return submission, nil
}

// GetByToken resolves a submission from its access token.
func (s *Service) GetByToken(ctx context.Context, token string) (*models.Submission, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingAccessToken
	}
	submission, err := s.submissions.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, notFoundOr(err, ErrMissingAccessToken, "Failed to load submission")
	}
	return submission, nil
}

// List returns every submission, newest first.
func (s *Service) List(ctx context.Context) ([]models.Submission, error) {
	submissions, err := s.submissions.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch submissions", err)
	}
	return submissions, nil
}

func notFoundOr(err error, notFound *apperr.Error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperr.Internal(message, err)
}
