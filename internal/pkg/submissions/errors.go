package submissions

import "github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"

var (
	ErrMissingFields       = apperr.Validation("Email, idea, and report type are required")
	ErrInvalidEmail        = apperr.Validation("Invalid email format")
	ErrInvalidReportType   = apperr.Validation("Invalid report type")
	ErrInvalidBundle       = apperr.NotFound("Invalid bundle")
	ErrBundleNotPaid       = apperr.New(apperr.KindForbidden, "Bundle is not paid")
	ErrCapacityReached     = apperr.New(apperr.KindForbidden, "Bundle capacity reached")
	ErrDuplicateReportType = apperr.New(apperr.KindConflict, "Report type already used in this bundle")

	ErrSubmissionNotFound = apperr.NotFound("Submission not found")
	ErrBundleNotFound     = apperr.NotFound("Bundle not found")
	ErrMissingID          = apperr.Validation("Submission ID is required")
	ErrMissingUserEmail   = apperr.Validation("user_email is required")

	ErrInvalidStatus        = apperr.Validation("Invalid status value")
	ErrInvalidPaymentStatus = apperr.Validation("Invalid payment_status value")
	ErrBundledPaymentStatus = apperr.Validation("payment_status of a bundled submission must be paid_bundle")
	ErrMissingSummary       = apperr.Validation("At least one summary field is required")
	ErrInvalidFullReportURL = apperr.Validation("full_report_url must be a valid URL")
	ErrMissingAccessToken   = apperr.NotFound("Report not found")
)
