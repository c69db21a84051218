package submissions

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/constants"
)

// StatusUpdate is the pending/completed toggle of the admin list. Nil or
// empty Status and PaymentStatus leave the column untouched; a non-nil
// AdminNotes is always written.
type StatusUpdate struct {
	Status        *string
	PaymentStatus *string
	AdminNotes    *string
}

// ReportUpdate carries the fields authored for a report.
type ReportUpdate struct {
	SummaryKeyInsight     *string
	SummaryMarketSnapshot *string
	SummaryNextStep       *string
	FullReportURL         *string
	Status                *string
}

// UpdateStatus applies the admin toggle. Every field is validated before the
// row is touched.
func (s *Service) UpdateStatus(ctx context.Context, id string, in StatusUpdate) (*models.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}

	updates := map[string]interface{}{}
	if v := deref(in.Status); v != "" {
		if !models.IsValidToggleStatus(v) {
			return nil, ErrInvalidStatus
		}
		updates["status"] = v
	}
	if v := deref(in.PaymentStatus); v != "" {
		if !models.IsValidPaymentStatus(v) {
			return nil, ErrInvalidPaymentStatus
		}
		updates["payment_status"] = v
	}
	if in.AdminNotes != nil {
		updates["admin_notes"] = *in.AdminNotes
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ps, ok := updates["payment_status"]; ok && current.InBundle() && ps != models.PaymentStatusPaidBundle {
		return nil, ErrBundledPaymentStatus
	}

	return s.apply(ctx, id, updates)
}

// UpdateReport stores the admin-authored summaries, report URL and
// lifecycle status.
func (s *Service) UpdateReport(ctx context.Context, id string, in ReportUpdate) (*models.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}
	if isBlank(in.SummaryKeyInsight) && isBlank(in.SummaryMarketSnapshot) && isBlank(in.SummaryNextStep) {
		return nil, ErrMissingSummary
	}
	if v := deref(in.FullReportURL); v != "" && !ValidReportURL(v) {
		return nil, ErrInvalidFullReportURL
	}
	if v := deref(in.Status); v != "" && !models.IsValidSubmissionStatus(v) {
		return nil, ErrInvalidStatus
	}

	updates := map[string]interface{}{}
	if in.SummaryKeyInsight != nil {
		updates["summary_key_insight"] = *in.SummaryKeyInsight
	}
	if in.SummaryMarketSnapshot != nil {
		updates["summary_market_snapshot"] = *in.SummaryMarketSnapshot
	}
	if in.SummaryNextStep != nil {
		updates["summary_next_step"] = *in.SummaryNextStep
	}
	if in.FullReportURL != nil {
		updates["full_report_url"] = nullable(*in.FullReportURL)
	}
	if v := deref(in.Status); v != "" {
		updates["status"] = v
	}

	return s.apply(ctx, id, updates)
}

// SetFullReportURL points the submission at an uploaded report document.
func (s *Service) SetFullReportURL(ctx context.Context, id, reportURL string) (*models.Submission, error) {
	if !ValidReportURL(reportURL) {
		return nil, ErrInvalidFullReportURL
	}
	return s.apply(ctx, id, map[string]interface{}{"full_report_url": reportURL})
}

// MarkEmailSent stamps email_sent_at.
func (s *Service) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	_, err := s.apply(ctx, id, map[string]interface{}{"email_sent_at": at})
	return err
}

func (s *Service) apply(ctx context.Context, id string, updates map[string]interface{}) (*models.Submission, error) {
	updates["updated_at"] = time.Now()
	submission, err := s.submissions.Update(ctx, id, updates)
	if err != nil {
		return nil, notFoundOr(err, ErrSubmissionNotFound, "Failed to update submission")
	}
	log.Infof("[Submissions] Updated submission %s (%d fields)", id, len(updates)-1)
	return submission, nil
}

// ReportURL is the tokenized report page for an access token under appURL.
func ReportURL(appURL, accessToken string) string {
	return strings.TrimRight(appURL, "/") + constants.ReportByTokenRoute + url.PathEscape(accessToken)
}

// ValidReportURL accepts absolute URLs with a scheme and host.
func ValidReportURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func isBlank(v *string) bool {
	return deref(v) == ""
}

func nullable(v string) interface{} {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
