// Package notify sends the emails that tell submitters about their reports.
package notify

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/jobqueue"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/mail"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
)

var (
	ErrMissingSubmissionID = apperr.Validation("submission_id is required")
	ErrNoAccessToken       = apperr.Validation("Submission has no access token")
	ErrMailDisabled        = apperr.New(apperr.KindUnavailable, "Email delivery is not configured")
	ErrSendFailed          = apperr.New(apperr.KindUpstream, "Failed to send email")
)

// Enqueuer is the part of the job queue the notifier needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType jobqueue.JobType, payload map[string]interface{}) (*jobqueue.Job, error)
}

// ReportEmailResult is returned by SendReportEmail.
type ReportEmailResult struct {
	Success   bool   `json:"success"`
	ReportURL string `json:"report_url"`
}

type Notifier struct {
	catalog *submissions.Service
	mailer  mail.Mailer
	queue   Enqueuer
	appURL  string
	now     func() time.Time
}

// New creates a notifier. mailer may be nil, in which case every send
// reports ErrMailDisabled.
func New(catalog *submissions.Service, mailer mail.Mailer, appURL string) *Notifier {
	return &Notifier{
		catalog: catalog,
		mailer:  mailer,
		appURL:  appURL,
		now:     time.Now,
	}
}

// Attach registers the email handlers on q and routes future enqueues
// through it.
func (n *Notifier) Attach(q *jobqueue.Queue) {
	q.Register(jobqueue.JobTypeSubmissionReceived, n.handleSubmissionReceived)
	q.Register(jobqueue.JobTypeReportEmail, n.handleReportEmail)
	n.queue = q
}

// SubmissionCreated queues the confirmation email. Failures are logged and
// never reach the caller.
func (n *Notifier) SubmissionCreated(ctx context.Context, submission *models.Submission) {
	if n.queue == nil {
		log.Debugf("[Notify] No job queue, skipping confirmation for %s", submission.ID)
		return
	}
	payload := jobqueue.EmailJobPayload{SubmissionID: submission.ID}.ToMap()
	if _, err := n.queue.Enqueue(ctx, jobqueue.JobTypeSubmissionReceived, payload); err != nil {
		log.Warnf("[Notify] Failed to queue confirmation for %s: %v", submission.ID, err)
	}
}

// QueueReportEmail schedules the report email for background delivery.
func (n *Notifier) QueueReportEmail(ctx context.Context, submissionID string) error {
	if n.queue == nil {
		return ErrMailDisabled
	}
	payload := jobqueue.EmailJobPayload{SubmissionID: submissionID}.ToMap()
	if _, err := n.queue.Enqueue(ctx, jobqueue.JobTypeReportEmail, payload); err != nil {
		return apperr.Internal("Failed to queue email", err)
	}
	return nil
}

// SendReportEmail delivers the report link to the submitter right away and
// stamps email_sent_at. A failed stamp is only logged since the mail is
// already out.
func (n *Notifier) SendReportEmail(ctx context.Context, submissionID string) (*ReportEmailResult, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return nil, ErrMissingSubmissionID
	}

	submission, err := n.catalog.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	reportURL, err := n.deliverReport(ctx, submission)
	if err != nil {
		return nil, err
	}

	if err := n.catalog.MarkEmailSent(ctx, submission.ID, n.now()); err != nil {
		log.Errorf("[Notify] Failed to update email_sent_at for %s: %v", submission.ID, err)
	}
	return &ReportEmailResult{Success: true, ReportURL: reportURL}, nil
}

func (n *Notifier) deliverReport(ctx context.Context, submission *models.Submission) (string, error) {
	if strings.TrimSpace(submission.AccessToken) == "" {
		return "", ErrNoAccessToken
	}
	if n.mailer == nil {
		return "", ErrMailDisabled
	}

	reportURL := submissions.ReportURL(n.appURL, submission.AccessToken)
	msg, err := mail.ReportReady(submission.Email, submission.ReportType, reportURL, submission.InBundle())
	if err != nil {
		return "", apperr.Internal("Failed to render email", err)
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		log.Errorf("[Notify] Report email for %s failed: %v", submission.ID, err)
		return "", apperr.Wrap(ErrSendFailed.Kind, ErrSendFailed.Message, err)
	}
	log.Infof("[Notify] Report email sent for submission %s", submission.ID)
	return reportURL, nil
}

func (n *Notifier) handleReportEmail(ctx context.Context, job *jobqueue.Job) error {
	payload, err := jobqueue.EmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return err
	}
	_, err = n.SendReportEmail(ctx, payload.SubmissionID)
	return err
}

func (n *Notifier) handleSubmissionReceived(ctx context.Context, job *jobqueue.Job) error {
	payload, err := jobqueue.EmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return err
	}
	if n.mailer == nil {
		log.Debugf("[Notify] Mail disabled, dropping confirmation for %s", payload.SubmissionID)
		return nil
	}

	submission, err := n.catalog.Get(ctx, payload.SubmissionID)
	if err != nil {
		return err
	}
	reportURL := submissions.ReportURL(n.appURL, submission.AccessToken)
	msg, err := mail.SubmissionReceived(submission.Email, submission.ReportType, reportURL)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}
