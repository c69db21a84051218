package reportstore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/upload"
)

// MaxReportSize caps uploaded report documents.
const MaxReportSize = 20 << 20

var (
	ErrStorageDisabled = apperr.New(apperr.KindUnavailable, "Report storage is not configured")
	ErrNotPDF          = apperr.Validation("Report must be a PDF document")
	ErrTooLarge        = apperr.Validation("Report exceeds the 20 MB limit")
	ErrEmptyFile       = apperr.Validation("Report file is empty")
)

// Publisher uploads report documents and links them to their submission.
type Publisher struct {
	catalog  *submissions.Service
	uploader Uploader
	prefix   string
	now      func() time.Time
}

// NewPublisher creates a publisher. uploader may be nil when storage is not
// configured; Publish then reports ErrStorageDisabled.
func NewPublisher(catalog *submissions.Service, uploader Uploader, prefix string) *Publisher {
	return &Publisher{
		catalog:  catalog,
		uploader: uploader,
		prefix:   strings.Trim(prefix, "/"),
		now:      time.Now,
	}
}

// ObjectKey is the storage key for a submission's report uploaded at t.
func (p *Publisher) ObjectKey(submissionID string, t time.Time) string {
	name := fmt.Sprintf("%s-%d.pdf", submissionID, t.Unix())
	return path.Join(p.prefix, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), name)
}

// Publish stores the PDF in body and sets the submission's full_report_url.
func (p *Publisher) Publish(ctx context.Context, submissionID string, body io.Reader, size int64) (*models.Submission, error) {
	if p.uploader == nil {
		return nil, ErrStorageDisabled
	}
	if size <= 0 {
		return nil, ErrEmptyFile
	}
	if size > MaxReportSize {
		return nil, ErrTooLarge
	}

	submission, err := p.catalog.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(body, upload.SniffLen)
	head, _ := br.Peek(upload.SniffLen)
	contentType, err := upload.ValidateReportBySniff("", head)
	if err != nil {
		return nil, ErrNotPDF
	}

	key := p.ObjectKey(submission.ID, p.now().UTC())
	result, err := p.uploader.Upload(ctx, key, br, size, contentType)
	if err != nil {
		log.Errorf("[ReportStore] Upload for submission %s failed: %v", submission.ID, err)
		return nil, apperr.Upstream("Failed to store report", err)
	}

	return p.catalog.SetFullReportURL(ctx, submission.ID, result.URL)
}
