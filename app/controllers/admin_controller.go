package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/auth"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/notify"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/reportstore"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/statistics"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/upload"
)

var (
	ErrAdminDisabled     = apperr.New(apperr.KindUnavailable, "Admin access is not configured")
	ErrInvalidPassword   = apperr.New(apperr.KindUnauthorized, "Invalid password")
	ErrMissingReportFile = apperr.Validation("file is required")
)

// AdminController handles the admin API: login, report authoring and stats.
type AdminController struct {
	catalog   *submissions.Service
	notifier  *notify.Notifier
	publisher *reportstore.Publisher
	stats     *statistics.Service
	issuer    *auth.Issuer
}

// NewAdminController creates a new admin controller with its service dependencies
func NewAdminController(deps Dependencies) *AdminController {
	return &AdminController{
		catalog:   deps.Submissions,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		stats:     deps.Statistics,
		issuer:    deps.Issuer,
	}
}

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles POST /api/admin/login
func (ac *AdminController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if ac.issuer == nil {
		return respondError(c, ErrAdminDisabled)
	}

	token, expiresAt, err := ac.issuer.Login(req.Password)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		return respondError(c, ErrAdminDisabled)
	case errors.Is(err, auth.ErrInvalidPassword):
		log.Warnf("[Admin] Failed login from %s", ClientIP(c))
		return respondError(c, ErrInvalidPassword)
	case err != nil:
		return respondError(c, apperr.Internal("Failed to issue token", err))
	}

	log.Infof("[Admin] Login from %s", ClientIP(c))
	return c.JSON(fiber.Map{"token": token, "expires_at": expiresAt.UTC().Format(time.RFC3339)})
}

type updateStatusRequest struct {
	ID            string  `json:"id"`
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
	AdminNotes    *string `json:"admin_notes" validate:"omitempty,max=10000"`
}

// HandleUpdateStatus handles PATCH /api/admin/submissions
func (ac *AdminController) HandleUpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	submission, err := ac.catalog.UpdateStatus(c.UserContext(), req.ID, submissions.StatusUpdate{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		AdminNotes:    req.AdminNotes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "submission": submission})
}

type updateReportRequest struct {
	SubmissionID          string  `json:"submission_id"`
	SummaryKeyInsight     *string `json:"summary_key_insight"`
	SummaryMarketSnapshot *string `json:"summary_market_snapshot"`
	SummaryNextStep       *string `json:"summary_next_step"`
	FullReportURL         *string `json:"full_report_url" validate:"omitempty,max=2048"`
	Status                *string `json:"status"`
}

// HandleUpdateReport handles POST /api/admin/update-report
func (ac *AdminController) HandleUpdateReport(c *fiber.Ctx) error {
	var req updateReportRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if strings.TrimSpace(req.SubmissionID) == "" {
		return respondError(c, notify.ErrMissingSubmissionID)
	}

	submission, err := ac.catalog.UpdateReport(c.UserContext(), req.SubmissionID, submissions.ReportUpdate{
		SummaryKeyInsight:     req.SummaryKeyInsight,
		SummaryMarketSnapshot: req.SummaryMarketSnapshot,
		SummaryNextStep:       req.SummaryNextStep,
		FullReportURL:         req.FullReportURL,
		Status:                req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "submission": submission})
}

type sendEmailRequest struct {
	SubmissionID string `json:"submission_id"`
	// Queue hands delivery to the background job queue instead of sending inline.
	Queue bool `json:"queue"`
}

// HandleSendEmail handles POST /api/admin/send-email
func (ac *AdminController) HandleSendEmail(c *fiber.Ctx) error {
	var req sendEmailRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if req.Queue {
		if strings.TrimSpace(req.SubmissionID) == "" {
			return respondError(c, notify.ErrMissingSubmissionID)
		}
		if _, err := ac.catalog.Get(c.UserContext(), req.SubmissionID); err != nil {
			return respondError(c, err)
		}
		if err := ac.notifier.QueueReportEmail(c.UserContext(), req.SubmissionID); err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "queued": true})
	}

	result, err := ac.notifier.SendReportEmail(c.UserContext(), req.SubmissionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleUploadReport handles POST /api/admin/submissions/:id/report
func (ac *AdminController) HandleUploadReport(c *fiber.Ctx) error {
	if ac.publisher == nil {
		return respondError(c, reportstore.ErrStorageDisabled)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondError(c, ErrMissingReportFile)
	}
	if err := upload.ValidateReportName(fileHeader.Filename); err != nil {
		return respondError(c, reportstore.ErrNotPDF)
	}
	if fileHeader.Size > reportstore.MaxReportSize {
		return respondError(c, reportstore.ErrTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, apperr.Internal("Failed to read upload", err))
	}
	defer file.Close()

	submission, err := ac.publisher.Publish(c.UserContext(), c.Params("id"), file, fileHeader.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "submission": submission})
}

// HandleStats handles GET /api/admin/stats
func (ac *AdminController) HandleStats(c *fiber.Ctx) error {
	summary, err := ac.stats.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
