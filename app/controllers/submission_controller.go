package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/notify"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
)

// SubmissionController serves report requests and bundles.
type SubmissionController struct {
	catalog  *submissions.Service
	notifier *notify.Notifier
}

func NewSubmissionController(catalog *submissions.Service, notifier *notify.Notifier) *SubmissionController {
	return &SubmissionController{catalog: catalog, notifier: notifier}
}

type createSubmissionRequest struct {
	Email         string `json:"email" validate:"max=255"`
	Idea          string `json:"idea" validate:"max=20000"`
	ReportType    string `json:"report_type"`
	ReportTypeAlt string `json:"reportType"`
	BundleID      string `json:"bundle_id"`
	BundleIDAlt   string `json:"bundleId"`
}

// HandleCreate handles POST /api/submissions
func (sc *SubmissionController) HandleCreate(c *fiber.Ctx) error {
	var req createSubmissionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	submission, err := sc.catalog.Create(c.UserContext(), submissions.CreateInput{
		Email:      req.Email,
		Idea:       req.Idea,
		ReportType: firstNonEmpty(req.ReportType, req.ReportTypeAlt),
		BundleID:   firstNonEmpty(req.BundleID, req.BundleIDAlt),
	})
	if err != nil {
		return respondError(c, err)
	}

	if sc.notifier != nil {
		sc.notifier.SubmissionCreated(c.UserContext(), submission)
	}

	resp := fiber.Map{
		"success":      true,
		"submission":   submission.WithToken(),
		"access_token": submission.AccessToken,
	}
	if submission.InBundle() {
		resp["message"] = "Report will be ready in 24h"
	}
	return c.JSON(resp)
}

// HandleGet handles GET /api/submissions/:id
func (sc *SubmissionController) HandleGet(c *fiber.Ctx) error {
	submission, err := sc.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"submission": submission})
}

// HandleGetByToken handles GET /api/submissions/by-token/:token
func (sc *SubmissionController) HandleGetByToken(c *fiber.Ctx) error {
	submission, err := sc.catalog.GetByToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(submission.WithToken())
}

// HandleList handles GET /api/submissions (admin only)
func (sc *SubmissionController) HandleList(c *fiber.Ctx) error {
	list, err := sc.catalog.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	views := make([]models.SubmissionWithToken, len(list))
	for i := range list {
		views[i] = list[i].WithToken()
	}
	return c.JSON(fiber.Map{"submissions": views})
}

type createBundleRequest struct {
	UserEmail    string `json:"user_email" validate:"max=255"`
	UserEmailAlt string `json:"userEmail"`
}

// HandleCreateBundle handles POST /api/bundles
func (sc *SubmissionController) HandleCreateBundle(c *fiber.Ctx) error {
	var req createBundleRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	bundle, err := sc.catalog.CreateBundle(c.UserContext(), firstNonEmpty(req.UserEmail, req.UserEmailAlt))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bundle_id": bundle.ID, "bundle": bundle})
}

// HandleGetBundle handles GET /api/bundles/:bundleId
func (sc *SubmissionController) HandleGetBundle(c *fiber.Ctx) error {
	status, err := sc.catalog.GetBundle(c.UserContext(), c.Params("bundleId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}
