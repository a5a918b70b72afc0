package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/lifecycle"
)

// SubmitReport creates a pending report for the caller.
func (s *APIServer) SubmitReport(c *fiber.Ctx) error {
	var req submitReportRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}
	report, err := s.Reports.Submit(actor(c), lifecycle.SubmitInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// EditReport changes a pending report owned by the caller.
func (s *APIServer) EditReport(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	var req editReportRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}
	report, err := s.Reports.Edit(actor(c), id, lifecycle.EditInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// DeleteReport removes a pending report owned by the caller.
func (s *APIServer) DeleteReport(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	if err := s.Reports.Delete(actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *APIServer) GetReport(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	report, err := s.Reports.Get(actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// ListMyReports pages through the caller's reports, newest first.
func (s *APIServer) ListMyReports(c *fiber.Ctx) error {
	offset := clamp(c.QueryInt("offset", 0), 0, 1<<30)
	limit := clamp(c.QueryInt("limit", 20), 1, 100)
	list, err := s.Reports.ListMine(actor(c), offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reports": list, "offset": offset, "limit": limit})
}

// VerifyReport accepts a pending report and credits the owner (admin).
func (s *APIServer) VerifyReport(c *fiber.Ctx) error {
	return s.review(c, lifecycle.ActionVerify)
}

// RejectReport rejects a pending report; a comment is mandatory (admin).
func (s *APIServer) RejectReport(c *fiber.Ctx) error {
	return s.review(c, lifecycle.ActionReject)
}

// ResolveReport closes a verified or pending report (admin).
func (s *APIServer) ResolveReport(c *fiber.Ctx) error {
	return s.review(c, lifecycle.ActionResolve)
}

func (s *APIServer) review(c *fiber.Ctx, action lifecycle.Action) error {
	id, ok := idParam(c)
	if !ok {
		return badID(c)
	}
	var req reviewRequest
	if len(c.Body()) > 0 {
		if err := s.bind(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	var (
		report *models.Report
		err    error
	)
	switch action {
	case lifecycle.ActionVerify:
		report, err = s.Reports.Verify(actor(c), id, req.Points, req.Comment)
	case lifecycle.ActionReject:
		report, err = s.Reports.Reject(actor(c), id, req.Comment)
	default:
		report, err = s.Reports.Resolve(actor(c), id, req.Comment)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
