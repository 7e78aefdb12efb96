package affiliate

import (
	"errors"

	"affiliate-sync/core/logger"
	"affiliate-sync/feature/affiliate/catalog"
	"affiliate-sync/feature/affiliate/review"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for affiliate reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the affiliate routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/affiliate")
	group.Get("/match", h.HandleMatch)
	group.Get("/feed", h.HandleFeed)
	group.Post("/reconcile", h.HandleReconcile)
	group.Get("/reports", h.HandleReports)
	group.Get("/reviews", h.HandleListReviews)
	group.Post("/reviews/:id/resolve", h.HandleResolveReview)
}

// HandleMatch matches a product name against the catalog.
func (h *Handler) HandleMatch(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	resp, err := h.service.Match(c.Context(), name, c.Query("brand"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Catalog match failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

// HandleFeed returns the valid feed records and the load report.
func (h *Handler) HandleFeed(c *fiber.Ctx) error {
	records, report, err := h.service.Feed(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Feed load failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"records": records, "report": report})
}

type reconcileRequest struct {
	DryRun  *bool `json:"dry_run"`
	Confirm bool  `json:"confirm"`
	NoStubs bool  `json:"no_stubs"`
}

// HandleReconcile runs a reconciliation. It is a dry run unless confirm is
// true and dry_run is false.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	var req reconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	dryRun := req.DryRun == nil || *req.DryRun

	report, err := h.service.Reconcile(c.Context(), RunOptions{DryRun: dryRun, Confirmed: req.Confirm, NoStubs: req.NoStubs})
	if errors.Is(err, ErrRunInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleReports lists archived run reports.
func (h *Handler) HandleReports(c *fiber.Ctx) error {
	names, err := h.service.Reports(c.Context())
	if errors.Is(err, ErrStorageDisabled) {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Report listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"reports": names})
}

// HandleListReviews lists reviews, pending ones by default.
func (h *Handler) HandleListReviews(c *fiber.Ctx) error {
	status := review.Status(c.Query("status", string(review.StatusPending)))
	if status == "all" {
		status = ""
	}

	reviews, err := h.service.Reviews(c.Context(), status)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Review listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

type resolveRequest struct {
	CatalogID string `json:"catalog_id"`
}

// HandleResolveReview resolves a review to a catalog id, or to a new stub when catalog_id is empty.
func (h *Handler) HandleResolveReview(c *fiber.Ctx) error {
	var req resolveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	resolved, err := h.service.ResolveReview(c.Context(), c.Params("id"), req.CatalogID)
	switch {
	case errors.Is(err, review.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, review.ErrAlreadyResolved):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		logger.WithRayID(h.service.logger, c).Error("Review resolve failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resolved)
}
