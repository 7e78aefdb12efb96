package feedback

import (
	"errors"

	"affiliate-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for votes.
type Handler struct {
	counter *Counter
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(counter *Counter, logger *zap.Logger) *Handler {
	return &Handler{counter: counter, logger: logger}
}

// RegisterRoutes registers the vote routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/rate")
	group.Post("/", h.HandleVote)
	group.Get("/:documentId", h.HandleTally)
}

type voteRequest struct {
	DocumentID string `json:"documentId"`
	Vote       string `json:"vote"`
}

// HandleVote records one helpful vote.
func (h *Handler) HandleVote(c *fiber.Ctx) error {
	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMissingContentID.Error()})
	}
	field, err := FieldForVote(req.Vote)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.counter.Increment(c.Context(), req.DocumentID, field); err != nil {
		if errors.Is(err, ErrInvalidVote) || errors.Is(err, ErrMissingContentID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		logger.WithRayID(h.logger, c).Error("Vote failed", zap.String("document_id", req.DocumentID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record vote"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleTally returns the vote counts of a document.
func (h *Handler) HandleTally(c *fiber.Ctx) error {
	tally, err := h.counter.Get(c.Context(), c.Params("documentId"))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Tally lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tally)
}
