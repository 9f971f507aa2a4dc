package controller

import (
	"encoding/json"

	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/pkg/serverutils"
	"doc-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router)
	Reindex(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Document(ctx *fiber.Ctx) error
}

type corpusController struct {
	publisherService service.IPublisherService
	ingestionService service.IIngestionService
}

func NewCorpusController(
	publisherService service.IPublisherService,
	ingestionService service.IIngestionService,
) ICorpusController {
	return &corpusController{
		publisherService: publisherService,
		ingestionService: ingestionService,
	}
}

func (c *corpusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/corpus/v1")
	h.Post("reindex", c.Reindex)
	h.Get("stats", c.Stats)
	h.Get("documents", c.Document)
}

// Reindex enqueues a corpus rebuild. The heavy lifting happens on the
// consumer side so the request returns immediately.
func (c *corpusController) Reindex(ctx *fiber.Ctx) error {
	var req dto.ReindexRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(dto.PublishReindexMessage{Path: req.Path})
	if err != nil {
		return err
	}

	if err := c.publisherService.Publish(ctx.Context(), payload); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Reindex queued", req))
}

// Document lists the indexed chunks of one document, for checking what a
// given source file produced.
func (c *corpusController) Document(ctx *fiber.Ctx) error {
	path := ctx.Query("path")
	if path == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'path' is required")
	}

	res, err := c.ingestionService.Document(ctx.Context(), path)
	if err != nil {
		return err
	}
	if len(res.Chunks) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "document is not indexed")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success document chunks", res))
}

func (c *corpusController) Stats(ctx *fiber.Ctx) error {
	res, err := c.ingestionService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success corpus stats", res))
}
