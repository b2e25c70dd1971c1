package portrait

import (
	"errors"
	"strconv"

	"character-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for character portraits.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the portrait routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/characters/:id/portrait")
	group.Put("/", h.HandleUpload)
	group.Get("/", h.HandleFetch)
	group.Delete("/", h.HandleRemove)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrPortraitNotFound) {
		status = fiber.StatusNotFound
	} else {
		logger.WithRayID(h.service.logger, c).Error("Portrait request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseCharacterID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// HandleUpload stores the request body as the character's portrait.
// @Summary Upload Portrait
// @Tags portrait
// @Accept octet-stream
// @Param id path int true "Character ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /characters/{id}/portrait [put]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	id, ok := parseCharacterID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid character id"})
	}
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty portrait body"})
	}
	contentType := c.Get(fiber.HeaderContentType, "application/octet-stream")
	if err := h.service.Upload(c.Context(), id, contentType, body); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleFetch streams the character's portrait back.
// @Summary Get Portrait
// @Tags portrait
// @Produce octet-stream
// @Param id path int true "Character ID"
// @Success 200
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/portrait [get]
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	id, ok := parseCharacterID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid character id"})
	}
	body, contentType, err := h.service.Fetch(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.Send(body)
}

// HandleRemove deletes the character's portrait.
// @Summary Delete Portrait
// @Tags portrait
// @Param id path int true "Character ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/portrait [delete]
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	id, ok := parseCharacterID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid character id"})
	}
	if err := h.service.Remove(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
