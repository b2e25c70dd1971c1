package character

import (
	"errors"

	"character-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the character resource.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the character routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/characters")
	group.Get("/", h.HandleListCharacters)
	group.Post("/", h.HandleCreateCharacter)
	group.Get("/:id", h.HandleGetCharacter)
	group.Put("/:id", h.HandleUpdateCharacter)
	group.Delete("/:id", h.HandleDeleteCharacter)

	group.Get("/:id/abilities", h.HandleListAbilities)
	group.Post("/:id/abilities", h.HandleCreateAbility)
	group.Get("/:id/abilities/:aid", h.HandleGetAbility)
	group.Put("/:id/abilities/:aid", h.HandleUpdateAbility)
	group.Delete("/:id/abilities/:aid", h.HandleDeleteAbility)

	group.Get("/:id/equipment", h.HandleListEquipment)
	group.Post("/:id/equipment", h.HandleCreateEquipment)
	group.Get("/:id/equipment/:eid", h.HandleGetEquipment)
	group.Put("/:id/equipment/:eid", h.HandleUpdateEquipment)
	group.Delete("/:id/equipment/:eid", h.HandleDeleteEquipment)
}

// fail converts a service error into the JSON error body the API exposes.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrCharacterNotFound),
		errors.Is(err, ErrAbilityNotFound),
		errors.Is(err, ErrEquipmentNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidAbility), errors.Is(err, ErrEquipmentName):
		status = fiber.StatusBadRequest
	default:
		logger.WithRayID(h.service.logger, c).Error("Request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// HandleListCharacters lists all characters.
// @Summary List Characters
// @Description Returns all characters with their abilities and equipment.
// @Tags characters
// @Produce json
// @Success 200 {array} models.Character
// @Router /characters [get]
func (h *Handler) HandleListCharacters(c *fiber.Ctx) error {
	chars, err := h.service.ListCharacters(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(chars)
}

// HandleCreateCharacter creates a character.
// @Summary Create Character
// @Tags characters
// @Accept json
// @Produce json
// @Param character body character.CharacterInput true "Character fields"
// @Success 201 {object} models.Character
// @Router /characters [post]
func (h *Handler) HandleCreateCharacter(c *fiber.Ctx) error {
	var input CharacterInput
	// An empty or malformed body falls back to defaults, as the original API did.
	_ = c.BodyParser(&input)

	char, err := h.service.CreateCharacter(c.Context(), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(char)
}

// HandleGetCharacter returns one character aggregate.
// @Summary Get Character
// @Tags characters
// @Produce json
// @Param id path int true "Character ID"
// @Success 200 {object} models.Character
// @Failure 404 {object} map[string]string
// @Router /characters/{id} [get]
func (h *Handler) HandleGetCharacter(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	char, err := h.service.GetCharacter(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(char)
}

// HandleUpdateCharacter applies a partial update to a character.
// @Summary Update Character
// @Tags characters
// @Accept json
// @Produce json
// @Param id path int true "Character ID"
// @Param character body character.CharacterInput true "Fields to update"
// @Success 200 {object} models.Character
// @Failure 404 {object} map[string]string
// @Router /characters/{id} [put]
func (h *Handler) HandleUpdateCharacter(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	var input CharacterInput
	_ = c.BodyParser(&input)

	char, err := h.service.UpdateCharacter(c.Context(), id, input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(char)
}

// HandleDeleteCharacter deletes a character and its collections.
// @Summary Delete Character
// @Tags characters
// @Param id path int true "Character ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /characters/{id} [delete]
func (h *Handler) HandleDeleteCharacter(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	if err := h.service.DeleteCharacter(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListAbilities lists a character's abilities.
// @Summary List Abilities
// @Tags abilities
// @Produce json
// @Param id path int true "Character ID"
// @Success 200 {array} models.Ability
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/abilities [get]
func (h *Handler) HandleListAbilities(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	char, err := h.service.GetCharacter(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(char.Abilities)
}

// HandleCreateAbility adds an ability to a character.
// @Summary Create Ability
// @Tags abilities
// @Accept json
// @Produce json
// @Param id path int true "Character ID"
// @Param ability body character.AbilityInput true "Ability fields"
// @Success 201 {object} models.Ability
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/abilities [post]
func (h *Handler) HandleCreateAbility(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	var input AbilityInput
	_ = c.BodyParser(&input)

	ability, err := h.service.CreateAbility(c.Context(), id, input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ability)
}

// HandleGetAbility returns one ability.
// @Summary Get Ability
// @Tags abilities
// @Produce json
// @Param id path int true "Character ID"
// @Param aid path int true "Ability ID"
// @Success 200 {object} models.Ability
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/abilities/{aid} [get]
func (h *Handler) HandleGetAbility(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	aid, err := parseID(c, "aid")
	if err != nil {
		return h.fail(c, ErrAbilityNotFound)
	}
	ability, err := h.service.GetAbility(c.Context(), id, aid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ability)
}

// HandleUpdateAbility changes an ability's score.
// @Summary Update Ability
// @Tags abilities
// @Accept json
// @Produce json
// @Param id path int true "Character ID"
// @Param aid path int true "Ability ID"
// @Param ability body character.AbilityInput true "Fields to update"
// @Success 200 {object} models.Ability
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/abilities/{aid} [put]
func (h *Handler) HandleUpdateAbility(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	aid, err := parseID(c, "aid")
	if err != nil {
		return h.fail(c, ErrAbilityNotFound)
	}
	var input AbilityInput
	_ = c.BodyParser(&input)

	ability, err := h.service.UpdateAbility(c.Context(), id, aid, input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ability)
}

// HandleDeleteAbility removes an ability.
// @Summary Delete Ability
// @Tags abilities
// @Param id path int true "Character ID"
// @Param aid path int true "Ability ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/abilities/{aid} [delete]
func (h *Handler) HandleDeleteAbility(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	aid, err := parseID(c, "aid")
	if err != nil {
		return h.fail(c, ErrAbilityNotFound)
	}
	if err := h.service.DeleteAbility(c.Context(), id, aid); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListEquipment lists a character's equipment.
// @Summary List Equipment
// @Tags equipment
// @Produce json
// @Param id path int true "Character ID"
// @Success 200 {array} models.Equipment
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/equipment [get]
func (h *Handler) HandleListEquipment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	char, err := h.service.GetCharacter(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(char.Equipment)
}

// HandleCreateEquipment adds an equipment entry to a character.
// @Summary Create Equipment
// @Tags equipment
// @Accept json
// @Produce json
// @Param id path int true "Character ID"
// @Param equipment body character.EquipmentInput true "Equipment fields"
// @Success 201 {object} models.Equipment
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/equipment [post]
func (h *Handler) HandleCreateEquipment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	var input EquipmentInput
	_ = c.BodyParser(&input)

	equip, err := h.service.CreateEquipment(c.Context(), id, input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(equip)
}

// HandleGetEquipment returns one equipment entry.
// @Summary Get Equipment
// @Tags equipment
// @Produce json
// @Param id path int true "Character ID"
// @Param eid path int true "Equipment ID"
// @Success 200 {object} models.Equipment
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/equipment/{eid} [get]
func (h *Handler) HandleGetEquipment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	eid, err := parseID(c, "eid")
	if err != nil {
		return h.fail(c, ErrEquipmentNotFound)
	}
	equip, err := h.service.GetEquipment(c.Context(), id, eid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(equip)
}

// HandleUpdateEquipment changes an equipment entry.
// @Summary Update Equipment
// @Tags equipment
// @Accept json
// @Produce json
// @Param id path int true "Character ID"
// @Param eid path int true "Equipment ID"
// @Param equipment body character.EquipmentInput true "Fields to update"
// @Success 200 {object} models.Equipment
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/equipment/{eid} [put]
func (h *Handler) HandleUpdateEquipment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	eid, err := parseID(c, "eid")
	if err != nil {
		return h.fail(c, ErrEquipmentNotFound)
	}
	var input EquipmentInput
	_ = c.BodyParser(&input)

	equip, err := h.service.UpdateEquipment(c.Context(), id, eid, input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(equip)
}

// HandleDeleteEquipment removes an equipment entry.
// @Summary Delete Equipment
// @Tags equipment
// @Param id path int true "Character ID"
// @Param eid path int true "Equipment ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /characters/{id}/equipment/{eid} [delete]
func (h *Handler) HandleDeleteEquipment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, ErrCharacterNotFound)
	}
	eid, err := parseID(c, "eid")
	if err != nil {
		return h.fail(c, ErrEquipmentNotFound)
	}
	if err := h.service.DeleteEquipment(c.Context(), id, eid); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
