package character

import (
	"context"
	"errors"
	"fmt"

	"character-manager/core/protocol"
	"character-manager/feature/character/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinel errors mapped to HTTP statuses by the handler.
var (
	ErrCharacterNotFound = errors.New("Character not found")
	ErrAbilityNotFound   = errors.New("Ability not found")
	ErrEquipmentNotFound = errors.New("Equipment not found")
	ErrInvalidAbility    = errors.New("Invalid ability name")
	ErrEquipmentName     = errors.New("Equipment name is required")
)

// Publisher delivers a change event to every session in a character's room.
type Publisher interface {
	Publish(characterID uint, ev protocol.Envelope)
}

// Service implements the character resource operations and publishes a change
// event to the room after every successful mutation of an owned collection.
type Service struct {
	db     *gorm.DB
	pub    Publisher
	logger *zap.Logger
}

// NewService creates a new character service.
func NewService(db *gorm.DB, pub Publisher, logger *zap.Logger) *Service {
	return &Service{db: db, pub: pub, logger: logger}
}

// CharacterInput carries fields for creating or partially updating a character.
type CharacterInput struct {
	Name           *string `json:"name"`
	Race           *string `json:"race"`
	CharacterClass *string `json:"character_class"`
	Level          *int    `json:"level"`
}

// AbilityInput carries fields for creating or updating an ability.
// Only the score is updatable.
type AbilityInput struct {
	Name  string `json:"name"`
	Score *int   `json:"score"`
}

// EquipmentInput carries fields for creating or updating an equipment entry.
type EquipmentInput struct {
	Name     *string `json:"name"`
	Quantity *int    `json:"quantity"`
}

func withCollections(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Abilities", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Equipment", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

// ListCharacters returns all characters with their collections.
func (s *Service) ListCharacters(ctx context.Context) ([]models.Character, error) {
	var chars []models.Character
	if err := withCollections(s.db.WithContext(ctx)).Order("id ASC").Find(&chars).Error; err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return chars, nil
}

// GetCharacter returns one character aggregate.
func (s *Service) GetCharacter(ctx context.Context, id uint) (*models.Character, error) {
	var char models.Character
	err := withCollections(s.db.WithContext(ctx)).First(&char, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load character %d: %w", id, err)
	}
	return &char, nil
}

// CreateCharacter creates a character. Missing fields fall back to defaults.
func (s *Service) CreateCharacter(ctx context.Context, input CharacterInput) (*models.Character, error) {
	char := models.Character{
		Name:      "Unnamed",
		Level:     1,
		Abilities: []models.Ability{},
		Equipment: []models.Equipment{},
	}
	if input.Name != nil {
		char.Name = *input.Name
	}
	if input.Race != nil {
		char.Race = *input.Race
	}
	if input.CharacterClass != nil {
		char.CharacterClass = *input.CharacterClass
	}
	if input.Level != nil {
		char.Level = *input.Level
	}
	if err := s.db.WithContext(ctx).Create(&char).Error; err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return &char, nil
}

// UpdateCharacter applies a partial update to the character's own fields and
// broadcasts a coarse status signal to the room.
func (s *Service) UpdateCharacter(ctx context.Context, id uint, input CharacterInput) (*models.Character, error) {
	char, err := s.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Race != nil {
		updates["race"] = *input.Race
	}
	if input.CharacterClass != nil {
		updates["character_class"] = *input.CharacterClass
	}
	if input.Level != nil {
		updates["level"] = *input.Level
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(char).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update character %d: %w", id, err)
		}
		s.pub.Publish(id, protocol.NewStatus(id))
	}
	return char, nil
}

// DeleteCharacter removes a character and its owned collections.
func (s *Service) DeleteCharacter(ctx context.Context, id uint) error {
	char, err := s.GetCharacter(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", id).Delete(&models.Ability{}).Error; err != nil {
			return fmt.Errorf("failed to delete abilities of character %d: %w", id, err)
		}
		if err := tx.Where("character_id = ?", id).Delete(&models.Equipment{}).Error; err != nil {
			return fmt.Errorf("failed to delete equipment of character %d: %w", id, err)
		}
		if err := tx.Delete(char).Error; err != nil {
			return fmt.Errorf("failed to delete character %d: %w", id, err)
		}
		return nil
	})
}

// CreateAbility appends an ability to the character and publishes the created
// event to the room.
func (s *Service) CreateAbility(ctx context.Context, characterID uint, input AbilityInput) (*models.Ability, error) {
	if !models.ValidAbilityName(input.Name) {
		return nil, ErrInvalidAbility
	}
	if _, err := s.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}
	ability := models.Ability{CharacterID: characterID, Name: input.Name, Score: 10}
	if input.Score != nil {
		ability.Score = *input.Score
	}
	if err := s.db.WithContext(ctx).Create(&ability).Error; err != nil {
		return nil, fmt.Errorf("failed to create ability: %w", err)
	}
	s.pub.Publish(characterID, protocol.NewAbilityChange(protocol.EventAbilityCreated, characterID, ability.Wire()))
	return &ability, nil
}

// GetAbility returns one ability of a character.
func (s *Service) GetAbility(ctx context.Context, characterID, abilityID uint) (*models.Ability, error) {
	if _, err := s.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}
	var ability models.Ability
	err := s.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		First(&ability, abilityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAbilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ability %d: %w", abilityID, err)
	}
	return &ability, nil
}

// UpdateAbility changes an ability's score and publishes the updated event.
func (s *Service) UpdateAbility(ctx context.Context, characterID, abilityID uint, input AbilityInput) (*models.Ability, error) {
	ability, err := s.GetAbility(ctx, characterID, abilityID)
	if err != nil {
		return nil, err
	}
	if input.Score != nil {
		if err := s.db.WithContext(ctx).Model(ability).Update("score", *input.Score).Error; err != nil {
			return nil, fmt.Errorf("failed to update ability %d: %w", abilityID, err)
		}
	}
	s.pub.Publish(characterID, protocol.NewAbilityChange(protocol.EventAbilityUpdated, characterID, ability.Wire()))
	return ability, nil
}

// DeleteAbility removes an ability and publishes the deleted event.
func (s *Service) DeleteAbility(ctx context.Context, characterID, abilityID uint) error {
	ability, err := s.GetAbility(ctx, characterID, abilityID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(ability).Error; err != nil {
		return fmt.Errorf("failed to delete ability %d: %w", abilityID, err)
	}
	s.pub.Publish(characterID, protocol.NewAbilityDeleted(characterID, abilityID))
	return nil
}

// CreateEquipment appends an equipment entry and publishes the created event.
func (s *Service) CreateEquipment(ctx context.Context, characterID uint, input EquipmentInput) (*models.Equipment, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, ErrEquipmentName
	}
	if _, err := s.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}
	equip := models.Equipment{CharacterID: characterID, Name: *input.Name, Quantity: 1}
	if input.Quantity != nil {
		equip.Quantity = *input.Quantity
	}
	if err := s.db.WithContext(ctx).Create(&equip).Error; err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}
	s.pub.Publish(characterID, protocol.NewEquipmentChange(protocol.EventEquipmentCreated, characterID, equip.Wire()))
	return &equip, nil
}

// GetEquipment returns one equipment entry of a character.
func (s *Service) GetEquipment(ctx context.Context, characterID, equipmentID uint) (*models.Equipment, error) {
	if _, err := s.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}
	var equip models.Equipment
	err := s.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		First(&equip, equipmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEquipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment %d: %w", equipmentID, err)
	}
	return &equip, nil
}

// UpdateEquipment changes name and/or quantity and publishes the updated event.
func (s *Service) UpdateEquipment(ctx context.Context, characterID, equipmentID uint, input EquipmentInput) (*models.Equipment, error) {
	equip, err := s.GetEquipment(ctx, characterID, equipmentID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(equip).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update equipment %d: %w", equipmentID, err)
		}
	}
	s.pub.Publish(characterID, protocol.NewEquipmentChange(protocol.EventEquipmentUpdated, characterID, equip.Wire()))
	return equip, nil
}

// DeleteEquipment removes an equipment entry and publishes the deleted event.
func (s *Service) DeleteEquipment(ctx context.Context, characterID, equipmentID uint) error {
	equip, err := s.GetEquipment(ctx, characterID, equipmentID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(equip).Error; err != nil {
		return fmt.Errorf("failed to delete equipment %d: %w", equipmentID, err)
	}
	s.pub.Publish(characterID, protocol.NewEquipmentDeleted(characterID, equipmentID))
	return nil
}
