package models

import "character-manager/core/protocol"

// AbilityNames is the closed set of valid ability names.
var AbilityNames = []string{"STR", "DEX", "CON", "INT", "WIS", "CHA"}

// ValidAbilityName reports whether name is one of the six ability names.
// Uniqueness per character is deliberately not enforced.
func ValidAbilityName(name string) bool {
	for _, n := range AbilityNames {
		if n == name {
			return true
		}
	}
	return false
}

// Character is the aggregate root: a sheet with its owned collections.
// Collections serialize in insertion order (ascending id).
type Character struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Name           string      `gorm:"size:191;not null" json:"name"`
	Race           string      `gorm:"size:191" json:"race"`
	CharacterClass string      `gorm:"size:191" json:"character_class"`
	Level          int         `gorm:"not null;default:1" json:"level"`
	Abilities      []Ability   `gorm:"constraint:OnDelete:CASCADE" json:"abilities"`
	Equipment      []Equipment `gorm:"constraint:OnDelete:CASCADE" json:"equipment"`
}

// Ability is one ability score owned by a character.
type Ability struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CharacterID uint   `gorm:"index;not null" json:"-"`
	Name        string `gorm:"size:8;not null" json:"name"`
	Score       int    `gorm:"not null;default:10" json:"score"`
}

// Equipment is one equipment entry owned by a character.
type Equipment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CharacterID uint   `gorm:"index;not null" json:"-"`
	Name        string `gorm:"size:191;not null" json:"name"`
	Quantity    int    `gorm:"not null;default:1" json:"quantity"`
}

// Wire converts the record to its notification payload form.
func (a Ability) Wire() protocol.Ability {
	return protocol.Ability{ID: a.ID, Name: a.Name, Score: a.Score}
}

// Wire converts the record to its notification payload form.
func (e Equipment) Wire() protocol.Equipment {
	return protocol.Equipment{ID: e.ID, Name: e.Name, Quantity: e.Quantity}
}
