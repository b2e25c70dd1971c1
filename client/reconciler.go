package client

import "character-manager/core/protocol"

// Reconciler folds one room event into the snapshot. It reports whether the
// snapshot changed in place and whether a full refetch is required instead.
// Implementations must be idempotent: applying the same event twice leaves the
// snapshot as if it had been applied once.
type Reconciler interface {
	Apply(char *Character, msg protocol.Message) (changed, refetch bool)
}

// PatchReconciler applies typed event payloads directly to the in-memory
// collections: insertion appends preserving arrival order, update replaces the
// matching id, deletion removes it. Unmatched ids are no-ops, created events
// for an id already present replace it instead of duplicating.
type PatchReconciler struct{}

// Apply implements Reconciler.
func (PatchReconciler) Apply(char *Character, msg protocol.Message) (bool, bool) {
	switch m := msg.(type) {
	case protocol.AbilityCreated:
		return upsertAbility(char, m.Ability, true), false
	case protocol.AbilityUpdated:
		return upsertAbility(char, m.Ability, false), false
	case protocol.AbilityDeleted:
		return removeAbility(char, m.AbilityID), false
	case protocol.EquipmentCreated:
		return upsertEquipment(char, m.Equipment, true), false
	case protocol.EquipmentUpdated:
		return upsertEquipment(char, m.Equipment, false), false
	case protocol.EquipmentDeleted:
		return removeEquipment(char, m.EquipmentID), false
	case protocol.StatusChanged:
		// A coarse signal carries no payload to patch with.
		return false, true
	default:
		return false, false
	}
}

// CoarseReconciler treats every change signal as an invalidation and refetches
// the whole aggregate.
type CoarseReconciler struct{}

// Apply implements Reconciler.
func (CoarseReconciler) Apply(char *Character, msg protocol.Message) (bool, bool) {
	if _, ok := protocol.CharacterID(msg); !ok {
		return false, false
	}
	return false, true
}

func upsertAbility(char *Character, ability protocol.Ability, insert bool) bool {
	for i := range char.Abilities {
		if char.Abilities[i].ID == ability.ID {
			if char.Abilities[i] == ability {
				return false
			}
			char.Abilities[i] = ability
			return true
		}
	}
	if !insert {
		return false
	}
	char.Abilities = append(char.Abilities, ability)
	return true
}

func removeAbility(char *Character, id uint) bool {
	for i := range char.Abilities {
		if char.Abilities[i].ID == id {
			char.Abilities = append(char.Abilities[:i], char.Abilities[i+1:]...)
			return true
		}
	}
	return false
}

func upsertEquipment(char *Character, equip protocol.Equipment, insert bool) bool {
	for i := range char.Equipment {
		if char.Equipment[i].ID == equip.ID {
			if char.Equipment[i] == equip {
				return false
			}
			char.Equipment[i] = equip
			return true
		}
	}
	if !insert {
		return false
	}
	char.Equipment = append(char.Equipment, equip)
	return true
}

func removeEquipment(char *Character, id uint) bool {
	for i := range char.Equipment {
		if char.Equipment[i].ID == id {
			char.Equipment = append(char.Equipment[:i], char.Equipment[i+1:]...)
			return true
		}
	}
	return false
}
