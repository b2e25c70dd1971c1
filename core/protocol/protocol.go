package protocol

import (
	"encoding/json"
	"fmt"
)

// EventType identifies a server-to-client event.
type EventType string

const (
	EventConnected       EventType = "connected"
	EventDisconnected    EventType = "disconnected"
	EventJoined          EventType = "joined"
	EventLeft            EventType = "left"
	EventError           EventType = "error"
	EventBroadcastStatus EventType = "broadcast_status"

	EventAbilityCreated EventType = "ability_created"
	EventAbilityUpdated EventType = "ability_updated"
	EventAbilityDeleted EventType = "ability_deleted"

	EventEquipmentCreated EventType = "equipment_created"
	EventEquipmentUpdated EventType = "equipment_updated"
	EventEquipmentDeleted EventType = "equipment_deleted"
)

// Action identifies a client-to-server command.
type Action string

const (
	ActionJoinCharacter  Action = "join_character"
	ActionLeaveCharacter Action = "leave_character"
	ActionStatusUpdate   Action = "status_update"
)

// Ability is the wire form of an ability score record.
type Ability struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Equipment is the wire form of an equipment record.
type Equipment struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Envelope is a single frame on the notification channel.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Command is a client-to-server frame.
type Command struct {
	Action      Action `json:"action"`
	CharacterID uint   `json:"character_id"`
}

// Message is implemented by every decoded server event. The set of
// implementations is closed; see Decode.
type Message interface {
	isMessage()
}

// Notice carries a human-readable connection lifecycle message
// (connected, disconnected, joined, left, error).
type Notice struct {
	Event   EventType `json:"-"`
	Message string    `json:"message"`
}

// StatusChanged is the coarse invalidation signal for one character.
type StatusChanged struct {
	CharacterID uint `json:"character_id"`
}

// AbilityCreated announces a new ability on a character.
type AbilityCreated struct {
	CharacterID uint    `json:"character_id"`
	Ability     Ability `json:"ability"`
}

// AbilityUpdated announces a changed ability score.
type AbilityUpdated struct {
	CharacterID uint    `json:"character_id"`
	Ability     Ability `json:"ability"`
}

// AbilityDeleted announces a removed ability.
type AbilityDeleted struct {
	CharacterID uint `json:"character_id"`
	AbilityID   uint `json:"ability_id"`
}

// EquipmentCreated announces a new equipment item on a character.
type EquipmentCreated struct {
	CharacterID uint      `json:"character_id"`
	Equipment   Equipment `json:"equipment"`
}

// EquipmentUpdated announces a changed equipment item.
type EquipmentUpdated struct {
	CharacterID uint      `json:"character_id"`
	Equipment   Equipment `json:"equipment"`
}

// EquipmentDeleted announces a removed equipment item.
type EquipmentDeleted struct {
	CharacterID uint `json:"character_id"`
	EquipmentID uint `json:"equipment_id"`
}

func (Notice) isMessage()           {}
func (StatusChanged) isMessage()    {}
func (AbilityCreated) isMessage()   {}
func (AbilityUpdated) isMessage()   {}
func (AbilityDeleted) isMessage()   {}
func (EquipmentCreated) isMessage() {}
func (EquipmentUpdated) isMessage() {}
func (EquipmentDeleted) isMessage() {}

// CharacterID returns the character a message is scoped to. Lifecycle notices
// are not scoped to a character and return false.
func CharacterID(m Message) (uint, bool) {
	switch v := m.(type) {
	case StatusChanged:
		return v.CharacterID, true
	case AbilityCreated:
		return v.CharacterID, true
	case AbilityUpdated:
		return v.CharacterID, true
	case AbilityDeleted:
		return v.CharacterID, true
	case EquipmentCreated:
		return v.CharacterID, true
	case EquipmentUpdated:
		return v.CharacterID, true
	case EquipmentDeleted:
		return v.CharacterID, true
	default:
		return 0, false
	}
}

// Decode maps an envelope onto its Message variant. Unknown event types are an
// error rather than a silent no-op.
func (e Envelope) Decode() (Message, error) {
	switch e.Event {
	case EventConnected, EventDisconnected, EventJoined, EventLeft, EventError:
		var n Notice
		if err := unmarshal(e.Data, &n); err != nil {
			return nil, err
		}
		n.Event = e.Event
		return n, nil
	case EventBroadcastStatus:
		var s StatusChanged
		if err := unmarshal(e.Data, &s); err != nil {
			return nil, err
		}
		return s, nil
	case EventAbilityCreated:
		var m AbilityCreated
		if err := unmarshal(e.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventAbilityUpdated:
		var m AbilityUpdated
		if err := unmarshal(e.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventAbilityDeleted:
		var m AbilityDeleted
		if err := unmarshal(e.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventEquipmentCreated:
		var m EquipmentCreated
		if err := unmarshal(e.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventEquipmentUpdated:
		var m EquipmentUpdated
		if err := unmarshal(e.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EventEquipmentDeleted:
		var m EquipmentDeleted
		if err := unmarshal(e.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Event)
	}
}

func unmarshal(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}
	return nil
}

// NewNotice builds a lifecycle notice envelope.
func NewNotice(event EventType, message string) Envelope {
	return envelope(event, Notice{Message: message})
}

// NewStatus builds a coarse invalidation envelope for a character.
func NewStatus(characterID uint) Envelope {
	return envelope(EventBroadcastStatus, StatusChanged{CharacterID: characterID})
}

// NewAbilityChange builds an ability created/updated envelope.
func NewAbilityChange(event EventType, characterID uint, ability Ability) Envelope {
	return envelope(event, AbilityCreated{CharacterID: characterID, Ability: ability})
}

// NewAbilityDeleted builds an ability deletion envelope.
func NewAbilityDeleted(characterID, abilityID uint) Envelope {
	return envelope(EventAbilityDeleted, AbilityDeleted{CharacterID: characterID, AbilityID: abilityID})
}

// NewEquipmentChange builds an equipment created/updated envelope.
func NewEquipmentChange(event EventType, characterID uint, equipment Equipment) Envelope {
	return envelope(event, EquipmentCreated{CharacterID: characterID, Equipment: equipment})
}

// NewEquipmentDeleted builds an equipment deletion envelope.
func NewEquipmentDeleted(characterID, equipmentID uint) Envelope {
	return envelope(EventEquipmentDeleted, EquipmentDeleted{CharacterID: characterID, EquipmentID: equipmentID})
}

func envelope(event EventType, payload any) Envelope {
	// Payloads are plain structs; marshalling cannot fail.
	data, _ := json.Marshal(payload)
	return Envelope{Event: event, Data: data}
}
