package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNotice(t *testing.T) {
	for _, event := range []EventType{EventConnected, EventDisconnected, EventJoined, EventLeft, EventError} {
		t.Run(string(event), func(t *testing.T) {
			env := NewNotice(event, "hello")
			msg, err := env.Decode()
			require.NoError(t, err)

			notice, ok := msg.(Notice)
			require.True(t, ok)
			assert.Equal(t, event, notice.Event)
			assert.Equal(t, "hello", notice.Message)

			_, scoped := CharacterID(msg)
			assert.False(t, scoped, "lifecycle notices are not character-scoped")
		})
	}
}

func TestDecodeStatus(t *testing.T) {
	msg, err := NewStatus(7).Decode()
	require.NoError(t, err)

	status, ok := msg.(StatusChanged)
	require.True(t, ok)
	assert.Equal(t, uint(7), status.CharacterID)

	id, scoped := CharacterID(msg)
	assert.True(t, scoped)
	assert.Equal(t, uint(7), id)
}

func TestDecodeAbilityEvents(t *testing.T) {
	ability := Ability{ID: 3, Name: "STR", Score: 15}

	msg, err := NewAbilityChange(EventAbilityCreated, 1, ability).Decode()
	require.NoError(t, err)
	created, ok := msg.(AbilityCreated)
	require.True(t, ok)
	assert.Equal(t, ability, created.Ability)

	msg, err = NewAbilityChange(EventAbilityUpdated, 1, ability).Decode()
	require.NoError(t, err)
	updated, ok := msg.(AbilityUpdated)
	require.True(t, ok)
	assert.Equal(t, ability, updated.Ability)

	msg, err = NewAbilityDeleted(1, 3).Decode()
	require.NoError(t, err)
	deleted, ok := msg.(AbilityDeleted)
	require.True(t, ok)
	assert.Equal(t, uint(3), deleted.AbilityID)

	id, scoped := CharacterID(msg)
	assert.True(t, scoped)
	assert.Equal(t, uint(1), id)
}

func TestDecodeEquipmentEvents(t *testing.T) {
	item := Equipment{ID: 9, Name: "Torch", Quantity: 5}

	msg, err := NewEquipmentChange(EventEquipmentCreated, 2, item).Decode()
	require.NoError(t, err)
	created, ok := msg.(EquipmentCreated)
	require.True(t, ok)
	assert.Equal(t, item, created.Equipment)

	msg, err = NewEquipmentChange(EventEquipmentUpdated, 2, item).Decode()
	require.NoError(t, err)
	updated, ok := msg.(EquipmentUpdated)
	require.True(t, ok)
	assert.Equal(t, item, updated.Equipment)

	msg, err = NewEquipmentDeleted(2, 9).Decode()
	require.NoError(t, err)
	deleted, ok := msg.(EquipmentDeleted)
	require.True(t, ok)
	assert.Equal(t, uint(9), deleted.EquipmentID)
}

func TestDecodeUnknownEvent(t *testing.T) {
	env := Envelope{Event: "teleport", Data: json.RawMessage(`{}`)}
	_, err := env.Decode()
	assert.ErrorContains(t, err, "unknown event type")
}

func TestDecodeMalformedPayload(t *testing.T) {
	env := Envelope{Event: EventBroadcastStatus, Data: json.RawMessage(`"nope"`)}
	_, err := env.Decode()
	assert.ErrorContains(t, err, "malformed event payload")
}

func TestDecodeEmptyPayload(t *testing.T) {
	// Lifecycle frames may arrive without a data field at all.
	msg, err := Envelope{Event: EventConnected}.Decode()
	require.NoError(t, err)
	notice, ok := msg.(Notice)
	require.True(t, ok)
	assert.Empty(t, notice.Message)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	raw, err := json.Marshal(NewStatus(42))
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, EventBroadcastStatus, env.Event)

	msg, err := env.Decode()
	require.NoError(t, err)
	assert.Equal(t, StatusChanged{CharacterID: 42}, msg)
}
