// Package protocol defines the wire contract of the notification channel.
//
// Every frame on the channel is an Envelope: an event name plus a JSON payload.
// The set of event types is closed; Decode maps an inbound envelope onto exactly
// one of the Message variants, so a consumer handles the full event surface with
// a single type switch instead of string-keyed callbacks.
//
// # Events
//
// Server to client:
//   - connected, disconnected, joined, left, error: connection lifecycle notices.
//   - broadcast_status: coarse invalidation ("something about this character
//     changed, re-fetch").
//   - ability_created, ability_updated, ability_deleted: fine-grained ability
//     changes. Created/updated carry the full record, deleted carries the id.
//   - equipment_created, equipment_updated, equipment_deleted: same for equipment.
//
// Client to server (Command):
//   - join_character, leave_character: room membership.
//   - status_update: ask the hub to broadcast a coarse invalidation to the room.
//
// Every payload that describes a change carries the character id of the room it
// belongs to; receivers match it against their current character before acting.
package protocol
