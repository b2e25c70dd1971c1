// Package live exposes the notification channel over a websocket endpoint.
//
// Each connected session gets a hub connection. The session controls its room
// membership with join_character / leave_character commands and may ask the
// hub to broadcast a coarse invalidation with status_update. Events queued for
// the connection by the hub (including the session's own echoes) are written
// back as JSON envelopes.
//
// A read failure or client close tears the hub connection down, which removes
// the session from every room it joined; membership therefore stays accurate
// without an explicit leave.
//
// # Endpoint
//
//   - GET /ws : websocket upgrade.
package live
