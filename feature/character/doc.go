// Package character implements the character sheet resource API.
//
// A character aggregate owns two insertion-ordered collections: abilities
// (fixed name set STR/DEX/CON/INT/WIS/CHA, integer score) and equipment (free
// text name, integer quantity). The package exposes conventional CRUD
// endpoints over the aggregate and both collections.
//
// # Live synchronization
//
// Every successful mutation of an owned collection publishes a fine-grained
// typed event to the character's room on the notification hub: created and
// updated events carry the full record, deleted events carry the id. Updates
// to the character's own fields publish a coarse broadcast_status signal
// instead. Viewers of the same character reconcile through these events; see
// the client package.
//
// # Components
//
//   - Service: gorm-backed resource operations plus event publication.
//   - Handler: HTTP endpoints, error mapping to {"error": ...} bodies.
//   - Feature: registers the feature with the application loader.
//
// # HTTP Endpoints
//
//   - GET/POST /characters
//   - GET/PUT/DELETE /characters/:id
//   - GET/POST /characters/:id/abilities, GET/PUT/DELETE /characters/:id/abilities/:aid
//   - GET/POST /characters/:id/equipment, GET/PUT/DELETE /characters/:id/equipment/:eid
package character
