// Package client is the live view session library for the character manager.
//
// A session pairs a REST API client with a websocket room subscription and
// drives the view through a small state machine:
//
//	Idle -> Loading -> Ready
//	          \-> Error (initial load failed; blocks the view until retried)
//
// Ready is re-entrant: every room event for the watched character is folded
// into the in-memory snapshot by a Reconciler and the controller stays Ready.
//
// # Reconciliation strategies
//
// Two policies implement the Reconciler interface:
//
//   - PatchReconciler applies the typed event payload directly: created
//     appends (deduplicated by id, so a self-echo can never double-apply),
//     updated replaces the matching id, deleted removes it, unmatched ids are
//     no-ops. A coarse broadcast_status still forces a refetch.
//   - CoarseReconciler discards nothing up front but re-fetches the whole
//     aggregate on any change signal.
//
// # Mutations and self-echo
//
// The hub echoes every published event back to the originating session. The
// controller therefore never applies local mutations optimistically: a CRUD
// call goes to the REST API and the update lands through the same event path
// as everyone else's. Per-action failures set a transient error without
// discarding the loaded character.
//
// On Stop the controller leaves its room before closing the transport, and
// results of in-flight calls are discarded so a stopped view never mutates.
package client
