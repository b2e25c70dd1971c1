// Package hub implements the in-process notification hub.
//
// The hub groups connections into rooms keyed by character id and fans change
// events out to every connection in a room. It is the only shared mutable state
// of the live-sync path; all membership changes go through hub methods and are
// serialized by an internal lock, so connections may join, leave and publish
// concurrently.
//
// # Delivery semantics
//
//   - Join is idempotent; rooms are created lazily on first join.
//   - Leave is a no-op for non-members. Closing a connection leaves every room
//     it belongs to, so disconnects never strand membership entries.
//   - Publish delivers to every current member of the room, including the
//     connection that caused the change (self-echo is ON, see the live view
//     controller for how echoes are applied idempotently).
//   - Each connection owns a bounded FIFO queue. Publish never blocks: a
//     member whose queue is full loses that event and the broadcast continues
//     for the remaining members.
//   - Events published in order are queued per member in the same order.
//
// After Close returns no further events are delivered to that connection.
package hub
