// Package portrait stores character portraits in object storage.
//
// Portraits are binary blobs and never travel over the notification channel;
// a portrait change publishes a coarse broadcast_status signal so viewers of
// the character re-fetch what they need.
//
// # HTTP Endpoints
//
//   - PUT /characters/:id/portrait : upload (raw image body, content type kept).
//   - GET /characters/:id/portrait : download.
//   - DELETE /characters/:id/portrait : remove.
package portrait
