// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this
// package defines the configuration structure for server settings: the listen
// port and the optional API key guarding the REST surface.
//
// The websocket endpoint and the swagger UI are exempt from the API key; see
// the auth middleware registration in cmd/start.go.
package server
