// Package auth guards the REST surface with a static API key.
package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderName is the header the API key is expected in.
const HeaderName = "X-Api-Key"

// Config configures the auth middleware.
type Config struct {
	// ApiKey is the expected key. Empty disables the check entirely.
	ApiKey string
	// ExemptPrefixes lists path prefixes that bypass the check
	// (e.g. the websocket endpoint and the swagger UI).
	ExemptPrefixes []string
}

// New returns middleware enforcing the configured API key.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		for _, prefix := range cfg.ExemptPrefixes {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}
		key := c.Get(HeaderName)
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) == 1 {
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
}
