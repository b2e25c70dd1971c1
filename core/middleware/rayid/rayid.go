// Package rayid assigns a unique request id (RayID) to every request.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the header the ray id is read from and echoed back on.
const HeaderName = "X-Ray-ID"

// New returns middleware that ensures every request carries a ray id. An id
// provided by the caller is kept so traces can span services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
