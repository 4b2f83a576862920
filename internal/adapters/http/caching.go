package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cacheRules maps GET path prefixes to Cache-Control values. First match wins.
var cacheRules = []struct {
	prefix string
	value  string
}{
	{"/v1/health", "public, max-age=10"},
	{"/v1/ready", "no-cache"},
	{"/metrics", "no-cache"},
	{"/docs/openapi.yaml", "public, max-age=3600"},
	{"/docs", "public, max-age=3600"},
	{"/ws", "no-store"},
	{"/", "public, max-age=60"},
}

// CachingMiddleware sets Cache-Control defaults on GET responses that did not
// set their own. Boundary computations are POSTs and are never cached here.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		for _, rule := range cacheRules {
			if path == rule.prefix || (rule.prefix != "/" && strings.HasPrefix(path, rule.prefix)) {
				c.Set(fiber.HeaderCacheControl, rule.value)
				break
			}
		}
		return err
	}
}
